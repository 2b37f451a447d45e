package msgbuffer

import "github.com/shirou/gopsutil/v3/mem"

// defaultMemoryFraction is the share of available system memory the
// buffer may claim when auto-sizing.
const defaultMemoryFraction = 0.05

// avgMessageBytes is the assumed average ResponseMessage size used to
// convert a byte budget into a slot count.
const avgMessageBytes = 4 * 1024

// minAutoCapacity is the floor applied regardless of available memory, so
// a constrained host still gets a usable buffer.
const minAutoCapacity = 64

// maxAutoCapacity caps the auto-sized capacity so a host with very large
// memory doesn't allocate an unreasonably large queue slice.
const maxAutoCapacity = 1 << 20

// AutoCapacity returns a buffer capacity sized as a fraction of available
// system memory, for callers that don't pin an explicit capacity. Falls
// back to minAutoCapacity if memory stats cannot be read.
func AutoCapacity() int {
	vm, err := mem.VirtualMemory()
	if err != nil || vm.Total == 0 {
		return minAutoCapacity
	}
	budgetBytes := float64(vm.Available) * defaultMemoryFraction
	capacity := int(budgetBytes / avgMessageBytes)
	if capacity < minAutoCapacity {
		capacity = minAutoCapacity
	}
	if capacity > maxAutoCapacity {
		capacity = maxAutoCapacity
	}
	return capacity
}
