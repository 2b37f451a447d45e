// Package decomposer splits one high-level data request into several
// smaller sub-requests whose union equals the original, subject to
// per-sub-request bounds on source count and time range.
package decomposer

import "github.com/voltaicdb/tscore/internal/tstypes"

// Request is a data-source request: a set of source names over one time
// window.
type Request struct {
	Sources   []string
	TimeRange tstypes.TimeInterval
}

// domainSize is |sources| x durationSeconds, the quantity the decomposer
// gates multi-streaming on.
func domainSize(r Request) float64 {
	return float64(len(r.Sources)) * r.TimeRange.DurationSeconds()
}
