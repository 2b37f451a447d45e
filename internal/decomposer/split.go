package decomposer

import "github.com/voltaicdb/tscore/internal/tstypes"

type timeChunk struct {
	tstypes.TimeInterval
}

// chunkSources partitions sources into contiguous chunks of at most max
// entries each.
func chunkSources(sources []string, max int) [][]string {
	if max <= 0 || max >= len(sources) {
		return [][]string{sources}
	}
	var chunks [][]string
	for i := 0; i < len(sources); i += max {
		end := i + max
		if end > len(sources) {
			end = len(sources)
		}
		chunks = append(chunks, sources[i:end])
	}
	return chunks
}

// splitSourcesInto splits sources into exactly n contiguous, roughly
// equal-sized chunks (n capped at len(sources)).
func splitSourcesInto(sources []string, n int) [][]string {
	if n <= 0 {
		return [][]string{sources}
	}
	if n > len(sources) {
		n = len(sources)
	}
	base := len(sources) / n
	rem := len(sources) % n
	chunks := make([][]string, 0, n)
	idx := 0
	for i := 0; i < n; i++ {
		size := base
		if i < rem {
			size++
		}
		if size == 0 {
			continue
		}
		chunks = append(chunks, sources[idx:idx+size])
		idx += size
	}
	return chunks
}

// chunkTime partitions r into consecutive sub-intervals of at most
// maxDurationNanos each, the last possibly shorter.
func chunkTime(r tstypes.TimeInterval, maxDurationNanos int64) []timeChunk {
	if maxDurationNanos <= 0 || maxDurationNanos >= r.DurationNanos() {
		return []timeChunk{{r}}
	}
	var chunks []timeChunk
	start := r.Start
	for start <= r.End {
		end := start + maxDurationNanos
		if end > r.End {
			end = r.End
		}
		chunks = append(chunks, timeChunk{tstypes.TimeInterval{Start: start, End: end}})
		if end == r.End {
			break
		}
		start = end + 1
	}
	return chunks
}

// splitTimeInto splits r into exactly n equal-width sub-intervals (n
// capped at the interval's nanosecond width so chunks stay non-empty).
func splitTimeInto(r tstypes.TimeInterval, n int) []timeChunk {
	if n <= 0 {
		n = 1
	}
	width := r.DurationNanos() + 1
	if int64(n) > width {
		n = int(width)
	}
	base := width / int64(n)
	rem := width % int64(n)
	chunks := make([]timeChunk, 0, n)
	start := r.Start
	for i := 0; i < n; i++ {
		size := base
		if int64(i) < rem {
			size++
		}
		if size <= 0 {
			continue
		}
		end := start + size - 1
		if end > r.End {
			end = r.End
		}
		chunks = append(chunks, timeChunk{tstypes.TimeInterval{Start: start, End: end}})
		start = end + 1
	}
	return chunks
}

// gridOf forms the cartesian product of source chunks and time chunks,
// producing one Request per cell.
func gridOf(sourceChunks [][]string, timeChunks []timeChunk) []Request {
	out := make([]Request, 0, len(sourceChunks)*len(timeChunks))
	for _, sc := range sourceChunks {
		for _, tc := range timeChunks {
			out = append(out, Request{Sources: sc, TimeRange: tc.TimeInterval})
		}
	}
	return out
}
