package tstypes

// TimeInterval is a closed interval [Start, End] of nanosecond-resolution
// timestamps, with Start <= End.
type TimeInterval struct {
	Start int64
	End   int64
}

// NewTimeInterval builds a TimeInterval, swapping the bounds if given out
// of order.
func NewTimeInterval(start, end int64) TimeInterval {
	if start > end {
		start, end = end, start
	}
	return TimeInterval{Start: start, End: end}
}

// DurationNanos returns End-Start.
func (t TimeInterval) DurationNanos() int64 {
	return t.End - t.Start
}

// DurationSeconds returns the interval length in seconds, used by the
// decomposer's domainSize calculation.
func (t TimeInterval) DurationSeconds() float64 {
	return float64(t.DurationNanos()) / 1e9
}

// Intersects reports whether t and other, both closed, overlap.
func (t TimeInterval) Intersects(other TimeInterval) bool {
	return t.Start <= other.End && other.Start <= t.End
}

// Union returns the smallest closed interval containing both t and other.
func (t TimeInterval) Union(other TimeInterval) TimeInterval {
	start := t.Start
	if other.Start < start {
		start = other.Start
	}
	end := t.End
	if other.End > end {
		end = other.End
	}
	return TimeInterval{Start: start, End: end}
}

// Contains reports whether ts falls within the closed interval.
func (t TimeInterval) Contains(ts int64) bool {
	return ts >= t.Start && ts <= t.End
}
