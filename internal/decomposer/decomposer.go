package decomposer

import "math"

// Params bounds the decomposer's split strategies.
type Params struct {
	MaxStreams        int
	MaxSourcesPerSub  int
	MaxDurationPerSub int64 // nanoseconds
	TriggerDomain     float64

	// Disabled, when true, makes Decompose always return the request
	// unchanged as a single sub-request.
	Disabled bool
}

// Decomposer is a pure function over (Request, Params); it holds no
// state between calls.
type Decomposer struct{}

// New returns a Decomposer. It is stateless; the zero value works too.
func New() *Decomposer {
	return &Decomposer{}
}

// Decompose tries each split strategy in order; the first that applies
// wins.
func (d *Decomposer) Decompose(r Request, p Params) []Request {
	if p.Disabled {
		return []Request{r}
	}
	if domainSize(r) < p.TriggerDomain || p.MaxStreams <= 1 {
		return []Request{r}
	}

	if grid, ok := d.preferredSplit(r, p); ok {
		return grid
	}
	if horiz, ok := d.horizontalSplit(r, p); ok {
		return horiz
	}
	if grid, ok := d.gridByStreamCount(r, p); ok {
		return grid
	}
	return d.verticalSplit(r, p)
}

// preferredSplit partitions sources into chunks of <= MaxSourcesPerSub and
// time into chunks of <= MaxDurationPerSub, forming a grid; it applies
// only if the grid's cover count fits within MaxStreams.
func (d *Decomposer) preferredSplit(r Request, p Params) ([]Request, bool) {
	if p.MaxSourcesPerSub <= 0 || p.MaxDurationPerSub <= 0 {
		return nil, false
	}
	sourceChunks := chunkSources(r.Sources, p.MaxSourcesPerSub)
	timeChunks := chunkTime(r.TimeRange, p.MaxDurationPerSub)
	if len(sourceChunks)*len(timeChunks) > p.MaxStreams {
		return nil, false
	}
	return gridOf(sourceChunks, timeChunks), true
}

// horizontalSplit applies when there are at least MaxStreams sources:
// split sources into MaxStreams contiguous chunks, time unchanged.
func (d *Decomposer) horizontalSplit(r Request, p Params) ([]Request, bool) {
	if len(r.Sources) < p.MaxStreams {
		return nil, false
	}
	chunks := splitSourcesInto(r.Sources, p.MaxStreams)
	return gridOf(chunks, []timeChunk{{r.TimeRange}}), true
}

// gridByStreamCount applies when sources outnumber MaxStreams/2: split
// sources into roughly sqrt(MaxStreams) chunks and time into the
// complementary factor, accepting only if the resulting grid still fits
// within MaxStreams.
func (d *Decomposer) gridByStreamCount(r Request, p Params) ([]Request, bool) {
	if len(r.Sources) <= p.MaxStreams/2 {
		return nil, false
	}
	sourceFactor := int(math.Round(math.Sqrt(float64(p.MaxStreams))))
	if sourceFactor < 1 {
		sourceFactor = 1
	}
	timeFactor := p.MaxStreams / sourceFactor
	if timeFactor < 1 {
		timeFactor = 1
	}
	sourceChunks := splitSourcesInto(r.Sources, sourceFactor)
	timeChunks := splitTimeInto(r.TimeRange, timeFactor)
	if len(sourceChunks)*len(timeChunks) > p.MaxStreams {
		return nil, false
	}
	return gridOf(sourceChunks, timeChunks), true
}

// verticalSplit is the fallback: split time into MaxStreams equal
// sub-intervals, sources unchanged.
func (d *Decomposer) verticalSplit(r Request, p Params) []Request {
	timeChunks := splitTimeInto(r.TimeRange, p.MaxStreams)
	return gridOf([][]string{r.Sources}, timeChunks)
}
