package tstypes

import "fmt"

// CorrelatedBlock groups every DataColumn observed for one TimingKey. All
// columns share the block's key; source names are unique within it.
type CorrelatedBlock struct {
	Key         TimingKey
	columns     []DataColumn
	sourceIndex map[string]int
}

// NewCorrelatedBlock creates an empty block for key.
func NewCorrelatedBlock(key TimingKey) *CorrelatedBlock {
	return &CorrelatedBlock{Key: key, sourceIndex: make(map[string]int)}
}

// HasSource reports whether a column for sourceName is already present.
func (b *CorrelatedBlock) HasSource(sourceName string) bool {
	_, ok := b.sourceIndex[sourceName]
	return ok
}

// AddColumn appends c, recording its source name. The caller (Correlator)
// is responsible for first-writer-wins de-duplication via HasSource before
// calling AddColumn; AddColumn itself does not check.
func (b *CorrelatedBlock) AddColumn(c DataColumn) {
	b.sourceIndex[c.SourceName] = len(b.columns)
	b.columns = append(b.columns, c)
}

// Columns returns the block's columns in insertion order. The returned
// slice must not be mutated by the caller.
func (b *CorrelatedBlock) Columns() []DataColumn {
	return b.columns
}

// SourceNames returns the set of source names present in the block, in
// insertion order.
func (b *CorrelatedBlock) SourceNames() []string {
	names := make([]string, len(b.columns))
	for i, c := range b.columns {
		names[i] = c.SourceName
	}
	return names
}

// TimeRange is the key's induced time range.
func (b *CorrelatedBlock) TimeRange() TimeInterval {
	return b.Key.TimeRange()
}

// StartTime is the key's first timestamp, used to order blocks.
func (b *CorrelatedBlock) StartTime() int64 {
	return b.Key.StartTime()
}

// Verify checks the block's invariants: column count matches distinct
// source count, each column length equals the key's sample count, source
// names are unique. Returns a *Error on the first violation found: kind
// size-mismatch for a column length violation, correlation-failure for
// anything else.
func (b *CorrelatedBlock) Verify() error {
	expected := b.Key.Count()
	seen := make(map[string]struct{}, len(b.columns))
	for _, c := range b.columns {
		if _, dup := seen[c.SourceName]; dup {
			return NewError(KindCorrelationFailure,
				fmt.Sprintf("duplicate source name %q in block %s", c.SourceName, b.Key))
		}
		seen[c.SourceName] = struct{}{}
		if len(c.Values) != expected {
			return NewError(KindSizeMismatch,
				fmt.Sprintf("column %q has length %d, want %d for key %s", c.SourceName, len(c.Values), expected, b.Key))
		}
	}
	if len(seen) != len(b.sourceIndex) {
		return NewError(KindCorrelationFailure, "source index out of sync with columns")
	}
	return nil
}
