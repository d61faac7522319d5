package models

// Table is an ordered, read-only sequence of samples from one swing. Index
// order is source order (file line order for CSV). A Table is never modified
// after NewTable returns, so it can be shared between goroutines.
type Table struct {
	samples []Sample
}

// NewTable copies samples into a new Table.
func NewTable(samples []Sample) *Table {
	cp := make([]Sample, len(samples))
	copy(cp, samples)
	return &Table{samples: cp}
}

// Len returns the number of samples.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.samples)
}

// At returns a copy of the sample at index i.
func (t *Table) At(i int) Sample {
	return t.samples[i]
}

// Value returns channel c of sample i.
func (t *Table) Value(i int, c Channel) float64 {
	return t.samples[i].Value(c)
}

// Column copies channel c over [begin, end).
func (t *Table) Column(c Channel, begin, end int) []float64 {
	if begin < 0 {
		begin = 0
	}
	if end > len(t.samples) {
		end = len(t.samples)
	}
	if begin >= end {
		return nil
	}
	out := make([]float64, 0, end-begin)
	for i := begin; i < end; i++ {
		out = append(out, t.samples[i].Value(c))
	}
	return out
}

// Samples returns a copy of every sample.
func (t *Table) Samples() []Sample {
	out := make([]Sample, len(t.samples))
	copy(out, t.samples)
	return out
}
