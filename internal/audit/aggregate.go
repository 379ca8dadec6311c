package audit

import (
	"slices"
)

// Entry is one custom property and the sorted, distinct labels that reference it
type Entry struct {
	Name   string
	Labels []string
}

// Index is the finalized usage index, sorted by property name
type Index []Entry

// Aggregator merges the usages of every stylesheet in a run
type Aggregator struct {
	usages Usages
}

// NewAggregator returns an empty aggregator
func NewAggregator() *Aggregator {
	return &Aggregator{usages: Usages{}}
}

// Add merges one stylesheet's usages
func (a *Aggregator) Add(u Usages) {
	a.usages.Merge(u)
}

// Finalize sorts and deduplicates the labels of every property and returns
// the entries sorted by name. The aggregator is not modified.
func (a *Aggregator) Finalize() Index {
	names := make([]string, 0, len(a.usages))
	for name := range a.usages {
		names = append(names, name)
	}
	slices.Sort(names)

	index := make(Index, 0, len(names))
	for _, name := range names {
		labels := slices.Clone(a.usages[name])
		slices.Sort(labels)
		index = append(index, Entry{
			Name:   name,
			Labels: slices.Compact(labels),
		})
	}
	return index
}
