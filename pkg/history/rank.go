package history

import (
	"cmp"
	"slices"
)

// byPopularity orders entries by hit count, then by recency, both descending.
func byPopularity(a, b *Entry) int {
	if c := cmp.Compare(b.Hits, a.Hits); c != 0 {
		return c
	}
	return cmp.Compare(b.LastHit, a.LastHit)
}

// rank sorts entries most popular first. Entries that compare equal keep
// their relative order.
func rank(entries []*Entry) {
	slices.SortStableFunc(entries, byPopularity)
}
