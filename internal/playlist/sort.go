package playlist

import (
	"cmp"
	"slices"
)

// Sort orders the bucket so the most extreme deviation comes first:
// descending diff for overrated buckets, ascending for underrated ones.
// Difficulties are ordered inside each song before the songs are ordered by
// their first difficulty. The sort is stable, so sorting twice is a no-op.
func (b *Bucket) Sort() {
	order := func(x, y float64) int { return cmp.Compare(y, x) }
	if b.ID.Direction == Underrated {
		order = func(x, y float64) int { return cmp.Compare(x, y) }
	}

	for i := range b.Songs {
		slices.SortStableFunc(b.Songs[i].Difficulties, func(x, y Difficulty) int {
			return order(x.Diff, y.Diff)
		})
	}
	slices.SortStableFunc(b.Songs, func(x, y Song) int {
		return order(leadDiff(x), leadDiff(y))
	})
}

func leadDiff(s Song) float64 {
	if len(s.Difficulties) == 0 {
		return 0
	}
	return s.Difficulties[0].Diff
}

// Sort sorts every bucket in place
func (c *Collection) Sort() {
	for i := range c.buckets {
		c.buckets[i].Sort()
	}
}
