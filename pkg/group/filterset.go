package group

import (
	"slices"

	"github.com/crosstalk-go/crosstalk/pkg/keys"
)

// FilterSet tracks each filter handle's contribution and their intersection.
// It is not safe for concurrent use; Group guards it.
type FilterSet struct {
	handles map[string][]string
	value   []string
}

// NewFilterSet creates an empty FilterSet.
func NewFilterSet() *FilterSet {
	return &FilterSet{handles: make(map[string][]string)}
}

// Update replaces handleID's contribution with ks and recomputes the
// intersection. A nil or empty ks removes the contribution instead.
func (fs *FilterSet) Update(handleID string, ks []string) {
	if len(ks) == 0 {
		fs.Clear(handleID)
		return
	}

	normalized := keys.Normalize(ks)
	old, had := fs.handles[handleID]
	fs.handles[handleID] = normalized

	switch {
	case fs.value == nil:
		// First contribution.
		fs.value = slices.Clone(normalized)
	case !had || isSubset(old, normalized):
		// Narrowing (or a new contributor) can only shrink the result, so
		// intersect incrementally instead of recomputing from scratch.
		fs.value = keys.Intersect(fs.value, normalized)
	default:
		fs.recompute()
	}
}

// Clear removes handleID's contribution. It reports whether one existed.
func (fs *FilterSet) Clear(handleID string) bool {
	if _, ok := fs.handles[handleID]; !ok {
		return false
	}
	delete(fs.handles, handleID)
	fs.recompute()
	return true
}

// Value returns the intersection of all contributions, or keys.None()
// when there are none.
func (fs *FilterSet) Value() keys.Optional {
	if len(fs.handles) == 0 {
		return keys.None()
	}
	return keys.Some(fs.value)
}

// Len returns the number of contributions.
func (fs *FilterSet) Len() int {
	return len(fs.handles)
}

// Contribution returns a copy of handleID's contribution.
func (fs *FilterSet) Contribution(handleID string) ([]string, bool) {
	ks, ok := fs.handles[handleID]
	if !ok {
		return nil, false
	}
	return slices.Clone(ks), true
}

func (fs *FilterSet) recompute() {
	if len(fs.handles) == 0 {
		fs.value = nil
		return
	}
	sets := make([][]string, 0, len(fs.handles))
	for _, ks := range fs.handles {
		sets = append(sets, ks)
	}
	fs.value = keys.Intersect(sets...)
}

// isSubset reports whether every key of sub is in super. Both sorted.
func isSubset(super, sub []string) bool {
	i := 0
	for _, k := range sub {
		for i < len(super) && super[i] < k {
			i++
		}
		if i == len(super) || super[i] != k {
			return false
		}
		i++
	}
	return true
}
