package keys

import (
	"slices"
)

// Normalize returns a sorted, de-duplicated copy of in.
// The input slice is never modified. A nil or empty input yields an empty,
// non-nil slice.
func Normalize(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	slices.Sort(out)
	return slices.Compact(out)
}

// IsNormalized reports whether ks is sorted and free of duplicates.
func IsNormalized(ks []string) bool {
	for i := 1; i < len(ks); i++ {
		if ks[i-1] >= ks[i] {
			return false
		}
	}
	return true
}

// Intersect returns the keys present in every one of sets.
//
// Each set must already be normalized (see [Normalize]). With no sets the
// result is nil; with one set it is a copy of that set. The result is
// normalized and never aliases an input.
func Intersect(sets ...[]string) []string {
	switch len(sets) {
	case 0:
		return nil
	case 1:
		return slices.Clone(sets[0])
	}

	result := slices.Clone(sets[0])
	for _, s := range sets[1:] {
		result = intersectSorted(result, s)
		if len(result) == 0 {
			break
		}
	}
	if result == nil {
		result = []string{}
	}
	return result
}

// intersectSorted merges two sorted slices, keeping common elements.
// The result reuses a's backing array.
func intersectSorted(a, b []string) []string {
	out := a[:0]
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			i++
		case a[i] > b[j]:
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	return out
}

// Set is a lookup set of keys.
type Set map[string]struct{}

// NewSet builds a Set from ks.
func NewSet(ks []string) Set {
	s := make(Set, len(ks))
	for _, k := range ks {
		s[k] = struct{}{}
	}
	return s
}

// Has reports whether k is in the set.
func (s Set) Has(k string) bool {
	_, ok := s[k]
	return ok
}

// Sorted returns the members of the set in normalized order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
