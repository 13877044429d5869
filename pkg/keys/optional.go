package keys

import (
	"slices"
	"strings"
)

// Optional is a key sequence that may be absent.
//
// The zero value is absent. Present values may hold zero keys.
type Optional struct {
	// Keys holds the key sequence when Present is true.
	Keys []string

	// Present is false when there is no active selection or filter.
	Present bool
}

// None returns an absent Optional.
func None() Optional {
	return Optional{}
}

// Some returns a present Optional holding a copy of ks.
func Some(ks []string) Optional {
	c := make([]string, len(ks))
	copy(c, ks)
	return Optional{Keys: c, Present: true}
}

// IsPresent reports whether the value is present.
func (o Optional) IsPresent() bool {
	return o.Present
}

// Len returns the number of keys, 0 when absent.
func (o Optional) Len() int {
	if !o.Present {
		return 0
	}
	return len(o.Keys)
}

// Clone returns a deep copy.
func (o Optional) Clone() Optional {
	if !o.Present {
		return None()
	}
	return Some(o.Keys)
}

// Equal reports whether both values are absent, or both are present with the
// same keys in the same order.
func (o Optional) Equal(other Optional) bool {
	if o.Present != other.Present {
		return false
	}
	return !o.Present || slices.Equal(o.Keys, other.Keys)
}

// String returns "<none>" when absent and a bracketed key list otherwise.
func (o Optional) String() string {
	if !o.Present {
		return "<none>"
	}
	return "[" + strings.Join(o.Keys, ",") + "]"
}
