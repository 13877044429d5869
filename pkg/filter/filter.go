// Package filter provides the filter handle: one participant's contribution
// to a group's effective filter.
//
// Each filter handle in a group maintains its own key set. The group's
// filtered keys are the intersection of every contribution; with no
// contributions filtering is inactive and FilteredKeys returns keys.None().
//
//	f1 := filter.New(reg, filter.WithGroup("G"))
//	f2 := filter.New(reg, filter.WithGroup("G"))
//	f1.Set([]string{"a", "b", "c"}, nil) // FilteredKeys: [a b c]
//	f2.Set([]string{"a", "c"}, nil)      // FilteredKeys: [a c]
//	f2.Clear(nil)                        // FilteredKeys: [a b c]
//
// Setting an empty key set is the same as Clear. Closing a handle, or moving
// it to another group, withdraws its contribution first; its listeners still
// see that final recompute.
package filter

import (
	"github.com/crosstalk-go/crosstalk/pkg/group"
	"github.com/crosstalk-go/crosstalk/pkg/keys"
	"github.com/crosstalk-go/crosstalk/pkg/trace"
)

// Option configures a Handle.
type Option = group.Option

// WithGroup binds the handle to the named group at construction.
func WithGroup(name string) Option {
	return group.WithGroup(name)
}

// WithExtraInfo sets metadata merged into every event the handle sends.
func WithExtraInfo(extra map[string]any) Option {
	return group.WithExtraInfo(extra)
}

// Handle contributes to and observes one group's filter.
// The zero value is not usable; create handles with New.
type Handle struct {
	*group.Member
}

// New creates a filter handle in reg, optionally bound to a group.
func New(reg *group.Registry, opts ...Option) *Handle {
	h := &Handle{}
	h.Member = group.NewMember(reg, group.MemberConfig{
		Kind: trace.KindFilter,
		Var:  group.VarFilter,
		OnLeave: func(g *group.Group) {
			g.Withdraw(h.ID(), h, h.MergeExtra(nil))
		},
	}, opts...)
	return h
}

// FilteredKeys returns the group's effective filter: the intersection of
// all contributions, or keys.None() when none exist or the handle is unbound.
func (h *Handle) FilteredKeys() keys.Optional {
	g := h.Bound()
	if g == nil {
		return keys.None()
	}
	return g.FilteredKeys()
}

// Keys returns this handle's own contribution, normalized, or nil.
func (h *Handle) Keys() []string {
	g := h.Bound()
	if g == nil {
		return nil
	}
	ks, _ := g.Contribution(h.ID())
	return ks
}

// Set replaces this handle's contribution with ks and broadcasts the
// recomputed intersection. A nil or empty ks is the same as Clear.
func (h *Handle) Set(ks []string, extra map[string]any) {
	g := h.Bound()
	if g == nil {
		return
	}
	g.Contribute(h.ID(), ks, h, h.MergeExtra(extra))
}

// Clear withdraws this handle's contribution and broadcasts the recomputed
// intersection. It does nothing when the handle has no contribution.
func (h *Handle) Clear(extra map[string]any) {
	g := h.Bound()
	if g == nil {
		return
	}
	g.Withdraw(h.ID(), h, h.MergeExtra(extra))
}
