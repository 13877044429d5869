// Package selection provides the selection handle: a per-consumer view of a
// group's single active selection.
//
// A group has at most one selection at a time. The most recent Set from any
// handle replaces it entirely; there is no merging. Every Set and Clear is
// broadcast to all handles in the group, including the one that made it, so
// a widget can tell its own updates from foreign ones:
//
//	sel := selection.New(reg, selection.WithGroup("cars"))
//	sel.On(group.EventChange, func(ev group.ChangeEvent) {
//	    if !sel.IsSender(ev) && ev.Value.IsPresent() {
//	        // another widget selected something: drop our own brush
//	    }
//	})
//	sel.Set([]string{"Mazda RX4", "Fiat 128"}, nil)
//
// Closing a handle does not clear the group's selection.
package selection

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

// Handle reads, writes and observes one group's selection.
// The zero value is not usable; create handles with New.
type Handle struct {
	*group.Member
}

// New creates a selection handle in reg. Without WithGroup the handle starts
// unbound: reads return keys.None() and writes are ignored until SetGroup.
func New(reg *group.Registry, opts ...Option) *Handle {
	h := &Handle{}
	h.Member = group.NewMember(reg, group.MemberConfig{
		Kind: trace.KindSelection,
		Var:  group.VarSelection,
	}, opts...)
	return h
}

// Value returns the group's current selection, or keys.None() when nothing
// is selected or the handle is unbound.
func (h *Handle) Value() keys.Optional {
	g := h.Bound()
	if g == nil {
		return keys.None()
	}
	return g.Selection().Get()
}

// Set replaces the group's selection with ks, keeping the caller's order.
// A nil or empty ks clears the selection.
func (h *Handle) Set(ks []string, extra map[string]any) {
	if len(ks) == 0 {
		h.Clear(extra)
		return
	}
	g := h.Bound()
	if g == nil {
		return
	}
	g.Selection().Set(keys.Some(ks), h, h.MergeExtra(extra))
}

// Clear removes the group's selection.
func (h *Handle) Clear(extra map[string]any) {
	g := h.Bound()
	if g == nil {
		return
	}
	g.Selection().Set(keys.None(), h, h.MergeExtra(extra))
}
