package group

import (
	"sync"
	"time"

	"github.com/crosstalk-go/crosstalk/pkg/keys"
	"github.com/crosstalk-go/crosstalk/pkg/trace"
)

// Reserved Var names.
const (
	// VarSelection holds the group's single active selection.
	VarSelection = "selection"

	// VarFilter holds the intersection of the group's filter contributions.
	VarFilter = "filter"
)

// Var is a named, observable value inside a group.
type Var struct {
	group   *Group
	name    string
	kind    trace.Kind
	derived bool

	mu    sync.Mutex
	value keys.Optional

	emitter *Emitter
}

func newVar(g *Group, name string) *Var {
	v := &Var{
		group:   g,
		name:    name,
		kind:    trace.KindVar,
		emitter: NewEmitter(g.registry.logger()),
	}
	switch name {
	case VarSelection:
		v.kind = trace.KindSelection
	case VarFilter:
		v.kind = trace.KindFilter
		v.derived = true
	}
	return v
}

// Name returns the Var's name.
func (v *Var) Name() string {
	return v.name
}

// Group returns the group the Var belongs to.
func (v *Var) Group() *Group {
	return v.group
}

// Get returns a copy of the current value.
func (v *Var) Get() keys.Optional {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.value.Clone()
}

// Set replaces the value and broadcasts a ChangeEvent to every "change"
// listener before returning. Replacing an absent value with an absent value
// is a no-op. Set returns whether an event was broadcast.
//
// The filter Var is derived from the group's contributions and cannot be
// set directly; use a filter handle instead.
func (v *Var) Set(value keys.Optional, sender Sender, extra map[string]any) bool {
	if v.derived {
		v.group.registry.logger().Warn("ignoring direct write to derived var",
			"group", v.group.name, "var", v.name)
		return false
	}

	old, changed := v.swap(value)
	if !changed {
		return false
	}
	v.publish(value, old, sender, extra, 0)
	return true
}

// swap stores value and returns the previous one. It reports false, and
// stores nothing, when both are absent.
func (v *Var) swap(value keys.Optional) (keys.Optional, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	old := v.value
	if !old.Present && !value.Present {
		return old, false
	}
	v.value = value.Clone()
	return old, true
}

// publish traces the change and dispatches it to listeners.
// Must be called without holding any group lock.
func (v *Var) publish(value, old keys.Optional, sender Sender, extra map[string]any, contributions int) {
	var senderID string
	if sender != nil {
		senderID = sender.ID()
	}

	action := trace.ActionSet
	if !value.Present {
		action = trace.ActionClear
	}

	v.group.registry.trace().Log(trace.Event{
		Timestamp:     time.Now(),
		Group:         v.group.name,
		HandleID:      senderID,
		Kind:          v.kind,
		Action:        action,
		Keys:          value.Keys,
		Present:       value.Present,
		OldKeys:       old.Keys,
		OldPresent:    old.Present,
		Listeners:     v.emitter.Count(EventChange),
		Contributions: contributions,
	})

	v.emitter.Emit(EventChange, ChangeEvent{
		Group:    v.group.name,
		Var:      v.name,
		Value:    value.Clone(),
		OldValue: old,
		Sender:   sender,
		Extra:    extra,
	})
}

// On registers fn for event and returns a subscription ID.
func (v *Var) On(event string, fn func(ChangeEvent)) SubscriptionID {
	return v.emitter.On(event, ListenerFunc(fn))
}

// OnListener registers l for event and returns a subscription ID.
func (v *Var) OnListener(event string, l Listener) SubscriptionID {
	return v.emitter.On(event, l)
}

// Off removes a listener by SubscriptionID or by comparable Listener value.
// Unknown references are ignored and return false.
func (v *Var) Off(event string, ref any) bool {
	return v.emitter.Off(event, ref)
}

// ListenerCount returns the number of "change" listeners.
func (v *Var) ListenerCount() int {
	return v.emitter.Count(EventChange)
}
