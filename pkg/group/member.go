package group

import (
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/crosstalk-go/crosstalk/pkg/trace"
)

// Option configures a Member at construction.
type Option func(*memberOptions)

type memberOptions struct {
	group     string
	bind      bool
	extraInfo map[string]any
}

// WithGroup binds the handle to the named group immediately.
func WithGroup(name string) Option {
	return func(o *memberOptions) {
		o.group = name
		o.bind = true
	}
}

// WithExtraInfo sets metadata merged into every event the handle sends.
func WithExtraInfo(extra map[string]any) Option {
	return func(o *memberOptions) {
		o.extraInfo = maps.Clone(extra)
	}
}

// MemberConfig describes the handle embedding a Member.
type MemberConfig struct {
	// Kind is the coordinator the handle belongs to.
	Kind trace.Kind

	// Var is the group Var the handle observes.
	Var string

	// OnLeave runs when the handle leaves a group, before its listeners are
	// detached from it. Filter handles withdraw their contribution here.
	OnLeave func(g *Group)
}

// Member is the lifecycle shared by selection and filter handles:
// binding to a group, relaying that group's change events to the handle's
// own listeners, and closing.
//
// Listeners registered on a Member survive group changes; they are
// attached to whichever group the Member is bound to.
type Member struct {
	id       string
	registry *Registry
	config   MemberConfig
	extra    map[string]any
	emitter  *Emitter

	mu     sync.Mutex
	group  *Group
	relay  SubscriptionID
	closed bool
}

// NewMember creates a Member, bound to a group when WithGroup is given.
func NewMember(reg *Registry, cfg MemberConfig, opts ...Option) *Member {
	var o memberOptions
	for _, opt := range opts {
		opt(&o)
	}

	m := &Member{
		id:       uuid.New().String(),
		registry: reg,
		config:   cfg,
		extra:    o.extraInfo,
		emitter:  NewEmitter(reg.logger()),
	}
	if o.bind {
		m.SetGroup(o.group)
	}
	return m
}

// ID returns the handle's unique identity.
func (m *Member) ID() string {
	return m.id
}

// Registry returns the registry the handle belongs to.
func (m *Member) Registry() *Registry {
	return m.registry
}

// GroupName returns the bound group's name and whether the handle is bound.
func (m *Member) GroupName() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.group == nil {
		return "", false
	}
	return m.group.name, true
}

// Bound returns the bound group, or nil.
func (m *Member) Bound() *Group {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.group
}

// Closed reports whether Close has been called.
func (m *Member) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// SetGroup binds the handle to the named group, leaving its current group
// first. It is a no-op when already bound to name or after Close.
func (m *Member) SetGroup(name string) {
	m.mu.Lock()
	if m.closed || (m.group != nil && m.group.name == name) {
		m.mu.Unlock()
		return
	}
	old := m.group
	m.mu.Unlock()

	if old != nil {
		m.leave(old, trace.ActionUnbind)
	}

	g := m.registry.Acquire(name)

	m.mu.Lock()
	if m.closed || m.group != nil {
		// A listener re-bound or closed this handle while it was leaving.
		m.mu.Unlock()
		m.registry.Release(g)
		return
	}
	m.group = g
	m.relay = g.Var(m.config.Var).OnListener(EventChange, ListenerFunc(m.forward))
	m.mu.Unlock()

	m.record(g, trace.ActionBind)
}

// Unbind leaves the current group without joining another.
func (m *Member) Unbind() {
	m.mu.Lock()
	old := m.group
	m.mu.Unlock()

	if old != nil {
		m.leave(old, trace.ActionUnbind)
	}
}

// leave runs OnLeave for g, detaches the relay and releases g.
func (m *Member) leave(g *Group, action trace.Action) {
	if m.config.OnLeave != nil {
		m.config.OnLeave(g)
	}

	m.mu.Lock()
	if m.group != g {
		m.mu.Unlock()
		return
	}
	g.Var(m.config.Var).Off(EventChange, m.relay)
	m.group = nil
	m.relay = 0
	m.mu.Unlock()

	m.registry.Release(g)
	m.record(g, action)
}

// Close leaves the bound group and removes every listener. Calling Close
// again is a no-op.
func (m *Member) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	g := m.group
	m.mu.Unlock()

	if g != nil {
		if m.config.OnLeave != nil {
			m.config.OnLeave(g)
		}
		m.emitter.Clear()

		m.mu.Lock()
		if m.group == g {
			g.Var(m.config.Var).Off(EventChange, m.relay)
			m.group = nil
			m.relay = 0
		}
		m.mu.Unlock()

		m.registry.Release(g)
		m.record(g, trace.ActionClose)
		return
	}

	m.emitter.Clear()
	m.record(nil, trace.ActionClose)
}

// On registers fn for event and returns a subscription ID usable with Off.
func (m *Member) On(event string, fn func(ChangeEvent)) SubscriptionID {
	return m.emitter.On(event, ListenerFunc(fn))
}

// OnListener registers l for event. Comparable listeners (pointers) can
// later be removed by passing the same value to Off.
func (m *Member) OnListener(event string, l Listener) SubscriptionID {
	return m.emitter.On(event, l)
}

// Off removes a listener by SubscriptionID or Listener value. Unknown
// references are ignored and return false.
func (m *Member) Off(event string, ref any) bool {
	return m.emitter.Off(event, ref)
}

// ListenerCount returns the number of "change" listeners on the handle.
func (m *Member) ListenerCount() int {
	return m.emitter.Count(EventChange)
}

// IsSender reports whether ev was triggered by this handle.
func (m *Member) IsSender(ev ChangeEvent) bool {
	return ev.Sender != nil && ev.Sender.ID() == m.id
}

// MergeExtra combines the handle's default extra info with per-call extra
// info; per-call entries win. Returns nil when both are empty.
func (m *Member) MergeExtra(extra map[string]any) map[string]any {
	if len(m.extra) == 0 && len(extra) == 0 {
		return nil
	}
	out := make(map[string]any, len(m.extra)+len(extra))
	maps.Copy(out, m.extra)
	maps.Copy(out, extra)
	return out
}

// forward relays a group event to the handle's own listeners.
func (m *Member) forward(ev ChangeEvent) {
	m.emitter.Emit(EventChange, ev)
}

func (m *Member) record(g *Group, action trace.Action) {
	ev := trace.Event{
		Timestamp: time.Now(),
		HandleID:  m.id,
		Kind:      m.config.Kind,
		Action:    action,
	}
	if g != nil {
		ev.Group = g.name
	}
	m.registry.trace().Log(ev)
}
