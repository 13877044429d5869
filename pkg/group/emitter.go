package group

import (
	"log/slog"
	"reflect"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/crosstalk-go/crosstalk/pkg/keys"
)

// EventChange is the only event name crosstalk emits.
const EventChange = "change"

// Sender identifies the participant that triggered a change.
// Selection and filter handles implement it.
type Sender interface {
	ID() string
}

// ChangeEvent is delivered to listeners when a Var changes.
type ChangeEvent struct {
	// Group is the name of the group the Var belongs to.
	Group string

	// Var is the name of the Var that changed.
	Var string

	// Value is the new value. Listeners must not modify Value.Keys.
	Value keys.Optional

	// OldValue is the value immediately before the change.
	OldValue keys.Optional

	// Sender is the participant that triggered the change, or nil.
	Sender Sender

	// Extra carries caller-supplied metadata merged from the sender's
	// defaults and the per-call extra info. Nil when there is none.
	Extra map[string]any
}

// Listener receives change events.
type Listener interface {
	HandleChange(ev ChangeEvent)
}

// ListenerFunc adapts a function to Listener.
// Function listeners can only be removed by SubscriptionID.
type ListenerFunc func(ev ChangeEvent)

// HandleChange calls f(ev).
func (f ListenerFunc) HandleChange(ev ChangeEvent) {
	f(ev)
}

// SubscriptionID identifies a registered listener. IDs are unique within
// the process and never zero.
type SubscriptionID uint64

var subscriptionCounter atomic.Uint64

func nextSubscriptionID() SubscriptionID {
	return SubscriptionID(subscriptionCounter.Add(1))
}

type subscription struct {
	id       SubscriptionID
	listener Listener
}

// Emitter is a synchronous listener registry keyed by event name.
// It is safe for concurrent use.
type Emitter struct {
	mu     sync.Mutex
	subs   map[string][]subscription
	logger *slog.Logger
}

// NewEmitter creates an Emitter that logs listener panics to logger.
func NewEmitter(logger *slog.Logger) *Emitter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Emitter{
		subs:   make(map[string][]subscription),
		logger: logger,
	}
}

// On registers l for event and returns its subscription ID.
func (e *Emitter) On(event string, l Listener) SubscriptionID {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := nextSubscriptionID()
	e.subs[event] = append(e.subs[event], subscription{id: id, listener: l})
	return id
}

// Off removes a listener registered for event. ref is either the
// SubscriptionID returned by On or the Listener value itself (only for
// comparable listener types such as pointers). The first match is removed.
// Returns false when nothing matched.
func (e *Emitter) Off(event string, ref any) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	subs := e.subs[event]
	for i, sub := range subs {
		if matches(sub, ref) {
			// Copy rather than re-slice in place: Emit may be iterating a
			// snapshot that shares this backing array.
			next := make([]subscription, 0, len(subs)-1)
			next = append(next, subs[:i]...)
			next = append(next, subs[i+1:]...)
			if len(next) == 0 {
				delete(e.subs, event)
			} else {
				e.subs[event] = next
			}
			return true
		}
	}
	return false
}

// matches reports whether sub is identified by ref.
func matches(sub subscription, ref any) bool {
	switch r := ref.(type) {
	case SubscriptionID:
		return sub.id == r
	case Listener:
		return sameListener(sub.listener, r)
	default:
		return false
	}
}

// sameListener compares listeners by identity. Listeners whose dynamic
// type is not comparable (funcs, structs holding funcs) never match.
func sameListener(a, b Listener) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta == nil || ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}

// Count returns the number of listeners registered for event.
func (e *Emitter) Count(event string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.subs[event])
}

// Clear removes every listener.
func (e *Emitter) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.subs = make(map[string][]subscription)
}

// Emit delivers ev to every listener registered for event, in registration
// order, and returns how many were called. Listeners added or removed during
// dispatch take effect from the next Emit.
func (e *Emitter) Emit(event string, ev ChangeEvent) int {
	e.mu.Lock()
	snapshot := e.subs[event]
	e.mu.Unlock()

	for _, sub := range snapshot {
		e.safeCall(sub, ev)
	}
	return len(snapshot)
}

// safeCall invokes a listener and recovers from panics so one faulty
// listener cannot starve the others.
func (e *Emitter) safeCall(sub subscription, ev ChangeEvent) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("crosstalk listener panicked",
				"group", ev.Group,
				"var", ev.Var,
				"subscription", uint64(sub.id),
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()
	sub.listener.HandleChange(ev)
}
