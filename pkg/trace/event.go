package trace

import (
	"strings"
	"time"
)

// Event is one coordination action captured in a group.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the action happened (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// Group is the name of the group the action applies to.
	Group string `cbor:"2,keyasint"`

	// HandleID identifies the handle that performed the action.
	// Empty for group-level actions.
	HandleID string `cbor:"3,keyasint,omitempty"`

	// Kind is the coordinator the action belongs to.
	Kind Kind `cbor:"4,keyasint"`

	// Action is what happened.
	Action Action `cbor:"5,keyasint"`

	// Keys is the value after the action (selection value, filter
	// intersection or the handle's own contribution, depending on Action).
	Keys []string `cbor:"6,keyasint,omitempty"`

	// Present is false when the resulting value is absent.
	Present bool `cbor:"7,keyasint,omitempty"`

	// OldKeys is the value before the action.
	OldKeys []string `cbor:"8,keyasint,omitempty"`

	// OldPresent is false when the previous value was absent.
	OldPresent bool `cbor:"9,keyasint,omitempty"`

	// Listeners is the number of listeners notified.
	Listeners int `cbor:"10,keyasint,omitempty"`

	// Contributions is the number of filter contributions after the action.
	Contributions int `cbor:"11,keyasint,omitempty"`
}

// Kind identifies which coordinator produced an event.
type Kind uint8

const (
	// KindGroup is a registry-level event.
	KindGroup Kind = 0
	// KindSelection is a selection handle event.
	KindSelection Kind = 1
	// KindFilter is a filter handle event.
	KindFilter Kind = 2
	// KindVar is an event on a custom group variable.
	KindVar Kind = 3
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindGroup:
		return "GROUP"
	case KindSelection:
		return "SELECTION"
	case KindFilter:
		return "FILTER"
	case KindVar:
		return "VAR"
	default:
		return "UNKNOWN"
	}
}

// Action identifies what happened.
type Action uint8

const (
	// ActionCreate means a group record was created.
	ActionCreate Action = 0
	// ActionEvict means an idle group record was removed.
	ActionEvict Action = 1
	// ActionBind means a handle joined a group.
	ActionBind Action = 2
	// ActionUnbind means a handle left a group.
	ActionUnbind Action = 3
	// ActionSet means a handle published keys.
	ActionSet Action = 4
	// ActionClear means a handle withdrew its keys.
	ActionClear Action = 5
	// ActionClose means a handle was closed.
	ActionClose Action = 6
)

// String returns the action name.
func (a Action) String() string {
	switch a {
	case ActionCreate:
		return "CREATE"
	case ActionEvict:
		return "EVICT"
	case ActionBind:
		return "BIND"
	case ActionUnbind:
		return "UNBIND"
	case ActionSet:
		return "SET"
	case ActionClear:
		return "CLEAR"
	case ActionClose:
		return "CLOSE"
	default:
		return "UNKNOWN"
	}
}

// ParseKind parses a kind name (case-insensitive).
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "group":
		return KindGroup, nil
	case "selection", "sel":
		return KindSelection, nil
	case "filter":
		return KindFilter, nil
	case "var":
		return KindVar, nil
	default:
		return 0, &ParseError{Field: "kind", Value: s, Allowed: "group, selection, filter, var"}
	}
}

// ParseAction parses an action name (case-insensitive).
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(s) {
	case "create":
		return ActionCreate, nil
	case "evict":
		return ActionEvict, nil
	case "bind":
		return ActionBind, nil
	case "unbind":
		return ActionUnbind, nil
	case "set":
		return ActionSet, nil
	case "clear":
		return ActionClear, nil
	case "close":
		return ActionClose, nil
	default:
		return 0, &ParseError{Field: "action", Value: s, Allowed: "create, evict, bind, unbind, set, clear, close"}
	}
}
