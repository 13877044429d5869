package scenario

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/crosstalk-go/crosstalk/pkg/keys"
)

// Handle kinds.
const (
	KindSelection = "selection"
	KindFilter    = "filter"
)

// Step actions.
const (
	ActionNew         = "new"
	ActionSet         = "set"
	ActionClear       = "clear"
	ActionSetGroup    = "set_group"
	ActionUnbind      = "unbind"
	ActionClose       = "close"
	ActionSubscribe   = "subscribe"
	ActionUnsubscribe = "unsubscribe"
	ActionCheck       = "check"
)

// Scenario is a scripted sequence of handle operations.
type Scenario struct {
	// ID is the unique scenario identifier.
	ID string `yaml:"id"`

	// Name is a human-readable name.
	Name string `yaml:"name"`

	// Description explains what the scenario demonstrates.
	Description string `yaml:"description,omitempty"`

	// Registry configures the registry the scenario runs against.
	Registry RegistrySpec `yaml:"registry,omitempty"`

	// Handles are created, in order, before the first step.
	Handles []HandleSpec `yaml:"handles"`

	// Steps are executed in order.
	Steps []Step `yaml:"steps"`

	// Tags for selecting scenarios.
	Tags []string `yaml:"tags,omitempty"`

	// File is the path the scenario was loaded from, if any.
	File string `yaml:"-"`
}

// RegistrySpec configures the scenario's registry.
type RegistrySpec struct {
	RetainIdleGroups bool `yaml:"retain_idle_groups"`
}

// HandleSpec declares a named handle.
type HandleSpec struct {
	// Name identifies the handle within the scenario.
	Name string `yaml:"name"`

	// Kind is "selection" or "filter".
	Kind string `yaml:"kind"`

	// Group, when set, binds the handle at construction.
	Group *string `yaml:"group,omitempty"`

	// Silent handles start without an event recorder.
	Silent bool `yaml:"silent,omitempty"`
}

// Step is one action on one handle.
type Step struct {
	// Action is one of the Action constants.
	Action string `yaml:"action"`

	// Handle names the handle the action applies to.
	Handle string `yaml:"handle,omitempty"`

	// Kind is the handle kind for "new".
	Kind string `yaml:"kind,omitempty"`

	// Group is the group for "new" and "set_group".
	Group *string `yaml:"group,omitempty"`

	// Keys are the keys for "set".
	Keys []string `yaml:"keys,omitempty"`

	// Extra is per-call extra info for "set" and "clear".
	Extra map[string]any `yaml:"extra,omitempty"`

	// Expect lists what must hold after the action.
	Expect *Expect `yaml:"expect,omitempty"`

	// Description explains the step.
	Description string `yaml:"description,omitempty"`
}

// Expect lists checks run after a step. Unset fields are not checked.
type Expect struct {
	// Handle overrides the step's handle as the subject of the checks.
	Handle string

	// FilteredKeys is the group's filter intersection, compared as a set.
	FilteredKeys *keys.Optional

	// Value is the group's selection, compared in order.
	Value *keys.Optional

	// Keys is the subject's own filter contribution.
	Keys *keys.Optional

	// LastEvent is the last change event the subject observed.
	LastEvent *EventExpect

	// EventCount is the number of events the subject observed.
	EventCount *int

	// Contributions is the number of filter contributions in the
	// subject's group.
	Contributions *int

	// Groups is the sorted list of group names in the registry.
	Groups []string

	// Extra entries must appear in the last event's extra info.
	Extra map[string]any
}

// EventExpect describes an expected change event.
type EventExpect struct {
	Value    *keys.Optional
	OldValue *keys.Optional

	// Sender is the name of the handle that triggered the event.
	Sender *string
}

// UnmarshalYAML decodes an expectation, keeping explicit nulls.
func (e *Expect) UnmarshalYAML(node *yaml.Node) error {
	fields, err := mappingFields(node)
	if err != nil {
		return err
	}

	for name, value := range fields {
		var err error
		switch name {
		case "handle":
			err = value.Decode(&e.Handle)
		case "filtered_keys":
			e.FilteredKeys, err = decodeOptional(value)
		case "value":
			e.Value, err = decodeOptional(value)
		case "keys":
			e.Keys, err = decodeOptional(value)
		case "last_event":
			e.LastEvent = &EventExpect{}
			err = value.Decode(e.LastEvent)
		case "event_count":
			e.EventCount, err = decodeInt(value)
		case "contributions":
			e.Contributions, err = decodeInt(value)
		case "groups":
			e.Groups = []string{}
			err = value.Decode(&e.Groups)
		case "extra":
			err = value.Decode(&e.Extra)
		default:
			return fmt.Errorf("line %d: unknown expectation %q", value.Line, name)
		}
		if err != nil {
			return fmt.Errorf("expectation %s: %w", name, err)
		}
	}
	return nil
}

// UnmarshalYAML decodes an event expectation, keeping explicit nulls.
func (e *EventExpect) UnmarshalYAML(node *yaml.Node) error {
	fields, err := mappingFields(node)
	if err != nil {
		return err
	}

	for name, value := range fields {
		var err error
		switch name {
		case "value":
			e.Value, err = decodeOptional(value)
		case "old_value":
			e.OldValue, err = decodeOptional(value)
		case "sender":
			var s string
			err = value.Decode(&s)
			e.Sender = &s
		default:
			return fmt.Errorf("line %d: unknown event field %q", value.Line, name)
		}
		if err != nil {
			return fmt.Errorf("last_event %s: %w", name, err)
		}
	}
	return nil
}

func mappingFields(node *yaml.Node) (map[string]*yaml.Node, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: expected a mapping", node.Line)
	}
	fields := make(map[string]*yaml.Node, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		fields[node.Content[i].Value] = node.Content[i+1]
	}
	return fields, nil
}

func decodeOptional(node *yaml.Node) (*keys.Optional, error) {
	if node.ShortTag() == "!!null" {
		none := keys.None()
		return &none, nil
	}
	var ks []string
	if err := node.Decode(&ks); err != nil {
		return nil, err
	}
	some := keys.Some(ks)
	return &some, nil
}

func decodeInt(node *yaml.Node) (*int, error) {
	n, err := strconv.Atoi(node.Value)
	if err != nil {
		return nil, fmt.Errorf("line %d: %q is not an integer", node.Line, node.Value)
	}
	return &n, nil
}

// LoadError describes a scenario that could not be loaded.
type LoadError struct {
	// File is the path that failed to load.
	File string

	// Message describes the error.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

func (e *LoadError) Error() string {
	msg := e.Message
	if e.File != "" {
		msg = e.File + ": " + msg
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}
