package widget

import (
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Payload errors.
var (
	ErrDuplicateKey = errors.New("duplicate crosstalk key")
	ErrInvalidKeys  = errors.New("crosstalk_key must be a string or a list of strings")
)

// Payload is the linking part of a widget's render data, as emitted by the
// host next to the widget's own row data.
type Payload struct {
	// Group is the crosstalk group the widget joins.
	Group string `json:"crosstalk_group" yaml:"crosstalk_group"`

	// Keys identify the widget's rows, aligned positionally with them.
	// A nil Keys means the widget does not take part in linking.
	Keys KeyList `json:"crosstalk_key" yaml:"crosstalk_key"`
}

// Linked reports whether the payload carries keys.
func (p Payload) Linked() bool {
	return p.Keys != nil
}

// Validate checks that no key appears twice.
func (p Payload) Validate() error {
	seen := make(map[string]int, len(p.Keys))
	for i, k := range p.Keys {
		if j, ok := seen[k]; ok {
			return fmt.Errorf("%w: %q at rows %d and %d", ErrDuplicateKey, k, j, i)
		}
		seen[k] = i
	}
	return nil
}

// DecodePayload decodes a JSON payload.
func DecodePayload(data []byte) (Payload, error) {
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return Payload{}, fmt.Errorf("decode payload: %w", err)
	}
	return p, nil
}

// DecodePayloadYAML decodes a YAML payload.
func DecodePayloadYAML(data []byte) (Payload, error) {
	var p Payload
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Payload{}, fmt.Errorf("decode payload: %w", err)
	}
	return p, nil
}

// KeyList is a list of row keys. Single-row data frames are commonly
// serialised as a bare string, so both forms are accepted.
type KeyList []string

// UnmarshalJSON accepts a string, a list of strings or null.
func (k *KeyList) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*k = nil
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*k = KeyList{s}
		return nil
	}

	var arr []string
	if err := json.Unmarshal(data, &arr); err != nil {
		return ErrInvalidKeys
	}
	*k = arr
	return nil
}

// UnmarshalYAML accepts a scalar or a sequence of scalars.
func (k *KeyList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.ShortTag() == "!!null" {
			*k = nil
			return nil
		}
		*k = KeyList{node.Value}
		return nil
	case yaml.SequenceNode:
		var arr []string
		if err := node.Decode(&arr); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidKeys, err)
		}
		if arr == nil {
			arr = []string{}
		}
		*k = arr
		return nil
	default:
		return ErrInvalidKeys
	}
}
