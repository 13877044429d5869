// Package commands implements the xtalk-log CLI commands.
package commands

import (
	"fmt"
	"time"

	"github.com/crosstalk-go/crosstalk/pkg/trace"
)

// Criteria holds the raw filter flags shared by view and filter.
type Criteria struct {
	Group     string
	Handle    string
	Kind      string
	Action    string
	TimeStart string
	TimeEnd   string
}

// Filter parses c into a trace.Filter.
func (c Criteria) Filter() (trace.Filter, error) {
	f := trace.Filter{
		Group:    c.Group,
		HandleID: c.Handle,
	}

	if c.Kind != "" {
		k, err := trace.ParseKind(c.Kind)
		if err != nil {
			return f, err
		}
		f.Kind = &k
	}

	if c.Action != "" {
		a, err := trace.ParseAction(c.Action)
		if err != nil {
			return f, err
		}
		f.Action = &a
	}

	if c.TimeStart != "" {
		t, err := time.Parse(time.RFC3339, c.TimeStart)
		if err != nil {
			return f, fmt.Errorf("invalid time-start format: %w", err)
		}
		f.TimeStart = &t
	}

	if c.TimeEnd != "" {
		t, err := time.Parse(time.RFC3339, c.TimeEnd)
		if err != nil {
			return f, fmt.Errorf("invalid time-end format: %w", err)
		}
		f.TimeEnd = &t
	}

	return f, nil
}
