package trace

import "fmt"

// ParseError reports an unrecognised enum name.
type ParseError struct {
	Field   string
	Value   string
	Allowed string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid %s: %s (must be %s)", e.Field, e.Value, e.Allowed)
}
