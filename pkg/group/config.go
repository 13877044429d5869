package group

import (
	"log/slog"

	"github.com/crosstalk-go/crosstalk/pkg/trace"
)

// Config configures a Registry.
type Config struct {
	// RetainIdleGroups keeps group records after their last handle leaves.
	RetainIdleGroups bool

	// Logger receives operational logs (listener panics, group lifecycle).
	// Defaults to a logger that discards everything.
	Logger *slog.Logger

	// Trace receives coordination events. Defaults to trace.NoopLogger.
	Trace trace.Logger
}

// DefaultConfig returns the default registry configuration.
func DefaultConfig() Config {
	return Config{
		Logger: slog.New(slog.DiscardHandler),
		Trace:  trace.NoopLogger{},
	}
}
