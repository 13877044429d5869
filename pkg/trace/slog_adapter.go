package trace

import (
	"context"
	"log/slog"
	"strings"
)

// SlogAdapter writes coordination events to an slog.Logger at Debug level.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a SlogAdapter writing to logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("group", event.Group),
		slog.String("kind", event.Kind.String()),
		slog.String("action", event.Action.String()),
	}
	if event.HandleID != "" {
		attrs = append(attrs, slog.String("handle", event.HandleID))
	}

	switch event.Action {
	case ActionSet, ActionClear:
		attrs = append(attrs,
			slog.String("value", formatKeys(event.Keys, event.Present)),
			slog.String("old_value", formatKeys(event.OldKeys, event.OldPresent)),
			slog.Int("listeners", event.Listeners),
		)
		if event.Kind == KindFilter {
			attrs = append(attrs, slog.Int("contributions", event.Contributions))
		}
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "crosstalk", attrs...)
}

// formatKeys renders a key list, or "<none>" when absent.
func formatKeys(ks []string, present bool) string {
	if !present {
		return "<none>"
	}
	return "[" + strings.Join(ks, ",") + "]"
}

var _ Logger = (*SlogAdapter)(nil)
