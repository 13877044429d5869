package trace

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlogAdapterLifecycleEvent(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	NewSlogAdapter(logger).Log(Event{Group: "cars", Kind: KindGroup, Action: ActionCreate})

	out := buf.String()
	assert.Contains(t, out, "kind=GROUP")
	assert.NotContains(t, out, "handle=")
	assert.NotContains(t, out, "value=")
}

func TestSlogAdapterBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	NewSlogAdapter(logger).Log(Event{Group: "cars", Kind: KindGroup, Action: ActionCreate})

	assert.Empty(t, buf.String())
}
