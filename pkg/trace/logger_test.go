package trace

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopLogger(t *testing.T) {
	var l Logger = NoopLogger{}
	l.Log(Event{Group: "g"})
}

func TestMemoryLogger(t *testing.T) {
	m := NewMemoryLogger()
	m.Log(Event{Group: "g1"})
	m.Log(Event{Group: "g2"})

	events := m.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "g1", events[0].Group)

	events[0].Group = "mutated"
	assert.Equal(t, "g1", m.Events()[0].Group, "Events must return a copy")

	m.Reset()
	assert.Empty(t, m.Events())
}

func TestSlogAdapter(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	NewSlogAdapter(logger).Log(Event{
		Group:         "cars",
		HandleID:      "h1",
		Kind:          KindFilter,
		Action:        ActionSet,
		Keys:          []string{"a", "b"},
		Present:       true,
		Contributions: 1,
	})

	out := buf.String()
	for _, want := range []string{"group=cars", "kind=FILTER", "action=SET", "handle=h1", "value=[a,b]", "old_value=<none>", "contributions=1"} {
		assert.True(t, strings.Contains(out, want), "missing %q in %q", want, out)
	}
}

func TestParseKindAndAction(t *testing.T) {
	k, err := ParseKind("Selection")
	require.NoError(t, err)
	assert.Equal(t, KindSelection, k)

	_, err = ParseKind("bogus")
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "kind", pe.Field)

	a, err := ParseAction("EVICT")
	require.NoError(t, err)
	assert.Equal(t, ActionEvict, a)

	_, err = ParseAction("bogus")
	assert.Error(t, err)
}

func TestEnumStrings(t *testing.T) {
	assert.Equal(t, "GROUP", KindGroup.String())
	assert.Equal(t, "UNKNOWN", Kind(99).String())
	assert.Equal(t, "UNBIND", ActionUnbind.String())
	assert.Equal(t, "UNKNOWN", Action(99).String())
}
