package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crosstalk-go/crosstalk/pkg/group"
	"github.com/crosstalk-go/crosstalk/pkg/keys"
)

func record(h *Handle) *[]group.ChangeEvent {
	var events []group.ChangeEvent
	h.On(group.EventChange, func(ev group.ChangeEvent) {
		events = append(events, ev)
	})
	return &events
}

func TestSelectionLastWriterWins(t *testing.T) {
	reg := group.NewRegistry(group.DefaultConfig())
	h1 := New(reg, WithGroup("G"))
	h2 := New(reg, WithGroup("G"))
	got1, got2 := record(h1), record(h2)

	h1.Set([]string{"x", "y"}, nil)
	h2.Set([]string{"z"}, nil)

	for _, got := range []*[]group.ChangeEvent{got1, got2} {
		require.Len(t, *got, 2)
		last := (*got)[1]
		assert.Equal(t, []string{"z"}, last.Value.Keys)
		assert.Equal(t, []string{"x", "y"}, last.OldValue.Keys)
		assert.Same(t, h2, last.Sender)
	}

	assert.Equal(t, keys.Some([]string{"z"}), h1.Value())
	assert.True(t, h2.IsSender((*got1)[1]))
	assert.False(t, h1.IsSender((*got1)[1]))
}

func TestSelectionKeepsCallerOrder(t *testing.T) {
	reg := group.NewRegistry(group.DefaultConfig())
	h := New(reg, WithGroup("G"))

	in := []string{"Mazda RX4", "Fiat 128", "AMC Javelin"}
	h.Set(in, nil)
	in[0] = "mutated"

	assert.Equal(t, []string{"Mazda RX4", "Fiat 128", "AMC Javelin"}, h.Value().Keys)
}

func TestSelectionClear(t *testing.T) {
	reg := group.NewRegistry(group.DefaultConfig())
	h := New(reg, WithGroup("G"))
	got := record(h)

	h.Set([]string{"a"}, nil)
	h.Clear(nil)

	require.Len(t, *got, 2)
	assert.False(t, (*got)[1].Value.IsPresent())
	assert.Equal(t, []string{"a"}, (*got)[1].OldValue.Keys)
	assert.False(t, h.Value().IsPresent())

	h.Clear(nil)
	assert.Len(t, *got, 2, "clearing an idle selection sends nothing")
}

func TestSelectionEmptySetClears(t *testing.T) {
	for name, in := range map[string][]string{"nil": nil, "empty": {}} {
		t.Run(name, func(t *testing.T) {
			reg := group.NewRegistry(group.DefaultConfig())
			h := New(reg, WithGroup("G"))
			h.Set([]string{"a"}, nil)

			h.Set(in, nil)
			assert.Equal(t, keys.None(), h.Value())
		})
	}
}

func TestSelectionExtraInfo(t *testing.T) {
	reg := group.NewRegistry(group.DefaultConfig())
	h := New(reg, WithGroup("G"), WithExtraInfo(map[string]any{"widget": "scatter"}))
	got := record(h)

	h.Set([]string{"a"}, map[string]any{"brush": true})
	h.Set([]string{"b"}, nil)

	require.Len(t, *got, 2)
	assert.Equal(t, map[string]any{"widget": "scatter", "brush": true}, (*got)[0].Extra)
	assert.Equal(t, map[string]any{"widget": "scatter"}, (*got)[1].Extra)
}

func TestSelectionCloseKeepsGroupValue(t *testing.T) {
	reg := group.NewRegistry(group.DefaultConfig())
	h1 := New(reg, WithGroup("G"))
	h2 := New(reg, WithGroup("G"))
	got1 := record(h1)

	h1.Set([]string{"a"}, nil)
	h1.Close()

	assert.Equal(t, []string{"a"}, h2.Value().Keys)
	assert.False(t, h1.Value().IsPresent(), "closed handles read nothing")

	h2.Set([]string{"b"}, nil)
	assert.Len(t, *got1, 1, "closed handles receive nothing")

	assert.NotPanics(t, h1.Close)
}

func TestSelectionUnboundIsNoop(t *testing.T) {
	reg := group.NewRegistry(group.DefaultConfig())
	h := New(reg)
	got := record(h)

	h.Set([]string{"a"}, nil)
	h.Clear(nil)

	assert.False(t, h.Value().IsPresent())
	assert.Empty(t, *got)
	assert.Equal(t, 0, reg.Len())
	assert.False(t, h.Off(group.EventChange, group.SubscriptionID(12345)))
}

func TestSelectionSetGroupLater(t *testing.T) {
	reg := group.NewRegistry(group.DefaultConfig())
	other := New(reg, WithGroup("G"))
	other.Set([]string{"a"}, nil)

	h := New(reg)
	got := record(h)
	h.SetGroup("G")

	assert.Equal(t, []string{"a"}, h.Value().Keys, "reads reflect the joined group")

	other.Set([]string{"b"}, nil)
	require.Len(t, *got, 1)
	assert.Same(t, other, (*got)[0].Sender)
}

func TestSelectionSetGroupDoesNotCarryState(t *testing.T) {
	reg := group.NewRegistry(group.DefaultConfig())
	keep := New(reg, WithGroup("G"))
	h := New(reg, WithGroup("G"))

	h.Set([]string{"a"}, nil)
	h.SetGroup("H")

	assert.False(t, h.Value().IsPresent())
	assert.Equal(t, []string{"a"}, keep.Value().Keys)
}

func TestSelectionForeignBrushConvention(t *testing.T) {
	reg := group.NewRegistry(group.DefaultConfig())
	scatter := New(reg, WithGroup("cars"))
	table := New(reg, WithGroup("cars"))

	brushActive := true
	scatter.On(group.EventChange, func(ev group.ChangeEvent) {
		if !scatter.IsSender(ev) && ev.Value.IsPresent() {
			brushActive = false
		}
	})

	scatter.Set([]string{"a"}, nil)
	assert.True(t, brushActive)

	table.Set([]string{"b"}, nil)
	assert.False(t, brushActive)
}

func TestSelectionReentrantListener(t *testing.T) {
	reg := group.NewRegistry(group.DefaultConfig())
	h := New(reg, WithGroup("G"))

	// Expands any single-key selection into its pair.
	var seen []string
	h.On(group.EventChange, func(ev group.ChangeEvent) {
		seen = append(seen, ev.Value.String())
		if ev.Value.Len() == 1 {
			h.Set(append(ev.Value.Keys, ev.Value.Keys[0]+"'"), nil)
		}
	})

	h.Set([]string{"a"}, nil)

	assert.Equal(t, []string{"[a]", "[a,a']"}, seen)
	assert.Equal(t, []string{"a", "a'"}, h.Value().Keys)
}
