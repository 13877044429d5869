package widget

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crosstalk-go/crosstalk/pkg/group"
)

func carsPayload() Payload {
	return Payload{Group: "cars", Keys: KeyList{"Mazda RX4", "Fiat 128", "Valiant"}}
}

func TestBindingRows(t *testing.T) {
	reg := group.NewRegistry(group.DefaultConfig())
	scatter := New(reg)
	table := New(reg)
	require.NoError(t, scatter.Render(carsPayload()))
	require.NoError(t, table.Render(carsPayload()))

	for _, r := range table.Rows() {
		assert.True(t, r.Visible)
		assert.False(t, r.Selected)
	}

	scatter.Select([]string{"Fiat 128"})
	table.FilterKeys([]string{"Fiat 128", "Valiant"})

	assert.Equal(t, []RowState{
		{Key: "Mazda RX4", Selected: false, Visible: false},
		{Key: "Fiat 128", Selected: true, Visible: true},
		{Key: "Valiant", Selected: false, Visible: true},
	}, scatter.Rows())

	table.ClearFilter()
	scatter.ClearSelection()
	for _, r := range scatter.Rows() {
		assert.True(t, r.Visible)
		assert.False(t, r.Selected)
	}
}

func TestBindingEmptyFilterHidesEverything(t *testing.T) {
	reg := group.NewRegistry(group.DefaultConfig())
	a, b := New(reg), New(reg)
	require.NoError(t, a.Render(carsPayload()))
	require.NoError(t, b.Render(carsPayload()))

	a.FilterKeys([]string{"Mazda RX4"})
	b.FilterKeys([]string{"Valiant"})

	for _, r := range a.Rows() {
		assert.False(t, r.Visible, r.Key)
	}
}

func TestBindingBrushReset(t *testing.T) {
	reg := group.NewRegistry(group.DefaultConfig())
	scatter, table := New(reg), New(reg)
	require.NoError(t, scatter.Render(carsPayload()))
	require.NoError(t, table.Render(carsPayload()))

	resets := 0
	scatter.OnBrushReset(func() { resets++ })

	scatter.Select([]string{"Valiant"})
	assert.Equal(t, 0, resets, "own selection keeps the brush")

	table.ClearSelection()
	assert.Equal(t, 0, resets, "foreign clear keeps the brush")

	table.Select([]string{"Fiat 128"})
	assert.Equal(t, 1, resets)
}

func TestBindingOnChange(t *testing.T) {
	reg := group.NewRegistry(group.DefaultConfig())
	b := New(reg)

	repaints := 0
	b.OnChange(func(got *Binding) {
		assert.Same(t, b, got)
		repaints++
	})

	require.NoError(t, b.Render(carsPayload()))
	assert.Equal(t, 1, repaints)

	b.Select([]string{"Valiant"})
	b.FilterKeys([]string{"Valiant"})
	assert.Equal(t, 3, repaints)
}

func TestBindingRenderChangesGroup(t *testing.T) {
	reg := group.NewRegistry(group.DefaultConfig())
	b := New(reg)
	peer := New(reg)
	require.NoError(t, peer.Render(carsPayload()))
	require.NoError(t, b.Render(carsPayload()))

	b.FilterKeys([]string{"Valiant"})
	require.Equal(t, []string{"Valiant"}, peer.Filter().FilteredKeys().Keys)

	require.NoError(t, b.Render(Payload{Group: "planes", Keys: KeyList{"A320"}}))

	name, linked := b.Group()
	assert.True(t, linked)
	assert.Equal(t, "planes", name)
	assert.False(t, peer.Filter().FilteredKeys().IsPresent(), "filter withdrawn from old group")
	assert.Equal(t, []RowState{{Key: "A320", Visible: true}}, b.Rows())
}

func TestBindingRenderUnlinked(t *testing.T) {
	reg := group.NewRegistry(group.DefaultConfig())
	b := New(reg)
	require.NoError(t, b.Render(carsPayload()))

	require.NoError(t, b.Render(Payload{}))

	_, linked := b.Group()
	assert.False(t, linked)
	assert.Empty(t, b.Rows())
	assert.False(t, reg.Has("cars"))
}

func TestBindingRenderRejectsDuplicates(t *testing.T) {
	reg := group.NewRegistry(group.DefaultConfig())
	b := New(reg)

	err := b.Render(Payload{Group: "cars", Keys: KeyList{"a", "a"}})
	assert.ErrorIs(t, err, ErrDuplicateKey)
	_, linked := b.Group()
	assert.False(t, linked)
}

func TestBindingExtraInfo(t *testing.T) {
	reg := group.NewRegistry(group.DefaultConfig())
	b := New(reg, WithExtraInfo(map[string]any{"widget": "scatter"}))
	peer := New(reg)
	require.NoError(t, b.Render(carsPayload()))
	require.NoError(t, peer.Render(carsPayload()))

	var extra map[string]any
	peer.Selection().On(group.EventChange, func(ev group.ChangeEvent) { extra = ev.Extra })

	b.Select([]string{"Valiant"})
	assert.Equal(t, "scatter", extra["widget"])
}

func TestBindingClose(t *testing.T) {
	reg := group.NewRegistry(group.DefaultConfig())
	b, peer := New(reg), New(reg)
	require.NoError(t, b.Render(carsPayload()))
	require.NoError(t, peer.Render(carsPayload()))

	b.Select([]string{"Valiant"})
	b.FilterKeys([]string{"Valiant"})

	repaints := 0
	b.OnChange(func(*Binding) { repaints++ })
	b.Close()
	b.Close()

	assert.Equal(t, []string{"Valiant"}, peer.Selection().Value().Keys, "selection outlives the widget")
	assert.False(t, peer.Filter().FilteredKeys().IsPresent())

	peer.Select([]string{"Fiat 128"})
	assert.Equal(t, 0, repaints)
	assert.NoError(t, b.Render(carsPayload()))
}
