package group

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crosstalk-go/crosstalk/pkg/keys"
	"github.com/crosstalk-go/crosstalk/pkg/trace"
)

type testSender string

func (s testSender) ID() string { return string(s) }

func someKeys(ks ...string) keys.Optional {
	return keys.Some(ks)
}

func TestVarSetBroadcasts(t *testing.T) {
	reg := NewRegistry(DefaultConfig())
	v := reg.Group("G").Var("highlight")

	var got []ChangeEvent
	v.On(EventChange, func(ev ChangeEvent) { got = append(got, ev) })

	sent := v.Set(someKeys("x", "y"), testSender("h1"), map[string]any{"source": "brush"})
	require.True(t, sent)
	require.Len(t, got, 1)

	ev := got[0]
	assert.Equal(t, "G", ev.Group)
	assert.Equal(t, "highlight", ev.Var)
	assert.Equal(t, []string{"x", "y"}, ev.Value.Keys)
	assert.False(t, ev.OldValue.IsPresent())
	assert.Equal(t, "h1", ev.Sender.ID())
	assert.Equal(t, "brush", ev.Extra["source"])

	v.Set(someKeys("z"), testSender("h2"), nil)
	require.Len(t, got, 2)
	assert.Equal(t, []string{"z"}, got[1].Value.Keys)
	assert.Equal(t, []string{"x", "y"}, got[1].OldValue.Keys)
}

func TestVarSetAbsentToAbsentIsNoop(t *testing.T) {
	reg := NewRegistry(DefaultConfig())
	v := reg.Group("G").Selection()

	calls := 0
	v.On(EventChange, func(ChangeEvent) { calls++ })

	assert.False(t, v.Set(keys.None(), nil, nil))
	assert.Equal(t, 0, calls)

	v.Set(someKeys("a"), nil, nil)
	assert.True(t, v.Set(keys.None(), nil, nil))
	assert.Equal(t, 2, calls)
}

func TestVarSetSameValueStillBroadcasts(t *testing.T) {
	reg := NewRegistry(DefaultConfig())
	v := reg.Group("G").Selection()

	calls := 0
	v.On(EventChange, func(ChangeEvent) { calls++ })

	v.Set(someKeys("a"), nil, nil)
	v.Set(someKeys("a"), nil, nil)
	assert.Equal(t, 2, calls)
}

func TestVarGetReturnsCopy(t *testing.T) {
	reg := NewRegistry(DefaultConfig())
	v := reg.Group("G").Selection()

	in := []string{"a", "b"}
	v.Set(keys.Some(in), nil, nil)
	in[0] = "mutated"

	got := v.Get()
	assert.Equal(t, []string{"a", "b"}, got.Keys)
	got.Keys[1] = "mutated"
	assert.Equal(t, []string{"a", "b"}, v.Get().Keys)
}

func TestVarDerivedFilterRejectsDirectSet(t *testing.T) {
	reg := NewRegistry(DefaultConfig())
	g := reg.Group("G")

	calls := 0
	g.Filter().On(EventChange, func(ChangeEvent) { calls++ })

	assert.False(t, g.Filter().Set(someKeys("a"), nil, nil))
	assert.Equal(t, 0, calls)
	assert.False(t, g.FilteredKeys().IsPresent())
}

func TestVarReentrantSet(t *testing.T) {
	reg := NewRegistry(DefaultConfig())
	v := reg.Group("G").Selection()

	var seen [][]string
	v.On(EventChange, func(ev ChangeEvent) {
		seen = append(seen, ev.Value.Keys)
		if ev.Value.IsPresent() && ev.Value.Keys[0] == "a" {
			v.Set(someKeys("b"), nil, nil)
		}
	})

	v.Set(someKeys("a"), nil, nil)

	assert.Equal(t, [][]string{{"a"}, {"b"}}, seen)
	assert.Equal(t, []string{"b"}, v.Get().Keys)
}

func TestVarTracesChanges(t *testing.T) {
	mem := trace.NewMemoryLogger()
	reg := NewRegistry(Config{Trace: mem, RetainIdleGroups: true})
	v := reg.Group("G").Selection()
	v.On(EventChange, func(ChangeEvent) {})

	v.Set(someKeys("a"), testSender("h1"), nil)
	v.Set(keys.None(), testSender("h1"), nil)

	var changes []trace.Event
	for _, ev := range mem.Events() {
		if ev.Kind == trace.KindSelection {
			changes = append(changes, ev)
		}
	}
	require.Len(t, changes, 2)

	assert.Equal(t, trace.ActionSet, changes[0].Action)
	assert.Equal(t, "h1", changes[0].HandleID)
	assert.Equal(t, []string{"a"}, changes[0].Keys)
	assert.True(t, changes[0].Present)
	assert.Equal(t, 1, changes[0].Listeners)

	assert.Equal(t, trace.ActionClear, changes[1].Action)
	assert.False(t, changes[1].Present)
	assert.Equal(t, []string{"a"}, changes[1].OldKeys)
	assert.True(t, changes[1].OldPresent)
}

func TestGroupVarNames(t *testing.T) {
	reg := NewRegistry(DefaultConfig())
	g := reg.Group("G")

	assert.Equal(t, []string{VarFilter, VarSelection}, g.VarNames())

	custom := g.Var("zoom")
	assert.Same(t, custom, g.Var("zoom"))
	assert.Same(t, g, custom.Group())
	assert.Equal(t, "zoom", custom.Name())
	assert.Equal(t, []string{VarFilter, VarSelection, "zoom"}, g.VarNames())
}
