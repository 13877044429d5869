package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crosstalk-go/crosstalk/pkg/group"
	"github.com/crosstalk-go/crosstalk/pkg/keys"
	"github.com/crosstalk-go/crosstalk/pkg/trace"
)

func TestFilterIntersection(t *testing.T) {
	reg := group.NewRegistry(group.DefaultConfig())
	f1 := New(reg, WithGroup("G"))
	f2 := New(reg, WithGroup("G"))
	f3 := New(reg, WithGroup("G"))

	f1.Set([]string{"a", "b", "c"}, nil)
	assert.Equal(t, keys.Some([]string{"a", "b", "c"}), f1.FilteredKeys(), "first contribution is the filter")

	f2.Set([]string{"a", "c"}, nil)
	assert.Equal(t, keys.Some([]string{"a", "c"}), f1.FilteredKeys())

	f3.Set([]string{"b"}, nil)
	empty := f2.FilteredKeys()
	assert.True(t, empty.IsPresent(), "disjoint contributions filter everything out")
	assert.Empty(t, empty.Keys)

	f2.Clear(nil)
	assert.Equal(t, keys.Some([]string{"b"}), f3.FilteredKeys())
}

func TestFilterCloseRecomputes(t *testing.T) {
	reg := group.NewRegistry(group.DefaultConfig())
	f1 := New(reg, WithGroup("G"))
	f2 := New(reg, WithGroup("G"))

	var got []group.ChangeEvent
	f2.On(group.EventChange, func(ev group.ChangeEvent) { got = append(got, ev) })

	f1.Set([]string{"a", "b"}, nil)
	f2.Set([]string{"b", "c"}, nil)
	require.Equal(t, []string{"b"}, f2.FilteredKeys().Keys)

	f1.Close()

	require.Len(t, got, 3)
	assert.Equal(t, []string{"b", "c"}, got[2].Value.Keys)
	assert.Equal(t, []string{"b"}, got[2].OldValue.Keys)
	assert.Same(t, f1, got[2].Sender)
	assert.Equal(t, []string{"b", "c"}, f2.FilteredKeys().Keys)
	assert.Equal(t, 1, reg.Group("G").ContributionCount())
}

func TestFilterCloseNotifiesOwnListeners(t *testing.T) {
	reg := group.NewRegistry(group.DefaultConfig())
	f := New(reg, WithGroup("G"))

	var last group.ChangeEvent
	f.On(group.EventChange, func(ev group.ChangeEvent) { last = ev })

	f.Set([]string{"a"}, nil)
	f.Close()

	assert.False(t, last.Value.IsPresent(), "last contribution withdrawn deactivates the filter")
	assert.Equal(t, 0, f.ListenerCount())
	assert.NotPanics(t, f.Close)
}

func TestFilterCommutative(t *testing.T) {
	contributions := [][]string{
		{"a", "b", "c", "d"},
		{"d", "c", "b", "x"},
		{"c", "d", "y"},
	}
	orders := [][]int{{0, 1, 2}, {2, 1, 0}, {1, 2, 0}}

	for _, order := range orders {
		reg := group.NewRegistry(group.DefaultConfig())
		handles := make([]*Handle, len(contributions))
		for i := range handles {
			handles[i] = New(reg, WithGroup("G"))
		}
		for _, i := range order {
			handles[i].Set(contributions[i], nil)
		}
		assert.Equal(t, []string{"c", "d"}, handles[0].FilteredKeys().Keys, "order %v", order)
	}
}

func TestFilterKeys(t *testing.T) {
	reg := group.NewRegistry(group.DefaultConfig())
	f := New(reg, WithGroup("G"))
	assert.Nil(t, f.Keys())

	f.Set([]string{"b", "a", "b"}, nil)
	assert.Equal(t, []string{"a", "b"}, f.Keys())

	f.Clear(nil)
	assert.Nil(t, f.Keys())
}

func TestFilterEmptySetClears(t *testing.T) {
	reg := group.NewRegistry(group.DefaultConfig())
	f1 := New(reg, WithGroup("G"))
	f2 := New(reg, WithGroup("G"))

	f1.Set([]string{"a", "b"}, nil)
	f2.Set([]string{"b"}, nil)
	f2.Set(nil, nil)

	assert.Equal(t, []string{"a", "b"}, f1.FilteredKeys().Keys)
	assert.Nil(t, f2.Keys())
}

func TestFilterClearWithoutContribution(t *testing.T) {
	reg := group.NewRegistry(group.DefaultConfig())
	f1 := New(reg, WithGroup("G"))
	f2 := New(reg, WithGroup("G"))
	f1.Set([]string{"a"}, nil)

	calls := 0
	f1.On(group.EventChange, func(group.ChangeEvent) { calls++ })

	f2.Clear(nil)
	assert.Equal(t, 0, calls)
}

func TestFilterSetGroup(t *testing.T) {
	reg := group.NewRegistry(group.DefaultConfig())
	stay := New(reg, WithGroup("G"))
	mover := New(reg, WithGroup("G"))
	target := New(reg, WithGroup("H"))

	var gEvents []group.ChangeEvent
	stay.On(group.EventChange, func(ev group.ChangeEvent) { gEvents = append(gEvents, ev) })

	stay.Set([]string{"a", "b"}, nil)
	mover.Set([]string{"a"}, nil)
	require.Equal(t, []string{"a"}, stay.FilteredKeys().Keys)

	mover.SetGroup("H")

	assert.Equal(t, []string{"a", "b"}, stay.FilteredKeys().Keys, "old group recomputed")
	require.Len(t, gEvents, 3)
	assert.Same(t, mover, gEvents[2].Sender)

	assert.False(t, target.FilteredKeys().IsPresent(), "contribution not carried over")
	assert.Nil(t, mover.Keys())
	assert.Equal(t, 0, reg.Group("H").ContributionCount())

	mover.Set([]string{"z"}, nil)
	assert.Equal(t, []string{"z"}, target.FilteredKeys().Keys)
	assert.Equal(t, []string{"a", "b"}, stay.FilteredKeys().Keys)
}

func TestFilterUnboundIsNoop(t *testing.T) {
	reg := group.NewRegistry(group.DefaultConfig())
	f := New(reg)

	f.Set([]string{"a"}, nil)
	f.Clear(nil)

	assert.Equal(t, keys.None(), f.FilteredKeys())
	assert.Nil(t, f.Keys())
	assert.Equal(t, 0, reg.Len())
}

func TestFilterEvictsIdleGroup(t *testing.T) {
	reg := group.NewRegistry(group.DefaultConfig())
	f := New(reg, WithGroup("G"))
	f.Set([]string{"a"}, nil)

	f.Close()
	assert.False(t, reg.Has("G"))

	again := New(reg, WithGroup("G"))
	assert.False(t, again.FilteredKeys().IsPresent())
}

func TestFilterTrace(t *testing.T) {
	mem := trace.NewMemoryLogger()
	reg := group.NewRegistry(group.Config{Trace: mem})
	f1 := New(reg, WithGroup("G"))
	f2 := New(reg, WithGroup("G"))

	f1.Set([]string{"a", "b"}, nil)
	f2.Set([]string{"b"}, nil)

	var sets []trace.Event
	for _, ev := range mem.Events() {
		if ev.Kind == trace.KindFilter && ev.Action == trace.ActionSet {
			sets = append(sets, ev)
		}
	}
	require.Len(t, sets, 2)
	assert.Equal(t, f2.ID(), sets[1].HandleID)
	assert.Equal(t, []string{"b"}, sets[1].Keys)
	assert.Equal(t, 2, sets[1].Contributions)
	assert.Equal(t, 2, sets[1].Listeners)
}
