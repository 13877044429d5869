package interactive

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crosstalk-go/crosstalk/pkg/group"
)

func newTestShell(t *testing.T) (*Shell, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	s := newShell(group.NewRegistry(group.DefaultConfig()), &out)
	t.Cleanup(s.closeAll)
	return s, &out
}

func run(s *Shell, out *bytes.Buffer, lines ...string) string {
	out.Reset()
	for _, line := range lines {
		s.Execute(line)
	}
	return out.String()
}

func TestShellSelectionEvents(t *testing.T) {
	s, out := newTestShell(t)

	got := run(s, out, "new sel a G", "new sel b G")
	assert.Contains(t, got, `Created selection a in group "G"`)

	got = run(s, out, "set a x,y")
	assert.Contains(t, got, `[a] "G" selection: <none> -> [x,y] (from self)`)
	assert.Contains(t, got, `[b] "G" selection: <none> -> [x,y] (from a)`)

	got = run(s, out, "clear b")
	assert.Contains(t, got, `[a] "G" selection: [x,y] -> <none> (from b)`)
}

func TestShellFilterIntersection(t *testing.T) {
	s, out := newTestShell(t)

	run(s, out, "new filter f1 G", "new filter f2 G", "set f1 a,b,c", "set f2 b,c,d")

	got := run(s, out, "show f1")
	assert.Contains(t, got, "value=[b,c] own=[a,b,c]")

	got = run(s, out, "close f2")
	assert.Contains(t, got, `[f1] "G" filter: [b,c] -> [a,b,c] (from f2)`)
	assert.Contains(t, got, "Closed f2")

	got = run(s, out, "show")
	assert.NotContains(t, got, "f2")
}

func TestShellSetKeysWithSpaces(t *testing.T) {
	s, out := newTestShell(t)

	got := run(s, out, "new sel a G", "set a x, y")
	assert.Contains(t, got, "-> [x,y]")
}

func TestShellGroupMove(t *testing.T) {
	s, out := newTestShell(t)

	run(s, out, "new sel a G1", "new sel b G2")
	got := run(s, out, "set a k")
	assert.NotContains(t, got, "[b]")

	got = run(s, out, "group a G2", "set a k")
	assert.Contains(t, got, `a in group "G2"`)
	assert.Contains(t, got, `[b] "G2" selection: <none> -> [k] (from a)`)
}

func TestShellUnboundHandle(t *testing.T) {
	s, out := newTestShell(t)

	got := run(s, out, "new filter f", "set f a")
	assert.Contains(t, got, "Created filter f (unbound)")
	assert.Contains(t, got, "Handle f is not in a group")

	got = run(s, out, "group f G", "unbind f")
	assert.Contains(t, got, "f (unbound)")
}

func TestShellGroups(t *testing.T) {
	s, out := newTestShell(t)

	assert.Contains(t, run(s, out, "groups"), "No groups")

	got := run(s, out, "new sel a G", "set a x", "groups")
	assert.Contains(t, got, `"G"`)
	assert.Contains(t, got, "[x]")

	got = run(s, out, "close a", "groups")
	assert.Contains(t, got, "No groups", "listing groups must not keep idle groups alive")
}

func TestShellErrors(t *testing.T) {
	s, out := newTestShell(t)

	tests := []struct {
		line string
		want string
	}{
		{"bogus", "Unknown command: bogus"},
		{"new", "Usage: new sel|filter <name> [group]"},
		{"new widget w", "Unknown handle kind: widget"},
		{"set nope a", "Unknown handle: nope"},
		{"group a", "Usage: group <name> <group>"},
		{"close", "Usage: close <name>"},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Contains(t, run(s, out, tt.line), tt.want)
		})
	}

	run(s, out, "new sel a")
	assert.Contains(t, run(s, out, "new filter a"), "Handle already exists: a")
}

func TestShellQuit(t *testing.T) {
	s, out := newTestShell(t)

	assert.True(t, s.Execute(""))
	assert.True(t, s.Execute("help"))
	require.False(t, s.Execute("quit"))
	assert.Contains(t, out.String(), "Exiting...")
}

func TestParseKeys(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"a", []string{"a"}},
		{"a,b", []string{"a", "b"}},
		{" a , ,b ", []string{"a", "b"}},
		{",", nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseKeys(tt.in), "parseKeys(%q)", tt.in)
	}
}
