// Package interactive provides the xtalk REPL: create selection and filter
// handles, move them between groups and watch the change events they see.
package interactive

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/chzyer/readline"

	"github.com/crosstalk-go/crosstalk/pkg/filter"
	"github.com/crosstalk-go/crosstalk/pkg/group"
	"github.com/crosstalk-go/crosstalk/pkg/keys"
	"github.com/crosstalk-go/crosstalk/pkg/selection"
)

// handle is one named participant created in the shell.
type handle struct {
	name string
	kind string
	sel  *selection.Handle
	filt *filter.Handle
}

func (h *handle) member() *group.Member {
	if h.sel != nil {
		return h.sel.Member
	}
	return h.filt.Member
}

func (h *handle) value() keys.Optional {
	if h.sel != nil {
		return h.sel.Value()
	}
	return h.filt.FilteredKeys()
}

// Shell handles interactive mode for xtalk.
type Shell struct {
	reg     *group.Registry
	rl      *readline.Instance
	out     io.Writer
	handles map[string]*handle
	order   []string
}

// New creates a shell operating on reg.
func New(reg *group.Registry) (*Shell, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "xtalk> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	s := newShell(reg, rl.Stdout())
	s.rl = rl
	return s, nil
}

func newShell(reg *group.Registry, out io.Writer) *Shell {
	return &Shell{
		reg:     reg,
		out:     out,
		handles: make(map[string]*handle),
	}
}

// Stdout returns a writer that coordinates with the readline prompt.
func (s *Shell) Stdout() io.Writer {
	return s.out
}

// Run starts the interactive command loop. It returns when the user quits
// or ctx is done; every handle is closed on the way out.
func (s *Shell) Run(ctx context.Context, cancel context.CancelFunc) {
	defer s.rl.Close()
	defer s.closeAll()

	s.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := s.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(s.out, "Exiting...")
			cancel()
			return
		}

		if !s.Execute(line) {
			cancel()
			return
		}
	}
}

// Execute runs one command line. It returns false when the shell should exit.
func (s *Shell) Execute(line string) bool {
	parts := strings.Fields(strings.TrimSpace(line))
	if len(parts) == 0 {
		return true
	}
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "?":
		s.printHelp()
	case "new", "n":
		s.cmdNew(args)
	case "group", "g":
		s.cmdGroup(args)
	case "unbind":
		s.cmdUnbind(args)
	case "set", "s":
		s.cmdSet(args)
	case "clear", "c":
		s.cmdClear(args)
	case "close":
		s.cmdClose(args)
	case "show":
		s.cmdShow(args)
	case "groups":
		s.cmdGroups()
	case "quit", "exit", "q":
		fmt.Fprintln(s.out, "Exiting...")
		return false
	default:
		fmt.Fprintf(s.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return true
}

func (s *Shell) printHelp() {
	fmt.Fprintln(s.out, `
Commands:
  new sel|filter <name> [group]  Create a handle, optionally bound to a group
  group <name> <group>           Move a handle to another group
  unbind <name>                  Leave the current group
  set <name> k1,k2,...           Select keys, or contribute a filter
  clear <name>                   Clear the handle's selection or filter
  close <name>                   Close the handle
  show [name]                    Show one handle, or all of them
  groups                         List groups and their current values
  help                           Show this help
  quit                           Exit`)
}

func (s *Shell) cmdNew(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(s.out, "Usage: new sel|filter <name> [group]")
		return
	}
	name := args[1]
	if _, ok := s.handles[name]; ok {
		fmt.Fprintf(s.out, "Handle already exists: %s\n", name)
		return
	}

	h := &handle{name: name}
	switch strings.ToLower(args[0]) {
	case "sel", "selection":
		h.kind = "selection"
		h.sel = selection.New(s.reg)
	case "filter", "filt":
		h.kind = "filter"
		h.filt = filter.New(s.reg)
	default:
		fmt.Fprintf(s.out, "Unknown handle kind: %s (want sel or filter)\n", args[0])
		return
	}

	m := h.member()
	m.On(group.EventChange, func(ev group.ChangeEvent) {
		s.printEvent(h, ev)
	})
	s.handles[name] = h
	s.order = append(s.order, name)

	if len(args) > 2 {
		m.SetGroup(args[2])
	}
	fmt.Fprintf(s.out, "Created %s %s\n", h.kind, s.describe(h))
}

func (s *Shell) cmdGroup(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(s.out, "Usage: group <name> <group>")
		return
	}
	h := s.lookup(args[0])
	if h == nil {
		return
	}
	h.member().SetGroup(args[1])
	fmt.Fprintf(s.out, "%s\n", s.describe(h))
}

func (s *Shell) cmdUnbind(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.out, "Usage: unbind <name>")
		return
	}
	h := s.lookup(args[0])
	if h == nil {
		return
	}
	h.member().Unbind()
	fmt.Fprintf(s.out, "%s\n", s.describe(h))
}

func (s *Shell) cmdSet(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(s.out, "Usage: set <name> k1,k2,...")
		return
	}
	h := s.lookup(args[0])
	if h == nil {
		return
	}
	if _, bound := h.member().GroupName(); !bound {
		fmt.Fprintf(s.out, "Handle %s is not in a group (use 'group %s <group>')\n", h.name, h.name)
		return
	}
	ks := parseKeys(strings.Join(args[1:], ","))
	if h.sel != nil {
		h.sel.Set(ks, nil)
	} else {
		h.filt.Set(ks, nil)
	}
}

func (s *Shell) cmdClear(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.out, "Usage: clear <name>")
		return
	}
	h := s.lookup(args[0])
	if h == nil {
		return
	}
	if h.sel != nil {
		h.sel.Clear(nil)
	} else {
		h.filt.Clear(nil)
	}
}

func (s *Shell) cmdClose(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.out, "Usage: close <name>")
		return
	}
	h := s.lookup(args[0])
	if h == nil {
		return
	}
	h.member().Close()
	delete(s.handles, h.name)
	s.order = slices.DeleteFunc(s.order, func(n string) bool { return n == h.name })
	fmt.Fprintf(s.out, "Closed %s\n", h.name)
}

func (s *Shell) cmdShow(args []string) {
	if len(args) > 0 {
		if h := s.lookup(args[0]); h != nil {
			s.showHandle(h)
		}
		return
	}
	if len(s.order) == 0 {
		fmt.Fprintln(s.out, "No handles (use 'new' to create one)")
		return
	}
	for _, name := range s.order {
		s.showHandle(s.handles[name])
	}
}

func (s *Shell) showHandle(h *handle) {
	fmt.Fprintf(s.out, "%-10s %-9s %s value=%s", h.name, h.kind, s.describe(h), h.value())
	if h.filt != nil {
		if own := h.filt.Keys(); own != nil {
			fmt.Fprintf(s.out, " own=[%s]", strings.Join(own, ","))
		}
	}
	fmt.Fprintln(s.out)
}

func (s *Shell) cmdGroups() {
	names := s.reg.Groups()
	if len(names) == 0 {
		fmt.Fprintln(s.out, "No groups")
		return
	}
	fmt.Fprintf(s.out, "%-16s %-5s %-20s %s\n", "GROUP", "REFS", "SELECTION", "FILTER")
	for _, name := range names {
		g, ok := s.reg.Lookup(name)
		if !ok {
			continue
		}
		fmt.Fprintf(s.out, "%-16s %-5d %-20s %s\n",
			quote(name), s.reg.RefCount(name), g.Selection().Get(), g.FilteredKeys())
	}
}

func (s *Shell) printEvent(h *handle, ev group.ChangeEvent) {
	from := "other"
	if ev.Sender == nil {
		from = "-"
	} else if h.member().IsSender(ev) {
		from = "self"
	} else if src := s.nameOf(ev.Sender.ID()); src != "" {
		from = src
	}
	fmt.Fprintf(s.out, "[%s] %s %s: %s -> %s (from %s)\n",
		h.name, quote(ev.Group), ev.Var, ev.OldValue, ev.Value, from)
}

func (s *Shell) nameOf(id string) string {
	for name, h := range s.handles {
		if h.member().ID() == id {
			return name
		}
	}
	return ""
}

func (s *Shell) lookup(name string) *handle {
	h, ok := s.handles[name]
	if !ok {
		fmt.Fprintf(s.out, "Unknown handle: %s\n", name)
		return nil
	}
	return h
}

func (s *Shell) describe(h *handle) string {
	if name, ok := h.member().GroupName(); ok {
		return fmt.Sprintf("%s in group %s", h.name, quote(name))
	}
	return h.name + " (unbound)"
}

func (s *Shell) closeAll() {
	for _, name := range s.order {
		s.handles[name].member().Close()
	}
	s.handles = make(map[string]*handle)
	s.order = nil
}

// parseKeys splits a comma-separated key list, dropping empty entries.
func parseKeys(arg string) []string {
	var ks []string
	for _, k := range strings.Split(arg, ",") {
		if k = strings.TrimSpace(k); k != "" {
			ks = append(ks, k)
		}
	}
	return ks
}

func quote(name string) string {
	return fmt.Sprintf("%q", name)
}
