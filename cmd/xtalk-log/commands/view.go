package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/crosstalk-go/crosstalk/pkg/trace"
)

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event trace.Event) {
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	handle := shortenID(event.HandleID)
	if handle == "" {
		handle = "-"
	}

	fmt.Fprintf(w, "%s [group:%s] [handle:%s] %s %s\n",
		ts, quoteGroup(event.Group), handle, event.Kind, event.Action)

	switch event.Action {
	case trace.ActionSet, trace.ActionClear:
		fmt.Fprintf(w, "  %s -> %s\n",
			formatKeys(event.OldKeys, event.OldPresent),
			formatKeys(event.Keys, event.Present))
		fmt.Fprintf(w, "  Listeners: %d", event.Listeners)
		if event.Kind == trace.KindFilter {
			fmt.Fprintf(w, "  Contributions: %d", event.Contributions)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w)
}

// shortenID returns the first 8 characters of a handle ID.
func shortenID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

// quoteGroup makes the empty group name visible.
func quoteGroup(name string) string {
	if name == "" {
		return `""`
	}
	return name
}

func formatKeys(ks []string, present bool) string {
	if !present {
		return "<none>"
	}
	return "[" + strings.Join(ks, ", ") + "]"
}

// RunView prints every event matching filter.
func RunView(path string, filter trace.Filter, output io.Writer) error {
	reader, err := trace.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open trace file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(output, event)
	}
	return nil
}
