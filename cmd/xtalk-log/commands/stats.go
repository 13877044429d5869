package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/crosstalk-go/crosstalk/pkg/trace"
)

// Stats holds aggregate statistics about a trace file.
type Stats struct {
	TotalEvents    int
	EventsByKind   map[trace.Kind]int
	EventsByAction map[trace.Action]int
	Groups         map[string]*GroupStats
	Handles        map[string]bool
	TimeRange      struct {
		Start time.Time
		End   time.Time
	}
}

// GroupStats holds statistics for one group.
type GroupStats struct {
	Events     int
	Selections int
	Filters    int
	Created    int
	Evicted    int

	// MaxContributions is the largest number of simultaneous filter
	// contributions seen.
	MaxContributions int
}

// RunStats analyzes the trace file and prints statistics.
func RunStats(path string, w io.Writer) error {
	reader, err := trace.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open trace file: %w", err)
	}
	defer reader.Close()

	stats := &Stats{
		EventsByKind:   make(map[trace.Kind]int),
		EventsByAction: make(map[trace.Action]int),
		Groups:         make(map[string]*GroupStats),
		Handles:        make(map[string]bool),
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		stats.add(event)
	}

	printStats(w, stats)
	return nil
}

func (s *Stats) add(event trace.Event) {
	s.TotalEvents++
	s.EventsByKind[event.Kind]++
	s.EventsByAction[event.Action]++

	if s.TimeRange.Start.IsZero() || event.Timestamp.Before(s.TimeRange.Start) {
		s.TimeRange.Start = event.Timestamp
	}
	if event.Timestamp.After(s.TimeRange.End) {
		s.TimeRange.End = event.Timestamp
	}

	if event.HandleID != "" {
		s.Handles[event.HandleID] = true
	}

	g, ok := s.Groups[event.Group]
	if !ok {
		g = &GroupStats{}
		s.Groups[event.Group] = g
	}
	g.Events++

	switch event.Action {
	case trace.ActionCreate:
		g.Created++
	case trace.ActionEvict:
		g.Evicted++
	case trace.ActionSet, trace.ActionClear:
		switch event.Kind {
		case trace.KindSelection:
			g.Selections++
		case trace.KindFilter:
			g.Filters++
			g.MaxContributions = max(g.MaxContributions, event.Contributions)
		}
	}
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== crosstalk Trace Statistics ===")
	fmt.Fprintln(w)

	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Millisecond))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintf(w, "Handles:      %d\n", len(stats.Handles))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Kind:")
	for _, k := range []trace.Kind{trace.KindGroup, trace.KindSelection, trace.KindFilter, trace.KindVar} {
		if count := stats.EventsByKind[k]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", k.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Action:")
	for a := trace.ActionCreate; a <= trace.ActionClose; a++ {
		if count := stats.EventsByAction[a]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", a.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Groups: %d\n", len(stats.Groups))
	names := make([]string, 0, len(stats.Groups))
	for name := range stats.Groups {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		g := stats.Groups[name]
		fmt.Fprintf(w, "  [%s] %d events, %d selection changes, %d filter changes\n",
			quoteGroup(name), g.Events, g.Selections, g.Filters)
		if g.MaxContributions > 0 {
			fmt.Fprintf(w, "           Max contributions: %d\n", g.MaxContributions)
		}
		if g.Created > 0 || g.Evicted > 0 {
			fmt.Fprintf(w, "           Created: %d  Evicted: %d\n", g.Created, g.Evicted)
		}
	}
}
