// Command xtalk-log views and analyzes crosstalk trace files.
//
// Trace files are written by xtalk with the -trace flag, or by any program
// that installs a trace.FileLogger in its group.Config.
//
// Usage:
//
//	xtalk-log <command> [flags] <file.xlog>
//
// Commands:
//
//	view     View trace in human-readable format
//	export   Export trace to JSONL or CSV
//	filter   Filter trace and write to new file
//	stats    Show statistics about the trace
//
// Examples:
//
//	# View only filter events in group "cars"
//	xtalk-log view -group cars -kind filter session.xlog
//
//	# Export to CSV
//	xtalk-log export -format csv -o session.csv session.xlog
//
//	# Keep one handle's actions
//	xtalk-log filter -handle 3f2a -o handle.xlog session.xlog
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/crosstalk-go/crosstalk/cmd/xtalk-log/commands"
)

const usage = `xtalk-log - crosstalk trace analyzer

Usage:
  xtalk-log <command> [flags] <file.xlog>

Commands:
  view     View trace in human-readable format
  export   Export trace to JSONL or CSV
  filter   Filter trace and write to new file
  stats    Show statistics about the trace

Use "xtalk-log <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "view":
		runView(args)
	case "export":
		runExport(args)
	case "filter":
		runFilter(args)
	case "stats":
		runStats(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

// criteriaFlags registers the flags shared by view and filter.
func criteriaFlags(fs *flag.FlagSet) *commands.Criteria {
	var c commands.Criteria
	fs.StringVar(&c.Group, "group", "", "Filter by group name")
	fs.StringVar(&c.Handle, "handle", "", "Filter by handle ID prefix")
	fs.StringVar(&c.Kind, "kind", "", "Filter by kind (group, selection, filter, var)")
	fs.StringVar(&c.Action, "action", "", "Filter by action (create, evict, bind, unbind, set, clear, close)")
	fs.StringVar(&c.TimeStart, "time-start", "", "Filter by start time (RFC3339)")
	fs.StringVar(&c.TimeEnd, "time-end", "", "Filter by end time (RFC3339)")
	return &c
}

func fileArg(fs *flag.FlagSet, args []string) string {
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: trace file path required")
		fs.Usage()
		os.Exit(1)
	}
	return fs.Arg(0)
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func runView(args []string) {
	fs := flag.NewFlagSet("view", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `xtalk-log view - View trace in human-readable format

Usage:
  xtalk-log view [flags] <file.xlog>

Flags:
`)
		fs.PrintDefaults()
	}
	criteria := criteriaFlags(fs)
	path := fileArg(fs, args)

	filter, err := criteria.Filter()
	if err != nil {
		fail(err)
	}
	if err := commands.RunView(path, filter, os.Stdout); err != nil {
		fail(err)
	}
}

func runExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `xtalk-log export - Export trace to JSONL or CSV

Usage:
  xtalk-log export [flags] <file.xlog>

Flags:
`)
		fs.PrintDefaults()
	}
	format := fs.String("format", "jsonl", "Output format (jsonl, csv)")
	output := fs.String("o", "", "Output file (default: stdout)")
	path := fileArg(fs, args)

	if err := commands.RunExport(path, *format, *output); err != nil {
		fail(err)
	}
}

func runFilter(args []string) {
	fs := flag.NewFlagSet("filter", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `xtalk-log filter - Filter trace and write to new file

Usage:
  xtalk-log filter [flags] <file.xlog>

Flags:
`)
		fs.PrintDefaults()
	}
	output := fs.String("o", "", "Output file (required)")
	criteria := criteriaFlags(fs)
	path := fileArg(fs, args)

	if *output == "" {
		fmt.Fprintln(os.Stderr, "Error: output file (-o) required")
		fs.Usage()
		os.Exit(1)
	}

	n, err := commands.RunFilter(path, *output, *criteria)
	if err != nil {
		fail(err)
	}
	fmt.Printf("Filtered %d events to %s\n", n, *output)
}

func runStats(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `xtalk-log stats - Show statistics about the trace

Usage:
  xtalk-log stats <file.xlog>

`)
	}
	path := fileArg(fs, args)

	if err := commands.RunStats(path, os.Stdout); err != nil {
		fail(err)
	}
}
