// Command xtalk runs crosstalk scenarios and offers an interactive shell for
// experimenting with linked selection and filter handles.
//
// Usage:
//
//	xtalk <command> [flags] [args]
//
// Commands:
//
//	run    Run scenario files or directories and report the results
//	repl   Start an interactive shell
//
// Flags (both commands):
//
//	-config string     Configuration file path (YAML)
//	-trace string      Write a CBOR coordination trace to this file
//	-log-level string  Log level: debug, info, warn, error (default "info")
//
// Examples:
//
//	# Run every scenario in a directory
//	xtalk run testdata/
//
//	# Run one scenario, emit JUnit XML and record a trace
//	xtalk run -format junit -trace run.xlog cars.yaml > report.xml
//
//	# Explore interactively
//	xtalk repl -log-level debug
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/crosstalk-go/crosstalk/cmd/xtalk/interactive"
	"github.com/crosstalk-go/crosstalk/pkg/group"
	"github.com/crosstalk-go/crosstalk/pkg/scenario"
)

const usage = `xtalk - crosstalk scenario runner and shell

Usage:
  xtalk <command> [flags] [args]

Commands:
  run    Run scenario files or directories and report the results
  repl   Start an interactive shell

Use "xtalk <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "run":
		os.Exit(runScenarios(args))
	case "repl":
		runRepl(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

// commonFlags registers the flags shared by every command and returns a
// function that resolves the final configuration after parsing.
func commonFlags(fs *flag.FlagSet) func() (Config, error) {
	configFile := fs.String("config", "", "Configuration file path (YAML)")
	traceFile := fs.String("trace", "", "Write a CBOR coordination trace to this file")
	logLevel := fs.String("log-level", "info", "Log level: debug, info, warn, error")
	retain := fs.Bool("retain-idle-groups", false, "Keep groups after their last handle leaves")

	return func() (Config, error) {
		cfg := defaultConfig()
		if *configFile != "" {
			if err := loadConfigFile(*configFile, &cfg); err != nil {
				return cfg, err
			}
		}

		// Flags set on the command line override the file.
		fs.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "trace":
				cfg.TraceFile = *traceFile
			case "log-level":
				cfg.LogLevel = *logLevel
			case "retain-idle-groups":
				cfg.RetainIdleGroups = *retain
			case "format":
				cfg.Format = f.Value.String()
			case "v":
				cfg.Verbose = f.Value.String() == "true"
			}
		})
		return cfg, cfg.validate()
	}
}

func runScenarios(args []string) int {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `xtalk run - Run scenario files or directories

Usage:
  xtalk run [flags] <scenario.yaml|dir>...

Flags:
`)
		fs.PrintDefaults()
	}
	resolve := commonFlags(fs)
	fs.String("format", "text", "Report format: text, json, junit")
	fs.Bool("v", false, "List every step in text reports")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: at least one scenario file or directory required")
		fs.Usage()
		return 1
	}

	cfg, err := resolve()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	setupLogging(cfg.LogLevel)

	scenarios, err := scenario.LoadPaths(fs.Args()...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if cfg.RetainIdleGroups {
		for _, sc := range scenarios {
			sc.Registry.RetainIdleGroups = true
		}
	}

	reporter, err := scenario.NewReporter(cfg.Format, os.Stdout, cfg.Verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	sess, err := cfg.openSession(os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer sess.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner := scenario.NewRunner(scenario.Config{
		Logger: sess.logger,
		Trace:  sess.trace,
	})
	suite := runner.RunSuite(ctx, scenarios)
	reporter.ReportSuite(suite)

	if !suite.Passed() || ctx.Err() != nil {
		return 1
	}
	return 0
}

func runRepl(args []string) {
	fs := flag.NewFlagSet("repl", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `xtalk repl - Start an interactive shell

Usage:
  xtalk repl [flags]

Flags:
`)
		fs.PrintDefaults()
	}
	resolve := commonFlags(fs)
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	cfg, err := resolve()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	setupLogging(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The registry is created before readline exists, so route its logs
	// through a writer that follows the shell once it is up.
	out := &switchWriter{w: os.Stderr}
	sess, err := cfg.openSession(out)
	if err != nil {
		log.Fatalf("Failed to open session: %v", err)
	}
	defer sess.Close()

	reg := group.NewRegistry(sess.registryConfig(cfg.RetainIdleGroups))

	shell, err := interactive.New(reg)
	if err != nil {
		log.Fatalf("Failed to start shell: %v", err)
	}
	out.set(shell.Stdout())
	log.SetOutput(shell.Stdout())

	log.Println("crosstalk interactive shell")
	if cfg.TraceFile != "" {
		log.Printf("Tracing to %s", cfg.TraceFile)
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGTERM)
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	shell.Run(ctx, cancel)
}

func setupLogging(level string) {
	log.SetFlags(log.Ltime | log.Lmicroseconds)

	switch level {
	case "debug":
		log.SetFlags(log.Ltime | log.Lmicroseconds | log.Lshortfile)
	case "warn", "error":
		log.SetFlags(log.Ltime)
	}
}
