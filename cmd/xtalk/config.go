package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/crosstalk-go/crosstalk/pkg/group"
	"github.com/crosstalk-go/crosstalk/pkg/trace"
)

// Config is the xtalk configuration. Values come from an optional YAML
// file and are overridden by explicitly set flags.
type Config struct {
	// LogLevel is debug, info, warn or error.
	LogLevel string `yaml:"log_level"`

	// TraceFile, when set, receives a CBOR trace of every coordination
	// action. View it with xtalk-log.
	TraceFile string `yaml:"trace_file"`

	// RetainIdleGroups keeps groups after their last handle leaves.
	// Scenarios may override it.
	RetainIdleGroups bool `yaml:"retain_idle_groups"`

	// Format is the run report format: text, json or junit.
	Format string `yaml:"format"`

	// Verbose lists every step in text reports.
	Verbose bool `yaml:"verbose"`
}

// defaultConfig returns the built-in defaults.
func defaultConfig() Config {
	return Config{
		LogLevel: "info",
		Format:   "text",
	}
}

// loadConfigFile overlays the YAML file at path onto cfg.
func loadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg.validate()
}

func (c Config) validate() error {
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.Format {
	case "text", "json", "junit":
	default:
		return fmt.Errorf("unknown format %q (want text, json or junit)", c.Format)
	}
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q (want debug, info, warn or error)", s)
	}
}

// newLogger returns a text logger writing to w at the configured level.
func (c Config) newLogger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// session bundles what a command needs to build registries.
type session struct {
	logger *slog.Logger
	trace  trace.Logger
	closer io.Closer
}

// openSession creates the operational logger and the trace sink. At debug
// level every trace event is also written to the operational log.
func (c Config) openSession(w io.Writer) (*session, error) {
	s := &session{logger: c.newLogger(w)}

	var sinks []trace.Logger
	if c.TraceFile != "" {
		fl, err := trace.NewFileLogger(c.TraceFile)
		if err != nil {
			return nil, fmt.Errorf("open trace file: %w", err)
		}
		sinks = append(sinks, fl)
		s.closer = fl
	}
	if s.logger.Enabled(context.Background(), slog.LevelDebug) {
		sinks = append(sinks, trace.NewSlogAdapter(s.logger))
	}

	switch len(sinks) {
	case 0:
		s.trace = trace.NoopLogger{}
	case 1:
		s.trace = sinks[0]
	default:
		s.trace = trace.NewMultiLogger(sinks...)
	}
	return s, nil
}

// registryConfig returns a group.Config wired to the session.
func (s *session) registryConfig(retainIdle bool) group.Config {
	return group.Config{
		RetainIdleGroups: retainIdle,
		Logger:           s.logger,
		Trace:            s.trace,
	}
}

func (s *session) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}
