// Package trace provides a machine-readable record of crosstalk coordination.
//
// Every state-changing call on a group (a selection set, a filter
// contribution, a handle binding to or leaving a group, a group being created
// or evicted) can be captured as an [Event]. This is separate from
// operational logging (slog): the trace is meant for replaying and analysing
// how linked views interacted, not for reporting problems.
//
// # Basic Usage
//
// Pass a Logger to the registry configuration:
//
//	// During development: mirror coordination events to slog
//	cfg.Trace = trace.NewSlogAdapter(slog.Default())
//
//	// Persist to a CBOR file
//	fl, _ := trace.NewFileLogger("/tmp/session.xlog")
//	cfg.Trace = fl
//
//	// Both
//	cfg.Trace = trace.NewMultiLogger(trace.NewSlogAdapter(slog.Default()), fl)
//
// # File Format
//
// Trace files are a concatenation of CBOR-encoded events using integer keys,
// conventionally with the .xlog extension. The xtalk-log tool views, filters,
// exports and summarises them. [Reader] streams events back with an optional
// [Filter].
package trace
