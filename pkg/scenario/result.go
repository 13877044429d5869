package scenario

import "time"

// Result is the outcome of one scenario.
type Result struct {
	// Scenario is the scenario that was run.
	Scenario *Scenario

	// Passed is true when every step ran and every check held.
	Passed bool

	// Error is the first failure, if any.
	Error error

	// Steps holds one result per executed step.
	Steps []*StepResult

	// Events is the number of change events observed across all handles.
	Events int

	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

// StepResult is the outcome of one step.
type StepResult struct {
	// Step is the step that was executed.
	Step *Step

	// Index is the 0-based step index.
	Index int

	// Passed is true when the action ran and every check held.
	Passed bool

	// Error is the failure, if any.
	Error error

	// Checks holds one entry per expectation.
	Checks []*Check

	Duration time.Duration
}

// Check is the outcome of one expectation.
type Check struct {
	// Key is the expectation name, e.g. "filtered_keys".
	Key string

	Expected any
	Actual   any
	Passed   bool

	// Message describes a failed check.
	Message string
}

// SuiteResult is the outcome of several scenarios.
type SuiteResult struct {
	Results   []*Result
	PassCount int
	FailCount int
	Duration  time.Duration
}

// Passed reports whether every scenario passed.
func (s *SuiteResult) Passed() bool {
	return s.FailCount == 0
}
