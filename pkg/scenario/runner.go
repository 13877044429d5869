package scenario

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"reflect"
	"slices"
	"time"

	"github.com/crosstalk-go/crosstalk/pkg/filter"
	"github.com/crosstalk-go/crosstalk/pkg/group"
	"github.com/crosstalk-go/crosstalk/pkg/keys"
	"github.com/crosstalk-go/crosstalk/pkg/selection"
	"github.com/crosstalk-go/crosstalk/pkg/trace"
)

// Config configures a Runner.
type Config struct {
	// Logger receives operational logs. Defaults to discarding.
	Logger *slog.Logger

	// Trace receives the coordination trace of every scenario run.
	// Defaults to trace.NoopLogger.
	Trace trace.Logger
}

// Runner executes scenarios. Each run gets its own registry.
type Runner struct {
	config Config
}

// NewRunner creates a Runner.
func NewRunner(cfg Config) *Runner {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Trace == nil {
		cfg.Trace = trace.NoopLogger{}
	}
	return &Runner{config: cfg}
}

// RunSuite runs scenarios in order. It stops early when ctx is done; the
// remaining scenarios are not reported.
func (r *Runner) RunSuite(ctx context.Context, scenarios []*Scenario) *SuiteResult {
	start := time.Now()
	suite := &SuiteResult{}
	for _, sc := range scenarios {
		if ctx.Err() != nil {
			break
		}
		res := r.Run(ctx, sc)
		suite.Results = append(suite.Results, res)
		if res.Passed {
			suite.PassCount++
		} else {
			suite.FailCount++
		}
	}
	suite.Duration = time.Since(start)
	return suite
}

// Run executes sc against a fresh registry. Execution stops at the first
// failing step or when ctx is done.
func (r *Runner) Run(ctx context.Context, sc *Scenario) *Result {
	result := &Result{
		Scenario:  sc,
		StartTime: time.Now(),
	}
	defer func() {
		result.EndTime = time.Now()
		result.Duration = result.EndTime.Sub(result.StartTime)
	}()

	reg := group.NewRegistry(group.Config{
		RetainIdleGroups: sc.Registry.RetainIdleGroups,
		Logger:           r.config.Logger,
		Trace:            r.config.Trace,
	})
	st := &state{
		reg:     reg,
		handles: make(map[string]*participant),
		names:   make(map[string]string),
	}
	defer st.closeAll()

	for _, spec := range sc.Handles {
		st.create(spec)
	}

	for i := range sc.Steps {
		if err := ctx.Err(); err != nil {
			result.Error = fmt.Errorf("scenario %s interrupted: %w", sc.ID, err)
			return result
		}

		sr := r.executeStep(st, &sc.Steps[i], i)
		result.Steps = append(result.Steps, sr)
		if !sr.Passed {
			result.Error = fmt.Errorf("step %d: %w", i+1, sr.Error)
			r.config.Logger.Debug("scenario step failed",
				"scenario", sc.ID, "step", i+1, "action", sr.Step.Action, "error", sr.Error)
			result.Events = st.eventCount()
			return result
		}
	}

	result.Events = st.eventCount()
	result.Passed = true
	return result
}

func (r *Runner) executeStep(st *state, step *Step, index int) *StepResult {
	start := time.Now()
	sr := &StepResult{Step: step, Index: index}

	if err := st.apply(step); err != nil {
		sr.Error = err
		sr.Duration = time.Since(start)
		return sr
	}

	sr.Passed = true
	if step.Expect != nil {
		subject := step.Expect.Handle
		if subject == "" {
			subject = step.Handle
		}
		sr.Checks = st.check(subject, step.Expect)
		for _, c := range sr.Checks {
			if !c.Passed {
				sr.Passed = false
				sr.Error = fmt.Errorf("expectation failed: %s - %s", c.Key, c.Message)
				break
			}
		}
	}

	sr.Duration = time.Since(start)
	return sr
}

// participant is one named handle and the events it has observed.
type participant struct {
	name     string
	kind     string
	sel      *selection.Handle
	filt     *filter.Handle
	member   *group.Member
	events   []group.ChangeEvent
	recorder group.SubscriptionID
}

type state struct {
	reg     *group.Registry
	handles map[string]*participant
	order   []string

	// names maps handle IDs to scenario names.
	names map[string]string
}

func (s *state) create(spec HandleSpec) *participant {
	var opts []group.Option
	if spec.Group != nil {
		opts = append(opts, group.WithGroup(*spec.Group))
	}

	p := &participant{name: spec.Name, kind: spec.Kind}
	switch spec.Kind {
	case KindFilter:
		p.filt = filter.New(s.reg, opts...)
		p.member = p.filt.Member
	default:
		p.sel = selection.New(s.reg, opts...)
		p.member = p.sel.Member
	}

	s.handles[spec.Name] = p
	s.order = append(s.order, spec.Name)
	s.names[p.member.ID()] = spec.Name
	if !spec.Silent {
		p.subscribe()
	}
	return p
}

func (p *participant) subscribe() {
	if p.recorder != 0 {
		return
	}
	p.recorder = p.member.On(group.EventChange, func(ev group.ChangeEvent) {
		p.events = append(p.events, ev)
	})
}

func (p *participant) unsubscribe() {
	if p.recorder == 0 {
		return
	}
	p.member.Off(group.EventChange, p.recorder)
	p.recorder = 0
}

func (s *state) apply(step *Step) error {
	if step.Action == ActionNew {
		spec := HandleSpec{Name: step.Handle, Kind: step.Kind, Group: step.Group}
		s.create(spec)
		return nil
	}
	if step.Action == ActionCheck && step.Handle == "" {
		return nil
	}

	p, ok := s.handles[step.Handle]
	if !ok {
		return fmt.Errorf("unknown handle %q", step.Handle)
	}

	switch step.Action {
	case ActionSet:
		if p.filt != nil {
			p.filt.Set(step.Keys, step.Extra)
		} else {
			p.sel.Set(step.Keys, step.Extra)
		}
	case ActionClear:
		if p.filt != nil {
			p.filt.Clear(step.Extra)
		} else {
			p.sel.Clear(step.Extra)
		}
	case ActionSetGroup:
		p.member.SetGroup(*step.Group)
	case ActionUnbind:
		p.member.Unbind()
	case ActionClose:
		p.member.Close()
		p.recorder = 0
	case ActionSubscribe:
		p.subscribe()
	case ActionUnsubscribe:
		p.unsubscribe()
	case ActionCheck:
	default:
		return fmt.Errorf("unknown action %q", step.Action)
	}
	return nil
}

func (s *state) check(subject string, exp *Expect) []*Check {
	var checks []*Check
	p := s.handles[subject]

	if exp.FilteredKeys != nil {
		var actual keys.Optional
		if p != nil {
			if g := p.member.Bound(); g != nil {
				actual = g.FilteredKeys()
			}
		}
		checks = append(checks, compareSet("filtered_keys", *exp.FilteredKeys, actual))
	}

	if exp.Value != nil {
		var actual keys.Optional
		if p != nil {
			if g := p.member.Bound(); g != nil {
				actual = g.Selection().Get()
			}
		}
		checks = append(checks, compareSeq("value", *exp.Value, actual))
	}

	if exp.Keys != nil {
		var actual keys.Optional
		if p != nil && p.filt != nil {
			if ks := p.filt.Keys(); ks != nil {
				actual = keys.Some(ks)
			}
		}
		checks = append(checks, compareSet("keys", *exp.Keys, actual))
	}

	if exp.EventCount != nil {
		n := 0
		if p != nil {
			n = len(p.events)
		}
		checks = append(checks, compareValue("event_count", *exp.EventCount, n))
	}

	if exp.Contributions != nil {
		n := 0
		if p != nil {
			if g := p.member.Bound(); g != nil {
				n = g.ContributionCount()
			}
		}
		checks = append(checks, compareValue("contributions", *exp.Contributions, n))
	}

	if exp.Groups != nil {
		checks = append(checks, compareValue("groups", exp.Groups, s.reg.Groups()))
	}

	if exp.LastEvent != nil || exp.Extra != nil {
		var last *group.ChangeEvent
		if p != nil && len(p.events) > 0 {
			last = &p.events[len(p.events)-1]
		}
		if last == nil {
			checks = append(checks, &Check{
				Key:     "last_event",
				Message: fmt.Sprintf("handle %q observed no events", subject),
			})
			return checks
		}
		if exp.LastEvent != nil {
			checks = append(checks, s.checkEvent(*exp.LastEvent, last)...)
		}
		if exp.Extra != nil {
			checks = append(checks, checkExtra(exp.Extra, last.Extra))
		}
	}

	return checks
}

func (s *state) checkEvent(exp EventExpect, ev *group.ChangeEvent) []*Check {
	var checks []*Check
	cmp := compareSeq
	if ev.Var == group.VarFilter {
		cmp = compareSet
	}

	if exp.Value != nil {
		checks = append(checks, cmp("last_event.value", *exp.Value, ev.Value))
	}
	if exp.OldValue != nil {
		checks = append(checks, cmp("last_event.old_value", *exp.OldValue, ev.OldValue))
	}
	if exp.Sender != nil {
		var actual string
		if ev.Sender != nil {
			actual = s.names[ev.Sender.ID()]
		}
		checks = append(checks, compareValue("last_event.sender", *exp.Sender, actual))
	}
	return checks
}

func (s *state) eventCount() int {
	n := 0
	for _, p := range s.handles {
		n += len(p.events)
	}
	return n
}

func (s *state) closeAll() {
	for _, name := range s.order {
		s.handles[name].member.Close()
	}
}

// compareSeq compares key sequences in order.
func compareSeq(key string, expected, actual keys.Optional) *Check {
	c := &Check{Key: key, Expected: expected.String(), Actual: actual.String()}
	c.Passed = expected.Equal(actual)
	if !c.Passed {
		c.Message = fmt.Sprintf("expected %s, got %s", expected, actual)
	}
	return c
}

// compareSet compares key sets regardless of order.
func compareSet(key string, expected, actual keys.Optional) *Check {
	if expected.IsPresent() {
		expected = keys.Some(keys.Normalize(expected.Keys))
	}
	if actual.IsPresent() {
		actual = keys.Some(keys.Normalize(actual.Keys))
	}
	return compareSeq(key, expected, actual)
}

func compareValue(key string, expected, actual any) *Check {
	c := &Check{Key: key, Expected: expected, Actual: actual}
	c.Passed = reflect.DeepEqual(expected, actual)
	if !c.Passed {
		c.Message = fmt.Sprintf("expected %v, got %v", expected, actual)
	}
	return c
}

func checkExtra(expected, actual map[string]any) *Check {
	c := &Check{Key: "extra", Expected: expected, Actual: actual, Passed: true}
	for _, k := range slices.Sorted(maps.Keys(expected)) {
		if got, ok := actual[k]; !ok || !reflect.DeepEqual(got, expected[k]) {
			c.Passed = false
			c.Message = fmt.Sprintf("extra %q: expected %v, got %v", k, expected[k], got)
			break
		}
	}
	return c
}
