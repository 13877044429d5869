package scenario

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Parse parses and validates a scenario from YAML bytes.
func Parse(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, &LoadError{
			Message: "failed to parse YAML",
			Cause:   err,
		}
	}

	if err := sc.Validate(); err != nil {
		return nil, &LoadError{
			Message: "invalid scenario",
			Cause:   err,
		}
	}

	return &sc, nil
}

// Load loads a scenario from a file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{
			File:    path,
			Message: "failed to read file",
			Cause:   err,
		}
	}

	sc, err := Parse(data)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.File = path
			return nil, le
		}
		return nil, &LoadError{File: path, Message: err.Error()}
	}

	sc.File = path
	return sc, nil
}

// LoadDirectory loads every .yaml or .yml file in dir, sorted by name.
// Subdirectories are not searched.
func LoadDirectory(dir string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &LoadError{
			File:    dir,
			Message: "failed to read directory",
			Cause:   err,
		}
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext == ".yaml" || ext == ".yml" {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	scenarios := make([]*Scenario, 0, len(names))
	for _, name := range names {
		sc, err := Load(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, sc)
	}
	return scenarios, nil
}

// LoadPaths loads each path as a file or, for directories, with
// LoadDirectory.
func LoadPaths(paths ...string) ([]*Scenario, error) {
	var scenarios []*Scenario
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, &LoadError{File: p, Message: "failed to stat", Cause: err}
		}
		if info.IsDir() {
			scs, err := LoadDirectory(p)
			if err != nil {
				return nil, err
			}
			scenarios = append(scenarios, scs...)
			continue
		}
		sc, err := Load(p)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, sc)
	}
	return scenarios, nil
}

// Validate checks that the scenario is well formed: handle names are unique
// and known, kinds and actions are valid, and every action has the fields
// it needs.
func (sc *Scenario) Validate() error {
	if sc.ID == "" {
		return errors.New("scenario id is required")
	}
	if len(sc.Steps) == 0 {
		return errors.New("scenario must have at least one step")
	}

	declared := make(map[string]bool, len(sc.Handles))
	for i, h := range sc.Handles {
		if h.Name == "" {
			return fmt.Errorf("handle %d: name is required", i)
		}
		if declared[h.Name] {
			return fmt.Errorf("handle %q declared twice", h.Name)
		}
		if err := validKind(h.Kind); err != nil {
			return fmt.Errorf("handle %q: %w", h.Name, err)
		}
		declared[h.Name] = true
	}

	for i, step := range sc.Steps {
		if err := step.validate(declared); err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, step.Action, err)
		}
	}
	return nil
}

func (s *Step) validate(declared map[string]bool) error {
	if s.Expect != nil && s.Expect.Handle != "" && !declared[s.Expect.Handle] {
		return fmt.Errorf("expectation refers to unknown handle %q", s.Expect.Handle)
	}
	if s.Action == ActionCheck && s.Handle == "" {
		return nil
	}
	if s.Handle == "" {
		return errors.New("handle is required")
	}

	switch s.Action {
	case ActionNew:
		if declared[s.Handle] {
			return fmt.Errorf("handle %q already exists", s.Handle)
		}
		if err := validKind(s.Kind); err != nil {
			return err
		}
		declared[s.Handle] = true
		return nil
	case ActionSetGroup:
		if s.Group == nil {
			return errors.New("group is required")
		}
	case ActionSet, ActionClear, ActionUnbind, ActionClose,
		ActionSubscribe, ActionUnsubscribe, ActionCheck:
	default:
		return fmt.Errorf("unknown action %q", s.Action)
	}

	if !declared[s.Handle] {
		return fmt.Errorf("unknown handle %q", s.Handle)
	}
	return nil
}

func validKind(kind string) error {
	switch kind {
	case KindSelection, KindFilter:
		return nil
	default:
		return fmt.Errorf("unknown kind %q (want %s or %s)", kind, KindSelection, KindFilter)
	}
}
