package scenario

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"time"
)

// Reporter writes scenario results.
type Reporter interface {
	ReportSuite(result *SuiteResult)
	ReportScenario(result *Result)
}

// NewReporter returns the reporter for format: "text", "json" or "junit".
func NewReporter(format string, w io.Writer, verbose bool) (Reporter, error) {
	switch format {
	case "", "text":
		return NewTextReporter(w, verbose), nil
	case "json":
		return NewJSONReporter(w, verbose), nil
	case "junit":
		return NewJUnitReporter(w), nil
	default:
		return nil, fmt.Errorf("unknown report format %q (want text, json or junit)", format)
	}
}

// TextReporter writes human-readable results.
type TextReporter struct {
	w       io.Writer
	verbose bool
}

// NewTextReporter creates a TextReporter. Verbose output lists every step
// and check.
func NewTextReporter(w io.Writer, verbose bool) *TextReporter {
	return &TextReporter{w: w, verbose: verbose}
}

// ReportSuite writes every scenario followed by a summary.
func (r *TextReporter) ReportSuite(result *SuiteResult) {
	for _, res := range result.Results {
		r.ReportScenario(res)
	}

	fmt.Fprintf(r.w, "\n--- Summary ---\n")
	fmt.Fprintf(r.w, "Total:    %d\n", len(result.Results))
	fmt.Fprintf(r.w, "Passed:   %d\n", result.PassCount)
	fmt.Fprintf(r.w, "Failed:   %d\n", result.FailCount)
	fmt.Fprintf(r.w, "Duration: %s\n", result.Duration.Round(time.Microsecond))
}

// ReportScenario writes one scenario result.
func (r *TextReporter) ReportScenario(result *Result) {
	status := "PASS"
	if !result.Passed {
		status = "FAIL"
	}
	sc := result.Scenario
	fmt.Fprintf(r.w, "[%s] %s - %s (%d steps, %d events)\n",
		status, sc.ID, sc.Name, len(result.Steps), result.Events)

	if !result.Passed && result.Error != nil {
		fmt.Fprintf(r.w, "       Error: %v\n", result.Error)
	}

	if !r.verbose {
		return
	}
	for _, sr := range result.Steps {
		stepStatus := "PASS"
		if !sr.Passed {
			stepStatus = "FAIL"
		}
		fmt.Fprintf(r.w, "    [%s] Step %d: %s %s\n", stepStatus, sr.Index+1, sr.Step.Action, sr.Step.Handle)
		for _, c := range sr.Checks {
			if c.Passed {
				fmt.Fprintf(r.w, "           [OK] %s = %v\n", c.Key, c.Actual)
			} else {
				fmt.Fprintf(r.w, "           [FAILED] %s: %s\n", c.Key, c.Message)
			}
		}
	}
}

// JSONReporter writes results as JSON documents.
type JSONReporter struct {
	w      io.Writer
	pretty bool
}

// NewJSONReporter creates a JSONReporter.
func NewJSONReporter(w io.Writer, pretty bool) *JSONReporter {
	return &JSONReporter{w: w, pretty: pretty}
}

type jsonSuite struct {
	Total     int            `json:"total"`
	Passed    int            `json:"passed"`
	Failed    int            `json:"failed"`
	Duration  string         `json:"duration"`
	Scenarios []jsonScenario `json:"scenarios"`
}

type jsonScenario struct {
	ID     string     `json:"id"`
	Name   string     `json:"name"`
	File   string     `json:"file,omitempty"`
	Status string     `json:"status"`
	Error  string     `json:"error,omitempty"`
	Events int        `json:"events"`
	Steps  []jsonStep `json:"steps,omitempty"`
}

type jsonStep struct {
	Index  int         `json:"index"`
	Action string      `json:"action"`
	Handle string      `json:"handle,omitempty"`
	Status string      `json:"status"`
	Error  string      `json:"error,omitempty"`
	Checks []jsonCheck `json:"checks,omitempty"`
}

type jsonCheck struct {
	Key      string `json:"key"`
	Passed   bool   `json:"passed"`
	Expected any    `json:"expected"`
	Actual   any    `json:"actual"`
}

// ReportSuite writes the whole suite as one document.
func (r *JSONReporter) ReportSuite(result *SuiteResult) {
	js := jsonSuite{
		Total:     len(result.Results),
		Passed:    result.PassCount,
		Failed:    result.FailCount,
		Duration:  result.Duration.String(),
		Scenarios: make([]jsonScenario, 0, len(result.Results)),
	}
	for _, res := range result.Results {
		js.Scenarios = append(js.Scenarios, toJSON(res))
	}
	r.write(js)
}

// ReportScenario writes one scenario as a document.
func (r *JSONReporter) ReportScenario(result *Result) {
	r.write(toJSON(result))
}

func toJSON(result *Result) jsonScenario {
	js := jsonScenario{
		ID:     result.Scenario.ID,
		Name:   result.Scenario.Name,
		File:   result.Scenario.File,
		Status: statusWord(result.Passed),
		Events: result.Events,
	}
	if result.Error != nil {
		js.Error = result.Error.Error()
	}
	for _, sr := range result.Steps {
		step := jsonStep{
			Index:  sr.Index,
			Action: sr.Step.Action,
			Handle: sr.Step.Handle,
			Status: statusWord(sr.Passed),
		}
		if sr.Error != nil {
			step.Error = sr.Error.Error()
		}
		for _, c := range sr.Checks {
			step.Checks = append(step.Checks, jsonCheck{
				Key:      c.Key,
				Passed:   c.Passed,
				Expected: c.Expected,
				Actual:   c.Actual,
			})
		}
		js.Steps = append(js.Steps, step)
	}
	return js
}

func (r *JSONReporter) write(v any) {
	var data []byte
	var err error
	if r.pretty {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		fmt.Fprintf(r.w, `{"error": %q}`+"\n", err.Error())
		return
	}
	fmt.Fprintln(r.w, string(data))
}

func statusWord(passed bool) string {
	if passed {
		return "passed"
	}
	return "failed"
}

// JUnitReporter writes JUnit XML for CI systems.
type JUnitReporter struct {
	w io.Writer
}

// NewJUnitReporter creates a JUnitReporter.
func NewJUnitReporter(w io.Writer) *JUnitReporter {
	return &JUnitReporter{w: w}
}

type junitSuite struct {
	XMLName  xml.Name    `xml:"testsuite"`
	Name     string      `xml:"name,attr"`
	Tests    int         `xml:"tests,attr"`
	Failures int         `xml:"failures,attr"`
	Time     string      `xml:"time,attr"`
	Cases    []junitCase `xml:"testcase"`
}

type junitCase struct {
	Name      string        `xml:"name,attr"`
	ClassName string        `xml:"classname,attr"`
	Time      string        `xml:"time,attr"`
	Failure   *junitFailure `xml:"failure,omitempty"`
}

type junitFailure struct {
	Message string `xml:"message,attr"`
	Body    string `xml:",chardata"`
}

// ReportSuite writes the suite as one <testsuite>.
func (r *JUnitReporter) ReportSuite(result *SuiteResult) {
	suite := junitSuite{
		Name:     "crosstalk",
		Tests:    len(result.Results),
		Failures: result.FailCount,
		Time:     seconds(result.Duration),
	}
	for _, res := range result.Results {
		tc := junitCase{
			Name:      res.Scenario.Name,
			ClassName: res.Scenario.ID,
			Time:      seconds(res.Duration),
		}
		if !res.Passed && res.Error != nil {
			tc.Failure = &junitFailure{Message: res.Error.Error()}
			for _, sr := range res.Steps {
				if !sr.Passed {
					tc.Failure.Body += fmt.Sprintf("Step %d (%s %s): %v\n",
						sr.Index+1, sr.Step.Action, sr.Step.Handle, sr.Error)
				}
			}
		}
		suite.Cases = append(suite.Cases, tc)
	}

	fmt.Fprint(r.w, xml.Header)
	enc := xml.NewEncoder(r.w)
	enc.Indent("", "  ")
	if err := enc.Encode(suite); err != nil {
		fmt.Fprintf(r.w, "<!-- encode failed: %s -->\n", err)
		return
	}
	fmt.Fprintln(r.w)
}

// ReportScenario writes a single scenario wrapped in a suite.
func (r *JUnitReporter) ReportScenario(result *Result) {
	suite := &SuiteResult{Results: []*Result{result}, Duration: result.Duration}
	if result.Passed {
		suite.PassCount = 1
	} else {
		suite.FailCount = 1
	}
	r.ReportSuite(suite)
}

func seconds(d time.Duration) string {
	return fmt.Sprintf("%.3f", d.Seconds())
}
