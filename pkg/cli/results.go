package cli

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/konveyor/makerun/pkg/runner"
	yaml "gopkg.in/yaml.v2"
)

// BuildReport represents the result of a single build run
type BuildReport struct {
	RunID        string   `json:"runId" yaml:"runId"`
	Dir          string   `json:"dir" yaml:"dir"`
	Targets      []string `json:"targets" yaml:"targets"`
	Status       string   `json:"status" yaml:"status"`
	ExitCode     int      `json:"exitCode" yaml:"exitCode"`
	Duration     string   `json:"duration" yaml:"duration"`
	ErrorMessage string   `json:"errorMessage,omitempty" yaml:"errorMessage,omitempty"`
	Output       []string `json:"output" yaml:"output"`
}

// TargetList is the set of targets discovered in a directory
type TargetList struct {
	Dir     string   `json:"dir" yaml:"dir"`
	Targets []string `json:"targets" yaml:"targets"`
}

// JUnitTestSuite represents a JUnit XML test suite
type JUnitTestSuite struct {
	XMLName   xml.Name        `xml:"testsuite"`
	Name      string          `xml:"name,attr"`
	Tests     int             `xml:"tests,attr"`
	Failures  int             `xml:"failures,attr"`
	Errors    int             `xml:"errors,attr"`
	Time      string          `xml:"time,attr"`
	TestCases []JUnitTestCase `xml:"testcase"`
}

// JUnitTestCase represents a single test case in JUnit XML format
type JUnitTestCase struct {
	Name      string        `xml:"name,attr"`
	ClassName string        `xml:"classname,attr"`
	Time      string        `xml:"time,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
	Error     *JUnitFailure `xml:"error,omitempty"`
	SystemOut string        `xml:"system-out,omitempty"`
}

// JUnitFailure represents a failure or error in JUnit XML format
type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Content string `xml:",chardata"`
}

// OutputFormat represents the output format for build results
type OutputFormat string

const (
	OutputFormatConsole OutputFormat = "console"
	OutputFormatJSON    OutputFormat = "json"
	OutputFormatYAML    OutputFormat = "yaml"
	OutputFormatJUnit   OutputFormat = "junit"
)

// parseOutputFormat validates a --output flag value
func parseOutputFormat(s string, allowed ...OutputFormat) (OutputFormat, error) {
	for _, f := range allowed {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported output format: %s", s)
}

// NewBuildReport converts an outcome into its report form
func NewBuildReport(outcome *runner.BuildOutcome) *BuildReport {
	report := &BuildReport{
		RunID:    outcome.RunID,
		Dir:      outcome.Dir,
		Targets:  outcome.Targets,
		Status:   outcome.Status.String(),
		ExitCode: outcome.ExitCode,
		Duration: outcome.Duration.String(),
		Output:   outcome.Lines,
	}
	if outcome.Err != nil {
		report.ErrorMessage = outcome.Err.Error()
	}
	if report.Targets == nil {
		report.Targets = []string{}
	}
	if report.Output == nil {
		report.Output = []string{}
	}
	return report
}

// FormatOutcome outputs the build outcome in the specified format
func FormatOutcome(outcome *runner.BuildOutcome, format OutputFormat) (string, error) {
	switch format {
	case OutputFormatJSON:
		return formatJSON(NewBuildReport(outcome))
	case OutputFormatYAML:
		return formatYAML(NewBuildReport(outcome))
	case OutputFormatJUnit:
		return formatJUnit(outcome)
	default:
		return "", fmt.Errorf("unsupported output format: %s", format)
	}
}

// FormatTargets outputs a target list in the specified format
func FormatTargets(list *TargetList, format OutputFormat) (string, error) {
	switch format {
	case OutputFormatJSON:
		return formatJSON(list)
	case OutputFormatYAML:
		return formatYAML(list)
	case OutputFormatConsole:
		if len(list.Targets) == 0 {
			return "", nil
		}
		return strings.Join(list.Targets, "\n") + "\n", nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", format)
	}
}

// formatJSON formats v as indented JSON
func formatJSON(v interface{}) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data) + "\n", nil
}

// formatYAML formats v as YAML
func formatYAML(v interface{}) (string, error) {
	data, err := yaml.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return string(data), nil
}

// formatJUnit formats the outcome as a JUnit XML suite with one test case for
// the run
func formatJUnit(outcome *runner.BuildOutcome) (string, error) {
	name := strings.Join(outcome.Targets, " ")
	if name == "" {
		name = "(default)"
	}

	testCase := JUnitTestCase{
		Name:      name,
		ClassName: "makerun",
		Time:      parseDuration(outcome.Duration),
		SystemOut: strings.Join(outcome.Lines, "\n"),
	}

	suite := JUnitTestSuite{
		Name:  "makerun",
		Tests: 1,
		Time:  testCase.Time,
	}

	switch outcome.Status {
	case runner.Failure:
		suite.Failures = 1
		testCase.Failure = &JUnitFailure{
			Message: fmt.Sprintf("exit code %d", outcome.ExitCode),
			Type:    "BuildFailure",
			Content: tail(outcome.Lines, 20),
		}
	case runner.SpawnError, runner.Canceled:
		suite.Errors = 1
		message := outcome.Status.String()
		if outcome.Err != nil {
			message = outcome.Err.Error()
		}
		testCase.Error = &JUnitFailure{
			Message: message,
			Type:    outcome.Status.String(),
		}
	}
	suite.TestCases = []JUnitTestCase{testCase}

	data, err := xml.MarshalIndent(suite, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JUnit XML: %w", err)
	}

	return xml.Header + string(data) + "\n", nil
}

// tail returns the last n lines joined by newlines
func tail(lines []string, n int) string {
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}

// parseDuration converts a time.Duration to a string in seconds (for JUnit compatibility)
func parseDuration(d time.Duration) string {
	return fmt.Sprintf("%.3f", d.Seconds())
}
