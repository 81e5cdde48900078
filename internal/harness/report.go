package harness

import (
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"
)

// Report formats accepted by WriteReport.
const (
	ReportText = "text"
	ReportYAML = "yaml"
)

type reportDoc struct {
	RunID    string        `yaml:"run_id"`
	Started  time.Time     `yaml:"started"`
	Duration string        `yaml:"duration"`
	Summary  reportSummary `yaml:"summary"`
	Tests    []reportTest  `yaml:"tests"`
	Warnings []reportWarn  `yaml:"teardown_warnings,omitempty"`
}

type reportSummary struct {
	Total   int `yaml:"total"`
	Passed  int `yaml:"passed"`
	Failed  int `yaml:"failed"`
	Skipped int `yaml:"skipped"`
}

type reportTest struct {
	Name       string   `yaml:"name"`
	Status     string   `yaml:"status"`
	Duration   string   `yaml:"duration,omitempty"`
	SkipReason string   `yaml:"skip_reason,omitempty"`
	Errors     []string `yaml:"errors,omitempty"`
	Fixtures   []string `yaml:"fixtures,omitempty"`
}

type reportWarn struct {
	Fixture string `yaml:"fixture"`
	Scope   string `yaml:"scope"`
	Test    string `yaml:"test,omitempty"`
	Error   string `yaml:"error"`
}

func (r TestResult) status() string {
	switch {
	case r.Skipped:
		return "skipped"
	case r.Failed():
		return "failed"
	default:
		return "passed"
	}
}

// WriteReport renders results as "text" or "yaml".
func WriteReport(w io.Writer, results *Results, format string) error {
	switch format {
	case ReportYAML:
		return writeYAML(w, results)
	case ReportText, "":
		return writeText(w, results)
	default:
		return fmt.Errorf("unknown report format %q: must be 'text' or 'yaml'", format)
	}
}

func writeYAML(w io.Writer, results *Results) error {
	doc := reportDoc{
		RunID:    results.RunID.String(),
		Started:  results.Started.UTC(),
		Duration: results.Duration.Round(time.Millisecond).String(),
		Summary: reportSummary{
			Total:   len(results.Tests),
			Passed:  results.Passed(),
			Failed:  len(results.Failures),
			Skipped: len(results.Skipped),
		},
	}
	for _, t := range results.Tests {
		rt := reportTest{
			Name:       t.TestID.String(),
			Status:     t.status(),
			SkipReason: t.SkipReason,
			Fixtures:   t.Fixtures,
		}
		if t.Duration > 0 {
			rt.Duration = t.Duration.Round(time.Millisecond).String()
		}
		for _, err := range t.Errors {
			rt.Errors = append(rt.Errors, err.Error())
		}
		doc.Tests = append(doc.Tests, rt)
	}
	for _, warn := range results.TeardownWarnings {
		doc.Warnings = append(doc.Warnings, reportWarn{
			Fixture: warn.Fixture,
			Scope:   warn.Scope,
			Test:    warn.Test,
			Error:   warn.Err.Error(),
		})
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return enc.Close()
}

func writeText(w io.Writer, results *Results) error {
	if len(results.Failures) > 0 {
		fmt.Fprintln(w, "Failed tests:")
		for _, f := range results.Failures {
			fmt.Fprintf(w, "  %s\n", f.TestID)
			for _, err := range f.Errors {
				fmt.Fprintf(w, "    %s\n", err)
			}
		}
	}
	if len(results.TeardownWarnings) > 0 {
		fmt.Fprintln(w, "Teardown warnings:")
		for _, warn := range results.TeardownWarnings {
			fmt.Fprintf(w, "  %s\n", warn)
		}
	}
	_, err := fmt.Fprintf(w, "Run %s: %d passed, %d failed, %d skipped in %s\n",
		results.RunID,
		results.Passed(),
		len(results.Failures),
		len(results.Skipped),
		results.Duration.Round(time.Millisecond))
	return err
}
