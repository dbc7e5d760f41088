package validation

import (
	"fmt"
	"math"
	"strconv"
)

// Check names.
const (
	CheckExists     = "exists"
	CheckResolution = "resolution"
	CheckDuration   = "duration"
	CheckLoudness   = "loudness"
)

// CheckResult records one comparison.
type CheckResult struct {
	Name     string
	Expected string
	Actual   string
	Passed   bool
}

// Report is the outcome of a validation run.
type Report struct {
	Path       string
	Width      int
	Height     int
	Duration   float64
	LoudnessDB float64
	Checks     []CheckResult
}

// Passed reports whether every check ran and succeeded.
func (r Report) Passed() bool {
	if len(r.Checks) == 0 {
		return false
	}
	for _, c := range r.Checks {
		if !c.Passed {
			return false
		}
	}
	return r.Checks[len(r.Checks)-1].Name == CheckLoudness
}

// Rows returns one table row per executed check: name, expected, actual, status.
func (r Report) Rows() [][]string {
	rows := make([][]string, 0, len(r.Checks))
	for _, c := range r.Checks {
		status := "pass"
		if !c.Passed {
			status = "FAIL"
		}
		rows = append(rows, []string{c.Name, c.Expected, c.Actual, status})
	}
	return rows
}

// Summary renders the one-line success message.
func (r Report) Summary() string {
	return fmt.Sprintf("Validation passed: %dx%d, %ss, %s dB",
		r.Width, r.Height, formatSeconds(r.Duration), formatDB(r.LoudnessDB))
}

func (r *Report) record(name, expected, actual string, passed bool) {
	r.Checks = append(r.Checks, CheckResult{Name: name, Expected: expected, Actual: actual, Passed: passed})
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func formatDB(v float64) string {
	if math.IsInf(v, -1) {
		return "-inf"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}
