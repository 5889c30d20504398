package verify

import (
	"time"

	"github.com/cgast/nrfu/pkg/nrfu"
)

// Status is the outcome of one test case or domain.
type Status string

const (
	StatusPass    Status = "pass"
	StatusFail    Status = "fail"
	StatusError   Status = "error"
	StatusSkipped Status = "skipped"
)

// CaseResult records the outcome of a single test case.
type CaseResult struct {
	Label    string         `json:"label"`
	TestCase nrfu.TestCase  `json:"test_case"`
	Status   Status         `json:"status"`
	Kind     nrfu.Kind      `json:"kind,omitempty"`
	Message  string         `json:"message,omitempty"`
	Fields   map[string]any `json:"fields,omitempty"`
	Err      error          `json:"-"`
}

// DomainResult records the outcome of every test case of one domain.
type DomainResult struct {
	Domain   string        `json:"domain"`
	Command  string        `json:"command"`
	Status   Status        `json:"status"`
	Error    string        `json:"error,omitempty"`
	Reason   string        `json:"reason,omitempty"`
	Cases    []CaseResult  `json:"cases,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Report is the outcome of one verification run against a device.
type Report struct {
	Device    string         `json:"device"`
	Passed    bool           `json:"passed"`
	Timestamp time.Time      `json:"timestamp"`
	Domains   []DomainResult `json:"domains"`
}

// Totals counts test cases by status across the report.
type Totals struct {
	Pass  int `json:"pass"`
	Fail  int `json:"fail"`
	Error int `json:"error"`
}

// Totals returns the per-status case counts. An errored domain counts as a
// single error.
func (r *Report) Totals() Totals {
	var t Totals
	for _, d := range r.Domains {
		if d.Status == StatusError && len(d.Cases) == 0 {
			t.Error++
			continue
		}
		for _, c := range d.Cases {
			switch c.Status {
			case StatusPass:
				t.Pass++
			case StatusFail:
				t.Fail++
			case StatusError:
				t.Error++
			}
		}
	}
	return t
}

// Failure is a failed or errored case together with its domain.
type Failure struct {
	Domain string
	Case   CaseResult
}

// Failures returns every failed or errored case, in report order. Domains
// that errored before any case ran are returned as a single failure with
// an empty case label.
func (r *Report) Failures() []Failure {
	var out []Failure
	for _, d := range r.Domains {
		if d.Status == StatusError && len(d.Cases) == 0 {
			out = append(out, Failure{
				Domain: d.Domain,
				Case:   CaseResult{Status: StatusError, Message: d.Error},
			})
			continue
		}
		for _, c := range d.Cases {
			if c.Status == StatusFail || c.Status == StatusError {
				out = append(out, Failure{Domain: d.Domain, Case: c})
			}
		}
	}
	return out
}
