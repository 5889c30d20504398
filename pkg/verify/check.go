package verify

import (
	"time"

	"github.com/cgast/nrfu/pkg/nrfu"
)

// Check validates one test case against a snapshot and classifies the
// outcome: pass, fail (with a taxonomy kind), or error for anything the
// taxonomy does not cover.
func Check(d nrfu.Domain, snapshot []byte, tc nrfu.TestCase) CaseResult {
	res := CaseResult{Label: d.Label(tc), TestCase: tc, Status: StatusPass}

	err := d.Validate(snapshot, tc)
	if err == nil {
		return res
	}

	res.Err = err
	res.Message = nrfu.Message(err)
	if kind, ok := nrfu.KindOf(err); ok {
		res.Status = StatusFail
		res.Kind = kind
		res.Fields = nrfu.Fields(err)
	} else {
		res.Status = StatusError
	}
	return res
}

// VerifyDomain runs every test case of one domain against its snapshot.
// With failFast it stops at the first case that does not pass.
func VerifyDomain(d nrfu.Domain, snapshot []byte, cases []nrfu.TestCase, failFast bool) DomainResult {
	start := time.Now()
	dr := DomainResult{
		Domain:  d.Name(),
		Command: d.Command(),
		Status:  StatusPass,
		Cases:   make([]CaseResult, 0, len(cases)),
	}

	for _, tc := range cases {
		cr := Check(d, snapshot, tc)
		dr.Cases = append(dr.Cases, cr)
		if cr.Status == StatusPass {
			continue
		}
		dr.Status = worse(dr.Status, cr.Status)
		if failFast {
			break
		}
	}

	dr.Duration = time.Since(start)
	return dr
}

// worse orders statuses pass < fail < error.
func worse(a, b Status) Status {
	rank := map[Status]int{StatusPass: 0, StatusSkipped: 0, StatusFail: 1, StatusError: 2}
	if rank[b] > rank[a] {
		return b
	}
	return a
}
