package github

import (
	"context"
	"fmt"
	"strings"

	gh "github.com/google/go-github/v60/github"
	log "github.com/sirupsen/logrus"

	"github.com/cgast/nrfu/pkg/verify"
)

var logger = log.WithFields(log.Fields{
	"package": "platform/github",
})

// Issue is the created issue.
type Issue struct {
	Number  int    `json:"number"`
	HTMLURL string `json:"html_url"`
}

// IssueReporter files one issue per failed verification run.
type IssueReporter struct {
	client *Client
	owner  string
	repo   string
	labels []string
}

// NewIssueReporter creates a reporter filing issues in repo ("owner/name").
func NewIssueReporter(client *Client, repo string, labels []string) (*IssueReporter, error) {
	owner, name, err := ParseRepo(repo)
	if err != nil {
		return nil, err
	}
	return &IssueReporter{client: client, owner: owner, repo: name, labels: labels}, nil
}

// Report files an issue describing the report's failures. A passing report
// files nothing and returns nil.
func (r *IssueReporter) Report(ctx context.Context, rep *verify.Report) (*Issue, error) {
	if rep.Passed {
		return nil, nil
	}

	req := &gh.IssueRequest{
		Title: gh.String(IssueTitle(rep)),
		Body:  gh.String(IssueBody(rep)),
	}
	if len(r.labels) > 0 {
		labels := append([]string(nil), r.labels...)
		req.Labels = &labels
	}

	issue, _, err := r.client.inner.Issues.Create(ctx, r.owner, r.repo, req)
	if err != nil {
		return nil, fmt.Errorf("create issue: %w", err)
	}

	logger.WithField("repo", r.owner+"/"+r.repo).WithField("number", issue.GetNumber()).Info("Filed NRFU issue")
	return &Issue{Number: issue.GetNumber(), HTMLURL: issue.GetHTMLURL()}, nil
}

// IssueTitle summarizes a report in one line.
func IssueTitle(rep *verify.Report) string {
	t := rep.Totals()
	device := rep.Device
	if device == "" {
		device = "device"
	}
	return fmt.Sprintf("NRFU failed on %s: %d failed, %d errors", device, t.Fail, t.Error)
}

// IssueBody renders the failures as markdown, one section per domain.
func IssueBody(rep *verify.Report) string {
	var b strings.Builder
	t := rep.Totals()
	fmt.Fprintf(&b, "NRFU run at %s: %d passed, %d failed, %d errors.\n",
		rep.Timestamp.UTC().Format("2006-01-02 15:04:05 MST"), t.Pass, t.Fail, t.Error)

	current := ""
	for _, f := range rep.Failures() {
		if f.Domain != current {
			current = f.Domain
			fmt.Fprintf(&b, "\n### %s\n\n", current)
		}
		if f.Case.Label == "" {
			fmt.Fprintf(&b, "- **error**: %s\n", f.Case.Message)
			continue
		}

		status := string(f.Case.Status)
		if f.Case.Kind != "" {
			status = string(f.Case.Kind)
		}
		fmt.Fprintf(&b, "- `%s` **%s**", f.Case.Label, status)
		if f.Case.Err != nil {
			fmt.Fprintf(&b, "\n  ```\n  %s\n  ```\n", strings.ReplaceAll(f.Case.Err.Error(), "\n", "\n  "))
		} else {
			fmt.Fprintf(&b, ": %s\n", f.Case.Message)
		}
	}
	return b.String()
}
