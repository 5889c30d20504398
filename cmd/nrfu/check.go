package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/cgast/nrfu/internal/config"
	"github.com/cgast/nrfu/pkg/events"
	"github.com/cgast/nrfu/pkg/nrfu"
	ghplatform "github.com/cgast/nrfu/pkg/platform/github"
	"github.com/cgast/nrfu/pkg/verify"
)

type checkOptions struct {
	captures    string
	testcases   string
	domains     []string
	failFast    bool
	concurrency int
	jsonOut     bool
	verbose     bool
	github      bool
}

func newCheckCmd(g *globalOptions) *cobra.Command {
	opts := &checkOptions{}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify a device against its test cases",
		Long: `check loads each domain's test cases, validates them against the device's
captured show outputs and prints a report. Domains without a test case document are
skipped. Exits with status 1 when any test case fails or errors.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("fail-fast") {
				g.cfg.Verify.FailFast = opts.failFast
			}
			if cmd.Flags().Changed("concurrency") {
				g.cfg.Verify.Concurrency = opts.concurrency
			}
			return runCheck(cmd.Context(), cmd.OutOrStdout(), g, opts)
		},
	}

	cmd.Flags().StringVar(&opts.captures, "captures", "", "Directory of captured show outputs (overrides config)")
	cmd.Flags().StringVar(&opts.testcases, "testcases", "", "Test case directory or database (overrides config)")
	cmd.Flags().StringSliceVar(&opts.domains, "domains", nil,
		"Domains to check (comma-separated, e.g. cabling,lag-status; trailing * allowed)")
	cmd.Flags().BoolVar(&opts.failFast, "fail-fast", false, "Stop at the first failed test case")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", verify.DefaultConcurrency, "Domains verified at once")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "Print the report as JSON")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "List passing test cases too")
	cmd.Flags().BoolVar(&opts.github, "github", false, "File a GitHub issue when checks fail")

	return cmd
}

func runCheck(ctx context.Context, out io.Writer, g *globalOptions, opts *checkOptions) error {
	cfg := g.cfg

	domains, err := selectDomains(nrfu.DefaultRegistry(), cfg, opts.domains)
	if err != nil {
		return err
	}
	fetcher, err := newFetcher(cfg, cfg.Device, opts.captures)
	if err != nil {
		return err
	}
	store, err := openStore(cfg, cfg.Device, opts.testcases)
	if err != nil {
		return err
	}
	defer store.Close()

	var reporter *ghplatform.IssueReporter
	if opts.github {
		if reporter, err = newIssueReporter(cfg.Report.GitHub); err != nil {
			return err
		}
	}

	bus := events.NewMemoryBus()
	stop := watchEvents(bus)
	engine := verify.NewEngine(
		verify.WithDevice(cfg.Device),
		verify.WithFailFast(cfg.Verify.FailFast),
		verify.WithConcurrency(cfg.Verify.Concurrency),
		verify.WithBus(bus),
	)
	report, err := engine.Run(ctx, fetcher, store, domains)
	stop()
	if err != nil {
		return fmt.Errorf("check interrupted: %w", err)
	}

	if opts.jsonOut {
		err = verify.WriteJSON(out, report)
	} else {
		err = verify.WriteText(out, report, opts.verbose)
	}
	if err != nil {
		return err
	}

	if reporter != nil && !report.Passed {
		issue, err := reporter.Report(ctx, report)
		if err != nil {
			return fmt.Errorf("report to github: %w", err)
		}
		logger.WithField("issue", issue.Number).Info("Filed GitHub issue")
		fmt.Fprintf(os.Stderr, "Filed %s\n", issue.HTMLURL)
	}

	if !report.Passed {
		return errChecksFailed
	}
	return nil
}

func newIssueReporter(cfg config.GitHubConfig) (*ghplatform.IssueReporter, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("--github needs report.github.token and report.github.repo in the config")
	}
	client, err := ghplatform.NewClient(cfg.Token)
	if err != nil {
		return nil, err
	}
	return ghplatform.NewIssueReporter(client, cfg.Repo, cfg.Labels)
}
