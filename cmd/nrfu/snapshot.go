package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/cgast/nrfu/pkg/events"
	"github.com/cgast/nrfu/pkg/nrfu"
	"github.com/cgast/nrfu/pkg/verify"
)

type snapshotOptions struct {
	captures  string
	testcases string
	domains   []string
	jsonOut   bool
}

func newSnapshotCmd(g *globalOptions) *cobra.Command {
	opts := &snapshotOptions{}

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Capture a device's current state as a test case baseline",
		Long: `snapshot generates test cases from the device's captured show outputs and saves
one document per domain, replacing what was there. Domains that generate no test cases
are skipped and left untouched.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSnapshot(cmd.Context(), cmd.OutOrStdout(), g, opts)
		},
	}

	cmd.Flags().StringVar(&opts.captures, "captures", "", "Directory of captured show outputs (overrides config)")
	cmd.Flags().StringVar(&opts.testcases, "testcases", "", "Test case directory or database to write (overrides config)")
	cmd.Flags().StringSliceVar(&opts.domains, "domains", nil, "Domains to capture (comma-separated)")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "Print the results as JSON")

	return cmd
}

func runSnapshot(ctx context.Context, out io.Writer, g *globalOptions, opts *snapshotOptions) error {
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

	bus := events.NewMemoryBus()
	stop := watchEvents(bus)
	engine := verify.NewEngine(
		verify.WithDevice(cfg.Device),
		verify.WithConcurrency(cfg.Verify.Concurrency),
		verify.WithBus(bus),
	)
	results, err := engine.Capture(ctx, fetcher, store, domains)
	stop()
	if err != nil {
		return fmt.Errorf("snapshot interrupted: %w", err)
	}

	if opts.jsonOut {
		if err := verify.WriteJSON(out, results); err != nil {
			return err
		}
	}

	failed := 0
	for _, r := range results {
		if r.Status == verify.StatusError {
			failed++
		}
		if opts.jsonOut {
			continue
		}
		switch r.Status {
		case verify.StatusSkipped:
			fmt.Fprintf(out, "%s: skipped (%s)\n", r.Domain, r.Reason)
		case verify.StatusError:
			fmt.Fprintf(out, "%s: ERROR %s\n", r.Domain, r.Error)
		default:
			fmt.Fprintf(out, "%s: %d test cases\n", r.Domain, r.Count)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d domains could not be captured", failed, len(results))
	}
	return nil
}
