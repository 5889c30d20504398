package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/cgast/nrfu/pkg/nrfu"
	"github.com/cgast/nrfu/pkg/testcases"
	"github.com/cgast/nrfu/pkg/verify"
)

type diffOptions struct {
	jsonOut  bool
	exitCode bool
}

func newDiffCmd(g *globalOptions) *cobra.Command {
	opts := &diffOptions{}

	cmd := &cobra.Command{
		Use:   "diff <before> <after>",
		Short: "Compare two test case baselines",
		Long: `diff compares two baselines domain by domain. Each baseline is a test case
directory or, when the path ends in .db, a bolt database read for --device.
Test cases are matched by their params.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(cmd.OutOrStdout(), g.cfg.Device, args[0], args[1], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "Print the changes as JSON")
	cmd.Flags().BoolVar(&opts.exitCode, "exit-code", false, "Exit with status 1 when the baselines differ")

	return cmd
}

func runDiff(out io.Writer, device, before, after string, opts *diffOptions) error {
	a, err := openStoreAt(before, device)
	if err != nil {
		return err
	}
	defer a.Close()
	b, err := openStoreAt(after, device)
	if err != nil {
		return err
	}
	defer b.Close()

	changes, err := testcases.DiffStores(a, b)
	if err != nil {
		return err
	}

	if opts.jsonOut {
		if changes == nil {
			changes = []testcases.Change{}
		}
		if err := verify.WriteJSON(out, changes); err != nil {
			return err
		}
	} else {
		writeChanges(out, nrfu.DefaultRegistry(), changes)
	}

	if opts.exitCode && len(changes) > 0 {
		return errChecksFailed
	}
	return nil
}

func writeChanges(out io.Writer, reg *nrfu.Registry, changes []testcases.Change) {
	if len(changes) == 0 {
		fmt.Fprintln(out, "no changes")
		return
	}
	for _, c := range changes {
		switch c.Type {
		case testcases.ChangeAdded:
			fmt.Fprintf(out, "+ %s %s\n", c.Domain, changeLabel(reg, c.Domain, *c.After))
		case testcases.ChangeRemoved:
			fmt.Fprintf(out, "- %s %s\n", c.Domain, changeLabel(reg, c.Domain, *c.Before))
		case testcases.ChangeModified:
			fmt.Fprintf(out, "~ %s %s: %s -> %s\n", c.Domain, changeLabel(reg, c.Domain, *c.After),
				compact(c.Before.Expected), compact(c.After.Expected))
		}
	}
}

// changeLabel names a test case by its domain label, or by its params for
// domains this build does not know.
func changeLabel(reg *nrfu.Registry, domain string, tc nrfu.TestCase) string {
	if d, err := reg.Resolve(domain); err == nil {
		return d.Label(tc)
	}
	return compact(tc.Params)
}

func compact(v map[string]any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}
