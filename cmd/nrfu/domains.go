package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cgast/nrfu/pkg/nrfu"
)

func newDomainsCmd(g *globalOptions) *cobra.Command {
	var captures string

	cmd := &cobra.Command{
		Use:   "domains",
		Short: "List the verification domains and their show commands",
		Long: `domains lists every verification domain with the show command it reads.
With --captures it also tells which commands have a captured output there.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var captured map[string]bool
			if captures != "" {
				fetcher, err := newFetcher(g.cfg, g.cfg.Device, captures)
				if err != nil {
					return err
				}
				cmds, err := fetcher.Commands()
				if err != nil {
					return err
				}
				captured = make(map[string]bool, len(cmds))
				for _, c := range cmds {
					captured[c] = true
				}
			}
			return writeDomains(cmd.OutOrStdout(), nrfu.DefaultRegistry(), captured)
		},
	}

	cmd.Flags().StringVar(&captures, "captures", "", "Directory of captured show outputs to inspect")
	return cmd
}

// writeDomains prints the domain table. A nil captured map leaves out the
// CAPTURED column.
func writeDomains(out io.Writer, reg *nrfu.Registry, captured map[string]bool) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	if captured == nil {
		fmt.Fprintln(tw, "DOMAIN\tCOMMAND")
	} else {
		fmt.Fprintln(tw, "DOMAIN\tCOMMAND\tCAPTURED")
	}
	for _, d := range reg.List() {
		if captured == nil {
			fmt.Fprintf(tw, "%s\t%s\n", d.Name(), d.Command())
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", d.Name(), d.Command(), yesNo(captured[d.Command()]))
	}
	return tw.Flush()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
