package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cgast/nrfu/internal/config"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

// errChecksFailed makes the process exit non-zero after a report that has
// already been printed.
var errChecksFailed = errors.New("nrfu checks failed")

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errChecksFailed) {
			fmt.Fprintln(os.Stderr, err)
		}
		cancel()
		os.Exit(1)
	}
}

// globalOptions are the flags shared by every subcommand.
type globalOptions struct {
	configPath string
	logLevel   string
	debug      bool
	device     string

	cfg config.Config
}

// newRootCmd creates the root command and its subcommands.
func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "nrfu",
		Short: "Network Ready For Use verification",
		Long: `nrfu checks a device's operational state against declarative test cases.
It reads captured show-command outputs, validates each domain's test cases against
them, and reports every case as pass, fail (missing, unexpected or mismatch) or error.`,
		Version:       fmt.Sprintf("%s (built: %s)", Version, BuildTime),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", config.DefaultPath, "Path to config file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Debug mode")
	cmd.PersistentFlags().StringVar(&opts.device, "device", "", "Device under test (overrides config)")

	cmd.AddCommand(
		newCheckCmd(opts),
		newSnapshotCmd(opts),
		newDiffCmd(opts),
		newDomainsCmd(opts),
		newAgentCmd(),
	)
	return cmd
}

// load reads the config file and applies the global flag overrides.
func (o *globalOptions) load(cmd *cobra.Command) error {
	cfg, err := config.LoadConfig(o.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("device") {
		cfg.Device = o.device
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if o.debug {
		cfg.LogLevel = "debug"
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	log.SetLevel(level)
	log.SetOutput(os.Stderr)

	o.cfg = cfg
	return nil
}
