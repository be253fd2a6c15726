// Command hpolog drives a search debug log by hand and inspects its
// checkpoints.
//
//	hpolog repl --config hpolog.yaml
//	hpolog inspect run/latest.pointer
//	hpolog convert run/state.json run/state.yaml
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rickchristie/hpolog/checkpoint"
)

// ANSI color codes
const (
	colorReset = "\033[0m"
	colorRed   = "\033[31m"
	colorCyan  = "\033[36m"
	colorDim   = "\033[2m"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%sError: %v%s\n", colorRed, err, colorReset)
		os.Exit(1)
	}
}

type app struct {
	configPath string
	opts       Options
	logger     *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "hpolog",
		Short:         "Block-structured debug log for hyperparameter search",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "YAML options file")
	flags.String("log-level", "", "override log_level")
	flags.String("resource-attr", "", "override resource_attr")

	root.AddCommand(
		newReplCmd(a),
		newInspectCmd(a),
		newConvertCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	opts, err := LoadOptions(a.configPath)
	if err != nil {
		return err
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		opts.LogLevel = v
	}
	if v, _ := cmd.Flags().GetString("resource-attr"); v != "" {
		opts.ResourceAttr = v
	}
	if err := opts.Validate(); err != nil {
		return err
	}

	logger, err := opts.Logger()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	a.opts = opts
	a.logger = logger
	return nil
}

// store builds a checkpoint store. A GCS client is created only when
// credentials are configured or a location needs one.
func (a *app) store(ctx context.Context, locations ...string) (*checkpoint.Store, error) {
	store := checkpoint.NewStore().WithLogger(a.logger)
	needGCS := a.opts.GCSCredentials != ""
	for _, loc := range locations {
		if _, _, err := checkpoint.ParseGCSURL(loc); err == nil {
			needGCS = true
		}
	}
	if !needGCS {
		return store, nil
	}
	client, err := checkpoint.NewGCSClient(ctx, a.opts.GCSCredentials)
	if err != nil {
		return nil, err
	}
	return store.WithGCSClient(client), nil
}
