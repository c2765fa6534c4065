// Package cmd implements the stanad commands.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/born-ml/stanmath/internal/config"
)

const version = "v0.1.0-dev"

// app is the state shared by every subcommand once flags are parsed.
type app struct {
	cfgFile string
	verbose bool

	cfg    *config.Config
	logger *slog.Logger
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "stanad",
		Short: "stanad - reverse-mode automatic differentiation toolkit",
		Long: `stanad evaluates log densities and their derivatives with a
tape-based reverse-mode engine and forward-mode dual numbers.

Commands:
  models   - list the built-in log densities
  grad     - value and gradient at a point
  hessian  - value, gradient and Hessian at a point
  optimize - mode of a log density by gradient ascent
  bench    - repeated evaluations with tape reuse`,
		SilenceUsage:      true,
		PersistentPreRunE: a.load,
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file, .toml or .yaml (default: $"+config.EnvPath+")")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newVersionCommand(),
		newModelsCommand(),
		newGradCommand(a),
		newHessianCommand(a),
		newOptimizeCommand(a),
		newBenchCommand(a),
	)
	return root
}

// Execute runs the root command.
func Execute() error {
	err := NewRootCommand().Execute()
	if err != nil {
		printError(err)
	}
	return err
}

func (a *app) load(cmd *cobra.Command, _ []string) error {
	var err error
	if a.cfgFile != "" {
		a.cfg, err = config.Load(a.cfgFile)
	} else {
		a.cfg, err = config.LoadFromEnv()
	}
	if err != nil {
		return err
	}
	a.logger = a.cfg.Logger(cmd.ErrOrStderr(), a.verbose)
	a.logger.Debug("config loaded", "file", a.cfgFile, "workers", a.cfg.Parallel.Workers)
	return nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "stanad %s\n", version)
		},
	}
}

func printError(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
}
