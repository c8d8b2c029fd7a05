// Package main provides the CLI entrypoint for class-composer.
//
// class-composer resolves type declarations whose base lists mix genuine
// bases with directives (patch, include, inherits, metaclass, decorate,
// compose):
//   - resolve applies a declaration file and exports the resulting types
//   - check validates and dry-resolves many files concurrently
//   - inspect imports Go packages and shows the types built from their structs
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"class-composer/internal/config"
	"class-composer/internal/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// app carries settings shared by every subcommand.
type app struct {
	cfg    *config.Config
	logger *slog.Logger

	configPath string
	logLevel   string
	logFormat  string
	colorMode  string
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:          "class-composer",
		Short:        "Resolve type declarations built from bases and directives",
		Version:      Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "path to "+config.FileName+" (default: searched upward from the working directory)")
	pf.StringVar(&a.logLevel, "log-level", "", "log level (debug|info|warn|error)")
	pf.StringVar(&a.logFormat, "log-format", "", "log format (text|json)")
	pf.StringVar(&a.colorMode, "color", "", "colorize diagnostics (auto|always|never)")

	root.AddCommand(newResolveCmd(a))
	root.AddCommand(newCheckCmd(a))
	root.AddCommand(newInspectCmd(a))
	root.AddCommand(newVersionCmd())

	return root
}

// setup loads the config, applies flag overrides and builds the logger.
func (a *app) setup(cmd *cobra.Command) error {
	var (
		cfg *config.Config
		err error
	)

	if a.configPath != "" {
		cfg, err = config.LoadFile(a.configPath)
	} else {
		cfg, err = config.Load(".")
	}

	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}

	if flags.Changed("log-format") {
		cfg.Log.Format = a.logFormat
	}

	if flags.Changed("color") {
		cfg.Output.Color = a.colorMode
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger

	if cfg.Path != "" {
		logger.Debug("loaded config", "path", cfg.Path)
	}

	return nil
}
