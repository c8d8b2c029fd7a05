package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"class-composer/internal/decl"
	"class-composer/internal/export"
	"class-composer/internal/resolve"
	"class-composer/internal/typesys"
)

var errDeclarationsFailed = errors.New("some declarations failed")

type resolveOptions struct {
	format string
	out    string
	strict bool
}

func newResolveCmd(a *app) *cobra.Command {
	var opts resolveOptions

	cmd := &cobra.Command{
		Use:   "resolve <file>",
		Short: "Resolve a declaration file and export the resulting types",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("format") {
				a.cfg.Output.Format = opts.format
			}

			if opts.strict {
				a.cfg.Resolve.Strict = true
			}

			return a.runResolve(cmd, args[0], opts.out)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format (yaml|json|msgpack)")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "write output to this file instead of stdout")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "stop at the first failing declaration")

	return cmd
}

func (a *app) runResolve(cmd *cobra.Command, path, out string) error {
	format, err := export.ParseFormat(a.cfg.Output.Format)
	if err != nil {
		return err
	}

	f, err := decl.LoadFile(path)
	if err != nil {
		return err
	}

	reg := typesys.NewRegistry()
	r := resolve.New(resolve.Config{Logger: a.logger})

	res, err := decl.Apply(cmd.Context(), f, reg, r, decl.Options{
		Strict: a.cfg.Resolve.Strict,
		Logger: a.logger,
	})

	newPrinter(cmd.ErrOrStderr(), a.cfg.Output.Color).diagnostics(path, res.Diagnostics)

	if err != nil {
		return err
	}

	a.logger.Info("resolved declarations", "file", path, "types", len(res.Types), "imported", len(res.Imported))

	if err := writeDocument(cmd.OutOrStdout(), out, export.Snapshot(reg), format); err != nil {
		return err
	}

	if res.Diagnostics.HasErrors() {
		return fmt.Errorf("%s: %w (%d error(s))", path, errDeclarationsFailed, len(res.Diagnostics.Errors))
	}

	return nil
}

// writeDocument encodes doc to path, or to stdout when path is empty.
func writeDocument(stdout io.Writer, path string, doc *export.Document, format export.Format) (err error) {
	if path == "" {
		return export.Encode(stdout, doc, format)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	return export.Encode(file, doc, format)
}
