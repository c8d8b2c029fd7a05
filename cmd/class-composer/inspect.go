package main

import (
	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"class-composer/internal/export"
	"class-composer/internal/typesys"
)

type inspectOptions struct {
	format string
	raw    bool
}

func newInspectCmd(a *app) *cobra.Command {
	var opts inspectOptions

	cmd := &cobra.Command{
		Use:   "inspect <package>...",
		Short: "Import Go packages and show the types built from their structs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("format") {
				a.cfg.Output.Format = opts.format
			}

			return a.runInspect(cmd, args, opts.raw)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format (yaml|json|msgpack)")
	cmd.Flags().BoolVar(&opts.raw, "raw", false, "dump the type views with go-spew instead of encoding them")

	return cmd
}

func (a *app) runInspect(cmd *cobra.Command, patterns []string, raw bool) error {
	format, err := export.ParseFormat(a.cfg.Output.Format)
	if err != nil {
		return err
	}

	reg := typesys.NewRegistry()

	ids, err := typesys.NewImporter(reg).LoadPackages(patterns...)
	if err != nil {
		return err
	}

	a.logger.Info("imported packages", "patterns", patterns, "types", len(ids))

	doc := &export.Document{Version: export.SchemaVersion, Types: make([]export.TypeView, 0, len(ids))}

	for _, id := range ids {
		t, ok := reg.Lookup(id.Qualified())
		if !ok {
			continue
		}

		doc.Types = append(doc.Types, export.View(id.Qualified(), t))
	}

	if raw {
		cfg := spew.ConfigState{Indent: "  ", SortKeys: true, DisablePointerAddresses: true}
		cfg.Fdump(cmd.OutOrStdout(), doc.Types)

		return nil
	}

	return export.Encode(cmd.OutOrStdout(), doc, format)
}
