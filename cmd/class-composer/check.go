package main

import (
	"context"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"class-composer/internal/decl"
	"class-composer/internal/diagnostic"
	"class-composer/internal/resolve"
	"class-composer/internal/typesys"
)

const codeLoadFailed = "load_failed"

type checkResult struct {
	path  string
	diags *diagnostic.Diagnostics
}

func newCheckCmd(a *app) *cobra.Command {
	var jobs int

	cmd := &cobra.Command{
		Use:   "check <file>...",
		Short: "Validate and dry-resolve declaration files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCheck(cmd, args, jobs)
		},
	}

	cmd.Flags().IntVarP(&jobs, "jobs", "j", 0, "files checked in parallel (default: GOMAXPROCS)")

	return cmd
}

func (a *app) runCheck(cmd *cobra.Command, paths []string, jobs int) error {
	results, err := a.checkFiles(cmd.Context(), paths, jobs)
	if err != nil {
		return err
	}

	p := newPrinter(cmd.OutOrStdout(), a.cfg.Output.Color)

	var errs, warns int

	for _, r := range results {
		p.diagnostics(r.path, r.diags)
		errs += len(r.diags.Errors)
		warns += len(r.diags.Warnings)
	}

	p.summary(len(results), errs, warns)

	if errs > 0 {
		return fmt.Errorf("%w (%d error(s))", errDeclarationsFailed, errs)
	}

	return nil
}

// checkFiles applies each file against its own registry. Results keep
// the order of paths.
func (a *app) checkFiles(ctx context.Context, paths []string, jobs int) ([]checkResult, error) {
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	results := make([]checkResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))

	for i, path := range paths {
		g.Go(func() error {
			results[i] = a.checkFile(gctx, path)
			return gctx.Err()
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

func (a *app) checkFile(ctx context.Context, path string) checkResult {
	diags := &diagnostic.Diagnostics{}

	f, err := decl.LoadFile(path)
	if err != nil {
		diags.AddError(codeLoadFailed, err.Error(), "", "")
		return checkResult{path: path, diags: diags}
	}

	res, err := decl.Apply(ctx, f, typesys.NewRegistry(), resolve.New(resolve.Config{Logger: a.logger}),
		decl.Options{Logger: a.logger})
	if res != nil {
		diags.Merge(*res.Diagnostics)
	}

	if err != nil && ctx.Err() == nil {
		diags.AddError(codeLoadFailed, err.Error(), "", "")
	}

	a.logger.Debug("checked file", "file", path, "errors", len(diags.Errors))

	return checkResult{path: path, diags: diags}
}
