package main

import (
	"encoding/json"
	"fmt"
	"runtime"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// Version is the CLI version. Overridden at build time via -ldflags.
var Version = "0.1.0-dev"

type versionPayload struct {
	Tool    string `json:"tool"`
	Version string `json:"version"`
	Go      string `json:"go"`
}

func newVersionCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show the class-composer version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			payload := versionPayload{Tool: "class-composer", Version: Version, Go: runtime.Version()}

			switch strings.ToLower(format) {
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")

				return enc.Encode(payload)
			case "pretty", "":
				name := color.New(color.FgCyan, color.Bold).Sprint(payload.Tool)
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n", name, payload.Version, payload.Go)

				return nil
			default:
				return fmt.Errorf("unknown format %q (expected pretty or json)", format)
			}
		},
	}

	cmd.Flags().StringVar(&format, "format", "pretty", "output format (pretty|json)")

	return cmd
}
