// Package version provides the version command for wasm.
package version

import (
	"github.com/spf13/cobra"
	"github.com/wasmhost/wasm/app"
	"github.com/wasmhost/wasm/cmd/output"
)

// NewCmdVersion creates the version command
func NewCmdVersion() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display version information for wasm.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return output.Fprint(cmd, output.Plain, "%s", app.Version)
		},
	}
}
