// Package port implements commands for default ports and port availability.
package port

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/wasmhost/wasm/app"
	"github.com/wasmhost/wasm/cmd/output"
	"github.com/wasmhost/wasm/validators"
)

func NewCmdPort() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "port",
		Short: "Look up default ports and check availability",
	}

	cmd.AddCommand(newCmdDefault(), newCmdCheck())
	return cmd
}

func newCmdDefault() *cobra.Command {
	return &cobra.Command{
		Use:   "default <app-type>",
		Short: "Show the default port for an app type",
		Long: fmt.Sprintf(`Show the conventional port for an app type.

Known types: %s. Unknown types get %d.`,
			strings.Join(validators.KnownAppTypes(), ", "), validators.FallbackPort),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			port := validators.GetDefaultPort(args[0])

			if !knownAppType(args[0]) {
				if err := output.Fprint(cmd, output.Warning, "Unknown app type %q, using fallback port", args[0]); err != nil {
					return err
				}
			}
			return output.Fprint(cmd, output.Plain, "%d", port)
		},
	}
}

func newCmdCheck() *cobra.Command {
	var host string

	cmd := &cobra.Command{
		Use:   "check <port>",
		Short: "Check whether a port is free on this host",
		Long: `Check whether a port can be bound right now. The answer can change
as soon as the command returns. Exits non-zero when the port is in use.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			port, err := validators.ParsePort(args[0])
			if err != nil {
				return err
			}

			checker := app.GetPortChecker()
			if cmd.Flags().Changed("host") {
				checker = validators.NewPortProber(host, app.GetConfig().PortProbeTimeout)
			}

			if !checker.Available(cmd.Context(), port.Int()) {
				return fmt.Errorf("port %d is in use", port.Int())
			}
			return output.Fprint(cmd, output.Success, "Port %d is available", port.Int())
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "Address to probe (default from config ports.probe_host)")
	return cmd
}

func knownAppType(appType string) bool {
	return slices.Contains(validators.KnownAppTypes(), strings.ToLower(strings.TrimSpace(appType)))
}
