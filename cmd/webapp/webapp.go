// Package webapp implements the commands that register and manage web apps.
package webapp

import (
	"github.com/spf13/cobra"
)

func NewCmdWebapp() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "webapp",
		Aliases: []string{"app"},
		Short:   "Manage web applications",
		Long: `Create, inspect, update and remove the web applications wasm manages.

Each app is identified by its domain. Its registry name and directory under
the apps directory are derived from the domain.`,
	}

	cmd.AddCommand(
		NewCmdWebappCreate(),
		NewCmdWebappList(),
		NewCmdWebappShow(),
		NewCmdWebappUpdate(),
		NewCmdWebappRemove(),
	)
	return cmd
}
