// Package setup implements host preparation commands.
package setup

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
	"github.com/wasmhost/wasm/app"
	"github.com/wasmhost/wasm/cmd/output"
)

var geteuid = os.Geteuid

var errRootRequired = errors.New("initial setup requires root privileges, run: sudo wasm setup init")

func NewCmdSetup() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Prepare this host for wasm",
	}

	cmd.AddCommand(
		NewCmdSetupInit(),
		NewCmdSetupPermissions(),
	)
	return cmd
}

func NewCmdSetupInit() *cobra.Command {
	var forceUser bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create wasm directories, configuration and registry",
		Long: `Create the apps, log, data and config directories, generate an
encryption key for stored git credentials, write the configuration file and
initialize the app registry.

Running init again only fills in what is missing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if geteuid() != 0 && !forceUser {
				return errRootRequired
			}

			steps, err := app.GetSetupService().Init()
			if len(steps) > 0 {
				if perr := output.FprintPlain(cmd, output.PrintSetupSteps(steps)); perr != nil {
					return perr
				}
			}
			if err != nil {
				return err
			}
			return output.Fprint(cmd, output.Success, "Setup complete")
		},
	}

	cmd.Flags().BoolVar(&forceUser, "force-user", false, "Run without root, for installs under directories you own")
	return cmd
}

func NewCmdSetupPermissions() *cobra.Command {
	return &cobra.Command{
		Use:   "permissions",
		Short: "Check access to the directories wasm uses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := output.PrintPermissionReport(app.GetSetupService().CheckPermissions())
			if err != nil {
				return err
			}
			return output.FprintPlain(cmd, report)
		},
	}
}
