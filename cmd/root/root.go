// Package root implements the command line interface for wasm.
package root

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/wasmhost/wasm/app"
	"github.com/wasmhost/wasm/cmd/output"
	"github.com/wasmhost/wasm/cmd/port"
	"github.com/wasmhost/wasm/cmd/setup"
	"github.com/wasmhost/wasm/cmd/utils"
	"github.com/wasmhost/wasm/cmd/validate"
	"github.com/wasmhost/wasm/cmd/version"
	"github.com/wasmhost/wasm/cmd/webapp"
	"github.com/wasmhost/wasm/config"
	"github.com/wasmhost/wasm/logging"
)

// Commands that must work without a readable config file.
var skipInitCommands = map[string]bool{
	"version": true,
	"help":    true,
}

func Execute() {
	cmd, err := NewCmdRoot().ExecuteC()
	closeErr := app.Close()
	if err != nil {
		utils.HandleCommandError(cmd.CommandPath(), err)
	}
	if closeErr != nil {
		utils.HandleCommandError("closing app registry", closeErr)
	}
}

func NewCmdRoot() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "wasm",
		Short: "Web App System Manager",
		Long: `wasm deploys web applications on a single host.

It validates domains, ports and sources, registers each app, and fetches its
source from git or a local directory into the apps directory.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if skipInitCommands[cmd.Name()] {
				return nil
			}

			cfg, err := config.NewConfig(configPath)
			if err != nil {
				return fmt.Errorf("failed to initialize configuration: %w", err)
			}

			// CLI flags override config
			output.InitColors(!cfg.ColorEnabled || output.NoColor.IsSet())

			logLevel := cfg.LogLevel
			if logging.LogLevel.IsSet() {
				logLevel = logging.LogLevel.String()
			}
			logging.InitLogging(logLevel)

			return app.InitializeWithConfig(cfg)
		},
	}

	cmd.PersistentFlags().
		StringVarP(&configPath, "config", "C", "", fmt.Sprintf("Config file (default %s, or $WASM_CONFIG)", config.DefaultConfigPath))
	cmd.PersistentFlags().VarP(logging.LogLevel, "log-level", "l", "Set log verbosity level")
	cmd.PersistentFlags().VarP(output.NoColor, "no-color", "c", "Disable colored terminal output")
	cmd.PersistentFlags().Lookup("no-color").NoOptDefVal = "true"

	cmd.AddCommand(
		validate.NewCmdValidate(),
		port.NewCmdPort(),
		webapp.NewCmdWebapp(),
		setup.NewCmdSetup(),
		version.NewCmdVersion(),
	)
	return cmd
}
