package webapp

import (
	"github.com/spf13/cobra"
	"github.com/wasmhost/wasm/app"
	"github.com/wasmhost/wasm/cmd/output"
)

func NewCmdWebappList() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List registered web apps",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			appService, err := app.GetAppService()
			if err != nil {
				return err
			}

			apps, err := appService.List()
			if err != nil {
				return err
			}

			table, err := output.PrintAppList(apps)
			if err != nil {
				return err
			}
			return output.FprintPlain(cmd, table)
		},
	}
}

func NewCmdWebappShow() *cobra.Command {
	return &cobra.Command{
		Use:   "show <name|domain>",
		Short: "Show details of a web app",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			appService, err := app.GetAppService()
			if err != nil {
				return err
			}

			a, err := appService.Get(args[0])
			if err != nil {
				return err
			}
			return printApp(cmd, a, false)
		},
	}
}

func NewCmdWebappUpdate() *cobra.Command {
	return &cobra.Command{
		Use:   "update <name|domain>",
		Short: "Fetch the latest source of a web app",
		Long: `Pull the latest commit of the app's branch, or copy the local source
directory again. Local changes to tracked files are discarded; untracked files
such as .env are kept.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			appService, err := app.GetAppService()
			if err != nil {
				return err
			}

			updated, err := appService.Update(cmd.Context(), args[0])
			if updated != nil {
				if perr := printApp(cmd, updated, true); perr != nil {
					return perr
				}
			}
			if err != nil {
				return err
			}
			return output.Fprint(cmd, output.Success, "App %s updated", updated.Name)
		},
	}
}

func NewCmdWebappRemove() *cobra.Command {
	var purge bool

	cmd := &cobra.Command{
		Use:     "remove <name|domain>",
		Aliases: []string{"rm"},
		Short:   "Unregister a web app",
		Long: `Remove the app from the registry. Its directory is kept unless --purge
is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			appService, err := app.GetAppService()
			if err != nil {
				return err
			}

			removed, err := appService.Remove(args[0], purge)
			if err != nil {
				return err
			}

			if err := output.Fprint(cmd, output.Success, "App %s removed", removed.Name); err != nil {
				return err
			}
			if purge {
				return output.Fprint(cmd, output.Plain, "Deleted %s", removed.Dir)
			}
			return output.Fprint(cmd, output.Plain, "Files kept in %s", removed.Dir)
		},
	}

	cmd.Flags().BoolVar(&purge, "purge", false, "Also delete the app directory")
	return cmd
}
