// Package validate implements commands that check user input the way
// webapp create does, without touching the host.
package validate

import (
	"github.com/spf13/cobra"
	"github.com/wasmhost/wasm/cmd/output"
	"github.com/wasmhost/wasm/validators"
)

func NewCmdValidate() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate domains, ports and sources",
		Long: `Check a domain, port or application source and show how wasm
would interpret it. Exits non-zero when the input is invalid.`,
	}

	cmd.AddCommand(newCmdDomain(), newCmdPort(), newCmdSource())
	return cmd
}

func newCmdDomain() *cobra.Command {
	return &cobra.Command{
		Use:   "domain <domain>",
		Short: "Validate and normalize a domain name",
		Example: `  wasm validate domain api.example.com
  wasm validate domain EXAMPLE.COM`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			normalized, err := validators.ValidateDomain(args[0])
			if err != nil {
				return err
			}

			if err := output.Fprint(cmd, output.Success, "Valid domain: %s", normalized); err != nil {
				return err
			}

			table, err := output.PrintDomainParts(validators.ExtractDomainParts(normalized))
			if err != nil {
				return err
			}
			return output.FprintPlain(cmd, table)
		},
	}
}

func newCmdPort() *cobra.Command {
	return &cobra.Command{
		Use:   "port <port>",
		Short: "Validate a port number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			port, err := validators.ParsePort(args[0])
			if err != nil {
				return err
			}
			return output.Fprint(cmd, output.Success, "Valid port: %s", port)
		},
	}
}

func newCmdSource() *cobra.Command {
	return &cobra.Command{
		Use:   "source <source>",
		Short: "Classify an application source",
		Long: `Classify a source as a git repository or a local path.

Accepted git forms are SSH (git@github.com:owner/repo.git), HTTPS
(https://github.com/owner/repo) and GitHub shorthand (owner/repo).
Anything else is treated as a local path.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := validators.ValidateSource(args[0])
			if err != nil {
				return err
			}

			if err := output.Fprint(cmd, output.Success, "Valid %s source", source.Kind); err != nil {
				return err
			}

			table, err := output.PrintSource(source)
			if err != nil {
				return err
			}
			return output.FprintPlain(cmd, table)
		},
	}
}
