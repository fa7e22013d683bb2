package webapp

import (
	"fmt"
	"os"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/wasmhost/wasm/app"
	"github.com/wasmhost/wasm/cmd/output"
	"github.com/wasmhost/wasm/domain"
	"github.com/wasmhost/wasm/services"
)

type createOptions struct {
	domain    string
	source    string
	port      string
	appType   string
	branch    string
	token     string
	tokenUser string
	sshKey    string
	dryRun    bool
}

func NewCmdWebappCreate() *cobra.Command {
	var opts createOptions

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register a web app and fetch its source",
		Long: `Validate the domain, source and port, register the app and fetch its
source into the apps directory.

Without --port the app gets the default port of its type, or the next free
port above it. Static apps are served by nginx from disk and use port 80.`,
		Example: `  wasm webapp create -d api.example.com -s user/api -t nodejs
  wasm webapp create -d example.com -s ~/sites/example -t static
  wasm webapp create -d app.example.com -s git@github.com:org/app.git -t nextjs --ssh-key ~/.ssh/deploy`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.domain, "domain", "d", "", "Domain the app is served on")
	cmd.Flags().StringVarP(&opts.source, "source", "s", "", "Git URL, GitHub owner/repo, or local directory")
	cmd.Flags().StringVarP(&opts.appType, "type", "t", "", "App type: nextjs, nodejs, vite, python or static")
	cmd.Flags().StringVarP(&opts.port, "port", "p", "", "Port the app listens on (default: picked from the app type)")
	cmd.Flags().StringVarP(&opts.branch, "branch", "b", "", "Git branch (default: the remote's default branch)")
	cmd.Flags().StringVar(&opts.token, "token", "", "Access token for private HTTPS repositories")
	cmd.Flags().StringVar(&opts.tokenUser, "token-user", "token", "Username sent with --token")
	cmd.Flags().StringVar(&opts.sshKey, "ssh-key", "", "Private key file for SSH repositories")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Validate and show the plan without changing anything")

	for _, name := range []string{"domain", "source", "type"} {
		if err := cmd.MarkFlagRequired(name); err != nil {
			panic(fmt.Sprintf("CLI setup error: %v", err))
		}
	}
	cmd.MarkFlagsMutuallyExclusive("token", "ssh-key")

	return cmd
}

func runCreate(cmd *cobra.Command, opts createOptions) error {
	auth, err := buildGitAuth(opts)
	if err != nil {
		return err
	}

	req := services.CreateAppRequest{
		Domain: opts.domain,
		Source: opts.source,
		Port:   opts.port,
		Type:   opts.appType,
		Branch: opts.branch,
		Auth:   auth,
	}

	appService, err := app.GetAppService()
	if err != nil {
		return err
	}

	if opts.dryRun {
		planned, err := appService.Plan(cmd.Context(), req)
		if err != nil {
			return err
		}
		if err := output.Fprint(cmd, output.Warning, "Dry run: nothing was changed"); err != nil {
			return err
		}
		return printApp(cmd, planned, true)
	}

	created, err := appService.Create(cmd.Context(), req)
	if created != nil {
		if perr := printApp(cmd, created, true); perr != nil {
			return perr
		}
	}
	if err != nil {
		return err
	}

	return output.Fprint(cmd, output.Success, "App %s created, source in %s", created.Name, created.Dir)
}

func buildGitAuth(opts createOptions) (*domain.GitAuthConfig, error) {
	switch {
	case opts.token != "":
		return &domain.GitAuthConfig{
			HTTPAuth: &domain.GitHTTPAuthConfig{Username: opts.tokenUser, Password: opts.token},
		}, nil
	case opts.sshKey != "":
		path, err := homedir.Expand(opts.sshKey)
		if err != nil {
			return nil, err
		}
		key, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read SSH key: %w", err)
		}
		return &domain.GitAuthConfig{
			SSHAuth: &domain.GitSSHAuthConfig{PrivateKey: string(key), User: "git"},
		}, nil
	default:
		return nil, nil
	}
}

func printApp(cmd *cobra.Command, a *domain.App, short bool) error {
	table, err := output.PrintAppDetails(a, short)
	if err != nil {
		return err
	}
	return output.FprintPlain(cmd, table)
}
