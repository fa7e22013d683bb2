// Package services implements web app planning, registration and source
// fetching on top of the validators and the app registry.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/gosimple/slug"
	"github.com/wasmhost/wasm/config"
	"github.com/wasmhost/wasm/domain"
	"github.com/wasmhost/wasm/repository"
	"github.com/wasmhost/wasm/validators"
	"gorm.io/gorm"
)

// CreateAppRequest is raw user input for a new app. Port may be empty to
// let the service pick one.
type CreateAppRequest struct {
	Domain string
	Source string
	Port   string
	Type   string
	Branch string
	Auth   *domain.GitAuthConfig
}

// AppService registers web apps and keeps their sources on disk.
type AppService struct {
	repo    repository.AppRepository
	git     GitExecutor
	ports   PortChecker
	fetcher *SourceFetcher
	config  *config.Config
}

var _ AppManager = (*AppService)(nil)

func NewAppService(repo repository.AppRepository, git GitExecutor, ports PortChecker, cfg *config.Config) *AppService {
	return &AppService{
		repo:    repo,
		git:     git,
		ports:   ports,
		fetcher: NewSourceFetcher(git),
		config:  cfg,
	}
}

// Plan validates req against the host and the registry and returns the app
// that Create would register. Nothing is written.
func (s *AppService) Plan(ctx context.Context, req CreateAppRequest) (*domain.App, error) {
	domainName, err := validators.ValidateDomain(req.Domain)
	if err != nil {
		return nil, err
	}

	appType, err := domain.ParseAppType(req.Type)
	if err != nil {
		return nil, err
	}

	source, err := validators.ValidateSource(req.Source)
	if err != nil {
		return nil, err
	}
	if !source.IsGit() {
		if req.Auth.Type() != "" {
			return nil, fmt.Errorf("git credentials cannot be used with local source %s", source.Path)
		}
		if source, err = resolveLocalSource(source); err != nil {
			return nil, err
		}
	} else if req.Auth.Type() == domain.GitAuthTypeSSH && !validators.IsSSHGitURL(source.URL) {
		return nil, fmt.Errorf("an SSH key needs an SSH git URL (user@host:owner/repo), got %s", source.URL)
	}

	if existing, err := s.repo.FindByDomain(domainName); err == nil {
		return nil, fmt.Errorf("domain %s is already registered to app %s", domainName, existing.Name)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up domain: %w", err)
	}

	name := slug.Make(domainName)
	if existing, err := s.repo.FindByName(name); err == nil {
		return nil, fmt.Errorf("app name %s is already taken by %s", name, existing.Domain)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up app name: %w", err)
	}

	port, err := s.resolvePort(ctx, appType, req.Port)
	if err != nil {
		return nil, err
	}

	app := domain.NewApp(name, domainName, port, appType, source, s.config.AppsDir)
	app.GitBranch = req.Branch
	app.GitAuth = req.Auth

	if _, err := os.Stat(app.Dir); err == nil {
		return nil, fmt.Errorf("app directory %s already exists", app.Dir)
	}
	if !source.IsGit() && isWithin(source.Path, app.Dir) {
		return nil, fmt.Errorf("local source %s contains the app directory %s", source.Path, app.Dir)
	}

	slog.Debug("Planned app",
		"layer", "service",
		"operation", "plan_app",
		"app_name", app.Name,
		"domain", app.Domain,
		"port", app.Port,
		"source", app.Source.String())

	return &app, nil
}

// Create registers the planned app and fetches its source. A failed fetch
// leaves the app registered with status failed so it can be retried with
// Update or removed.
func (s *AppService) Create(ctx context.Context, req CreateAppRequest) (*domain.App, error) {
	planned, err := s.Plan(ctx, req)
	if err != nil {
		return nil, err
	}

	if planned.Source.IsGit() {
		if err := s.prepareGitSource(ctx, planned); err != nil {
			return nil, err
		}
	}

	app, err := s.repo.Create(planned)
	if err != nil {
		return nil, fmt.Errorf("failed to register app: %w", err)
	}

	slog.Info("App registered",
		"layer", "service",
		"operation", "create_app",
		"app_name", app.Name,
		"domain", app.Domain,
		"port", app.Port)

	if err := s.fetch(ctx, app); err != nil {
		return app, err
	}
	return app, nil
}

// prepareGitSource checks credentials against the remote and pins the
// branch so the registry records what was deployed.
func (s *AppService) prepareGitSource(ctx context.Context, app *domain.App) error {
	if app.GitAuth.Type() != "" {
		if err := s.git.TestAuthentication(ctx, app.Source.URL, app.GitAuth); err != nil {
			return fmt.Errorf("git authentication failed for %s: %w", app.Source.URL, err)
		}
	}

	if app.GitBranch == "" {
		branch, err := s.git.GetDefaultBranch(ctx, app.Source.URL, app.GitAuth)
		if err != nil {
			slog.Error("Service operation failed",
				"layer", "service",
				"operation", "create_app_get_default_branch",
				"app_name", app.Name,
				"git_url", app.Source.URL,
				"error", err)
			return fmt.Errorf("failed to determine default branch: %w", err)
		}
		app.GitBranch = branch
		slog.Info("Using detected default branch",
			"app_name", app.Name,
			"git_url", app.Source.URL,
			"default_branch", branch)
	}
	return nil
}

// Update refreshes the source of a registered app.
func (s *AppService) Update(ctx context.Context, nameOrDomain string) (*domain.App, error) {
	app, err := s.Get(nameOrDomain)
	if err != nil {
		return nil, err
	}

	if err := s.fetch(ctx, app); err != nil {
		return app, err
	}
	return app, nil
}

// fetch brings the source into app.Dir and records the outcome.
func (s *AppService) fetch(ctx context.Context, app *domain.App) error {
	commit, fetchErr := s.fetcher.Fetch(ctx, app)

	if fetchErr != nil {
		slog.Error("Service operation failed",
			"layer", "service",
			"operation", "fetch_source",
			"app_name", app.Name,
			"source", app.Source.String(),
			"error", fetchErr)
		app.Status = domain.AppStatusFailed
		app.LastError = fetchErr.Error()
	} else {
		app.Status = domain.AppStatusFetched
		app.LastError = ""
		app.LastCommit = commit
	}

	if err := s.repo.Update(app); err != nil {
		return fmt.Errorf("failed to update app status: %w", err)
	}
	if fetchErr != nil {
		return fmt.Errorf("failed to fetch source for %s: %w", app.Name, fetchErr)
	}
	return nil
}

// Get finds an app by registry name or by domain.
func (s *AppService) Get(nameOrDomain string) (*domain.App, error) {
	app, err := s.repo.FindByName(nameOrDomain)
	if err == nil {
		return app, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if domainName, derr := validators.ValidateDomain(nameOrDomain); derr == nil {
		app, err = s.repo.FindByDomain(domainName)
		if err == nil {
			return app, nil
		}
	}
	return nil, fmt.Errorf("app %q: %w", nameOrDomain, err)
}

func (s *AppService) List() ([]*domain.App, error) {
	return s.repo.List()
}

// Remove unregisters an app and, with purgeFiles, deletes its directory.
func (s *AppService) Remove(nameOrDomain string, purgeFiles bool) (*domain.App, error) {
	app, err := s.Get(nameOrDomain)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Delete(app.ID); err != nil {
		return nil, fmt.Errorf("failed to remove app: %w", err)
	}

	if purgeFiles {
		if err := os.RemoveAll(app.Dir); err != nil {
			slog.Error("Service operation failed",
				"layer", "service",
				"operation", "purge_app_dir",
				"app_name", app.Name,
				"dir", app.Dir,
				"error", err)
			return app, fmt.Errorf("app removed but its directory could not be deleted: %w", err)
		}
	}

	slog.Info("App removed", "layer", "service", "app_name", app.Name, "purged", purgeFiles)
	return app, nil
}
