package services

import (
	"context"

	"github.com/wasmhost/wasm/domain"
)

// GitExecutor defines the contract for Git operations
type GitExecutor interface {
	Clone(ctx context.Context, url, branch string, auth *domain.GitAuthConfig, dir string) error
	Pull(ctx context.Context, branch string, auth *domain.GitAuthConfig, dir string) error
	GetLatestCommit(dir string) (string, error)
	GetDefaultBranch(ctx context.Context, url string, auth *domain.GitAuthConfig) (string, error)
	TestAuthentication(ctx context.Context, url string, auth *domain.GitAuthConfig) error
}

// PortChecker reports whether a TCP port can be bound right now.
type PortChecker interface {
	Available(ctx context.Context, port int) bool
}

// AppManager defines the contract for web app management operations
type AppManager interface {
	Plan(ctx context.Context, req CreateAppRequest) (*domain.App, error)
	Create(ctx context.Context, req CreateAppRequest) (*domain.App, error)
	Update(ctx context.Context, nameOrDomain string) (*domain.App, error)
	Get(nameOrDomain string) (*domain.App, error)
	List() ([]*domain.App, error)
	Remove(nameOrDomain string, purgeFiles bool) (*domain.App, error)
}
