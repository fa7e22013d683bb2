// Package domain provides core domain types and entities for wasm.
package domain

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wasmhost/wasm/validators"
)

// AppType selects the runtime an application is served with.
type AppType string

const (
	AppTypeNextJS AppType = "nextjs"
	AppTypeNodeJS AppType = "nodejs"
	AppTypeVite   AppType = "vite"
	AppTypePython AppType = "python"
	AppTypeStatic AppType = "static"
)

// String implements the Stringer interface
func (t AppType) String() string {
	return string(t)
}

// IsValid checks if the AppType is valid
func (t AppType) IsValid() bool {
	switch t {
	case AppTypeNextJS, AppTypeNodeJS, AppTypeVite, AppTypePython, AppTypeStatic:
		return true
	default:
		return false
	}
}

// ServedByProxy is true for apps nginx serves from disk without a backend process.
func (t AppType) ServedByProxy() bool {
	return t == AppTypeStatic
}

// DefaultPort returns the conventional port for the app type.
func (t AppType) DefaultPort() int {
	return validators.GetDefaultPort(t.String())
}

// ParseAppType parses a string into an AppType
func ParseAppType(s string) (AppType, error) {
	appType := AppType(strings.ToLower(strings.TrimSpace(s)))
	if !appType.IsValid() {
		return "", fmt.Errorf("invalid app type: %q (must be one of %s)",
			s, strings.Join(validators.KnownAppTypes(), ", "))
	}
	return appType, nil
}

// AppStatus tracks how far an app got through deployment.
type AppStatus int

const (
	AppStatusUnknown AppStatus = iota
	AppStatusPending
	AppStatusFetched
	AppStatusFailed
)

func (s AppStatus) String() string {
	switch s {
	case AppStatusPending:
		return "pending"
	case AppStatusFetched:
		return "fetched"
	case AppStatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

func ParseAppStatus(s string) (AppStatus, error) {
	switch s {
	case "pending":
		return AppStatusPending, nil
	case "fetched":
		return AppStatusFetched, nil
	case "failed":
		return AppStatusFailed, nil
	case "unknown":
		return AppStatusUnknown, nil
	default:
		return AppStatusUnknown, fmt.Errorf("invalid app status: %q", s)
	}
}

// App is a web application registered on this host.
type App struct {
	ID         uuid.UUID
	Name       string // slug of the domain, also the directory name under the apps dir
	Domain     string // normalized
	Port       int
	Type       AppType
	Source     validators.SourceDescriptor
	GitBranch  string // empty means the remote's default branch
	GitAuth    *GitAuthConfig
	Dir        string
	Status     AppStatus
	LastError  string
	LastCommit string // HEAD after the last fetch, git sources only
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewApp returns a pending app with a fresh ID.
func NewApp(name, domainName string, port int, appType AppType, source validators.SourceDescriptor, appsDir string) App {
	return App{
		ID:     uuid.New(),
		Name:   name,
		Domain: domainName,
		Port:   port,
		Type:   appType,
		Source: source,
		Dir:    filepath.Join(appsDir, name),
		Status: AppStatusPending,
	}
}

// URL is where the app is reachable once the proxy config is in place.
func (a *App) URL() string {
	return "https://" + a.Domain
}
