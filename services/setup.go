package services

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/wasmhost/wasm/config"
	"github.com/wasmhost/wasm/encryption"
)

// SetupStep is one action taken by SetupService.Init.
type SetupStep struct {
	Description string
	Path        string
	Changed     bool // false when the step found nothing to do
}

// SetupService prepares the host directories, config file and registry.
type SetupService struct {
	config       *config.Config
	initRegistry func(path string) error
}

// NewSetupService returns a setup service. initRegistry creates the registry
// schema at the given database path.
func NewSetupService(cfg *config.Config, initRegistry func(path string) error) *SetupService {
	return &SetupService{config: cfg, initRegistry: initRegistry}
}

// Init creates what wasm needs on the host. Re-running it is safe.
func (s *SetupService) Init() ([]SetupStep, error) {
	var steps []SetupStep

	dirs := []struct {
		description string
		path        string
	}{
		{"Create apps directory", s.config.AppsDir},
		{"Create log directory", s.config.LogDir},
		{"Create data directory", filepath.Dir(s.config.DatabasePath)},
		{"Create config directory", filepath.Dir(s.config.ConfigPath)},
	}
	for _, dir := range dirs {
		changed, err := ensureDir(dir.path)
		if err != nil {
			return steps, fmt.Errorf("%s: %w", dir.description, err)
		}
		steps = append(steps, SetupStep{Description: dir.description, Path: dir.path, Changed: changed})
	}

	keyGenerated := false
	if s.config.EncryptionKey == "" {
		key, err := encryption.GenerateKey()
		if err != nil {
			return steps, err
		}
		s.config.SetEncryptionKey(key)
		keyGenerated = true
	}
	steps = append(steps, SetupStep{Description: "Generate encryption key", Changed: keyGenerated})

	_, statErr := os.Stat(s.config.ConfigPath)
	writeConfig := keyGenerated || errors.Is(statErr, fs.ErrNotExist)
	if writeConfig {
		if err := s.config.SaveFile(s.config.ConfigPath); err != nil {
			return steps, err
		}
		if err := os.Chmod(s.config.ConfigPath, 0o600); err != nil {
			return steps, fmt.Errorf("failed to restrict config file permissions: %w", err)
		}
	}
	steps = append(steps, SetupStep{Description: "Write configuration", Path: s.config.ConfigPath, Changed: writeConfig})

	if err := s.initRegistry(s.config.DatabasePath); err != nil {
		return steps, fmt.Errorf("failed to initialize app registry: %w", err)
	}
	steps = append(steps, SetupStep{Description: "Initialize app registry", Path: s.config.DatabasePath, Changed: true})

	slog.Info("Setup completed", "layer", "service", "operation", "setup_init", "steps", len(steps))
	return steps, nil
}

func ensureDir(path string) (bool, error) {
	info, err := os.Stat(path)
	switch {
	case err == nil && info.IsDir():
		return false, nil
	case err == nil:
		return false, fmt.Errorf("%s exists and is not a directory", path)
	case !errors.Is(err, fs.ErrNotExist):
		return false, err
	}

	if err := os.MkdirAll(path, 0o755); err != nil {
		return false, err
	}
	// MkdirAll is subject to umask.
	if err := os.Chmod(path, 0o755); err != nil {
		return false, err
	}
	return true, nil
}

// Access is the kind of access a permission check wants.
type Access string

const (
	AccessRead  Access = "read"
	AccessWrite Access = "write"
)

// PermissionStatus is the outcome of a permission check.
type PermissionStatus string

const (
	PermissionOK      PermissionStatus = "ok"
	PermissionMissing PermissionStatus = "missing"
	PermissionDenied  PermissionStatus = "denied"
)

// PermissionCheck describes access to one directory wasm uses.
type PermissionCheck struct {
	Name   string
	Path   string
	Access Access
	// Optional checks cover system directories that only some commands
	// touch, usually under sudo.
	Optional bool
	Status   PermissionStatus
}

// Suggestion tells the user how to fix a failed check.
func (c PermissionCheck) Suggestion() string {
	switch {
	case c.Status == PermissionOK:
		return ""
	case c.Optional:
		return "requires sudo"
	case c.Status == PermissionMissing:
		return "run: sudo wasm setup init"
	default:
		return fmt.Sprintf("grant %s access or run with sudo", c.Access)
	}
}

// PermissionReport is the result of CheckPermissions.
type PermissionReport struct {
	Checks []PermissionCheck
}

// HasIssues is true when a required check failed.
func (r PermissionReport) HasIssues() bool {
	for _, c := range r.Checks {
		if !c.Optional && c.Status != PermissionOK {
			return true
		}
	}
	return false
}

// CheckPermissions reports whether the current user can use wasm's directories.
func (s *SetupService) CheckPermissions() PermissionReport {
	targets := []PermissionCheck{
		{Name: "Apps directory", Path: s.config.AppsDir, Access: AccessWrite},
		{Name: "Log directory", Path: s.config.LogDir, Access: AccessWrite},
		{Name: "Data directory", Path: filepath.Dir(s.config.DatabasePath), Access: AccessWrite},
		{Name: "Config directory", Path: filepath.Dir(s.config.ConfigPath), Access: AccessRead},
		{Name: "Nginx sites-available", Path: s.config.NginxSitesAvailable, Access: AccessWrite, Optional: true},
		{Name: "Systemd directory", Path: s.config.SystemdDir, Access: AccessWrite, Optional: true},
	}

	for i := range targets {
		targets[i].Status = checkAccess(targets[i].Path, targets[i].Access)
	}
	return PermissionReport{Checks: targets}
}

func checkAccess(path string, access Access) PermissionStatus {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return PermissionMissing
	}

	if access == AccessRead {
		if _, err := os.ReadDir(path); err != nil {
			return PermissionDenied
		}
		return PermissionOK
	}

	probe, err := os.CreateTemp(path, ".wasm-permission-*")
	if err != nil {
		return PermissionDenied
	}
	_ = probe.Close()
	_ = os.Remove(probe.Name())
	return PermissionOK
}
