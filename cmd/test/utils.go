// Package test provides utility functions for testing the wasm CLI
package test

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/spf13/cobra"
	"github.com/wasmhost/wasm/cmd/output"
	"github.com/wasmhost/wasm/config"
	"github.com/wasmhost/wasm/encryption"
	"github.com/wasmhost/wasm/logging"
)

// Env is a self-contained wasm installation under Root.
type Env struct {
	Root       string
	ConfigPath string
	Config     *config.Config
}

// NewEnv writes a config file that keeps every wasm path under root.
func NewEnv(root string) (*Env, error) {
	key, err := encryption.GenerateKey()
	if err != nil {
		return nil, err
	}

	cfg := &config.Config{
		AppsDir:             filepath.Join(root, "apps"),
		LogDir:              filepath.Join(root, "log"),
		DataDir:             filepath.Join(root, "data"),
		DatabasePath:        filepath.Join(root, "data", config.DatabaseFile),
		LogLevel:            "silent",
		ColorEnabled:        false,
		GitTimeout:          30 * time.Second,
		PortProbeHost:       "127.0.0.1",
		PortProbeTimeout:    time.Second,
		PortSearchLimit:     50,
		EncryptionKey:       key,
		NginxSitesAvailable: filepath.Join(root, "nginx", "sites-available"),
		NginxSitesEnabled:   filepath.Join(root, "nginx", "sites-enabled"),
		SystemdDir:          filepath.Join(root, "systemd"),
	}

	configPath := filepath.Join(root, "etc", "config.yaml")
	if err := cfg.Save(configPath); err != nil {
		return nil, err
	}
	cfg.ConfigPath = configPath

	return &Env{Root: root, ConfigPath: configPath, Config: cfg}, nil
}

// Run executes cmd with args plus --config pointing at the env, and returns
// everything written to the command's output.
func (e *Env) Run(cmd *cobra.Command, args ...string) (string, error) {
	return Execute(cmd, append([]string{"--config", e.ConfigPath}, args...)...)
}

// Execute runs cmd with args and captures its output. Global flag state is
// reset first so runs do not leak into each other.
func Execute(cmd *cobra.Command, args ...string) (string, error) {
	logging.LogLevel.Reset()
	output.NoColor.Reset()

	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

type RepoFile struct {
	Path    string
	Content string
}

// WriteFiles creates files under root.
func WriteFiles(root string, files []RepoFile) error {
	for _, file := range files {
		path := filepath.Join(root, file.Path)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", file.Path, err)
		}
		if err := os.WriteFile(path, []byte(file.Content), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", file.Path, err)
		}
	}
	return nil
}

// InitGitRepo creates a repository at path holding files in one commit.
func InitGitRepo(path string, files []RepoFile) (*git.Repository, error) {
	repo, err := git.PlainInit(path, false)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize git repository: %w", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree: %w", err)
	}

	if err := WriteFiles(path, files); err != nil {
		return nil, err
	}
	for _, file := range files {
		if _, err := worktree.Add(file.Path); err != nil {
			return nil, fmt.Errorf("failed to stage %s: %w", file.Path, err)
		}
	}

	if _, err := worktree.Commit("Initial commit", &git.CommitOptions{
		Author: &object.Signature{
			Name:  "John Doe",
			Email: "john@doe.org",
			When:  time.Now(),
		},
	}); err != nil {
		return nil, fmt.Errorf("failed to commit changes: %w", err)
	}

	return repo, nil
}
