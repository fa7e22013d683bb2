package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/wasmhost/wasm/config"
	"github.com/wasmhost/wasm/db"
	"github.com/wasmhost/wasm/domain"
	"github.com/wasmhost/wasm/encryption"
	"github.com/wasmhost/wasm/repository"
	"gorm.io/gorm/logger"
)

// fakeGit creates a .git directory on clone instead of talking to a remote.
type fakeGit struct {
	cloneErr      error
	pullErr       error
	authErr       error
	branchErr     error
	commit        string
	defaultBranch string
	clones        []string
	pulls         []string
	authTests     []string
	branchLookups []string
	lastAuth      *domain.GitAuthConfig
	lastBranch    string
}

func (g *fakeGit) Clone(_ context.Context, url, branch string, auth *domain.GitAuthConfig, dir string) error {
	g.clones = append(g.clones, url)
	g.lastAuth = auth
	g.lastBranch = branch
	if g.cloneErr != nil {
		// A real failed clone can leave a partial directory behind.
		_ = os.MkdirAll(dir, 0o755)
		return g.cloneErr
	}
	if err := os.MkdirAll(filepath.Join(dir, ".git"), 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "package.json"), []byte("{}"), 0o644)
}

func (g *fakeGit) Pull(_ context.Context, branch string, auth *domain.GitAuthConfig, dir string) error {
	g.pulls = append(g.pulls, dir)
	return g.pullErr
}

func (g *fakeGit) GetLatestCommit(string) (string, error) {
	return g.commit, nil
}

func (g *fakeGit) GetDefaultBranch(_ context.Context, url string, _ *domain.GitAuthConfig) (string, error) {
	g.branchLookups = append(g.branchLookups, url)
	if g.branchErr != nil {
		return "", g.branchErr
	}
	return g.defaultBranch, nil
}

func (g *fakeGit) TestAuthentication(_ context.Context, url string, _ *domain.GitAuthConfig) error {
	g.authTests = append(g.authTests, url)
	return g.authErr
}

// fakePorts treats every port not in busy as free and records probes.
type fakePorts struct {
	busy   map[int]bool
	probed []int
}

func (p *fakePorts) Available(_ context.Context, port int) bool {
	p.probed = append(p.probed, port)
	return !p.busy[port]
}

type testEnv struct {
	service *AppService
	repo    repository.AppRepository
	git     *fakeGit
	ports   *fakePorts
	config  *config.Config
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	database, err := db.InitDatabase(db.DBConfig{Path: db.MemoryPath, LogLevel: logger.Silent})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrateAll(database))

	key, err := encryption.GenerateKey()
	require.NoError(t, err)
	encryptionSvc, err := encryption.NewEncryptionService(key)
	require.NoError(t, err)

	cfg := newTestConfig(t)
	repo := repository.NewAppRepository(database, encryptionSvc)
	git := &fakeGit{commit: "abc123", defaultBranch: "main"}
	ports := &fakePorts{busy: map[int]bool{}}

	return &testEnv{
		service: NewAppService(repo, git, ports, cfg),
		repo:    repo,
		git:     git,
		ports:   ports,
		config:  cfg,
	}
}

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	return &config.Config{
		AppsDir:             filepath.Join(root, "apps"),
		LogDir:              filepath.Join(root, "log"),
		DataDir:             filepath.Join(root, "data"),
		DatabasePath:        filepath.Join(root, "data", config.DatabaseFile),
		ConfigPath:          filepath.Join(root, "etc", "config.yaml"),
		LogLevel:            "warning",
		GitTimeout:          time.Minute,
		PortProbeHost:       "127.0.0.1",
		PortProbeTimeout:    time.Second,
		PortSearchLimit:     5,
		NginxSitesAvailable: filepath.Join(root, "nginx", "sites-available"),
		NginxSitesEnabled:   filepath.Join(root, "nginx", "sites-enabled"),
		SystemdDir:          filepath.Join(root, "systemd"),
	}
}

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}
