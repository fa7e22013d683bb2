package git

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wasmhost/wasm/domain"
)

type testRemote struct {
	t        *testing.T
	bareDir  string
	work     *git.Repository
	workDir  string
	worktree *git.Worktree
}

// newTestRemote creates a bare repository fed by a working clone with one commit.
func newTestRemote(t *testing.T) *testRemote {
	t.Helper()
	tempDir := t.TempDir()

	bareDir := filepath.Join(tempDir, "remote.git")
	_, err := git.PlainInit(bareDir, true)
	require.NoError(t, err)

	workDir := filepath.Join(tempDir, "working")
	work, err := git.PlainInit(workDir, false)
	require.NoError(t, err)

	_, err = work.CreateRemote(&config.RemoteConfig{Name: "origin", URLs: []string{bareDir}})
	require.NoError(t, err)

	worktree, err := work.Worktree()
	require.NoError(t, err)

	r := &testRemote{t: t, bareDir: bareDir, work: work, workDir: workDir, worktree: worktree}
	r.commit("index.html", "<h1>v1</h1>", "Initial commit")
	r.push(false)
	return r
}

func (r *testRemote) commit(file, content, message string) string {
	r.t.Helper()
	require.NoError(r.t, os.WriteFile(filepath.Join(r.workDir, file), []byte(content), 0o644))
	_, err := r.worktree.Add(file)
	require.NoError(r.t, err)
	hash, err := r.worktree.Commit(message, &git.CommitOptions{
		Author: &object.Signature{Name: "Test User", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(r.t, err)
	return hash.String()
}

func (r *testRemote) push(force bool) {
	r.t.Helper()
	require.NoError(r.t, r.work.Push(&git.PushOptions{Force: force}))
}

func (r *testRemote) head() string {
	r.t.Helper()
	ref, err := r.work.Head()
	require.NoError(r.t, err)
	return ref.Hash().String()
}

func TestGitService_CloneAndPull(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	remote := newTestRemote(t)
	svc := NewGitService(30 * time.Second)
	ctx := context.Background()

	dir := filepath.Join(t.TempDir(), "app")
	require.NoError(t, svc.Clone(ctx, remote.bareDir, "", nil, dir))
	assert.FileExists(t, filepath.Join(dir, "index.html"))

	commit, err := svc.GetLatestCommit(dir)
	require.NoError(t, err)
	assert.Equal(t, remote.head(), commit)

	// Nothing new upstream.
	require.NoError(t, svc.Pull(ctx, "", nil, dir))

	remote.commit("index.html", "<h1>v2</h1>", "Second commit")
	remote.push(false)

	// Untracked files survive, local edits to tracked files do not.
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SECRET=1"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("local edit"), 0o644))

	require.NoError(t, svc.Pull(ctx, "master", nil, dir))

	commit, err = svc.GetLatestCommit(dir)
	require.NoError(t, err)
	assert.Equal(t, remote.head(), commit)

	content, err := os.ReadFile(filepath.Join(dir, "index.html"))
	require.NoError(t, err)
	assert.Equal(t, "<h1>v2</h1>", string(content))
	assert.FileExists(t, filepath.Join(dir, ".env"))
}

func TestGitService_Pull_ForcePush(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	remote := newTestRemote(t)
	svc := NewGitService(30 * time.Second)
	ctx := context.Background()

	dir := filepath.Join(t.TempDir(), "app")
	require.NoError(t, svc.Clone(ctx, remote.bareDir, "master", nil, dir))

	initial := remote.head()
	remote.commit("index.html", "<h1>v2</h1>", "Second commit")
	remote.push(false)
	require.NoError(t, svc.Pull(ctx, "master", nil, dir))

	// Rewrite upstream history on top of the first commit.
	require.NoError(t, remote.worktree.Reset(&git.ResetOptions{Commit: plumbing.NewHash(initial), Mode: git.HardReset}))
	rewritten := remote.commit("about.html", "about", "Rewritten commit")
	remote.push(true)

	require.NoError(t, svc.Pull(ctx, "master", nil, dir))

	commit, err := svc.GetLatestCommit(dir)
	require.NoError(t, err)
	assert.Equal(t, rewritten, commit)
	assert.FileExists(t, filepath.Join(dir, "about.html"))

	content, err := os.ReadFile(filepath.Join(dir, "index.html"))
	require.NoError(t, err)
	assert.Equal(t, "<h1>v1</h1>", string(content))
}

func TestGitService_GetDefaultBranch(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	remote := newTestRemote(t)
	svc := NewGitService(30 * time.Second)

	branch, err := svc.GetDefaultBranch(context.Background(), remote.bareDir, nil)
	require.NoError(t, err)
	assert.Equal(t, "master", branch)

	assert.NoError(t, svc.TestAuthentication(context.Background(), remote.bareDir, nil))
}

func TestGitService_Clone_Errors(t *testing.T) {
	svc := NewGitService(5 * time.Second)
	ctx := context.Background()

	err := svc.Clone(ctx, filepath.Join(t.TempDir(), "missing"), "", nil, filepath.Join(t.TempDir(), "app"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to clone repository")

	badKey := &domain.GitAuthConfig{SSHAuth: &domain.GitSSHAuthConfig{PrivateKey: "not a key"}}
	err = svc.Clone(ctx, "git@github.com:user/repo.git", "", badKey, filepath.Join(t.TempDir(), "app"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create auth method")
}

func TestGitService_NotARepository(t *testing.T) {
	svc := NewGitService(5 * time.Second)

	_, err := svc.GetLatestCommit(t.TempDir())
	assert.Error(t, err)

	err = svc.Pull(context.Background(), "main", nil, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open repository")
}

func TestGitService_CreateAuthMethod(t *testing.T) {
	svc := NewGitService(time.Second)

	method, err := svc.createAuthMethod(nil)
	require.NoError(t, err)
	assert.Nil(t, method)

	method, err = svc.createAuthMethod(&domain.GitAuthConfig{
		HTTPAuth: &domain.GitHTTPAuthConfig{Username: "token", Password: "ghp_x"},
	})
	require.NoError(t, err)
	assert.Equal(t, "http-basic-auth", method.Name())
}
