// Package git clones and updates app sources held in git repositories.
package git

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"
	"github.com/wasmhost/wasm/domain"
)

type GitService struct {
	timeout time.Duration
}

// NewGitService returns a service whose network operations give up after timeout.
func NewGitService(timeout time.Duration) *GitService {
	return &GitService{timeout: timeout}
}

// createAuthMethod creates a transport.AuthMethod from GitAuthConfig
func (s *GitService) createAuthMethod(auth *domain.GitAuthConfig) (transport.AuthMethod, error) {
	switch auth.Type() {
	case domain.GitAuthTypeHTTP:
		return &http.BasicAuth{
			Username: auth.HTTPAuth.Username,
			Password: auth.HTTPAuth.Password,
		}, nil
	case domain.GitAuthTypeSSH:
		user := auth.SSHAuth.User
		if user == "" {
			user = "git"
		}
		keys, err := ssh.NewPublicKeys(user, []byte(auth.SSHAuth.PrivateKey), "")
		if err != nil {
			return nil, fmt.Errorf("invalid SSH private key: %w", err)
		}
		return keys, nil
	default:
		return nil, nil // public repo
	}
}

// Clone clones url into dir. An empty branch clones the remote's default branch.
func (s *GitService) Clone(ctx context.Context, url, branch string, auth *domain.GitAuthConfig, dir string) error {
	slog.Info("Cloning repository", "git_url", url, "git_branch", branch, "dir", dir)

	authMethod, err := s.createAuthMethod(auth)
	if err != nil {
		slog.Error("Service operation failed",
			"layer", "git",
			"operation", "git_clone_auth",
			"git_url", url,
			"error", err)
		return fmt.Errorf("failed to create auth method: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	options := &git.CloneOptions{
		URL:          url,
		SingleBranch: true,
		Auth:         authMethod,
	}
	if branch != "" {
		options.ReferenceName = plumbing.NewBranchReferenceName(branch)
	}

	if _, err := git.PlainCloneContext(ctx, dir, false, options); err != nil {
		slog.Error("Service operation failed",
			"layer", "git",
			"operation", "git_clone",
			"git_url", url,
			"git_branch", branch,
			"dir", dir,
			"error", err)
		return fmt.Errorf("failed to clone repository: %w", err)
	}

	slog.Info("Repository cloned successfully", "git_url", url, "dir", dir)
	return nil
}

// Pull fetches branch and moves the worktree to the remote tip, discarding
// local edits to tracked files. Untracked files are kept. An empty branch
// means the currently checked out one.
func (s *GitService) Pull(ctx context.Context, branch string, auth *domain.GitAuthConfig, dir string) error {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return fmt.Errorf("failed to open repository: %w", err)
	}

	if branch == "" {
		head, err := repo.Head()
		if err != nil {
			return fmt.Errorf("failed to read HEAD: %w", err)
		}
		if !head.Name().IsBranch() {
			return fmt.Errorf("repository at %s is not on a branch", dir)
		}
		branch = head.Name().Short()
	}

	if err := s.fetch(ctx, repo, branch, auth); err != nil {
		slog.Error("Service operation failed",
			"layer", "git",
			"operation", "git_pull_fetch",
			"git_branch", branch,
			"dir", dir,
			"error", err)
		return fmt.Errorf("failed to fetch changes: %w", err)
	}

	current, err := s.GetLatestCommit(dir)
	if err != nil {
		current = "unknown"
	}

	remoteRef := plumbing.NewRemoteReferenceName("origin", branch)
	ref, err := repo.Reference(remoteRef, true)
	if err != nil {
		return fmt.Errorf("failed to get remote reference %s: %w", remoteRef, err)
	}

	if current == ref.Hash().String() {
		slog.Debug("Repository already up to date", "git_branch", branch, "dir", dir)
		return nil
	}

	// Moving the branch follows force-pushed history too.
	localRef := plumbing.NewBranchReferenceName(branch)
	if err := repo.Storer.SetReference(plumbing.NewHashReference(localRef, ref.Hash())); err != nil {
		return fmt.Errorf("failed to move %s: %w", localRef, err)
	}
	if err := repo.Storer.SetReference(plumbing.NewSymbolicReference(plumbing.HEAD, localRef)); err != nil {
		return fmt.Errorf("failed to update HEAD: %w", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}

	if err := resetTrackedFiles(worktree); err != nil {
		slog.Error("Service operation failed",
			"layer", "git",
			"operation", "git_pull_reset_tracked",
			"git_branch", branch,
			"dir", dir,
			"target_commit", ref.Hash().String(),
			"error", err)
		return err
	}

	slog.Info("Repository updated successfully",
		"git_branch", branch,
		"dir", dir,
		"from_commit", current,
		"to_commit", ref.Hash().String())
	return nil
}

func (s *GitService) fetch(ctx context.Context, repo *git.Repository, branch string, auth *domain.GitAuthConfig) error {
	authMethod, err := s.createAuthMethod(auth)
	if err != nil {
		return fmt.Errorf("failed to create auth method: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	err = repo.FetchContext(ctx, &git.FetchOptions{
		Auth: authMethod,
		RefSpecs: []config.RefSpec{
			config.RefSpec(fmt.Sprintf("+refs/heads/%s:refs/remotes/origin/%s", branch, branch)),
		},
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return err
	}
	return nil
}

// GetLatestCommit returns the hash HEAD points at.
func (s *GitService) GetLatestCommit(dir string) (string, error) {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return "", fmt.Errorf("failed to open repository: %w", err)
	}

	ref, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to read HEAD: %w", err)
	}

	return ref.Hash().String(), nil
}

// GetDefaultBranch asks the remote which branch HEAD points to.
func (s *GitService) GetDefaultBranch(ctx context.Context, url string, auth *domain.GitAuthConfig) (string, error) {
	refs, err := s.listRemote(ctx, url, auth)
	if err != nil {
		slog.Error("Service operation failed",
			"layer", "git",
			"operation", "get_default_branch",
			"git_url", url,
			"error", err)
		return "", fmt.Errorf("failed to list remote references: %w", err)
	}

	for _, ref := range refs {
		if ref.Name() != plumbing.HEAD {
			continue
		}
		if ref.Type() == plumbing.SymbolicReference && ref.Target().IsBranch() {
			return ref.Target().Short(), nil
		}
		// HEAD advertised as a hash: pick the branch at the same commit.
		for _, other := range refs {
			if other.Name().IsBranch() && other.Hash() == ref.Hash() {
				return other.Name().Short(), nil
			}
		}
	}

	return "", fmt.Errorf("could not determine default branch for repository %s", url)
}

// TestAuthentication checks that the remote can be listed with auth.
func (s *GitService) TestAuthentication(ctx context.Context, url string, auth *domain.GitAuthConfig) error {
	if _, err := s.listRemote(ctx, url, auth); err != nil {
		slog.Error("Git authentication test failed",
			"layer", "git",
			"operation", "test_git_authentication",
			"git_url", url,
			"error", err)
		return err
	}
	return nil
}

func (s *GitService) listRemote(ctx context.Context, url string, auth *domain.GitAuthConfig) ([]*plumbing.Reference, error) {
	authMethod, err := s.createAuthMethod(auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth method: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	remote := git.NewRemote(nil, &config.RemoteConfig{
		Name: "origin",
		URLs: []string{url},
	})
	return remote.ListContext(ctx, &git.ListOptions{Auth: authMethod})
}

// resetTrackedFiles brings every tracked file in line with HEAD and leaves
// untracked files alone.
func resetTrackedFiles(worktree *git.Worktree) error {
	status, err := worktree.Status()
	if err != nil {
		return fmt.Errorf("failed to get worktree status: %w", err)
	}

	files := make([]string, 0, len(status))
	for file, st := range status {
		if st.Staging != git.Untracked {
			files = append(files, file)
		}
	}
	if len(files) == 0 {
		return nil
	}

	if err := worktree.Reset(&git.ResetOptions{Mode: git.HardReset, Files: files}); err != nil {
		return fmt.Errorf("failed to reset tracked files: %w", err)
	}
	return nil
}
