package services

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/wasmhost/wasm/domain"
	"github.com/wasmhost/wasm/validators"
)

// SourceFetcher puts an app's source into its directory.
type SourceFetcher struct {
	git GitExecutor
}

func NewSourceFetcher(git GitExecutor) *SourceFetcher {
	return &SourceFetcher{git: git}
}

// Fetch clones or pulls git sources and copies local ones. It returns the
// checked out commit for git sources.
func (f *SourceFetcher) Fetch(ctx context.Context, app *domain.App) (string, error) {
	if !app.Source.IsGit() {
		return "", f.copyLocal(app.Source.Path, app.Dir)
	}

	if isGitCheckout(app.Dir) {
		if err := f.git.Pull(ctx, app.GitBranch, app.GitAuth, app.Dir); err != nil {
			return "", err
		}
	} else {
		// Clear leftovers from an earlier failed clone.
		if err := os.RemoveAll(app.Dir); err != nil {
			return "", fmt.Errorf("failed to clear %s: %w", app.Dir, err)
		}
		if err := f.git.Clone(ctx, app.Source.URL, app.GitBranch, app.GitAuth, app.Dir); err != nil {
			_ = os.RemoveAll(app.Dir)
			return "", err
		}
	}

	return f.git.GetLatestCommit(app.Dir)
}

func (f *SourceFetcher) copyLocal(src, dst string) error {
	resolved, err := resolveLocalSource(validators.SourceDescriptor{Kind: validators.SourceKindLocal, Path: src})
	if err != nil {
		return err
	}

	slog.Info("Copying local source", "source", resolved.Path, "dir", dst)
	if err := copyTree(resolved.Path, dst); err != nil {
		return fmt.Errorf("failed to copy %s: %w", resolved.Path, err)
	}
	return nil
}

// resolveLocalSource expands ~, makes the path absolute and requires an
// existing directory.
func resolveLocalSource(source validators.SourceDescriptor) (validators.SourceDescriptor, error) {
	expanded, err := homedir.Expand(source.Path)
	if err != nil {
		return source, fmt.Errorf("invalid local source %s: %w", source.Path, err)
	}

	abs, err := filepath.Abs(expanded)
	if err != nil {
		return source, fmt.Errorf("invalid local source %s: %w", source.Path, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return source, fmt.Errorf("local source %s does not exist", abs)
	}
	if !info.IsDir() {
		return source, fmt.Errorf("local source %s is not a directory", abs)
	}

	source.Path = abs
	return source, nil
}

// isWithin reports whether path is dir or lies below it. Symlinks in dir
// and in the existing part of path are resolved first.
func isWithin(dir, path string) bool {
	rel, err := filepath.Rel(resolvePath(dir), resolvePath(path))
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// resolvePath makes path absolute and resolves symlinks in its longest
// existing prefix.
func resolvePath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}

	var rest []string
	for current := abs; ; current = filepath.Dir(current) {
		if resolved, err := filepath.EvalSymlinks(current); err == nil {
			return filepath.Join(append([]string{resolved}, rest...)...)
		}
		parent := filepath.Dir(current)
		if parent == current {
			return abs
		}
		rest = append([]string{filepath.Base(current)}, rest...)
	}
}

func isGitCheckout(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil && info.IsDir()
}

// copyTree copies src into dst, skipping .git directories and dst itself
// when it lies inside src. Files already in dst that src does not have are
// left in place.
func copyTree(src, dst string) error {
	resolvedDst := resolvePath(dst)

	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && path != src && resolvePath(path) == resolvedDst {
			return filepath.SkipDir
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		switch {
		case d.IsDir() && d.Name() == ".git" && path != src:
			return filepath.SkipDir
		case d.IsDir():
			return os.MkdirAll(target, 0o755)
		case d.Type()&fs.ModeSymlink != 0:
			link, err := os.Readlink(path)
			if err != nil {
				return err
			}
			_ = os.Remove(target)
			return os.Symlink(link, target)
		case d.Type().IsRegular():
			return copyFile(path, target)
		default:
			return nil // sockets, devices
		}
	})
}

func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
