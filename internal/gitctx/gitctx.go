package gitctx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
)

// SkipHookEnv is set in the environment of commits created by gitguard so
// the installed pre-commit hook does not scan the same change set twice.
const SkipHookEnv = "GITGUARD_SCANNED"

// RepoMeta contains git repository metadata.
type RepoMeta struct {
	Root   string
	Head   string
	Branch string
}

// Repo is a git working tree addressed through the git binary, with HEAD
// metadata read through go-git.
type Repo struct {
	// Root is the top-level directory of the working tree.
	Root string
}

// Open returns the repository containing dir. An empty dir means the
// current directory.
func Open(ctx context.Context, dir string) (*Repo, error) {
	root, err := gitOutput(ctx, dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return nil, fmt.Errorf("not a git repository: %w", err)
	}
	return &Repo{Root: strings.TrimSpace(root)}, nil
}

// Meta collects repository metadata. HEAD is resolved with go-git; if the
// repository cannot be opened that way the git binary is asked instead.
func (r *Repo) Meta(ctx context.Context) RepoMeta {
	meta := RepoMeta{Root: r.Root}
	repo, err := git.PlainOpenWithOptions(r.Root, &git.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		if head, err := r.git(ctx, "rev-parse", "HEAD"); err == nil {
			meta.Head = strings.TrimSpace(head)
		}
		if branch, err := r.git(ctx, "rev-parse", "--abbrev-ref", "HEAD"); err == nil {
			meta.Branch = strings.TrimSpace(branch)
		}
		return meta
	}

	head, err := repo.Head()
	if err != nil {
		// New repository with no commits.
		return meta
	}
	meta.Head = head.Hash().String()
	if head.Name().IsBranch() {
		meta.Branch = head.Name().Short()
	} else {
		meta.Branch = "HEAD"
	}
	return meta
}

// HasHead reports whether the repository has at least one commit.
func (r *Repo) HasHead(ctx context.Context) bool {
	_, err := r.git(ctx, "rev-parse", "--verify", "-q", "HEAD")
	return err == nil
}

// StagedDiff returns the complete diff of the index against HEAD. No path
// filtering or truncation is applied, so every staged line can be scanned.
func (r *Repo) StagedDiff(ctx context.Context) (string, error) {
	diff, err := r.git(ctx, "diff", "--cached", "--no-color", "--no-ext-diff", "--")
	if err != nil {
		return "", fmt.Errorf("git diff --cached: %w", err)
	}
	return diff, nil
}

// StagedFiles returns the sorted paths changed in the index, as listed by
// the same diff StagedDiff produces. A rename is reported by its new path.
func (r *Repo) StagedFiles(ctx context.Context) ([]string, error) {
	out, err := r.git(ctx, "diff", "--cached", "--name-only", "-z", "--no-ext-diff", "--")
	if err != nil {
		return nil, fmt.Errorf("git diff --cached --name-only: %w", err)
	}
	var files []string
	for _, path := range strings.Split(out, "\x00") {
		if path != "" {
			files = append(files, path)
		}
	}
	sort.Strings(files)
	return files, nil
}

// Unstage removes paths from the index, leaving the working tree untouched.
// Before the first commit there is no HEAD to reset to, so the entries are
// dropped from the index instead.
func (r *Repo) Unstage(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	var args []string
	if r.HasHead(ctx) {
		args = append([]string{"reset", "-q", "HEAD", "--"}, paths...)
	} else {
		args = append([]string{"rm", "--cached", "-q", "-r", "--ignore-unmatch", "--"}, paths...)
	}
	if _, err := r.git(ctx, args...); err != nil {
		return fmt.Errorf("git %s: %w", args[0], err)
	}
	return nil
}

// Commit records the staged change set with message. The pre-commit hook sees
// SkipHookEnv set; other hooks run normally.
func (r *Repo) Commit(ctx context.Context, message string) error {
	cmd := exec.CommandContext(ctx, "git", "commit", "-q", "-F", "-")
	cmd.Dir = r.Root
	cmd.Stdin = strings.NewReader(message)
	cmd.Env = append(cmd.Environ(), SkipHookEnv+"=1")
	var stderr strings.Builder
	cmd.Stderr = &stderr
	cmd.Stdout = io.Discard
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("git commit: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// HooksDir returns the directory git runs hooks from, honouring
// core.hooksPath.
func (r *Repo) HooksDir(ctx context.Context) (string, error) {
	out, err := r.git(ctx, "rev-parse", "--git-path", "hooks")
	if err != nil {
		return "", fmt.Errorf("locating hooks directory: %w", err)
	}
	dir := strings.TrimSpace(out)
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(r.Root, dir)
	}
	return dir, nil
}

func (r *Repo) git(ctx context.Context, args ...string) (string, error) {
	return gitOutput(ctx, r.Root, args...)
}

func gitOutput(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return string(out), fmt.Errorf("%s: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", err
	}
	return string(out), nil
}
