package git

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/xsymphony/blogpub/pkg/errors"
	"github.com/xsymphony/blogpub/pkg/git/status"
)

const (
	gitBinary          = "git"
	defaultPushRetries = 2
)

// Repo is a handle on the git work tree holding the published site.
type Repo struct {
	path         string
	executor     CommandExecutor
	l            *zap.Logger
	pushRetries  uint64
	pushInterval time.Duration
}

// New builds a Repo for the work tree at path.
func New(path string, opts ...Option) *Repo {
	r := &Repo{
		path:        path,
		executor:    NewExecExecutor(),
		l:           zap.NewNop(),
		pushRetries: defaultPushRetries,
	}
	for _, apply := range opts {
		apply(r)
	}
	return r
}

// Path returns the work tree location this Repo addresses.
func (r *Repo) Path() string {
	return r.path
}

// run executes one git subcommand against the work tree and returns its
// raw standard output.
func (r *Repo) run(ctx context.Context, operation string, args ...string) (string, error) {
	cmdArgs := append([]string{"-C", r.path, operation}, args...)
	cmd := exec.CommandContext(ctx, gitBinary, cmdArgs...)

	r.l.Debug("git", zap.String("operation", operation), zap.Strings("args", args))
	stdout, stderr, err := r.executor.ExecuteWithOutput(cmd)
	if err != nil {
		sentinel := status.ErrGitOperation
		if strings.Contains(stderr, "not a git repository") {
			sentinel = status.ErrNotARepository
		}
		return "", &GitError{
			Operation: operation,
			Args:      args,
			Err:       sentinel.Wrap(err),
			Output:    strings.TrimSpace(stderr),
		}
	}
	return stdout, nil
}

// IsRepository reports whether the path lies inside a git work tree.
func (r *Repo) IsRepository(ctx context.Context) bool {
	out, err := r.run(ctx, "rev-parse", "--is-inside-work-tree")
	return err == nil && strings.TrimSpace(out) == "true"
}

// CurrentBranch returns the checked out branch name.
func (r *Repo) CurrentBranch(ctx context.Context) (string, error) {
	out, err := r.run(ctx, "branch", "--show-current")
	if err != nil {
		return "", err
	}
	branch := strings.TrimSpace(out)
	if branch == "" {
		return "", status.ErrDetachedHead
	}
	return branch, nil
}

// HasChanges reports whether the work tree holds uncommitted changes,
// untracked files included.
func (r *Repo) HasChanges(ctx context.Context) (bool, error) {
	out, err := r.run(ctx, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}

// ChangedFiles lists the work tree paths git reports as modified,
// added, deleted, renamed or untracked.
func (r *Repo) ChangedFiles(ctx context.Context) ([]string, error) {
	out, err := r.run(ctx, "status", "--porcelain")
	if err != nil {
		return nil, err
	}
	return parsePorcelain(out), nil
}

// parsePorcelain extracts paths from `git status --porcelain` output.
// Rename entries yield the new path; quoted paths are unescaped.
func parsePorcelain(out string) []string {
	lines := strings.Split(out, "\n")
	files := make([]string, 0, len(lines))
	for _, line := range lines {
		if len(line) < 4 {
			continue
		}
		p := line[3:]
		if i := strings.Index(p, " -> "); i >= 0 {
			p = p[i+4:]
		}
		if strings.HasPrefix(p, `"`) {
			if unquoted, err := strconv.Unquote(p); err == nil {
				p = unquoted
			}
		}
		files = append(files, p)
	}
	return files
}

// Stage stages every change in the work tree.
func (r *Repo) Stage(ctx context.Context) error {
	_, err := r.run(ctx, "add", "-A")
	return err
}

// Commit records the staged changes with the given message.
func (r *Repo) Commit(ctx context.Context, message string, allowEmpty bool) error {
	args := []string{"-m", message}
	if allowEmpty {
		args = append(args, "--allow-empty")
	}
	_, err := r.run(ctx, "commit", args...)
	return err
}

// Push publishes the branch to the remote, reattempting failed pushes
// with exponential backoff.
func (r *Repo) Push(ctx context.Context, remote, branch string) error {
	args := make([]string, 0, 2)
	if remote != "" {
		args = append(args, remote)
		if branch != "" {
			args = append(args, branch)
		}
	}

	ebo := backoff.NewExponentialBackOff()
	if r.pushInterval > 0 {
		ebo.InitialInterval = r.pushInterval
	}
	bo := backoff.WithContext(backoff.WithMaxRetries(ebo, r.pushRetries), ctx)

	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		_, err := r.run(ctx, "push", args...)
		if err != nil {
			r.l.Debug("push attempt failed", zap.Int("attempt", attempt), zap.Error(err))
		}
		return err
	}, bo)
}

// Head returns the commit hash at HEAD.
func (r *Repo) Head(ctx context.Context) (string, error) {
	out, err := r.run(ctx, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// Contributor returns the configured commit identity. Unset keys yield
// empty strings, not errors.
func (r *Repo) Contributor(ctx context.Context) (name, email string, err error) {
	name, err = r.configValue(ctx, "user.name")
	if err != nil {
		return "", "", err
	}
	email, err = r.configValue(ctx, "user.email")
	if err != nil {
		return "", "", err
	}
	return name, email, nil
}

// RemoteURL returns the URL of the named remote, empty when the remote
// is not configured.
func (r *Repo) RemoteURL(ctx context.Context, remote string) (string, error) {
	return r.configValue(ctx, "remote."+remote+".url")
}

func (r *Repo) configValue(ctx context.Context, key string) (string, error) {
	out, err := r.run(ctx, "config", "--get", key)
	if err != nil {
		// exit status 1 means the key is unset
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// CommitInfo describes one commit.
type CommitInfo struct {
	Hash    string
	When    time.Time
	Subject string
}

// LastCommit returns the newest commit on the current branch.
func (r *Repo) LastCommit(ctx context.Context) (CommitInfo, error) {
	out, err := r.run(ctx, "log", "-1", "--pretty=format:%H%x09%cI%x09%s")
	if err != nil {
		return CommitInfo{}, err
	}
	parts := strings.SplitN(strings.TrimSpace(out), "\t", 3)
	if len(parts) != 3 {
		return CommitInfo{}, fmt.Errorf("unexpected git log output: %q", out)
	}
	when, err := time.Parse(time.RFC3339, parts[1])
	if err != nil {
		return CommitInfo{}, fmt.Errorf("unexpected commit date %q: %w", parts[1], err)
	}
	return CommitInfo{Hash: parts[0], When: when, Subject: parts[2]}, nil
}
