// Package lock serializes publications against one blog repository.
//
// The lock is an advisory file lock scoped to the repository path. It
// guards against two blogpub processes interleaving a publish. It is
// plain CLI hygiene, not a coordination primitive across machines.
package lock

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/danjacques/gofslock/fslock"
	"go.uber.org/zap"

	"github.com/xsymphony/blogpub/pkg/errors"
)

// ErrBusy indicates that another blogpub process holds the repository lock.
var ErrBusy = errors.New("another blogpub process holds the repository lock")

const pollInterval = 250 * time.Millisecond

// Option is a functor to pass optional parameters to WithLock
type Option func(*locker)

// Wait bounds how long acquisition keeps retrying before giving up.
// Without it, acquisition fails immediately when the lock is held.
func Wait(d time.Duration) Option {
	return func(lk *locker) {
		lk.wait = d
	}
}

// Logger specifies a logger for lock acquisition
func Logger(l *zap.Logger) Option {
	return func(lk *locker) {
		if l != nil {
			lk.l = l
		}
	}
}

type locker struct {
	path string
	wait time.Duration
	l    *zap.Logger
}

// WithLock acquires the lock file at path and runs fn while holding it.
func WithLock(ctx context.Context, path string, fn func(context.Context) error, opts ...Option) error {
	lk := &locker{
		path: path,
		l:    zap.NewNop(),
	}
	for _, apply := range opts {
		apply(lk)
	}

	if err := os.MkdirAll(filepath.Dir(lk.path), 0700); err != nil {
		return err
	}

	err := fslock.WithBlocking(lk.path, lk.blocker(ctx), func() error {
		return fn(ctx)
	})
	if errors.Is(err, fslock.ErrLockHeld) {
		return ErrBusy.Wrap(err)
	}
	return err
}

// blocker polls for the lock until the wait budget runs out
func (lk *locker) blocker(ctx context.Context) fslock.Blocker {
	start := time.Now()
	return func() error {
		if time.Since(start) >= lk.wait {
			return fslock.ErrLockHeld
		}
		lk.l.Debug("repository lock held, retrying", zap.String("lock", lk.path))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pollInterval):
			return nil
		}
	}
}

// PathFor derives the lock file location for a repository: a file under
// the repository's .blogpub directory, so unrelated repositories never
// contend.
func PathFor(repoPath string) (string, error) {
	abs, err := filepath.Abs(repoPath)
	if err != nil {
		return "", err
	}
	return filepath.Join(abs, ".blogpub", "publish.lock"), nil
}
