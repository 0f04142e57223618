package core

import (
	"time"

	"github.com/spf13/afero"
	"github.com/xsymphony/blogpub/pkg/builder"
	"github.com/xsymphony/blogpub/pkg/git"
	"github.com/xsymphony/blogpub/pkg/journal"
	"github.com/xsymphony/blogpub/pkg/storage"
	"go.uber.org/zap"
)

// Option modifies the behavior of a Site
type Option func(*Site)

// ContentDir sets the content directory, relative to the site directory
func ContentDir(dir string) Option {
	return func(s *Site) {
		if dir != "" {
			s.contentDir = dir
		}
	}
}

// Include adds extra files or directories, relative to the site directory,
// to the backup set
func Include(paths ...string) Option {
	return func(s *Site) {
		s.include = append(s.include, paths...)
	}
}

// Repo sets the git repository holding the generated output
func Repo(repo *git.Repo) Option {
	return func(s *Site) {
		if repo != nil {
			s.repo = repo
		}
	}
}

// Builder sets the site generator
func Builder(bld *builder.Builder) Option {
	return func(s *Site) {
		if bld != nil {
			s.bld = bld
		}
	}
}

// Journal sets the run journal. Without one, runs are not recorded.
func Journal(jrnl *journal.Journal) Option {
	return func(s *Site) {
		s.jrnl = jrnl
	}
}

// BackupStore sets the store receiving content backups
func BackupStore(store storage.Store) Option {
	return func(s *Site) {
		s.backupStore = store
	}
}

// Remote sets the git remote pushed to when publishing
func Remote(remote string) Option {
	return func(s *Site) {
		if remote != "" {
			s.remote = remote
		}
	}
}

// Branch sets the git branch pushed when publishing
func Branch(branch string) Option {
	return func(s *Site) {
		if branch != "" {
			s.branch = branch
		}
	}
}

// Concurrency caps the number of concurrent workers used by backup and lint
func Concurrency(c int) Option {
	return func(s *Site) {
		if c > 0 {
			s.concurrency = c
		}
	}
}

// LockWait sets how long operations wait for the publish lock.
// The default is to fail fast when the lock is already held.
func LockWait(d time.Duration) Option {
	return func(s *Site) {
		if d > 0 {
			s.lockWait = d
		}
	}
}

// Fs overrides the filesystem used for content access (testing)
func Fs(fs afero.Fs) Option {
	return func(s *Site) {
		if fs != nil {
			s.fs = fs
		}
	}
}

// Logger sets a logger for site operations
func Logger(l *zap.Logger) Option {
	return func(s *Site) {
		if l != nil {
			s.l = l
		}
	}
}

// WithMetrics toggles telemetry collection for site operations
func WithMetrics(enabled bool) Option {
	return func(s *Site) {
		s.EnableMetrics(enabled)
	}
}
