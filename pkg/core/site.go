package core

import (
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/afero"
	"github.com/xsymphony/blogpub/pkg/builder"
	"github.com/xsymphony/blogpub/pkg/git"
	"github.com/xsymphony/blogpub/pkg/journal"
	"github.com/xsymphony/blogpub/pkg/metrics"
	"github.com/xsymphony/blogpub/pkg/storage"
	"go.uber.org/zap"
)

const (
	defaultContentDir = "content"
	defaultRemote     = "origin"
	defaultBranch     = "master"
)

// Site aggregates everything the publishing operations act on: the site
// directory with its content tree, the generator producing the output tree,
// the git repository holding that output, and the optional journal and
// backup store.
type Site struct {
	metrics.Enable
	fm *metrics.FilesMetrics

	siteDir     string
	contentDir  string
	include     []string
	repo        *git.Repo
	bld         *builder.Builder
	jrnl        *journal.Journal
	backupStore storage.Store
	remote      string
	branch      string
	concurrency int
	lockWait    time.Duration
	fs          afero.Fs
	l           *zap.Logger
}

func defaultSite(siteDir string) *Site {
	return &Site{
		siteDir:     siteDir,
		contentDir:  defaultContentDir,
		remote:      defaultRemote,
		branch:      defaultBranch,
		concurrency: 2 * runtime.NumCPU(),
		fs:          afero.NewOsFs(),
		l:           zap.NewNop(),
	}
}

// New builds a Site rooted at siteDir.
//
// Unless overridden by options, the generator runs in siteDir and the git
// repository is expected at the generator's output directory.
func New(siteDir string, opts ...Option) *Site {
	s := defaultSite(siteDir)
	for _, apply := range opts {
		apply(s)
	}
	if s.bld == nil {
		s.bld = builder.New(siteDir, builder.Fs(s.fs), builder.Logger(s.l))
	}
	if s.repo == nil {
		s.repo = git.New(s.bld.OutputPath(), git.Logger(s.l))
	}
	if s.MetricsEnabled() {
		s.fm = metrics.EnsureFiles("core")
	}
	return s
}

// Close releases resources held by the site, notably the journal store.
// A site without a journal closes as a no-op.
func (s *Site) Close() error {
	if s.jrnl != nil {
		return s.jrnl.Close()
	}
	return nil
}

// SiteDir returns the root directory of the site sources.
func (s *Site) SiteDir() string {
	return s.siteDir
}

// ContentPath returns the absolute path of the content tree.
func (s *Site) ContentPath() string {
	return filepath.Join(s.siteDir, s.contentDir)
}

// OutputPath returns the absolute path of the generated output tree.
func (s *Site) OutputPath() string {
	return s.bld.OutputPath()
}

func (s *Site) filesMetrics() *metrics.FilesMetrics {
	if !s.MetricsEnabled() || s.fm == nil {
		return nil
	}
	return s.fm
}
