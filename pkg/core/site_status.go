package core

import (
	"context"

	"github.com/xsymphony/blogpub/pkg/errors"
	"github.com/xsymphony/blogpub/pkg/journal/status"
	"github.com/xsymphony/blogpub/pkg/model"
	"go.uber.org/zap"
)

// SiteStatus is a snapshot of where the site stands: work tree state,
// publishing target and the most recent recorded runs.
type SiteStatus struct {
	SiteDir      string
	OutputDir    string
	IsRepository bool
	Branch       string
	Dirty        bool
	ChangedFiles []string
	Remote       string
	RemoteURL    string
	LastPublish  *model.RunDescriptor
	LastBackup   *model.RunDescriptor
	BackupTarget string
}

// Status collects the current state of the site. Probes that fail leave
// their field empty rather than failing the whole report.
func (s *Site) Status(ctx context.Context) (*SiteStatus, error) {
	st := &SiteStatus{
		SiteDir:   s.siteDir,
		OutputDir: s.bld.OutputPath(),
		Remote:    s.remote,
		Branch:    s.branch,
	}

	st.IsRepository = s.repo.IsRepository(ctx)
	if st.IsRepository {
		if branch, err := s.repo.CurrentBranch(ctx); err == nil && branch != "" {
			st.Branch = branch
		}
		changed, err := s.repo.ChangedFiles(ctx)
		if err != nil {
			s.l.Debug("could not inspect work tree", zap.Error(err))
		} else {
			st.ChangedFiles = changed
			st.Dirty = len(changed) > 0
		}
		if url, err := s.repo.RemoteURL(ctx, s.remote); err == nil {
			st.RemoteURL = url
		}
	}

	if s.jrnl != nil {
		var err error
		st.LastPublish, err = s.jrnl.Last(model.RunKindPublish)
		if err != nil && !errors.Is(err, status.ErrNoRuns) {
			s.l.Debug("could not read journal", zap.Error(err))
		}
		st.LastBackup, err = s.jrnl.Last(model.RunKindBackup)
		if err != nil && !errors.Is(err, status.ErrNoRuns) {
			s.l.Debug("could not read journal", zap.Error(err))
		}
	}

	if s.backupStore != nil {
		st.BackupTarget = s.backupStore.String()
	}
	return st, nil
}
