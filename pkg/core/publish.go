package core

import (
	"context"
	"strings"
	"time"

	"github.com/xsymphony/blogpub/pkg/builder"
	"github.com/xsymphony/blogpub/pkg/core/status"
	"github.com/xsymphony/blogpub/pkg/lock"
	"github.com/xsymphony/blogpub/pkg/model"
	"go.uber.org/zap"
)

// defaultMessagePrefix starts generated commit messages when no message
// arguments are given.
const defaultMessagePrefix = "rebuilding site "

// CommitMessage builds the publish commit message from command arguments.
// Arguments are joined by single spaces regardless of their own whitespace.
// With no arguments the message is "rebuilding site " followed by now in
// the traditional unix date format.
func CommitMessage(args []string, now time.Time) string {
	if len(args) == 0 {
		return defaultMessagePrefix + now.Format(time.UnixDate)
	}
	return strings.Join(args, " ")
}

// PublishRequest carries the parameters of a publish run
type PublishRequest struct {
	// MessageArgs are the raw commit message arguments
	MessageArgs []string
	// AllowEmpty forces a commit even when the output tree is unchanged
	AllowEmpty bool
	// SkipBackup skips the backup stage
	SkipBackup bool
	// FullBackup disables incremental skipping during the backup stage
	FullBackup bool
	// Force publishes even when posts have lint violations
	Force bool
}

// PublishResult reports the outcome of a publish run
type PublishResult struct {
	RunID     string
	Message   string
	Branch    string
	Commit    string
	Committed bool
	Pushed    bool
	Build     *builder.Result
	Backup    *BackupResult
	StartedAt time.Time
	Duration  time.Duration
}

// Publish runs the full pipeline: lint, build the site, stage and commit the
// output tree, push it, then back up the content.
//
// The pipeline stops at the first failing stage and reports it via
// StageError. When the output tree is unchanged after the build and
// AllowEmpty is not set, the run ends successfully without committing.
// The whole run holds the publish lock for the site.
func (s *Site) Publish(ctx context.Context, req PublishRequest) (*PublishResult, error) {
	res := &PublishResult{
		RunID:     model.NewRunID(),
		Message:   CommitMessage(req.MessageArgs, time.Now()),
		Branch:    s.branch,
		StartedAt: model.GetRunTimeStamp(),
	}
	s.l.Info("publishing site",
		zap.String("run_id", res.RunID),
		zap.String("message", res.Message),
	)

	lockPath, err := lock.PathFor(s.siteDir)
	if err != nil {
		return nil, err
	}
	started := false
	err = lock.WithLock(ctx, lockPath, func(ctx context.Context) error {
		started = true
		return s.runPipeline(ctx, req, res)
	}, lock.Wait(s.lockWait), lock.Logger(s.l))

	res.Duration = time.Since(res.StartedAt)
	if started {
		// runs that never got past the lock are not history
		s.appendRun(s.publishRun(ctx, res, err))
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Site) runPipeline(ctx context.Context, req PublishRequest, res *PublishResult) error {
	if !req.Force {
		report, err := s.Lint(ctx)
		if err != nil {
			return &StageError{Stage: StageLint, Err: err}
		}
		if len(report.Violations) > 0 {
			return &StageError{
				Stage: StageLint,
				Err:   status.ErrLintViolations.WrapMessage("%d post(s) failed checks, use force to publish anyway", len(report.Violations)),
			}
		}
	}

	buildRes, err := s.bld.Run(ctx)
	if err != nil {
		return &StageError{Stage: StageBuild, Err: err}
	}
	res.Build = buildRes

	changed, err := s.repo.HasChanges(ctx)
	if err != nil {
		return &StageError{Stage: StageStage, Err: err}
	}
	if !changed && !req.AllowEmpty {
		s.l.Info("output tree unchanged, nothing to publish", zap.String("run_id", res.RunID))
		return nil
	}

	if err = s.repo.Stage(ctx); err != nil {
		return &StageError{Stage: StageStage, Err: err}
	}
	if err = s.repo.Commit(ctx, res.Message, req.AllowEmpty); err != nil {
		return &StageError{Stage: StageCommit, Err: err}
	}
	res.Committed = true
	if head, herr := s.repo.Head(ctx); herr == nil {
		res.Commit = head
	}

	if err = s.repo.Push(ctx, s.remote, s.branch); err != nil {
		return &StageError{Stage: StagePush, Err: err}
	}
	res.Pushed = true

	if !req.SkipBackup && s.backupStore != nil {
		backupRes, err := s.backup(ctx, BackupRequest{Full: req.FullBackup})
		if err != nil {
			return &StageError{Stage: StageBackup, Err: err}
		}
		res.Backup = backupRes
	}
	return nil
}

func (s *Site) publishRun(ctx context.Context, res *PublishResult, runErr error) model.RunDescriptor {
	r := model.RunDescriptor{
		ID:          res.RunID,
		Kind:        model.RunKindPublish,
		Message:     res.Message,
		Branch:      res.Branch,
		Commit:      res.Commit,
		Contributor: s.contributor(ctx),
		StartedAt:   res.StartedAt,
		Duration:    int64(res.Duration),
		Version:     model.CurrentRunVersion,
	}
	if res.Build != nil {
		r.FileCount = uint64(res.Build.Files)
		r.TotalSize = uint64(res.Build.Bytes)
	}
	if runErr != nil {
		r.Failure = runErr.Error()
	}
	return r
}

// appendRun records a run in the journal. The journal is advisory: failures
// degrade to a warning and never fail the operation.
func (s *Site) appendRun(r model.RunDescriptor) {
	if s.jrnl == nil {
		return
	}
	if err := s.jrnl.Append(r); err != nil {
		s.l.Warn("could not record run in journal",
			zap.String("run_id", r.ID),
			zap.String("kind", r.Kind),
			zap.Error(err),
		)
	}
}

func (s *Site) contributor(ctx context.Context) model.Contributor {
	name, email, err := s.repo.Contributor(ctx)
	if err != nil {
		s.l.Debug("could not resolve contributor from git config", zap.Error(err))
		return model.Contributor{}
	}
	return model.Contributor{Name: name, Email: email}
}
