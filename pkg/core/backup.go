package core

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/afero"
	"github.com/xsymphony/blogpub/pkg/core/status"
	"github.com/xsymphony/blogpub/pkg/fingerprint"
	"github.com/xsymphony/blogpub/pkg/lock"
	"github.com/xsymphony/blogpub/pkg/model"
	"github.com/xsymphony/blogpub/pkg/storage"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	yaml "gopkg.in/yaml.v2"
)

// backupIndexPath is the local fingerprint index enabling incremental
// backups, relative to the site directory.
const backupIndexPath = ".blogpub/backup-index.yaml"

// BackupRequest carries the parameters of a backup run
type BackupRequest struct {
	// Full uploads every file regardless of the fingerprint index
	Full bool
}

// BackupResult reports the outcome of a backup run
type BackupResult struct {
	RunID      string
	SnapshotID string
	Entries    model.BackupEntries
	Uploaded   int
	Skipped    int
	Bytes      uint64
	StartedAt  time.Time
	Duration   time.Duration
}

// Backup ships the content tree and the configured extra paths to the backup
// store, then writes a timestamped snapshot manifest alongside the files.
//
// Unless Full is requested, files whose fingerprint matches the local index
// and which are already present in the store are skipped. The run holds the
// publish lock for the site.
func (s *Site) Backup(ctx context.Context, req BackupRequest) (*BackupResult, error) {
	if s.backupStore == nil {
		return nil, status.ErrNoBackupTarget
	}
	lockPath, err := lock.PathFor(s.siteDir)
	if err != nil {
		return nil, err
	}
	var res *BackupResult
	err = lock.WithLock(ctx, lockPath, func(ctx context.Context) error {
		var berr error
		res, berr = s.backup(ctx, req)
		return berr
	}, lock.Wait(s.lockWait), lock.Logger(s.l))

	if res != nil {
		if res.Duration == 0 {
			res.Duration = time.Since(res.StartedAt)
		}
		s.appendRun(s.backupRun(ctx, res, err))
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

// backup performs the backup without locking or journaling, so the publish
// pipeline can run it under its own lock.
func (s *Site) backup(ctx context.Context, req BackupRequest) (*BackupResult, error) {
	if s.backupStore == nil {
		return nil, status.ErrNoBackupTarget
	}
	id := model.NewRunID()
	res := &BackupResult{
		RunID:      id,
		SnapshotID: id,
		StartedAt:  model.GetRunTimeStamp(),
	}

	sources, err := s.backupSources()
	if err != nil {
		return res, err
	}
	index, err := s.loadBackupIndex()
	if err != nil {
		return res, err
	}
	s.l.Info("backing up content",
		zap.String("snapshot_id", res.SnapshotID),
		zap.Int("files", len(sources)),
		zap.String("target", s.backupStore.String()),
		zap.Bool("full", req.Full),
	)

	maker := fingerprint.New(fingerprint.Fs(s.fs))
	entries := make(model.BackupEntries, len(sources))
	uploaded := make([]bool, len(sources))

	wg, wctx := errgroup.WithContext(ctx)
	wg.SetLimit(s.concurrency)
	for i, rel := range sources {
		i, rel := i, rel
		wg.Go(func() error {
			entry, sent, err := s.backupOne(wctx, maker, index, rel, req.Full)
			if err != nil {
				return err
			}
			entries[i] = entry
			uploaded[i] = sent
			return nil
		})
	}
	if err = wg.Wait(); err != nil {
		return res, err
	}

	for i, entry := range entries {
		res.Entries = append(res.Entries, entry)
		if uploaded[i] {
			res.Uploaded++
			res.Bytes += entry.Size
		} else {
			res.Skipped++
		}
	}

	if err = s.writeSnapshot(ctx, res); err != nil {
		return res, err
	}
	if err = s.saveBackupIndex(res.Entries); err != nil {
		return res, err
	}

	res.Duration = time.Since(res.StartedAt)
	s.l.Info("backup complete",
		zap.String("snapshot_id", res.SnapshotID),
		zap.Int("uploaded", res.Uploaded),
		zap.Int("skipped", res.Skipped),
		zap.Uint64("bytes", res.Bytes),
		zap.Duration("took", res.Duration),
	)
	return res, nil
}

// backupOne fingerprints one file and uploads it unless the index and the
// store both indicate it is unchanged.
func (s *Site) backupOne(ctx context.Context, maker *fingerprint.Maker, index map[string]string, rel string, full bool) (model.BackupEntry, bool, error) {
	var entry model.BackupEntry

	source := filepath.Join(s.siteDir, filepath.FromSlash(rel))
	fi, err := s.fs.Stat(source)
	if err != nil {
		return entry, false, err
	}
	digest, err := maker.Process(source)
	if err != nil {
		return entry, false, err
	}
	entry = model.BackupEntry{
		Path:  rel,
		Hash:  fmt.Sprintf("%x", digest),
		Size:  uint64(fi.Size()),
		Mtime: fi.ModTime(),
		Mode:  fi.Mode(),
	}

	key := model.GetArchivePathToFile(rel)
	if !full && index[rel] == entry.Hash {
		ok, herr := s.backupStore.Has(ctx, key)
		if herr == nil && ok {
			s.l.Debug("unchanged, skipping upload", zap.String("path", rel))
			return entry, false, nil
		}
	}

	reader, err := s.fs.Open(source)
	if err != nil {
		return entry, false, err
	}
	defer reader.Close()
	if err = s.backupStore.Put(ctx, key, reader, storage.OverWrite); err != nil {
		return entry, false, err
	}
	if fm := s.filesMetrics(); fm != nil {
		fm.Inc("upload")
		fm.Size(fi.Size(), "upload")
	}
	s.l.Debug("uploaded", zap.String("path", rel), zap.Uint64("size", entry.Size))
	return entry, true, nil
}

func (s *Site) writeSnapshot(ctx context.Context, res *BackupResult) error {
	desc := model.SnapshotDescriptor{
		ID:          res.SnapshotID,
		Timestamp:   res.StartedAt,
		Contributor: s.contributor(ctx),
		Entries:     res.Entries,
		Skipped:     uint64(res.Skipped),
		Version:     model.CurrentSnapshotVersion,
	}
	if err := desc.Validate(); err != nil {
		return err
	}
	buf, err := yaml.Marshal(desc)
	if err != nil {
		return err
	}
	return s.backupStore.Put(ctx, model.GetArchivePathToSnapshot(res.SnapshotID), bytes.NewReader(buf), storage.NoOverWrite)
}

// backupSources lists the relative slash-separated paths of all files in the
// backup set: the content tree plus the configured includes.
func (s *Site) backupSources() ([]string, error) {
	roots := append([]string{s.contentDir}, s.include...)
	seen := make(map[string]struct{})
	var sources []string

	addFile := func(path string) {
		rel, err := filepath.Rel(s.siteDir, path)
		if err != nil {
			return
		}
		rel = filepath.ToSlash(rel)
		if _, ok := seen[rel]; ok {
			return
		}
		seen[rel] = struct{}{}
		sources = append(sources, rel)
	}

	for i, root := range roots {
		target := filepath.Join(s.siteDir, filepath.FromSlash(root))
		fi, err := s.fs.Stat(target)
		if err != nil {
			if i > 0 && os.IsNotExist(err) {
				s.l.Warn("backup include not found, skipping", zap.String("path", root))
				continue
			}
			return nil, err
		}
		if !fi.IsDir() {
			addFile(target)
			continue
		}
		err = afero.Walk(s.fs, target, func(path string, info os.FileInfo, werr error) error {
			if werr != nil {
				return werr
			}
			if !info.IsDir() {
				addFile(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(sources)
	return sources, nil
}

func (s *Site) loadBackupIndex() (map[string]string, error) {
	index := make(map[string]string)
	raw, err := afero.ReadFile(s.fs, filepath.Join(s.siteDir, filepath.FromSlash(backupIndexPath)))
	if err != nil {
		if os.IsNotExist(err) {
			return index, nil
		}
		return nil, err
	}
	if err = yaml.Unmarshal(raw, &index); err != nil {
		// a corrupt index only costs re-uploads
		s.l.Warn("backup index unreadable, assuming full backup", zap.Error(err))
		return make(map[string]string), nil
	}
	return index, nil
}

func (s *Site) saveBackupIndex(entries model.BackupEntries) error {
	index := make(map[string]string, len(entries))
	for _, e := range entries {
		index[e.Path] = e.Hash
	}
	buf, err := yaml.Marshal(index)
	if err != nil {
		return err
	}
	target := filepath.Join(s.siteDir, filepath.FromSlash(backupIndexPath))
	if err = s.fs.MkdirAll(filepath.Dir(target), 0700); err != nil {
		return err
	}
	return afero.WriteFile(s.fs, target, buf, 0600)
}

func (s *Site) backupRun(ctx context.Context, res *BackupResult, runErr error) model.RunDescriptor {
	r := model.RunDescriptor{
		ID:          res.RunID,
		Kind:        model.RunKindBackup,
		Branch:      s.branch,
		Contributor: s.contributor(ctx),
		StartedAt:   res.StartedAt,
		Duration:    int64(res.Duration),
		FileCount:   uint64(len(res.Entries)),
		TotalSize:   res.Entries.TotalSize(),
		Version:     model.CurrentRunVersion,
	}
	if runErr != nil {
		r.Failure = runErr.Error()
	}
	return r
}
