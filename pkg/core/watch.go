package core

import (
	"context"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"
	"github.com/xsymphony/blogpub/pkg/builder"
	"go.uber.org/zap"
)

// defaultDebounce coalesces editor save bursts into one rebuild
const defaultDebounce = 500 * time.Millisecond

// Watch rebuilds the site whenever the content tree changes.
//
// Changes are debounced so a burst of writes triggers a single rebuild. The
// outcome of every rebuild is passed to notify. Watch blocks until ctx is
// done, then returns nil: interruption is the normal way to stop watching.
// Watching never publishes.
func (s *Site) Watch(ctx context.Context, debounce time.Duration, notify func(*builder.Result, error)) error {
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	if notify == nil {
		notify = func(*builder.Result, error) {}
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err = s.watchTree(w, s.ContentPath()); err != nil {
		return err
	}
	s.l.Info("watching for content changes",
		zap.String("path", s.ContentPath()),
		zap.Duration("debounce", debounce),
	)

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.l.Info("stopping watch")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if ev.Op&fsnotify.Create != 0 {
				// new directories must be registered to see their files
				if fi, serr := s.fs.Stat(ev.Name); serr == nil && fi.IsDir() {
					if werr := s.watchTree(w, ev.Name); werr != nil {
						s.l.Warn("could not watch new directory", zap.String("path", ev.Name), zap.Error(werr))
					}
				}
			}
			s.l.Debug("content changed", zap.String("path", ev.Name))
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(debounce)

		case werr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.l.Warn("watch error", zap.Error(werr))

		case <-timer.C:
			res, berr := s.bld.Run(ctx)
			if berr != nil {
				s.l.Warn("rebuild failed", zap.Error(berr))
			} else {
				s.l.Info("site rebuilt", zap.Int("files", res.Files), zap.Duration("took", res.Duration))
			}
			notify(res, berr)
		}
	}
}

// watchTree registers root and all its subdirectories with the watcher.
func (s *Site) watchTree(w *fsnotify.Watcher, root string) error {
	return afero.Walk(s.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		return w.Add(path)
	})
}
