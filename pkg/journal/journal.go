package journal

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/dgraph-io/badger/v3"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xsymphony/blogpub/pkg/errors"
	"github.com/xsymphony/blogpub/pkg/journal/status"
	"github.com/xsymphony/blogpub/pkg/model"
)

const defaultDir = ".blogpub/journal"

// Journal is a badger-backed log of pipeline runs.
type Journal struct {
	dir       string
	db        *badger.DB
	l         *zap.Logger
	closeOnce sync.Once
}

// New opens (creating if needed) the journal stored under dir.
func New(dir string, opts ...Option) (*Journal, error) {
	if dir == "" {
		dir = defaultDir
	}
	j := &Journal{
		dir: dir,
		l:   zap.NewNop(),
	}
	for _, apply := range opts {
		apply(j)
	}

	db, err := makeBadgerDB(dir)
	if err != nil {
		return nil, err
	}
	j.db = db
	return j, nil
}

func makeBadgerDB(dir string) (*badger.DB, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}
	return badger.Open(
		badger.DefaultOptions(dir).
			WithLoggingLevel(badger.WARNING),
	)
}

// Close releases the badger handle. It is safe to call more than once.
func (j *Journal) Close() error {
	var err error
	j.closeOnce.Do(func() {
		if j.db != nil {
			err = j.db.Close()
			if err == nil {
				j.db = nil
			}
		}
	})
	return err
}

// Append stores one run record, keyed by its id.
//
// Transaction conflicts are retried on a constant backoff; any other
// failure is permanent.
func (j *Journal) Append(r model.RunDescriptor) error {
	if j.db == nil {
		return status.ErrJournalClosed
	}
	if err := r.Validate(); err != nil {
		return err
	}
	data, err := jsoniter.Marshal(r)
	if err != nil {
		return err
	}
	key := []byte(r.ID)

	return backoff.Retry(func() error {
		return j.db.Update(func(txn *badger.Txn) error {
			if e := txn.Set(key, data); e != nil {
				if errors.Is(e, badger.ErrConflict) {
					return e // retry
				}
				return backoff.Permanent(e)
			}
			return nil
		})
	},
		backoff.NewConstantBackOff(10*time.Millisecond),
	)
}

// List returns recorded runs newest first. kind filters when non-empty,
// limit caps the result when positive.
func (j *Journal) List(kind string, limit int) ([]model.RunDescriptor, error) {
	if j.db == nil {
		return nil, status.ErrJournalClosed
	}
	var out []model.RunDescriptor
	verr := j.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if limit > 0 && len(out) >= limit {
				break
			}
			var r model.RunDescriptor
			err := it.Item().Value(func(val []byte) error {
				return jsoniter.Unmarshal(val, &r)
			})
			if err != nil {
				j.l.Warn("skipping undecodable journal record",
					zap.String("key", string(it.Item().KeyCopy(nil))),
					zap.Error(err),
				)
				continue
			}
			if kind != "" && r.Kind != kind {
				continue
			}
			out = append(out, r)
		}
		return nil
	})
	if verr != nil {
		return nil, verr
	}
	return out, nil
}

// Last returns the most recent run of the given kind ("" for any).
func (j *Journal) Last(kind string) (*model.RunDescriptor, error) {
	runs, err := j.List(kind, 1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, status.ErrNoRuns
	}
	return &runs[0], nil
}

// Get retrieves one run by id.
func (j *Journal) Get(id string) (*model.RunDescriptor, error) {
	if j.db == nil {
		return nil, status.ErrJournalClosed
	}
	var r model.RunDescriptor
	verr := j.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(id))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return status.ErrNoRuns.WrapMessage("run %s", id)
			}
			return err
		}
		return item.Value(func(val []byte) error {
			return jsoniter.Unmarshal(val, &r)
		})
	})
	if verr != nil {
		return nil, verr
	}
	return &r, nil
}

// Dir returns the directory backing the journal.
func (j *Journal) Dir() string {
	return filepath.Clean(j.dir)
}
