package model

import (
	"fmt"
	"os"
	"time"
)

// CurrentSnapshotVersion is bumped when the manifest layout changes.
const CurrentSnapshotVersion = 1

// BackupEntry describes one content file shipped to the backup store.
type BackupEntry struct {
	Path  string      `json:"path" yaml:"path"`
	Hash  string      `json:"hash" yaml:"hash"`
	Size  uint64      `json:"size" yaml:"size"`
	Mtime time.Time   `json:"mtime" yaml:"mtime"`
	Mode  os.FileMode `json:"mode" yaml:"mode"`
	_     struct{}
}

// BackupEntries represent a collection of entries
type BackupEntries []BackupEntry

// TotalSize of all files in the collection.
func (entries BackupEntries) TotalSize() uint64 {
	var total uint64
	for _, e := range entries {
		total += e.Size
	}
	return total
}

// SnapshotDescriptor is the manifest of one backup run.
type SnapshotDescriptor struct {
	ID          string        `json:"id" yaml:"id"`
	Timestamp   time.Time     `json:"timestamp" yaml:"timestamp"`
	Contributor Contributor   `json:"contributor" yaml:"contributor"`
	Entries     BackupEntries `json:"entries" yaml:"entries"`
	Skipped     uint64        `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Version     uint64        `json:"version,omitempty" yaml:"version,omitempty"`
	_           struct{}
}

// Validate reports structural violations in a snapshot manifest.
func (s SnapshotDescriptor) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("empty field: snapshot id is empty")
	}
	if s.Timestamp.IsZero() {
		return fmt.Errorf("empty field: snapshot timestamp is zero")
	}
	for _, e := range s.Entries {
		if e.Path == "" {
			return fmt.Errorf("empty field: snapshot %s contains an entry without a path", s.ID)
		}
		if e.Hash == "" {
			return fmt.Errorf("empty field: snapshot %s entry %q has no fingerprint", s.ID, e.Path)
		}
	}
	return nil
}
