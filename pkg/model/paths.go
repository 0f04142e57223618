package model

import (
	"fmt"
	"path"
	"strings"
)

const (
	// descriptor files (object metadata)
	snapshotDescriptorFile = "snapshot.yaml"

	filesPrefix     = "files/"
	snapshotsPrefix = "snapshots/"
)

// ArchivePathComponents defines the unique path parts of a backup store key.
type ArchivePathComponents struct {
	SnapshotID      string
	ArchiveFileName string
	FilePath        string
}

// GetArchivePathToSnapshot returns the store key of a snapshot manifest.
func GetArchivePathToSnapshot(snapshotID string) string {
	return fmt.Sprint(snapshotsPrefix, snapshotID, "/", snapshotDescriptorFile)
}

// GetArchivePathPrefixToSnapshots returns the common prefix of all
// snapshot manifests, for listing.
func GetArchivePathPrefixToSnapshots() string {
	return snapshotsPrefix
}

// GetArchivePathToFile returns the store key holding a backed up content
// file. Content keys are stable across snapshots so unchanged files
// are written once.
func GetArchivePathToFile(filePath string) string {
	return filesPrefix + strings.TrimPrefix(path.Clean("/"+filePath), "/")
}

// GetArchivePathComponents yields metadata components from a parsed
// backup store key.
func GetArchivePathComponents(archivePath string) (ArchivePathComponents, error) {
	switch {
	case strings.HasPrefix(archivePath, snapshotsPrefix):
		cs := strings.SplitN(archivePath, "/", 3)
		if len(cs) < 3 {
			return ArchivePathComponents{},
				fmt.Errorf("path is invalid: expect path to snapshot to have 3 parts: %s", archivePath)
		}
		if cs[2] != snapshotDescriptorFile {
			return ArchivePathComponents{},
				fmt.Errorf("path is invalid, last element in the path should be %q: %s", snapshotDescriptorFile, archivePath)
		}
		return ArchivePathComponents{
			SnapshotID:      cs[1],
			ArchiveFileName: cs[2],
		}, nil

	case strings.HasPrefix(archivePath, filesPrefix):
		return ArchivePathComponents{
			FilePath:        strings.TrimPrefix(archivePath, filesPrefix),
			ArchiveFileName: path.Base(archivePath),
		}, nil

	default:
		return ArchivePathComponents{}, fmt.Errorf("path is invalid: unknown key family: %s", archivePath)
	}
}
