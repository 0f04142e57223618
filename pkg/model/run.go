package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/ksuid"
)

// CurrentRunVersion is bumped when the journal record layout changes.
const CurrentRunVersion = 1

// Kinds of recorded runs.
const (
	RunKindPublish = "publish"
	RunKindBackup  = "backup"
)

// RunDescriptor records one execution of a pipeline.
//
// Journal records are advisory history: they are written after the fact
// and never participate in pipeline control flow.
type RunDescriptor struct {
	ID          string      `json:"id" yaml:"id"`
	Kind        string      `json:"kind" yaml:"kind"`
	Message     string      `json:"message,omitempty" yaml:"message,omitempty"`
	Branch      string      `json:"branch,omitempty" yaml:"branch,omitempty"`
	Commit      string      `json:"commit,omitempty" yaml:"commit,omitempty"`
	Contributor Contributor `json:"contributor" yaml:"contributor"`
	StartedAt   time.Time   `json:"startedAt" yaml:"startedAt"`
	Duration    int64       `json:"durationNanos" yaml:"durationNanos"`
	FileCount   uint64      `json:"fileCount,omitempty" yaml:"fileCount,omitempty"`
	TotalSize   uint64      `json:"totalSize,omitempty" yaml:"totalSize,omitempty"`
	Failure     string      `json:"failure,omitempty" yaml:"failure,omitempty"`
	Version     uint64      `json:"version,omitempty" yaml:"version,omitempty"`
	_           struct{}
}

// NewRunID yields a sortable unique id for a run. KSUIDs embed a
// timestamp, so lexical order on ids matches chronological order.
func NewRunID() string {
	return ksuid.New().String()
}

// Validate reports structural violations in a run record.
func (r RunDescriptor) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("empty field: run id is empty")
	}
	if r.Kind != RunKindPublish && r.Kind != RunKindBackup {
		return fmt.Errorf("invalid kind: run kind %q is not one of [%s %s]", r.Kind, RunKindPublish, RunKindBackup)
	}
	if r.StartedAt.IsZero() {
		return fmt.Errorf("empty field: run start time is zero")
	}
	return nil
}

// Contributor who produced a commit or a backup snapshot.
type Contributor struct {
	Name  string `json:"name" yaml:"name"`
	Email string `json:"email" yaml:"email"`
	_     struct{}
}

func (c *Contributor) String() string {
	if c.Email == "" {
		return c.Name
	}
	if c.Name == "" {
		return c.Email
	}
	return fmt.Sprintf("%s <%s>", c.Name, c.Email)
}

// ParseContributor reads a "Name <email>" string, as printed by
// Contributor.String and by git.
func ParseContributor(in string) Contributor {
	open := strings.LastIndex(in, "<")
	close_ := strings.LastIndex(in, ">")
	if open >= 0 && close_ > open {
		return Contributor{
			Name:  strings.TrimSpace(in[:open]),
			Email: strings.TrimSpace(in[open+1 : close_]),
		}
	}
	return Contributor{Name: strings.TrimSpace(in)}
}

// GetRunTimeStamp yields the reference clock for run records.
func GetRunTimeStamp() time.Time {
	return time.Now().UTC()
}
