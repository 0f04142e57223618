package core

import (
	"fmt"
)

// Pipeline stage names, as reported by StageError.
const (
	StageLint   = "lint"
	StageBuild  = "build"
	StageStage  = "stage"
	StageCommit = "commit"
	StagePush   = "push"
	StageBackup = "backup"
)

// StageError wraps a pipeline failure with the name of the stage that caused it.
// Stages after the failed one are not attempted.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
