package git

import (
	"bytes"
	"os/exec"
)

// CommandExecutor abstracts process execution so that tests can script
// git interactions without a repository.
type CommandExecutor interface {
	// ExecuteWithOutput runs a command and returns its captured standard
	// output and standard error streams.
	ExecuteWithOutput(cmd *exec.Cmd) (stdout, stderr string, err error)
}

// ExecExecutor is the default CommandExecutor, delegating to os/exec.
type ExecExecutor struct{}

// NewExecExecutor creates a new ExecExecutor
func NewExecExecutor() *ExecExecutor {
	return &ExecExecutor{}
}

func (e *ExecExecutor) ExecuteWithOutput(cmd *exec.Cmd) (string, string, error) {
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}
