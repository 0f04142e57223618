package builder

import (
	"bytes"
	"os/exec"
)

// CommandExecutor abstracts process execution so that tests can script
// generator runs without the binary installed.
type CommandExecutor interface {
	// ExecuteWithOutput runs a command and returns its captured standard
	// output and standard error streams.
	ExecuteWithOutput(cmd *exec.Cmd) (stdout, stderr string, err error)
}

type execExecutor struct{}

func (e *execExecutor) ExecuteWithOutput(cmd *exec.Cmd) (string, string, error) {
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}
