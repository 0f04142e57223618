package builder

import (
	"fmt"
)

// GeneratorError describes a failed generator run: the command line, the
// captured standard error and the underlying cause.
type GeneratorError struct {
	Command string
	Args    []string
	Err     error
	Output  string
}

func (e *GeneratorError) Error() string {
	msg := fmt.Sprintf("%s failed", e.Command)
	if e.Output != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Output)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying error for use with errors.Is and errors.As.
func (e *GeneratorError) Unwrap() error {
	return e.Err
}
