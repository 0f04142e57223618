// Package status declares the sentinel errors returned by the builder
// package. Callers classify build failures with errors.Is.
package status

import (
	"github.com/xsymphony/blogpub/pkg/errors"
)

var (
	// ErrGeneratorNotFound indicates that the configured site generator
	// binary could not be resolved on PATH.
	ErrGeneratorNotFound = errors.New("generator binary not found")

	// ErrGeneratorFailed indicates that the generator ran but exited
	// with a non-zero status.
	ErrGeneratorFailed = errors.New("generator failed")

	// ErrNoOutput indicates that the generator exited successfully but
	// the expected output directory does not exist.
	ErrNoOutput = errors.New("generator produced no output directory")
)
