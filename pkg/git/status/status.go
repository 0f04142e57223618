// Package status declares error constants returned by the git package.
package status

import "github.com/xsymphony/blogpub/pkg/errors"

var (
	// ErrGitOperation indicates that a git command returned an error
	ErrGitOperation = errors.New("git operation failed")

	// ErrNotARepository indicates that the target path is not inside a git work tree
	ErrNotARepository = errors.New("not a git repository")

	// ErrDetachedHead indicates that the work tree has no current branch
	ErrDetachedHead = errors.New("work tree is in detached HEAD state")
)
