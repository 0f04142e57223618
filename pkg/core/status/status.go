// Package status declares errors yielded by the core package.
package status

import (
	"github.com/xsymphony/blogpub/pkg/errors"
)

var (
	// ErrLintViolations indicates that one or more posts failed front matter checks
	ErrLintViolations = errors.New("front matter violations found")

	// ErrPostExists indicates that a post with the derived slug already exists
	ErrPostExists = errors.New("a post with this slug already exists")

	// ErrPostNotFound indicates that no post matches the requested slug
	ErrPostNotFound = errors.New("no post with this slug")

	// ErrInvalidTitle indicates that no usable slug could be derived from a post title
	ErrInvalidTitle = errors.New("cannot derive a slug from this title")

	// ErrNoBackupTarget indicates that a backup was requested without a configured store
	ErrNoBackupTarget = errors.New("no backup target configured")
)
