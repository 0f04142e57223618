// Package status declares the sentinel errors returned by the journal
// package.
package status

import (
	"github.com/xsymphony/blogpub/pkg/errors"
)

var (
	// ErrNoRuns indicates that the journal holds no run matching the query.
	ErrNoRuns = errors.New("no recorded runs")

	// ErrJournalClosed indicates use of a journal after Close.
	ErrJournalClosed = errors.New("journal is closed")
)
