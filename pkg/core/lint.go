package core

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Violation flags one post failing front matter checks
type Violation struct {
	// Path of the post, relative to the content directory
	Path string
	// Err describes the violation
	Err error
}

// LintReport aggregates the outcome of checking all posts
type LintReport struct {
	Checked    int
	Violations []Violation
}

// Lint parses the front matter of every post and reports violations.
//
// Posts are checked concurrently. An unreadable or unparseable post counts
// as a violation rather than failing the whole check.
func (s *Site) Lint(ctx context.Context) (*LintReport, error) {
	posts, err := s.postFiles()
	if err != nil {
		return nil, err
	}

	violations := make([]*Violation, len(posts))
	wg, wctx := errgroup.WithContext(ctx)
	wg.SetLimit(s.concurrency)
	for i, rel := range posts {
		i, rel := i, rel
		wg.Go(func() error {
			select {
			case <-wctx.Done():
				return wctx.Err()
			default:
			}
			desc, perr := s.readPost(rel)
			if perr != nil {
				violations[i] = &Violation{Path: rel, Err: perr}
				return nil
			}
			if verr := desc.Validate(); verr != nil {
				violations[i] = &Violation{Path: rel, Err: verr}
			}
			return nil
		})
	}
	if err = wg.Wait(); err != nil {
		return nil, err
	}

	report := &LintReport{Checked: len(posts)}
	for _, v := range violations {
		if v != nil {
			report.Violations = append(report.Violations, *v)
		}
	}
	return report, nil
}
