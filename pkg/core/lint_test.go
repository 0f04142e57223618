package core

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xsymphony/blogpub/pkg/model"
)

func TestLintCleanContent(t *testing.T) {
	s, fs, dir := newContentSite(t)
	writeTestPost(t, fs, dir, "post/one.md", "One", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), false)
	writeTestPost(t, fs, dir, "post/two.md", "Two", time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC), true)

	report, err := s.Lint(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Checked)
	assert.Empty(t, report.Violations)
}

func TestLintFlagsViolations(t *testing.T) {
	s, fs, dir := newContentSite(t)
	writeTestPost(t, fs, dir, "post/good.md", "Good", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), false)

	// no date
	writeTestPost(t, fs, dir, "post/undated.md", "Undated", time.Time{}, false)

	// no front matter at all
	require.NoError(t, afero.WriteFile(fs,
		filepath.Join(dir, "content", "post", "bare.md"),
		[]byte("just some markdown\n"), 0644))

	// blank tag
	raw, err := model.MarshalFrontMatter(model.FrontMatter{
		Title: "Tagged",
		Date:  time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC),
		Tags:  []string{"ok", "  "},
	}, nil)
	require.NoError(t, err)
	require.NoError(t, afero.WriteFile(fs,
		filepath.Join(dir, "content", "post", "tagged.md"), raw, 0644))

	report, err := s.Lint(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, report.Checked)
	require.Len(t, report.Violations, 3)

	paths := make([]string, 0, len(report.Violations))
	for _, v := range report.Violations {
		assert.Error(t, v.Err)
		paths = append(paths, v.Path)
	}
	assert.Equal(t, []string{"post/bare.md", "post/tagged.md", "post/undated.md"}, paths)
}

func TestLintIgnoresNonMarkdown(t *testing.T) {
	s, fs, dir := newContentSite(t)
	writeTestPost(t, fs, dir, "post/one.md", "One", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), false)
	require.NoError(t, afero.WriteFile(fs,
		filepath.Join(dir, "content", "images", "pic.png"),
		[]byte{0x89, 0x50, 0x4e, 0x47}, 0644))

	report, err := s.Lint(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Checked)
	assert.Empty(t, report.Violations)
}

func TestLintEmptyContentTree(t *testing.T) {
	s, _, _ := newContentSite(t)

	report, err := s.Lint(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.Checked)
	assert.Empty(t, report.Violations)
}
