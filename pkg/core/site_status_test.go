package core

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xsymphony/blogpub/pkg/model"
)

func TestStatusReport(t *testing.T) {
	ts := newTestSite(t, map[string][]response{
		"--is-inside-work-tree": {{stdout: "true\n"}},
		"branch":                {{stdout: "main\n"}},
		"status":                {{stdout: " M index.html\n?? css/\n"}},
		"remote.origin.url":     {{stdout: "git@github.com:ana/blog.git\n"}},
	})

	run := model.RunDescriptor{
		ID:        model.NewRunID(),
		Kind:      model.RunKindPublish,
		Message:   "fix typo",
		StartedAt: model.GetRunTimeStamp(),
		Version:   model.CurrentRunVersion,
	}
	require.NoError(t, ts.jrnl.Append(run))

	st, err := ts.Status(context.Background())
	require.NoError(t, err)

	assert.Equal(t, ts.dir, st.SiteDir)
	assert.Equal(t, filepath.Join(ts.dir, "public"), st.OutputDir)
	assert.True(t, st.IsRepository)
	assert.Equal(t, "main", st.Branch)
	assert.True(t, st.Dirty)
	assert.Equal(t, []string{"index.html", "css/"}, st.ChangedFiles)
	assert.Equal(t, "origin", st.Remote)
	assert.Equal(t, "git@github.com:ana/blog.git", st.RemoteURL)
	require.NotNil(t, st.LastPublish)
	assert.Equal(t, run.ID, st.LastPublish.ID)
	assert.Nil(t, st.LastBackup)
	assert.Equal(t, "localfs", st.BackupTarget)
}

func TestStatusOutsideRepository(t *testing.T) {
	ts := newTestSite(t, map[string][]response{
		"--is-inside-work-tree": {{
			stderr: "fatal: not a git repository (or any of the parent directories): .git",
			err:    fmt.Errorf("exit status 128"),
		}},
	})

	st, err := ts.Status(context.Background())
	require.NoError(t, err)

	assert.False(t, st.IsRepository)
	assert.Equal(t, "master", st.Branch)
	assert.False(t, st.Dirty)
	assert.Nil(t, st.LastPublish)
	assert.Nil(t, st.LastBackup)
}
