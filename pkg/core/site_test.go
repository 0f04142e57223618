package core

import (
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xsymphony/blogpub/pkg/builder"
	"github.com/xsymphony/blogpub/pkg/git"
	"github.com/xsymphony/blogpub/pkg/journal"
	"github.com/xsymphony/blogpub/pkg/model"
	"github.com/xsymphony/blogpub/pkg/storage"
	"github.com/xsymphony/blogpub/pkg/storage/localfs"
)

type response struct {
	stdout string
	stderr string
	err    error
}

// scriptedGit replays canned git responses and records every invocation.
// Responses are keyed by subcommand; config and rev-parse responses are
// keyed by their final argument so probes for different keys can coexist.
type scriptedGit struct {
	calls     [][]string
	responses map[string][]response
}

func (s *scriptedGit) ExecuteWithOutput(cmd *exec.Cmd) (string, string, error) {
	args := cmd.Args[1:]
	s.calls = append(s.calls, args)

	key := ""
	if len(args) > 2 {
		key = args[2]
	}
	switch key {
	case "config", "rev-parse":
		key = args[len(args)-1]
	}
	queue := s.responses[key]
	if len(queue) == 0 {
		return "", "", nil
	}
	r := queue[0]
	if len(queue) > 1 {
		// the last response keeps replaying
		s.responses[key] = queue[1:]
	}
	return r.stdout, r.stderr, r.err
}

func (s *scriptedGit) callsFor(op string) [][]string {
	var out [][]string
	for _, call := range s.calls {
		if len(call) > 2 && call[2] == op {
			out = append(out, call)
		}
	}
	return out
}

// ops lists the work tree mutating operations in invocation order.
func (s *scriptedGit) ops() []string {
	mutating := map[string]bool{"status": true, "add": true, "commit": true, "push": true}
	var out []string
	for _, call := range s.calls {
		if len(call) > 2 && mutating[call[2]] {
			out = append(out, call[2])
		}
	}
	return out
}

// fakeGenerator stands in for the site generator binary.
type fakeGenerator struct {
	calls  int
	stdout string
	stderr string
	err    error
}

func (f *fakeGenerator) ExecuteWithOutput(cmd *exec.Cmd) (string, string, error) {
	f.calls++
	return f.stdout, f.stderr, f.err
}

func happyGit() map[string][]response {
	return map[string][]response{
		"status":     {{stdout: " M index.html\n"}},
		"HEAD":       {{stdout: "cafebabe90ff\n"}},
		"user.name":  {{stdout: "Ana Blogger\n"}},
		"user.email": {{stdout: "ana@blog.example\n"}},
	}
}

type testSite struct {
	*Site
	dir   string
	fs    afero.Fs
	git   *scriptedGit
	gen   *fakeGenerator
	store storage.Store
	jrnl  *journal.Journal
}

// newTestSite assembles a Site over an in-memory content tree, a scripted
// git executor, a faked generator and an in-memory backup store. The site
// directory itself is real so locking has somewhere to live.
func newTestSite(t *testing.T, gitResponses map[string][]response, opts ...Option) *testSite {
	t.Helper()

	dir := t.TempDir()
	fs := afero.NewMemMapFs()

	writeTestPost(t, fs, dir, "post/hello.md", "Hello World", time.Date(2023, 5, 1, 10, 0, 0, 0, time.UTC), false)
	require.NoError(t, afero.WriteFile(fs, filepath.Join(dir, "public", "index.html"), []byte("<html>home</html>"), 0644))

	gen := &fakeGenerator{}
	bld := builder.New(dir, builder.Executor(gen), builder.Fs(fs))

	gitFake := &scriptedGit{responses: gitResponses}
	repo := git.New(filepath.Join(dir, "public"),
		git.Executor(gitFake),
		git.PushRetryInterval(time.Millisecond),
	)

	jrnl, err := journal.New(filepath.Join(dir, ".blogpub", "journal"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = jrnl.Close() })

	store := localfs.New(afero.NewMemMapFs())

	site := New(dir, append([]Option{
		Fs(fs),
		Builder(bld),
		Repo(repo),
		Journal(jrnl),
		BackupStore(store),
		Concurrency(2),
	}, opts...)...)

	return &testSite{Site: site, dir: dir, fs: fs, git: gitFake, gen: gen, store: store, jrnl: jrnl}
}

// writeTestPost renders a post file under the content tree.
func writeTestPost(t *testing.T, fs afero.Fs, dir, rel, title string, date time.Time, draft bool) {
	t.Helper()
	content, err := model.MarshalFrontMatter(model.FrontMatter{
		Title: title,
		Date:  date,
		Tags:  []string{"test"},
		Draft: draft,
	}, []byte("some body\n"))
	require.NoError(t, err)
	target := filepath.Join(dir, "content", filepath.FromSlash(rel))
	require.NoError(t, afero.WriteFile(fs, target, content, 0644))
}

func TestNewSiteDefaults(t *testing.T) {
	s := New("/work/blog")
	assert.Equal(t, "/work/blog", s.SiteDir())
	assert.Equal(t, filepath.Join("/work/blog", "content"), s.ContentPath())
	assert.Equal(t, filepath.Join("/work/blog", "public"), s.OutputPath())
	assert.Equal(t, defaultRemote, s.remote)
	assert.Equal(t, defaultBranch, s.branch)
	assert.NotNil(t, s.repo)
	assert.NotNil(t, s.bld)
	assert.Nil(t, s.jrnl)
	assert.Nil(t, s.backupStore)
}

func TestNewSiteOptions(t *testing.T) {
	bld := builder.New("/work/blog", builder.OutputDir("dist"))
	s := New("/work/blog",
		ContentDir("posts"),
		Builder(bld),
		Remote("backup"),
		Branch("main"),
		Concurrency(7),
		Include("config.yaml", "static"),
	)
	assert.Equal(t, filepath.Join("/work/blog", "posts"), s.ContentPath())
	assert.Equal(t, filepath.Join("/work/blog", "dist"), s.OutputPath())
	assert.Equal(t, "backup", s.remote)
	assert.Equal(t, "main", s.branch)
	assert.Equal(t, 7, s.concurrency)
	assert.Equal(t, []string{"config.yaml", "static"}, s.include)
}
