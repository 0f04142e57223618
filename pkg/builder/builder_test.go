package builder

import (
	"context"
	"os/exec"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xsymphony/blogpub/pkg/builder/status"
	"github.com/xsymphony/blogpub/pkg/errors"
)

// fakeExecutor records the command it was handed and replays a canned
// response instead of running the generator.
type fakeExecutor struct {
	cmd    *exec.Cmd
	stdout string
	stderr string
	err    error
}

func (f *fakeExecutor) ExecuteWithOutput(cmd *exec.Cmd) (string, string, error) {
	f.cmd = cmd
	return f.stdout, f.stderr, f.err
}

func testSiteFs(t *testing.T, withOutput bool) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/work/blog/content/post", 0755))
	if withOutput {
		require.NoError(t, afero.WriteFile(fs, "/work/blog/public/index.html", []byte("<html>home</html>"), 0644))
		require.NoError(t, afero.WriteFile(fs, "/work/blog/public/post/welcome/index.html", []byte("<html>welcome post</html>"), 0644))
		require.NoError(t, afero.WriteFile(fs, "/work/blog/public/css/site.css", []byte("body{}"), 0644))
		// the published work tree: not part of the rendered output
		require.NoError(t, afero.WriteFile(fs, "/work/blog/public/.git/HEAD", []byte("ref: refs/heads/master\n"), 0644))
	}
	return fs
}

func TestRunReportsOutput(t *testing.T) {
	fake := &fakeExecutor{stdout: "Pages built in 42 ms\n"}
	b := New("/work/blog",
		Executor(fake),
		Fs(testSiteFs(t, true)),
	)

	res, err := b.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "hugo", res.Command)
	assert.Equal(t, "/work/blog/public", res.OutputDir)
	assert.Equal(t, 3, res.Files)
	assert.Equal(t, int64(17+25+6), res.Bytes)
}

func TestRunCommandLine(t *testing.T) {
	fake := &fakeExecutor{}
	b := New("/work/blog",
		Executor(fake),
		Fs(testSiteFs(t, true)),
		Command("hugo", "--minify", "--quiet"),
	)

	_, err := b.Run(context.Background())
	require.NoError(t, err)

	require.NotNil(t, fake.cmd)
	assert.Equal(t, []string{"hugo", "--minify", "--quiet"}, fake.cmd.Args)
	assert.Equal(t, "/work/blog", fake.cmd.Dir)
}

func TestRunGeneratorNotFound(t *testing.T) {
	fake := &fakeExecutor{
		err: &exec.Error{Name: "hugo", Err: exec.ErrNotFound},
	}
	b := New("/work/blog", Executor(fake), Fs(testSiteFs(t, false)))

	_, err := b.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrGeneratorNotFound))
}

func TestRunGeneratorFailed(t *testing.T) {
	fake := &fakeExecutor{
		stderr: "Error: template for shortcode \"gist\" not found\n",
		err:    errors.New("exit status 255"),
	}
	b := New("/work/blog", Executor(fake), Fs(testSiteFs(t, true)))

	_, err := b.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrGeneratorFailed))

	var genErr *GeneratorError
	require.True(t, errors.As(err, &genErr))
	assert.Equal(t, "hugo", genErr.Command)
	assert.Equal(t, `Error: template for shortcode "gist" not found`, genErr.Output)
}

func TestRunMissingOutput(t *testing.T) {
	fake := &fakeExecutor{}
	b := New("/work/blog", Executor(fake), Fs(testSiteFs(t, false)))

	_, err := b.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrNoOutput))
}

func TestRunCustomOutputDir(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/work/blog/dist/index.html", []byte("ok"), 0644))

	fake := &fakeExecutor{}
	b := New("/work/blog", Executor(fake), Fs(fs), OutputDir("dist"))

	res, err := b.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/work/blog/dist", res.OutputDir)
	assert.Equal(t, 1, res.Files)
}

func TestGeneratorErrorRendering(t *testing.T) {
	e := &GeneratorError{
		Command: "hugo",
		Args:    []string{"--minify"},
		Err:     errors.New("exit status 1"),
		Output:  "Error: unable to locate config file",
	}
	assert.Equal(t,
		"hugo failed: Error: unable to locate config file: exit status 1",
		e.Error(),
	)
}
