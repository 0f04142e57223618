package builder

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/xsymphony/blogpub/pkg/builder/status"
	"github.com/xsymphony/blogpub/pkg/errors"
)

const (
	defaultCommand   = "hugo"
	defaultOutputDir = "public"
)

// Builder runs the static-site generator for the site rooted at a
// directory.
type Builder struct {
	siteDir   string
	command   string
	args      []string
	outputDir string
	executor  CommandExecutor
	fs        afero.Fs
	l         *zap.Logger
}

// Result reports what a successful build produced.
type Result struct {
	Command   string
	OutputDir string
	Files     int
	Bytes     int64
	Duration  time.Duration
}

// New creates a builder for the site rooted at siteDir.
func New(siteDir string, opts ...Option) *Builder {
	b := &Builder{
		siteDir:   siteDir,
		command:   defaultCommand,
		outputDir: defaultOutputDir,
		executor:  &execExecutor{},
		fs:        afero.NewOsFs(),
		l:         zap.NewNop(),
	}
	for _, apply := range opts {
		apply(b)
	}
	return b
}

// OutputPath returns the path of the generator output directory,
// resolved against the site directory when relative.
func (b *Builder) OutputPath() string {
	if filepath.IsAbs(b.outputDir) {
		return b.outputDir
	}
	return filepath.Join(b.siteDir, b.outputDir)
}

// Run executes the generator and verifies its output.
//
// The generator runs with its working directory set to the site
// directory; the working directory of the calling process is never
// changed. Three failures are distinguished: the binary is not on PATH,
// the binary exited non-zero, and the binary reported success but left
// no output directory behind.
func (b *Builder) Run(ctx context.Context) (*Result, error) {
	t0 := time.Now()

	cmd := exec.CommandContext(ctx, b.command, b.args...)
	cmd.Dir = b.siteDir

	b.l.Debug("running generator",
		zap.String("command", b.command),
		zap.Strings("args", b.args),
		zap.String("dir", b.siteDir),
	)

	stdout, stderr, err := b.executor.ExecuteWithOutput(cmd)
	if stdout != "" {
		b.l.Debug("generator output", zap.String("stdout", strings.TrimSpace(stdout)))
	}
	if err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) {
			return nil, status.ErrGeneratorNotFound.WrapMessage("%s: %v", b.command, execErr)
		}
		return nil, status.ErrGeneratorFailed.Wrap(&GeneratorError{
			Command: b.command,
			Args:    b.args,
			Err:     err,
			Output:  strings.TrimSpace(stderr),
		})
	}

	res := &Result{
		Command:   b.command,
		OutputDir: b.OutputPath(),
	}
	fi, err := b.fs.Stat(res.OutputDir)
	if err != nil || !fi.IsDir() {
		return nil, status.ErrNoOutput.WrapMessage("expected %s", res.OutputDir)
	}

	err = afero.Walk(b.fs, res.OutputDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			// the output tree doubles as a git work tree: .git is not output
			if info.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		res.Files++
		res.Bytes += info.Size()
		return nil
	})
	if err != nil {
		return nil, status.ErrNoOutput.Wrap(err)
	}

	res.Duration = time.Since(t0)
	b.l.Debug("generator done",
		zap.Int("files", res.Files),
		zap.Int64("bytes", res.Bytes),
		zap.Duration("took", res.Duration),
	)
	return res, nil
}
