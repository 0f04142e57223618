package builder

import (
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Option modifies the builder
type Option func(*Builder)

// Command specifies the generator binary and its arguments
// (default: "hugo" with no arguments)
func Command(command string, args ...string) Option {
	return func(b *Builder) {
		if command != "" {
			b.command = command
		}
		b.args = args
	}
}

// OutputDir specifies the directory the generator writes, relative to the
// site directory unless absolute (default: "public")
func OutputDir(dir string) Option {
	return func(b *Builder) {
		if dir != "" {
			b.outputDir = dir
		}
	}
}

// Executor specifies a command executor, primarily for testing
func Executor(e CommandExecutor) Option {
	return func(b *Builder) {
		if e != nil {
			b.executor = e
		}
	}
}

// Fs specifies the file system used to inspect the output directory
// (default: the OS file system)
func Fs(fs afero.Fs) Option {
	return func(b *Builder) {
		if fs != nil {
			b.fs = fs
		}
	}
}

// Logger specifies a logger for builder operations
func Logger(l *zap.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.l = l
		}
	}
}
