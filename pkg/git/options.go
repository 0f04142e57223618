package git

import (
	"time"

	"go.uber.org/zap"
)

// Option is a functor to pass optional parameters to a Repo
type Option func(*Repo)

// Logger specifies a logger for git operations
func Logger(l *zap.Logger) Option {
	return func(r *Repo) {
		if l != nil {
			r.l = l
		}
	}
}

// Executor overrides the process executor. Tests use this to script git
// interactions.
func Executor(e CommandExecutor) Option {
	return func(r *Repo) {
		if e != nil {
			r.executor = e
		}
	}
}

// PushRetries bounds the number of reattempts after a failed push
func PushRetries(n uint64) Option {
	return func(r *Repo) {
		r.pushRetries = n
	}
}

// PushRetryInterval sets the initial interval of the exponential backoff
// between push attempts
func PushRetryInterval(d time.Duration) Option {
	return func(r *Repo) {
		r.pushInterval = d
	}
}
