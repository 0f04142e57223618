package journal

import (
	"go.uber.org/zap"
)

// Option modifies the journal
type Option func(*Journal)

// Logger specifies a logger for journal operations
func Logger(l *zap.Logger) Option {
	return func(j *Journal) {
		if l != nil {
			j.l = l
		}
	}
}
