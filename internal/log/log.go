// Package log holds the module wide logger. It is a no-op logger until SetLogger is called.
package log

import (
	"sync/atomic"

	"go.uber.org/zap"
)

var logger atomic.Pointer[zap.Logger]

func init() {
	logger.Store(zap.NewNop())
}

// Logger returns the module's logger instance.
func Logger() *zap.Logger {
	return logger.Load()
}

// SetLogger configures the module's logger. Passing nil restores the no-op logger.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger.Store(l)
}
