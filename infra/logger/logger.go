package logger

import corelogger "github.com/kilianp07/v2genv/core/logger"

// Logger mirrors the core logger interface.
type Logger = corelogger.Logger

// NopLogger implements Logger with no-op methods.
type NopLogger = corelogger.Nop

// New returns a Logger for the given component. Level and format follow the
// last call to Configure; without one the APP_ENV variable picks the format.
func New(component string) Logger {
	return NewZerologLogger(component)
}
