// Package log provides the process-wide structured logger every ambient
// and driver package in this module logs through. Core packages (dtype,
// memspace, ndarray, ring, decoder, capture) never import it — per
// SPEC_FULL.md §7, "nothing is logged by the core unless a debug-tracing
// hook is attached" — this package exists solely for cmd/'s capture driver.
package log

import "sync"

// Logger is the subset of logrus's Entry surface this module depends on,
// kept as an interface so a future non-logrus backend only has to satisfy
// this contract rather than the whole logrus API.
type Logger interface {
	Print(args ...interface{})
	Printf(format string, args ...interface{})

	Trace(args ...interface{})
	Tracef(format string, args ...interface{})

	Debug(args ...interface{})
	Debugf(format string, args ...interface{})

	Info(args ...interface{})
	Infof(format string, args ...interface{})

	Warn(args ...interface{})
	Warnf(format string, args ...interface{})

	Error(args ...interface{})
	Errorf(format string, args ...interface{})

	Fatal(args ...interface{})
	Fatalf(format string, args ...interface{})

	Panic(args ...interface{})
	Panicf(format string, args ...interface{})

	WithField(field string, value interface{}) Logger
	WithFields(fields map[string]interface{}) Logger
	WithError(err error) Logger

	IsTraceEnabled() bool
	IsDebugEnabled() bool
	IsInfoEnabled() bool
}

var (
	initOnce sync.Once
	logger   Logger
)

// GetLogger returns the process-wide Logger. Returns nil until Init has
// been called — callers that may run before logging is configured should
// check this, which is why cmd's driver calls Init first thing in its
// command handlers.
func GetLogger() Logger {
	return logger
}

// Init builds the process-wide Logger from cfg. Only the first call takes
// effect; subsequent calls are no-ops, so a command that re-enters its own
// setup path (e.g. under test) never rebuilds the logger out from under
// callers already holding a reference.
func Init(cfg *LoggerConfig) {
	initOnce.Do(func() {
		if err := initByConfig(cfg); err != nil {
			panic(err)
		}
	})
}
