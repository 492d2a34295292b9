package auth

import (
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
)

// Logger is the logging contract used across the package
type Logger = glog.Logger

// LoggerProvider hands out named loggers
type LoggerProvider = glog.LoggerProvider

// ResolveLogger picks the named logger from provider, falling back to
// logger and then to a no-op logger.
func ResolveLogger(name string, provider LoggerProvider, logger Logger) (LoggerProvider, Logger) {
	return glog.Resolve(name, provider, logger)
}

func defaultLogger() Logger {
	return glog.NewLogger(
		glog.WithName("auth"),
		glog.WithLoggerTypeJSON(),
		glog.WithLevel(glog.Info),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)
}

func normalizeLogger(l Logger) Logger {
	if l == nil {
		return defaultLogger()
	}
	return l
}
