package scheduler

import (
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// cronLogger is a cron logger adapter for Zap.
type cronLogger struct{ *zap.SugaredLogger }

var _ cron.Logger = cronLogger{}

func newCronLogger(logger *zap.Logger) cronLogger {
	// Sugared since cron passes keyvals along
	return cronLogger{logger.Named("cron").Sugar()}
}

// Info is used by cron for routine scheduling events, which are debug noise here.
func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.Errorw(msg, append(keysAndValues, "error", err)...)
}
