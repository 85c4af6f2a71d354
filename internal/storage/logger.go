package storage

import (
	"context"
	"time"

	"gorm.io/gorm/logger"

	applog "formprobe/internal/logger"
)

// GormLogger routes GORM's logging through the module logger.
type GormLogger struct {
	log      applog.Logger
	LogLevel logger.LogLevel
}

func NewGormLogger(l applog.Logger) *GormLogger {
	if l == nil {
		l = applog.NewNop()
	}
	return &GormLogger{log: l, LogLevel: logger.Warn}
}

// LogMode returns a copy at the requested level.
func (l *GormLogger) LogMode(level logger.LogLevel) logger.Interface {
	nl := *l
	nl.LogLevel = level
	return &nl
}

func (l *GormLogger) Info(_ context.Context, msg string, data ...any) {
	if l.LogLevel >= logger.Info {
		l.log.Info(msg, "data", data)
	}
}

func (l *GormLogger) Warn(_ context.Context, msg string, data ...any) {
	if l.LogLevel >= logger.Warn {
		l.log.Warn(msg, "data", data)
	}
}

func (l *GormLogger) Error(_ context.Context, msg string, data ...any) {
	if l.LogLevel >= logger.Error {
		l.log.Err(nil, msg, "data", data)
	}
}

// Trace logs executed SQL, flagging failures and slow statements.
func (l *GormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.LogLevel <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()
	fields := []any{
		"sql", sql,
		"rows", rows,
		"timeMs", float64(elapsed.Nanoseconds()) / 1e6,
	}

	switch {
	case err != nil && l.LogLevel >= logger.Error:
		l.log.Err(err, "sql failed", fields...)
	case elapsed > time.Second && l.LogLevel >= logger.Warn:
		l.log.Warn("slow sql", append(fields, "threshold", "1s")...)
	case l.LogLevel == logger.Info:
		l.log.Debug("sql executed", fields...)
	}
}
