// Package logger provides the key-value logger used across the module,
// backed by zerolog with optional console and rotating-file writers.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the minimal structured logging surface components depend
// on. kv is a flat list of alternating keys and values.
type Logger interface {
	Debug(msg string, kv ...any)
	Info(msg string, kv ...any)
	Warn(msg string, kv ...any)
	Err(err error, msg string, kv ...any)
}

type zl struct {
	l zerolog.Logger
}

// Options configures the logger writers.
type Options struct {
	Level   string   // trace|debug|info|warn|error
	Writers []string // "console", "file"
	File    string   // path for the rotating file writer
}

// New builds a Logger from the given options. Unknown levels fall back
// to info; no writers falls back to console.
func New(opts Options) Logger {
	lvl, err := zerolog.ParseLevel(opts.Level)
	if err != nil || opts.Level == "" {
		lvl = zerolog.InfoLevel
	}

	var ws []io.Writer
	for _, w := range opts.Writers {
		switch w {
		case "console":
			ws = append(ws, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
		case "file":
			if opts.File != "" {
				ws = append(ws, &lumberjack.Logger{
					Filename:   opts.File,
					MaxSize:    20, // MB
					MaxBackups: 3,
					MaxAge:     7, // days
				})
			}
		}
	}
	if len(ws) == 0 {
		ws = append(ws, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	base := zerolog.New(zerolog.MultiLevelWriter(ws...)).Level(lvl).With().Timestamp().Logger()
	return &zl{l: base}
}

// NewNop returns a Logger that discards everything.
func NewNop() Logger {
	return &zl{l: zerolog.Nop()}
}

func (z *zl) Debug(msg string, kv ...any) { emit(z.l.Debug(), msg, kv) }
func (z *zl) Info(msg string, kv ...any)  { emit(z.l.Info(), msg, kv) }
func (z *zl) Warn(msg string, kv ...any)  { emit(z.l.Warn(), msg, kv) }

func (z *zl) Err(err error, msg string, kv ...any) {
	emit(z.l.Error().Err(err), msg, kv)
}

func emit(e *zerolog.Event, msg string, kv []any) {
	for i := 0; i+1 < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			continue
		}
		e = e.Interface(k, kv[i+1])
	}
	e.Msg(msg)
}
