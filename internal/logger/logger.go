package logger

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ekisa-team/estimo/internal/env"
)

type options struct {
	writer    io.Writer
	logFile   string
	logToFile bool
	level     slog.Level
}

// Option configures the logger.
type Option func(*options)

// WithLogToFile enables writing logs to a rotated file in addition to stderr.
func WithLogToFile(enabled bool) Option {
	return func(o *options) {
		o.logToFile = enabled
	}
}

// WithLogFile sets the rotated log file path.
func WithLogFile(path string) Option {
	return func(o *options) {
		o.logFile = path
	}
}

// WithLevel overrides the environment's default level.
func WithLevel(level slog.Level) Option {
	return func(o *options) {
		o.level = level
	}
}

// WithWriter replaces stderr as the primary sink.
func WithWriter(w io.Writer) Option {
	return func(o *options) {
		o.writer = w
	}
}

// New builds a logger for the given environment. Development gets a tint
// handler at debug level; production gets JSON at info level.
func New(environment env.Environment, opts ...Option) *slog.Logger {
	o := &options{
		writer:  os.Stderr,
		logFile: "logs/estimo.log",
		level:   slog.LevelDebug,
	}
	if environment.IsProduction() {
		o.level = slog.LevelInfo
	}
	for _, opt := range opts {
		opt(o)
	}

	w := o.writer
	colored := true
	if o.logToFile && o.logFile != "" {
		w = io.MultiWriter(o.writer, &lumberjack.Logger{
			Filename:   o.logFile,
			MaxSize:    50, // megabytes
			MaxBackups: 5,
			MaxAge:     28, // days
			Compress:   true,
		})
		colored = false
	}

	if environment.IsProduction() {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: o.level}))
	}

	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      o.level,
		TimeFormat: time.Kitchen,
		NoColor:    !colored,
	}))
}
