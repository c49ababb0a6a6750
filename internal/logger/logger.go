package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog.Logger to provide a consistent logging interface.
type Logger struct {
	*zerolog.Logger
}

// New creates a new Logger writing human readable lines to out, or stderr if out is nil.
func New(out io.Writer, debug bool) *Logger {
	if out == nil {
		out = os.Stderr
	}

	consoleWriter := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
		NoColor:    true,
	}

	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	zlog := zerolog.New(consoleWriter).
		Level(level).
		With().
		Timestamp().
		Logger()

	return &Logger{&zlog}
}

// WithComponent creates a child logger with a component field.
func (l *Logger) WithComponent(component string) *Logger {
	child := l.Logger.With().Str("component", component).Logger()
	return &Logger{&child}
}

// WithKeeper creates a child logger with a keeper field.
func (l *Logger) WithKeeper(name string) *Logger {
	child := l.Logger.With().Str("keeper", name).Logger()
	return &Logger{&child}
}
