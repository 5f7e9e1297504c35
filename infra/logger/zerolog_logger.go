package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Options controls how loggers created by New render their output.
type Options struct {
	// Level is a zerolog level name such as "debug" or "info".
	Level string
	// Format is "json" or "console". Empty defers to APP_ENV.
	Format string
	// Output defaults to stdout.
	Output io.Writer
}

var (
	optMu sync.RWMutex
	opts  = Options{Level: "info"}
)

// Configure sets the options used by subsequently created loggers.
func Configure(o Options) error {
	if o.Level == "" {
		o.Level = "info"
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(o.Level)); err != nil {
		return fmt.Errorf("log level %q: %w", o.Level, err)
	}
	switch strings.ToLower(o.Format) {
	case "", "json", "console":
	default:
		return fmt.Errorf("unknown log format %q", o.Format)
	}
	optMu.Lock()
	opts = o
	optMu.Unlock()
	return nil
}

// ZerologLogger implements Logger using rs/zerolog.
type ZerologLogger struct {
	log zerolog.Logger
}

// NewZerologLogger creates a ZerologLogger tagged with the provided component.
func NewZerologLogger(component string) Logger {
	optMu.RLock()
	o := opts
	optMu.RUnlock()

	out := o.Output
	if out == nil {
		out = os.Stdout
	}
	format := strings.ToLower(o.Format)
	if format == "" && strings.ToLower(os.Getenv("APP_ENV")) == "dev" {
		format = "console"
	}
	if format == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339, NoColor: o.Output != nil}
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(o.Level))
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	z := zerolog.New(out).Level(lvl).With().Timestamp().Str("component", component).Logger()
	return &ZerologLogger{log: z}
}

func (l *ZerologLogger) Debugf(format string, args ...any) {
	l.log.Debug().Msgf(format, args...)
}

func (l *ZerologLogger) Debugw(msg string, fields map[string]any) {
	ev := l.log.Debug()
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg(msg)
}

func (l *ZerologLogger) Infof(format string, args ...any) {
	l.log.Info().Msgf(format, args...)
}

func (l *ZerologLogger) Warnf(format string, args ...any) {
	l.log.Warn().Msgf(format, args...)
}

func (l *ZerologLogger) Errorf(format string, args ...any) {
	l.log.Error().Msgf(format, args...)
}
