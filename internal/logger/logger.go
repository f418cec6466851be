// Package logger builds the zerolog loggers used by the server and CLI.
//
// Logs always go to stderr: stdout carries the JSON-RPC stream when running
// as a tool server and the JSON result when running analyze.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// EnvLevel names the environment variable that overrides the log level.
const EnvLevel = "OBJECT_GRAPH_LOG_LEVEL"

// Options configures New.
type Options struct {
	Level   string
	Console bool
	Service string
}

// ParseLevel accepts zerolog level names plus "warning" and "off".
// The empty string means info.
func ParseLevel(s string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return zerolog.InfoLevel, nil
	case "warning":
		return zerolog.WarnLevel, nil
	case "off", "none":
		return zerolog.Disabled, nil
	}
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("unknown log level %q", s)
	}
	return level, nil
}

// New returns a logger writing to w.
func New(w io.Writer, opts Options) (zerolog.Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return zerolog.Nop(), err
	}
	if opts.Console {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly, NoColor: true}
	}
	ctx := zerolog.New(w).Level(level).With().Timestamp()
	if opts.Service != "" {
		ctx = ctx.Str("service", opts.Service)
	}
	return ctx.Logger(), nil
}

// Stderr returns a logger on os.Stderr. A level in EnvLevel wins over
// opts.Level; an unusable level falls back to info with a warning.
func Stderr(opts Options) zerolog.Logger {
	if env := os.Getenv(EnvLevel); env != "" {
		opts.Level = env
	}
	log, err := New(os.Stderr, opts)
	if err != nil {
		opts.Level = "info"
		log, _ = New(os.Stderr, opts)
		log.Warn().Err(err).Msg("falling back to info level")
	}
	return log
}
