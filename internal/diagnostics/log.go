// Package diagnostics provides the resolver's tracing logger: structured,
// slog-based, and purely observational. Nothing in the resolution
// algorithm branches on whether logging is enabled, and no diagnostic
// emitted here is a substitute for the empty-ResolvedBindings /
// UNRESOLVED_DELEGATE data the resolver itself produces for missing or
// conflicting bindings.
package diagnostics

import (
	"io"
	"log/slog"
	"os"
)

const (
	DefaultLevel  = slog.LevelInfo
	DefaultFormat = FormatText
)

// Format selects the slog handler used by New.
type Format uint8

const (
	FormatText Format = iota
	FormatJSON
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	default:
		return "text"
	}
}

type config struct {
	Level     slog.Level
	AddSource bool
	Format    Format
	Writer    io.Writer
}

// Option configures a logger built by New.
type Option func(*config)

func WithLevel(level slog.Level) Option {
	return func(c *config) { c.Level = level }
}

func WithFormat(format Format) Option {
	return func(c *config) { c.Format = format }
}

func WithAddSource(add bool) Option {
	return func(c *config) { c.AddSource = add }
}

func WithWriter(w io.Writer) Option {
	return func(c *config) {
		if w != nil {
			c.Writer = w
		}
	}
}

// New builds a *slog.Logger for resolver tracing. With no options it logs
// nothing below info level as plain text to stdout.
func New(opts ...Option) *slog.Logger {
	c := config{
		Level:  DefaultLevel,
		Format: DefaultFormat,
		Writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(&c)
	}

	o := &slog.HandlerOptions{Level: c.Level, AddSource: c.AddSource}

	var handler slog.Handler
	switch c.Format {
	case FormatJSON:
		handler = slog.NewJSONHandler(c.Writer, o)
	default:
		handler = slog.NewTextHandler(c.Writer, o)
	}
	return slog.New(handler)
}

// Noop returns a logger that discards everything, the default a Resolver
// uses when no logger is supplied via WithLogger.
func Noop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}
