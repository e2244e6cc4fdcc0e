// Package logging builds the zap loggers used across plasmagen.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type settings struct {
	level       zapcore.Level
	development bool
	file        string
	out         io.Writer
	fields      map[string]any
}

// Option configures New.
type Option func(*settings)

// WithLevel sets the minimum level. Unknown names fall back to info.
func WithLevel(name string) Option {
	return func(s *settings) {
		lvl, err := zapcore.ParseLevel(name)
		if err != nil {
			lvl = zapcore.InfoLevel
		}
		s.level = lvl
	}
}

// WithDevelopment switches to a human readable console encoder.
func WithDevelopment(dev bool) Option {
	return func(s *settings) { s.development = dev }
}

// WithFile appends JSON lines to path instead of stderr, creating its
// directory if needed. The terminal UI logs this way.
func WithFile(path string) Option {
	return func(s *settings) { s.file = path }
}

// WithWriter sends output to w. WithFile takes precedence.
func WithWriter(w io.Writer) Option {
	return func(s *settings) { s.out = w }
}

// WithFields attaches fields to every log line.
func WithFields(fields map[string]any) Option {
	return func(s *settings) {
		for k, v := range fields {
			if k == "" {
				continue
			}
			s.fields[k] = v
		}
	}
}

// New builds a logger. The returned close function flushes and releases the
// log file, if any.
func New(opts ...Option) (*zap.Logger, func(), error) {
	s := &settings{level: zapcore.InfoLevel, out: os.Stderr, fields: map[string]any{}}
	for _, opt := range opts {
		opt(s)
	}

	ws := zapcore.AddSync(s.out)
	closeFile := func() {}
	if s.file != "" {
		if err := os.MkdirAll(filepath.Dir(s.file), 0755); err != nil {
			return nil, nil, fmt.Errorf("logging: create directory for %s: %w", s.file, err)
		}
		f, err := os.OpenFile(s.file, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("logging: open %s: %w", s.file, err)
		}
		ws = zapcore.AddSync(f)
		closeFile = func() { _ = f.Close() }
	}

	var enc zapcore.Encoder
	if s.development {
		ec := zap.NewDevelopmentEncoderConfig()
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		enc = zapcore.NewConsoleEncoder(ec)
	} else {
		ec := zap.NewProductionEncoderConfig()
		ec.EncodeTime = zapcore.ISO8601TimeEncoder
		enc = zapcore.NewJSONEncoder(ec)
	}

	fields := make([]zap.Field, 0, len(s.fields))
	for k, v := range s.fields {
		fields = append(fields, zap.Any(k, v))
	}
	logger := zap.New(zapcore.NewCore(enc, ws, s.level), zap.AddCaller()).With(fields...)
	return logger, func() {
		_ = logger.Sync()
		closeFile()
	}, nil
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
