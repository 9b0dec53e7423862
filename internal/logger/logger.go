// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package logger

import (
	"io"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
)

// AllLevels lists the accepted logging level names, from most to least verbose.
var AllLevels = []string{"trace", "debug", "info", "warn", "error"}

// nullLogger discards all log messages.
var nullLogger = &instance{log: hclog.NewNullLogger()}

// Logger is the logging interface shared by every essink component.
type Logger interface {
	// WithName returns a new Logger instance with the specified name.
	WithName(name string) Logger

	// With returns a new Logger instance that attaches the given key/value
	// pairs to every message.
	With(args ...any) Logger

	// SetLevel updates the logger level. Unknown level names fall back to "info".
	SetLevel(level string)

	Trace(msg string, args ...any)
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

var _ Logger = &instance{}

type instance struct {
	log hclog.Logger
}

// NewLogger creates a new JSON logger writing to writer at the default "info" level.
func NewLogger(writer io.Writer) Logger {
	return &instance{
		log: hclog.New(&hclog.LoggerOptions{
			JSONFormat: true,
			Output:     writer,
			TimeFn:     time.Now,
			Level:      hclog.Info,
		}),
	}
}

func parseLevel(level string) hclog.Level {
	parsed := hclog.LevelFromString(strings.ToLower(level))
	if parsed == hclog.NoLevel {
		return hclog.Info
	}

	return parsed
}

func (i instance) WithName(name string) Logger {
	return &instance{log: i.log.ResetNamed(name)}
}

func (i instance) With(args ...any) Logger {
	return &instance{log: i.log.With(args...)}
}

func (i instance) SetLevel(level string) {
	i.log.SetLevel(parseLevel(level))
}

func (i instance) Trace(msg string, args ...any) {
	i.log.Trace(msg, args...)
}

func (i instance) Debug(msg string, args ...any) {
	i.log.Debug(msg, args...)
}

func (i instance) Info(msg string, args ...any) {
	i.log.Info(msg, args...)
}

func (i instance) Warn(msg string, args ...any) {
	i.log.Warn(msg, args...)
}

func (i instance) Error(msg string, args ...any) {
	i.log.Error(msg, args...)
}
