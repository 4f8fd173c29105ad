// Package log configures zerolog for sharkDB binaries and exposes the
// component loggers the rest of the codebase writes through.
package log

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type Format uint8

const (
	ConsoleFormat Format = iota
	JSONFormat
)

var (
	Root    zerolog.Logger
	Engine  zerolog.Logger
	HTTP    zerolog.Logger
	Persist zerolog.Logger
)

// Options for Init.
type Options struct {
	Level  zerolog.Level
	Format Format
}

func ParseLevel(level string) (zerolog.Level, error) {
	return zerolog.ParseLevel(strings.ToLower(level))
}

// Init sets up the root logger and the component sub-loggers. Binaries call
// it once at startup; tests that want quiet output can call it with
// zerolog.Disabled.
func Init(opts Options) {
	switch opts.Format {
	case ConsoleFormat:
		cw := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
		Root = zerolog.New(cw).Level(opts.Level).With().Timestamp().Logger()
	default:
		Root = zerolog.New(os.Stderr).Level(opts.Level).With().Timestamp().Logger()
	}
	Engine = Root.With().Str("component", "engine").Logger()
	HTTP = Root.With().Str("component", "http").Logger()
	Persist = Root.With().Str("component", "persist").Logger()
}

func init() {
	// Binaries override this via Init; the default keeps library consumers
	// and tests from writing unformatted output.
	Init(Options{Level: zerolog.InfoLevel, Format: JSONFormat})
}
