// Package logging builds the hclog loggers used by presetctl.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/hashicorp/go-hclog"
)

// Prefix marks every human-readable log line.
const Prefix = "🎭 "

// NewLogger creates an hclog logger writing UTC timestamps to output
// (stderr when nil). Text output is prefixed line by line; JSON output is
// left untouched for machine consumers.
func NewLogger(name, level string, jsonFormat bool, output io.Writer) hclog.Logger {
	if output == nil {
		output = os.Stderr
	}

	if !jsonFormat {
		output = NewPrefixWriter(Prefix, output)
	}

	lvl := hclog.LevelFromString(level)
	if lvl == hclog.NoLevel {
		lvl = hclog.Warn
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:       name,
		Level:      lvl,
		JSONFormat: jsonFormat,
		Output:     output,
		TimeFormat: "2006-01-02T15:04:05Z",
		TimeFn: func() time.Time {
			return time.Now().UTC()
		},
	})
}
