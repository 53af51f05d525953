package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New creates a zerolog.Logger writing line-oriented console output to w.
// All progress and diagnostics go to the same stream.
func New(w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stdout
	}
	cw := zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly, NoColor: true}
	return zerolog.New(cw).With().Timestamp().Logger()
}

// WithRunID stamps every line of the returned logger with the run ID.
func WithRunID(logger zerolog.Logger, id string) zerolog.Logger {
	return logger.With().Str("run_id", id).Logger()
}
