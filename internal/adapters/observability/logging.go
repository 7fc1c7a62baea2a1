package observability

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

const service = "review-scraper"

// NewLogger returns the process logger. APP_ENV=dev (or development) gets a
// console writer at debug level so pipeline state transitions are visible;
// anything else logs JSON at info.
func NewLogger(env string) zerolog.Logger {
	zerolog.DurationFieldUnit = time.Millisecond
	if env == "dev" || env == "development" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
			Level(zerolog.DebugLevel).
			With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).Level(zerolog.InfoLevel).
		With().Timestamp().Str("service", service).Logger()
}
