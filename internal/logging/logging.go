package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// New builds the logger handed to every component. No global state: callers
// pass the returned logger down explicitly.
func New(levelStr string, out io.Writer) zerolog.Logger {
	if out == nil {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "2006-01-02 15:04:05"}
	}

	level, err := zerolog.ParseLevel(levelStr)
	if err != nil || levelStr == "" {
		level = zerolog.InfoLevel
	}

	log := zerolog.New(out).Level(level).With().Timestamp().Logger()
	if err != nil && levelStr != "" {
		log.Warn().Str("level", levelStr).Msg("invalid log level, defaulting to info")
	}
	return log
}
