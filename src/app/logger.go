package app

import (
	"io"

	"github.com/rs/zerolog"
)

// InitLogger builds the console logger. Commands pass stderr so that stdout carries only
// command output.
func InitLogger(levelStr string, out io.Writer) zerolog.Logger {
	// Set global log level
	level, err := zerolog.ParseLevel(levelStr)
	if err != nil || levelStr == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	output := zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    false,
		TimeFormat: "2006-01-02 15:04:05",
	}

	return zerolog.New(output).With().
		Timestamp().
		Logger()
}
