package logging

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config describes logger runtime configuration.
type Config struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	TimeFormat string `mapstructure:"time_format"`
	Caller     bool   `mapstructure:"caller"`
}

// NewLogger constructs a zerolog logger from config. Unknown levels fall
// back to info; the console format is for interactive runs, json otherwise.
func NewLogger(cfg Config) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	if cfg.TimeFormat != "" {
		zerolog.TimeFieldFormat = cfg.TimeFormat
	}

	level := zerolog.InfoLevel
	if parsed, err := zerolog.ParseLevel(strings.ToLower(cfg.Level)); err == nil {
		level = parsed
	}

	logger := zerolog.New(writerFor(cfg.Format)).Level(level)
	builder := logger.With().Timestamp()
	if cfg.Caller {
		builder = builder.Caller()
	}

	return builder.Logger()
}

func writerFor(format string) zerolog.LevelWriter {
	if strings.EqualFold(format, "console") {
		return zerolog.MultiLevelWriter(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: zerolog.TimeFieldFormat,
		})
	}
	return zerolog.MultiLevelWriter(os.Stdout)
}
