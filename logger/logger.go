package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

const permission = 0664

// Config selects level, format and destination.
type Config struct {
	Level  string    `mapstructure:"level"`
	Format string    `mapstructure:"format"` // json or console
	Path   string    `mapstructure:"path"`   // empty logs to Output
	Output io.Writer `mapstructure:"-"`
}

// LogData is a configured logger and the file it owns, if any.
type LogData struct {
	Logger  zerolog.Logger
	LogFile *os.File
}

// New builds a zerolog logger with timestamps.
func New(cfg Config) (*LogData, error) {
	level := zerolog.InfoLevel
	if cfg.Level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		level = parsed
	}

	data := &LogData{}
	var writer io.Writer = os.Stderr
	if cfg.Output != nil {
		writer = cfg.Output
	}
	if cfg.Path != "" {
		f, err := os.OpenFile(cfg.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, permission)
		if err != nil {
			return nil, err
		}
		data.LogFile = f
		writer = zerolog.SyncWriter(f)
	}

	switch strings.ToLower(cfg.Format) {
	case "", "json":
	case "console":
		writer = zerolog.ConsoleWriter{Out: writer, NoColor: cfg.Path != ""}
	default:
		_ = data.Close()
		return nil, fmt.Errorf("invalid log format %q", cfg.Format)
	}

	data.Logger = zerolog.New(writer).Level(level).With().Timestamp().Logger()
	return data, nil
}

// Close closes the log file if New opened one.
func (d *LogData) Close() error {
	if d.LogFile == nil {
		return nil
	}
	return d.LogFile.Close()
}
