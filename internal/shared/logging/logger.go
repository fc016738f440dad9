package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/nemanja-m/chores/internal/shared/config"
)

type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Fatal(msg string, args ...any)
}

type SlogLogger struct {
	log  *slog.Logger
	file *os.File
}

var _ Logger = (*SlogLogger)(nil)

// New builds a logger from config. Records go to out and, when cfg.File is
// set, are teed into that file. The handler serializes writes, so the logger
// is safe to share between goroutines. Close releases the file.
func New(cfg config.LoggingConfig, out io.Writer) (*SlogLogger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	var file *os.File
	if cfg.File != "" {
		file, err = os.Create(cfg.File)
		if err != nil {
			return nil, fmt.Errorf("error opening log file: %w", err)
		}
		out = io.MultiWriter(out, file)
	}

	opts := handlerOptions(level)
	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "json":
		handler = slog.NewJSONHandler(out, opts)
	case "", "text":
		handler = slog.NewTextHandler(out, opts)
	default:
		if file != nil {
			file.Close()
		}
		return nil, fmt.Errorf("unsupported log format: %s", cfg.Format)
	}

	return &SlogLogger{log: slog.New(handler), file: file}, nil
}

func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return level, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

func handlerOptions(level slog.Level) *slog.HandlerOptions {
	return &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				a.Value = slog.TimeValue(a.Value.Time().UTC())
			}
			return a
		},
	}
}

func (sl *SlogLogger) Debug(msg string, args ...any) {
	sl.log.Debug(msg, args...)
}

func (sl *SlogLogger) Info(msg string, args ...any) {
	sl.log.Info(msg, args...)
}

func (sl *SlogLogger) Warn(msg string, args ...any) {
	sl.log.Warn(msg, args...)
}

func (sl *SlogLogger) Error(msg string, args ...any) {
	sl.log.Error(msg, args...)
}

func (sl *SlogLogger) Fatal(msg string, args ...any) {
	sl.log.Error(msg, args...)
	sl.Close()
	os.Exit(1)
}

func (sl *SlogLogger) Close() error {
	if sl.file == nil {
		return nil
	}
	err := sl.file.Close()
	sl.file = nil
	return err
}
