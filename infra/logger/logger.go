package logger

import (
	"io"
	"log/slog"
	"os"
)

type Logger struct {
	*slog.Logger
}

// New returns a JSON logger tagged with the service name. When extra is
// non-nil (e.g. a Loki writer) log lines are duplicated into it.
func New(serviceName string, extra io.Writer) *Logger {
	var w io.Writer = os.Stdout
	if extra != nil {
		w = io.MultiWriter(os.Stdout, extra)
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	return &Logger{Logger: slog.New(handler).With("service", serviceName)}
}

func (l *Logger) Fatal(msg string, args ...any) {
	l.Logger.Error(msg, args...)
	os.Exit(1)
}
