// Package errlog is the structured error/event log the pipeline reports into.
// Business-rule failures go in as warnings; infrastructure failures as error
// or critical (critical when mid-operation consistency is at risk).
package errlog

import (
	"context"
	"log/slog"
)

type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

type Logger struct {
	log *slog.Logger
}

func New(log *slog.Logger) *Logger {
	if log == nil {
		log = slog.Default()
	}
	return &Logger{log: log}
}

// Log records one pipeline event. logContext identifies the operation
// (e.g. "content_processing/duplicate"), errType the failure class.
func (l *Logger) Log(ctx context.Context, logContext, errType, msg string, data map[string]any, severity Severity) {
	attrs := make([]slog.Attr, 0, len(data)+2)
	attrs = append(attrs,
		slog.String("context", logContext),
		slog.String("error_type", errType),
	)
	for k, v := range data {
		attrs = append(attrs, slog.Any(k, v))
	}

	level := slog.LevelWarn
	switch severity {
	case SeverityError:
		level = slog.LevelError
	case SeverityCritical:
		level = slog.LevelError
		attrs = append(attrs, slog.Bool("critical", true))
	}

	l.log.LogAttrs(ctx, level, msg, attrs...)
}
