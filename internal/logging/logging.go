// Package logging configures the process-wide structured logger. Mirrors
// the source project's environment-driven verbosity (auto_setup): debug
// output in development, warnings-and-above in production.
package logging

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/insightdelivered/statement-pipeline/internal/config"
)

// Setup configures zerolog's global logger for the given environment and
// level, and returns a base logger for the caller to derive child loggers
// from (e.g. one per task, carrying a task_id field).
func Setup(cfg *config.Config) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		level = zerolog.InfoLevel
	}
	if cfg.Environment == config.EnvProduction && level < zerolog.WarnLevel {
		level = zerolog.WarnLevel
	}
	zerolog.SetGlobalLevel(level)

	var writer zerolog.ConsoleWriter
	if cfg.Environment == config.EnvProduction {
		logger := zerolog.New(os.Stdout).With().Timestamp().Str("app", "statement-pipeline").Logger()
		return logger
	}

	writer = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}
	logger := zerolog.New(writer).With().Timestamp().Str("app", "statement-pipeline").Logger()
	return logger
}

// ForTask returns a child logger scoped to one pipeline task invocation.
func ForTask(base zerolog.Logger, taskID string) zerolog.Logger {
	return base.With().Str("task_id", taskID).Logger()
}
