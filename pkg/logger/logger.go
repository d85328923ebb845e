package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var zlog zerolog.Logger

// Init initializes the structured zerolog logger
func Init(env string) {
	var w io.Writer

	if env == "development" || env == "dev" || env == "local" {
		// Pretty console output for development
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	} else {
		// JSON output for production (machine-readable)
		w = os.Stdout
	}

	zlog = zerolog.New(w).With().
		Timestamp().
		Str("service", "fitlink-backend").
		Logger()

	zerolog.TimeFieldFormat = time.RFC3339
}

// Info logs an informational message
func Info(msg string) {
	zlog.Info().Msg(msg)
}

// Infof logs a formatted informational message
func Infof(format string, args ...interface{}) {
	zlog.Info().Msgf(format, args...)
}

// Warnf logs a formatted warning
func Warnf(format string, args ...interface{}) {
	zlog.Warn().Msgf(format, args...)
}

// Errorf logs a formatted error
func Errorf(format string, args ...interface{}) {
	zlog.Error().Msgf(format, args...)
}

// WithUserID returns a logger with user_id field
func WithUserID(userID string) zerolog.Logger {
	return zlog.With().Str("user_id", userID).Logger()
}

// WithConversationID returns a logger with conversation_id field
func WithConversationID(conversationID string) zerolog.Logger {
	return zlog.With().Str("conversation_id", conversationID).Logger()
}
