// Package obslog builds the structured logger shared by every command
// and package in the pipeline: one zap.Logger, level set from config or
// the LEVEL environment variable, with section_id/uuid/file_chunk
// fields attached per fragment rather than threaded through return
// values.
package obslog

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a production-style JSON logger at the given level name
// ("debug", "info", "warn", "error"; anything else falls back to info).
func New(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(level))
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// WithFragment scopes a logger to one emitted fragment's identity.
func WithFragment(log *zap.Logger, sectionID, uuidStr string, fileChunk int) *zap.Logger {
	return log.With(
		zap.String("section_id", sectionID),
		zap.String("uuid", uuidStr),
		zap.Int("file_chunk", fileChunk),
	)
}
