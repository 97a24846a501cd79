// Package logging builds the zap logger shared by the server and the CLI.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/conduit-lang/recordtree/internal/apperror"
)

// Config controls logger construction
type Config struct {
	// Level is one of debug, info, warn, error
	Level string
	// Development switches to the human readable console encoder
	Development bool
}

// New creates a logger. Production uses JSON output, development the
// console encoder with stack traces on warnings.
func New(cfg Config) (*zap.Logger, error) {
	level := zap.NewAtomicLevel()
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
	}

	var zc zap.Config
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}
	zc.Level = level
	return zc.Build()
}

// LevelFor returns the level an error of this kind is logged at. Not-found
// requests are routine and permission denials are expected user behavior.
func LevelFor(err error) zapcore.Level {
	switch apperror.KindOf(err) {
	case apperror.KindNotFound:
		return zapcore.InfoLevel
	case apperror.KindPermission:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}

// Error logs err at the level of its kind with its code and kind attached
func Error(logger *zap.Logger, msg string, err error, fields ...zap.Field) {
	fields = append(fields,
		zap.String("code", apperror.CodeOf(err)),
		zap.String("kind", apperror.KindOf(err).String()),
		zap.Error(err),
	)
	if ce := logger.Check(LevelFor(err), msg); ce != nil {
		ce.Write(fields...)
	}
}
