package observability

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the process-wide sugared logger. Debug mode switches to
// console encoding with debug-level output.
func NewLogger(debug bool) *zap.SugaredLogger {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		// zap only fails on invalid config; fall back to a no-op logger
		return zap.NewNop().Sugar()
	}
	return logger.Sugar()
}
