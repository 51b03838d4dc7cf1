package logger

import (
	"go.uber.org/zap"
)

// Log is safe to use before Initialize; it discards everything until then.
var Log *zap.Logger = zap.NewNop()

// Initialize builds the process-wide logger at the given level.
func Initialize(level string) error {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return err
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	zl, err := cfg.Build()
	if err != nil {
		return err
	}

	Log = zl
	return nil
}
