// Package logging builds the zap loggers used by the binaries.
package logging

import (
	"go.uber.org/zap"
)

// New returns a production JSON logger at level, or a console logger with
// caller info when dev is set.
func New(level string, dev bool) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	if dev {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = lvl
	return cfg.Build()
}
