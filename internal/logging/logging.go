// Package logging builds the zap logger used by the server.
package logging

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/yourusername/bgrules/internal/config"
)

// New returns a production logger, or a development logger when
// cfg.Development is set, at cfg.Level.
func New(cfg config.LogConfig) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	}
	if cfg.Level != "" {
		level, err := zap.ParseAtomicLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
		zc.Level = level
	}
	return zc.Build()
}
