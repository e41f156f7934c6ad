// Package logging builds the zap logger used across fabricacion
package logging

import (
	"strings"

	"go.uber.org/zap"

	"github.com/obrador/fabricacion/pkg/infrastructure/config"
)

// New builds a logger from cfg. Format json selects the production encoder.
func New(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if strings.ToLower(cfg.Format) == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch strings.ToLower(cfg.Level) {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	// Reports go to stdout; keep logs off it.
	zapCfg.OutputPaths = []string{"stderr"}

	return zapCfg.Build()
}
