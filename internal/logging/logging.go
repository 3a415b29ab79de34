// Package logging builds the zap logger shared by the CLI and the world.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/san-kum/rigidsim/internal/config"
)

// New builds a logger from cfg. Format "json" selects the production
// encoder; anything else gets a colored console encoder. An unknown level
// falls back to info.
func New(cfg config.LoggingConfig) (*zap.Logger, error) {
	zapCfg := Config(cfg)
	return zapCfg.Build()
}

// Config returns the zap configuration New would build from.
func Config(cfg config.LoggingConfig) zap.Config {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	if len(cfg.Output) > 0 {
		zapCfg.OutputPaths = cfg.Output
	}
	return zapCfg
}
