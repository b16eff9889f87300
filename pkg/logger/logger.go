package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config selects the logger flavour
type Config struct {
	Development bool
	Level       string
}

// New builds a zap logger: colored console output in development, JSON otherwise
func New(cfg Config) (*zap.Logger, error) {
	var zcfg zap.Config
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		zcfg = zap.NewProductionConfig()
	}
	if cfg.Level != "" {
		level, err := zap.ParseAtomicLevel(cfg.Level)
		if err != nil {
			return nil, err
		}
		zcfg.Level = level
	}
	return zcfg.Build()
}
