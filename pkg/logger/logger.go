package logger

import (
	"sync"

	"inventory-service/pkg/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	once     sync.Once
	instance *zap.Logger
)

// InitLogger builds the global zap logger from configuration. Safe to call
// more than once; only the first call wins.
func InitLogger(cfg *config.Config) {
	once.Do(func() {
		var zapCfg zap.Config
		if cfg.Server.Env == "development" {
			zapCfg = zap.NewDevelopmentConfig()
		} else {
			zapCfg = zap.NewProductionConfig()
		}
		zapCfg.OutputPaths = []string{"stdout"}

		if level, err := zapcore.ParseLevel(cfg.Log.Level); err == nil {
			zapCfg.Level = zap.NewAtomicLevelAt(level)
		}

		logger, err := zapCfg.Build()
		if err != nil {
			panic(err)
		}
		instance = logger
		zap.ReplaceGlobals(logger)
	})
}

// GetLogger returns the global logger, building a production default if
// InitLogger has not run yet.
func GetLogger() *zap.Logger {
	once.Do(func() {
		zapCfg := zap.NewProductionConfig()
		zapCfg.OutputPaths = []string{"stdout"}
		logger, err := zapCfg.Build()
		if err != nil {
			panic(err)
		}
		instance = logger
	})
	return instance
}
