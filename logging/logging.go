package logging

import "go.uber.org/zap"

// New creates a new zap logger
func New() *zap.SugaredLogger {
	logger, _ := zap.NewProduction()
	return logger.Sugar()
}
