package testutil

import (
	"github.com/quillworks/billing/internal/logger"
	"go.uber.org/zap"
)

// GetLogger returns a no-op logger for tests
func GetLogger() *logger.Logger {
	return &logger.Logger{SugaredLogger: zap.NewNop().Sugar()}
}
