package utils

import "go.uber.org/zap"

// NewLogger builds the diagnostics logger. Verbose enables a development
// console logger at debug level; otherwise logging is a no-op so CLI
// output stays clean.
func NewLogger(verbose bool) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
