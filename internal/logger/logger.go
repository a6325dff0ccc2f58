// Package logger holds the process-wide zap logger.
package logger

import "go.uber.org/zap"

// Log is a no-op until InitLogger is called, so library code and tests can
// log unconditionally.
var Log = zap.NewNop()

// InitLogger replaces Log with a production JSON logger.
func InitLogger() {
	Log = zap.Must(zap.NewProduction())
}
