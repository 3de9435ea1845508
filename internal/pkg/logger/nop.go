package logger

import "go.uber.org/zap"

// NewNopLogger returns a logger that discards everything. Used in tests and
// in CLI commands that print their own output.
func NewNopLogger() *ZapLogger {
	return &ZapLogger{logger: zap.NewNop()}
}
