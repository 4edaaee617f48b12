// Package logging provides the shared structured logger for the shorts worker.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a SugaredLogger writing JSON records to stdout.
// When debug is true the level drops to Debug and output switches to the
// console encoder for readability during local runs.
func New(serviceName string, debug bool) *zap.SugaredLogger {
	level := zap.InfoLevel
	encoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	if debug {
		level = zap.DebugLevel
		encoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), level)
	logger := zap.New(core).With(zap.String("service", serviceName))
	return logger.Sugar()
}
