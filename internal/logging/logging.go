package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a sugared zap logger shared by the CLI and the session.
type Logger struct {
	*zap.SugaredLogger
}

// console logger; debug level when verbose
func NewLogger(verbose bool) *Logger {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	return newLogger(level)
}

// NewLoggerWithLevel parses a level name ("debug", "info", "warn", "error").
// Unknown names fall back to info.
func NewLoggerWithLevel(name string, verbose bool) *Logger {
	if verbose {
		return newLogger(zapcore.DebugLevel)
	}
	level, err := zapcore.ParseLevel(name)
	if err != nil {
		level = zapcore.InfoLevel
	}
	return newLogger(level)
}

func newLogger(level zapcore.Level) *Logger {
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(os.Stderr),
		level,
	)

	return &Logger{zap.New(core).Sugar()}
}

// discards everything; used by tests and library callers
func Nop() *Logger {
	return &Logger{zap.NewNop().Sugar()}
}
