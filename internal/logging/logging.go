package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger = zap.NewNop().Sugar()

// Init configures the process logger. In quiet mode only errors surface; the
// default keeps warnings so skipped files and degraded caches are visible.
func Init(verbose, quiet bool) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{"stderr"}
	switch {
	case quiet:
		cfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	case verbose:
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	default:
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	l, err := cfg.Build()
	if err != nil {
		panic("logger init: " + err.Error())
	}
	logger = l.Sugar()
}

// L returns the process logger.
func L() *zap.SugaredLogger { return logger }
