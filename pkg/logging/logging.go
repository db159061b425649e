package logging

import (
	"context"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logger *otelzap.Logger
)

// Init initializes the global logger. Call this early in main.
func Init(level string, pretty bool) *otelzap.Logger {
	logger = New(level, pretty)
	otelzap.ReplaceGlobals(logger)
	return logger
}

// New builds a console logger: colored development output when pretty, JSON otherwise.
func New(level string, pretty bool) *otelzap.Logger {
	var cfg zap.Config
	if pretty {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.EncoderConfig.TimeKey = ""
		cfg.EncoderConfig.CallerKey = ""
	} else {
		cfg = zap.NewProductionConfig()
	}
	if lvl, err := zapcore.ParseLevel(level); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	z, err := cfg.Build(zap.AddStacktrace(zapcore.FatalLevel))
	if err != nil {
		panic(err)
	}
	return otelzap.New(z)
}

// Nop returns a logger that discards everything. Used by tests.
func Nop() *otelzap.Logger {
	return otelzap.New(zap.NewNop())
}

// fallbackLogger returns a development logger if Init() was not called.
func fallbackLogger() *otelzap.Logger {
	z, _ := zap.NewDevelopment()
	return otelzap.New(z)
}

// L returns the global otelzap.Logger (for advanced use).
func L() *otelzap.Logger {
	if logger != nil {
		return logger
	}
	return fallbackLogger()
}

// C returns a context-aware logger (recommended for most use).
func C(ctx context.Context) otelzap.LoggerWithCtx {
	return L().Ctx(ctx)
}
