package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options control the process logger.
type Options struct {
	JSON  bool
	Debug bool
	// OutputPaths defaults to stderr so stdout carries only command output
	// such as recommendation JSON.
	OutputPaths []string
	// Name is attached to every entry as "app" when set.
	Name string
}

// New builds the process logger for the cli flags.
func New(json bool, debug bool) (*zap.Logger, error) {
	return Build(Options{JSON: json, Debug: debug, Name: "scholar-matcher"})
}

func Build(opts Options) (*zap.Logger, error) {
	cfg := zap.Config{
		Encoding:         encoding(opts.JSON),
		Level:            zap.NewAtomicLevelAt(level(opts.Debug)),
		OutputPaths:      opts.OutputPaths,
		ErrorOutputPaths: []string{"stderr"},
		EncoderConfig:    encoderConfig(),
	}
	if len(cfg.OutputPaths) == 0 {
		cfg.OutputPaths = []string{"stderr"}
	}

	var buildOpts []zap.Option
	if opts.Name != "" {
		buildOpts = append(buildOpts, zap.Fields(zap.String("app", opts.Name)))
	}

	return cfg.Build(buildOpts...)
}

func encoding(json bool) string {
	if json {
		return "json"
	}
	return "console"
}

func level(debug bool) zapcore.Level {
	if debug {
		return zapcore.DebugLevel
	}
	return zapcore.InfoLevel
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		MessageKey:     "step",
		LevelKey:       "level",
		TimeKey:        "time",
		CallerKey:      "caller",
		StacktraceKey:  "stacktrace",
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.RFC3339TimeEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
}
