// Package logging builds the zap logger shared by every emc component.
//
// Messages at info and above go to stderr in console form. Everything,
// including debug output, is also appended as JSON to a size-rotated log
// file so a failed launch can be inspected afterwards.
package logging

import (
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures New.
type Options struct {
	// File is the rotating log file. Empty disables file output.
	File string
	// Verbose lowers the console level to debug.
	Verbose bool
	// Console receives human-readable output. Defaults to os.Stderr.
	Console io.Writer
}

// New returns a sugared logger and a flush function to defer.
func New(opts Options) (*zap.SugaredLogger, func()) {
	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	consoleLevel := zapcore.InfoLevel
	if opts.Verbose {
		consoleLevel = zapcore.DebugLevel
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = ""
	encCfg.CallerKey = ""
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(console), consoleLevel),
	}

	var rotator *lumberjack.Logger
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o750); err == nil {
			rotator = &lumberjack.Logger{
				Filename:   opts.File,
				LocalTime:  true,
				MaxBackups: 5,
				MaxSize:    10,
			}
			cores = append(cores, zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(rotator),
				zapcore.DebugLevel,
			))
		}
	}

	logger := zap.New(zapcore.NewTee(cores...))
	flush := func() {
		//nolint:errcheck // Sync fails on terminals; nothing useful to do about it
		logger.Sync()
		if rotator != nil {
			_ = rotator.Close()
		}
	}
	return logger.Sugar(), flush
}

// Nop returns a logger that discards everything.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
