// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logger builds the diagnostic logger shared by the scrape and
// pipeline stages. Progress output for users goes to an io.Writer at the
// call sites; this logger records the advisory detail (waits, scroll
// rounds, retry causes) that would otherwise drown the progress trail.
package logger

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/pdiddy/paper-digest/pkg/types"
)

const (
	defaultMaxSizeMB  = 10
	defaultMaxBackups = 3
)

// New builds a logger from cfg. With an empty cfg.File the logger writes
// console-encoded lines to stderr only; otherwise it also appends JSON
// lines to the file, rotating via lumberjack.
func New(cfg types.LoggingConfig) (*zap.Logger, error) {
	level := zap.NewAtomicLevel()
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, fmt.Errorf("parsing log level %q: %w", cfg.Level, err)
		}
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(os.Stderr), level),
	}

	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return nil, fmt.Errorf("creating log directory: %w", err)
		}
		maxSize := cfg.MaxSizeMB
		if maxSize == 0 {
			maxSize = defaultMaxSizeMB
		}
		maxBackups := cfg.MaxBackups
		if maxBackups == 0 {
			maxBackups = defaultMaxBackups
		}
		rotating := zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    maxSize,
			MaxBackups: maxBackups,
		})
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), rotating, level))
	}

	return zap.New(zapcore.NewTee(cores...)), nil
}

// Nop returns a logger that discards everything. Tests and callers that
// have no logging config use it instead of passing nil around.
func Nop() *zap.Logger {
	return zap.NewNop()
}
