// Package logging builds the zap logger shared by the CLI and its adapters.
package logging

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options controls where log entries go.
type Options struct {
	Verbose   bool      // Debug level on the console instead of Warn
	AuditPath string    // Optional JSON file receiving every Info+ entry
	Console   io.Writer // Defaults to os.Stderr
}

// New returns a console logger, tee'd to the audit file when one is configured.
// The returned close func syncs the logger and closes the audit file.
func New(opts Options) (*zap.Logger, func(), error) {
	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	level := zapcore.WarnLevel
	if opts.Verbose {
		level = zapcore.DebugLevel
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = ""
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(zapcore.AddSync(console)), level),
	}

	var audit *os.File
	if opts.AuditPath != "" {
		f, err := os.OpenFile(opts.AuditPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0640)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open audit log: %w", err)
		}
		audit = f
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(f),
			zapcore.InfoLevel,
		))
	}

	logger := zap.New(zapcore.NewTee(cores...))
	closer := func() {
		_ = logger.Sync()
		if audit != nil {
			_ = audit.Close()
		}
	}
	return logger, closer, nil
}
