// Package logger builds the zap logger shared by the CLI and the engine.
package logger

import (
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Options struct {
	// Debug lowers the level to debug.
	Debug bool
	// Path is the log file. Empty writes to Writer, or stderr.
	Path   string
	Writer io.Writer
}

// New returns a console-encoded logger and a function that flushes and
// closes it.
func New(opts Options) (*zap.Logger, func(), error) {
	var (
		sink    zapcore.WriteSyncer
		logFile *os.File
	)
	switch {
	case opts.Path != "":
		if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
			return nil, nil, err
		}
		f, err := os.OpenFile(opts.Path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			return nil, nil, err
		}
		logFile = f
		sink = zapcore.AddSync(f)
	case opts.Writer != nil:
		sink = zapcore.AddSync(opts.Writer)
	default:
		sink = zapcore.Lock(os.Stderr)
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	level := zapcore.InfoLevel
	if opts.Debug {
		level = zapcore.DebugLevel
	}

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), sink, level)
	l := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))

	closeFn := func() {
		_ = l.Sync()
		if logFile != nil {
			_ = logFile.Close()
		}
	}
	return l, closeFn, nil
}
