package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options controls where and how verbosely the logger writes
type Options struct {
	// Env prefixes the log file name
	Env string
	// Dir holds the JSON log files; defaults to "logs"
	Dir string
	// Console receives the human-readable output; defaults to stdout
	Console      io.Writer
	ConsoleLevel zapcore.Level
	FileLevel    zapcore.Level
	// Now stamps the log file name; defaults to time.Now
	Now func() time.Time
}

// InitLogger builds the CLI logger: coloured Info output on stdout and
// Debug JSON in logs/<env>_<timestamp>.log
func InitLogger(env string) (*zap.Logger, error) {
	return NewLogger(Options{
		Env:          env,
		ConsoleLevel: zapcore.InfoLevel,
		FileLevel:    zapcore.DebugLevel,
	})
}

// NewLogger builds a logger teeing a console core and a JSON file core
func NewLogger(opts Options) (*zap.Logger, error) {
	if opts.Dir == "" {
		opts.Dir = "logs"
	}
	if opts.Console == nil {
		opts.Console = os.Stdout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	env := opts.Env
	if env == "" {
		env = "default"
	}

	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	name := fmt.Sprintf("%s_%s.log", env, opts.Now().Format("2006-01-02_15-04-05"))
	logFile, err := os.OpenFile(filepath.Join(opts.Dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	consoleEncoderConfig := zap.NewDevelopmentEncoderConfig()
	consoleEncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	consoleEncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder

	fileEncoderConfig := zap.NewProductionEncoderConfig()
	fileEncoderConfig.TimeKey = "timestamp"
	fileEncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleEncoderConfig), zapcore.AddSync(opts.Console), opts.ConsoleLevel),
		zapcore.NewCore(zapcore.NewJSONEncoder(fileEncoderConfig), zapcore.AddSync(logFile), opts.FileLevel),
	)

	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}
