// Package logging builds the process-wide zap logger. Records go to two
// rotating JSON files (errorLogs.log for error and above, infoLogs.log for
// info and above) and to stdout.
package logging

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures New.
type Options struct {
	Dir   string // directory for the log files; created when missing
	Name  string // value of the "app" field on every record
	Debug bool   // enable debug level on stdout
}

func rotating(path string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    128, // The size of each log file in MB
		MaxAge:     30,  // The maximum number of days to retain a log file
		MaxBackups: 30,  // The maximum number of log file backups to retain
		Compress:   false,
	}
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		MessageKey:     "msg",
		LevelKey:       "level",
		TimeKey:        "time",
		NameKey:        "logger",
		CallerKey:      "file",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.TimeEncoderOfLayout("2006-01-02T15:04:05.000Z07:00"),
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
		EncodeName:     zapcore.FullNameEncoder,
	}
}

// New returns a logger writing to opts.Dir and stdout.
func New(opts Options) (*zap.Logger, error) {
	if opts.Dir == "" {
		opts.Dir = "logs"
	}
	if opts.Name == "" {
		opts.Name = "connectpp"
	}
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, err
	}

	stdoutLevel := zap.NewAtomicLevelAt(zap.InfoLevel)
	if opts.Debug {
		stdoutLevel.SetLevel(zap.DebugLevel)
	}

	enc := encoderConfig()
	core := zapcore.NewTee(
		NewCore(zapcore.AddSync(rotating(filepath.Join(opts.Dir, "errorLogs.log"))), zap.ErrorLevel),
		NewCore(zapcore.AddSync(rotating(filepath.Join(opts.Dir, "infoLogs.log"))), zap.InfoLevel),
		zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.Lock(os.Stdout), stdoutLevel),
	)

	return zap.New(core, zap.AddCaller(), zap.Fields(zap.String("app", opts.Name))), nil
}

// NewCore returns a JSON core writing records at or above min to w.
func NewCore(w zapcore.WriteSyncer, min zapcore.Level) zapcore.Core {
	return zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig()), w, min)
}
