package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Fields is a shorthand for structured log fields
type Fields = logrus.Fields

// Options configures a logger
type Options struct {
	Level      string
	Format     string // "json" or "text"
	File       string // empty writes to stdout
	MaxSizeMB  int
	MaxBackups int
}

// New builds a logrus logger from options
func New(opts Options) (*logrus.Logger, error) {
	l := logrus.New()

	level := strings.ToLower(opts.Level)
	if level == "" {
		level = "info"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level '%s'", opts.Level)
	}
	l.SetLevel(lvl)
	l.SetReportCaller(true)

	callerPrettyfier := func(f *runtime.Frame) (string, string) {
		return "", fmt.Sprintf("%s:%d", filepath.Base(f.File), f.Line)
	}

	switch opts.Format {
	case "json", "":
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
			CallerPrettyfier: callerPrettyfier,
		})
	case "text":
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:    true,
			TimestampFormat:  time.RFC3339,
			CallerPrettyfier: callerPrettyfier,
		})
	default:
		return nil, fmt.Errorf("invalid log format '%s'", opts.Format)
	}

	l.SetOutput(output(opts))
	return l, nil
}

func output(opts Options) io.Writer {
	switch opts.File {
	case "", "stdout":
		return os.Stdout
	case "stderr":
		return os.Stderr
	}
	maxSize := opts.MaxSizeMB
	if maxSize <= 0 {
		maxSize = 100
	}
	return &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    maxSize,
		MaxBackups: opts.MaxBackups,
		Compress:   true,
	}
}

// Discard returns a logger that drops everything, for tests
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// WithComponent tags entries with the emitting component
func WithComponent(l logrus.FieldLogger, component string) *logrus.Entry {
	if l == nil {
		l = Discard()
	}
	return l.WithField("component", component)
}
