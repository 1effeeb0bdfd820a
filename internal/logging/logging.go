package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// DefaultLevel is used when no level is configured.
const DefaultLevel = "warn"

// AuditName is the logger name whose records are written to the audit log.
const AuditName = "audit"

// Options configures New.
type Options struct {
	// Level is the console level: debug, info, warn or error.
	Level string
	// AuditLog, when set, is the path of a rotating JSON audit file.
	AuditLog string
	// Writer receives console output. Defaults to os.Stderr.
	Writer io.Writer
}

// New builds the process logger. The returned close function flushes and
// closes the audit file, if any.
func New(opts Options) (*zap.Logger, func() error, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.MessageKey = "message"

	consoleCfg := encoderCfg
	consoleCfg.TimeKey = ""
	consoleCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.AddSync(w), level),
	}

	closeFn := func() error { return nil }
	if opts.AuditLog != "" {
		file := &lumberjack.Logger{
			Filename:   opts.AuditLog,
			MaxSize:    10,
			MaxBackups: 5,
			MaxAge:     90,
			Compress:   true,
		}
		cores = append(cores, auditCore{
			Core: zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(file), zapcore.DebugLevel),
		})
		closeFn = file.Close
	}

	logger := zap.New(zapcore.NewTee(cores...))
	return logger, func() error {
		_ = logger.Sync()
		return closeFn()
	}, nil
}

// ParseLevel maps a configured level name to a zap level. Empty selects
// DefaultLevel.
func ParseLevel(s string) (zapcore.Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		s = DefaultLevel
	}
	level, err := zapcore.ParseLevel(s)
	if err != nil {
		return level, fmt.Errorf("invalid log level %q: must be debug, info, warn or error", s)
	}
	return level, nil
}

// auditCore passes through only the records of the audit logger, at every
// level.
type auditCore struct {
	zapcore.Core
}

func (c auditCore) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if e.LoggerName != AuditName {
		return ce
	}
	return c.Core.Check(e, ce)
}

func (c auditCore) With(fields []zapcore.Field) zapcore.Core {
	return auditCore{Core: c.Core.With(fields)}
}
