package log

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var global Logger = newZapLogger(true, zapcore.InfoLevel)

// SetLogger replaces the global logger instance.
func SetLogger(l Logger) {
	global = l
}

// GetLogger returns the current global logger instance.
func GetLogger() Logger {
	return global
}

// Logger is the logging interface shared by every focus component.
// Fields are passed as a map so callers never import zap directly.
type Logger interface {
	Info(fields map[string]any, msg string)
	Error(fields map[string]any, msg string)
	Debug(fields map[string]any, msg string)
	Warn(fields map[string]any, msg string)
	Fatal(fields map[string]any, msg string)
	// Named returns a child logger whose entries carry name, dot-joined
	// with any parent name.
	Named(name string) Logger
	Sync() error
}

// Configure rebuilds the global logger for env ("dev" or "prod") and level.
// Development mode writes colored console lines, production writes JSON.
// Both go to stderr so that stdout stays reserved for command output.
func Configure(env, level string) error {
	lvl, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	global = newZapLogger(env != "prod", lvl)
	return nil
}

func Info(fields map[string]any, msg string) {
	global.Info(fields, msg)
}

func Error(fields map[string]any, msg string) {
	global.Error(fields, msg)
}

func Debug(fields map[string]any, msg string) {
	global.Debug(fields, msg)
}

func Warn(fields map[string]any, msg string) {
	global.Warn(fields, msg)
}

func Fatal(fields map[string]any, msg string) {
	global.Fatal(fields, msg)
}

// Sync flushes buffered entries of the global logger.
func Sync() error {
	return global.Sync()
}

type zapLogger struct {
	base *zap.Logger
}

func newZapLogger(dev bool, level zapcore.Level) Logger {
	var config zap.Config
	if dev {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		config.DisableStacktrace = true
		config.DisableCaller = true
	} else {
		config = zap.NewProductionConfig()
	}
	config.Level = zap.NewAtomicLevelAt(level)
	config.OutputPaths = []string{"stderr"}
	config.ErrorOutputPaths = []string{"stderr"}
	config.EncoderConfig.TimeKey = "time"
	config.EncoderConfig.MessageKey = "msg"
	config.EncoderConfig.LevelKey = "level"

	logger, err := config.Build()
	if err != nil {
		return &noopLogger{}
	}
	return &zapLogger{base: logger}
}

// write converts fields only when lvl is enabled.
func (l *zapLogger) write(lvl zapcore.Level, fields map[string]any, msg string) {
	if ce := l.base.Check(lvl, msg); ce != nil {
		ce.Write(zapFields(fields)...)
	}
}

func (l *zapLogger) Info(fields map[string]any, msg string) {
	l.write(zapcore.InfoLevel, fields, msg)
}

func (l *zapLogger) Error(fields map[string]any, msg string) {
	l.write(zapcore.ErrorLevel, fields, msg)
}

func (l *zapLogger) Debug(fields map[string]any, msg string) {
	l.write(zapcore.DebugLevel, fields, msg)
}

func (l *zapLogger) Warn(fields map[string]any, msg string) {
	l.write(zapcore.WarnLevel, fields, msg)
}

func (l *zapLogger) Fatal(fields map[string]any, msg string) {
	l.write(zapcore.FatalLevel, fields, msg)
}

func (l *zapLogger) Named(name string) Logger {
	return &zapLogger{base: l.base.Named(name)}
}

func (l *zapLogger) Sync() error {
	return l.base.Sync()
}

// zapFields converts the field map into zap fields in key order so that
// console output is stable between runs.
func zapFields(m map[string]any) []zap.Field {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]zap.Field, 0, len(m))
	for _, k := range keys {
		fields = append(fields, zap.Any(k, m[k]))
	}
	return fields
}

type noopLogger struct{}

func (n *noopLogger) Info(map[string]any, string)  {}
func (n *noopLogger) Error(map[string]any, string) {}
func (n *noopLogger) Debug(map[string]any, string) {}
func (n *noopLogger) Warn(map[string]any, string)  {}
func (n *noopLogger) Fatal(map[string]any, string) {}
func (n *noopLogger) Sync() error                  { return nil }
func (n *noopLogger) Named(string) Logger           { return n }

// NewNoopLogger returns a Logger that discards everything.
func NewNoopLogger() Logger {
	return &noopLogger{}
}
