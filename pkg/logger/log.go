package logger

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/muhammadchandra19/exchange/pkg/errors"
	"github.com/muhammadchandra19/exchange/pkg/util"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Interface is an interface that wraps the Logger methods.
//
//go:generate mockgen -source log.go -destination=mock/log_mock.go -package=logger_mock
type Interface interface {
	Debug(message string, fields ...Field)
	DebugContext(ctx context.Context, message string, fields ...Field)
	Error(err error, fields ...Field)
	ErrorContext(ctx context.Context, err error, fields ...Field)
	GetZap() *zap.Logger
	Info(message string, fields ...Field)
	InfoContext(ctx context.Context, message string, fields ...Field)
	Sync() error
	Warn(message string, fields ...Field)
	WarnContext(ctx context.Context, message string, fields ...Field)
	WithFields(fields ...Field) Interface
}

// Logger is a wrapper around zap.Logger to provide structured logging.
type Logger struct {
	logger *zap.Logger
}

// Field holds key-value to be written to log.
type Field struct {
	Key   string
	Value any
}

// Options holds configuration options for the logger.
type Options struct {
	level           Level
	environment     Environment
	outputPaths     []string
	timeKey         string
	levelKey        string
	callerTraceSkip int
}

// Level represents the severity level of the log.
type Level string

// Environment selects the encoder preset of the logger.
type Environment string

var (
	// DebugLevel is used for debug messages.
	DebugLevel Level = "debug"
	// InfoLevel is used for informational messages.
	InfoLevel Level = "info"
	// WarnLevel is used for warning messages.
	WarnLevel Level = "warn"
	// ErrorLevel is used for error messages.
	ErrorLevel Level = "error"

	// Development renders human readable console output.
	Development Environment = "development"
	// Production renders JSON output.
	Production Environment = "production"

	messageKey string = "message"

	// wrapperSkip hides the exported method and write from caller reports.
	wrapperSkip = 2
)

func (level Level) getZapLevel() zapcore.Level {
	switch level {
	case DebugLevel:
		return zapcore.DebugLevel
	case InfoLevel:
		return zapcore.InfoLevel
	case WarnLevel:
		return zapcore.WarnLevel
	case ErrorLevel:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel // use info level as default, same as zap's default production config
	}
}

// ParseLevel maps a configuration string onto a Level. Unknown values fall
// back to InfoLevel.
func ParseLevel(s string) Level {
	switch Level(strings.ToLower(strings.TrimSpace(s))) {
	case DebugLevel:
		return DebugLevel
	case WarnLevel:
		return WarnLevel
	case ErrorLevel:
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// NewLogger creates new Logger instance with configuration options.
func NewLogger(opts ...Options) (*Logger, error) {
	environment := Production
	for _, opt := range opts {
		if opt.environment != "" {
			environment = opt.environment
		}
	}

	cfg := zap.NewProductionConfig()
	if environment == Development {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	var buildOptions []zap.Option
	callerSkip := wrapperSkip

	// apply configuration from options
	for _, opt := range opts {
		if opt.level != "" {
			cfg.Level = zap.NewAtomicLevelAt(opt.level.getZapLevel())
		}
		if opt.outputPaths != nil {
			cfg.OutputPaths = opt.outputPaths
		}
		if opt.timeKey != "" {
			cfg.EncoderConfig.TimeKey = opt.timeKey
		}
		if opt.levelKey != "" {
			cfg.EncoderConfig.LevelKey = opt.levelKey
		}
		if opt.callerTraceSkip > 0 {
			callerSkip += opt.callerTraceSkip
		}
	}
	buildOptions = append(buildOptions, zap.AddCallerSkip(callerSkip))

	// change default message key `msg` to `message`
	cfg.EncoderConfig.MessageKey = messageKey

	logger, err := cfg.Build(buildOptions...)
	return &Logger{
		logger: logger,
	}, err
}

// NewNop returns a Logger that discards everything.
func NewNop() *Logger {
	return &Logger{logger: zap.NewNop()}
}

// Sync flush the buffered log entries
func (l *Logger) Sync() error {
	return l.logger.Sync()
}

// WithLoggingLevel is used to set the minimum log level that will be logged to stdout.
// If not set, it will log `info` level and above by default
func WithLoggingLevel(level Level) Options {
	return Options{
		level: level,
	}
}

// WithEnvironment selects the development (console) or production (JSON)
// encoder preset.
func WithEnvironment(environment Environment) Options {
	return Options{
		environment: environment,
	}
}

// WithOutputPaths is used to set multiple output paths that will be used to write
// logs to. The special paths "stdout" and "stderr" are interpreted as
// os.Stdout and os.Stderr. When specified without a scheme, relative file
// paths also work.
func WithOutputPaths(paths []string) Options {
	return Options{
		outputPaths: paths,
	}
}

// WithTimeKey will use key as reference for log time entry.
func WithTimeKey(key string) Options {
	return Options{
		timeKey: key,
	}
}

// WithLevelKey will use key as reference for log severity entry.
func WithLevelKey(key string) Options {
	return Options{
		levelKey: key,
	}
}

// WithCallerTraceSkip will skip X more frames from the caller report, for
// callers that wrap Interface in their own helpers.
func WithCallerTraceSkip(skip int) Options {
	return Options{
		callerTraceSkip: skip,
	}
}

// GetZap returns zap.Logger instance used by log.Logger
func (l *Logger) GetZap() *zap.Logger {
	return l.logger
}

// NewField returns Field with given key and value.
func NewField(key string, value interface{}) Field {
	return Field{key, value}
}

// Info write log with severity level info
func (l *Logger) Info(message string, fields ...Field) {
	l.write(zapcore.InfoLevel, message, "", fields)
}

// InfoContext write log with severity level info and append the pipeline context fields.
func (l *Logger) InfoContext(ctx context.Context, message string, fields ...Field) {
	l.write(zapcore.InfoLevel, message, "", appendContextFields(ctx, fields))
}

// Warn write log with severity level warn
func (l *Logger) Warn(message string, fields ...Field) {
	l.write(zapcore.WarnLevel, message, "", fields)
}

// WarnContext write log with severity level warn and append the pipeline context fields.
func (l *Logger) WarnContext(ctx context.Context, message string, fields ...Field) {
	l.write(zapcore.WarnLevel, message, "", appendContextFields(ctx, fields))
}

// Debug Write log with severity level debug
func (l *Logger) Debug(message string, fields ...Field) {
	l.write(zapcore.DebugLevel, message, "", fields)
}

// DebugContext Write log with severity level debug and append the pipeline context fields.
func (l *Logger) DebugContext(ctx context.Context, message string, fields ...Field) {
	l.write(zapcore.DebugLevel, message, "", appendContextFields(ctx, fields))
}

// Error write log with severity level error
func (l *Logger) Error(err error, fields ...Field) {
	l.write(zapcore.ErrorLevel, err.Error(), stackOf(err), fields)
}

// ErrorContext write log with severity level error and append the pipeline context fields.
func (l *Logger) ErrorContext(ctx context.Context, err error, fields ...Field) {
	l.write(zapcore.ErrorLevel, err.Error(), stackOf(err), appendContextFields(ctx, fields))
}

// write is the single path to zap, so every exported method sits at the same
// depth below its caller.
func (l *Logger) write(level zapcore.Level, message, stacktrace string, fields []Field) {
	if ce := l.logger.Check(level, message); ce != nil {
		if stacktrace != "" {
			// override stack trace
			ce.Stack = stacktrace
		}
		ce.Write(convertFields(fields...)...)
	}
}

func stackOf(err error) string {
	if errTracer, ok := err.(errors.StackTracer); ok {
		return strings.TrimSpace(fmt.Sprintf("%+v", errTracer.StackTrace()))
	}
	return ""
}

// WithFields returns a child logger with additional fields.
func (l *Logger) WithFields(fields ...Field) Interface {
	return &Logger{
		logger: l.logger.With(convertFields(fields...)...),
	}
}

// convertFields transform fields to zap log fields
func convertFields(fields ...Field) []zapcore.Field {
	zapFields := make([]zapcore.Field, 0, len(fields))
	for _, field := range fields {
		zapFields = append(zapFields, zap.Any(field.Key, field.Value))
	}
	return zapFields
}

// appendContextFields appends the channel/consumer/market values stored in ctx
// in a stable key order.
func appendContextFields(ctx context.Context, fields []Field) []Field {
	ctxFields := util.Fields(ctx)
	keys := make([]string, 0, len(ctxFields))
	for k := range ctxFields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		fields = append(fields, NewField(k, ctxFields[k]))
	}
	return fields
}
