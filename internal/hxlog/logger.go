// Package hxlog provides structured logging for the hierarchy engine
// using zap, generalizing spec.md section 6's Logger capability
// (isEnabled/logError/logWarning/logInfo/logTrace with category
// namespaces) the way internal/logger/logger.go wraps zap for GoArchive.
package hxlog

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category is one of the namespaces named in spec.md section 6.
type Category string

const (
	CategoryProvider            Category = "Provider"
	CategoryPerformanceProvider Category = "Performance.Provider"
	CategoryQueries             Category = "Queries"
	CategoryPerformanceQueries  Category = "Performance.Queries"
)

// Config mirrors hxconfig.LoggingConfig's shape.
type Config struct {
	Level  string // debug, info, warn, error
	Format string // json or text
	Output string // stdout, stderr, or file path

	// CategoryLevels overrides the level for individual categories, e.g.
	// silencing Performance.* categories while keeping Provider at debug.
	CategoryLevels map[Category]string
}

// Logger wraps zap.SugaredLogger with the category-aware contract
// external collaborators expect from spec.md section 6.
type Logger struct {
	*zap.SugaredLogger
	base           *zap.Logger
	categoryLevels map[Category]zapcore.Level
}

// New creates a Logger from configuration.
func New(cfg *Config) (*Logger, error) {
	level := parseLevel(cfg.Level)
	encoder := buildEncoder(cfg.Format)
	writer := buildWriter(cfg.Output)

	core := zapcore.NewCore(encoder, writer, level)
	base := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))

	catLevels := make(map[Category]zapcore.Level, len(cfg.CategoryLevels))
	for cat, lvl := range cfg.CategoryLevels {
		catLevels[cat] = parseLevel(lvl)
	}

	return &Logger{
		SugaredLogger:  base.Sugar(),
		base:           base,
		categoryLevels: catLevels,
	}, nil
}

// NewDefault creates a Logger with info level, text format, stdout.
func NewDefault() *Logger {
	log, _ := New(&Config{Level: "info", Format: "text", Output: "stdout"})
	return log
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "info", "":
		return zapcore.InfoLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func buildEncoder(format string) zapcore.Encoder {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	if format == "json" {
		return zapcore.NewJSONEncoder(encoderConfig)
	}

	encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return zapcore.NewConsoleEncoder(encoderConfig)
}

func buildWriter(output string) zapcore.WriteSyncer {
	switch output {
	case "stdout", "":
		return zapcore.AddSync(os.Stdout)
	case "stderr":
		return zapcore.AddSync(os.Stderr)
	default:
		file, err := os.OpenFile(output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return zapcore.AddSync(os.Stdout)
		}
		return zapcore.NewMultiWriteSyncer(zapcore.AddSync(file), zapcore.AddSync(os.Stdout))
	}
}

// WithCategory returns a Logger scoped to the given category, tagging
// every subsequent entry with it.
func (l *Logger) WithCategory(cat Category) *Logger {
	return &Logger{
		SugaredLogger:  l.SugaredLogger.With("category", string(cat)),
		base:           l.base,
		categoryLevels: l.categoryLevels,
	}
}

// WithParent returns a Logger scoped to a parent node's fingerprint, for
// correlating pipeline-run log lines (mirrors Logger.WithJob/WithBatch).
func (l *Logger) WithParent(fingerprint string) *Logger {
	return &Logger{
		SugaredLogger:  l.SugaredLogger.With("parent", fingerprint),
		base:           l.base,
		categoryLevels: l.categoryLevels,
	}
}

// IsEnabled reports whether the given category logs at the given level,
// honoring any per-category override.
func (l *Logger) IsEnabled(cat Category, level string) bool {
	want := parseLevel(level)
	if override, ok := l.categoryLevels[cat]; ok {
		return want >= override
	}
	return l.base.Core().Enabled(want)
}

// LogError logs at error level under the given category.
func (l *Logger) LogError(cat Category, msg string, fields ...any) {
	l.WithCategory(cat).Errorw(msg, fields...)
}

// LogWarning logs at warn level under the given category.
func (l *Logger) LogWarning(cat Category, msg string, fields ...any) {
	l.WithCategory(cat).Warnw(msg, fields...)
}

// LogInfo logs at info level under the given category.
func (l *Logger) LogInfo(cat Category, msg string, fields ...any) {
	l.WithCategory(cat).Infow(msg, fields...)
}

// LogTrace logs at debug level under the given category (the engine has
// no separate trace level; debug is the finest zap offers).
func (l *Logger) LogTrace(cat Category, msg string, fields ...any) {
	l.WithCategory(cat).Debugw(msg, fields...)
}

// Sync flushes any buffered log entries.
func (l *Logger) Sync() error {
	return l.base.Sync()
}
