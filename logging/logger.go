package logging

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// LogLevel represents the severity level of a log message
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

// String returns the string representation of the log level
func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case FATAL:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// Color returns ANSI color codes for terminal output
func (l LogLevel) Color() string {
	switch l {
	case DEBUG:
		return "\033[36m" // Cyan
	case INFO:
		return "\033[38;5;195m" // Pale Blue
	case WARN:
		return "\033[33m" // Yellow
	case ERROR:
		return "\033[31m" // Red
	case FATAL:
		return "\033[35m" // Magenta
	default:
		return "\033[0m"
	}
}

func (l LogLevel) logrusLevel() logrus.Level {
	switch l {
	case DEBUG:
		return logrus.DebugLevel
	case WARN:
		return logrus.WarnLevel
	case ERROR:
		return logrus.ErrorLevel
	case FATAL:
		return logrus.FatalLevel
	default:
		return logrus.InfoLevel
	}
}

func fromLogrusLevel(level logrus.Level) LogLevel {
	switch level {
	case logrus.TraceLevel, logrus.DebugLevel:
		return DEBUG
	case logrus.WarnLevel:
		return WARN
	case logrus.ErrorLevel:
		return ERROR
	case logrus.FatalLevel, logrus.PanicLevel:
		return FATAL
	default:
		return INFO
	}
}

// Fields is an alias so callers don't need to import logrus directly
type Fields = logrus.Fields

// Logger is a prefixed, leveled logger on top of a shared logrus instance
type Logger struct {
	base   *logrus.Logger
	prefix string
	fields logrus.Fields
}

// Config holds logger configuration options
type Config struct {
	Level       string // "debug", "info", "warn", "error", "fatal"
	Output      io.Writer
	Prefix      string
	EnableColor bool
}

// DefaultConfig returns a default logger configuration
func DefaultConfig() Config {
	return Config{
		Level:       "info",
		Output:      os.Stdout,
		Prefix:      "",
		EnableColor: true,
	}
}

// ParseLevel converts a string level to LogLevel
func ParseLevel(level string) LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return DEBUG
	case "info":
		return INFO
	case "warn", "warning":
		return WARN
	case "error":
		return ERROR
	case "fatal":
		return FATAL
	default:
		return INFO
	}
}

// New creates a new Logger instance
func New(config Config) *Logger {
	if config.Output == nil {
		config.Output = os.Stdout
	}

	base := logrus.New()
	base.SetOutput(config.Output)
	base.SetLevel(ParseLevel(config.Level).logrusLevel())
	base.SetFormatter(&lineFormatter{enableColor: config.EnableColor})

	return &Logger{
		base:   base,
		prefix: config.Prefix,
	}
}

// NewDefault creates a logger with default configuration
func NewDefault() *Logger {
	return New(DefaultConfig())
}

// SetLevel sets the minimum log level
func (l *Logger) SetLevel(level LogLevel) {
	l.base.SetLevel(level.logrusLevel())
}

// Level returns the minimum enabled level
func (l *Logger) Level() LogLevel {
	return fromLogrusLevel(l.base.GetLevel())
}

// SetOutput sets the output destination
func (l *Logger) SetOutput(w io.Writer) {
	l.base.SetOutput(w)
}

// IsLevelEnabled checks if the given level is enabled
func (l *Logger) IsLevelEnabled(level LogLevel) bool {
	return l.base.IsLevelEnabled(level.logrusLevel())
}

func (l *Logger) entry() *logrus.Entry {
	entry := logrus.NewEntry(l.base)
	if l.prefix != "" {
		entry = entry.WithField(prefixField, l.prefix)
	}
	if len(l.fields) > 0 {
		entry = entry.WithFields(l.fields)
	}
	return entry
}

// Debug logs a message at DEBUG level
func (l *Logger) Debug(args ...interface{}) {
	l.entry().Debug(args...)
}

// Debugf logs a formatted message at DEBUG level
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.entry().Debugf(format, args...)
}

// Info logs a message at INFO level
func (l *Logger) Info(args ...interface{}) {
	l.entry().Info(args...)
}

// Infof logs a formatted message at INFO level
func (l *Logger) Infof(format string, args ...interface{}) {
	l.entry().Infof(format, args...)
}

// Warn logs a message at WARN level
func (l *Logger) Warn(args ...interface{}) {
	l.entry().Warn(args...)
}

// Warnf logs a formatted message at WARN level
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.entry().Warnf(format, args...)
}

// Error logs a message at ERROR level
func (l *Logger) Error(args ...interface{}) {
	l.entry().Error(args...)
}

// Errorf logs a formatted message at ERROR level
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.entry().Errorf(format, args...)
}

// Fatal logs a message at FATAL level and exits the program
func (l *Logger) Fatal(args ...interface{}) {
	l.entry().Fatal(args...)
}

// Fatalf logs a formatted message at FATAL level and exits the program
func (l *Logger) Fatalf(format string, args ...interface{}) {
	l.entry().Fatalf(format, args...)
}

// WithPrefix returns a new logger with the specified prefix
func (l *Logger) WithPrefix(prefix string) *Logger {
	newPrefix := prefix
	if l.prefix != "" {
		newPrefix = l.prefix + ":" + prefix
	}

	return &Logger{
		base:   l.base,
		prefix: newPrefix,
		fields: l.fields,
	}
}

// WithFields returns a logger that attaches the given fields to every line
func (l *Logger) WithFields(fields Fields) *Logger {
	merged := make(logrus.Fields, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}

	return &Logger{
		base:   l.base,
		prefix: l.prefix,
		fields: merged,
	}
}

const prefixField = "prefix"

// lineFormatter renders "LEVEL timestamp [prefix] message key=value"
type lineFormatter struct {
	enableColor bool
}

func (f *lineFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	level := fromLogrusLevel(entry.Level)

	var colorStart, colorEnd string
	if f.enableColor {
		colorStart = level.Color()
		colorEnd = "\033[0m"
	}

	prefix := ""
	if p, ok := entry.Data[prefixField].(string); ok && p != "" {
		prefix = fmt.Sprintf("[%s] ", p)
	}

	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		if k != prefixField {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var b bytes.Buffer
	fmt.Fprintf(&b, "%s%-5s %s %-30s%s",
		colorStart,
		level.String(),
		entry.Time.Format("2006-01-02 15:04:05.000"),
		prefix,
		entry.Message,
	)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, entry.Data[k])
	}
	b.WriteString(colorEnd)
	b.WriteByte('\n')

	return b.Bytes(), nil
}
