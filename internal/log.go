package internal

import (
	"log"
	"os"
	"strings"
)

// LogLevel represents different logging verbosity levels
type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
)

// Logger provides leveled logging on top of the standard logger
type Logger struct {
	level LogLevel
}

// NewLogger creates a new logger with the specified level
func NewLogger(level LogLevel) *Logger {
	return &Logger{level: level}
}

// ParseLogLevel maps ERROR, WARN, INFO or DEBUG to a level. Unknown names
// fall back to INFO.
func ParseLogLevel(s string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ERROR":
		return LogLevelError
	case "WARN":
		return LogLevelWarn
	case "DEBUG":
		return LogLevelDebug
	}
	return LogLevelInfo
}

// NewDefaultLogger creates a logger based on the CRACK_LOG_LEVEL environment variable
func NewDefaultLogger() *Logger {
	return NewLogger(ParseLogLevel(os.Getenv("CRACK_LOG_LEVEL")))
}

func (l *Logger) logf(level LogLevel, prefix, format string, args ...any) {
	if l.level >= level {
		log.Printf(prefix+format, args...)
	}
}

// Error logs error messages
func (l *Logger) Error(format string, args ...any) { l.logf(LogLevelError, "❌ ", format, args...) }

// Warn logs warning messages
func (l *Logger) Warn(format string, args ...any) { l.logf(LogLevelWarn, "⚠️  ", format, args...) }

// Info logs info messages
func (l *Logger) Info(format string, args ...any) { l.logf(LogLevelInfo, "✅ ", format, args...) }

// Debug logs debug messages
func (l *Logger) Debug(format string, args ...any) { l.logf(LogLevelDebug, "[DEBUG] ", format, args...) }

// Level returns the current log level
func (l *Logger) Level() LogLevel {
	return l.level
}

// Global logger instance
var DefaultLogger = NewDefaultLogger()
