package internal

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync/atomic"
)

// LogLevel represents different logging verbosity levels
type LogLevel int32

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
)

var levelNames = map[LogLevel]string{
	LogLevelError: "ERROR",
	LogLevelWarn:  "WARN",
	LogLevelInfo:  "INFO",
	LogLevelDebug: "DEBUG",
}

func (l LogLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("LogLevel(%d)", int32(l))
}

// ParseLogLevel maps ERROR, WARN, INFO or DEBUG (any case) to a level
func ParseLogLevel(s string) (LogLevel, error) {
	want := strings.ToUpper(strings.TrimSpace(s))
	for level, name := range levelNames {
		if name == want {
			return level, nil
		}
	}
	return LogLevelInfo, fmt.Errorf("unknown log level %q", s)
}

// Logger gates stdlib log output by level. Messages keep the
// "[Component] message" shape used across the codebase.
type Logger struct {
	level atomic.Int32
}

// NewLogger creates a new logger with the specified level
func NewLogger(level LogLevel) *Logger {
	l := &Logger{}
	l.level.Store(int32(level))
	return l
}

// NewDefaultLogger creates a logger based on LOG_LEVEL environment variable
func NewDefaultLogger() *Logger {
	level, err := ParseLogLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		level = LogLevelInfo
	}
	return NewLogger(level)
}

// SetLevel changes the level; safe for concurrent use
func (l *Logger) SetLevel(level LogLevel) {
	l.level.Store(int32(level))
}

// Level returns the current log level
func (l *Logger) Level() LogLevel {
	return LogLevel(l.level.Load())
}

// Enabled reports whether messages at level are written
func (l *Logger) Enabled(level LogLevel) bool {
	return l.Level() >= level
}

func (l *Logger) Error(format string, args ...interface{}) {
	if l.Enabled(LogLevelError) {
		log.Printf(format, args...)
	}
}

func (l *Logger) Warn(format string, args ...interface{}) {
	if l.Enabled(LogLevelWarn) {
		log.Printf(format, args...)
	}
}

func (l *Logger) Info(format string, args ...interface{}) {
	if l.Enabled(LogLevelInfo) {
		log.Printf(format, args...)
	}
}

// Debug is for per-chunk and per-property detail
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.Enabled(LogLevelDebug) {
		log.Printf(format, args...)
	}
}

// Global logger instance
var DefaultLogger = NewDefaultLogger()
