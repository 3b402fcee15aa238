package internal

import (
	"io"
	"log"
	"os"
	"sync"
)

// LogLevel represents the logging level
type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
)

// Logger is the logging surface handed to parsers, the normalizer and the
// API client. Components never log through package globals directly.
type Logger interface {
	Errorf(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

// LevelLogger is a level-gated Logger backed by the standard log package
type LevelLogger struct {
	mu     sync.RWMutex
	level  LogLevel
	logger *log.Logger
}

// NewLevelLogger creates a LevelLogger writing to w
func NewLevelLogger(w io.Writer, level LogLevel) *LevelLogger {
	return &LevelLogger{
		level:  level,
		logger: log.New(w, "", log.LstdFlags),
	}
}

// SetLevel changes the minimum level that is written
func (l *LevelLogger) SetLevel(level LogLevel) {
	l.mu.Lock()
	l.level = level
	l.mu.Unlock()
}

// Level returns the current level
func (l *LevelLogger) Level() LogLevel {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.level
}

func (l *LevelLogger) printf(level LogLevel, prefix, format string, args ...interface{}) {
	if l.Level() >= level {
		l.logger.Printf(prefix+format, args...)
	}
}

func (l *LevelLogger) Errorf(format string, args ...interface{}) {
	l.printf(LogLevelError, "[ERROR] ", format, args...)
}

func (l *LevelLogger) Warnf(format string, args ...interface{}) {
	l.printf(LogLevelWarn, "[WARN] ", format, args...)
}

func (l *LevelLogger) Infof(format string, args ...interface{}) {
	l.printf(LogLevelInfo, "[INFO] ", format, args...)
}

func (l *LevelLogger) Debugf(format string, args ...interface{}) {
	l.printf(LogLevelDebug, "[DEBUG] ", format, args...)
}

// NopLogger discards everything
type NopLogger struct{}

func (NopLogger) Errorf(string, ...interface{}) {}
func (NopLogger) Warnf(string, ...interface{})  {}
func (NopLogger) Infof(string, ...interface{})  {}
func (NopLogger) Debugf(string, ...interface{}) {}

var defaultLogger = NewLevelLogger(os.Stderr, LogLevelInfo)

// DefaultLogger returns the process-wide logger configured by the CLI flags
func DefaultLogger() *LevelLogger {
	return defaultLogger
}

// SetLogLevel sets the global log level
func SetLogLevel(level LogLevel) {
	defaultLogger.SetLevel(level)
}

// SetVerbose enables verbose (debug) logging
func SetVerbose(verbose bool) {
	if verbose {
		SetLogLevel(LogLevelDebug)
	} else {
		SetLogLevel(LogLevelInfo)
	}
}

// LogError logs an error message
func LogError(format string, args ...interface{}) {
	defaultLogger.Errorf(format, args...)
}

// LogWarn logs a warning message
func LogWarn(format string, args ...interface{}) {
	defaultLogger.Warnf(format, args...)
}

// LogInfo logs an info message
func LogInfo(format string, args ...interface{}) {
	defaultLogger.Infof(format, args...)
}

// LogDebug logs a debug message
func LogDebug(format string, args ...interface{}) {
	defaultLogger.Debugf(format, args...)
}

// orNop returns l, or a NopLogger when l is nil
func orNop(l Logger) Logger {
	if l == nil {
		return NopLogger{}
	}
	return l
}
