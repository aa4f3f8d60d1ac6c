// Package logger provides leveled logging with optional file rotation.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Level is the severity of a log message.
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

var levelNames = map[Level]string{
	DEBUG: "DEBUG",
	INFO:  "INFO",
	WARN:  "WARN",
	ERROR: "ERROR",
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// ParseLevel converts a level name to a Level. Unknown names map to INFO.
func ParseLevel(level string) Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return DEBUG
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	default:
		return INFO
	}
}

// Rotation configures the lumberjack file writer.
type Rotation struct {
	MaxSize    int // MB
	MaxBackups int
	MaxAge     int // days
	Compress   bool
}

// Logger writes level-prefixed lines and drops messages below its level.
type Logger struct {
	loggers map[Level]*log.Logger
	level   Level
	mu      sync.RWMutex
}

// New creates a Logger writing to w.
func New(w io.Writer, level Level) *Logger {
	l := &Logger{
		loggers: make(map[Level]*log.Logger, len(levelNames)),
		level:   level,
	}
	for lvl, name := range levelNames {
		l.loggers[lvl] = log.New(w, "["+name+"] ", log.LstdFlags)
	}
	return l
}

// NewWithFile creates a Logger writing to stderr and to a rotated file at path.
func NewWithFile(path string, level Level, rot Rotation) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	file := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    rot.MaxSize,
		MaxBackups: rot.MaxBackups,
		MaxAge:     rot.MaxAge,
		Compress:   rot.Compress,
	}
	return New(io.MultiWriter(os.Stderr, file), level), nil
}

// SetLevel changes the minimum level.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// Level returns the minimum level.
func (l *Logger) Level() Level {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.level
}

func (l *Logger) logf(level Level, format string, v ...any) {
	if level < l.Level() {
		return
	}
	l.loggers[level].Output(3, fmt.Sprintf(format, v...)) //nolint:errcheck
}

// Debugf logs at DEBUG.
func (l *Logger) Debugf(format string, v ...any) { l.logf(DEBUG, format, v...) }

// Infof logs at INFO.
func (l *Logger) Infof(format string, v ...any) { l.logf(INFO, format, v...) }

// Warnf logs at WARN.
func (l *Logger) Warnf(format string, v ...any) { l.logf(WARN, format, v...) }

// Errorf logs at ERROR.
func (l *Logger) Errorf(format string, v ...any) { l.logf(ERROR, format, v...) }

var (
	instance *Logger
	mu       sync.RWMutex
)

// SetDefault installs l as the package-level logger. Passing nil silences
// the package-level helpers.
func SetDefault(l *Logger) {
	mu.Lock()
	defer mu.Unlock()
	instance = l
}

// Default returns the package-level logger, or nil when none is installed.
func Default() *Logger {
	mu.RLock()
	defer mu.RUnlock()
	return instance
}

// Global convenience functions. They are no-ops until SetDefault is called.

// Debugf logs at DEBUG using the package-level logger.
func Debugf(format string, v ...any) {
	if l := Default(); l != nil {
		l.logf(DEBUG, format, v...)
	}
}

// Infof logs at INFO using the package-level logger.
func Infof(format string, v ...any) {
	if l := Default(); l != nil {
		l.logf(INFO, format, v...)
	}
}

// Warnf logs at WARN using the package-level logger.
func Warnf(format string, v ...any) {
	if l := Default(); l != nil {
		l.logf(WARN, format, v...)
	}
}

// Errorf logs at ERROR using the package-level logger.
func Errorf(format string, v ...any) {
	if l := Default(); l != nil {
		l.logf(ERROR, format, v...)
	}
}
