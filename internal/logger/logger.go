// Package logger provides leveled logging on top of the standard log package.
package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"
)

// Level represents a logging level
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

// Logger writes messages at or above its level.
type Logger struct {
	level  Level
	json   bool
	logger *log.Logger
}

var defaultLogger = &Logger{level: InfoLevel, logger: log.New(os.Stderr, "", log.LstdFlags)}

type entry struct {
	Time    string `json:"time"`
	Level   string `json:"level"`
	Message string `json:"msg"`
}

// ParseLevel maps a level name to a Level. Unknown names map to InfoLevel.
func ParseLevel(level string) Level {
	switch strings.ToLower(level) {
	case "debug":
		return DebugLevel
	case "warn":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// Init configures the default logger. The "json" format writes one JSON
// object per line with time, level and msg fields. Any other format writes
// plain lines; "text" also adds the calling file and line.
func Init(level, format string) {
	InitWriter(os.Stderr, level, format)
}

// InitWriter is like Init but writes to w.
func InitWriter(w io.Writer, level, format string) {
	switch strings.ToLower(format) {
	case "json":
		defaultLogger = &Logger{level: ParseLevel(level), json: true, logger: log.New(w, "", 0)}
	case "text":
		defaultLogger = &Logger{level: ParseLevel(level), logger: log.New(w, "", log.LstdFlags|log.Lshortfile)}
	default:
		defaultLogger = &Logger{level: ParseLevel(level), logger: log.New(w, "", log.LstdFlags)}
	}
}

func output(l Level, tag, format string, args ...interface{}) {
	if defaultLogger.level > l {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if defaultLogger.json {
		b, err := json.Marshal(entry{Time: time.Now().Format(time.RFC3339), Level: tag, Message: msg})
		if err == nil {
			_ = defaultLogger.logger.Output(3, string(b))
			return
		}
	}
	_ = defaultLogger.logger.Output(3, "["+tag+"] "+msg)
}

// Debug logs a message at DebugLevel
func Debug(format string, args ...interface{}) { output(DebugLevel, "DEBUG", format, args...) }

// Info logs a message at InfoLevel
func Info(format string, args ...interface{}) { output(InfoLevel, "INFO", format, args...) }

// Warn logs a message at WarnLevel
func Warn(format string, args ...interface{}) { output(WarnLevel, "WARN", format, args...) }

// Error logs a message at ErrorLevel
func Error(format string, args ...interface{}) { output(ErrorLevel, "ERROR", format, args...) }

// Fatal logs a message and exits with status 1.
func Fatal(format string, args ...interface{}) {
	output(ErrorLevel, "FATAL", format, args...)
	os.Exit(1)
}
