package logging

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
)

// LogLevel orders message severities; messages below the configured
// level are suppressed.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

var (
	levelMu      sync.Mutex
	currentLevel LogLevel
	levelLoaded  bool
)

// loadLevel reads the log level from environment variables on first use.
func loadLevel() {
	levelMu.Lock()
	defer levelMu.Unlock()

	if levelLoaded {
		return
	}
	levelLoaded = true
	currentLevel = parseLevel(os.Getenv("DEBUG"), os.Getenv("LOG_LEVEL"))
}

// parseLevel resolves the level from DEBUG (which wins) and LOG_LEVEL.
// Unrecognized values fall back to info.
func parseLevel(debugVar, levelVar string) LogLevel {
	switch strings.ToLower(debugVar) {
	case "1", "true", "yes", "on":
		return LevelDebug
	}

	switch strings.ToLower(levelVar) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	}

	return LevelInfo
}

func GetLevel() LogLevel {
	loadLevel()
	levelMu.Lock()
	defer levelMu.Unlock()
	return currentLevel
}

// SetLevel overrides the configured log level. Intended for tests.
func SetLevel(level LogLevel) {
	levelMu.Lock()
	defer levelMu.Unlock()
	levelLoaded = true
	currentLevel = level
}

func IsDebugEnabled() bool {
	return GetLevel() <= LevelDebug
}

func Debug(format string, args ...interface{}) {
	logAt(LevelDebug, "[DEBUG] ", format, args)
}

func Info(format string, args ...interface{}) {
	logAt(LevelInfo, "[INFO] ", format, args)
}

func Warn(format string, args ...interface{}) {
	logAt(LevelWarn, "[WARN] ", format, args)
}

func Error(format string, args ...interface{}) {
	logAt(LevelError, "[ERROR] ", format, args)
}

// Fatal logs the message and exits the process.
func Fatal(format string, args ...interface{}) {
	log.Fatalf("[FATAL] "+format, args...)
}

func logAt(level LogLevel, prefix, format string, args []interface{}) {
	if GetLevel() <= level {
		log.Printf(prefix+format, args...)
	}
}

func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return fmt.Sprintf("unknown(%d)", l)
	}
}
