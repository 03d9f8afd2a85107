package logger

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// Level is a log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var (
	mu       sync.Mutex
	minLevel = LevelInfo
	out      io.Writer = os.Stderr
)

// SetLevel sets the minimum level from a name ("debug", "info", "warn",
// "error"). Unknown names leave the level unchanged.
func SetLevel(name string) {
	mu.Lock()
	defer mu.Unlock()
	switch strings.ToLower(name) {
	case "debug":
		minLevel = LevelDebug
	case "info":
		minLevel = LevelInfo
	case "warn", "warning":
		minLevel = LevelWarn
	case "error":
		minLevel = LevelError
	}
}

// SetOutput redirects log output. Intended for tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
}

func levelName(l Level) string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	default:
		return "ERROR"
	}
}

func logCF(l Level, component, msg string, fields map[string]interface{}) {
	mu.Lock()
	defer mu.Unlock()
	if l < minLevel {
		return
	}

	var sb strings.Builder
	sb.WriteString(time.Now().Format("2006-01-02 15:04:05"))
	sb.WriteString(" [")
	sb.WriteString(levelName(l))
	sb.WriteString("] [")
	sb.WriteString(component)
	sb.WriteString("] ")
	sb.WriteString(msg)

	if len(fields) > 0 {
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			sb.WriteString(fmt.Sprintf(" %s=%v", k, fields[k]))
		}
	}
	sb.WriteString("\n")
	fmt.Fprint(out, sb.String())
}

// DebugCF logs a debug message for a component with structured fields.
func DebugCF(component, msg string, fields map[string]interface{}) {
	logCF(LevelDebug, component, msg, fields)
}

// InfoCF logs an info message for a component with structured fields.
func InfoCF(component, msg string, fields map[string]interface{}) {
	logCF(LevelInfo, component, msg, fields)
}

// WarnCF logs a warning for a component with structured fields.
func WarnCF(component, msg string, fields map[string]interface{}) {
	logCF(LevelWarn, component, msg, fields)
}

// ErrorCF logs an error for a component with structured fields.
func ErrorCF(component, msg string, fields map[string]interface{}) {
	logCF(LevelError, component, msg, fields)
}
