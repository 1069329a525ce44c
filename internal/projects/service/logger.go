package service

import (
	"log"
	"strings"
	"sync/atomic"

	"github.com/wastewatch/foodwaste-backend/internal/projects/lifecycle"
)

const (
	levelDebug int32 = iota
	levelInfo
	levelWarn
	levelError
)

var logLevel atomic.Int32

func init() {
	logLevel.Store(levelInfo)
}

// SetLogLevel sets the lowest level service loggers write. It accepts
// debug, info, warn and error; anything else means info.
func SetLogLevel(level string) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		logLevel.Store(levelDebug)
	case "warn", "warning":
		logLevel.Store(levelWarn)
	case "error":
		logLevel.Store(levelError)
	default:
		logLevel.Store(levelInfo)
	}
}

func enabled(level int32) bool {
	return level >= logLevel.Load()
}

// Logger writes service logs tagged with the request that caused them.
type Logger struct {
	requestID string
}

// NewLogger creates a logger for one access
func NewLogger(access lifecycle.Access) *Logger {
	requestID := access.RequestID
	if requestID == "" {
		requestID = "unknown"
	}
	return &Logger{requestID: requestID}
}

// LogError logs an error with context
func (l *Logger) LogError(operation string, err error) {
	log.Printf("[error] request_id=%s operation=%s error=%v", l.requestID, operation, err)
}

// LogInfof logs a formatted info message with context
func (l *Logger) LogInfof(operation string, format string, args ...interface{}) {
	if !enabled(levelInfo) {
		return
	}
	log.Printf("[info] request_id=%s operation=%s "+format, append([]interface{}{l.requestID, operation}, args...)...)
}

// LogWarnf logs a formatted warning with context
func (l *Logger) LogWarnf(operation string, format string, args ...interface{}) {
	if !enabled(levelWarn) {
		return
	}
	log.Printf("[warn] request_id=%s operation=%s "+format, append([]interface{}{l.requestID, operation}, args...)...)
}
