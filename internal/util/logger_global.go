package util

import (
	"fmt"
	"sync"
)

var (
	globalLogger = discardLogger()
	loggerMu     sync.RWMutex
)

// InitLogger replaces the global logger. When the log file cannot be
// opened, logging falls back to stderr and the open error is returned.
func InitLogger(cfg LoggerConfig) error {
	logger, err := NewLogger(cfg)
	if err != nil {
		if cfg.File == "" {
			return err
		}
		fallback := cfg
		fallback.File = ""
		fallback.Console = true
		var fallbackErr error
		if logger, fallbackErr = NewLogger(fallback); fallbackErr != nil {
			return fmt.Errorf("%w; %v", err, fallbackErr)
		}
	}

	loggerMu.Lock()
	previous := globalLogger
	globalLogger = logger
	loggerMu.Unlock()

	previous.Close()
	return err
}

func current() *Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return globalLogger
}

// WithFields returns the global logger with fields attached to every entry.
func WithFields(fields ...Field) LoggerInterface {
	return current().With(fields...)
}

func LogDebug(msg string) {
	current().Debug(msg)
}

func LogDebugf(format string, args ...interface{}) {
	current().Debugf(format, args...)
}

func LogInfo(msg string) {
	current().Info(msg)
}

func LogInfof(format string, args ...interface{}) {
	current().Infof(format, args...)
}

func LogWarn(msg string) {
	current().Warn(msg)
}

func LogWarnf(format string, args ...interface{}) {
	current().Warnf(format, args...)
}

func LogError(msg string) {
	current().Error(msg)
}

func LogErrorf(format string, args ...interface{}) {
	current().Errorf(format, args...)
}
