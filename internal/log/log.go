// Package log holds the process-wide zap logger.
package log

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	mu         sync.RWMutex
	baseLogger *zap.Logger
	sugared    *zap.SugaredLogger
)

// Init builds the process logger. debug selects zap's development config.
func Init(debug bool) error {
	var zapLogger *zap.Logger
	var err error

	if debug {
		zapLogger, err = zap.NewDevelopment()
	} else {
		zapLogger, err = zap.NewProduction()
	}
	if err != nil {
		return fmt.Errorf("can't initialize zap logger: %w", err)
	}

	Set(zapLogger)
	return nil
}

// Set replaces the process logger. Tests use it with zaptest loggers.
func Set(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	baseLogger = l
	sugared = l.Sugar()
}

// GetZapLogger returns the base logger, falling back to a production logger
// when Init was never called.
func GetZapLogger() *zap.Logger {
	mu.RLock()
	l := baseLogger
	mu.RUnlock()
	if l != nil {
		return l
	}

	fallback, err := zap.NewProduction()
	if err != nil {
		fallback = zap.NewNop()
	}
	Set(fallback)
	return fallback
}

// GetSugaredLogger returns the sugared form of the process logger.
func GetSugaredLogger() *zap.SugaredLogger {
	mu.RLock()
	s := sugared
	mu.RUnlock()
	if s != nil {
		return s
	}
	return GetZapLogger().Sugar()
}

// Named returns a sugared child logger for one component.
func Named(name string) *zap.SugaredLogger {
	return GetSugaredLogger().Named(name)
}

// Sync flushes buffered entries.
func Sync() {
	mu.RLock()
	l := baseLogger
	mu.RUnlock()
	if l != nil {
		_ = l.Sync()
	}
}

// HTTPRequest records one served request.
func HTTPRequest(logger *zap.SugaredLogger, method, path string, status int, duration time.Duration, size int, remoteAddr string) {
	fields := []any{
		"method", method,
		"path", path,
		"status", status,
		"duration_ms", duration.Milliseconds(),
		"size", size,
		"remote_addr", remoteAddr,
	}
	if status >= 500 {
		logger.Errorw("http request", fields...)
		return
	}
	logger.Infow("http request", fields...)
}
