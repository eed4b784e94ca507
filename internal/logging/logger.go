// Package logging configures slog for the capture tool and hands out
// per-module loggers.
package logging

import (
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	moduleLoggers  = make(map[string]*slog.Logger)
	globalConfig   Config
	globalLevelVar = &slog.LevelVar{} // default level
	isInitialized  bool
	mutex          sync.RWMutex
)

// Config represents logging configuration.
type Config struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Initialize sets up the logging system.
func Initialize(config Config) {
	mutex.Lock()
	defer mutex.Unlock()

	globalConfig = config
	isInitialized = true

	level := parseLevel(config.Level)
	if level == nil {
		defaultLevel := slog.LevelInfo
		level = &defaultLevel
	}
	globalLevelVar.Set(*level)

	// Recreate existing module loggers so they pick up format and level
	for module := range moduleLoggers {
		moduleLoggers[module] = slog.New(createHandler(config.Format, globalLevelVar)).With("module", module)
	}

	slog.SetDefault(slog.New(createHandler(config.Format, globalLevelVar)))
}

// GetLogger returns a logger for the specified module, creating it if needed.
func GetLogger(module string) *slog.Logger {
	mutex.RLock()
	if logger, exists := moduleLoggers[module]; exists {
		mutex.RUnlock()
		return logger
	}
	mutex.RUnlock()

	mutex.Lock()
	defer mutex.Unlock()

	// Double-check in case another goroutine created it
	if logger, exists := moduleLoggers[module]; exists {
		return logger
	}

	format := "text"
	if isInitialized {
		format = globalConfig.Format
	}
	logger := slog.New(createHandler(format, globalLevelVar)).With("module", module)
	moduleLoggers[module] = logger
	return logger
}

// createHandler creates a slog handler with the specified format and level.
func createHandler(format string, level slog.Leveler) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if format == "json" {
		return slog.NewJSONHandler(os.Stderr, opts)
	}
	return slog.NewTextHandler(os.Stderr, opts)
}

// parseLevel converts string level to slog.Level.
func parseLevel(level string) *slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		l := slog.LevelDebug
		return &l
	case "info":
		l := slog.LevelInfo
		return &l
	case "warn", "warning":
		l := slog.LevelWarn
		return &l
	case "error":
		l := slog.LevelError
		return &l
	default:
		return nil
	}
}
