// Package logging configures the process-wide slog logger for wasm.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
)

// LevelSilent is above every real level, so nothing gets logged.
const LevelSilent = slog.Level(1000)

var validLogLevels = []string{"debug", "info", "warning", "error", "silent"}

// ParseLogLevel converts a string log level to slog.Level
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warning", "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "silent", "none":
		return LevelSilent
	default:
		return slog.LevelInfo
	}
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return slices.Clone(validLogLevels)
}

// IsValidLogLevel reports whether level is one of ValidLogLevels.
func IsValidLogLevel(level string) bool {
	return slices.Contains(validLogLevels, level)
}

// InitLogging installs a text handler on stderr as the default logger.
func InitLogging(logLevel string) {
	InitLoggingTo(os.Stderr, logLevel)
}

// InitLoggingTo installs a text handler writing to w as the default logger.
func InitLoggingTo(w io.Writer, logLevel string) *slog.Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: ParseLogLevel(logLevel),
	})

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// LogLevel is the --log-level flag. It defaults to "silent" so the CLI stays quiet
// unless the config file, the environment or the flag asks otherwise.
var LogLevel = &logLevelFlag{value: "silent"}

type logLevelFlag struct {
	value string
	set   bool
}

func (l *logLevelFlag) Set(value string) error {
	if !IsValidLogLevel(value) {
		return fmt.Errorf("invalid value '%s'. Allowed values: %s",
			value, strings.Join(validLogLevels, ", "))
	}
	l.value = value
	l.set = true
	return nil
}

func (l *logLevelFlag) String() string {
	return l.value
}

func (l *logLevelFlag) Type() string {
	return fmt.Sprintf("one of [%s]", strings.Join(validLogLevels, "|"))
}

// IsSet returns true if the flag was explicitly set via command line
func (l *logLevelFlag) IsSet() bool {
	return l.set
}

// Reset clears a value set on the command line.
func (l *logLevelFlag) Reset() {
	l.value = "silent"
	l.set = false
}
