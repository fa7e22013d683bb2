package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		wantLevel slog.Level
	}{
		{name: "debug level", level: "debug", wantLevel: slog.LevelDebug},
		{name: "info level", level: "info", wantLevel: slog.LevelInfo},
		{name: "warning level", level: "warning", wantLevel: slog.LevelWarn},
		{name: "warn alias", level: "warn", wantLevel: slog.LevelWarn},
		{name: "upper case", level: "ERROR", wantLevel: slog.LevelError},
		{name: "silent level", level: "silent", wantLevel: LevelSilent},
		{name: "invalid level defaults to info", level: "invalid", wantLevel: slog.LevelInfo},
		{name: "empty string defaults to info", level: "", wantLevel: slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantLevel, ParseLogLevel(tt.level))
		})
	}
}

func TestIsValidLogLevel(t *testing.T) {
	for _, level := range ValidLogLevels() {
		assert.True(t, IsValidLogLevel(level), level)
	}
	assert.False(t, IsValidLogLevel("verbose"))
	assert.False(t, IsValidLogLevel(""))
}

func TestInitLoggingTo(t *testing.T) {
	original := slog.Default()
	defer slog.SetDefault(original)

	var buf bytes.Buffer
	InitLoggingTo(&buf, "warning")

	slog.Info("hidden message")
	slog.Warn("shown message", "domain", "example.com")

	out := buf.String()
	assert.NotContains(t, out, "hidden message")
	assert.Contains(t, out, "shown message")
	assert.Contains(t, out, "domain=example.com")
}

func TestInitLoggingTo_Silent(t *testing.T) {
	original := slog.Default()
	defer slog.SetDefault(original)

	var buf bytes.Buffer
	InitLoggingTo(&buf, "silent")
	slog.Error("nothing should be written")

	assert.Empty(t, buf.String())
}

func TestLogLevelFlag_Set(t *testing.T) {
	tests := []struct {
		name      string
		value     string
		wantError bool
		wantValue string
		wantSet   bool
	}{
		{name: "valid debug level", value: "debug", wantValue: "debug", wantSet: true},
		{name: "valid warning level", value: "warning", wantValue: "warning", wantSet: true},
		{name: "valid silent level", value: "silent", wantValue: "silent", wantSet: true},
		{name: "invalid level", value: "invalid", wantError: true, wantValue: "info"},
		{name: "empty string", value: "", wantError: true, wantValue: "info"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag := &logLevelFlag{value: "info"}

			err := flag.Set(tt.value)
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantValue, flag.String())
			assert.Equal(t, tt.wantSet, flag.IsSet())
		})
	}
}

func TestLogLevelFlag_TypeAndReset(t *testing.T) {
	flag := &logLevelFlag{value: "info"}
	assert.Equal(t, "one of [debug|info|warning|error|silent]", flag.Type())

	assert.NoError(t, flag.Set("debug"))
	flag.Reset()
	assert.Equal(t, "silent", flag.String())
	assert.False(t, flag.IsSet())
}
