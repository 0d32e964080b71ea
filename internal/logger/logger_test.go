package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNew_CustomWriter(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Level:  slog.LevelInfo,
		Format: "json",
		Writer: &buf,
	})

	logger.Info("cycle complete")

	assert.Contains(t, buf.String(), "cycle complete")
	assert.Contains(t, buf.String(), `"level":"INFO"`)
}

func TestNew_FormatAutoDetection(t *testing.T) {
	tests := []struct {
		name        string
		environment string
		wantJSON    bool
	}{
		{name: "production uses json", environment: "production", wantJSON: true},
		{name: "development uses pretty", environment: "development", wantJSON: false},
		{name: "staging uses pretty", environment: "staging", wantJSON: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := New(Config{
				Level:       slog.LevelInfo,
				Environment: tt.environment,
				Writer:      &buf,
			})
			logger.Info("test")

			if tt.wantJSON {
				assert.Contains(t, buf.String(), `"msg":"test"`)
			} else {
				assert.Contains(t, buf.String(), "INF")
				assert.NotContains(t, buf.String(), `"msg"`)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"WARNING", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.input))
		})
	}
}

func TestPrettyHandler_Enabled(t *testing.T) {
	handler := NewPrettyHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelInfo})

	assert.False(t, handler.Enabled(context.Background(), slog.LevelDebug))
	assert.True(t, handler.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, handler.Enabled(context.Background(), slog.LevelError))
}

func TestPrettyHandler_Handle(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewPrettyHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	logger.Info("refresh cycle finished", "rows", 42, "player", "Gunter")

	output := buf.String()
	assert.Contains(t, output, "refresh cycle finished")
	assert.Contains(t, output, "rows=42")
	assert.Contains(t, output, "player=Gunter")
	assert.Contains(t, output, "INF")
}

func TestPrettyHandler_QuotesValuesWithSpaces(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewPrettyHandler(&buf, nil))

	logger.Info("fetch", "table", "Individual Leaderboard")

	assert.Contains(t, buf.String(), `table="Individual Leaderboard"`)
}

func TestPrettyHandler_WithGroupPrefixesKeys(t *testing.T) {
	var buf bytes.Buffer
	handler := NewPrettyHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})

	assert.Equal(t, handler, handler.WithGroup(""))

	logger := slog.New(handler.WithGroup("stats"))
	logger.Info("event broadcast", "delivered", 3)

	assert.Contains(t, buf.String(), "stats.delivered=3")
}

func TestPrettyHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	handler := NewPrettyHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})

	logger := slog.New(handler.WithAttrs([]slog.Attr{slog.String("component", "refresh")}))
	logger.Info("tick")

	assert.Contains(t, buf.String(), "component=refresh")
}

func TestFormatLevel(t *testing.T) {
	tests := []struct {
		level     slog.Level
		wantStr   string
		wantColor string
	}{
		{slog.LevelDebug, "DBG", colorMagenta},
		{slog.LevelInfo, "INF", colorGreen},
		{slog.LevelWarn, "WRN", colorYellow},
		{slog.LevelError, "ERR", colorRed},
	}

	for _, tt := range tests {
		t.Run(tt.wantStr, func(t *testing.T) {
			str, color := formatLevel(tt.level)
			assert.Equal(t, tt.wantStr, str)
			assert.Equal(t, tt.wantColor, color)
		})
	}
}

func TestFormatValue(t *testing.T) {
	now := time.Now()

	assert.Equal(t, now.Format(time.RFC3339), formatValue(slog.TimeValue(now)))
	assert.Equal(t, "30s", formatValue(slog.DurationValue(30*time.Second)))
	assert.Equal(t, "42", formatValue(slog.IntValue(42)))
}

func TestLogger_Helpers(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Format: "json", Writer: &buf})

	logger.WithError(errors.New("sheet offline")).WithField("cycle_id", "cyc-1").Info("cycle failed")
	logger.Component("sheets").Info("fetched")

	output := buf.String()
	assert.Contains(t, output, `"error":"sheet offline"`)
	assert.Contains(t, output, `"cycle_id":"cyc-1"`)
	assert.Contains(t, output, `"component":"sheets"`)
}
