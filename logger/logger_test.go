package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ProductionIsJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Environment: "production"})
	log.Info("post created", "post_id", 7)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "post created", line["msg"])
	assert.Equal(t, "INFO", line["level"])
	assert.EqualValues(t, 7, line["post_id"])
}

func TestNew_DevelopmentIsPretty(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Environment: "development"})
	log.Warn("slow query", "op", "list posts", "n", 3)

	out := buf.String()
	assert.Contains(t, out, "WRN")
	assert.Contains(t, out, "slow query")
	assert.Contains(t, out, `op="list posts"`)
	assert.Contains(t, out, "n=3")
	assert.True(t, strings.HasSuffix(out, "\n"))
}

func TestNew_LevelFilters(t *testing.T) {
	for _, format := range []string{FormatJSON, FormatPretty} {
		var buf bytes.Buffer
		log := New(Config{Writer: &buf, Format: format, Level: slog.LevelWarn})
		log.Info("hidden")
		log.Debug("hidden")
		assert.Empty(t, buf.String(), format)
		log.Error("shown")
		assert.Contains(t, buf.String(), "shown", format)
	}
}

func TestPrettyHandler_AttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewPrettyHandler(&buf, nil)).
		With("component", "store").
		WithGroup("req")
	log.Info("done", "id", 1, slog.Group("page", "n", 2))

	out := buf.String()
	assert.Contains(t, out, "component=store")
	assert.Contains(t, out, "req.id=1")
	assert.Contains(t, out, "req.page.n=2")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{" error ", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	got, err := ParseLevel("verbose")
	assert.Error(t, err)
	assert.Equal(t, slog.LevelInfo, got)
}
