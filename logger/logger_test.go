package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger(t *testing.T, level string) (*Logger, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	cfg := &Config{Level: level, Format: "json", Writer: buf}
	return New(cfg, "test-svc"), buf
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestNew_WritesJSONWithService(t *testing.T) {
	l, buf := newBufferLogger(t, "info")
	l.Info("hello", Fields("k", "v"))

	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "hello", lines[0]["message"])
	assert.Equal(t, "test-svc", lines[0]["service"])
	assert.Equal(t, "v", lines[0]["k"])
	assert.Equal(t, "info", lines[0]["level"])
}

func TestNew_LevelFiltersBelowThreshold(t *testing.T) {
	l, buf := newBufferLogger(t, "warn")
	l.Debug("dropped")
	l.Info("dropped")
	l.Warn("kept")
	l.Error("kept too")

	lines := decodeLines(t, buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "kept", lines[0]["message"])
	assert.Equal(t, "error", lines[1]["level"])
}

func TestNew_InvalidLevelFallsBackToInfo(t *testing.T) {
	l, buf := newBufferLogger(t, "loud")
	l.Debug("dropped")
	l.Info("kept")

	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "kept", lines[0]["message"])
}

func TestNewDefault(t *testing.T) {
	l := NewDefault("svc")
	require.NotNil(t, l)
	assert.Equal(t, "svc", l.Service())
}

func TestNewFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")

	l := NewFromEnv("env-svc")
	require.NotNil(t, l)
	assert.Equal(t, "env-svc", l.Service())
}

func TestWithComponent_TagsEntries(t *testing.T) {
	l, buf := newBufferLogger(t, "info")
	cl := l.WithComponent("transport")
	cl.Info("sent")

	assert.Equal(t, "test-svc", cl.Service())
	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "transport", lines[0][FieldComponent])
}

func TestWithFieldsAndError(t *testing.T) {
	l, buf := newBufferLogger(t, "info")
	l.WithFields(Fields(FieldMethod, "GET")).WithError(errors.New("boom")).Warn("failed")

	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "GET", lines[0][FieldMethod])
	assert.Equal(t, "boom", lines[0][FieldError])
}

func TestNop_DiscardsOutput(t *testing.T) {
	assert.NotPanics(t, func() {
		Nop().WithComponent("x").Error("nothing")
	})
}

func TestConsoleFormat_WritesReadableLine(t *testing.T) {
	buf := &bytes.Buffer{}
	l := New(&Config{Level: "info", Format: "console", NoColor: true, Writer: buf}, "svc")
	l.Info("ready", Fields("port", 8080))

	out := buf.String()
	assert.Contains(t, out, "[INF]")
	assert.Contains(t, out, "ready")
	assert.Contains(t, out, "port:")
}

func TestConfigApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()

	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "stderr", cfg.Output)
	assert.True(t, cfg.Timestamp)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Level: "info", Format: "json"}, false},
		{"console", Config{Level: "debug", Format: "console"}, false},
		{"bad level", Config{Level: "loud", Format: "json"}, true},
		{"bad format", Config{Level: "info", Format: "xml"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFields(t *testing.T) {
	m := Fields("a", 1, "b", "two", 3, "skipped", "dangling")
	assert.Equal(t, map[string]interface{}{"a": 1, "b": "two"}, m)
}

func TestErrorAndDurationFields(t *testing.T) {
	ef := ErrorFields("refresh", errors.New("denied"))
	assert.Equal(t, "refresh", ef[FieldOperation])
	assert.Equal(t, "denied", ef[FieldError])

	df := DurationFields("request", 1500*time.Millisecond)
	assert.Equal(t, int64(1500), df[FieldDuration])

	merged := MergeWithError(nil, errors.New("x"))
	assert.Equal(t, "x", merged[FieldError])
}

func TestRegistry_GetRegisteredAndFallback(t *testing.T) {
	l, buf := newBufferLogger(t, "info")
	Register("session-test", l)
	t.Cleanup(func() { Unregister("session-test") })

	Get("session-test").Info("via registry")
	lines := decodeLines(t, buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "via registry", lines[0]["message"])

	assert.NotNil(t, Get("unregistered-component"))
}

func TestGlobalLogger(t *testing.T) {
	prev := GetGlobalLogger()
	t.Cleanup(func() { SetGlobalLogger(prev) })

	l, buf := newBufferLogger(t, "info")
	SetGlobalLogger(l)
	Info("global", Fields("x", true))
	WithComponent("auth").Warn("scoped")

	lines := decodeLines(t, buf)
	require.Len(t, lines, 2)
	assert.Equal(t, true, lines[0]["x"])
	assert.Equal(t, "auth", lines[1][FieldComponent])
}
