package debug

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigure(t *testing.T) {
	t.Cleanup(func() { Init(false) })

	var buf bytes.Buffer
	Configure(Options{Enabled: true, Level: slog.LevelInfo, Output: &buf})

	assert.True(t, Enabled())
	Debug("hidden")
	Info("shown", "script", "V1__init.sql")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "script=V1__init.sql")
}

func TestConfigure_Disabled(t *testing.T) {
	t.Cleanup(func() { Init(false) })

	var buf bytes.Buffer
	Configure(Options{Enabled: false, Output: &buf})

	assert.False(t, Enabled())
	Error("dropped")
	assert.Empty(t, buf.String())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelInfo, ParseLevel("INFO"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelDebug, ParseLevel("whatever"))
}
