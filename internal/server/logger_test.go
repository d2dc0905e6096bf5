package server

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLoggerFormat(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	l := NewLogger(&buf, LevelInfo)

	l.Info("client connected", Field{"conn_id", "abc"}, Field{"bytes", 42})

	line := buf.String()
	assert.Contains(t, line, "INFO: client connected | conn_id=\"abc\" bytes=42")
	assert.True(t, strings.HasPrefix(line, "["))
	assert.True(t, strings.HasSuffix(line, "\n"))
}

func TestDefaultLoggerLevels(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	l := NewLogger(&buf, LevelWarn)

	l.Debug("debug")
	l.Info("info")
	assert.Empty(t, buf.String())

	l.Warn("warn")
	l.Error("error")
	assert.Contains(t, buf.String(), "WARN: warn")
	assert.Contains(t, buf.String(), "ERROR: error")
}

func TestDefaultLoggerTruncatesLongValues(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	l := NewLogger(&buf, LevelDebug)

	l.Debug("bad request", Field{"path", strings.Repeat("a", 500)})
	assert.Contains(t, buf.String(), "...[truncated]")
	assert.Less(t, buf.Len(), 300)
}

func TestDefaultLoggerQuotesControlCharacters(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	l := NewLogger(&buf, LevelDebug)

	l.Warn("bad request", Field{"path", "a\r\nforged line"})
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
}

func TestParseLevel(t *testing.T) {
	for s, want := range map[string]Level{
		"debug": LevelDebug,
		"INFO":  LevelInfo,
		"Warn":  LevelWarn,
		"error": LevelError,
	} {
		got, err := ParseLevel(s)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}
