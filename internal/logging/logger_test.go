package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrea/kipoiutils/internal/config"
)

func TestLoggerWritesFile(t *testing.T) {
	projectDir := t.TempDir()
	l, err := New(projectDir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(projectDir, config.Dir, "logs", "kipoiutils.log"), l.Path())

	l.Printf("loaded %s\n", "model.Scale")
	l.Slog("debug", "text").Debug("override", "key", "factor")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(l.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "] loaded model.Scale\n")
	assert.Contains(t, string(data), "msg=override key=factor")
}

func TestNilLoggerIsNoop(t *testing.T) {
	var l *Logger
	l.Printf("ignored")
	n, err := l.Write([]byte("ignored"))
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	assert.NoError(t, l.Close())
	assert.Equal(t, "", l.Path())
}

func TestNewSlog(t *testing.T) {
	var buf bytes.Buffer
	log := NewSlog("warn", "json", &buf)
	log.Info("hidden")
	log.Warn("shown", "n", 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "shown", rec["msg"])
	assert.Equal(t, "WARN", rec["level"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}
