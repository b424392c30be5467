package logger

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug": zapcore.DebugLevel,
		"warn":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
		"info":  zapcore.InfoLevel,
		"":      zapcore.InfoLevel,
		"loud":  zapcore.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in), in)
	}
}

func TestNewWithOutput_JSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "service.log")
	zl := NewWithOutput("warn", "json", path)
	log := NewZapAdapter(zl).WithFields(map[string]interface{}{"sessionId": "s-1"})

	log.Info("dropped below warn", nil)
	log.Warn("submit failed", map[string]interface{}{
		"sink":  "http",
		"error": errors.New("connection refused"),
	})
	require.NoError(t, zl.Sync())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var lines []map[string]interface{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(sc.Bytes(), &entry))
		lines = append(lines, entry)
	}
	require.Len(t, lines, 1)
	assert.Equal(t, "submit failed", lines[0]["msg"])
	assert.Equal(t, "s-1", lines[0]["sessionId"])
	assert.Equal(t, "http", lines[0]["sink"])
	assert.Equal(t, "connection refused", lines[0]["error"])
}

func TestNoOpLogger(t *testing.T) {
	log := NewNoOpLogger().WithError(errors.New("x")).With(map[string]interface{}{"k": 1})
	assert.NotPanics(t, func() {
		log.Debug("d", nil)
		log.Error("e", map[string]interface{}{"k": 2})
	})
}
