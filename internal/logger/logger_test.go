package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesJSONWithComponent(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, "info")
	require.NoError(t, err)

	l.Component("dapp").Error().Err(errors.New("boom")).Msg("read failed")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "error", rec["level"])
	assert.Equal(t, "dapp", rec["component"])
	assert.Equal(t, "boom", rec["error"])
	assert.Equal(t, "read failed", rec["message"])
	assert.Contains(t, rec, "time")
}

func TestNewFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, "warn")
	require.NoError(t, err)

	l.Info().Msg("hidden")
	assert.Zero(t, buf.Len())

	l.Warn().Msg("shown")
	assert.NotZero(t, buf.Len())
}

func TestNewEmptyLevelMeansInfo(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, "")
	require.NoError(t, err)

	l.Debug().Msg("hidden")
	assert.Zero(t, buf.Len())
	l.Info().Msg("shown")
	assert.NotZero(t, buf.Len())
}

func TestNewRejectsBadLevel(t *testing.T) {
	_, err := New(&bytes.Buffer{}, "shouty")
	assert.Error(t, err)
}

func TestOpenFileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "w3mood.log")
	l, closeFn, err := Open(Options{File: path, Level: "debug"})
	require.NoError(t, err)

	l.Debug().Str("chain", "0xaa36a7").Msg("checked")
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"chain":"0xaa36a7"`)
}

func TestOpenNoSinks(t *testing.T) {
	l, closeFn, err := Open(Options{Level: "info"})
	require.NoError(t, err)
	l.Info().Msg("dropped")
	assert.NoError(t, closeFn())
}

func TestNop(t *testing.T) {
	assert.NotPanics(t, func() { Nop().Error().Msg("nothing") })
}
