package logger

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger_WritesRotatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "devboard.log")
	log, err := NewLogger(LoggingConfig{Level: "debug", Format: "json", OutputPath: path, MaxSizeMB: 1})
	require.NoError(t, err)

	log.Info("board loaded", zap.Int64("board_id", 3))
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `"board_id":3`), "log line: %s", data)
}

func TestWithContextAddsFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	log := FromZap(zap.New(core))

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-1")
	ctx = ContextWithBoard(ctx, 9)
	log.WithContext(ctx).Info("hello")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, int64(9), fields["board_id"])
}

func TestWithFieldsDoesNotShareBacking(t *testing.T) {
	base := NewNop().WithFields(zap.String("component", "a"))
	left := base.WithFields(zap.String("x", "1"))
	right := base.WithFields(zap.String("y", "2"))
	assert.Len(t, left.fields, 2)
	assert.Len(t, right.fields, 2)
	assert.Equal(t, "x", left.fields[1].Key)
	assert.Equal(t, "y", right.fields[1].Key)
}

func TestNewLoggerRejectsBadConfig(t *testing.T) {
	_, err := NewLogger(LoggingConfig{Level: "loud"})
	assert.Error(t, err)
	_, err = NewLogger(LoggingConfig{Level: "info", Format: "xml"})
	assert.Error(t, err)
}

func TestDefaultCanBeReplaced(t *testing.T) {
	before := Default()
	require.NotNil(t, before)
	t.Cleanup(func() { SetDefault(before) })

	nop := NewNop()
	SetDefault(nop)
	assert.Same(t, nop, Default())
}
