package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestContextLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewTo(&buf, "info").With("request_id", "r1")

	ctx := IntoContext(context.Background(), l)
	FromContext(ctx).Info("order_created", "order_id", "o1")
	FromContext(ctx).Debug("dropped")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "order_created", rec["msg"])
	assert.Equal(t, "r1", rec["request_id"])
	assert.Equal(t, "o1", rec["order_id"])

	assert.Same(t, slog.Default(), FromContext(context.Background()))
}
