package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextHandler_AddsRequestScopedAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("production", &buf)

	ctx := WithRequestID(context.Background(), "req-1")
	ctx = WithUserID(ctx, "user-42")
	ctx = WithTraceID(ctx, "trace-9")
	logger.With("component", "test").InfoContext(ctx, "hello")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "hello", record["msg"])
	assert.Equal(t, "req-1", record["request_id"])
	assert.Equal(t, "user-42", record["user_id"])
	assert.Equal(t, "trace-9", record["trace_id"])
	assert.Equal(t, "test", record["component"])
}

func TestContextHandler_OmitsMissingValues(t *testing.T) {
	var buf bytes.Buffer
	NewLogger("production", &buf).InfoContext(context.Background(), "plain")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.NotContains(t, record, "request_id")
	assert.NotContains(t, record, "user_id")
}

func TestNewLogger_TextOutsideProduction(t *testing.T) {
	var buf bytes.Buffer
	NewLogger("development", &buf).Info("dev")
	assert.Contains(t, buf.String(), "msg=dev")
}

func TestTrackQuery_ObservesLatency(t *testing.T) {
	before := testutil.CollectAndCount(StoreQueryLatency)
	TrackQuery("test", "find", "widgets")()
	assert.Equal(t, before+1, testutil.CollectAndCount(StoreQueryLatency))
}
