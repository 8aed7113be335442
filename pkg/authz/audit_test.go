package authz

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlogAuditLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	audit := NewSlogAuditLogger(logger)

	entry := AuditEntry{
		Timestamp:  time.Now().UTC(),
		RequestID:  "req-1",
		Principal:  "alice",
		Operation:  string(OpDatasetRead),
		Action:     string(ActionDatasetReadOwner),
		Tier:       string(TierOwner),
		Pid:        "pid-1",
		Decision:   "allow",
		Reason:     "access permitted",
		DurationUS: 42,
	}
	require.NoError(t, audit.LogDecision(context.Background(), entry))

	var logged map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logged))
	assert.Equal(t, "authorization_decision", logged["event"])
	assert.Equal(t, "alice", logged["principal"])
	assert.Equal(t, "allow", logged["decision"])
	assert.Equal(t, "INFO", logged["level"])
}

func TestSlogAuditLogger_DenialsAreWarnings(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	audit := NewSlogAuditLogger(slog.New(slog.NewJSONHandler(&buf, nil)))

	require.NoError(t, audit.LogDecision(context.Background(), AuditEntry{Decision: "deny"}))

	var logged map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logged))
	assert.Equal(t, "WARN", logged["level"])
}

func TestMultiAuditLogger(t *testing.T) {
	t.Parallel()

	first := &recordingAudit{}
	second := &recordingAudit{}
	failing := &failingAudit{err: errors.New("sink down")}

	multi := NewMultiAuditLogger(first, failing, second)
	err := multi.LogDecision(context.Background(), AuditEntry{Principal: "alice"})

	assert.EqualError(t, err, "sink down")
	assert.Len(t, first.entries, 1, "earlier sinks still receive the entry")
	assert.Len(t, second.entries, 1, "later sinks still receive the entry")
}

func TestNopAuditLogger(t *testing.T) {
	t.Parallel()
	assert.NoError(t, NopAuditLogger{}.LogDecision(context.Background(), AuditEntry{}))
}

type failingAudit struct {
	err error
}

func (f *failingAudit) LogDecision(ctx context.Context, entry AuditEntry) error {
	return f.err
}
