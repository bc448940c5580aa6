package security

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObserved() (*SecurityLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return NewSecurityLogger(zap.New(core), "hirematrix-test", "test"), logs
}

func TestLogLoginFailed_MasksEmail(t *testing.T) {
	sl, logs := newObserved()

	sl.LogLoginFailed(context.Background(), "jane@example.com", "10.0.0.1", "curl", "req-1", "invalid_password")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "login_failed", entry.Message)
	assert.Equal(t, zapcore.WarnLevel, entry.Level)

	fields := entry.ContextMap()
	assert.Equal(t, "j***@example.com", fields["subject_value"])
	assert.Equal(t, "WARN", fields["severity"])
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Contains(t, fields["details"], "invalid_password")
}

func TestLogCredentialsIssued_NeverCarriesPassword(t *testing.T) {
	sl, logs := newObserved()

	sl.LogCredentialsIssued(context.Background(), "admin-1", "tenant-1", "jane.doe.abc123@candidate.hirematrix.local", "abc123", true)

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "j***@candidate.hirematrix.local", fields["subject_value"])
	assert.Equal(t, "tenant-1", fields["tenant_id"])
	assert.NotContains(t, fields["details"], "password\":")
}

func TestLogAnswerRejected_HashesIdempotencyKey(t *testing.T) {
	sl, logs := newObserved()

	sl.LogAnswerRejected(context.Background(), "cand-1", "tenant-1", "iv-1", "interview_completed", "retry-key-42")
	sl.LogAnswerRejected(context.Background(), "cand-1", "tenant-1", "iv-1", "stale_question", "")

	require.Equal(t, 2, logs.Len())
	withKey := logs.All()[0].ContextMap()
	assert.Equal(t, "iv-1", withKey["subject_value"])
	assert.Contains(t, withKey["details"], HashValue("retry-key-42"))
	assert.NotContains(t, withKey["details"], "retry-key-42")

	assert.NotContains(t, logs.All()[1].ContextMap()["details"], "idempotency_key_hash")
}

func TestSeverityLevels(t *testing.T) {
	sl, logs := newObserved()

	sl.LogLoginSuccess(context.Background(), "u1", "t1", "", "", "")
	sl.LogAccessDenied(context.Background(), EventForbiddenAccess, "u1", "", "", "/v1/users", "role")

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, zapcore.InfoLevel, logs.All()[0].Level)
	assert.Equal(t, zapcore.ErrorLevel, logs.All()[1].Level)
	assert.True(t, IsHighOrAbove(EventForbiddenAccess))
	assert.Equal(t, SeverityMEDIUM, GetSeverity(EventType("unknown")))
}

func TestMaskEmail(t *testing.T) {
	assert.Equal(t, "***", MaskEmail("ab"))
	assert.Equal(t, "***@x.io", MaskEmail("a@x.io"))
	assert.Equal(t, "b***@x.io", MaskEmail("bob@x.io"))
	assert.Len(t, HashValue("anything"), 16)
}
