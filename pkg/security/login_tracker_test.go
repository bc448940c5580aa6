package security

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginTracker_DisabledWithoutRedis(t *testing.T) {
	lt := NewLoginTracker(nil, LoginTrackerConfig{})
	ctx := context.Background()

	blocked, err := lt.IsBlocked(ctx, "a@b.co")
	require.NoError(t, err)
	assert.False(t, blocked)

	created, err := lt.RecordFailure(ctx, "a@b.co", "10.0.0.1", "req-1")
	require.NoError(t, err)
	assert.False(t, created)

	assert.NoError(t, lt.Clear(ctx, "a@b.co"))

	var nilTracker *LoginTracker
	blocked, err = nilTracker.IsBlocked(ctx, "a@b.co")
	require.NoError(t, err)
	assert.False(t, blocked)
}

func TestNewLoginTracker_Defaults(t *testing.T) {
	lt := NewLoginTracker(nil, LoginTrackerConfig{MaxAttempts: 3})
	assert.Equal(t, 3, lt.config.MaxAttempts)
	assert.Equal(t, 15*time.Minute, lt.config.AttemptWindow)
	assert.Equal(t, 15*time.Minute, lt.config.BlockDuration)
}
