package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUser_PendingReset(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	u := &User{}
	assert.False(t, u.HasPendingReset(now), "no reset requested")

	u.SetPendingReset("abc", now.Add(30*time.Minute))
	assert.True(t, u.HasPendingReset(now))
	assert.True(t, u.HasPendingReset(now.Add(29*time.Minute)))
	assert.False(t, u.HasPendingReset(now.Add(30*time.Minute)), "expiry instant is already invalid")

	u.ClearPendingReset()
	assert.Nil(t, u.ResetTokenHash)
	assert.Nil(t, u.ResetTokenExpiresAt)
	assert.False(t, u.HasPendingReset(now))
}
