package ratelimiter

import (
	"context"
	"errors"
	"testing"
	"time"

	"anoa.com/kawansosial/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilClientDisablesLimiting(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	allowed, err := CheckAndSetRateLimit(ctx, nil, userID, "comment", 10*time.Second)
	require.NoError(t, err)
	assert.True(t, allowed)

	ttl, err := GetRateLimitTTL(ctx, nil, userID, "comment")
	require.NoError(t, err)
	assert.Zero(t, ttl)

	assert.NoError(t, ClearRateLimit(ctx, nil, userID, "comment"))
}

func TestRateLimitErrorUnwrapsToSentinel(t *testing.T) {
	err := &RateLimitError{Message: "slow down", RetryAfter: 5 * time.Second}

	assert.Equal(t, "slow down", err.Error())
	assert.True(t, errors.Is(err, apperror.ErrRateLimitExceeded))
}
