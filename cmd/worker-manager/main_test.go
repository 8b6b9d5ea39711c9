package main

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRetryWithBackoff_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := retryWithBackoff(context.Background(), func() error {
		calls++
		if calls < 3 {
			return stderrors.New("connection refused")
		}
		return nil
	}, 5, time.Millisecond, zap.NewNop(), "PostgreSQL connection")

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryWithBackoff_ExhaustsAttempts(t *testing.T) {
	calls := 0
	err := retryWithBackoff(context.Background(), func() error {
		calls++
		return stderrors.New("connection refused")
	}, 3, time.Millisecond, zap.NewNop(), "Redis connection")

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Contains(t, err.Error(), "Redis connection failed after 3 attempts")
}

func TestRetryWithBackoff_StopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	done := make(chan error, 1)
	go func() {
		done <- retryWithBackoff(ctx, func() error {
			calls++
			return stderrors.New("unavailable")
		}, 15, time.Hour, zap.NewNop(), "Elasticsearch connection")
	}()
	cancel()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	case <-time.After(5 * time.Second):
		t.Fatal("retry kept sleeping after cancellation")
	}
}

func TestNextDelay_IsCapped(t *testing.T) {
	assert.Equal(t, 4*time.Second, nextDelay(2*time.Second))

	d := 2 * time.Second
	for i := 0; i < 20; i++ {
		d = nextDelay(d)
	}
	assert.Equal(t, maxRetryDelay, d)
}
