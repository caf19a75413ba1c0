package lock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sweepKey = "installation-proof:auto-approval"

func newTestLease(t *testing.T) (*RedisLease, redismock.ClientMock) {
	t.Helper()
	db, mock := redismock.NewClientMock()
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	l := NewRedisLease(db)
	l.newToken = func() string { return "token-1" }
	return l, mock
}

func TestAcquireAndRelease(t *testing.T) {
	l, mock := newTestLease(t)
	ctx := context.Background()

	mock.ExpectSetNX(sweepKey, "token-1", time.Minute).SetVal(true)
	mock.ExpectEval(releaseScript, []string{sweepKey}, "token-1").SetVal(int64(1))

	ok, err := l.Acquire(ctx, sweepKey, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, l.Release(ctx, sweepKey))
}

func TestAcquire_HeldElsewhere(t *testing.T) {
	l, mock := newTestLease(t)
	ctx := context.Background()

	mock.ExpectSetNX(sweepKey, "token-1", time.Minute).SetVal(false)

	ok, err := l.Acquire(ctx, sweepKey, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	// Nothing held, so nothing is sent to redis.
	require.NoError(t, l.Release(ctx, sweepKey))
}

func TestAcquire_RedisDown(t *testing.T) {
	l, mock := newTestLease(t)

	mock.ExpectSetNX(sweepKey, "token-1", time.Minute).SetErr(errors.New("dial tcp: connection refused"))

	ok, err := l.Acquire(context.Background(), sweepKey, time.Minute)

	assert.False(t, ok)
	assert.ErrorContains(t, err, "redis setnx")
}

func TestRelease_ErrorIsReported(t *testing.T) {
	l, mock := newTestLease(t)
	ctx := context.Background()

	mock.ExpectSetNX(sweepKey, "token-1", time.Minute).SetVal(true)
	mock.ExpectEval(releaseScript, []string{sweepKey}, "token-1").SetErr(errors.New("READONLY"))

	_, err := l.Acquire(ctx, sweepKey, time.Minute)
	require.NoError(t, err)

	err = l.Release(ctx, sweepKey)
	assert.ErrorContains(t, err, "redis release")

	// The token is dropped either way; a second release is a no-op.
	assert.NoError(t, l.Release(ctx, sweepKey))
}
