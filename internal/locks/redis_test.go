package locks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRedisLocker(t *testing.T) (*RedisLocker, redismock.ClientMock) {
	t.Helper()
	db, mock := redismock.NewClientMock()
	l := NewRedisLocker(db, 30*time.Second, zap.NewNop())
	l.retry = time.Millisecond
	l.newToken = func() string { return "tok" }
	return l, mock
}

func TestRedisLocker_LockAndRelease(t *testing.T) {
	l, mock := newTestRedisLocker(t)

	mock.ExpectSetNX("campustrack:lock:post:1", "tok", 30*time.Second).SetVal(true)
	mock.ExpectEval(releaseScript, []string{"campustrack:lock:post:1"}, "tok").SetVal(int64(1))

	unlock, err := l.Lock(context.Background(), "post:1")
	require.NoError(t, err)
	unlock()

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisLocker_RetriesWhileHeld(t *testing.T) {
	l, mock := newTestRedisLocker(t)

	mock.ExpectSetNX("campustrack:lock:user:1", "tok", 30*time.Second).SetVal(false)
	mock.ExpectSetNX("campustrack:lock:user:1", "tok", 30*time.Second).SetVal(false)
	mock.ExpectSetNX("campustrack:lock:user:1", "tok", 30*time.Second).SetVal(true)
	mock.ExpectEval(releaseScript, []string{"campustrack:lock:user:1"}, "tok").SetVal(int64(1))

	unlock, err := l.Lock(context.Background(), "user:1")
	require.NoError(t, err)
	unlock()

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisLocker_Error(t *testing.T) {
	l, mock := newTestRedisLocker(t)

	mock.ExpectSetNX("campustrack:lock:post:1", "tok", 30*time.Second).SetErr(errors.New("connection refused"))

	_, err := l.Lock(context.Background(), "post:1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestRedisLocker_ContextDone(t *testing.T) {
	l, mock := newTestRedisLocker(t)
	l.retry = time.Hour

	mock.ExpectSetNX("campustrack:lock:post:1", "tok", 30*time.Second).SetVal(false)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := l.Lock(ctx, "post:1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLocker_Implementations(t *testing.T) {
	redisLocker, mock := newTestRedisLocker(t)
	mock.ExpectSetNX("campustrack:lock:user:1", "tok", 30*time.Second).SetVal(true)
	mock.ExpectEval(releaseScript, []string{"campustrack:lock:user:1"}, "tok").SetVal(int64(1))

	for name, l := range map[string]Locker{"memory": NewMemoryLocker(), "redis": redisLocker} {
		unlock, err := l.Lock(context.Background(), "user:1")
		require.NoError(t, err, name)
		require.NotNil(t, unlock, name)
		unlock()
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}
