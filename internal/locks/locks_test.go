package locks

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestKeys(t *testing.T) {
	id := primitive.NewObjectID()
	assert.Equal(t, "post:"+id.Hex(), PostKey(id))
	assert.Equal(t, "user:"+id.Hex(), UserKey(id))
	assert.Equal(t, "user-delete:"+id.Hex(), UserDeletionKey(id))
	assert.NotEqual(t, UserKey(id), UserDeletionKey(id))
}

func TestMemoryLocker_MutualExclusion(t *testing.T) {
	l := NewMemoryLocker()
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  int
		maxSeen int
		counter int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.Lock(ctx, "post:1")
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			inside++
			if inside > maxSeen {
				maxSeen = inside
			}
			mu.Unlock()

			counter++

			mu.Lock()
			inside--
			mu.Unlock()
			unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
	assert.Equal(t, 50, counter)
	assert.Equal(t, 0, l.held())
}

func TestMemoryLocker_IndependentKeys(t *testing.T) {
	l := NewMemoryLocker()
	ctx := context.Background()

	unlockA, err := l.Lock(ctx, "user:a")
	require.NoError(t, err)
	defer unlockA()

	ctx2, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	unlockB, err := l.Lock(ctx2, "user:b")
	require.NoError(t, err)
	unlockB()
}

func TestMemoryLocker_ContextCancel(t *testing.T) {
	l := NewMemoryLocker()

	unlock, err := l.Lock(context.Background(), "post:1")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, "post:1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()
	unlock() // second call is a no-op
	assert.Equal(t, 0, l.held())

	unlock, err = l.Lock(context.Background(), "post:1")
	require.NoError(t, err)
	unlock()
}
