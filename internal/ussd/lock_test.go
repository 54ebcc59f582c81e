package ussd

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyedLockerSerializesSameKey(t *testing.T) {
	locker := NewKeyedLocker()
	var active, maxActive int32
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := locker.Lock(context.Background(), "session-1")
			if err != nil {
				t.Errorf("lock: %v", err)
				return
			}
			n := atomic.AddInt32(&active, 1)
			for {
				prev := atomic.LoadInt32(&maxActive)
				if n <= prev || atomic.CompareAndSwapInt32(&maxActive, prev, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&active, -1)
			unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxActive)
	assert.Empty(t, locker.locks)
}

func TestKeyedLockerHonoursContext(t *testing.T) {
	locker := NewKeyedLocker()
	unlock, err := locker.Lock(context.Background(), "k")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(ctx, "k")
	assert.True(t, errors.Is(err, ErrLockNotAcquired))

	// Other keys are independent.
	other, err := locker.Lock(context.Background(), "other")
	require.NoError(t, err)
	other()

	unlock()
	unlock()
	again, err := locker.Lock(context.Background(), "k")
	require.NoError(t, err)
	again()
}

func TestRedisLocker(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	locker := NewRedisLocker(client, time.Second, 50*time.Millisecond)
	unlock, err := locker.Lock(context.Background(), "ATUid_1")
	require.NoError(t, err)
	assert.True(t, mr.Exists("ussd:lock:ATUid_1"))

	_, err = locker.Lock(context.Background(), "ATUid_1")
	assert.True(t, errors.Is(err, ErrLockNotAcquired))

	unlock()
	assert.False(t, mr.Exists("ussd:lock:ATUid_1"))

	unlock, err = locker.Lock(context.Background(), "ATUid_1")
	require.NoError(t, err)
	unlock()
}

func TestRedisLockerDoesNotReleaseForeignLock(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	locker := NewRedisLocker(client, time.Second, 20*time.Millisecond)
	unlock, err := locker.Lock(context.Background(), "s")
	require.NoError(t, err)

	// The lock expired and another replica took it over.
	require.NoError(t, mr.Set("ussd:lock:s", "someone-else"))
	unlock()

	got, err := mr.Get("ussd:lock:s")
	require.NoError(t, err)
	assert.Equal(t, "someone-else", got)
}
