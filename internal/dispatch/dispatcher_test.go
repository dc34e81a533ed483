package dispatch

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relohub/relohub/internal/logger"
)

func TestMemoryLockerDuplicate(t *testing.T) {
	locker := NewMemoryLocker()
	ctx := context.Background()

	ok, err := locker.TryAcquire(ctx, "cred-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = locker.TryAcquire(ctx, "cred-1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "second acquire of a held key must fail")

	ok, err = locker.TryAcquire(ctx, "cred-2", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "different key is independent")

	require.NoError(t, locker.Release(ctx, "cred-1"))
	ok, err = locker.TryAcquire(ctx, "cred-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "released key is acquirable again")
}

func TestMemoryLockerTTLExpiry(t *testing.T) {
	locker := NewMemoryLocker()
	now := time.Now()
	locker.now = func() time.Time { return now }
	ctx := context.Background()

	ok, err := locker.TryAcquire(ctx, "cred-1", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	// A crashed holder never releases; the TTL frees the key.
	now = now.Add(2 * time.Minute)
	ok, err = locker.TryAcquire(ctx, "cred-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "expired key must be acquirable")
}

func TestDispatcherRejectsDuplicateKey(t *testing.T) {
	d := NewDispatcher(NewMemoryLocker(), logger.New(nil))
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})

	unitID, err := d.Dispatch(ctx, "cred-1", time.Minute, func(ctx context.Context) error {
		close(started)
		<-release
		return nil
	})
	require.NoError(t, err)
	assert.NotEmpty(t, unitID)

	<-started
	_, err = d.Dispatch(ctx, "cred-1", time.Minute, func(ctx context.Context) error { return nil })
	assert.True(t, errors.Is(err, ErrDuplicateUnit))

	close(release)
	d.Wait()

	// The key frees up once the first unit completes.
	_, err = d.Dispatch(ctx, "cred-1", time.Minute, func(ctx context.Context) error { return nil })
	require.NoError(t, err)
	d.Wait()
}

func TestDispatcherReleasesOnFailure(t *testing.T) {
	d := NewDispatcher(NewMemoryLocker(), logger.New(nil))
	ctx := context.Background()

	_, err := d.Dispatch(ctx, "cred-1", time.Minute, func(ctx context.Context) error {
		return errors.New("boom")
	})
	require.NoError(t, err, "dispatch accepts the unit; failure surfaces in logs only")
	d.Wait()

	var ran atomic.Bool
	_, err = d.Dispatch(ctx, "cred-1", time.Minute, func(ctx context.Context) error {
		ran.Store(true)
		return nil
	})
	require.NoError(t, err, "key must be released after a failed unit")
	d.Wait()
	assert.True(t, ran.Load())
}
