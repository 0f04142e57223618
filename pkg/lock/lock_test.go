package lock

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/danjacques/gofslock/fslock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xsymphony/blogpub/pkg/errors"
)

func TestWithLockRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "publish.lock")

	ran := false
	err := WithLock(context.Background(), path, func(ctx context.Context) error {
		ran = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)
}

func TestWithLockPropagatesError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "publish.lock")

	boom := errors.New("pipeline failed")
	err := WithLock(context.Background(), path, func(ctx context.Context) error {
		return boom
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
}

func TestWithLockBusy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "publish.lock")

	handle, err := fslock.Lock(path)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, handle.Unlock())
	}()

	err = WithLock(context.Background(), path, func(ctx context.Context) error {
		t.Fatal("must not run while the lock is held")
		return nil
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBusy))
}

func TestWithLockWaits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "publish.lock")

	handle, err := fslock.Lock(path)
	require.NoError(t, err)

	go func() {
		time.Sleep(400 * time.Millisecond)
		_ = handle.Unlock()
	}()

	ran := false
	err = WithLock(context.Background(), path, func(ctx context.Context) error {
		ran = true
		return nil
	}, Wait(10*time.Second))
	require.NoError(t, err)
	assert.True(t, ran)
}

func TestWithLockContextCanceled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "publish.lock")

	handle, err := fslock.Lock(path)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, handle.Unlock())
	}()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	err = WithLock(ctx, path, func(ctx context.Context) error {
		return nil
	}, Wait(time.Minute))
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestPathFor(t *testing.T) {
	a, err := PathFor("/srv/blog")
	require.NoError(t, err)
	b, err := PathFor("/srv/blog")
	require.NoError(t, err)
	c, err := PathFor("/srv/other")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, filepath.Join("/srv/blog", ".blogpub", "publish.lock"), a)
	assert.Equal(t, ".lock", filepath.Ext(a))
}
