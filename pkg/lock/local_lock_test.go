package lock

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocalLockAcquireRelease(t *testing.T) {
	l := NewLocalLock()
	ctx := context.Background()

	ok, err := l.Acquire(ctx, "ingest:kaggle_wine_reviews")
	assert.NoError(t, err)
	assert.True(t, ok)

	// Second acquire on the same key must fail without blocking.
	ok, err = l.Acquire(ctx, "ingest:kaggle_wine_reviews")
	assert.NoError(t, err)
	assert.False(t, ok)

	// A different key is independent.
	ok, err = l.Acquire(ctx, "ingest:other_corpus")
	assert.NoError(t, err)
	assert.True(t, ok)

	assert.NoError(t, l.Release(ctx, "ingest:kaggle_wine_reviews"))

	ok, err = l.Acquire(ctx, "ingest:kaggle_wine_reviews")
	assert.NoError(t, err)
	assert.True(t, ok)
}

func TestLocalLockReleaseUnheldIsNoop(t *testing.T) {
	l := NewLocalLock()
	assert.NoError(t, l.Release(context.Background(), "never-acquired"))
}

func TestLocalLockHeld(t *testing.T) {
	l := NewLocalLock()
	ctx := context.Background()

	held, err := l.Held(ctx, "ingest:kaggle_wine_reviews")
	assert.NoError(t, err)
	assert.False(t, held)

	_, err = l.Acquire(ctx, "ingest:kaggle_wine_reviews")
	assert.NoError(t, err)

	held, err = l.Held(ctx, "ingest:kaggle_wine_reviews")
	assert.NoError(t, err)
	assert.True(t, held)

	assert.NoError(t, l.Release(ctx, "ingest:kaggle_wine_reviews"))

	held, err = l.Held(ctx, "ingest:kaggle_wine_reviews")
	assert.NoError(t, err)
	assert.False(t, held)
}

func TestLocalLockSingleWinnerUnderContention(t *testing.T) {
	l := NewLocalLock()
	ctx := context.Background()

	var wg sync.WaitGroup
	wins := make(chan struct{}, 32)

	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := l.Acquire(ctx, "ingest:kaggle_wine_reviews")
			if err != nil {
				t.Error(err)
				return
			}
			if ok {
				wins <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(wins)

	count := 0
	for range wins {
		count++
	}
	assert.Equal(t, 1, count)
}
