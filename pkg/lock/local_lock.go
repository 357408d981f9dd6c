package lock

import (
	"context"
	"sync"
)

// LocalLock is the in-process fallback used when no Redis URL is configured.
// It protects a single instance; multi-instance deployments need RedisLock.
type LocalLock struct {
	mu   sync.Mutex
	held map[string]bool
}

func NewLocalLock() *LocalLock {
	return &LocalLock{
		held: make(map[string]bool),
	}
}

func (l *LocalLock) Acquire(ctx context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.held[key] {
		return false, nil
	}
	l.held[key] = true
	return true, nil
}

func (l *LocalLock) Release(ctx context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.held, key)
	return nil
}

func (l *LocalLock) Held(ctx context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.held[key], nil
}
