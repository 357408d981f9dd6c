package lock

import "context"

// IngestLock serializes ingestion runs per corpus. Acquire returns false
// without blocking when another holder owns the key; callers turn that into
// a conflict error rather than waiting.
type IngestLock interface {
	// Acquire takes the lock for key. The bool reports whether we got it;
	// an error means the lock backend itself failed.
	Acquire(ctx context.Context, key string) (bool, error)

	// Release frees the key. Releasing a key we do not hold is a no-op.
	Release(ctx context.Context, key string) error

	// Held reports whether the key is currently locked, by anyone.
	Held(ctx context.Context, key string) (bool, error)
}
