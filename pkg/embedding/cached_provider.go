package embedding

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// CachedProvider memoizes embeddings by exact text. The search path wraps
// its provider with this so repeated queries skip the backend; ingestion
// keeps the raw provider since corpus texts do not repeat.
//
// Callers must canonicalize text before it gets here; the cache is a plain
// string-keyed map and "Oak  aging" and "oak aging" are different entries.
type CachedProvider struct {
	inner EmbeddingProvider
	cache *gocache.Cache
}

func NewCachedProvider(inner EmbeddingProvider, ttl time.Duration) *CachedProvider {
	return &CachedProvider{
		inner: inner,
		cache: gocache.New(ttl, 2*ttl),
	}
}

func (p *CachedProvider) ModelName() string {
	return p.inner.ModelName()
}

func (p *CachedProvider) Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error) {
	key := p.inner.ModelName() + "\x00" + taskType + "\x00" + text
	if cached, ok := p.cache.Get(key); ok {
		return cached.(*EmbeddingResponse), nil
	}

	resp, err := p.inner.Generate(ctx, text, taskType)
	if err != nil {
		return nil, err
	}

	p.cache.Set(key, resp, gocache.DefaultExpiration)
	return resp, nil
}
