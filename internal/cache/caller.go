package cache

import (
	"context"

	"github.com/siftlab/sift/internal/providers"
)

// cachingCaller serves repeated calls from the cache before reaching the
// wrapped backend.
type cachingCaller struct {
	inner providers.Caller
	model string
	cache *Cache
}

// WrapCaller decorates inner with read-through caching. A disabled cache
// returns inner unchanged.
func WrapCaller(inner providers.Caller, model string, c *Cache) providers.Caller {
	if c == nil || !c.Enabled() {
		return inner
	}
	return &cachingCaller{inner: inner, model: model, cache: c}
}

func (cc *cachingCaller) Name() string { return cc.inner.Name() }

func (cc *cachingCaller) Call(ctx context.Context, req providers.CallRequest) (providers.CallResponse, error) {
	key := Key(cc.inner.Name(), cc.model, req.System, req.User)
	if hit, ok := cc.cache.Get(key); ok {
		return providers.CallResponse{Content: hit}, nil
	}
	resp, err := cc.inner.Call(ctx, req)
	if err != nil {
		return providers.CallResponse{}, err
	}
	// Best effort: a failed write should not fail the review.
	_ = cc.cache.Put(key, resp.Content)
	return resp, nil
}
