package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"
)

// CachingClient wraps a Client with a per-requestId response cache, the
// concrete form of spec.md §6's enableCaching option: identical prompt
// requests that carry the same requestId hit the cache instead of calling
// the provider again, and the façade evicts an entire requestId's entries
// when that request ultimately fails.
type CachingClient struct {
	Client

	mu      sync.Mutex
	entries map[string]map[string]any // requestId -> cacheKey -> cached response
}

// NewCachingClient wraps inner with an empty cache.
func NewCachingClient(inner Client) *CachingClient {
	return &CachingClient{Client: inner, entries: make(map[string]map[string]any)}
}

// Evict drops every cached entry for requestId. Called by the façade on
// request failure, per spec.md §4.7's tail handler.
func (c *CachingClient) Evict(requestID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, requestID)
}

func (c *CachingClient) lookup(requestID, key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	byKey, ok := c.entries[requestID]
	if !ok {
		return nil, false
	}
	v, ok := byKey[key]
	return v, ok
}

func (c *CachingClient) store(requestID, key string, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	byKey, ok := c.entries[requestID]
	if !ok {
		byKey = make(map[string]any)
		c.entries[requestID] = byKey
	}
	byKey[key] = v
}

func cacheKeyOf(v any) string {
	b, _ := json.Marshal(v)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func (c *CachingClient) Act(ctx context.Context, req ActRequest) (*ActResponse, error) {
	key := cacheKeyOf(req)
	if cached, ok := c.lookup(req.RequestID, key); ok {
		resp, _ := cached.(*ActResponse)
		return resp, nil
	}
	resp, err := c.Client.Act(ctx, req)
	if err != nil {
		return nil, err
	}
	c.store(req.RequestID, key, resp)
	return resp, nil
}

func (c *CachingClient) Extract(ctx context.Context, req ExtractRequest) (ExtractResponse, error) {
	key := cacheKeyOf(req)
	if cached, ok := c.lookup(req.RequestID, key); ok {
		if resp, ok := cached.(ExtractResponse); ok {
			return resp, nil
		}
	}
	resp, err := c.Client.Extract(ctx, req)
	if err != nil {
		return ExtractResponse{}, err
	}
	c.store(req.RequestID, key, resp)
	return resp, nil
}

func (c *CachingClient) Observe(ctx context.Context, req ObserveRequest) (ObserveResponse, error) {
	key := cacheKeyOf(req)
	if cached, ok := c.lookup(req.RequestID, key); ok {
		if resp, ok := cached.(ObserveResponse); ok {
			return resp, nil
		}
	}
	resp, err := c.Client.Observe(ctx, req)
	if err != nil {
		return ObserveResponse{}, err
	}
	c.store(req.RequestID, key, resp)
	return resp, nil
}

func (c *CachingClient) VerifyActCompletion(ctx context.Context, req VerifyActCompletionRequest) (bool, error) {
	key := cacheKeyOf(req)
	if cached, ok := c.lookup(req.RequestID, key); ok {
		if v, ok := cached.(bool); ok {
			return v, nil
		}
	}
	resp, err := c.Client.VerifyActCompletion(ctx, req)
	if err != nil {
		return false, err
	}
	c.store(req.RequestID, key, resp)
	return resp, nil
}
