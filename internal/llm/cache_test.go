package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingClient records how many times each method was actually called,
// so tests can assert the cache suppressed (or didn't suppress) a call.
type countingClient struct {
	actCalls     int
	extractCalls int
	observeCalls int
	verifyCalls  int
}

func (c *countingClient) Act(ctx context.Context, req ActRequest) (*ActResponse, error) {
	c.actCalls++
	return &ActResponse{Element: 1, Method: "click", Step: req.Action}, nil
}

func (c *countingClient) Extract(ctx context.Context, req ExtractRequest) (ExtractResponse, error) {
	c.extractCalls++
	return ExtractResponse{Fields: map[string]any{"n": c.extractCalls}}, nil
}

func (c *countingClient) Observe(ctx context.Context, req ObserveRequest) (ObserveResponse, error) {
	c.observeCalls++
	return ObserveResponse{Elements: []ObservedElement{{ElementID: 1, Description: "x"}}}, nil
}

func (c *countingClient) VerifyActCompletion(ctx context.Context, req VerifyActCompletionRequest) (bool, error) {
	c.verifyCalls++
	return true, nil
}

func (c *countingClient) SupportsVision(model string) bool { return false }

func TestCachingClient_Act_HitsCacheForIdenticalRequest(t *testing.T) {
	inner := &countingClient{}
	cached := NewCachingClient(inner)

	req := ActRequest{Action: "click login", RequestID: "req1"}
	resp1, err := cached.Act(context.Background(), req)
	require.NoError(t, err)
	resp2, err := cached.Act(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 1, inner.actCalls)
	assert.Same(t, resp1, resp2)
}

func TestCachingClient_Act_DistinctRequestIDsDoNotShareCache(t *testing.T) {
	inner := &countingClient{}
	cached := NewCachingClient(inner)

	_, _ = cached.Act(context.Background(), ActRequest{Action: "click login", RequestID: "req1"})
	_, _ = cached.Act(context.Background(), ActRequest{Action: "click login", RequestID: "req2"})

	assert.Equal(t, 2, inner.actCalls)
}

func TestCachingClient_Evict_ForcesRecall(t *testing.T) {
	inner := &countingClient{}
	cached := NewCachingClient(inner)

	req := ExtractRequest{Instruction: "get price", RequestID: "req1"}
	_, _ = cached.Extract(context.Background(), req)
	cached.Evict("req1")
	_, _ = cached.Extract(context.Background(), req)

	assert.Equal(t, 2, inner.extractCalls)
}

func TestCachingClient_Observe_CachesPerRequest(t *testing.T) {
	inner := &countingClient{}
	cached := NewCachingClient(inner)

	req := ObserveRequest{Instruction: "find buttons", RequestID: "req1"}
	_, _ = cached.Observe(context.Background(), req)
	_, _ = cached.Observe(context.Background(), req)

	assert.Equal(t, 1, inner.observeCalls)
}

func TestCachingClient_VerifyActCompletion_Caches(t *testing.T) {
	inner := &countingClient{}
	cached := NewCachingClient(inner)

	req := VerifyActCompletionRequest{Goal: "submit form", RequestID: "req1"}
	_, _ = cached.VerifyActCompletion(context.Background(), req)
	_, _ = cached.VerifyActCompletion(context.Background(), req)

	assert.Equal(t, 1, inner.verifyCalls)
}

func TestCachingClient_SupportsVision_DelegatesToInner(t *testing.T) {
	inner := &countingClient{}
	cached := NewCachingClient(inner)
	assert.False(t, cached.SupportsVision("gpt-4o"))
}
