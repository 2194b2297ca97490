package extract

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamilturan/browserloop/internal/browser"
	"github.com/kamilturan/browserloop/internal/llm"
	"github.com/kamilturan/browserloop/internal/logging"
	"github.com/kamilturan/browserloop/internal/schema"
)

// fakeSession is a scriptable BrowserSession double for the extract loop.
type fakeSession struct {
	chunks        []browser.Chunk
	processDomIdx int
}

func (f *fakeSession) WaitForSettled(time.Duration) {}
func (f *fakeSession) DebugStart()                  {}
func (f *fakeSession) DebugCleanup()                {}

func (f *fakeSession) ProcessDom(chunksSeen []int) (browser.Chunk, error) {
	c := f.chunks[f.processDomIdx]
	f.processDomIdx++
	return c, nil
}

// fakeClient is a scriptable llm.Client double returning one ExtractResponse
// per call, in order.
type fakeClient struct {
	responses []llm.ExtractResponse
	idx       int
	requests  []llm.ExtractRequest
}

func (f *fakeClient) Act(context.Context, llm.ActRequest) (*llm.ActResponse, error) {
	return nil, nil
}

func (f *fakeClient) Extract(ctx context.Context, req llm.ExtractRequest) (llm.ExtractResponse, error) {
	f.requests = append(f.requests, req)
	resp := f.responses[f.idx]
	f.idx++
	return resp, nil
}

func (f *fakeClient) Observe(context.Context, llm.ObserveRequest) (llm.ObserveResponse, error) {
	return llm.ObserveResponse{}, nil
}

func (f *fakeClient) VerifyActCompletion(context.Context, llm.VerifyActCompletionRequest) (bool, error) {
	return true, nil
}

func (f *fakeClient) SupportsVision(string) bool { return false }

func newTestLogger(t *testing.T) *logging.Logger {
	t.Helper()
	log, err := logging.New(logging.Config{Console: true})
	require.NoError(t, err)
	return log
}

// TestRun_S2_SingleChunkCompleted is spec.md §8 scenario S2.
func TestRun_S2_SingleChunkCompleted(t *testing.T) {
	sess := &fakeSession{chunks: []browser.Chunk{
		{OutputString: "0:Hello", ChunkIndex: 0, Chunks: []int{0}},
	}}
	client := &fakeClient{responses: []llm.ExtractResponse{
		{Metadata: llm.ExtractMetadata{Progress: "done", Completed: true}, Fields: map[string]any{"title": "Hello"}},
	}}
	sch := schema.Object("", map[string]schema.Schema{"title": schema.Field(schema.String, "")})

	value, err := Run(context.Background(), sess, client, newTestLogger(t), Request{Instruction: "get title", Schema: sch, RequestID: "r1"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"title": "Hello"}, value)
	assert.Equal(t, 1, sess.processDomIdx)
}

// TestRun_S3_TwoChunksThenCompleted is spec.md §8 scenario S3.
func TestRun_S3_TwoChunksThenCompleted(t *testing.T) {
	sess := &fakeSession{chunks: []browser.Chunk{
		{OutputString: "0:a", ChunkIndex: 0, Chunks: []int{0, 1}},
		{OutputString: "1:b", ChunkIndex: 1, Chunks: []int{0, 1}},
	}}
	client := &fakeClient{responses: []llm.ExtractResponse{
		{Metadata: llm.ExtractMetadata{Progress: "half", Completed: false}, Fields: map[string]any{"items": []any{"a"}}},
		{Metadata: llm.ExtractMetadata{Progress: "done", Completed: true}, Fields: map[string]any{"items": []any{"a", "b"}}},
	}}
	sch := schema.Object("", map[string]schema.Schema{"items": schema.ArrayOf("", schema.Field(schema.String, ""))})

	value, err := Run(context.Background(), sess, client, newTestLogger(t), Request{Instruction: "get items", Schema: sch, RequestID: "r1"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"items": []any{"a", "b"}}, value)
	assert.Equal(t, 2, sess.processDomIdx)
	require.Len(t, client.requests, 2)
	assert.Equal(t, "half", client.requests[1].Progress)
}

// TestRun_Invariant_ReturnedValueSatisfiesSchema is testable property 2.
func TestRun_Invariant_ReturnedValueSatisfiesSchema(t *testing.T) {
	sess := &fakeSession{chunks: []browser.Chunk{
		{OutputString: "0:x", ChunkIndex: 0, Chunks: []int{0}},
	}}
	client := &fakeClient{responses: []llm.ExtractResponse{
		{Metadata: llm.ExtractMetadata{Completed: true}, Fields: map[string]any{"n": float64(3)}},
	}}
	sch := schema.Object("", map[string]schema.Schema{"n": schema.Field(schema.Number, "")})

	value, err := Run(context.Background(), sess, client, newTestLogger(t), Request{Instruction: "get n", Schema: sch, RequestID: "r1"})
	require.NoError(t, err)
	require.NoError(t, schema.Validate(value, sch))
}

func TestMapToAny_CopiesShallowly(t *testing.T) {
	src := map[string]any{"title": "hello", "price": 9.99}
	out := mapToAny(src)

	asMap, ok := out.(map[string]any)
	assert.True(t, ok)
	assert.Equal(t, src, asMap)

	// mutating the copy must not mutate src.
	asMap["title"] = "changed"
	assert.Equal(t, "hello", src["title"])
}

func TestMapToAny_Empty(t *testing.T) {
	out := mapToAny(map[string]any{})
	asMap, ok := out.(map[string]any)
	assert.True(t, ok)
	assert.Empty(t, asMap)
}
