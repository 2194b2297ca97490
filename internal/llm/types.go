// Package llm is the LLM provider abstraction behind the four prompt
// functions spec.md §6 treats as external collaborators: act, extract,
// observe, and verifyActCompletion. internal/act, internal/extract, and
// internal/observe depend only on the Client interface below, never on
// github.com/sashabaranov/go-openai directly.
package llm

import "context"

// ActRequest is the act prompt's input (spec.md §4.6 Phase C).
type ActRequest struct {
	Action      string
	DOMElements string
	Steps       string
	Screenshot  []byte // optional, JPEG
	ModelName   string
	RequestID   string
}

// ActResponse is the act prompt's output. A nil *ActResponse from Client.Act
// means "no actionable element in this chunk" (spec.md §4.6 Phase C).
type ActResponse struct {
	Element   int    `json:"element"`
	Method    string `json:"method"`
	Args      []any  `json:"args"`
	Step      string `json:"step"`
	Why       string `json:"why"`
	Completed bool   `json:"completed"`
}

// ExtractRequest is the extract prompt's input (spec.md §4.5 step 3).
type ExtractRequest struct {
	Instruction             string
	Progress                string
	PreviouslyExtracted     map[string]any
	DOMElements             string
	Schema                  any // schema.Schema, passed as any and sent to the model as JSON
	ChunksSeen, ChunksTotal int
	ModelName               string
	RequestID               string
}

// ExtractMetadata is the metadata envelope every extract response carries
// alongside the partial value's own fields.
type ExtractMetadata struct {
	Progress  string `json:"progress"`
	Completed bool   `json:"completed"`
}

// ExtractResponse is the extract prompt's output: metadata plus the
// partial value's fields, flattened the way the wire format is (spec.md
// §4.5 step 4: "{ metadata: {...}, ...fields }").
type ExtractResponse struct {
	Metadata ExtractMetadata
	Fields   map[string]any
}

// ObserveRequest is the observe prompt's input (spec.md §4.4 step 4).
type ObserveRequest struct {
	Instruction string
	DOMElements string
	Screenshot  []byte
	ModelName   string
	RequestID   string
}

// ObservedElement is one entry of an ObserveResponse.
type ObservedElement struct {
	ElementID   int    `json:"elementId"`
	Description string `json:"description"`
}

// ObserveResponse is the observe prompt's output.
type ObserveResponse struct {
	Elements []ObservedElement `json:"elements"`
}

// VerifyActCompletionRequest is verifyActCompletion's input (spec.md §4.6
// Phase I).
type VerifyActCompletionRequest struct {
	Goal        string
	Steps       string
	Screenshot  []byte
	DOMElements string
	ModelName   string
	RequestID   string
}

// Client is the LLM provider abstraction. Implementations must be safe for
// concurrent use by independent requestIds, per spec.md §5.
type Client interface {
	Act(ctx context.Context, req ActRequest) (*ActResponse, error)
	Extract(ctx context.Context, req ExtractRequest) (ExtractResponse, error)
	Observe(ctx context.Context, req ObserveRequest) (ObserveResponse, error)
	VerifyActCompletion(ctx context.Context, req VerifyActCompletionRequest) (bool, error)
	// SupportsVision answers spec.md §4.6 Phase A's vision-gating question.
	SupportsVision(model string) bool
}
