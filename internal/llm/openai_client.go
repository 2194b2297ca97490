package llm

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// visionCapableModels is the static table Client.SupportsVision keys off,
// per SPEC_FULL.md §4.8. Kept narrow and explicit rather than a heuristic
// on the model name, since OpenAI's naming is not consistent enough to
// pattern-match reliably.
var visionCapableModels = map[string]bool{
	openai.GPT4o:             true,
	openai.GPT4oMini:         true,
	openai.GPT4Turbo:         true,
	openai.GPT4Turbo20240409: true,
	openai.GPT4VisionPreview: true,
}

const (
	maxRetries     = 3
	baseRetryDelay = 500 * time.Millisecond
)

// OpenAIClient implements Client against the OpenAI Chat Completions API.
type OpenAIClient struct {
	client *openai.Client
}

// NewOpenAIClient builds an OpenAIClient authenticated with apiKey.
func NewOpenAIClient(apiKey string) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai api key is empty")
	}
	return &OpenAIClient{client: openai.NewClient(apiKey)}, nil
}

func (c *OpenAIClient) SupportsVision(model string) bool {
	return visionCapableModels[model]
}

// completeJSON sends a system+user message pair with JSON response format
// enabled, retrying on HTTP 429 with exponential backoff (spec.md §4.8,
// mirroring the teacher's planner retry convention), and returns the raw
// response content.
func (c *OpenAIClient) completeJSON(ctx context.Context, model, system string, userParts []openai.ChatMessagePart) (string, error) {
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: system},
		{Role: openai.ChatMessageRoleUser, MultiContent: userParts},
	}

	req := openai.ChatCompletionRequest{
		Model:    model,
		Messages: messages,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		resp, err := c.client.CreateChatCompletion(ctx, req)
		if err == nil {
			if len(resp.Choices) == 0 {
				return "", fmt.Errorf("%w: no choices returned", ErrLLMCall)
			}
			return resp.Choices[0].Message.Content, nil
		}
		lastErr = err

		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == 429 {
			delay := baseRetryDelay * time.Duration(1<<attempt)
			delay += time.Duration(rand.Intn(100)) * time.Millisecond
			select {
			case <-time.After(delay):
				continue
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
		break
	}
	return "", fmt.Errorf("%w: %v", ErrLLMCall, lastErr)
}

func textPart(text string) openai.ChatMessagePart {
	return openai.ChatMessagePart{Type: openai.ChatMessagePartTypeText, Text: text}
}

func imagePart(jpeg []byte) openai.ChatMessagePart {
	dataURL := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(jpeg)
	return openai.ChatMessagePart{
		Type:     openai.ChatMessagePartTypeImageURL,
		ImageURL: &openai.ChatMessageImageURL{URL: dataURL},
	}
}

func (c *OpenAIClient) Act(ctx context.Context, req ActRequest) (*ActResponse, error) {
	parts := []openai.ChatMessagePart{textPart(fmt.Sprintf(
		"ACTION: %s\n\nSTEPS SO FAR:\n%s\n\nDOM ELEMENTS:\n%s",
		req.Action, req.Steps, req.DOMElements,
	))}
	if len(req.Screenshot) > 0 {
		parts = append(parts, imagePart(req.Screenshot))
	}

	content, err := c.completeJSON(ctx, req.ModelName, actSystemPrompt, parts)
	if err != nil {
		return nil, err
	}

	trimmed := content
	if isEmptyJSONObject(trimmed) {
		return nil, nil
	}

	var out ActResponse
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return nil, fmt.Errorf("%w: decode act response: %v", ErrLLMCall, err)
	}
	return &out, nil
}

func (c *OpenAIClient) Extract(ctx context.Context, req ExtractRequest) (ExtractResponse, error) {
	previous, _ := json.Marshal(req.PreviouslyExtracted)
	schemaJSON, _ := json.Marshal(req.Schema)

	userText := fmt.Sprintf(
		"INSTRUCTION: %s\n\nSCHEMA:\n%s\n\nPROGRESS NOTE: %s\n\nPREVIOUSLY EXTRACTED:\n%s\n\nCHUNK %d OF %d, DOM ELEMENTS:\n%s",
		req.Instruction, schemaJSON, req.Progress, previous, req.ChunksSeen, req.ChunksTotal, req.DOMElements,
	)

	content, err := c.completeJSON(ctx, req.ModelName, extractSystemPrompt, []openai.ChatMessagePart{textPart(userText)})
	if err != nil {
		return ExtractResponse{}, err
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return ExtractResponse{}, fmt.Errorf("%w: decode extract response: %v", ErrLLMCall, err)
	}

	out := ExtractResponse{Fields: map[string]any{}}
	if metaAny, ok := raw["metadata"]; ok {
		metaBytes, _ := json.Marshal(metaAny)
		_ = json.Unmarshal(metaBytes, &out.Metadata)
	}
	for k, v := range raw {
		if k == "metadata" {
			continue
		}
		out.Fields[k] = v
	}
	return out, nil
}

func (c *OpenAIClient) Observe(ctx context.Context, req ObserveRequest) (ObserveResponse, error) {
	instruction := req.Instruction
	if instruction == "" {
		instruction = "(none given; describe every element)"
	}
	parts := []openai.ChatMessagePart{textPart(fmt.Sprintf(
		"INSTRUCTION: %s\n\nDOM ELEMENTS:\n%s", instruction, req.DOMElements,
	))}
	if len(req.Screenshot) > 0 {
		parts = append(parts, imagePart(req.Screenshot))
	}

	content, err := c.completeJSON(ctx, req.ModelName, observeSystemPrompt, parts)
	if err != nil {
		return ObserveResponse{}, err
	}

	var out ObserveResponse
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return ObserveResponse{}, fmt.Errorf("%w: decode observe response: %v", ErrLLMCall, err)
	}
	return out, nil
}

func (c *OpenAIClient) VerifyActCompletion(ctx context.Context, req VerifyActCompletionRequest) (bool, error) {
	userText := fmt.Sprintf("GOAL: %s\n\nSTEPS TAKEN:\n%s", req.Goal, req.Steps)
	if req.DOMElements != "" {
		userText += "\n\nRESULTING DOM:\n" + req.DOMElements
	}
	parts := []openai.ChatMessagePart{textPart(userText)}
	if len(req.Screenshot) > 0 {
		parts = append(parts, imagePart(req.Screenshot))
	}

	content, err := c.completeJSON(ctx, req.ModelName, verifySystemPrompt, parts)
	if err != nil {
		return false, err
	}

	var out struct {
		Completed bool `json:"completed"`
	}
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return false, fmt.Errorf("%w: decode verify response: %v", ErrLLMCall, err)
	}
	return out.Completed, nil
}

func isEmptyJSONObject(content string) bool {
	var m map[string]any
	if err := json.Unmarshal([]byte(content), &m); err != nil {
		return false
	}
	return len(m) == 0
}
