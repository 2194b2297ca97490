package llm

import (
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOpenAIClient_RejectsEmptyKey(t *testing.T) {
	_, err := NewOpenAIClient("")
	assert.Error(t, err)
}

func TestNewOpenAIClient_AcceptsKey(t *testing.T) {
	c, err := NewOpenAIClient("sk-test")
	require.NoError(t, err)
	assert.NotNil(t, c)
}

func TestSupportsVision(t *testing.T) {
	c, err := NewOpenAIClient("sk-test")
	require.NoError(t, err)

	tests := []struct {
		model    string
		expected bool
	}{
		{openai.GPT4o, true},
		{openai.GPT4oMini, true},
		{openai.GPT4Turbo, true},
		{openai.GPT4VisionPreview, true},
		{openai.GPT3Dot5Turbo, false},
		{"not-a-real-model", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, c.SupportsVision(tt.model), tt.model)
	}
}

func TestIsEmptyJSONObject(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected bool
	}{
		{"empty object", "{}", true},
		{"populated object", `{"element":1}`, false},
		{"not json", "not json at all", false},
		{"json array", "[]", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isEmptyJSONObject(tt.content))
		})
	}
}
