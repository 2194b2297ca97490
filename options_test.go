package browserloop

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kamilturan/browserloop/internal/act"
)

func TestActOptions_ApplyInOrder(t *testing.T) {
	cfg := actOptions{ModelName: "gpt-4o-mini", UseVision: act.VisionFallback}
	for _, opt := range []ActOption{
		WithActModel("gpt-4o"),
		WithActVision(act.VisionOn),
		WithVerifierVision(true),
	} {
		opt(&cfg)
	}

	assert.Equal(t, "gpt-4o", cfg.ModelName)
	assert.Equal(t, act.VisionOn, cfg.UseVision)
	assert.True(t, cfg.VerifierUseVision)
}

func TestExtractOptions_Apply(t *testing.T) {
	cfg := extractOptions{ModelName: "gpt-4o-mini"}
	WithExtractModel("gpt-4o")(&cfg)
	assert.Equal(t, "gpt-4o", cfg.ModelName)
}

func TestObserveOptions_Apply(t *testing.T) {
	cfg := observeOptions{}
	for _, opt := range []ObserveOption{
		WithObserveInstruction("find the submit button"),
		WithObserveVision(true),
		WithObserveFullPage(true),
		WithObserveModel("gpt-4o"),
	} {
		opt(&cfg)
	}

	assert.Equal(t, "find the submit button", cfg.Instruction)
	assert.True(t, cfg.UseVision)
	assert.True(t, cfg.FullPage)
	assert.Equal(t, "gpt-4o", cfg.ModelName)
}
