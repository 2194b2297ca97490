package browserloop

import "github.com/kamilturan/browserloop/internal/act"

type actOptions struct {
	ModelName         string
	UseVision         act.VisionMode
	VerifierUseVision bool
}

// ActOption configures a single Act call.
type ActOption func(*actOptions)

// WithActModel overrides the model used for this Act call.
func WithActModel(model string) ActOption {
	return func(o *actOptions) { o.ModelName = model }
}

// WithActVision sets useVision ("true", "false", or "fallback"; defaults
// to "fallback", per spec.md §6).
func WithActVision(mode act.VisionMode) ActOption {
	return func(o *actOptions) { o.UseVision = mode }
}

// WithVerifierVision makes the completion verifier use a full-page
// screenshot instead of a DOM serialization.
func WithVerifierVision(enabled bool) ActOption {
	return func(o *actOptions) { o.VerifierUseVision = enabled }
}

type extractOptions struct {
	ModelName string
}

// ExtractOption configures a single Extract call.
type ExtractOption func(*extractOptions)

// WithExtractModel overrides the model used for this Extract call.
func WithExtractModel(model string) ExtractOption {
	return func(o *extractOptions) { o.ModelName = model }
}

type observeOptions struct {
	Instruction string
	UseVision   bool
	FullPage    bool
	ModelName   string
}

// ObserveOption configures a single Observe call.
type ObserveOption func(*observeOptions)

// WithObserveInstruction sets the instruction describing what to look
// for; if never set, Observe describes every element it sees.
func WithObserveInstruction(instruction string) ObserveOption {
	return func(o *observeOptions) { o.Instruction = instruction }
}

// WithObserveVision enables the vision pass for this Observe call.
func WithObserveVision(enabled bool) ObserveOption {
	return func(o *observeOptions) { o.UseVision = enabled }
}

// WithObserveFullPage makes Observe serialize the whole page instead of a
// single DOM chunk.
func WithObserveFullPage(enabled bool) ObserveOption {
	return func(o *observeOptions) { o.FullPage = enabled }
}

// WithObserveModel overrides the model used for this Observe call.
func WithObserveModel(model string) ObserveOption {
	return func(o *observeOptions) { o.ModelName = model }
}
