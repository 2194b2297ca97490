package llm

import "errors"

// ErrLLMCall wraps any failure to obtain or decode a provider response,
// per SPEC_FULL.md §7's error taxonomy.
var ErrLLMCall = errors.New("llm call failed")
