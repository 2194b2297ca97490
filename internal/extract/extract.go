// Package extract implements the Extract Loop (C5): iterative
// chunk-by-chunk accumulation of a schema-shaped value, terminating when
// the model reports completion or the page's chunks are exhausted.
package extract

import (
	"context"
	"fmt"
	"time"

	"github.com/kamilturan/browserloop/internal/browser"
	"github.com/kamilturan/browserloop/internal/llm"
	"github.com/kamilturan/browserloop/internal/logging"
	"github.com/kamilturan/browserloop/internal/schema"
)

// ErrLLMCall is re-exported for callers that only import this package.
var ErrLLMCall = llm.ErrLLMCall

// BrowserSession is the slice of *browser.Session the Extract Loop drives.
// Accepting an interface here lets tests exercise chunk-by-chunk
// accumulation and completion against a fake page.
type BrowserSession interface {
	WaitForSettled(timeout time.Duration)
	DebugStart()
	DebugCleanup()
	ProcessDom(chunksSeen []int) (browser.Chunk, error)
}

// Request configures a single extract call.
type Request struct {
	Instruction string
	Schema      schema.Schema
	ModelName   string
	RequestID   string
}

// Run executes the extract loop to completion and returns the final
// schema-shaped value (spec.md §4.5).
func Run(ctx context.Context, sess BrowserSession, client llm.Client, log *logging.Logger, req Request) (map[string]any, error) {
	progress := ""
	content := map[string]any{}
	var chunksSeen []int

	for {
		sess.WaitForSettled(0)
		sess.DebugStart()

		chunk, err := sess.ProcessDom(chunksSeen)
		if err != nil {
			sess.DebugCleanup()
			return nil, fmt.Errorf("extract: dom bridge: %w", err)
		}

		resp, err := client.Extract(ctx, llm.ExtractRequest{
			Instruction:         req.Instruction,
			Progress:            progress,
			PreviouslyExtracted: content,
			DOMElements:         chunk.OutputString,
			Schema:              req.Schema,
			ChunksSeen:          len(chunksSeen),
			ChunksTotal:         len(chunk.Chunks),
			ModelName:           req.ModelName,
			RequestID:           req.RequestID,
		})
		sess.DebugCleanup()
		if err != nil {
			return nil, fmt.Errorf("extract: %w", err)
		}

		for k, v := range resp.Fields {
			content[k] = v
		}
		progress = resp.Metadata.Progress

		if chunk.ChunkIndex >= 0 {
			chunksSeen = append(chunksSeen, chunk.ChunkIndex)
		}

		if resp.Metadata.Completed || len(chunksSeen) == len(chunk.Chunks) {
			if err := schema.Validate(mapToAny(content), req.Schema); err != nil {
				log.V(1).Info("extract: final value does not match schema", "error", err)
			}
			return content, nil
		}
	}
}

func mapToAny(m map[string]any) any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
