// Package observe implements the Observe Pipeline (C4): a single DOM
// bridge call, an optional vision pass, and one LLM observe call, rewriting
// the model's elementId-keyed response into xpath selectors.
package observe

import (
	"context"
	"fmt"
	"time"

	"github.com/kamilturan/browserloop/internal/browser"
	"github.com/kamilturan/browserloop/internal/llm"
	"github.com/kamilturan/browserloop/internal/logging"
	"github.com/kamilturan/browserloop/internal/recorder"
)

// BrowserSession is the slice of *browser.Session the Observe Pipeline
// drives. Accepting an interface here lets tests exercise full-page vs.
// single-chunk serialization and the vision annotation path against a
// fake page.
type BrowserSession interface {
	WaitForSettled(timeout time.Duration)
	DebugStart()
	DebugCleanup()
	ProcessDom(chunksSeen []int) (browser.Chunk, error)
	ProcessAllOfDom() (browser.Chunk, error)
	Screenshot(fullPage bool) ([]byte, error)
	ElementBoxes(selectorMap map[int]string) (map[int]browser.Box, error)
}

// visionSentinel replaces outputString when a vision pass is used, per
// spec.md §4.4 step 3.
const visionSentinel = "n/a. use the image to find the elements."

// defaultInstruction is used when the caller passes an empty instruction,
// per spec.md §4.4's "Inputs" note.
const defaultInstruction = "find interactive elements"

// Result is one entry of an observe call's response, spec.md §4.4 step 5.
type Result struct {
	Selector    string
	Description string
}

// Request configures a single observe call.
type Request struct {
	Instruction string
	UseVision   bool
	FullPage    bool
	ModelName   string
	RequestID   string
}

// Run executes one observe pass: wait settled, serialize the DOM (full-page
// or single-chunk per Request.FullPage), optionally swap in an annotated
// screenshot, call the LLM, rewrite elementIds to selectors, and record the
// result twice (matching the source's intentional, content-addressed-safe
// double record — spec.md §4.4 step 6).
func Run(ctx context.Context, sess BrowserSession, client llm.Client, store *recorder.Store, log *logging.Logger, req Request) ([]Result, error) {
	instruction := req.Instruction
	if instruction == "" {
		instruction = defaultInstruction
	}

	sess.WaitForSettled(0)
	sess.DebugStart()
	defer sess.DebugCleanup()

	var chunk browser.Chunk
	var err error
	if req.FullPage {
		chunk, err = sess.ProcessAllOfDom()
	} else {
		chunk, err = sess.ProcessDom(nil)
	}
	if err != nil {
		return nil, fmt.Errorf("observe: dom bridge: %w", err)
	}

	outputString := chunk.OutputString
	var screenshot []byte
	useVision := req.UseVision && client.SupportsVision(req.ModelName)
	if req.UseVision && !useVision {
		log.V(1).Info("observe: model does not support vision, proceeding without it", "model", req.ModelName)
	}
	if useVision {
		shot, shotErr := sess.Screenshot(false)
		if shotErr != nil {
			log.V(1).Info("observe: screenshot failed, proceeding without vision", "error", shotErr)
		} else {
			boxes, boxesErr := sess.ElementBoxes(chunk.SelectorMap)
			if boxesErr != nil {
				log.V(1).Info("observe: element boxes failed, proceeding without vision", "error", boxesErr)
			} else {
				annotated, annErr := browser.AnnotatedScreenshot(shot, boxes)
				if annErr != nil {
					log.V(1).Info("observe: annotation failed, proceeding without vision", "error", annErr)
				} else {
					screenshot = annotated
					outputString = visionSentinel
				}
			}
		}
	}

	resp, err := client.Observe(ctx, llm.ObserveRequest{
		Instruction: instruction,
		DOMElements: outputString,
		Screenshot:  screenshot,
		ModelName:   req.ModelName,
		RequestID:   req.RequestID,
	})
	if err != nil {
		return nil, fmt.Errorf("observe: %w", err)
	}

	results := make([]Result, 0, len(resp.Elements))
	recorded := make([]recorder.ObservedElement, 0, len(resp.Elements))
	for _, el := range resp.Elements {
		xpath, ok := chunk.SelectorMap[el.ElementID]
		if !ok {
			continue
		}
		r := Result{Selector: "xpath=" + xpath, Description: el.Description}
		results = append(results, r)
		recorded = append(recorded, recorder.ObservedElement{Selector: r.Selector, Description: r.Description})
	}

	store.RecordObservation(instruction, recorded)
	store.RecordObservation(instruction, recorded)

	return results, nil
}
