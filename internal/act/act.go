// Package act implements the Act Loop (C6), the largest of the core
// control loops: it drives a single natural-language action to completion
// against the page, one DOM chunk and LLM call at a time, dispatching
// through the browser package's closed method table and verifying
// completion before returning.
//
// spec.md §4.6 describes this as a tail-recursive state machine (Phases
// A-I); this package expresses the same state machine as an explicit
// iteration over a mutable state record, since Go has no tail-call
// elimination to lean on for an unbounded number of chunks/retries.
package act

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kamilturan/browserloop/internal/browser"
	"github.com/kamilturan/browserloop/internal/llm"
	"github.com/kamilturan/browserloop/internal/logging"
	"github.com/kamilturan/browserloop/internal/recorder"
)

// BrowserSession is the slice of *browser.Session the Act Loop drives.
// Accepting an interface here, rather than the concrete type, lets tests
// exercise every phase of the loop (chunk advancement, vision fallback,
// dispatch retries, post-click navigation, completion verification)
// against a fake page instead of a real browser.
type BrowserSession interface {
	WaitForSettled(timeout time.Duration)
	DebugStart()
	DebugCleanup()
	ProcessDom(chunksSeen []int) (browser.Chunk, error)
	ProcessAllOfDom() (browser.Chunk, error)
	Screenshot(fullPage bool) ([]byte, error)
	URL() string
	Dispatch(method string, elementID int, selectorMap map[int]string, args []any) error
	HandlePostClick(preURL string) (urlChanged bool, newURL string)
	ScrollToTop()
}

// VisionMode mirrors spec.md §4.6's useVision ∈ {true, false, "fallback"}.
type VisionMode string

const (
	VisionOn       VisionMode = "true"
	VisionOff      VisionMode = "false"
	VisionFallback VisionMode = "fallback"
)

// maxRetries is spec.md §4.6 Phase G's "up to 2 retries (three total
// attempts)".
const maxRetries = 2

var (
	// ErrChunksExhausted is returned internally when a dispatch loop has
	// consumed every chunk without the model ever emitting an action; it
	// never escapes Run, which converts it into a structured failure
	// Result, matching spec.md §7's note that Act never surfaces an error
	// for these cases.
	ErrChunksExhausted = errors.New("chunks exhausted without an actionable element")
	// ErrInvalidMethod re-exports browser.ErrInvalidMethod under this
	// package's error taxonomy (SPEC_FULL.md §7).
	ErrInvalidMethod = browser.ErrInvalidMethod
	// ErrRetriesExhausted is returned internally when Phase G's retry
	// budget is spent; also converted to a structured failure Result.
	ErrRetriesExhausted = errors.New("retries exhausted")
)

// Metrics is the narrow slice of internal/metrics.Recorder the act loop
// reports into; accepting an interface here (rather than a concrete type)
// keeps this package independent of the metrics package. A nil Metrics is
// valid and simply means "don't record".
type Metrics interface {
	IncDispatchRetry()
	IncChunksExhausted()
	IncVerifierRejection()
}

// Result is the act public operation's result shape (spec.md §6).
type Result struct {
	Success bool
	Message string
	Action  string
}

// Request configures a single act call.
type Request struct {
	Action            string
	ModelName         string
	UseVision         VisionMode
	VerifierUseVision bool
	RequestID         string
}

// Run drives Request.Action to completion or structured failure.
func Run(ctx context.Context, sess BrowserSession, client llm.Client, store *recorder.Store, log *logging.Logger, m Metrics, req Request) (Result, error) {
	useVisionRequested := req.UseVision == VisionOn || req.UseVision == VisionFallback
	visionSupported := client.SupportsVision(req.ModelName)

	// Phase A: vision gating.
	visionMode := req.UseVision
	verifierUseVision := req.VerifierUseVision
	if useVisionRequested && !visionSupported {
		log.V(1).Info("act: model does not support vision, forcing useVision=false", "model", req.ModelName)
		visionMode = VisionOff
		verifierUseVision = false
	}

	var (
		chunksSeen         []int
		steps              string
		useVisionNow       = visionMode == VisionOn
		retries            int
		verifierRejections int
	)

	for {
		// Phase B: prompt.
		sess.WaitForSettled(0)
		sess.DebugStart()

		chunk, err := sess.ProcessDom(chunksSeen)
		if err != nil {
			sess.DebugCleanup()
			return Result{}, fmt.Errorf("act: dom bridge: %w", err)
		}

		var screenshot []byte
		if useVisionNow && visionSupported {
			if shot, shotErr := sess.Screenshot(false); shotErr != nil {
				log.V(1).Info("act: screenshot failed, proceeding without vision", "error", shotErr)
			} else {
				screenshot = shot
			}
		}

		// Phase C: plan.
		resp, err := client.Act(ctx, llm.ActRequest{
			Action:      req.Action,
			DOMElements: chunk.OutputString,
			Steps:       steps,
			Screenshot:  screenshot,
			ModelName:   req.ModelName,
			RequestID:   req.RequestID,
		})
		if err != nil {
			sess.DebugCleanup()
			return Result{}, fmt.Errorf("act: %w", err)
		}

		// Phase D: no action in this chunk.
		if resp == nil {
			sess.DebugCleanup()
			if len(chunksSeen)+1 < len(chunk.Chunks) {
				chunksSeen = append(chunksSeen, chunk.ChunkIndex)
				steps += "\n## Step: Scrolled to another section"
				continue
			}
			if visionMode == VisionFallback && !useVisionNow {
				sess.ScrollToTop()
				useVisionNow = true
				continue
			}
			log.V(1).Info("act: giving up", "error", fmt.Errorf("%w: %q", ErrChunksExhausted, req.Action))
			if m != nil {
				m.IncChunksExhausted()
			}
			result := Result{Success: false, Message: "Action was not able to be completed.", Action: req.Action}
			store.RecordAction(req.Action, recorder.ActionResult{Success: result.Success, Message: result.Message})
			return result, nil
		}

		// Phase E: dispatch.
		preURL := sess.URL()
		dispatchErr := sess.Dispatch(resp.Method, resp.Element, chunk.SelectorMap, resp.Args)
		if dispatchErr != nil {
			sess.DebugCleanup()
			// Phase G: retry.
			if retries < maxRetries {
				retries++
				if m != nil {
					m.IncDispatchRetry()
				}
				continue
			}
			log.V(1).Info("act: dispatch retries exhausted", "error", fmt.Errorf("%w: %v", ErrRetriesExhausted, dispatchErr))
			message := fmt.Sprintf("Error performing action: %v", dispatchErr)
			if errors.Is(dispatchErr, ErrInvalidMethod) {
				message = fmt.Sprintf("Internal error: Chosen method %q is invalid", resp.Method)
			}
			result := Result{Success: false, Message: message, Action: req.Action}
			store.RecordAction(req.Action, recorder.ActionResult{Success: false, Message: ""})
			return result, nil
		}

		// Phase F: post-click navigation.
		if resp.Method == "click" {
			if changed, newURL := sess.HandlePostClick(preURL); changed {
				log.V(1).Info("act: url changed after click", "from", preURL, "to", newURL)
			}
		}

		// Phase H: step bookkeeping.
		elementText := elementTextFor(chunk.OutputString, resp.Element)
		newSteps := steps + fmt.Sprintf(
			"\n## Step: %s\n  Element: %s\n  Action: %s\n  Reasoning: %s",
			resp.Step, elementText, resp.Method, resp.Why,
		)
		sess.DebugCleanup()

		// Phase I: completion verification.
		if !resp.Completed {
			steps = newSteps
			continue
		}

		var verifyScreenshot []byte
		var verifyDOM string
		if verifierUseVision {
			shot, shotErr := sess.Screenshot(true)
			if shotErr != nil {
				shot, shotErr = sess.Screenshot(true) // one retry on failure, per spec.md §4.6 Phase I
			}
			if shotErr != nil {
				log.V(1).Info("act: verifier screenshot failed twice, falling back to dom", "error", shotErr)
				fullChunk, domErr := sess.ProcessAllOfDom()
				if domErr == nil {
					verifyDOM = fullChunk.OutputString
				}
			} else {
				verifyScreenshot = shot
			}
		} else {
			fullChunk, domErr := sess.ProcessAllOfDom()
			if domErr != nil {
				log.V(1).Info("act: verifier dom serialization failed", "error", domErr)
			} else {
				verifyDOM = fullChunk.OutputString
			}
		}

		verified, err := client.VerifyActCompletion(ctx, llm.VerifyActCompletionRequest{
			Goal:        req.Action,
			Steps:       newSteps,
			Screenshot:  verifyScreenshot,
			DOMElements: verifyDOM,
			ModelName:   req.ModelName,
			RequestID:   req.RequestID,
		})
		if err != nil {
			return Result{}, fmt.Errorf("act: verify completion: %w", err)
		}

		if verified {
			result := Result{Success: true, Message: fmt.Sprintf("Action completed successfully: %s", resp.Step), Action: req.Action}
			store.RecordAction(req.Action, recorder.ActionResult{Success: true, Message: result.Message})
			return result, nil
		}

		verifierRejections++
		if m != nil {
			m.IncVerifierRejection()
		}
		maxVerifierRejections := len(chunk.Chunks)
		if maxVerifierRejections < 1 {
			maxVerifierRejections = 1
		}
		if verifierRejections >= maxVerifierRejections {
			result := Result{
				Success: false,
				Message: fmt.Sprintf("Action could not be verified after %d attempts", verifierRejections),
				Action:  req.Action,
			}
			store.RecordAction(req.Action, recorder.ActionResult{Success: false, Message: result.Message})
			return result, nil
		}

		steps = newSteps
	}
}

// elementTextFor returns the substring after the first ":" on the
// outputString line beginning with "<elementId>:", or "Element not found"
// if absent, per spec.md §4.6 Phase H.
func elementTextFor(outputString string, elementID int) string {
	prefix := fmt.Sprintf("%d:", elementID)
	for _, line := range strings.Split(outputString, "\n") {
		if strings.HasPrefix(line, prefix) {
			return strings.TrimPrefix(line, prefix)
		}
	}
	return "Element not found"
}
