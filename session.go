// Package browserloop is the public façade (C7): it wires a browser
// session, an LLM client, a recorder, and metrics together behind the
// three public operations — Act, Extract, and Observe.
package browserloop

import (
	"context"
	"fmt"
	"time"

	"github.com/kamilturan/browserloop/internal/act"
	"github.com/kamilturan/browserloop/internal/browser"
	"github.com/kamilturan/browserloop/internal/config"
	"github.com/kamilturan/browserloop/internal/extract"
	"github.com/kamilturan/browserloop/internal/idgen"
	"github.com/kamilturan/browserloop/internal/llm"
	"github.com/kamilturan/browserloop/internal/logging"
	"github.com/kamilturan/browserloop/internal/metrics"
	"github.com/kamilturan/browserloop/internal/observe"
	"github.com/kamilturan/browserloop/internal/recorder"
	"github.com/kamilturan/browserloop/internal/schema"
)

// ActResult is Act's result shape (spec.md §6).
type ActResult struct {
	Success bool
	Message string
	Action  string
}

// ObserveResult is one entry of Observe's result (spec.md §6).
type ObserveResult struct {
	Selector    string
	Description string
}

// Session is the façade: one browser tab, one LLM client, one recorder,
// and one metrics recorder, bound together for the lifetime of a single
// controlled page.
type Session struct {
	id      string
	cfg     config.Config
	browser *browser.Session
	llm     llm.Client
	cache   *llm.CachingClient
	store   *recorder.Store
	metrics *metrics.Recorder
	log     *logging.Logger
}

// NewSession builds every owned component from cfg and opens the browser.
func NewSession(ctx context.Context, cfg config.Config) (*Session, error) {
	log, err := logging.New(logging.Config{Verbosity: cfg.Verbosity, LogFile: cfg.LogFile})
	if err != nil {
		return nil, fmt.Errorf("browserloop: build logger: %w", err)
	}

	browserSession, err := browser.NewSession(browser.Options{
		Environment:      cfg.Environment,
		Headless:         cfg.Headless,
		ConnectURL:       cfg.ConnectURL,
		DOMSettleTimeout: cfg.DOMSettleTimeout,
		DebugDOM:         cfg.DebugDOM,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("browserloop: open browser: %w", err)
	}

	oaClient, err := llm.NewOpenAIClient(cfg.OpenAIAPIKey)
	if err != nil {
		browserSession.Close()
		return nil, fmt.Errorf("browserloop: build llm client: %w", err)
	}

	var client llm.Client = oaClient
	cachingClient := llm.NewCachingClient(oaClient)
	if cfg.EnableCaching {
		client = cachingClient
	}

	return &Session{
		id:      idgen.SessionID(),
		cfg:     cfg,
		browser: browserSession,
		llm:     client,
		cache:   cachingClient,
		store:   recorder.NewStore(),
		metrics: metrics.NewRecorder(),
		log:     log,
	}, nil
}

// Close tears down the owned browser session.
func (s *Session) Close() error {
	_ = s.log.Sync()
	return s.browser.Close()
}

// ID returns this session's identifier.
func (s *Session) ID() string { return s.id }

// Metrics exposes the session's private prometheus registry, e.g. for a
// serve-metrics CLI command.
func (s *Session) Metrics() *metrics.Recorder { return s.metrics }

// Goto navigates the owned page, per spec.md §4.1.
func (s *Session) Goto(url string) error {
	return s.browser.Goto(url)
}

func (s *Session) onFailure(requestID string) {
	if s.cfg.EnableCaching {
		s.cache.Evict(requestID)
	}
}

// Act drives action to completion via the Act Loop, per spec.md §4.6/§4.7.
// Act never returns an error for the loop's own structured-failure cases —
// those come back as ActResult{Success:false} — but a lower-level failure
// (DOM bridge, LLM transport) still propagates.
func (s *Session) Act(ctx context.Context, action string, opts ...ActOption) (ActResult, error) {
	cfg := actOptions{ModelName: s.cfg.ModelName, UseVision: act.VisionFallback}
	for _, opt := range opts {
		opt(&cfg)
	}

	requestID := idgen.RequestID()
	s.log.V(1).Info("act: entry", "requestId", requestID, "action", action)
	start := time.Now()

	result, err := act.Run(ctx, s.browser, s.llm, s.store, s.log, s.metrics, act.Request{
		Action:            action,
		ModelName:         cfg.ModelName,
		UseVision:         cfg.UseVision,
		VerifierUseVision: cfg.VerifierUseVision,
		RequestID:         requestID,
	})
	if err != nil {
		s.log.V(1).Info("act: failed", "requestId", requestID, "error", err)
		s.onFailure(requestID)
		s.metrics.ObserveCall("act", false, time.Since(start).Seconds())
		return ActResult{}, fmt.Errorf("browserloop: act: %w", err)
	}

	if !result.Success {
		// Act never surfaces an error for a structured loop failure (chunks
		// exhausted, retries exhausted, verification rejected), but spec.md
		// §4.6 Phase D still requires the request's LLM cache to be cleaned
		// on any failure, not only a hard error.
		s.onFailure(requestID)
	}
	s.metrics.ObserveCall("act", result.Success, time.Since(start).Seconds())
	return ActResult{Success: result.Success, Message: result.Message, Action: result.Action}, nil
}

// Extract drives instruction to a schema-shaped value via the Extract
// Loop. Unlike Act, a failure here propagates to the caller, per spec.md
// §4.7.
func (s *Session) Extract(ctx context.Context, instruction string, sch schema.Schema, opts ...ExtractOption) (map[string]any, error) {
	cfg := extractOptions{ModelName: s.cfg.ModelName}
	for _, opt := range opts {
		opt(&cfg)
	}

	requestID := idgen.RequestID()
	s.log.V(1).Info("extract: entry", "requestId", requestID, "instruction", instruction)
	start := time.Now()

	value, err := extract.Run(ctx, s.browser, s.llm, s.log, extract.Request{
		Instruction: instruction,
		Schema:      sch,
		ModelName:   cfg.ModelName,
		RequestID:   requestID,
	})
	if err != nil {
		s.log.V(1).Info("extract: failed", "requestId", requestID, "error", err)
		s.onFailure(requestID)
		s.metrics.ObserveCall("extract", false, time.Since(start).Seconds())
		return nil, fmt.Errorf("browserloop: extract: %w", err)
	}

	s.metrics.ObserveCall("extract", true, time.Since(start).Seconds())
	return value, nil
}

// Observe surfaces a list of interactive elements via the Observe
// Pipeline. Like Extract, a failure here propagates to the caller.
func (s *Session) Observe(ctx context.Context, opts ...ObserveOption) ([]ObserveResult, error) {
	cfg := observeOptions{ModelName: s.cfg.ModelName}
	for _, opt := range opts {
		opt(&cfg)
	}

	requestID := idgen.RequestID()
	s.log.V(1).Info("observe: entry", "requestId", requestID, "instruction", cfg.Instruction)
	start := time.Now()

	results, err := observe.Run(ctx, s.browser, s.llm, s.store, s.log, observe.Request{
		Instruction: cfg.Instruction,
		UseVision:   cfg.UseVision,
		FullPage:    cfg.FullPage,
		ModelName:   cfg.ModelName,
		RequestID:   requestID,
	})
	if err != nil {
		s.log.V(1).Info("observe: failed", "requestId", requestID, "error", err)
		s.onFailure(requestID)
		s.metrics.ObserveCall("observe", false, time.Since(start).Seconds())
		return nil, fmt.Errorf("browserloop: observe: %w", err)
	}

	s.metrics.ObserveCall("observe", true, time.Since(start).Seconds())
	out := make([]ObserveResult, 0, len(results))
	for _, r := range results {
		out = append(out, ObserveResult{Selector: r.Selector, Description: r.Description})
	}
	return out, nil
}
