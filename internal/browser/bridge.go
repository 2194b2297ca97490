package browser

import (
	"encoding/json"
	"fmt"

	"github.com/kamilturan/browserloop/internal/domscript"
)

// Chunk is the chunk descriptor of spec.md §3: a text serialization of the
// elements in one chunk, the selector map needed to dispatch against any
// of them, which chunk was just served, and the full ordered chunk index
// the page currently reports.
type Chunk struct {
	OutputString string         `json:"outputString"`
	SelectorMap  map[int]string `json:"selectorMap"`
	ChunkIndex   int            `json:"chunk"`
	Chunks       []int          `json:"chunks"`
}

// rawChunk mirrors the JSON shape returned by domscript.ProcessDom before
// its numeric-keyed map is decoded into SelectorMap.
type rawChunk struct {
	OutputString string            `json:"outputString"`
	SelectorMap  map[string]string `json:"selectorMap"`
	ChunkIndex   int               `json:"chunk"`
	Chunks       []int             `json:"chunks"`
}

func walkerInstallScript() string {
	return "(" + domscript.Walker + ")()"
}

// ProcessDom returns exactly one chunk not present in chunksSeen, per
// spec.md §4.2; once every chunk is in chunksSeen, the result is empty and
// has ChunkIndex -1. chunksSeen is never mutated by this call; the caller is
// responsible for appending ChunkIndex once it has consumed the result.
func (s *Session) ProcessDom(chunksSeen []int) (Chunk, error) {
	s.mu.Lock()
	page := s.Page
	s.mu.Unlock()

	result, err := page.Evaluate(domscript.ProcessDom, chunksSeen)
	if err != nil {
		return Chunk{}, fmt.Errorf("processDom: %w", err)
	}
	return decodeChunk(result)
}

// ProcessAllOfDom returns the full-page flat serialization, unchunked.
func (s *Session) ProcessAllOfDom() (Chunk, error) {
	s.mu.Lock()
	page := s.Page
	s.mu.Unlock()

	result, err := page.Evaluate(domscript.ProcessAllOfDom)
	if err != nil {
		return Chunk{}, fmt.Errorf("processAllOfDom: %w", err)
	}
	c, err := decodeChunk(result)
	if err != nil {
		return Chunk{}, err
	}
	c.ChunkIndex = 0
	c.Chunks = []int{0}
	return c, nil
}

// DebugStart enables the overlay lifecycle. All errors are swallowed and
// logged, per spec.md §4.2 — the overlay is a development aid, never load
// bearing.
func (s *Session) DebugStart() {
	if !s.opts.DebugDOM {
		return
	}
	s.mu.Lock()
	page := s.Page
	s.mu.Unlock()

	if _, err := page.Evaluate(domscript.DebugDom); err != nil {
		s.log.V(1).Info("debug overlay failed to start", "error", err)
	}
}

// DebugCleanup tears down whatever DebugStart drew, swallowing errors.
func (s *Session) DebugCleanup() {
	if !s.opts.DebugDOM {
		return
	}
	s.mu.Lock()
	page := s.Page
	s.mu.Unlock()

	if _, err := page.Evaluate(domscript.CleanupDebug); err != nil {
		s.log.V(1).Info("debug overlay cleanup failed", "error", err)
	}
}

// ScrollToTop is invoked exclusively by the Act Loop's vision fallback
// (spec.md §4.6 Phase D).
func (s *Session) ScrollToTop() {
	s.mu.Lock()
	page := s.Page
	s.mu.Unlock()

	if _, err := page.Evaluate(domscript.ScrollToHeight, 0); err != nil {
		s.log.V(1).Info("scrollToHeight(0) failed", "error", err)
	}
}

func decodeChunk(v any) (Chunk, error) {
	raw, err := marshalRoundTrip(v)
	if err != nil {
		return Chunk{}, err
	}

	selectorMap := make(map[int]string, len(raw.SelectorMap))
	for k, v := range raw.SelectorMap {
		var id int
		if _, err := fmt.Sscanf(k, "%d", &id); err != nil {
			continue
		}
		selectorMap[id] = v
	}

	return Chunk{
		OutputString: raw.OutputString,
		SelectorMap:  selectorMap,
		ChunkIndex:   raw.ChunkIndex,
		Chunks:       raw.Chunks,
	}, nil
}

func marshalRoundTrip(v any) (rawChunk, error) {
	var raw rawChunk
	buf, err := json.Marshal(v)
	if err != nil {
		return raw, fmt.Errorf("encode eval result: %w", err)
	}
	if err := json.Unmarshal(buf, &raw); err != nil {
		return raw, fmt.Errorf("decode eval result: %w", err)
	}
	return raw, nil
}
