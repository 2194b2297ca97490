// Package recorder implements the content-addressed observation/action
// log described in spec.md §3/§4.3/§6: an observation is keyed by the hex
// SHA-256 of its instruction string, an action by the hex SHA-256 of the
// action string. Repeating the same instruction or action overwrites the
// prior entry instead of creating a second one.
package recorder

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// Observation is one recordObservation entry.
type Observation struct {
	Instruction string
	Elements    []ObservedElement
	RecordedAt  time.Time
}

// ObservedElement mirrors observe's public result shape.
type ObservedElement struct {
	Selector    string
	Description string
}

// Action is one recordAction entry.
type Action struct {
	Action     string
	Result     ActionResult
	RecordedAt time.Time
}

// ActionResult mirrors act's public result shape.
type ActionResult struct {
	Success bool
	Message string
}

// Store holds every recorded observation and action, keyed by content
// hash. Per spec.md §5 a Store is shared across concurrent calls on one
// session, so every method is mutex-guarded even though the documented
// concurrency model only requires last-write-wins, not torn reads.
type Store struct {
	mu           sync.Mutex
	observations map[string]Observation
	actions      map[string]Action
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		observations: make(map[string]Observation),
		actions:      make(map[string]Action),
	}
}

// RecordObservation stores obs under sha256_hex(instruction) and returns
// the id, per spec.md §3/§4.3's literal "id is the hex SHA-256 of the
// instruction". Collisions on identical instruction text overwrite the
// prior entry — documented, not a bug.
func (s *Store) RecordObservation(instruction string, elements []ObservedElement) string {
	id := contentHash(instruction)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.observations[id] = Observation{
		Instruction: instruction,
		Elements:    elements,
		RecordedAt:  time.Now(),
	}
	return id
}

// RecordAction stores result under sha256_hex(action) and returns the id,
// per spec.md §6's literal "id is the hex SHA-256 of the action string".
// Collisions on identical action text overwrite the prior entry.
func (s *Store) RecordAction(action string, result ActionResult) string {
	id := contentHash(action)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.actions[id] = Action{
		Action:     action,
		Result:     result,
		RecordedAt: time.Now(),
	}
	return id
}

// Observation looks up a previously recorded observation by id.
func (s *Store) Observation(id string) (Observation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obs, ok := s.observations[id]
	return obs, ok
}

// Action looks up a previously recorded action by id.
func (s *Store) Action(id string) (Action, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	act, ok := s.actions[id]
	return act, ok
}

func contentHash(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}
