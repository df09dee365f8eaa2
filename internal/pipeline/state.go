// Package pipeline implements the submission core: per-channel processing
// state, the primary/fallback request lifecycle, demo substitution and the
// presentation selector.
package pipeline

import (
	"sync"

	"github.com/SAMUEL-ST-16/ExtractReq/internal/models"
)

// StateStore owns the three channel cells. Every mutation that starts a new
// submission clears all channels first, which keeps at most one ShowResults
// true at any time. A single generation counter guards against stale
// completions: results carrying an outdated generation are dropped.
type StateStore struct {
	mu     sync.RWMutex
	states map[models.Channel]*models.ProcessingState
	gen    uint64
}

// NewStateStore creates a store with all channels at their empty baseline.
func NewStateStore() *StateStore {
	s := &StateStore{states: make(map[models.Channel]*models.ProcessingState, len(models.Channels))}
	for _, ch := range models.Channels {
		s.states[ch] = &models.ProcessingState{}
	}
	return s
}

// State returns a copy of one channel's cell.
func (s *StateStore) State(ch models.Channel) models.ProcessingState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return *s.states[ch]
}

// Snapshot returns a copy of all three cells. Attached AnalysisResults are
// immutable once installed, so sharing their pointers is safe.
func (s *StateStore) Snapshot() map[models.Channel]models.ProcessingState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := make(map[models.Channel]models.ProcessingState, len(s.states))
	for ch, st := range s.states {
		snap[ch] = *st
	}
	return snap
}

// Begin starts a new submission: all channels reset to baseline, the target
// channel enters its loading state. The returned generation must accompany
// the eventual Complete or Fail.
func (s *StateStore) Begin(target models.Channel, message string, progress int) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.resetLocked()
	s.states[target] = &models.ProcessingState{
		Loading:  true,
		Message:  message,
		Progress: progress,
	}
	return s.gen
}

// Clear resets all channels without marking any of them loading. Used by demo
// activation, which installs its result after a delay.
func (s *StateStore) Clear() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.resetLocked()
	return s.gen
}

func (s *StateStore) resetLocked() {
	for _, ch := range models.Channels {
		s.states[ch] = &models.ProcessingState{}
	}
}

// Complete installs a finished result on a channel. Returns false without
// touching state when gen is no longer current.
func (s *StateStore) Complete(gen uint64, ch models.Channel, results *models.AnalysisResult, artifact []byte, artifactName, message string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return false
	}
	s.states[ch] = &models.ProcessingState{
		ShowResults:  true,
		Results:      results,
		Message:      message,
		Artifact:     artifact,
		ArtifactName: artifactName,
		HasArtifact:  len(artifact) > 0,
	}
	return true
}

// Fail marks a channel as failed. Returns false when gen is stale.
func (s *StateStore) Fail(gen uint64, ch models.Channel, errMsg string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return false
	}
	s.states[ch] = &models.ProcessingState{Error: errMsg}
	return true
}

// SetValidationError records a local constraint violation on one channel
// only. Other channels and the generation counter are untouched, since no
// submission was started.
func (s *StateStore) SetValidationError(ch models.Channel, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[ch] = &models.ProcessingState{Error: errMsg}
}

// Artifact returns the artifact bytes and name for a channel, if present.
func (s *StateStore) Artifact(ch models.Channel) ([]byte, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.states[ch]
	if !st.ShowResults || len(st.Artifact) == 0 {
		return nil, "", false
	}
	return st.Artifact, st.ArtifactName, true
}
