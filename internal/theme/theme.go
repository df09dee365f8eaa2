// Package theme manages the persisted light/dark display preference.
package theme

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/SAMUEL-ST-16/ExtractReq/internal/database"
)

// Mode is the display mode.
type Mode string

const (
	Light Mode = "light"
	Dark  Mode = "dark"
)

// PreferenceKey is the persistence key for the display mode.
const PreferenceKey = "theme"

// Manager holds the current mode and keeps it in sync with the store. It is
// orthogonal to analysis state and safe for concurrent use.
type Manager struct {
	mu      sync.RWMutex
	store   database.Store
	current Mode
}

// NewManager creates a theme manager with the given ambient default. The
// default stands in for the platform light/dark signal when nothing was
// persisted yet.
func NewManager(store database.Store, ambientDefault Mode) *Manager {
	if ambientDefault != Dark {
		ambientDefault = Light
	}
	return &Manager{store: store, current: ambientDefault}
}

// Initialize loads the persisted preference, keeping the ambient default when
// none is stored.
func (m *Manager) Initialize(ctx context.Context) error {
	if m.store == nil {
		return nil
	}
	value, err := m.store.GetPreference(ctx, PreferenceKey)
	if err != nil {
		return fmt.Errorf("failed to load theme preference: %w", err)
	}
	if value == string(Dark) || value == string(Light) {
		m.mu.Lock()
		m.current = Mode(value)
		m.mu.Unlock()
	}
	return nil
}

// Current returns the active mode.
func (m *Manager) Current() Mode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Toggle flips the mode, persists it, and returns the new value.
func (m *Manager) Toggle(ctx context.Context) Mode {
	m.mu.Lock()
	if m.current == Dark {
		m.current = Light
	} else {
		m.current = Dark
	}
	mode := m.current
	m.mu.Unlock()

	if m.store != nil {
		if err := m.store.SetPreference(ctx, PreferenceKey, string(mode)); err != nil {
			log.Error().Err(err).Msg("Failed to persist theme preference")
		}
	}
	return mode
}
