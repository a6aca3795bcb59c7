package store

import (
	"context"
	"sync"

	"github.com/manpreetbhatti/beholder/internal/view"
)

// Memory is the default store for single-instance deployments and tests.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]*Entry
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string]*Entry)}
}

func (m *Memory) UpdateEncounter(_ context.Context, roomID string, state view.EncounterState) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[roomID]
	if !ok {
		entry = &Entry{}
		m.entries[roomID] = entry
	}
	entry.State = &state
	return nil
}

func (m *Memory) UpdateSettings(_ context.Context, roomID string, settings view.ViewSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[roomID]
	if !ok {
		entry = &Entry{}
		m.entries[roomID] = entry
	}
	entry.Settings = &settings
	return nil
}

func (m *Memory) Get(_ context.Context, roomID string) (*Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.entries[roomID]
	if !ok {
		return nil, nil
	}

	// Copy so callers can't mutate stored state behind the lock.
	out := &Entry{}
	if entry.State != nil {
		state := *entry.State
		out.State = &state
	}
	if entry.Settings != nil {
		settings := *entry.Settings
		out.Settings = &settings
	}
	return out, nil
}

func (m *Memory) IsAvailable(_ context.Context, roomID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.entries[roomID]
	return !ok, nil
}

func (m *Memory) Claim(_ context.Context, roomID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[roomID]; ok {
		return false, nil
	}
	m.entries[roomID] = &Entry{}
	return true, nil
}

func (m *Memory) Destroy(_ context.Context, roomID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, roomID)
	return nil
}

func (m *Memory) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries), nil
}
