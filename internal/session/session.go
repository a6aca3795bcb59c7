package session

import "sync"

// Session is the per-connection record the auth layer hands to the sync
// core. The core only reads the entitlement flag and tracks which
// encounter the connection currently considers its own (at most one;
// rebinding replaces, never adds).
type Session struct {
	mu          sync.Mutex
	encounterID string
	entitled    bool
}

func New(entitled bool) *Session {
	return &Session{entitled: entitled}
}

func (s *Session) EncounterID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.encounterID
}

func (s *Session) SetEncounterID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.encounterID = id
}

func (s *Session) Entitled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entitled
}
