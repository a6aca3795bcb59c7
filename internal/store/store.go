// Package store persists the latest player-view state per room id.
//
// Every write is a wholesale replacement; there are no field-level
// updates. Claim is the one operation with a consistency requirement:
// it must check availability and reserve the id as a single step, so
// that two concurrent claims for the same id yield exactly one winner
// even across multiple server instances sharing a backend.
package store

import (
	"context"

	"github.com/manpreetbhatti/beholder/internal/view"
)

// Entry holds the stored state and settings for one room. Either field
// may be nil when the room has only ever received one kind of update,
// or when the entry is a fresh claim reservation.
type Entry struct {
	State    *view.EncounterState
	Settings *view.ViewSettings
}

type Store interface {
	// UpdateEncounter replaces (or creates) the stored encounter state.
	UpdateEncounter(ctx context.Context, roomID string, state view.EncounterState) error

	// UpdateSettings replaces (or creates) the stored view settings.
	UpdateSettings(ctx context.Context, roomID string, settings view.ViewSettings) error

	// Get returns the entry for roomID, or nil when none exists.
	Get(ctx context.Context, roomID string) (*Entry, error)

	// IsAvailable reports whether no entry currently exists for roomID.
	// Read-only; claimants must use Claim instead of check-then-act.
	IsAvailable(ctx context.Context, roomID string) (bool, error)

	// Claim atomically reserves roomID by creating an empty entry,
	// failing if any entry already exists. Returns whether the
	// reservation was won.
	Claim(ctx context.Context, roomID string) (bool, error)

	// Destroy removes the entry for roomID; a no-op when absent.
	Destroy(ctx context.Context, roomID string) error

	// Count returns the number of stored entries.
	Count(ctx context.Context) (int, error)
}
