// Package claim negotiates custom room ids. A successful claim reserves
// the candidate id, releases the session's previous id for others to
// use, and rebinds the session; every failure path is a clean no-op
// reported only as granted=false.
package claim

import (
	"context"
	"log"

	"github.com/manpreetbhatti/beholder/internal/encounterid"
	"github.com/manpreetbhatti/beholder/internal/session"
	"github.com/manpreetbhatti/beholder/internal/store"
)

type Negotiator struct {
	store store.Store
}

func NewNegotiator(st store.Store) *Negotiator {
	return &Negotiator{store: st}
}

// Claim attempts to reserve candidateID for sess. The availability
// check and the reservation are a single store primitive, so two
// concurrent claims for the same id get exactly one winner even across
// server instances; the loser sees false and no state changes.
//
// A store error counts as "not available": granting an id we could not
// durably reserve would let a later claimant take it out from under the
// requester.
func (n *Negotiator) Claim(ctx context.Context, sess *session.Session, candidateID string) bool {
	if !sess.Entitled() {
		return false
	}
	if !encounterid.ValidCustom(candidateID) {
		return false
	}

	granted, err := n.store.Claim(ctx, candidateID)
	if err != nil {
		log.Printf("Claim for %q failed closed: %v", candidateID, err)
		return false
	}
	if !granted {
		return false
	}

	if old := sess.EncounterID(); old != "" && old != candidateID {
		if err := n.store.Destroy(ctx, old); err != nil {
			// The claim already won; the stale entry lingers until a
			// later destroy rather than failing the grant.
			log.Printf("Failed to release previous id %q: %v", old, err)
		}
	}

	sess.SetEncounterID(candidateID)
	return true
}
