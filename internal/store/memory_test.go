package store

import (
	"context"
	"sync"
	"testing"

	"github.com/manpreetbhatti/beholder/internal/view"
)

var (
	_ Store = (*Memory)(nil)
	_ Store = (*SQLite)(nil)
	_ Store = (*Redis)(nil)
)

func TestMemoryWholesaleReplace(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	s1 := view.EncounterState{Name: "First", Combatants: []view.CombatantState{{ID: "a", Name: "Archer"}}}
	s2 := view.EncounterState{Name: "Second", ActiveCombatantID: "b"}

	if err := m.UpdateEncounter(ctx, "room-1", s1); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := m.UpdateEncounter(ctx, "room-1", s2); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	entry, err := m.Get(ctx, "room-1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if entry == nil || entry.State == nil {
		t.Fatal("Entry should exist with state")
	}
	if entry.State.Name != "Second" || entry.State.ActiveCombatantID != "b" {
		t.Errorf("Expected replacement state, got %+v", entry.State)
	}
	if len(entry.State.Combatants) != 0 {
		t.Error("Old combatants should not be merged into the replacement")
	}
}

func TestMemoryStateAndSettingsShareEntry(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if err := m.UpdateEncounter(ctx, "room-1", view.EncounterState{Name: "E"}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := m.UpdateSettings(ctx, "room-1", view.ViewSettings{DisplayPortraits: true}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	entry, _ := m.Get(ctx, "room-1")
	if entry == nil || entry.State == nil || entry.Settings == nil {
		t.Fatal("Entry should hold both state and settings")
	}

	count, _ := m.Count(ctx)
	if count != 1 {
		t.Errorf("Expected one entry, got %d", count)
	}
}

func TestMemoryAvailability(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	available, err := m.IsAvailable(ctx, "unseen")
	if err != nil || !available {
		t.Errorf("Unseen id should be available, got %v, %v", available, err)
	}

	m.UpdateSettings(ctx, "taken", view.ViewSettings{})
	available, _ = m.IsAvailable(ctx, "taken")
	if available {
		t.Error("Id with an entry should not be available")
	}
}

func TestMemoryClaimExactlyOneWinner(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	var wg sync.WaitGroup
	wins := make(chan bool, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			granted, err := m.Claim(ctx, "contested")
			if err != nil {
				t.Errorf("Unexpected error: %v", err)
				return
			}
			if granted {
				wins <- true
			}
		}()
	}
	wg.Wait()
	close(wins)

	winners := 0
	for range wins {
		winners++
	}
	if winners != 1 {
		t.Errorf("Expected exactly 1 winner, got %d", winners)
	}

	count, _ := m.Count(ctx)
	if count != 1 {
		t.Errorf("Expected exactly 1 entry after contested claim, got %d", count)
	}
}

func TestMemoryClaimedEntryStartsEmpty(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	granted, err := m.Claim(ctx, "fresh")
	if err != nil || !granted {
		t.Fatalf("Claim should succeed, got %v, %v", granted, err)
	}

	entry, _ := m.Get(ctx, "fresh")
	if entry == nil {
		t.Fatal("Reservation should create an entry")
	}
	if entry.State != nil || entry.Settings != nil {
		t.Error("Reserved entry should start empty")
	}
}

func TestMemoryDestroy(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	m.UpdateEncounter(ctx, "room-1", view.EncounterState{})
	if err := m.Destroy(ctx, "room-1"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	available, _ := m.IsAvailable(ctx, "room-1")
	if !available {
		t.Error("Destroyed id should be available again")
	}

	// Destroying an absent id is not an error.
	if err := m.Destroy(ctx, "never-existed"); err != nil {
		t.Errorf("Destroy of absent id should be a no-op, got %v", err)
	}
}

func TestMemoryGetReturnsCopy(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	m.UpdateEncounter(ctx, "room-1", view.EncounterState{Name: "Original"})

	entry, _ := m.Get(ctx, "room-1")
	entry.State.Name = "Mutated"

	again, _ := m.Get(ctx, "room-1")
	if again.State.Name != "Original" {
		t.Error("Mutating a returned entry should not affect the store")
	}
}
