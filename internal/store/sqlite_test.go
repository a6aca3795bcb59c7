package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/manpreetbhatti/beholder/internal/view"
)

func setupTestDB(t *testing.T) (*SQLite, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "beholder-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}

	dbPath := filepath.Join(tmpDir, "test.db")
	s, err := OpenSQLite(dbPath)
	if err != nil {
		os.RemoveAll(tmpDir)
		t.Fatalf("Failed to create database: %v", err)
	}

	cleanup := func() {
		s.Close()
		os.RemoveAll(tmpDir)
	}

	return s, cleanup
}

func TestSQLiteUpsertAndGet(t *testing.T) {
	s, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	state := view.EncounterState{
		Name:              "Dragon Fight",
		ActiveCombatantID: "c-1",
		Combatants:        []view.CombatantState{{ID: "c-1", Name: "Dragon", HPDisplay: "200/200"}},
	}
	if err := s.UpdateEncounter(ctx, "room-1", state); err != nil {
		t.Fatalf("Failed to update encounter: %v", err)
	}

	entry, err := s.Get(ctx, "room-1")
	if err != nil {
		t.Fatalf("Failed to get entry: %v", err)
	}
	if entry == nil || entry.State == nil {
		t.Fatal("Entry should exist with state")
	}
	if entry.State.Name != "Dragon Fight" || len(entry.State.Combatants) != 1 {
		t.Errorf("Stored state mismatch: %+v", entry.State)
	}
	if entry.Settings != nil {
		t.Error("Settings should be unset before any settings update")
	}

	// Replacement drops everything from the previous value.
	if err := s.UpdateEncounter(ctx, "room-1", view.EncounterState{Name: "Aftermath"}); err != nil {
		t.Fatalf("Failed to update encounter: %v", err)
	}
	entry, _ = s.Get(ctx, "room-1")
	if entry.State.Name != "Aftermath" || len(entry.State.Combatants) != 0 {
		t.Errorf("Expected wholesale replacement, got %+v", entry.State)
	}
}

func TestSQLiteSettingsUpsert(t *testing.T) {
	s, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	settings := view.ViewSettings{DisplayPortraits: true, CustomCSS: "body {}"}
	if err := s.UpdateSettings(ctx, "room-1", settings); err != nil {
		t.Fatalf("Failed to update settings: %v", err)
	}

	entry, err := s.Get(ctx, "room-1")
	if err != nil {
		t.Fatalf("Failed to get entry: %v", err)
	}
	if entry == nil || entry.Settings == nil {
		t.Fatal("Entry should exist with settings")
	}
	if !entry.Settings.DisplayPortraits || entry.Settings.CustomCSS != "body {}" {
		t.Errorf("Stored settings mismatch: %+v", entry.Settings)
	}
}

func TestSQLiteGetMissing(t *testing.T) {
	s, cleanup := setupTestDB(t)
	defer cleanup()

	entry, err := s.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if entry != nil {
		t.Error("Missing room should return nil entry")
	}
}

func TestSQLiteClaimConflict(t *testing.T) {
	s, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	granted, err := s.Claim(ctx, "dragons-lair")
	if err != nil {
		t.Fatalf("Failed to claim: %v", err)
	}
	if !granted {
		t.Fatal("First claim should be granted")
	}

	granted, err = s.Claim(ctx, "dragons-lair")
	if err != nil {
		t.Fatalf("Failed to claim: %v", err)
	}
	if granted {
		t.Error("Second claim for the same id should lose")
	}

	// Updates also make an id unclaimable.
	s.UpdateEncounter(ctx, "occupied", view.EncounterState{})
	granted, _ = s.Claim(ctx, "occupied")
	if granted {
		t.Error("Claim should lose against an id with stored state")
	}
}

func TestSQLiteDestroyReleases(t *testing.T) {
	s, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	s.Claim(ctx, "dragons-lair")
	if err := s.Destroy(ctx, "dragons-lair"); err != nil {
		t.Fatalf("Failed to destroy: %v", err)
	}

	available, err := s.IsAvailable(ctx, "dragons-lair")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !available {
		t.Error("Destroyed id should be claimable again")
	}

	if err := s.Destroy(ctx, "never-existed"); err != nil {
		t.Errorf("Destroy of absent id should be a no-op, got %v", err)
	}
}

func TestSQLiteCount(t *testing.T) {
	s, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		s.UpdateEncounter(ctx, id, view.EncounterState{})
	}

	count, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if count != 3 {
		t.Errorf("Expected 3 entries, got %d", count)
	}
}
