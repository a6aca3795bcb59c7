package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/manpreetbhatti/beholder/internal/view"
)

// SQLite keeps player views durable across restarts for single-instance
// deployments.
type SQLite struct {
	db *sql.DB
}

func OpenSQLite(dbPath string) (*SQLite, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, err
	}

	if err := createTables(db); err != nil {
		return nil, err
	}

	log.Printf("Player view database initialized at %s", dbPath)
	return &SQLite{db: db}, nil
}

func createTables(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS player_views (
		room_id TEXT PRIMARY KEY,
		encounter_state TEXT,
		view_settings TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`

	_, err := db.Exec(schema)
	return err
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) UpdateEncounter(ctx context.Context, roomID string, state view.EncounterState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal encounter state: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO player_views (room_id, encounter_state)
		VALUES (?, ?)
		ON CONFLICT(room_id) DO UPDATE SET
			encounter_state = excluded.encounter_state,
			updated_at = CURRENT_TIMESTAMP
	`, roomID, string(data))
	return err
}

func (s *SQLite) UpdateSettings(ctx context.Context, roomID string, settings view.ViewSettings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshal view settings: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO player_views (room_id, view_settings)
		VALUES (?, ?)
		ON CONFLICT(room_id) DO UPDATE SET
			view_settings = excluded.view_settings,
			updated_at = CURRENT_TIMESTAMP
	`, roomID, string(data))
	return err
}

func (s *SQLite) Get(ctx context.Context, roomID string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT encounter_state, view_settings FROM player_views WHERE room_id = ?",
		roomID,
	)

	var stateJSON, settingsJSON sql.NullString
	err := row.Scan(&stateJSON, &settingsJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	entry := &Entry{}
	if stateJSON.Valid {
		var state view.EncounterState
		if err := json.Unmarshal([]byte(stateJSON.String), &state); err != nil {
			return nil, fmt.Errorf("unmarshal encounter state: %w", err)
		}
		entry.State = &state
	}
	if settingsJSON.Valid {
		var settings view.ViewSettings
		if err := json.Unmarshal([]byte(settingsJSON.String), &settings); err != nil {
			return nil, fmt.Errorf("unmarshal view settings: %w", err)
		}
		entry.Settings = &settings
	}
	return entry, nil
}

func (s *SQLite) IsAvailable(ctx context.Context, roomID string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM player_views WHERE room_id = ?",
		roomID,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

// Claim relies on the primary key: the insert is ignored when a row
// already exists, and the affected-row count says who won.
func (s *SQLite) Claim(ctx context.Context, roomID string) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO player_views (room_id) VALUES (?)",
		roomID,
	)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (s *SQLite) Destroy(ctx context.Context, roomID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM player_views WHERE room_id = ?", roomID)
	return err
}

func (s *SQLite) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM player_views").Scan(&count)
	return count, err
}
