package bridge

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/stridetrack/stridetrack/internal/models"
)

// snapshotKey is the single row the widget store holds. The blob is the
// whole serialized snapshot; partial updates are not a thing here.
const snapshotKey = "widget_snapshot"

// SQLiteStore keeps the snapshot in a local SQLite file, the on-device
// equivalent of an app-group container shared with widget processes.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the snapshot store at dir/widget.db.
func OpenSQLite(dir string) (*SQLiteStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating snapshot dir %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "widget.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening snapshot db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS snapshots (
		key        TEXT PRIMARY KEY,
		data       TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating snapshot table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Save replaces the stored snapshot. Last writer wins.
func (s *SQLiteStore) Save(ctx context.Context, snap models.WidgetSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshaling snapshot: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO snapshots (key, data, updated_at) VALUES (?, ?, ?)`,
		snapshotKey, string(data), snap.LastUpdated)
	if err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}

// Load returns the stored snapshot, or ErrStaleSnapshot when absent or
// unreadable.
func (s *SQLiteStore) Load(ctx context.Context) (models.WidgetSnapshot, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM snapshots WHERE key = ?`, snapshotKey,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return models.WidgetSnapshot{}, fmt.Errorf("%w: no snapshot stored", models.ErrStaleSnapshot)
	}
	if err != nil {
		return models.WidgetSnapshot{}, fmt.Errorf("%w: %v", models.ErrStaleSnapshot, err)
	}

	var snap models.WidgetSnapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return models.WidgetSnapshot{}, fmt.Errorf("%w: corrupt snapshot: %v", models.ErrStaleSnapshot, err)
	}
	return snap, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
