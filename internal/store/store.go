package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"newsdesk/internal/core"
)

// Setting names for the four durable configuration entries.
const (
	SettingQueueWebhookURL   = "queueWebhookUrl"
	SettingPostNowWebhookURL = "postNowWebhookUrl"
	SettingAuthToken         = "authToken"
	SettingGeminiAPIKey      = "geminiApiKey"
)

// Store is the durable per-install storage: named settings, the current
// draft snapshot, and the accumulated discovery results. It is the
// server-side analog of the browser's persistent origin storage.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (creating if needed) the sqlite database under dataDir.
func NewStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "newsdesk.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return store, nil
}

// initialize creates the necessary tables.
func (s *Store) initialize() error {
	settingsTable := `
	CREATE TABLE IF NOT EXISTS settings (
		name TEXT PRIMARY KEY,
		value TEXT,
		updated_at DATETIME
	);`

	snapshotsTable := `
	CREATE TABLE IF NOT EXISTS snapshots (
		name TEXT PRIMARY KEY,
		body TEXT,
		updated_at DATETIME
	);`

	tables := []string{settingsTable, snapshotsTable}
	for _, table := range tables {
		if _, err := s.db.Exec(table); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// GetSetting returns the stored value for name, or fallback when the
// setting has never been written.
func (s *Store) GetSetting(name, fallback string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE name = ?`, name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return fallback, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read setting %s: %w", name, err)
	}
	return value, nil
}

// SetSetting writes a setting value, overwriting any previous value.
func (s *Store) SetSetting(name, value string) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO settings (name, value, updated_at) VALUES (?, ?, ?)`,
		name, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to write setting %s: %w", name, err)
	}
	return nil
}

const (
	snapshotDraft     = "draft"
	snapshotDiscovery = "discovery"
)

// SaveDraft persists the current draft snapshot.
func (s *Store) SaveDraft(draft core.Draft) error {
	return s.saveSnapshot(snapshotDraft, draft)
}

// LoadDraft returns the persisted draft, or a fresh empty draft when
// none has been saved yet.
func (s *Store) LoadDraft() (core.Draft, error) {
	var draft core.Draft
	found, err := s.loadSnapshot(snapshotDraft, &draft)
	if err != nil {
		return core.Draft{}, err
	}
	if !found {
		return core.NewDraft(), nil
	}
	return draft, nil
}

// DiscoverySnapshot bundles the accumulated discovery state.
type DiscoverySnapshot struct {
	Articles []core.FoundArticle    `json:"articles"`
	Sources  []core.GroundingSource `json:"sources"`
}

// SaveDiscovery persists the accumulated discovery results.
func (s *Store) SaveDiscovery(snapshot DiscoverySnapshot) error {
	return s.saveSnapshot(snapshotDiscovery, snapshot)
}

// LoadDiscovery returns the persisted discovery results, empty when none
// have been saved.
func (s *Store) LoadDiscovery() (DiscoverySnapshot, error) {
	var snapshot DiscoverySnapshot
	if _, err := s.loadSnapshot(snapshotDiscovery, &snapshot); err != nil {
		return DiscoverySnapshot{}, err
	}
	return snapshot, nil
}

func (s *Store) saveSnapshot(name string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s snapshot: %w", name, err)
	}
	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO snapshots (name, body, updated_at) VALUES (?, ?, ?)`,
		name, string(body), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to write %s snapshot: %w", name, err)
	}
	return nil
}

func (s *Store) loadSnapshot(name string, v any) (bool, error) {
	var body string
	err := s.db.QueryRow(`SELECT body FROM snapshots WHERE name = ?`, name).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s snapshot: %w", name, err)
	}
	if err := json.Unmarshal([]byte(body), v); err != nil {
		return false, fmt.Errorf("failed to unmarshal %s snapshot: %w", name, err)
	}
	return true, nil
}
