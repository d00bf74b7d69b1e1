package db

import (
	"database/sql"
	_ "embed"
	"errors"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schema string

// Setting keys
const (
	SettingTheme    = "theme"
	SettingLastView = "last_view"
)

// Setting is one row of the settings table
type Setting struct {
	Key       string `db:"key"`
	Value     string `db:"value"`
	UpdatedAt string `db:"updated_at"`
}

// DB wraps the settings database connection
type DB struct {
	*sqlx.DB
}

// New opens the settings database at path and initializes the schema
func New(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	// Initialize schema
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return &DB{db}, nil
}

// GetSetting retrieves a setting value by key, empty when unset
func (db *DB) GetSetting(key string) (string, error) {
	var value string
	err := db.Get(&value, "SELECT value FROM settings WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

// SetSetting sets a setting value
func (db *DB) SetSetting(key, value string) error {
	_, err := db.Exec(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, key, value)
	return err
}

// Settings returns every saved setting ordered by key
func (db *DB) Settings() ([]Setting, error) {
	var settings []Setting
	err := db.Select(&settings, `
		SELECT key, value, COALESCE(CAST(updated_at AS TEXT), '') AS updated_at
		FROM settings ORDER BY key
	`)
	return settings, err
}

// Theme returns the saved theme name, or fallback when none is saved
func (db *DB) Theme(fallback string) string {
	v, err := db.GetSetting(SettingTheme)
	if err != nil || v == "" {
		return fallback
	}
	return v
}

// LastView returns the tool that was open when the app last quit
func (db *DB) LastView() string {
	v, _ := db.GetSetting(SettingLastView)
	return v
}
