// Package settings provides the repository for application settings
// stored in config.db. Settings are key-value pairs that override
// environment defaults at runtime (portfolio defaults, alert thresholds,
// job schedules) without restarting the application.
package settings

import (
	"database/sql"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"
)

// Repository handles settings database operations. Settings are stored
// as strings and converted to appropriate types when retrieved.
type Repository struct {
	db  *sql.DB // config.db - settings table
	log zerolog.Logger
}

// NewRepository creates a new settings repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "settings").Logger(),
	}
}

// Get retrieves a setting value by key. Returns nil if the setting
// doesn't exist (not an error).
func (r *Repository) Get(key string) (*string, error) {
	var value string
	err := r.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	return &value, nil
}

// GetFloat retrieves a setting as a float64. Returns nil when the key is
// absent; a malformed stored value is an error.
func (r *Repository) GetFloat(key string) (*float64, error) {
	value, err := r.Get(key)
	if err != nil || value == nil {
		return nil, err
	}
	f, err := strconv.ParseFloat(*value, 64)
	if err != nil {
		return nil, fmt.Errorf("setting %s is not a float: %w", key, err)
	}
	return &f, nil
}

// GetBool retrieves a setting as a bool. Returns nil when the key is absent.
func (r *Repository) GetBool(key string) (*bool, error) {
	value, err := r.Get(key)
	if err != nil || value == nil {
		return nil, err
	}
	b, err := strconv.ParseBool(*value)
	if err != nil {
		return nil, fmt.Errorf("setting %s is not a bool: %w", key, err)
	}
	return &b, nil
}

// Set stores a setting value, replacing any existing value for the key.
func (r *Repository) Set(key, value string) error {
	_, err := r.db.Exec(`
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, datetime('now'))
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to set setting %s: %w", key, err)
	}
	return nil
}

// SetFloat stores a float setting.
func (r *Repository) SetFloat(key string, value float64) error {
	return r.Set(key, strconv.FormatFloat(value, 'f', -1, 64))
}

// All returns every setting as a map.
func (r *Repository) All() (map[string]string, error) {
	rows, err := r.db.Query(`SELECT key, value FROM settings`)
	if err != nil {
		return nil, fmt.Errorf("failed to query settings: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		out[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating settings: %w", err)
	}
	return out, nil
}
