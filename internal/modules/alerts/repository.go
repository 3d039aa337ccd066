package alerts

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// StoredAlert is a persisted alert row.
type StoredAlert struct {
	ID        string    `json:"id"`
	ConfigID  string    `json:"config_id"`
	Alert     Alert     `json:"alert"`
	CreatedAt time.Time `json:"created_at"`
}

// Repository persists raised alerts in book.db.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new alert repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "alerts").Logger(),
	}
}

// SaveAll persists a batch of raised alerts for a configuration.
func (r *Repository) SaveAll(configID string, alerts []Alert) error {
	now := time.Now().UTC().Format(time.RFC3339)
	for _, alert := range alerts {
		if _, err := r.db.Exec(`
			INSERT INTO alerts (id, config_id, severity, metric, value, threshold, message, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			uuid.NewString(), configID, string(alert.Severity), alert.Metric,
			alert.Value, alert.Threshold, alert.Message, now,
		); err != nil {
			return fmt.Errorf("failed to save alert %s: %w", alert.Metric, err)
		}
	}
	return nil
}

// Recent returns the most recent alerts for a configuration, newest first.
func (r *Repository) Recent(configID string, limit int) ([]StoredAlert, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(`
		SELECT id, config_id, severity, metric, value, threshold, message, created_at
		FROM alerts WHERE config_id = ?
		ORDER BY created_at DESC LIMIT ?`, configID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	var stored []StoredAlert
	for rows.Next() {
		var sa StoredAlert
		var severity, createdAt string
		if err := rows.Scan(&sa.ID, &sa.ConfigID, &severity, &sa.Alert.Metric,
			&sa.Alert.Value, &sa.Alert.Threshold, &sa.Alert.Message, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		sa.Alert.Severity = Severity(severity)
		sa.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		stored = append(stored, sa)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating alerts: %w", err)
	}
	return stored, nil
}
