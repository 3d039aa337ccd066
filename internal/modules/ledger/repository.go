// Package ledger maintains the append-only daily P&L ledger in
// ledger.db, keyed by (config, date). One row per date; rows are never
// updated once written.
package ledger

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Entry is one daily P&L ledger row.
type Entry struct {
	ConfigID      string    `json:"config_id"`
	Date          string    `json:"date"` // YYYY-MM-DD
	BookValue     float64   `json:"book_value"`
	DailyPnL      float64   `json:"daily_pnl"`
	CumulativePnL float64   `json:"cumulative_pnl"`
	CreatedAt     time.Time `json:"created_at"`
}

// Repository handles P&L ledger database operations.
type Repository struct {
	db  *sql.DB // ledger.db - pnl_ledger table
	log zerolog.Logger
}

// NewRepository creates a new P&L ledger repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "pnl_ledger").Logger(),
	}
}

// Append records the book value for a date, deriving daily P&L against
// the latest prior entry and the running cumulative P&L. Appending a
// second entry for the same date is an error: the ledger is append-only.
func (r *Repository) Append(configID, date string, bookValue float64) (*Entry, error) {
	prev, err := r.Latest(configID)
	if err != nil {
		return nil, err
	}

	entry := Entry{
		ConfigID:  configID,
		Date:      date,
		BookValue: bookValue,
		CreatedAt: time.Now().UTC(),
	}
	if prev != nil {
		entry.DailyPnL = bookValue - prev.BookValue
		entry.CumulativePnL = prev.CumulativePnL + entry.DailyPnL
	}

	_, err = r.db.Exec(`
		INSERT INTO pnl_ledger (config_id, entry_date, book_value, daily_pnl, cumulative_pnl, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		entry.ConfigID, entry.Date, entry.BookValue, entry.DailyPnL,
		entry.CumulativePnL, entry.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") || strings.Contains(err.Error(), "PRIMARY") {
			return nil, fmt.Errorf("ledger entry for %s on %s already exists: %w", configID, date, err)
		}
		return nil, fmt.Errorf("failed to append ledger entry: %w", err)
	}

	r.log.Info().Str("config_id", configID).Str("date", date).Float64("daily_pnl", entry.DailyPnL).Msg("Ledger entry appended")
	return &entry, nil
}

// Latest returns the most recent ledger entry for a configuration, or
// nil when the ledger is empty.
func (r *Repository) Latest(configID string) (*Entry, error) {
	row := r.db.QueryRow(`
		SELECT config_id, entry_date, book_value, daily_pnl, cumulative_pnl, created_at
		FROM pnl_ledger WHERE config_id = ?
		ORDER BY entry_date DESC LIMIT 1`, configID)

	entry, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest ledger entry: %w", err)
	}
	return &entry, nil
}

// Range returns ledger entries between two dates inclusive, oldest first.
func (r *Repository) Range(configID, from, to string) ([]Entry, error) {
	rows, err := r.db.Query(`
		SELECT config_id, entry_date, book_value, daily_pnl, cumulative_pnl, created_at
		FROM pnl_ledger
		WHERE config_id = ? AND entry_date >= ? AND entry_date <= ?
		ORDER BY entry_date ASC`, configID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger range: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledger entries: %w", err)
	}
	return entries, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(s scanner) (Entry, error) {
	var entry Entry
	var createdAt string
	err := s.Scan(&entry.ConfigID, &entry.Date, &entry.BookValue,
		&entry.DailyPnL, &entry.CumulativePnL, &createdAt)
	if err != nil {
		return Entry{}, err
	}
	entry.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return entry, nil
}
