// Package snapshots persists portfolio results as an append-only
// snapshot history plus an atomically replaced active position set per
// configuration.
package snapshots

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mfontana/overlay/internal/database"
	"github.com/mfontana/overlay/internal/modules/budget"
	"github.com/mfontana/overlay/internal/modules/instruments"
	"github.com/mfontana/overlay/internal/modules/portfolio"
	"github.com/mfontana/overlay/internal/modules/sizing"
)

// Snapshot is one persisted portfolio result.
type Snapshot struct {
	ID        string            `json:"id"`
	ConfigID  string            `json:"config_id"`
	CreatedAt time.Time         `json:"created_at"`
	Result    *portfolio.Result `json:"result"`
}

// Repository handles snapshot and active-position persistence in book.db.
//
// Concurrent saves for the same configuration are serialized through a
// per-config mutex so that two rebalance requests cannot interleave into
// an inconsistent active position set; the snapshot history itself is
// append-only and needs no such guard.
type Repository struct {
	db  *sql.DB // book.db
	log zerolog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewRepository creates a new snapshot repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:    db,
		log:   log.With().Str("repo", "snapshots").Logger(),
		locks: make(map[string]*sync.Mutex),
	}
}

// configLock returns the mutex serializing writes for one config id.
func (r *Repository) configLock(configID string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	lock, ok := r.locks[configID]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[configID] = lock
	}
	return lock
}

// Save appends a snapshot and replaces the active position set for the
// configuration inside a single transaction. Returns the snapshot id.
func (r *Repository) Save(configID string, result *portfolio.Result) (string, error) {
	lock := r.configLock(configID)
	lock.Lock()
	defer lock.Unlock()

	payload, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("failed to marshal snapshot payload: %w", err)
	}

	id := uuid.NewString()
	now := time.Now().UTC().Format(time.RFC3339)

	err = database.WithTransaction(r.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`
			INSERT INTO snapshots (id, config_id, created_at, payload)
			VALUES (?, ?, ?, ?)`,
			id, configID, now, string(payload),
		); err != nil {
			return fmt.Errorf("failed to insert snapshot: %w", err)
		}

		if _, err := tx.Exec(`DELETE FROM active_positions WHERE config_id = ?`, configID); err != nil {
			return fmt.Errorf("failed to clear active positions: %w", err)
		}

		for _, pos := range result.Positions {
			if _, err := tx.Exec(`
				INSERT INTO active_positions (
					config_id, instrument, contract_type, ticker, direction,
					contracts, contracts_exact, risk_allocation,
					notional_local, notional_foreign,
					sensitivity_kind, sensitivity, margin, entry_price, updated_at
				) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				configID, pos.Instrument, string(pos.ContractType), pos.Ticker,
				string(pos.Direction), pos.Contracts, pos.ContractsExact,
				pos.RiskAllocation, pos.NotionalLocal, pos.NotionalForeign,
				string(pos.Sensitivity.Kind), pos.Sensitivity.Amount,
				pos.Margin, pos.EntryPrice, now,
			); err != nil {
				return fmt.Errorf("failed to insert active position %s: %w", pos.Instrument, err)
			}
		}

		return nil
	})
	if err != nil {
		return "", err
	}

	r.log.Info().Str("config_id", configID).Str("snapshot_id", id).Msg("Snapshot saved")
	return id, nil
}

// ActivePositions returns the current active position set for a
// configuration, as persisted by the last Save. Returns an empty slice
// when no book exists yet.
func (r *Repository) ActivePositions(configID string) ([]sizing.Position, error) {
	rows, err := r.db.Query(`
		SELECT instrument, contract_type, ticker, direction,
			contracts, contracts_exact, risk_allocation,
			notional_local, notional_foreign,
			sensitivity_kind, sensitivity, margin, entry_price
		FROM active_positions WHERE config_id = ?`, configID)
	if err != nil {
		return nil, fmt.Errorf("failed to query active positions: %w", err)
	}
	defer rows.Close()

	var positions []sizing.Position
	for rows.Next() {
		var pos sizing.Position
		var instrument, contractType, direction, sensKind string
		if err := rows.Scan(
			&instrument, &contractType, &pos.Ticker, &direction,
			&pos.Contracts, &pos.ContractsExact, &pos.RiskAllocation,
			&pos.NotionalLocal, &pos.NotionalForeign,
			&sensKind, &pos.Sensitivity.Amount, &pos.Margin, &pos.EntryPrice,
		); err != nil {
			return nil, fmt.Errorf("failed to scan active position: %w", err)
		}

		class, ok := instruments.ParseClass(instrument)
		if !ok {
			// Unknown instrument rows are skipped rather than failing the
			// whole read; the next Save replaces them anyway.
			r.log.Warn().Str("instrument", instrument).Msg("Skipping unknown instrument in active positions")
			continue
		}
		pos.Class = class
		pos.Instrument = instrument
		pos.ContractType = instruments.ContractType(contractType)
		pos.Direction = budget.Direction(direction)
		pos.Sensitivity.Kind = sizing.SensitivityKind(sensKind)
		positions = append(positions, pos)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating active positions: %w", err)
	}

	return positions, nil
}

// History returns the most recent snapshots for a configuration, newest
// first.
func (r *Repository) History(configID string, limit int) ([]Snapshot, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.Query(`
		SELECT id, config_id, created_at, payload
		FROM snapshots WHERE config_id = ?
		ORDER BY created_at DESC LIMIT ?`, configID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []Snapshot
	for rows.Next() {
		var snap Snapshot
		var createdAt, payload string
		if err := rows.Scan(&snap.ID, &snap.ConfigID, &createdAt, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snap.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		if err := json.Unmarshal([]byte(payload), &snap.Result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal snapshot %s: %w", snap.ID, err)
		}
		snapshots = append(snapshots, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshots: %w", err)
	}

	return snapshots, nil
}

// PruneOlderThan deletes snapshots older than the cutoff. Active position
// sets are never pruned. Returns the number of deleted rows.
func (r *Repository) PruneOlderThan(cutoff time.Time) (int64, error) {
	res, err := r.db.Exec(`DELETE FROM snapshots WHERE created_at < ?`,
		cutoff.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("failed to prune snapshots: %w", err)
	}
	deleted, _ := res.RowsAffected()
	if deleted > 0 {
		r.log.Info().Int64("deleted", deleted).Msg("Pruned old snapshots")
	}
	return deleted, nil
}
