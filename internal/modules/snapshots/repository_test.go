package snapshots

import (
	"database/sql"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"

	"github.com/mfontana/overlay/internal/database"
	"github.com/mfontana/overlay/internal/modules/budget"
	"github.com/mfontana/overlay/internal/modules/instruments"
	"github.com/mfontana/overlay/internal/modules/portfolio"
	"github.com/mfontana/overlay/internal/modules/sizing"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(database.BookSchema)
	require.NoError(t, err)
	return db
}

func testResult(contracts int) *portfolio.Result {
	return &portfolio.Result{
		GeneratedAt: time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC),
		Config:      portfolio.ConfigEcho{ConfigID: "cfg-1", AUM: 100_000_000},
		Positions: []sizing.Position{
			{
				Class:          instruments.ClassFX,
				Instrument:     "fx",
				Ticker:         "WDOH26",
				ContractType:   instruments.TypeWDO,
				Direction:      budget.Short,
				Contracts:      contracts,
				ContractsExact: float64(contracts) - 0.2,
				RiskAllocation: 1_500_000,
				NotionalLocal:  10_000_000,
				Sensitivity:    sizing.Sensitivity{Kind: sizing.SensitivityFXDelta, Amount: -10_000_000},
				Margin:         1_100_000,
				EntryPrice:     5.20,
			},
			{
				Class:          instruments.ClassBelly,
				Instrument:     "belly",
				Ticker:         "DI1F31",
				ContractType:   instruments.TypeDI1,
				Direction:      budget.Long,
				Contracts:      600,
				ContractsExact: 602.6,
				RiskAllocation: 3_000_000,
				Sensitivity:    sizing.Sensitivity{Kind: sizing.SensitivityDV01, Amount: 602},
				EntryPrice:     62_656,
			},
		},
	}
}

func TestSaveAndActivePositions(t *testing.T) {
	repo := NewRepository(setupTestDB(t), zerolog.Nop())

	id, err := repo.Save("cfg-1", testResult(30))
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	positions, err := repo.ActivePositions("cfg-1")
	require.NoError(t, err)
	require.Len(t, positions, 2)

	byInstrument := make(map[string]sizing.Position)
	for _, pos := range positions {
		byInstrument[pos.Instrument] = pos
	}

	fx := byInstrument["fx"]
	assert.Equal(t, instruments.ClassFX, fx.Class)
	assert.Equal(t, instruments.TypeWDO, fx.ContractType)
	assert.Equal(t, budget.Short, fx.Direction)
	assert.Equal(t, 30, fx.Contracts)
	assert.Equal(t, sizing.SensitivityFXDelta, fx.Sensitivity.Kind)
	assert.InDelta(t, -10_000_000, fx.Sensitivity.Amount, 1e-6)
	assert.Equal(t, 5.20, fx.EntryPrice)
}

func TestSaveReplacesActivePositions(t *testing.T) {
	repo := NewRepository(setupTestDB(t), zerolog.Nop())

	_, err := repo.Save("cfg-1", testResult(30))
	require.NoError(t, err)
	_, err = repo.Save("cfg-1", testResult(45))
	require.NoError(t, err)

	positions, err := repo.ActivePositions("cfg-1")
	require.NoError(t, err)
	require.Len(t, positions, 2)
	for _, pos := range positions {
		if pos.Instrument == "fx" {
			assert.Equal(t, 45, pos.Contracts)
		}
	}

	// Both snapshots remain: the history is append-only.
	history, err := repo.History("cfg-1", 10)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestActivePositionsIsolatedPerConfig(t *testing.T) {
	repo := NewRepository(setupTestDB(t), zerolog.Nop())

	_, err := repo.Save("cfg-1", testResult(30))
	require.NoError(t, err)

	positions, err := repo.ActivePositions("cfg-2")
	require.NoError(t, err)
	assert.Empty(t, positions)
}

func TestActivePositionsSkipsUnknownInstrument(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db, zerolog.Nop())

	_, err := repo.Save("cfg-1", testResult(30))
	require.NoError(t, err)

	_, err = db.Exec(`
		INSERT INTO active_positions (
			config_id, instrument, contract_type, ticker, direction,
			contracts, contracts_exact, risk_allocation,
			notional_local, notional_foreign,
			sensitivity_kind, sensitivity, margin, entry_price, updated_at
		) VALUES ('cfg-1', 'bogus', 'XXX', 'XXXF26', 'long', 1, 1, 0, 0, 0, 'dv01', 0, 0, 0, '2026-02-10T00:00:00Z')`)
	require.NoError(t, err)

	positions, err := repo.ActivePositions("cfg-1")
	require.NoError(t, err)
	assert.Len(t, positions, 2)
}

func TestHistoryResultRoundTrip(t *testing.T) {
	repo := NewRepository(setupTestDB(t), zerolog.Nop())

	_, err := repo.Save("cfg-1", testResult(30))
	require.NoError(t, err)

	history, err := repo.History("cfg-1", 1)
	require.NoError(t, err)
	require.Len(t, history, 1)

	snap := history[0]
	assert.Equal(t, "cfg-1", snap.ConfigID)
	require.NotNil(t, snap.Result)
	assert.Equal(t, 100_000_000.0, snap.Result.Config.AUM)
	require.Len(t, snap.Result.Positions, 2)
}

func TestPruneOlderThan(t *testing.T) {
	repo := NewRepository(setupTestDB(t), zerolog.Nop())

	_, err := repo.Save("cfg-1", testResult(30))
	require.NoError(t, err)

	// A cutoff in the past keeps everything.
	deleted, err := repo.PruneOlderThan(time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Zero(t, deleted)

	// A future cutoff drops the snapshot but never the active book.
	deleted, err = repo.PruneOlderThan(time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	positions, err := repo.ActivePositions("cfg-1")
	require.NoError(t, err)
	assert.Len(t, positions, 2)
}
