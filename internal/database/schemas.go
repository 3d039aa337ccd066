package database

// schemas maps database names to their DDL. Each database owns a small,
// focused set of tables:
//
//   - config.db: settings and alert thresholds
//   - book.db:   snapshot history, active position sets, raised alerts
//   - ledger.db: trade tickets and the daily P&L ledger (append-only)
var schemas = map[string]string{
	"config": ConfigSchema,
	"book":   BookSchema,
	"ledger": LedgerSchema,
}

// ConfigSchema is the DDL for config.db. Exported for test setup.
const ConfigSchema = `
CREATE TABLE IF NOT EXISTS settings (
    key        TEXT PRIMARY KEY,
    value      TEXT NOT NULL,
    updated_at TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS alert_thresholds (
    metric         TEXT PRIMARY KEY,
    warn_level     REAL NOT NULL,
    critical_level REAL NOT NULL,
    updated_at     TEXT NOT NULL DEFAULT (datetime('now'))
);
`

// BookSchema is the DDL for book.db. Exported for test setup.
const BookSchema = `
CREATE TABLE IF NOT EXISTS snapshots (
    id         TEXT PRIMARY KEY,
    config_id  TEXT NOT NULL,
    created_at TEXT NOT NULL,
    payload    TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_snapshots_config_created
    ON snapshots (config_id, created_at DESC);

CREATE TABLE IF NOT EXISTS active_positions (
    config_id        TEXT NOT NULL,
    instrument       TEXT NOT NULL,
    contract_type    TEXT NOT NULL,
    ticker           TEXT NOT NULL,
    direction        TEXT NOT NULL,
    contracts        INTEGER NOT NULL,
    contracts_exact  REAL NOT NULL,
    risk_allocation  REAL NOT NULL,
    notional_local   REAL NOT NULL,
    notional_foreign REAL NOT NULL,
    sensitivity_kind TEXT NOT NULL,
    sensitivity      REAL NOT NULL,
    margin           REAL NOT NULL,
    entry_price      REAL NOT NULL,
    updated_at       TEXT NOT NULL,
    PRIMARY KEY (config_id, instrument)
);

CREATE TABLE IF NOT EXISTS alerts (
    id         TEXT PRIMARY KEY,
    config_id  TEXT NOT NULL,
    severity   TEXT NOT NULL,
    metric     TEXT NOT NULL,
    value      REAL NOT NULL,
    threshold  REAL NOT NULL,
    message    TEXT NOT NULL,
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_alerts_config_created
    ON alerts (config_id, created_at DESC);
`

// LedgerSchema is the DDL for ledger.db. Exported for test setup.
const LedgerSchema = `
CREATE TABLE IF NOT EXISTS trade_tickets (
    id          TEXT PRIMARY KEY,
    config_id   TEXT NOT NULL,
    instrument  TEXT NOT NULL,
    ticker      TEXT NOT NULL,
    side        TEXT NOT NULL,
    contracts   INTEGER NOT NULL,
    notional    REAL NOT NULL,
    est_cost    REAL NOT NULL,
    status      TEXT NOT NULL DEFAULT 'pending',
    reason      TEXT NOT NULL DEFAULT '',
    created_at  TEXT NOT NULL,
    updated_at  TEXT NOT NULL,
    executed_at TEXT
);

CREATE INDEX IF NOT EXISTS idx_trade_tickets_config_status
    ON trade_tickets (config_id, status);

CREATE TABLE IF NOT EXISTS pnl_ledger (
    config_id      TEXT NOT NULL,
    entry_date     TEXT NOT NULL,
    book_value     REAL NOT NULL,
    daily_pnl      REAL NOT NULL,
    cumulative_pnl REAL NOT NULL,
    created_at     TEXT NOT NULL,
    PRIMARY KEY (config_id, entry_date)
);
`
