// Package trading manages the trade ticket queue in ledger.db. Tickets
// move through {pending, approved, executed, cancelled}; executed rows
// are never modified afterwards.
package trading

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mfontana/overlay/internal/modules/rebalancing"
)

// Status is the lifecycle state of a trade ticket.
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusExecuted  Status = "executed"
	StatusCancelled Status = "cancelled"
)

// validTransitions encodes the allowed ticket lifecycle.
var validTransitions = map[Status][]Status{
	StatusPending:  {StatusApproved, StatusCancelled},
	StatusApproved: {StatusExecuted, StatusCancelled},
}

// Ticket is one queued trade.
type Ticket struct {
	ID            string     `json:"id"`
	ConfigID      string     `json:"config_id"`
	Instrument    string     `json:"instrument"`
	Ticker        string     `json:"ticker"`
	Side          string     `json:"side"` // BUY or SELL
	Contracts     int        `json:"contracts"`
	Notional      float64    `json:"notional"`
	EstimatedCost float64    `json:"estimated_cost"`
	Status        Status     `json:"status"`
	Reason        string     `json:"reason"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	ExecutedAt    *time.Time `json:"executed_at,omitempty"`
}

// ticketColumns avoids SELECT *; order must match scanTicket.
const ticketColumns = `id, config_id, instrument, ticker, side, contracts, notional, est_cost, status, reason, created_at, updated_at, executed_at`

// TicketRepository handles trade ticket database operations.
type TicketRepository struct {
	db  *sql.DB // ledger.db - trade_tickets table
	log zerolog.Logger
}

// NewTicketRepository creates a new trade ticket repository.
func NewTicketRepository(db *sql.DB, log zerolog.Logger) *TicketRepository {
	return &TicketRepository{
		db:  db,
		log: log.With().Str("repo", "trade_tickets").Logger(),
	}
}

// EnqueuePlan creates pending tickets for every non-HOLD trade of a
// rebalancing plan. Returns the created tickets.
func (r *TicketRepository) EnqueuePlan(configID string, plan rebalancing.Plan) ([]Ticket, error) {
	now := time.Now().UTC()
	var tickets []Ticket

	for _, trade := range plan.Trades {
		if trade.Action == rebalancing.Hold {
			continue
		}

		contracts := trade.ContractsDelta
		if contracts < 0 {
			contracts = -contracts
		}

		ticket := Ticket{
			ID:            uuid.NewString(),
			ConfigID:      configID,
			Instrument:    trade.Instrument,
			Ticker:        trade.Ticker,
			Side:          string(trade.Action),
			Contracts:     contracts,
			Notional:      trade.NotionalDelta,
			EstimatedCost: trade.EstimatedCost,
			Status:        StatusPending,
			Reason:        trade.Reason,
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		if _, err := r.db.Exec(`
			INSERT INTO trade_tickets (id, config_id, instrument, ticker, side, contracts, notional, est_cost, status, reason, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			ticket.ID, ticket.ConfigID, ticket.Instrument, ticket.Ticker,
			ticket.Side, ticket.Contracts, ticket.Notional, ticket.EstimatedCost,
			string(ticket.Status), ticket.Reason,
			now.Format(time.RFC3339), now.Format(time.RFC3339),
		); err != nil {
			return nil, fmt.Errorf("failed to enqueue ticket for %s: %w", trade.Instrument, err)
		}
		tickets = append(tickets, ticket)
	}

	r.log.Info().Str("config_id", configID).Int("tickets", len(tickets)).Msg("Trade plan enqueued")
	return tickets, nil
}

// Get returns one ticket by id.
func (r *TicketRepository) Get(id string) (*Ticket, error) {
	row := r.db.QueryRow(`SELECT `+ticketColumns+` FROM trade_tickets WHERE id = ?`, id)
	ticket, err := scanTicket(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket %s: %w", id, err)
	}
	return &ticket, nil
}

// ListByStatus returns tickets for a configuration filtered by status;
// an empty status lists everything for the config.
func (r *TicketRepository) ListByStatus(configID string, status Status) ([]Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM trade_tickets WHERE config_id = ?`
	args := []interface{}{configID}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tickets: %w", err)
	}
	defer rows.Close()

	var tickets []Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets = append(tickets, ticket)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tickets: %w", err)
	}
	return tickets, nil
}

// Transition moves a ticket to a new status, validating the lifecycle.
// Executing a ticket stamps executed_at.
func (r *TicketRepository) Transition(id string, to Status) error {
	ticket, err := r.Get(id)
	if err != nil {
		return err
	}
	if ticket == nil {
		return fmt.Errorf("ticket %s not found", id)
	}

	if !transitionAllowed(ticket.Status, to) {
		return fmt.Errorf("invalid ticket transition %s -> %s for %s", ticket.Status, to, id)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if to == StatusExecuted {
		_, err = r.db.Exec(`UPDATE trade_tickets SET status = ?, updated_at = ?, executed_at = ? WHERE id = ?`,
			string(to), now, now, id)
	} else {
		_, err = r.db.Exec(`UPDATE trade_tickets SET status = ?, updated_at = ? WHERE id = ?`,
			string(to), now, id)
	}
	if err != nil {
		return fmt.Errorf("failed to transition ticket %s: %w", id, err)
	}

	r.log.Info().Str("ticket_id", id).Str("from", string(ticket.Status)).Str("to", string(to)).Msg("Ticket transitioned")
	return nil
}

func transitionAllowed(from, to Status) bool {
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// scanner abstracts sql.Row and sql.Rows for scanTicket.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTicket(s scanner) (Ticket, error) {
	var ticket Ticket
	var status, createdAt, updatedAt string
	var executedAt sql.NullString

	err := s.Scan(
		&ticket.ID, &ticket.ConfigID, &ticket.Instrument, &ticket.Ticker,
		&ticket.Side, &ticket.Contracts, &ticket.Notional, &ticket.EstimatedCost,
		&status, &ticket.Reason, &createdAt, &updatedAt, &executedAt,
	)
	if err != nil {
		return Ticket{}, err
	}

	ticket.Status = Status(status)
	ticket.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	ticket.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	if executedAt.Valid {
		t, _ := time.Parse(time.RFC3339, executedAt.String)
		ticket.ExecutedAt = &t
	}
	return ticket, nil
}
