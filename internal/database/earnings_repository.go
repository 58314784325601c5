package database

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tourvista/tours-backend/internal/models"
)

// EarningsRepository handles the agent earnings ledger
type EarningsRepository struct {
	db DB
}

// NewEarningsRepository creates a new EarningsRepository
func NewEarningsRepository(db DB) *EarningsRepository {
	return &EarningsRepository{db: db}
}

// CreateIfAbsent inserts a ledger entry, skipping silently when an entry of
// the same type already exists for the booking. Duplicate payment-success
// notifications therefore never double-credit an agent.
func (r *EarningsRepository) CreateIfAbsent(q Queryer, entry *models.AgentEarning) (bool, error) {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	entry.CreatedAt = time.Now()

	query := `
		INSERT INTO agent_earnings (
			id, agent_id, booking_id, entry_type, amount, created_at
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (booking_id, entry_type) DO NOTHING`

	result, err := q.Exec(query,
		entry.ID, entry.AgentID, entry.BookingID,
		entry.EntryType, entry.Amount, entry.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to create earnings entry: %w", err)
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

// SumForAgent returns the agent's net ledger balance
func (r *EarningsRepository) SumForAgent(agentID uuid.UUID) (float64, error) {
	var total float64
	query := `SELECT COALESCE(SUM(amount), 0) FROM agent_earnings WHERE agent_id = $1`
	if err := r.db.Get(&total, query, agentID); err != nil {
		return 0, fmt.Errorf("failed to sum agent earnings: %w", err)
	}
	return total, nil
}
