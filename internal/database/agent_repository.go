package database

import (
	"database/sql"
	"fmt"

	"github.com/tourvista/tours-backend/internal/models"
)

// AgentRepository handles agent account lookups
type AgentRepository struct {
	db DB
}

// NewAgentRepository creates a new AgentRepository
func NewAgentRepository(db DB) *AgentRepository {
	return &AgentRepository{db: db}
}

// GetByEmail retrieves an agent by email. Returns nil without error when missing.
func (r *AgentRepository) GetByEmail(email string) (*models.Agent, error) {
	var agent models.Agent
	query := `
		SELECT id, email, name, password_hash, status, created_at, updated_at
		FROM agents
		WHERE email = $1`

	err := r.db.Get(&agent, query, email)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get agent: %w", err)
	}
	return &agent, nil
}
