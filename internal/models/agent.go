package models

import (
	"time"

	"github.com/google/uuid"
)

// Agent is a tour operator account (agents table). Only the fields the
// booking engine needs are modeled; profile management lives elsewhere.
type Agent struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	Name         string    `json:"name" db:"name"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Status       string    `json:"status" db:"status"` // "active", "suspended"
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// AgentLoginRequest authenticates an agent for calendar management
type AgentLoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AgentLoginResponse carries the issued tokens
type AgentLoginResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	AgentID      uuid.UUID `json:"agent_id"`
	Name         string    `json:"name"`
}
