package models

import (
	"time"

	"github.com/google/uuid"
)

// HoldStatus represents the stored status of a hold
// Matches PostgreSQL ENUM: hold_status
type HoldStatus string

const (
	HoldStatusActive   HoldStatus = "active"
	HoldStatusReleased HoldStatus = "released"
	HoldStatusConsumed HoldStatus = "consumed" // converted into a booking
)

// Hold is a time-boxed soft reservation against a (tour, start date) pair
// (holds table). Expiry is computed, not swept: a hold whose expires_at has
// passed never counts toward occupancy regardless of its stored status.
// Holds are kept for audit and are never hard-deleted.
type Hold struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	TourID    uuid.UUID  `json:"tour_id" db:"tour_id"`
	UserID    *uuid.UUID `json:"user_id,omitempty" db:"user_id"` // nil for guest checkout
	StartDate time.Time  `json:"start_date" db:"start_date"`
	EndDate   time.Time  `json:"end_date" db:"end_date"` // start + tour duration
	Spots     int        `json:"spots" db:"spots"`       // total party size

	// Quote context, carried so reserving the hold reprices the same inputs
	Adults           int       `json:"adults" db:"adults"`
	Children         int       `json:"children" db:"children"`
	Infants          int       `json:"infants" db:"infants"`
	AccommodationIDs UUIDArray `json:"accommodation_ids,omitempty" db:"accommodation_ids"`
	AddonIDs         UUIDArray `json:"addon_ids,omitempty" db:"addon_ids"`

	Status    HoldStatus `json:"status" db:"status"`
	ExpiresAt time.Time  `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

// IsExpired checks if the hold has passed its TTL at the given instant
func (h *Hold) IsExpired(now time.Time) bool {
	return now.After(h.ExpiresAt)
}

// IsLive reports whether the hold still occupies capacity
func (h *Hold) IsLive(now time.Time) bool {
	return h.Status == HoldStatusActive && !h.IsExpired(now)
}

// QuoteRequest is the inbound quote/checkout request
type QuoteRequest struct {
	TourID                   string   `json:"tour_id" binding:"required"`
	StartDate                string   `json:"start_date" binding:"required"` // "2026-07-15"
	Adults                   int      `json:"adults" binding:"required,min=1"`
	Children                 int      `json:"children" binding:"min=0"`
	Infants                  int      `json:"infants" binding:"min=0"`
	SelectedAccommodationIDs []string `json:"selected_accommodation_ids,omitempty"`
	SelectedAddonIDs         []string `json:"selected_addon_ids,omitempty"`
}

// PartySize returns the number of spots the quote occupies
func (r *QuoteRequest) PartySize() int {
	return r.Adults + r.Children + r.Infants
}

// QuoteResponse is returned after a successful quote with its hold
type QuoteResponse struct {
	HoldID         uuid.UUID      `json:"hold_id"`
	ExpiresAt      time.Time      `json:"expires_at"`
	TTLSeconds     int            `json:"ttl_seconds"` // remaining TTL for countdown
	PriceBreakdown PriceBreakdown `json:"price_breakdown"`
	DepositDue     float64        `json:"deposit_due"`
	Currency       string         `json:"currency"`
}

// HoldActionRequest extends or releases an existing hold
type HoldActionRequest struct {
	Action string `json:"action" binding:"required,oneof=extend release"`
}

// HoldActionResponse acknowledges a hold action
type HoldActionResponse struct {
	HoldID    uuid.UUID  `json:"hold_id"`
	Status    HoldStatus `json:"status"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}
