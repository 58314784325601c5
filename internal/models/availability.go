package models

import (
	"time"

	"github.com/google/uuid"
)

// AvailabilityType represents the per-date override type
// Matches PostgreSQL ENUM: availability_type
type AvailabilityType string

const (
	AvailabilityAvailable AvailabilityType = "available"
	AvailabilityBlocked   AvailabilityType = "blocked"
	AvailabilityLimited   AvailabilityType = "limited"
)

// TourAvailabilityEntry is an agent-configured override for a single
// (tour, calendar date) pair (tour_availability table). At most one entry
// exists per (tour, date); absence means the tour's default max group size
// applies.
type TourAvailabilityEntry struct {
	ID             uuid.UUID        `json:"id" db:"id"`
	TourID         uuid.UUID        `json:"tour_id" db:"tour_id"`
	Date           time.Time        `json:"date" db:"date"`
	Type           AvailabilityType `json:"type" db:"type"`
	SpotsAvailable *int             `json:"spots_available,omitempty" db:"spots_available"`
	Note           *string          `json:"note,omitempty" db:"note"`
	CreatedAt      time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at" db:"updated_at"`
}

// EffectiveCapacity resolves the date's spot limit given the tour default.
// Blocked dates have zero capacity; limited dates use the configured count.
func (e *TourAvailabilityEntry) EffectiveCapacity(defaultMax int) int {
	if e == nil {
		return defaultMax
	}
	switch e.Type {
	case AvailabilityBlocked:
		return 0
	case AvailabilityLimited:
		if e.SpotsAvailable != nil {
			return *e.SpotsAvailable
		}
		return defaultMax
	default:
		return defaultMax
	}
}

// UpsertAvailabilityRequest is the agent calendar write request
type UpsertAvailabilityRequest struct {
	Type           AvailabilityType `json:"type" binding:"required,oneof=available blocked limited"`
	SpotsAvailable *int             `json:"spots_available,omitempty"`
	Note           *string          `json:"note,omitempty"`
}

// DayAvailability is one day of the public availability view. It is derived
// from capacity accounting and carries no state of its own.
type DayAvailability struct {
	Date           string           `json:"date"`
	Available      bool             `json:"available"`
	Type           AvailabilityType `json:"type"`
	SpotsAvailable int              `json:"spots_available"`
	BookedSpots    int              `json:"booked_spots"`
	Reason         string           `json:"reason,omitempty"`
}
