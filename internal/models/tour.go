package models

import (
	"time"

	"github.com/google/uuid"
)

// TourStatus represents the publication state of a tour
// Matches PostgreSQL ENUM: tour_status
type TourStatus string

const (
	TourStatusDraft    TourStatus = "draft"
	TourStatusActive   TourStatus = "active"
	TourStatusPaused   TourStatus = "paused"
	TourStatusArchived TourStatus = "archived"
)

// AddonPriceType controls how an activity add-on is charged
type AddonPriceType string

const (
	AddonPriceFlat      AddonPriceType = "flat"       // one charge per booking
	AddonPricePerPerson AddonPriceType = "per_person" // charged per paying traveler
)

// Tour represents a bookable tour listing (tours table)
type Tour struct {
	ID                   uuid.UUID   `json:"id" db:"id"`
	AgentID              uuid.UUID   `json:"agent_id" db:"agent_id"`
	Title                string      `json:"title" db:"title"`
	Description          *string     `json:"description,omitempty" db:"description"`
	BasePrice            float64     `json:"base_price" db:"base_price"`
	Currency             string      `json:"currency" db:"currency"`
	DurationDays         int         `json:"duration_days" db:"duration_days"`
	MaxGroupSize         int         `json:"max_group_size" db:"max_group_size"`
	FreeCancellationDays int         `json:"free_cancellation_days" db:"free_cancellation_days"`
	Status               TourStatus  `json:"status" db:"status"`
	Images               StringArray `json:"images,omitempty" db:"images"`
	TourTypes            StringArray `json:"tour_types,omitempty" db:"tour_types"`
	CreatedAt            time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time   `json:"updated_at" db:"updated_at"`
}

// IsBookable reports whether the tour accepts new holds and bookings
func (t *Tour) IsBookable() bool {
	return t.Status == TourStatusActive
}

// Nights returns the number of accommodation nights a trip spans.
// A single-day tour with an overnight accommodation option still bills one night.
func (t *Tour) Nights() int {
	if t.DurationDays <= 1 {
		return 1
	}
	return t.DurationDays - 1
}

// AccommodationOption is a per-tour accommodation tier (tour_accommodations table)
type AccommodationOption struct {
	ID            uuid.UUID `json:"id" db:"id"`
	TourID        uuid.UUID `json:"tour_id" db:"tour_id"`
	Name          string    `json:"name" db:"name"`
	PricePerNight float64   `json:"price_per_night" db:"price_per_night"`
	PerPerson     bool      `json:"per_person" db:"per_person"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// ActivityAddon is a per-tour optional activity (tour_activities table)
type ActivityAddon struct {
	ID        uuid.UUID      `json:"id" db:"id"`
	TourID    uuid.UUID      `json:"tour_id" db:"tour_id"`
	Name      string         `json:"name" db:"name"`
	Price     float64        `json:"price" db:"price"`
	PriceType AddonPriceType `json:"price_type" db:"price_type"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
}
