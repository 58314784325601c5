package database

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/tourvista/tours-backend/internal/models"
)

// TourRepository handles tour database operations
type TourRepository struct {
	db DB
}

// NewTourRepository creates a new TourRepository
func NewTourRepository(db DB) *TourRepository {
	return &TourRepository{db: db}
}

// GetByID retrieves a tour by ID. Returns nil without error when missing.
func (r *TourRepository) GetByID(tourID uuid.UUID) (*models.Tour, error) {
	var tour models.Tour
	query := `
		SELECT id, agent_id, title, description, base_price, currency,
		       duration_days, max_group_size, free_cancellation_days, status,
		       images, tour_types, created_at, updated_at
		FROM tours
		WHERE id = $1`

	err := r.db.Get(&tour, query, tourID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tour: %w", err)
	}
	return &tour, nil
}

// GetPricingConfig retrieves the tour's pricing config, falling back to
// platform defaults when no row exists.
func (r *TourRepository) GetPricingConfig(tourID uuid.UUID) (*models.PricingConfig, error) {
	var cfg models.PricingConfig
	query := `
		SELECT tour_id, child_discount_percent, child_min_age, child_max_age,
		       infant_max_age, infant_price, service_fee_percent, service_fee_fixed,
		       group_discount_threshold, group_discount_percent,
		       early_bird_days, early_bird_percent,
		       deposit_enabled, deposit_percent, deposit_minimum, updated_at
		FROM tour_pricing_configs
		WHERE tour_id = $1`

	err := r.db.Get(&cfg, query, tourID)
	if err == sql.ErrNoRows {
		return models.DefaultPricingConfig(tourID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pricing config: %w", err)
	}
	return &cfg, nil
}

// GetAccommodations retrieves the selected accommodation options of a tour
func (r *TourRepository) GetAccommodations(tourID uuid.UUID, ids []string) ([]models.AccommodationOption, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `
		SELECT id, tour_id, name, price_per_night, per_person, created_at
		FROM tour_accommodations
		WHERE tour_id = $1 AND id = ANY($2)
		ORDER BY name`

	var opts []models.AccommodationOption
	if err := r.db.Select(&opts, query, tourID, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("failed to get accommodations: %w", err)
	}
	return opts, nil
}

// GetActivityAddons retrieves the selected activity add-ons of a tour
func (r *TourRepository) GetActivityAddons(tourID uuid.UUID, ids []string) ([]models.ActivityAddon, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `
		SELECT id, tour_id, name, price, price_type, created_at
		FROM tour_activities
		WHERE tour_id = $1 AND id = ANY($2)
		ORDER BY name`

	var addons []models.ActivityAddon
	if err := r.db.Select(&addons, query, tourID, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("failed to get activity addons: %w", err)
	}
	return addons, nil
}
