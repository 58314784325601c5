package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tourvista/tours-backend/internal/models"
)

// AvailabilityRepository handles per-date availability overrides
type AvailabilityRepository struct {
	db DB
}

// NewAvailabilityRepository creates a new AvailabilityRepository
func NewAvailabilityRepository(db DB) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

// Upsert creates or replaces the override for a (tour, date) pair.
// The unique constraint on (tour_id, date) keeps at most one entry per day.
func (r *AvailabilityRepository) Upsert(entry *models.TourAvailabilityEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	now := time.Now()
	entry.CreatedAt = now
	entry.UpdatedAt = now

	query := `
		INSERT INTO tour_availability (
			id, tour_id, date, type, spots_available, note, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (tour_id, date) DO UPDATE SET
			type = EXCLUDED.type,
			spots_available = EXCLUDED.spots_available,
			note = EXCLUDED.note,
			updated_at = EXCLUDED.updated_at`

	_, err := r.db.Exec(query,
		entry.ID, entry.TourID, entry.Date, entry.Type,
		entry.SpotsAvailable, entry.Note, entry.CreatedAt, entry.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert availability entry: %w", err)
	}
	return nil
}

// GetForDate retrieves the override for a single day, nil when absent
func (r *AvailabilityRepository) GetForDate(q Queryer, tourID uuid.UUID, date time.Time) (*models.TourAvailabilityEntry, error) {
	var entry models.TourAvailabilityEntry
	query := `
		SELECT id, tour_id, date, type, spots_available, note, created_at, updated_at
		FROM tour_availability
		WHERE tour_id = $1 AND date = $2`

	err := q.Get(&entry, query, tourID, date.Format("2006-01-02"))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get availability entry: %w", err)
	}
	return &entry, nil
}

// GetForRange retrieves all overrides for [from, to] keyed by day
func (r *AvailabilityRepository) GetForRange(q Queryer, tourID uuid.UUID, from, to time.Time) (map[string]*models.TourAvailabilityEntry, error) {
	query := `
		SELECT id, tour_id, date, type, spots_available, note, created_at, updated_at
		FROM tour_availability
		WHERE tour_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date`

	var entries []models.TourAvailabilityEntry
	err := q.Select(&entries, query, tourID, from.Format("2006-01-02"), to.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("failed to get availability entries: %w", err)
	}

	byDay := make(map[string]*models.TourAvailabilityEntry, len(entries))
	for i := range entries {
		byDay[entries[i].Date.Format("2006-01-02")] = &entries[i]
	}
	return byDay, nil
}

// ListForTour returns all overrides for a tour, newest date first
func (r *AvailabilityRepository) ListForTour(tourID uuid.UUID, limit, offset int) ([]models.TourAvailabilityEntry, error) {
	query := `
		SELECT id, tour_id, date, type, spots_available, note, created_at, updated_at
		FROM tour_availability
		WHERE tour_id = $1
		ORDER BY date DESC
		LIMIT $2 OFFSET $3`

	var entries []models.TourAvailabilityEntry
	if err := r.db.Select(&entries, query, tourID, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list availability entries: %w", err)
	}
	return entries, nil
}
