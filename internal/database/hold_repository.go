package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tourvista/tours-backend/internal/models"
)

// HoldRepository handles hold database operations
type HoldRepository struct {
	db DB
}

// NewHoldRepository creates a new HoldRepository
func NewHoldRepository(db DB) *HoldRepository {
	return &HoldRepository{db: db}
}

// AcquireTourDateLock takes a transaction-scoped advisory lock for a
// (tour, date) pair. Concurrent checkouts for the same tour date serialize
// here, so the capacity count and the hold insert that follow cannot
// interleave with another checkout's.
func (r *HoldRepository) AcquireTourDateLock(q Queryer, tourID uuid.UUID, date time.Time) error {
	key := tourID.String() + ":" + date.Format("2006-01-02")
	_, err := q.Exec(`SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, key)
	if err != nil {
		return fmt.Errorf("failed to acquire tour-date lock: %w", err)
	}
	return nil
}

// Create inserts a new hold
func (r *HoldRepository) Create(q Queryer, hold *models.Hold) error {
	if hold.ID == uuid.Nil {
		hold.ID = uuid.New()
	}
	now := time.Now()
	hold.CreatedAt = now
	hold.UpdatedAt = now

	query := `
		INSERT INTO holds (
			id, tour_id, user_id, start_date, end_date, spots,
			adults, children, infants, accommodation_ids, addon_ids,
			status, expires_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err := q.Exec(query,
		hold.ID, hold.TourID, hold.UserID,
		hold.StartDate, hold.EndDate, hold.Spots,
		hold.Adults, hold.Children, hold.Infants,
		hold.AccommodationIDs, hold.AddonIDs,
		hold.Status, hold.ExpiresAt, hold.CreatedAt, hold.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create hold: %w", err)
	}
	return nil
}

// GetByID retrieves a hold by ID. Returns nil without error when missing.
func (r *HoldRepository) GetByID(q Queryer, holdID uuid.UUID) (*models.Hold, error) {
	var hold models.Hold
	query := `
		SELECT id, tour_id, user_id, start_date, end_date, spots,
		       adults, children, infants, accommodation_ids, addon_ids,
		       status, expires_at, created_at, updated_at
		FROM holds
		WHERE id = $1`

	err := q.Get(&hold, query, holdID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get hold: %w", err)
	}
	return &hold, nil
}

// SumLiveSpotsForDay sums spots of active, unexpired holds whose date range
// covers the given day.
func (r *HoldRepository) SumLiveSpotsForDay(q Queryer, tourID uuid.UUID, day time.Time, now time.Time) (int, error) {
	var total int
	query := `
		SELECT COALESCE(SUM(spots), 0)
		FROM holds
		WHERE tour_id = $1
		  AND status = 'active'
		  AND expires_at > $2
		  AND start_date <= $3
		  AND end_date > $3`

	err := q.Get(&total, query, tourID, now, day.Format("2006-01-02"))
	if err != nil {
		return 0, fmt.Errorf("failed to sum held spots: %w", err)
	}
	return total, nil
}

// ReleaseActiveForOwner releases every active hold a user has on a tour.
// Run inside the checkout transaction before the capacity check, so a
// re-quote replaces the quoter's earlier hold instead of stacking on it.
func (r *HoldRepository) ReleaseActiveForOwner(q Queryer, tourID, ownerID uuid.UUID) (int, error) {
	query := `
		UPDATE holds
		SET status = 'released', updated_at = NOW()
		WHERE tour_id = $1 AND user_id = $2 AND status = 'active'`

	result, err := q.Exec(query, tourID, ownerID)
	if err != nil {
		return 0, fmt.Errorf("failed to release superseded holds: %w", err)
	}
	rows, _ := result.RowsAffected()
	return int(rows), nil
}

// Extend resets the expiry of an active, unexpired hold. Expired holds are
// not revivable; the caller must create a new one.
func (r *HoldRepository) Extend(holdID uuid.UUID, newExpiry, now time.Time) (bool, error) {
	query := `
		UPDATE holds
		SET expires_at = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'active' AND expires_at > $3`

	result, err := r.db.Exec(query, holdID, newExpiry, now)
	if err != nil {
		return false, fmt.Errorf("failed to extend hold: %w", err)
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

// Release marks a hold released, freeing capacity before natural expiry
func (r *HoldRepository) Release(holdID uuid.UUID) (bool, error) {
	query := `
		UPDATE holds
		SET status = 'released', updated_at = NOW()
		WHERE id = $1 AND status = 'active'`

	result, err := r.db.Exec(query, holdID)
	if err != nil {
		return false, fmt.Errorf("failed to release hold: %w", err)
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

// Consume marks a hold consumed by a booking. Only an active, unexpired hold
// can be consumed; capacity is tracked via the booking from then on.
func (r *HoldRepository) Consume(q Queryer, holdID uuid.UUID, now time.Time) (bool, error) {
	query := `
		UPDATE holds
		SET status = 'consumed', updated_at = NOW()
		WHERE id = $1 AND status = 'active' AND expires_at > $2`

	result, err := q.Exec(query, holdID, now)
	if err != nil {
		return false, fmt.Errorf("failed to consume hold: %w", err)
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

// ReleaseStale flips long-expired active holds to released. Storage hygiene
// only: capacity queries already exclude expired holds by timestamp.
func (r *HoldRepository) ReleaseStale(olderThan time.Time) (int, error) {
	query := `
		UPDATE holds
		SET status = 'released', updated_at = NOW()
		WHERE status = 'active' AND expires_at < $1`

	result, err := r.db.Exec(query, olderThan)
	if err != nil {
		return 0, fmt.Errorf("failed to release stale holds: %w", err)
	}
	rows, _ := result.RowsAffected()
	return int(rows), nil
}
