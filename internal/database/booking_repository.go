package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tourvista/tours-backend/internal/models"
)

// BookingRepository handles booking database operations
type BookingRepository struct {
	db DB
}

// NewBookingRepository creates a new BookingRepository
func NewBookingRepository(db DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// Create inserts a new booking
func (r *BookingRepository) Create(q Queryer, booking *models.Booking) error {
	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	now := time.Now()
	booking.CreatedAt = now
	booking.UpdatedAt = now

	query := `
		INSERT INTO bookings (
			id, tour_id, agent_id, user_id, hold_id,
			contact_name, contact_email, contact_phone,
			start_date, end_date, adults, children, infants,
			currency, base_amount, accommodation_amount, activities_amount,
			tax_amount, discount_amount, total_amount, agent_earnings,
			payment_status, booking_status, payment_due_at,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
			$14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26
		)`

	_, err := q.Exec(query,
		booking.ID, booking.TourID, booking.AgentID, booking.UserID, booking.HoldID,
		booking.ContactName, booking.ContactEmail, booking.ContactPhone,
		booking.StartDate, booking.EndDate, booking.Adults, booking.Children, booking.Infants,
		booking.Currency, booking.BaseAmount, booking.AccommodationAmount, booking.ActivitiesAmount,
		booking.TaxAmount, booking.DiscountAmount, booking.TotalAmount, booking.AgentEarnings,
		booking.PaymentStatus, booking.BookingStatus, booking.PaymentDueAt,
		booking.CreatedAt, booking.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

// GetByID retrieves a booking by ID. Returns nil without error when missing.
func (r *BookingRepository) GetByID(q Queryer, bookingID uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	query := `
		SELECT id, tour_id, agent_id, user_id, hold_id,
		       contact_name, contact_email, contact_phone,
		       start_date, end_date, adults, children, infants,
		       currency, base_amount, accommodation_amount, activities_amount,
		       tax_amount, discount_amount, total_amount, agent_earnings,
		       payment_status, booking_status, payment_due_at,
		       confirmed_at, cancelled_at, cancellation_reason, refund_amount,
		       created_at, updated_at
		FROM bookings
		WHERE id = $1`

	err := q.Get(&booking, query, bookingID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &booking, nil
}

// SumBookedSpotsForDay sums party sizes of non-cancelled bookings whose date
// range covers the given day. Cancelled and refunded bookings release their
// capacity immediately.
func (r *BookingRepository) SumBookedSpotsForDay(q Queryer, tourID uuid.UUID, day time.Time) (int, error) {
	var total int
	query := `
		SELECT COALESCE(SUM(adults + children + infants), 0)
		FROM bookings
		WHERE tour_id = $1
		  AND booking_status NOT IN ('cancelled', 'refunded')
		  AND start_date <= $2
		  AND end_date > $2`

	err := q.Get(&total, query, tourID, day.Format("2006-01-02"))
	if err != nil {
		return 0, fmt.Errorf("failed to sum booked spots: %w", err)
	}
	return total, nil
}

// MarkConfirmed transitions a pending booking to confirmed/paid. The status
// guard in the WHERE clause makes duplicate confirmations no-ops.
func (r *BookingRepository) MarkConfirmed(q Queryer, bookingID uuid.UUID) (bool, error) {
	query := `
		UPDATE bookings
		SET booking_status = 'confirmed',
		    payment_status = 'completed',
		    confirmed_at = NOW(),
		    updated_at = NOW()
		WHERE id = $1 AND booking_status = 'pending'`

	result, err := q.Exec(query, bookingID)
	if err != nil {
		return false, fmt.Errorf("failed to confirm booking: %w", err)
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

// MarkPaymentFailed records a failed settlement attempt. The booking stays
// pending so the user can retry against the same slot.
func (r *BookingRepository) MarkPaymentFailed(bookingID uuid.UUID) error {
	query := `
		UPDATE bookings
		SET payment_status = 'failed', updated_at = NOW()
		WHERE id = $1 AND booking_status = 'pending'`

	_, err := r.db.Exec(query, bookingID)
	if err != nil {
		return fmt.Errorf("failed to mark payment failed: %w", err)
	}
	return nil
}

// MarkCancelled records the cancellation outcome
func (r *BookingRepository) MarkCancelled(q Queryer, bookingID uuid.UUID, reason *string, refundAmount float64, paymentStatus models.PaymentStatus) (bool, error) {
	query := `
		UPDATE bookings
		SET booking_status = 'cancelled',
		    payment_status = $4,
		    cancelled_at = NOW(),
		    cancellation_reason = $2,
		    refund_amount = $3,
		    updated_at = NOW()
		WHERE id = $1 AND booking_status IN ('pending', 'confirmed')`

	result, err := q.Exec(query, bookingID, reason, refundAmount, paymentStatus)
	if err != nil {
		return false, fmt.Errorf("failed to cancel booking: %w", err)
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

// MarkRefunded transitions a confirmed booking to refunded (gateway reversal)
func (r *BookingRepository) MarkRefunded(q Queryer, bookingID uuid.UUID) (bool, error) {
	query := `
		UPDATE bookings
		SET booking_status = 'refunded',
		    payment_status = 'refunded',
		    updated_at = NOW()
		WHERE id = $1 AND booking_status = 'confirmed'`

	result, err := q.Exec(query, bookingID)
	if err != nil {
		return false, fmt.Errorf("failed to mark booking refunded: %w", err)
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}
