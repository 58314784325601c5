package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tourvista/tours-backend/internal/models"
)

// PaymentRepository handles payment attempt records
type PaymentRepository struct {
	db DB
}

// NewPaymentRepository creates a new PaymentRepository
func NewPaymentRepository(db DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Create inserts a new payment attempt
func (r *PaymentRepository) Create(payment *models.Payment) error {
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	now := time.Now()
	payment.CreatedAt = now
	payment.UpdatedAt = now

	query := `
		INSERT INTO payments (
			id, booking_id, amount, currency, method, tracking_id,
			confirmation_code, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.Exec(query,
		payment.ID, payment.BookingID, payment.Amount, payment.Currency,
		payment.Method, payment.TrackingID, payment.ConfirmationCode,
		payment.Status, payment.CreatedAt, payment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

// GetByTrackingID retrieves a payment by its gateway correlation id
func (r *PaymentRepository) GetByTrackingID(trackingID string) (*models.Payment, error) {
	var payment models.Payment
	query := `
		SELECT id, booking_id, amount, currency, method, tracking_id,
		       confirmation_code, status, completed_at, failed_at,
		       created_at, updated_at
		FROM payments
		WHERE tracking_id = $1`

	err := r.db.Get(&payment, query, trackingID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return &payment, nil
}

// GetLatestForBooking retrieves the most recent payment attempt of a booking
func (r *PaymentRepository) GetLatestForBooking(bookingID uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	query := `
		SELECT id, booking_id, amount, currency, method, tracking_id,
		       confirmation_code, status, completed_at, failed_at,
		       created_at, updated_at
		FROM payments
		WHERE booking_id = $1
		ORDER BY created_at DESC
		LIMIT 1`

	err := r.db.Get(&payment, query, bookingID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest payment: %w", err)
	}
	return &payment, nil
}

// MarkCompleted records a successful settlement
func (r *PaymentRepository) MarkCompleted(paymentID uuid.UUID, confirmationCode string) error {
	query := `
		UPDATE payments
		SET status = 'completed',
		    confirmation_code = $2,
		    completed_at = NOW(),
		    updated_at = NOW()
		WHERE id = $1 AND status NOT IN ('completed', 'refunded')`

	_, err := r.db.Exec(query, paymentID, confirmationCode)
	if err != nil {
		return fmt.Errorf("failed to mark payment completed: %w", err)
	}
	return nil
}

// MarkFailed records a failed settlement attempt
func (r *PaymentRepository) MarkFailed(paymentID uuid.UUID) error {
	query := `
		UPDATE payments
		SET status = 'failed', failed_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status NOT IN ('completed', 'refunded')`

	_, err := r.db.Exec(query, paymentID)
	if err != nil {
		return fmt.Errorf("failed to mark payment failed: %w", err)
	}
	return nil
}

// MarkRefunded records a gateway reversal against a settled payment
func (r *PaymentRepository) MarkRefunded(paymentID uuid.UUID) error {
	query := `
		UPDATE payments
		SET status = 'refunded', updated_at = NOW()
		WHERE id = $1 AND status = 'completed'`

	_, err := r.db.Exec(query, paymentID)
	if err != nil {
		return fmt.Errorf("failed to mark payment refunded: %w", err)
	}
	return nil
}

// SumCompletedForBooking returns the amount actually paid on a booking.
// Refund tiers apply against this figure, not the quoted total, so deposits
// and partial payments refund correctly.
func (r *PaymentRepository) SumCompletedForBooking(q Queryer, bookingID uuid.UUID) (float64, error) {
	var total float64
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM payments
		WHERE booking_id = $1 AND status = 'completed'`

	err := q.Get(&total, query, bookingID)
	if err != nil {
		return 0, fmt.Errorf("failed to sum completed payments: %w", err)
	}
	return total, nil
}
