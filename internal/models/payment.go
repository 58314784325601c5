package models

import (
	"time"

	"github.com/google/uuid"
)

// Payment is one attempt to settle a booking through the external gateway
// (payments table). Many payments may exist per booking (retries); only the
// latest successful one drives booking state.
type Payment struct {
	ID               uuid.UUID     `json:"id" db:"id"`
	BookingID        uuid.UUID     `json:"booking_id" db:"booking_id"`
	Amount           float64       `json:"amount" db:"amount"`
	Currency         string        `json:"currency" db:"currency"`
	Method           *string       `json:"method,omitempty" db:"method"`
	TrackingID       string        `json:"tracking_id" db:"tracking_id"` // gateway correlation id
	ConfirmationCode *string       `json:"confirmation_code,omitempty" db:"confirmation_code"`
	Status           PaymentStatus `json:"status" db:"status"`
	CompletedAt      *time.Time    `json:"completed_at,omitempty" db:"completed_at"`
	FailedAt         *time.Time    `json:"failed_at,omitempty" db:"failed_at"`
	CreatedAt        time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at" db:"updated_at"`
}

// AgentEarningType distinguishes credits from refund clawbacks
type AgentEarningType string

const (
	EarningTypeBooking AgentEarningType = "booking_credit"
	EarningTypeRefund  AgentEarningType = "refund_adjustment"
)

// AgentEarning is one ledger entry of agent proceeds (agent_earnings table).
// A unique (booking_id, entry_type) constraint backs idempotent creation.
type AgentEarning struct {
	ID        uuid.UUID        `json:"id" db:"id"`
	AgentID   uuid.UUID        `json:"agent_id" db:"agent_id"`
	BookingID uuid.UUID        `json:"booking_id" db:"booking_id"`
	EntryType AgentEarningType `json:"entry_type" db:"entry_type"`
	Amount    float64          `json:"amount" db:"amount"` // negative for clawbacks
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}

// PaymentStatusResponse is the poll-path response for a booking's payment
type PaymentStatusResponse struct {
	BookingID     uuid.UUID     `json:"booking_id"`
	BookingStatus BookingStatus `json:"booking_status"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	TotalAmount   float64       `json:"total_amount"`
	Currency      string        `json:"currency"`
}
