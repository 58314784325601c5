package models

import (
	"time"

	"github.com/google/uuid"
)

// PaymentStatus represents the payment status of a booking
// Matches PostgreSQL ENUM: payment_status
type PaymentStatus string

const (
	PaymentStatusPending           PaymentStatus = "pending"
	PaymentStatusProcessing        PaymentStatus = "processing"
	PaymentStatusCompleted         PaymentStatus = "completed"
	PaymentStatusFailed            PaymentStatus = "failed"
	PaymentStatusRefunded          PaymentStatus = "refunded"
	PaymentStatusPartiallyRefunded PaymentStatus = "partially_refunded"
)

// BookingStatus represents the lifecycle status of a booking
// Matches PostgreSQL ENUM: booking_status
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"   // reserved, unpaid
	BookingStatusConfirmed BookingStatus = "confirmed" // paid
	BookingStatusCompleted BookingStatus = "completed" // post-trip
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusRefunded  BookingStatus = "refunded"
)

// Booking is the durable record of a purchase (bookings table).
// A booking occupies capacity on its date range for as long as its status
// is not cancelled or refunded.
type Booking struct {
	ID      uuid.UUID  `json:"id" db:"id"`
	TourID  uuid.UUID  `json:"tour_id" db:"tour_id"`
	AgentID uuid.UUID  `json:"agent_id" db:"agent_id"` // denormalized owner
	UserID  *uuid.UUID `json:"user_id,omitempty" db:"user_id"`
	HoldID  *uuid.UUID `json:"hold_id,omitempty" db:"hold_id"` // consumed hold

	ContactName  string  `json:"contact_name" db:"contact_name"`
	ContactEmail *string `json:"contact_email,omitempty" db:"contact_email"`
	ContactPhone *string `json:"contact_phone,omitempty" db:"contact_phone"`

	StartDate time.Time `json:"start_date" db:"start_date"`
	EndDate   time.Time `json:"end_date" db:"end_date"`
	Adults    int       `json:"adults" db:"adults"`
	Children  int       `json:"children" db:"children"`
	Infants   int       `json:"infants" db:"infants"`

	Currency            string  `json:"currency" db:"currency"`
	BaseAmount          float64 `json:"base_amount" db:"base_amount"`
	AccommodationAmount float64 `json:"accommodation_amount" db:"accommodation_amount"`
	ActivitiesAmount    float64 `json:"activities_amount" db:"activities_amount"`
	TaxAmount           float64 `json:"tax_amount" db:"tax_amount"`
	DiscountAmount      float64 `json:"discount_amount" db:"discount_amount"`
	TotalAmount         float64 `json:"total_amount" db:"total_amount"`
	AgentEarnings       float64 `json:"agent_earnings" db:"agent_earnings"`

	PaymentStatus      PaymentStatus `json:"payment_status" db:"payment_status"`
	BookingStatus      BookingStatus `json:"booking_status" db:"booking_status"`
	PaymentDueAt       *time.Time    `json:"payment_due_at,omitempty" db:"payment_due_at"`
	ConfirmedAt        *time.Time    `json:"confirmed_at,omitempty" db:"confirmed_at"`
	CancelledAt        *time.Time    `json:"cancelled_at,omitempty" db:"cancelled_at"`
	CancellationReason *string       `json:"cancellation_reason,omitempty" db:"cancellation_reason"`
	RefundAmount       *float64      `json:"refund_amount,omitempty" db:"refund_amount"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// PartySize returns the number of spots the booking occupies
func (b *Booking) PartySize() int {
	return b.Adults + b.Children + b.Infants
}

// OccupiesCapacity reports whether the booking still counts against its dates
func (b *Booking) OccupiesCapacity() bool {
	return b.BookingStatus != BookingStatusCancelled && b.BookingStatus != BookingStatusRefunded
}

// IsTerminal reports whether no further status transitions are allowed
func (b *Booking) IsTerminal() bool {
	switch b.BookingStatus {
	case BookingStatusCompleted, BookingStatusCancelled, BookingStatusRefunded:
		return true
	}
	return false
}

// Breakdown reconstructs the stored price breakdown
func (b *Booking) Breakdown() PriceBreakdown {
	return PriceBreakdown{
		BaseAmount:          b.BaseAmount,
		AccommodationAmount: b.AccommodationAmount,
		ActivitiesAmount:    b.ActivitiesAmount,
		TaxAmount:           b.TaxAmount,
		DiscountAmount:      b.DiscountAmount,
		TotalAmount:         b.TotalAmount,
	}
}

// ReserveRequest converts a hold into a pending (pay-later) booking
type ReserveRequest struct {
	HoldID       string  `json:"hold_id" binding:"required"`
	ContactName  string  `json:"contact_name" binding:"required"`
	ContactEmail *string `json:"contact_email,omitempty"`
	ContactPhone *string `json:"contact_phone,omitempty"`
}

// ReserveResponse is returned after a successful reservation
type ReserveResponse struct {
	BookingID     uuid.UUID     `json:"booking_id"`
	BookingStatus BookingStatus `json:"booking_status"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	PaymentDueAt  time.Time     `json:"payment_due_at"`
	TotalAmount   float64       `json:"total_amount"`
	Currency      string        `json:"currency"`
}

// CancelBookingRequest is the inbound cancellation request
type CancelBookingRequest struct {
	Reason *string `json:"reason,omitempty"`
}

// CancellationResult reports the applied refund tier
type CancellationResult struct {
	BookingID            uuid.UUID `json:"booking_id"`
	RefundAmount         float64   `json:"refund_amount"`
	RefundPercentage     float64   `json:"refund_percentage"`
	DaysUntilStart       int       `json:"days_until_start"`
	FreeCancellationDays int       `json:"free_cancellation_days"`
}
