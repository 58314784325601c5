package services

import (
	"errors"
	"fmt"
)

// Sentinel errors for hold and booking lifecycle conflicts. Handlers map
// these to 4xx responses; none of them indicates a server fault.
var (
	ErrTourNotFound          = errors.New("tour not found")
	ErrTourUnavailable       = errors.New("tour is not open for booking")
	ErrHoldNotFound          = errors.New("hold not found")
	ErrHoldExpired           = errors.New("hold has expired")
	ErrBookingNotFound       = errors.New("booking not found")
	ErrPaymentNotFound       = errors.New("payment not found")
	ErrAlreadyCancelled      = errors.New("booking is already cancelled or refunded")
	ErrCannotCancelCompleted = errors.New("completed bookings cannot be cancelled")
	ErrAlreadyPaid           = errors.New("booking is already paid")
	ErrInvalidCredentials    = errors.New("invalid email or password")
)

// AdmissibilityError reports why a capacity request cannot be satisfied,
// with enough detail for a user-facing message: which date failed, how many
// spots remain, how many were requested.
type AdmissibilityError struct {
	Date      string `json:"date"`
	Reason    string `json:"reason"` // "blocked", "capacity_exceeded", "party_too_large"
	Remaining int    `json:"remaining_spots"`
	Requested int    `json:"requested_spots"`
}

func (e *AdmissibilityError) Error() string {
	if e.Reason == "blocked" {
		return fmt.Sprintf("date %s is blocked", e.Date)
	}
	return fmt.Sprintf("date %s has %d spots remaining, %d requested", e.Date, e.Remaining, e.Requested)
}

// IsAdmissibilityError extracts an AdmissibilityError from an error chain
func IsAdmissibilityError(err error) (*AdmissibilityError, bool) {
	var adm *AdmissibilityError
	if errors.As(err, &adm) {
		return adm, true
	}
	return nil, false
}
