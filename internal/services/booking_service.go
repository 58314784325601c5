package services

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tourvista/tours-backend/internal/database"
	"github.com/tourvista/tours-backend/internal/models"
	"github.com/tourvista/tours-backend/pkg/gateway"
)

const (
	reserveWindow        = 7 * 24 * time.Hour // pay-later deadline from reservation
	reserveCutoffDays    = 3                  // deadline never lands closer than this to departure
	freeCancellationFull = 100.0
)

// BookingStore persists bookings
type BookingStore interface {
	Create(q database.Queryer, booking *models.Booking) error
	GetByID(q database.Queryer, bookingID uuid.UUID) (*models.Booking, error)
	MarkConfirmed(q database.Queryer, bookingID uuid.UUID) (bool, error)
	MarkPaymentFailed(bookingID uuid.UUID) error
	MarkCancelled(q database.Queryer, bookingID uuid.UUID, reason *string, refundAmount float64, paymentStatus models.PaymentStatus) (bool, error)
	MarkRefunded(q database.Queryer, bookingID uuid.UUID) (bool, error)
}

// HoldConsumer is the slice of hold persistence the reserve path needs
type HoldConsumer interface {
	GetByID(q database.Queryer, holdID uuid.UUID) (*models.Hold, error)
	Consume(q database.Queryer, holdID uuid.UUID, now time.Time) (bool, error)
}

// PaymentStore persists payment attempts
type PaymentStore interface {
	Create(payment *models.Payment) error
	GetByTrackingID(trackingID string) (*models.Payment, error)
	GetLatestForBooking(bookingID uuid.UUID) (*models.Payment, error)
	MarkCompleted(paymentID uuid.UUID, confirmationCode string) error
	MarkFailed(paymentID uuid.UUID) error
	MarkRefunded(paymentID uuid.UUID) error
	SumCompletedForBooking(q database.Queryer, bookingID uuid.UUID) (float64, error)
}

// EarningsStore appends agent ledger entries
type EarningsStore interface {
	CreateIfAbsent(q database.Queryer, entry *models.AgentEarning) (bool, error)
}

// TourSource loads tour catalog data for pricing
type TourSource interface {
	GetByID(tourID uuid.UUID) (*models.Tour, error)
	GetPricingConfig(tourID uuid.UUID) (*models.PricingConfig, error)
	GetAccommodations(tourID uuid.UUID, ids []string) ([]models.AccommodationOption, error)
	GetActivityAddons(tourID uuid.UUID, ids []string) ([]models.ActivityAddon, error)
}

// BookingService drives the booking lifecycle: reserve from a hold, settle
// payment against the gateway, cancel with tiered refunds. All gateway
// outcomes are applied idempotently so webhook deliveries, status polls and
// client retries can race without double-crediting anyone.
type BookingService struct {
	db       database.DB
	bookings BookingStore
	holds    HoldConsumer
	payments PaymentStore
	earnings EarningsStore
	tours    TourSource
	pricing  *PricingService
	gateway  gateway.StatusClient
	notifier Notifier
	logger   *logrus.Logger
	now      func() time.Time
}

// NewBookingService creates a new BookingService
func NewBookingService(
	db database.DB,
	bookings BookingStore,
	holds HoldConsumer,
	payments PaymentStore,
	earnings EarningsStore,
	tours TourSource,
	pricing *PricingService,
	gw gateway.StatusClient,
	notifier Notifier,
	logger *logrus.Logger,
) *BookingService {
	return &BookingService{
		db:       db,
		bookings: bookings,
		holds:    holds,
		payments: payments,
		earnings: earnings,
		tours:    tours,
		pricing:  pricing,
		gateway:  gw,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Reserve converts a live hold into a pending pay-later booking. The price
// is recomputed from the hold's stored quote context with the hold's
// creation time as the pricing instant, so the amount the customer saw at
// quote time is exactly the amount they owe.
func (s *BookingService) Reserve(holdID uuid.UUID, req *models.ReserveRequest) (*models.Booking, error) {
	now := s.now()

	var booking *models.Booking
	err := s.db.WithTx(func(tx database.Queryer) error {
		hold, err := s.holds.GetByID(tx, holdID)
		if err != nil {
			return err
		}
		if hold == nil || hold.Status != models.HoldStatusActive {
			return ErrHoldNotFound
		}
		if hold.IsExpired(now) {
			return ErrHoldExpired
		}

		tour, err := s.tours.GetByID(hold.TourID)
		if err != nil {
			return err
		}
		if tour == nil {
			return ErrTourNotFound
		}
		if !tour.IsBookable() {
			return ErrTourUnavailable
		}

		breakdown, err := s.priceHold(tour, hold)
		if err != nil {
			return err
		}

		consumed, err := s.holds.Consume(tx, hold.ID, now)
		if err != nil {
			return err
		}
		if !consumed {
			return ErrHoldExpired
		}

		booking = &models.Booking{
			ID:                  uuid.New(),
			TourID:              tour.ID,
			AgentID:             tour.AgentID,
			UserID:              hold.UserID,
			HoldID:              &hold.ID,
			ContactName:         req.ContactName,
			ContactEmail:        req.ContactEmail,
			ContactPhone:        req.ContactPhone,
			StartDate:           hold.StartDate,
			EndDate:             hold.EndDate,
			Adults:              hold.Adults,
			Children:            hold.Children,
			Infants:             hold.Infants,
			Currency:            tour.Currency,
			BaseAmount:          breakdown.BaseAmount,
			AccommodationAmount: breakdown.AccommodationAmount,
			ActivitiesAmount:    breakdown.ActivitiesAmount,
			TaxAmount:           breakdown.TaxAmount,
			DiscountAmount:      breakdown.DiscountAmount,
			TotalAmount:         breakdown.TotalAmount,
			AgentEarnings:       round2(breakdown.TotalAmount - breakdown.TaxAmount),
			PaymentStatus:       models.PaymentStatusPending,
			BookingStatus:       models.BookingStatusPending,
		}
		due := paymentDeadline(now, hold.StartDate)
		booking.PaymentDueAt = &due

		return s.bookings.Create(tx, booking)
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"tour_id":    booking.TourID,
		"hold_id":    holdID,
		"total":      booking.TotalAmount,
		"due_at":     booking.PaymentDueAt,
	}).Info("Booking reserved")

	s.notifier.BookingReserved(booking)
	return booking, nil
}

// priceHold rebuilds the breakdown from the selections frozen on the hold
func (s *BookingService) priceHold(tour *models.Tour, hold *models.Hold) (models.PriceBreakdown, error) {
	cfg, err := s.tours.GetPricingConfig(tour.ID)
	if err != nil {
		return models.PriceBreakdown{}, err
	}
	accommodations, err := s.tours.GetAccommodations(tour.ID, hold.AccommodationIDs)
	if err != nil {
		return models.PriceBreakdown{}, err
	}
	addons, err := s.tours.GetActivityAddons(tour.ID, hold.AddonIDs)
	if err != nil {
		return models.PriceBreakdown{}, err
	}

	return s.pricing.Quote(QuoteInput{
		Tour:           tour,
		Config:         cfg,
		Adults:         hold.Adults,
		Children:       hold.Children,
		Infants:        hold.Infants,
		Accommodations: accommodations,
		Addons:         addons,
		StartDate:      hold.StartDate,
		BookedAt:       hold.CreatedAt,
	}), nil
}

// paymentDeadline is seven days out, pulled forward so it never lands
// inside the final days before departure.
func paymentDeadline(now, startDate time.Time) time.Time {
	deadline := now.Add(reserveWindow)
	cutoff := startDate.AddDate(0, 0, -reserveCutoffDays)
	if cutoff.Before(deadline) {
		deadline = cutoff
	}
	if deadline.Before(now) {
		deadline = now
	}
	return deadline
}

// CreatePaymentAttempt registers a gateway transaction against a booking
// before the customer is redirected to the payment page.
func (s *BookingService) CreatePaymentAttempt(bookingID uuid.UUID, trackingID string, method *string) (*models.Payment, error) {
	booking, err := s.bookings.GetByID(s.db, bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}
	if booking.IsTerminal() {
		return nil, ErrAlreadyCancelled
	}
	if booking.PaymentStatus == models.PaymentStatusCompleted {
		return nil, ErrAlreadyPaid
	}

	payment := &models.Payment{
		ID:         uuid.New(),
		BookingID:  booking.ID,
		Amount:     booking.TotalAmount,
		Currency:   booking.Currency,
		Method:     method,
		TrackingID: trackingID,
		Status:     models.PaymentStatusPending,
	}
	if err := s.payments.Create(payment); err != nil {
		return nil, err
	}
	return payment, nil
}

// Reconcile resolves a gateway transaction against its booking. This is the
// single entry point for both webhook deliveries and status polls: the
// gateway is re-queried rather than trusting the caller's claim, and the
// settled outcome is applied idempotently.
func (s *BookingService) Reconcile(trackingID string) (*models.PaymentStatusResponse, error) {
	payment, err := s.payments.GetByTrackingID(trackingID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}

	status, err := s.gateway.GetTransactionStatus(trackingID)
	if err != nil {
		// Gateway unreachable: answer from the last known local state
		// instead of failing the poll.
		s.logger.WithError(err).WithField("tracking_id", trackingID).
			Warn("Gateway status query failed, serving local state")
		return s.paymentStatusOf(payment.BookingID)
	}

	switch status.StatusCode {
	case gateway.StatusCompleted:
		if err := s.confirmPayment(payment, status.ConfirmationCode); err != nil {
			return nil, err
		}
	case gateway.StatusFailed:
		if err := s.failPayment(payment); err != nil {
			return nil, err
		}
	case gateway.StatusReversed:
		if err := s.reversePayment(payment); err != nil {
			return nil, err
		}
	case gateway.StatusInvalid:
		s.logger.WithFields(logrus.Fields{
			"tracking_id": trackingID,
			"booking_id":  payment.BookingID,
		}).Warn("Gateway does not recognize tracking ID, leaving booking untouched")
	default:
		return nil, fmt.Errorf("unknown gateway status code %d for tracking %s", status.StatusCode, trackingID)
	}

	return s.paymentStatusOf(payment.BookingID)
}

// GetPaymentStatus answers the client poll for a booking. When an
// unsettled payment attempt exists the gateway is consulted first, so a
// missed webhook cannot strand a paid booking in pending.
func (s *BookingService) GetPaymentStatus(bookingID uuid.UUID) (*models.PaymentStatusResponse, error) {
	booking, err := s.bookings.GetByID(s.db, bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}

	payment, err := s.payments.GetLatestForBooking(bookingID)
	if err != nil {
		return nil, err
	}
	if payment != nil &&
		(payment.Status == models.PaymentStatusPending || payment.Status == models.PaymentStatusProcessing) {
		return s.Reconcile(payment.TrackingID)
	}

	return &models.PaymentStatusResponse{
		BookingID:     booking.ID,
		BookingStatus: booking.BookingStatus,
		PaymentStatus: booking.PaymentStatus,
		TotalAmount:   booking.TotalAmount,
		Currency:      booking.Currency,
	}, nil
}

func (s *BookingService) paymentStatusOf(bookingID uuid.UUID) (*models.PaymentStatusResponse, error) {
	booking, err := s.bookings.GetByID(s.db, bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}
	return &models.PaymentStatusResponse{
		BookingID:     booking.ID,
		BookingStatus: booking.BookingStatus,
		PaymentStatus: booking.PaymentStatus,
		TotalAmount:   booking.TotalAmount,
		Currency:      booking.Currency,
	}, nil
}

// confirmPayment transitions the booking to confirmed and credits the agent
// ledger. Safe to call any number of times for the same payment: the
// booking transition is status-guarded and the ledger credit is issued
// only on the first pending to confirmed transition.
func (s *BookingService) confirmPayment(payment *models.Payment, confirmationCode string) error {
	var firstConfirm bool
	var booking *models.Booking

	err := s.db.WithTx(func(tx database.Queryer) error {
		var err error
		booking, err = s.bookings.GetByID(tx, payment.BookingID)
		if err != nil {
			return err
		}
		if booking == nil {
			return ErrBookingNotFound
		}

		firstConfirm, err = s.bookings.MarkConfirmed(tx, booking.ID)
		if err != nil {
			return err
		}
		if !firstConfirm {
			// Already confirmed (replayed webhook) or no longer pending
			// (cancelled mid-payment). Either way the ledger stays untouched.
			return nil
		}

		_, err = s.earnings.CreateIfAbsent(tx, &models.AgentEarning{
			ID:        uuid.New(),
			AgentID:   booking.AgentID,
			BookingID: booking.ID,
			EntryType: models.EarningTypeBooking,
			Amount:    booking.AgentEarnings,
		})
		return err
	})
	if err != nil {
		return err
	}

	if err := s.payments.MarkCompleted(payment.ID, confirmationCode); err != nil {
		return err
	}

	if !firstConfirm && booking.BookingStatus != models.BookingStatusConfirmed {
		// The charge settled after the booking left the pending state,
		// typically a cancellation that raced the payment. The money is
		// recorded but no credit is issued; the charge must be refunded.
		s.logger.WithFields(logrus.Fields{
			"booking_id":     booking.ID,
			"payment_id":     payment.ID,
			"tracking_id":    payment.TrackingID,
			"booking_status": booking.BookingStatus,
			"amount":         payment.Amount,
		}).Warn("Payment completed for a non-pending booking, refund required")
	}

	if firstConfirm {
		s.logger.WithFields(logrus.Fields{
			"booking_id":  booking.ID,
			"payment_id":  payment.ID,
			"tracking_id": payment.TrackingID,
			"amount":      payment.Amount,
		}).Info("Payment completed, booking confirmed")
		booking.BookingStatus = models.BookingStatusConfirmed
		booking.PaymentStatus = models.PaymentStatusCompleted
		s.notifier.BookingConfirmed(booking)
	}
	return nil
}

// failPayment records a failed attempt. The booking stays pending so the
// customer can retry until the payment deadline.
func (s *BookingService) failPayment(payment *models.Payment) error {
	if err := s.payments.MarkFailed(payment.ID); err != nil {
		return err
	}
	if err := s.bookings.MarkPaymentFailed(payment.BookingID); err != nil {
		return err
	}
	s.logger.WithFields(logrus.Fields{
		"booking_id":  payment.BookingID,
		"tracking_id": payment.TrackingID,
	}).Info("Payment attempt failed")
	return nil
}

// reversePayment handles a gateway-side reversal of a completed charge: the
// booking moves to refunded and the agent credit is clawed back in full.
func (s *BookingService) reversePayment(payment *models.Payment) error {
	return s.db.WithTx(func(tx database.Queryer) error {
		booking, err := s.bookings.GetByID(tx, payment.BookingID)
		if err != nil {
			return err
		}
		if booking == nil {
			return ErrBookingNotFound
		}

		reversed, err := s.bookings.MarkRefunded(tx, booking.ID)
		if err != nil {
			return err
		}
		if !reversed {
			// Already reversed or never confirmed, nothing to unwind
			return nil
		}

		if err := s.payments.MarkRefunded(payment.ID); err != nil {
			return err
		}

		if booking.AgentEarnings > 0 {
			if _, err := s.earnings.CreateIfAbsent(tx, &models.AgentEarning{
				ID:        uuid.New(),
				AgentID:   booking.AgentID,
				BookingID: booking.ID,
				EntryType: models.EarningTypeRefund,
				Amount:    -booking.AgentEarnings,
			}); err != nil {
				return err
			}
		}

		s.logger.WithFields(logrus.Fields{
			"booking_id":  booking.ID,
			"tracking_id": payment.TrackingID,
		}).Warn("Gateway reversed completed payment, booking refunded")
		return nil
	})
}

// Cancel applies the tiered refund policy and releases the booking's
// capacity. The refund is computed against money actually captured, never
// against the invoice total, and the agent ledger receives a proportional
// clawback entry.
func (s *BookingService) Cancel(bookingID uuid.UUID, reason *string) (*models.CancellationResult, error) {
	booking, err := s.bookings.GetByID(s.db, bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}
	switch booking.BookingStatus {
	case models.BookingStatusCancelled, models.BookingStatusRefunded:
		return nil, ErrAlreadyCancelled
	case models.BookingStatusCompleted:
		return nil, ErrCannotCancelCompleted
	}

	tour, err := s.tours.GetByID(booking.TourID)
	if err != nil {
		return nil, err
	}
	if tour == nil {
		return nil, ErrTourNotFound
	}

	now := s.now()
	daysUntil := daysUntilStart(now, booking.StartDate)
	percent := refundPercent(daysUntil, tour.FreeCancellationDays)

	var result *models.CancellationResult
	err = s.db.WithTx(func(tx database.Queryer) error {
		totalPaid, err := s.payments.SumCompletedForBooking(tx, booking.ID)
		if err != nil {
			return err
		}

		refund := round2(totalPaid * percent / 100)
		paymentStatus := booking.PaymentStatus
		if refund > 0 {
			if refund >= totalPaid {
				paymentStatus = models.PaymentStatusRefunded
			} else {
				paymentStatus = models.PaymentStatusPartiallyRefunded
			}
		}

		cancelled, err := s.bookings.MarkCancelled(tx, booking.ID, reason, refund, paymentStatus)
		if err != nil {
			return err
		}
		if !cancelled {
			return ErrAlreadyCancelled
		}

		// Claw back the agent credit in proportion to the refunded share
		// of captured money. Unconfirmed bookings never got a credit.
		if booking.BookingStatus == models.BookingStatusConfirmed && totalPaid > 0 && refund > 0 {
			clawback := round2(booking.AgentEarnings * refund / totalPaid)
			if clawback > 0 {
				if _, err := s.earnings.CreateIfAbsent(tx, &models.AgentEarning{
					ID:        uuid.New(),
					AgentID:   booking.AgentID,
					BookingID: booking.ID,
					EntryType: models.EarningTypeRefund,
					Amount:    -clawback,
				}); err != nil {
					return err
				}
			}
		}

		result = &models.CancellationResult{
			BookingID:            booking.ID,
			RefundAmount:         refund,
			RefundPercentage:     percent,
			DaysUntilStart:       daysUntil,
			FreeCancellationDays: tour.FreeCancellationDays,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id":       booking.ID,
		"refund_amount":    result.RefundAmount,
		"refund_percent":   result.RefundPercentage,
		"days_until_start": result.DaysUntilStart,
	}).Info("Booking cancelled")

	s.notifier.BookingCancelled(booking, result.RefundAmount)
	return result, nil
}

// GetBooking fetches a booking by ID
func (s *BookingService) GetBooking(bookingID uuid.UUID) (*models.Booking, error) {
	booking, err := s.bookings.GetByID(s.db, bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}
	return booking, nil
}

// daysUntilStart counts whole days remaining before departure, rounding a
// partial day up in the customer's favor. Past departures count as zero.
func daysUntilStart(now, startDate time.Time) int {
	diff := startDate.Sub(now)
	if diff <= 0 {
		return 0
	}
	return int(math.Ceil(diff.Hours() / 24))
}

// refundPercent maps days-until-departure onto the refund tier table
func refundPercent(daysUntil, freeCancellationDays int) float64 {
	switch {
	case daysUntil >= freeCancellationDays:
		return freeCancellationFull
	case daysUntil >= 7:
		return 50
	case daysUntil >= 3:
		return 25
	default:
		return 0
	}
}
