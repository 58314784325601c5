package services

import (
	"github.com/sirupsen/logrus"
	"github.com/tourvista/tours-backend/internal/models"
)

// Notifier receives booking lifecycle events. Implementations must be
// non-blocking: callers fire these after their transaction commits and do
// not check for failure.
type Notifier interface {
	BookingReserved(booking *models.Booking)
	BookingConfirmed(booking *models.Booking)
	BookingCancelled(booking *models.Booking, refundAmount float64)
}

// LogNotifier writes lifecycle events to the structured log. It stands in
// for the email/SMS dispatch pipeline, which lives in a separate worker.
type LogNotifier struct {
	logger *logrus.Logger
}

// NewLogNotifier creates a LogNotifier
func NewLogNotifier(logger *logrus.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) BookingReserved(booking *models.Booking) {
	n.logger.WithFields(logrus.Fields{
		"event":      "booking.reserved",
		"booking_id": booking.ID,
		"contact":    booking.ContactName,
		"due_at":     booking.PaymentDueAt,
	}).Info("Notification: booking reserved")
}

func (n *LogNotifier) BookingConfirmed(booking *models.Booking) {
	n.logger.WithFields(logrus.Fields{
		"event":      "booking.confirmed",
		"booking_id": booking.ID,
		"total":      booking.TotalAmount,
	}).Info("Notification: booking confirmed")
}

func (n *LogNotifier) BookingCancelled(booking *models.Booking, refundAmount float64) {
	n.logger.WithFields(logrus.Fields{
		"event":      "booking.cancelled",
		"booking_id": booking.ID,
		"refund":     refundAmount,
	}).Info("Notification: booking cancelled")
}
