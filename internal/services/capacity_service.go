package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/tourvista/tours-backend/internal/database"
	"github.com/tourvista/tours-backend/internal/models"
)

// AvailabilitySource reads per-date overrides
type AvailabilitySource interface {
	GetForRange(q database.Queryer, tourID uuid.UUID, from, to time.Time) (map[string]*models.TourAvailabilityEntry, error)
}

// BookingOccupancySource reads confirmed-booking occupancy
type BookingOccupancySource interface {
	SumBookedSpotsForDay(q database.Queryer, tourID uuid.UUID, day time.Time) (int, error)
}

// HoldOccupancySource reads live-hold occupancy
type HoldOccupancySource interface {
	SumLiveSpotsForDay(q database.Queryer, tourID uuid.UUID, day time.Time, now time.Time) (int, error)
}

// CapacityService is the read-only capacity accountant. For every day a
// request spans, effective capacity comes from the availability override
// (or the tour default), and occupancy is the sum of overlapping
// non-cancelled bookings plus active, unexpired holds. It never writes.
type CapacityService struct {
	availability AvailabilitySource
	bookings     BookingOccupancySource
	holds        HoldOccupancySource
	now          func() time.Time
}

// NewCapacityService creates a new CapacityService
func NewCapacityService(
	availability AvailabilitySource,
	bookings BookingOccupancySource,
	holds HoldOccupancySource,
) *CapacityService {
	return &CapacityService{
		availability: availability,
		bookings:     bookings,
		holds:        holds,
		now:          time.Now,
	}
}

// dateKey is the day-granularity format used across capacity accounting
const dateKey = "2006-01-02"

// TripDays enumerates every day a trip starting at start occupies
func TripDays(start time.Time, durationDays int) []time.Time {
	if durationDays < 1 {
		durationDays = 1
	}
	days := make([]time.Time, durationDays)
	for i := 0; i < durationDays; i++ {
		days[i] = start.AddDate(0, 0, i)
	}
	return days
}

// CheckRange verifies that the requested party fits on every day of the
// trip's date range. A single blocked day rejects the whole range regardless
// of capacity elsewhere.
func (s *CapacityService) CheckRange(q database.Queryer, tour *models.Tour, start time.Time, partySize int) error {
	if partySize > tour.MaxGroupSize {
		return &AdmissibilityError{
			Date:      start.Format(dateKey),
			Reason:    "party_too_large",
			Remaining: tour.MaxGroupSize,
			Requested: partySize,
		}
	}

	days := TripDays(start, tour.DurationDays)
	entries, err := s.availability.GetForRange(q, tour.ID, days[0], days[len(days)-1])
	if err != nil {
		return err
	}

	now := s.now()
	for _, day := range days {
		entry := entries[day.Format(dateKey)]
		if entry != nil && entry.Type == models.AvailabilityBlocked {
			return &AdmissibilityError{
				Date:      day.Format(dateKey),
				Reason:    "blocked",
				Requested: partySize,
			}
		}

		capacity := entry.EffectiveCapacity(tour.MaxGroupSize)
		occupied, err := s.occupiedForDay(q, tour.ID, day, now)
		if err != nil {
			return err
		}

		if occupied+partySize > capacity {
			remaining := capacity - occupied
			if remaining < 0 {
				remaining = 0
			}
			return &AdmissibilityError{
				Date:      day.Format(dateKey),
				Reason:    "capacity_exceeded",
				Remaining: remaining,
				Requested: partySize,
			}
		}
	}

	return nil
}

// AvailabilityWindow builds the public per-day view for [from, to]. It is
// derived entirely from capacity accounting; no extra state exists.
func (s *CapacityService) AvailabilityWindow(q database.Queryer, tour *models.Tour, from, to time.Time) ([]models.DayAvailability, error) {
	entries, err := s.availability.GetForRange(q, tour.ID, from, to)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var days []models.DayAvailability
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		entry := entries[day.Format(dateKey)]

		if entry != nil && entry.Type == models.AvailabilityBlocked {
			reason := ""
			if entry.Note != nil {
				reason = *entry.Note
			}
			days = append(days, models.DayAvailability{
				Date:      day.Format(dateKey),
				Available: false,
				Type:      models.AvailabilityBlocked,
				Reason:    reason,
			})
			continue
		}

		capacity := entry.EffectiveCapacity(tour.MaxGroupSize)
		occupied, err := s.occupiedForDay(q, tour.ID, day, now)
		if err != nil {
			return nil, err
		}

		remaining := capacity - occupied
		if remaining < 0 {
			remaining = 0
		}

		dayType := models.AvailabilityAvailable
		if entry != nil {
			dayType = entry.Type
		}

		d := models.DayAvailability{
			Date:           day.Format(dateKey),
			Available:      remaining > 0,
			Type:           dayType,
			SpotsAvailable: remaining,
			BookedSpots:    occupied,
		}
		if remaining == 0 {
			d.Reason = "fully_booked"
		}
		days = append(days, d)
	}

	return days, nil
}

func (s *CapacityService) occupiedForDay(q database.Queryer, tourID uuid.UUID, day, now time.Time) (int, error) {
	booked, err := s.bookings.SumBookedSpotsForDay(q, tourID, day)
	if err != nil {
		return 0, err
	}
	held, err := s.holds.SumLiveSpotsForDay(q, tourID, day, now)
	if err != nil {
		return 0, err
	}
	return booked + held, nil
}
