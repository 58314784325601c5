package services

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/tourvista/tours-backend/internal/database"
	"github.com/tourvista/tours-backend/internal/models"
)

// fakeDB satisfies database.DB for service tests. WithTx just runs the
// closure against itself; the raw query methods are never reached because
// the store fakes answer everything.
type fakeDB struct{}

func (f *fakeDB) Get(dest interface{}, query string, args ...interface{}) error {
	return errors.New("unexpected raw Get in test")
}

func (f *fakeDB) Select(dest interface{}, query string, args ...interface{}) error {
	return errors.New("unexpected raw Select in test")
}

func (f *fakeDB) Exec(query string, args ...interface{}) (sql.Result, error) {
	return nil, errors.New("unexpected raw Exec in test")
}

func (f *fakeDB) QueryRow(query string, args ...interface{}) *sql.Row {
	return nil
}

func (f *fakeDB) WithTx(fn func(tx database.Queryer) error) error {
	return fn(f)
}

func (f *fakeDB) Ping() error { return nil }

func (f *fakeDB) Close() error { return nil }

// fakeAvailability answers GetForRange from a fixed entry map keyed by date
type fakeAvailability struct {
	entries map[string]*models.TourAvailabilityEntry
	err     error
}

func (f *fakeAvailability) GetForRange(q database.Queryer, tourID uuid.UUID, from, to time.Time) (map[string]*models.TourAvailabilityEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]*models.TourAvailabilityEntry)
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		key := day.Format(dateKey)
		if entry, ok := f.entries[key]; ok {
			out[key] = entry
		}
	}
	return out, nil
}

// fakeBookingOccupancy answers booked spots per date
type fakeBookingOccupancy struct {
	spots map[string]int
}

func (f *fakeBookingOccupancy) SumBookedSpotsForDay(q database.Queryer, tourID uuid.UUID, day time.Time) (int, error) {
	return f.spots[day.Format(dateKey)], nil
}

// fakeHoldOccupancy answers held spots per date
type fakeHoldOccupancy struct {
	spots map[string]int
}

func (f *fakeHoldOccupancy) SumLiveSpotsForDay(q database.Queryer, tourID uuid.UUID, day, now time.Time) (int, error) {
	return f.spots[day.Format(dateKey)], nil
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func emptyCapacity(availability *fakeAvailability) *CapacityService {
	if availability == nil {
		availability = &fakeAvailability{}
	}
	return NewCapacityService(
		availability,
		&fakeBookingOccupancy{},
		&fakeHoldOccupancy{},
	)
}
