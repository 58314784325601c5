package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tourvista/tours-backend/internal/models"
)

func newCheckoutFixture(tour *models.Tour) (*CheckoutService, *fakeTourSource, *fakeHoldStore) {
	tours := newFakeTourSource(tour)
	store := newFakeHoldStore()
	holds := newHoldService(store, emptyCapacity(nil))
	return NewCheckoutService(tours, NewPricingService(), holds), tours, store
}

func TestQuote_PlacesHoldAndPrices(t *testing.T) {
	tour := testTour(500, 3, 10)
	svc, _, store := newCheckoutFixture(tour)

	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	svc.holds.now = func() time.Time { return now }

	resp, err := svc.Quote(&models.QuoteRequest{
		TourID:    tour.ID.String(),
		StartDate: "2026-07-15",
		Adults:    2,
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, 1000.0, resp.PriceBreakdown.TotalAmount)
	assert.Equal(t, "USD", resp.Currency)
	assert.Equal(t, int(15*time.Minute.Seconds()), resp.TTLSeconds)
	// Deposits disabled: the full amount is due
	assert.Equal(t, 1000.0, resp.DepositDue)

	hold := store.holds[resp.HoldID]
	require.NotNil(t, hold)
	assert.Equal(t, models.HoldStatusActive, hold.Status)
	assert.Equal(t, 2, hold.Spots)
	assert.Equal(t, resp.ExpiresAt, hold.ExpiresAt)
}

func TestQuote_RejectsBadStartDates(t *testing.T) {
	tour := testTour(500, 3, 10)
	svc, _, store := newCheckoutFixture(tour)

	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	_, err := svc.Quote(&models.QuoteRequest{
		TourID:    tour.ID.String(),
		StartDate: "15-07-2026",
		Adults:    2,
	}, nil)
	assert.ErrorIs(t, err, ErrInvalidStartDate)

	_, err = svc.Quote(&models.QuoteRequest{
		TourID:    tour.ID.String(),
		StartDate: "2026-05-01",
		Adults:    2,
	}, nil)
	assert.ErrorIs(t, err, ErrInvalidStartDate)

	assert.Empty(t, store.holds)
}

func TestQuote_UnknownTour(t *testing.T) {
	svc, _, _ := newCheckoutFixture(testTour(500, 3, 10))
	svc.now = func() time.Time { return time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC) }

	_, err := svc.Quote(&models.QuoteRequest{
		TourID:    "not-a-uuid",
		StartDate: "2026-07-15",
		Adults:    2,
	}, nil)
	assert.ErrorIs(t, err, ErrTourNotFound)
}

func TestQuote_PausedTour(t *testing.T) {
	tour := testTour(500, 3, 10)
	tour.Status = models.TourStatusPaused
	svc, _, store := newCheckoutFixture(tour)
	svc.now = func() time.Time { return time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC) }

	_, err := svc.Quote(&models.QuoteRequest{
		TourID:    tour.ID.String(),
		StartDate: "2026-07-15",
		Adults:    2,
	}, nil)
	assert.ErrorIs(t, err, ErrTourUnavailable)
	assert.Empty(t, store.holds)
}

func TestQuote_UnknownSelectionRejected(t *testing.T) {
	tour := testTour(500, 3, 10)
	svc, _, store := newCheckoutFixture(tour)
	svc.now = func() time.Time { return time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC) }

	// fakeTourSource resolves no accommodations, so any selection is unknown
	_, err := svc.Quote(&models.QuoteRequest{
		TourID:                   tour.ID.String(),
		StartDate:                "2026-07-15",
		Adults:                   2,
		SelectedAccommodationIDs: []string{"11111111-1111-1111-1111-111111111111"},
	}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown accommodation selection")
	assert.Empty(t, store.holds)
}
