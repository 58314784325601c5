package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tourvista/tours-backend/internal/models"
)

// ErrInvalidStartDate is returned for unparseable or past start dates
var ErrInvalidStartDate = errors.New("start date is invalid or in the past")

// CheckoutService runs the quote step: price the party, place a hold on
// the capacity, and hand back both so the client can pay against a fixed
// number before the hold lapses.
type CheckoutService struct {
	tours   TourSource
	pricing *PricingService
	holds   *HoldService
	now     func() time.Time
}

// NewCheckoutService creates a new CheckoutService
func NewCheckoutService(tours TourSource, pricing *PricingService, holds *HoldService) *CheckoutService {
	return &CheckoutService{
		tours:   tours,
		pricing: pricing,
		holds:   holds,
		now:     time.Now,
	}
}

// Quote prices a party and places a hold for it. The returned breakdown is
// exactly what Reserve will charge: the hold freezes the selections and the
// pricing instant.
func (s *CheckoutService) Quote(req *models.QuoteRequest, owner *uuid.UUID) (*models.QuoteResponse, error) {
	tourID, err := uuid.Parse(req.TourID)
	if err != nil {
		return nil, ErrTourNotFound
	}

	startDate, err := time.Parse(dateKey, req.StartDate)
	if err != nil {
		return nil, ErrInvalidStartDate
	}
	now := s.now()
	if startDate.Before(now.Truncate(24 * time.Hour)) {
		return nil, ErrInvalidStartDate
	}

	tour, err := s.tours.GetByID(tourID)
	if err != nil {
		return nil, err
	}
	if tour == nil {
		return nil, ErrTourNotFound
	}
	if !tour.IsBookable() {
		return nil, ErrTourUnavailable
	}

	cfg, err := s.tours.GetPricingConfig(tourID)
	if err != nil {
		return nil, err
	}
	accommodations, err := s.tours.GetAccommodations(tourID, req.SelectedAccommodationIDs)
	if err != nil {
		return nil, err
	}
	if len(accommodations) != len(req.SelectedAccommodationIDs) {
		return nil, fmt.Errorf("unknown accommodation selection for tour %s", tourID)
	}
	addons, err := s.tours.GetActivityAddons(tourID, req.SelectedAddonIDs)
	if err != nil {
		return nil, err
	}
	if len(addons) != len(req.SelectedAddonIDs) {
		return nil, fmt.Errorf("unknown activity selection for tour %s", tourID)
	}

	hold, err := s.holds.CreateHold(CreateHoldInput{
		Tour:             tour,
		StartDate:        startDate,
		Adults:           req.Adults,
		Children:         req.Children,
		Infants:          req.Infants,
		AccommodationIDs: req.SelectedAccommodationIDs,
		AddonIDs:         req.SelectedAddonIDs,
		Owner:            owner,
	})
	if err != nil {
		return nil, err
	}

	// The quoted price is anchored to the hold's creation instant so a
	// later Reserve reproduces it exactly.
	breakdown := s.pricing.Quote(QuoteInput{
		Tour:           tour,
		Config:         cfg,
		Adults:         req.Adults,
		Children:       req.Children,
		Infants:        req.Infants,
		Accommodations: accommodations,
		Addons:         addons,
		StartDate:      startDate,
		BookedAt:       hold.CreatedAt,
	})

	return &models.QuoteResponse{
		HoldID:         hold.ID,
		ExpiresAt:      hold.ExpiresAt,
		TTLSeconds:     int(hold.ExpiresAt.Sub(now).Seconds()),
		PriceBreakdown: breakdown,
		DepositDue:     s.pricing.Deposit(cfg, breakdown.TotalAmount),
		Currency:       tour.Currency,
	}, nil
}
