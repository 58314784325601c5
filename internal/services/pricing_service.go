package services

import (
	"math"
	"time"

	"github.com/tourvista/tours-backend/internal/models"
)

// QuoteInput carries everything the pricing engine needs. BookedAt is the
// lead-time anchor: it is the hold's creation time, never wall clock at
// evaluation time, so redisplaying a quote can not flip early-bird
// eligibility.
type QuoteInput struct {
	Tour           *models.Tour
	Config         *models.PricingConfig
	Adults         int
	Children       int
	Infants        int
	Accommodations []models.AccommodationOption
	Addons         []models.ActivityAddon
	StartDate      time.Time
	BookedAt       time.Time
}

// PartySize returns the total number of travelers
func (in QuoteInput) PartySize() int {
	return in.Adults + in.Children + in.Infants
}

// PricingService derives price breakdowns. It is a pure calculator:
// identical inputs always produce identical breakdowns, and nothing here
// reads the clock or the database.
type PricingService struct{}

// NewPricingService creates a new PricingService
func NewPricingService() *PricingService {
	return &PricingService{}
}

// Quote computes the additive price breakdown for a party.
//
// Discount stacking is deliberately non-compounding: group and early-bird
// percentages are each taken against the same pre-fee subtotal and the two
// amounts are summed. This mirrors the marketplace's established policy and
// keeps every line of the breakdown independently auditable.
func (s *PricingService) Quote(in QuoteInput) models.PriceBreakdown {
	tour := in.Tour
	cfg := in.Config

	// Per-person base: adults at full price, children discounted, infants
	// at the flat infant price independent of the base.
	adultTotal := float64(in.Adults) * tour.BasePrice
	childPrice := tour.BasePrice * (1 - cfg.ChildDiscountPercent/100)
	childTotal := float64(in.Children) * childPrice
	infantTotal := float64(in.Infants) * cfg.InfantPrice
	base := round2(adultTotal + childTotal + infantTotal)

	// Accommodation: nights x nightly rate, multiplied by paying travelers
	// for per-person tiers. Infants never occupy a paid bed.
	nights := float64(tour.Nights())
	payingTravelers := float64(in.Adults + in.Children)
	var accommodation float64
	for _, opt := range in.Accommodations {
		if opt.PerPerson {
			accommodation += opt.PricePerNight * nights * payingTravelers
		} else {
			accommodation += opt.PricePerNight * nights
		}
	}
	accommodation = round2(accommodation)

	// Activity add-ons at flat or per-person rates
	var activities float64
	for _, addon := range in.Addons {
		switch addon.PriceType {
		case models.AddonPricePerPerson:
			activities += addon.Price * payingTravelers
		default:
			activities += addon.Price
		}
	}
	activities = round2(activities)

	subtotal := base + accommodation + activities

	var discount float64
	if cfg.GroupThreshold > 0 && in.PartySize() >= cfg.GroupThreshold {
		discount += subtotal * cfg.GroupDiscountPercent / 100
	}
	if cfg.EarlyBirdPercent > 0 && leadDays(in.BookedAt, in.StartDate) >= cfg.EarlyBirdDays {
		discount += subtotal * cfg.EarlyBirdPercent / 100
	}
	discount = round2(discount)

	discounted := subtotal - discount
	tax := round2(discounted*cfg.ServiceFeePercent/100 + cfg.ServiceFeeFixed)

	return models.PriceBreakdown{
		BaseAmount:          base,
		AccommodationAmount: accommodation,
		ActivitiesAmount:    activities,
		DiscountAmount:      discount,
		TaxAmount:           tax,
		TotalAmount:         round2(discounted + tax),
	}
}

// Deposit computes the amount due at checkout. With deposits disabled the
// full total is due.
func (s *PricingService) Deposit(cfg *models.PricingConfig, total float64) float64 {
	if !cfg.DepositEnabled {
		return total
	}
	deposit := total * cfg.DepositPercent / 100
	if deposit < cfg.DepositMinimum {
		deposit = cfg.DepositMinimum
	}
	if deposit > total {
		deposit = total
	}
	return round2(deposit)
}

// leadDays returns whole days between booking time and trip start
func leadDays(bookedAt, start time.Time) int {
	if !start.After(bookedAt) {
		return 0
	}
	return int(start.Sub(bookedAt).Hours() / 24)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
