package models

import (
	"time"

	"github.com/google/uuid"
)

// Platform-wide pricing defaults, used when a tour has no PricingConfig row.
const (
	DefaultChildDiscountPercent = 30.0
	DefaultChildMinAge          = 3
	DefaultChildMaxAge          = 11
	DefaultInfantMaxAge         = 2
	DefaultInfantPrice          = 0.0
	DefaultServiceFeePercent    = 5.0
	DefaultServiceFeeFixed      = 0.0
	DefaultGroupThreshold       = 6
	DefaultGroupDiscountPercent = 10.0
	DefaultEarlyBirdDays        = 30
	DefaultEarlyBirdPercent     = 0.0
	DefaultDepositPercent       = 20.0
	DefaultDepositMinimum       = 50.0
)

// PricingConfig is the per-tour override of discount and fee parameters
// (tour_pricing_configs table). It is read-only input to the pricing engine;
// absent fields fall back to platform defaults via DefaultPricingConfig.
type PricingConfig struct {
	TourID               uuid.UUID `json:"tour_id" db:"tour_id"`
	ChildDiscountPercent float64   `json:"child_discount_percent" db:"child_discount_percent"`
	ChildMinAge          int       `json:"child_min_age" db:"child_min_age"`
	ChildMaxAge          int       `json:"child_max_age" db:"child_max_age"`
	InfantMaxAge         int       `json:"infant_max_age" db:"infant_max_age"`
	InfantPrice          float64   `json:"infant_price" db:"infant_price"`
	ServiceFeePercent    float64   `json:"service_fee_percent" db:"service_fee_percent"`
	ServiceFeeFixed      float64   `json:"service_fee_fixed" db:"service_fee_fixed"`
	GroupThreshold       int       `json:"group_discount_threshold" db:"group_discount_threshold"`
	GroupDiscountPercent float64   `json:"group_discount_percent" db:"group_discount_percent"`
	EarlyBirdDays        int       `json:"early_bird_days" db:"early_bird_days"`
	EarlyBirdPercent     float64   `json:"early_bird_percent" db:"early_bird_percent"`
	DepositEnabled       bool      `json:"deposit_enabled" db:"deposit_enabled"`
	DepositPercent       float64   `json:"deposit_percent" db:"deposit_percent"`
	DepositMinimum       float64   `json:"deposit_minimum" db:"deposit_minimum"`
	UpdatedAt            time.Time `json:"updated_at" db:"updated_at"`
}

// DefaultPricingConfig returns the platform defaults for a tour without
// an explicit config row.
func DefaultPricingConfig(tourID uuid.UUID) *PricingConfig {
	return &PricingConfig{
		TourID:               tourID,
		ChildDiscountPercent: DefaultChildDiscountPercent,
		ChildMinAge:          DefaultChildMinAge,
		ChildMaxAge:          DefaultChildMaxAge,
		InfantMaxAge:         DefaultInfantMaxAge,
		InfantPrice:          DefaultInfantPrice,
		ServiceFeePercent:    DefaultServiceFeePercent,
		ServiceFeeFixed:      DefaultServiceFeeFixed,
		GroupThreshold:       DefaultGroupThreshold,
		GroupDiscountPercent: DefaultGroupDiscountPercent,
		EarlyBirdDays:        DefaultEarlyBirdDays,
		EarlyBirdPercent:     DefaultEarlyBirdPercent,
		DepositEnabled:       false,
		DepositPercent:       DefaultDepositPercent,
		DepositMinimum:       DefaultDepositMinimum,
	}
}

// PriceBreakdown is the additive quote shown to the buyer and stored on the
// booking. Group and early-bird discounts are each taken against the same
// pre-fee subtotal and summed, never compounded, so the breakdown stays
// auditable: total = base + accommodation + activities - discount + tax.
type PriceBreakdown struct {
	BaseAmount          float64 `json:"base_amount"`
	AccommodationAmount float64 `json:"accommodation_amount"`
	ActivitiesAmount    float64 `json:"activities_amount"`
	TaxAmount           float64 `json:"tax_amount"` // service fee
	DiscountAmount      float64 `json:"discount_amount"`
	TotalAmount         float64 `json:"total_amount"`
}

// Subtotal returns the pre-discount, pre-fee sum
func (b PriceBreakdown) Subtotal() float64 {
	return b.BaseAmount + b.AccommodationAmount + b.ActivitiesAmount
}
