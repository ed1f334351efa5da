package usecase

import (
	"github.com/arbilens/backend/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	// DefaultBufferRate is the safety margin added on top of acquisition cost
	DefaultBufferRate = decimal.RequireFromString("0.05")

	// DefaultReferralRate is the marketplace cut of the list price when the catalog has no explicit figure
	DefaultReferralRate = decimal.RequireFromString("0.15")

	hundred = decimal.NewFromInt(100)
)

// Calculator derives cost, profit and ROI. It holds no state besides its rates.
type Calculator struct {
	bufferRate   decimal.Decimal
	referralRate decimal.Decimal
}

// NewCalculator creates a calculator with explicit rates
func NewCalculator(bufferRate, referralRate decimal.Decimal) *Calculator {
	return &Calculator{
		bufferRate:   bufferRate,
		referralRate: referralRate,
	}
}

// NewCalculatorFromFloats builds a calculator from configuration values
func NewCalculatorFromFloats(bufferRate, referralRate float64) *Calculator {
	return NewCalculator(decimal.NewFromFloat(bufferRate), decimal.NewFromFloat(referralRate))
}

// DefaultCalculator uses a 5% buffer and 15% referral rate
func DefaultCalculator() *Calculator {
	return NewCalculator(DefaultBufferRate, DefaultReferralRate)
}

// BufferRate returns the configured buffer fraction
func (c *Calculator) BufferRate() decimal.Decimal { return c.bufferRate }

// ReferralRate returns the configured referral fraction
func (c *Calculator) ReferralRate() decimal.Decimal { return c.referralRate }

// Compute returns the cost breakdown for a row at the given acquisition cost.
// An explicit referral fee on the row takes precedence over the rate estimate.
// ROI is 0 when acquisition cost is 0.
func (c *Calculator) Compute(row domain.CatalogRow, acquisitionCost decimal.Decimal) domain.CostBreakdown {
	if acquisitionCost.IsNegative() {
		acquisitionCost = decimal.Zero
	}

	buffer := acquisitionCost.Mul(c.bufferRate)

	referral := row.ListPrice.Mul(c.referralRate)
	if row.ReferralFee != nil {
		referral = *row.ReferralFee
	}

	total := acquisitionCost.Add(buffer).Add(row.PlatformFee).Add(referral)
	profit := row.ListPrice.Sub(total)

	roi := decimal.Zero
	if acquisitionCost.IsPositive() {
		roi = profit.Div(acquisitionCost).Mul(hundred)
	}

	return domain.CostBreakdown{
		AcquisitionCost: acquisitionCost,
		Buffer:          buffer,
		PlatformFee:     row.PlatformFee,
		ReferralFee:     referral,
		TotalCost:       total,
		NetProfit:       profit,
		ROI:             roi,
	}
}

// ComputeForOffer computes costs for the chosen offer, or the zero-acquisition case when there is none
func (c *Calculator) ComputeForOffer(row domain.CatalogRow, offer *domain.Offer) domain.CostBreakdown {
	if offer == nil {
		return c.Compute(row, decimal.Zero)
	}
	return c.Compute(row, offer.Price)
}
