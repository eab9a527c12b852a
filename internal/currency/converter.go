// Package currency converts between NZD and AUD at a fixed rate.
package currency

import (
	"math"

	"github.com/shopspring/decimal"
)

// DefaultNZDToAUDRate is the rate used when none is configured.
// It is not refreshed at runtime and can go stale.
const DefaultNZDToAUDRate = 0.91

// Converter converts amounts between NZD and AUD. No rounding is applied.
type Converter struct {
	rate float64
}

// NewConverter creates a converter for the given NZD→AUD rate.
// A non-positive rate falls back to DefaultNZDToAUDRate.
func NewConverter(nzdToAudRate float64) *Converter {
	if nzdToAudRate <= 0 {
		nzdToAudRate = DefaultNZDToAUDRate
	}
	return &Converter{rate: nzdToAudRate}
}

// Rate returns the NZD→AUD rate
func (c *Converter) Rate() float64 {
	return c.rate
}

// NzdToAud converts an NZD amount to AUD
func (c *Converter) NzdToAud(amount float64) float64 {
	return amount * c.rate
}

// AudToNzd converts an AUD amount to NZD
func (c *Converter) AudToNzd(amount float64) float64 {
	return amount / c.rate
}

// finite reports whether decimal can represent the amount
func finite(amount float64) bool {
	return !math.IsNaN(amount) && !math.IsInf(amount, 0)
}

// Round2 rounds an amount to cents for display. NaN and infinities are
// returned unchanged.
func Round2(amount float64) float64 {
	if !finite(amount) {
		return amount
	}
	return decimal.NewFromFloat(amount).Round(2).InexactFloat64()
}

// Sum adds amounts in decimal so totals of many prices do not drift.
// Any NaN or infinity makes the result follow float64 addition.
func Sum(amounts ...float64) float64 {
	total := decimal.Zero
	for _, a := range amounts {
		if !finite(a) {
			var f float64
			for _, b := range amounts {
				f += b
			}
			return f
		}
		total = total.Add(decimal.NewFromFloat(a))
	}
	return total.InexactFloat64()
}
