package performance

import (
	"math"
	"time"

	"cape-risk-lab/internal/domain"
	"cape-risk-lab/internal/lookup"
)

// RateSource supplies the annual risk-free rate in effect for a given month.
// It is an explicit analyzer dependency, never process-wide state, so
// concurrent analyses can run with different rate configurations.
type RateSource interface {
	AnnualRateAt(month time.Time) (float64, error)
}

// FlatRate is a constant annual risk-free rate.
type FlatRate float64

// DefaultFlatRate is the production default.
const DefaultFlatRate = FlatRate(0.02)

func (r FlatRate) AnnualRateAt(time.Time) (float64, error) {
	return float64(r), nil
}

// HistoricalRates serves an observed rate series (e.g. 3-month treasury
// bills) with forward-fill alignment to the analyzer's months.
type HistoricalRates struct {
	rates []domain.RateObservation
}

// NewHistoricalRates wraps a rate series ordered ascending by date.
func NewHistoricalRates(rates []domain.RateObservation) *HistoricalRates {
	return &HistoricalRates{rates: rates}
}

func (h *HistoricalRates) AnnualRateAt(month time.Time) (float64, error) {
	return lookup.RateAt(month, h.rates)
}

// MonthlyEquivalent converts an annual rate to its compound monthly
// equivalent.
func MonthlyEquivalent(annual float64) float64 {
	return math.Pow(1+annual, 1.0/12) - 1
}

var (
	_ RateSource = FlatRate(0)
	_ RateSource = (*HistoricalRates)(nil)
)
