package lookup

import (
	"errors"
	"time"

	"cape-risk-lab/internal/domain"
)

// ErrNoRateData is returned when the rate series is empty.
var ErrNoRateData = errors.New("no risk-free rate data available")

// RateAt returns the annual rate in effect at the target date: the closest
// observation at or before it (forward-fill). If the target predates the
// whole series, the first observation is used. Returns ErrNoRateData if the
// series is empty.
func RateAt(target time.Time, rates []domain.RateObservation) (float64, error) {
	if len(rates) == 0 {
		return 0, ErrNoRateData
	}

	for i := len(rates) - 1; i >= 0; i-- {
		if !rates[i].Date.After(target) {
			return rates[i].AnnualRate, nil
		}
	}

	return rates[0].AnnualRate, nil
}
