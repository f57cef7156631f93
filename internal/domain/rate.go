package domain

import "time"

// RateObservation is one point of a historical risk-free rate series: the
// annual rate (decimal, 0.02 = 2%) in effect from Date onward. Series are
// ordered ascending by date and forward-filled between observations.
type RateObservation struct {
	Date       time.Time
	AnnualRate float64
}
