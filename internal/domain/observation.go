package domain

import "time"

// DailyObservation is one merged row of the input series: the index level and
// the valuation ratio for a single trading day. The loader guarantees one row
// per day with strictly increasing dates; the core re-validates before use.
type DailyObservation struct {
	Date           time.Time // calendar date, UTC midnight
	Price          float64   // index level, > 0
	ValuationRatio float64   // cyclically adjusted P/E, > 0
}

// MonthStart reports whether the observation falls on the first calendar day of its
// month. Contribution schedules key off this, not off "first trading day".
func (o DailyObservation) MonthStart() bool {
	return o.Date.Day() == 1
}
