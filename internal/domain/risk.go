package domain

import (
	"math"
	"time"
)

// RiskPoint is one row of the computed risk series. It carries the source
// observation plus the rolling/historical statistics and the normalized risk
// metric. Corresponds to the risk_series table in ClickHouse.
//
// Risk is NaN when the statistical corridor for the row collapsed
// (upper bound == lower bound). NaN means "undefined", never "zero": the
// simulation engine takes no risk-driven action on such days.
type RiskPoint struct {
	Date           time.Time
	Price          float64
	ValuationRatio float64

	// Rolling statistics. Means are re-mapped out of log space; the standard
	// deviations stay in log space because the bounds are built there.
	RollingMeanUpper float64
	RollingStdUpper  float64
	RollingMeanLower float64
	RollingStdLower  float64
	UpperBound       float64
	LowerBound       float64

	// Whole-series historical statistics, constant across the series.
	HistoricalAvg   float64
	HistoricalUpper float64
	HistoricalLower float64

	Risk float64 // normalized to [0,1], or NaN when undefined
}

// RiskDefined reports whether the row carries a usable risk value.
func (p RiskPoint) RiskDefined() bool {
	return !math.IsNaN(p.Risk)
}
