package risk

import (
	"fmt"
	"math"

	"cape-risk-lab/internal/domain"
)

// Config controls the statistical corridor of the risk metric.
type Config struct {
	// WindowUpper / WindowLower are the trailing observation counts for the
	// upper and lower rolling statistics. They default equal but are
	// independently configurable.
	WindowUpper int
	WindowLower int

	// NumStdDevs widens the rolling corridor: bounds sit at mean +/- N
	// standard deviations in log space.
	NumStdDevs float64
}

// DefaultConfig returns the production corridor settings.
func DefaultConfig() Config {
	return Config{
		WindowUpper: 300,
		WindowLower: 300,
		NumStdDevs:  3,
	}
}

// Compute transforms a merged price + valuation-ratio series into a risk
// series with a normalized [0,1] overvaluation metric.
//
// Pipeline:
//  1. log_ratio = ln(valuation_ratio)
//  2. trailing rolling mean/std of log_ratio over the upper and lower windows
//  3. upper_bound = exp(mean_u + N*std_u), lower_bound = exp(mean_l - N*std_l)
//  4. rows where the upper window is not yet full are dropped, so the output
//     starts at input row WindowUpper
//  5. historical mean/std of log_ratio over the retained rows only
//  6. raw risk = (valuation_ratio - lower_bound) / (upper_bound - lower_bound),
//     NaN when the corridor collapsed (upper == lower) or a bound is undefined
//  7. final risk = min-max normalization of raw risk over the retained series
//
// Rolling and historical standard deviations are sample deviations (n-1
// denominator). A zero-variance corridor yields NaN risk rows, never an
// error: NaN propagates through normalization and downstream consumers treat
// it as "no action".
//
// The normalization in step 7 makes risk a property of the whole series:
// appending rows can shift the min/max and therefore re-scale every earlier
// value. Callers that compare runs must compare over identical date ranges.
//
// If the input has fewer rows than WindowUpper the result is empty, not an
// error.
func Compute(obs []domain.DailyObservation, cfg Config) ([]domain.RiskPoint, error) {
	if cfg.WindowUpper < 2 {
		return nil, fmt.Errorf("upper window %d: %w", cfg.WindowUpper, ErrInvalidWindow)
	}
	if cfg.WindowLower < 2 {
		return nil, fmt.Errorf("lower window %d: %w", cfg.WindowLower, ErrInvalidWindow)
	}
	if err := validate(obs); err != nil {
		return nil, err
	}

	n := len(obs)
	if n < cfg.WindowUpper {
		return nil, nil
	}

	logRatio := make([]float64, n)
	for i, o := range obs {
		logRatio[i] = math.Log(o.ValuationRatio)
	}

	meanU, stdU := rollingStats(logRatio, cfg.WindowUpper)
	meanL, stdL := rollingStats(logRatio, cfg.WindowLower)

	// Retained rows: those with a full upper window. A larger lower window
	// leaves its statistics NaN on the earliest retained rows, which
	// surfaces as NaN bounds and NaN risk there.
	offset := cfg.WindowUpper - 1
	points := make([]domain.RiskPoint, 0, n-offset)
	for i := offset; i < n; i++ {
		upper := math.Exp(meanU[i] + cfg.NumStdDevs*stdU[i])
		lower := math.Exp(meanL[i] - cfg.NumStdDevs*stdL[i])
		points = append(points, domain.RiskPoint{
			Date:             obs[i].Date,
			Price:            obs[i].Price,
			ValuationRatio:   obs[i].ValuationRatio,
			RollingMeanUpper: math.Exp(meanU[i]),
			RollingStdUpper:  stdU[i],
			RollingMeanLower: math.Exp(meanL[i]),
			RollingStdLower:  stdL[i],
			UpperBound:       upper,
			LowerBound:       lower,
		})
	}

	// Historical statistics over the retained rows only.
	histMean, histStd := meanStdSample(logRatio[offset:])
	histAvg := math.Exp(histMean)
	histUpper := math.Exp(histMean + 2*histStd)
	histLower := math.Exp(histMean - 2*histStd)

	for i := range points {
		points[i].HistoricalAvg = histAvg
		points[i].HistoricalUpper = histUpper
		points[i].HistoricalLower = histLower
		points[i].Risk = rawRisk(points[i])
	}

	normalize(points)
	return points, nil
}

func validate(obs []domain.DailyObservation) error {
	for i, o := range obs {
		if i > 0 && !obs[i-1].Date.Before(o.Date) {
			return fmt.Errorf("row %d (%s): %w", i, o.Date.Format("2006-01-02"), ErrNonMonotonicDates)
		}
		if o.Price <= 0 {
			return fmt.Errorf("row %d (%s): price %v: %w", i, o.Date.Format("2006-01-02"), o.Price, ErrNonPositivePrice)
		}
		if o.ValuationRatio <= 0 {
			return fmt.Errorf("row %d (%s): ratio %v: %w", i, o.Date.Format("2006-01-02"), o.ValuationRatio, ErrNonPositiveRatio)
		}
	}
	return nil
}

// rawRisk positions the valuation ratio inside the rolling corridor.
// A collapsed or undefined corridor yields NaN.
func rawRisk(p domain.RiskPoint) float64 {
	span := p.UpperBound - p.LowerBound
	if span == 0 || math.IsNaN(span) {
		return math.NaN()
	}
	return (p.ValuationRatio - p.LowerBound) / span
}

// normalize rescales the raw risk values to [0,1] in place using the series
// min and max. NaN rows are ignored for the extremes and stay NaN. If every
// defined value is identical the scale degenerates and all rows become NaN.
func normalize(points []domain.RiskPoint) {
	min := math.Inf(1)
	max := math.Inf(-1)
	for _, p := range points {
		if math.IsNaN(p.Risk) {
			continue
		}
		if p.Risk < min {
			min = p.Risk
		}
		if p.Risk > max {
			max = p.Risk
		}
	}
	span := max - min
	for i := range points {
		if math.IsNaN(points[i].Risk) {
			continue
		}
		if span == 0 || math.IsInf(span, 0) {
			points[i].Risk = math.NaN()
			continue
		}
		points[i].Risk = (points[i].Risk - min) / span
	}
}

// rollingStats computes trailing mean and sample standard deviation over a
// fixed window. Rows without a full window are NaN. Mean and variance are
// recomputed per window rather than maintained incrementally: the series are
// decades of daily rows at most, and the direct form avoids drift from
// running-sum cancellation.
func rollingStats(values []float64, window int) (means, stds []float64) {
	n := len(values)
	means = make([]float64, n)
	stds = make([]float64, n)
	for i := 0; i < n; i++ {
		if i < window-1 {
			means[i] = math.NaN()
			stds[i] = math.NaN()
			continue
		}
		m, s := meanStdSample(values[i-window+1 : i+1])
		means[i] = m
		stds[i] = s
	}
	return means, stds
}

// meanStdSample returns the mean and sample standard deviation (n-1
// denominator) of values. The deviation is NaN for fewer than two values.
func meanStdSample(values []float64) (mean, std float64) {
	n := len(values)
	if n == 0 {
		return math.NaN(), math.NaN()
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mean = sum / float64(n)
	if n < 2 {
		return mean, math.NaN()
	}
	ss := 0.0
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return mean, math.Sqrt(ss / float64(n-1))
}
