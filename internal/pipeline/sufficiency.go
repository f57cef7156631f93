package pipeline

import (
	"context"
	"fmt"
	"time"

	"cape-risk-lab/internal/domain"
	"cape-risk-lab/internal/storage"
)

// Default thresholds for the sufficiency checks.
const (
	defaultMaxGapDays = 31
)

// SufficiencyCheck represents one data sufficiency criterion.
type SufficiencyCheck struct {
	Name      string
	Threshold string
	Actual    string
	Pass      bool
}

// SufficiencyResult contains all checks.
type SufficiencyResult struct {
	Checks  []SufficiencyCheck
	AllPass bool
	Errors  []string // data integrity errors
}

// SufficiencyChecker validates the observation series before analysis: a
// rolling-window risk metric over too little or gappy data produces tables
// that look plausible and mean nothing.
type SufficiencyChecker struct {
	observationStore storage.ObservationStore

	windowUpper  int // rows needed before the first risk value exists
	minSpanYears int // at least one full period stride
	maxGapDays   int
}

// NewSufficiencyChecker creates a new sufficiency checker. windowUpper is the
// rolling window of the risk computation; minSpanYears is the period stride.
func NewSufficiencyChecker(observationStore storage.ObservationStore, windowUpper, minSpanYears int) *SufficiencyChecker {
	return &SufficiencyChecker{
		observationStore: observationStore,
		windowUpper:      windowUpper,
		minSpanYears:     minSpanYears,
		maxGapDays:       defaultMaxGapDays,
	}
}

// Check performs all sufficiency checks over the stored observation series.
func (c *SufficiencyChecker) Check(ctx context.Context) (*SufficiencyResult, error) {
	obs, err := c.observationStore.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load observations: %w", err)
	}

	result := &SufficiencyResult{
		Checks:  make([]SufficiencyCheck, 0, 5),
		AllPass: true,
		Errors:  []string{},
	}

	add := func(check SufficiencyCheck, errs []string) {
		result.Checks = append(result.Checks, check)
		if !check.Pass {
			result.AllPass = false
			result.Errors = append(result.Errors, errs...)
		}
	}

	add(c.checkObservationCount(obs), nil)
	add(c.checkSeriesSpan(obs), nil)

	check, errs := c.checkDuplicateDates(obs)
	add(check, errs)

	check, errs = c.checkPositiveValues(obs)
	add(check, errs)

	check, errs = c.checkContinuity(obs)
	add(check, errs)

	return result, nil
}

// checkObservationCount: enough rows to fill the first rolling window.
func (c *SufficiencyChecker) checkObservationCount(obs []domain.DailyObservation) SufficiencyCheck {
	return SufficiencyCheck{
		Name:      "Observation count",
		Threshold: fmt.Sprintf(">= %d", c.windowUpper),
		Actual:    fmt.Sprintf("%d", len(obs)),
		Pass:      len(obs) >= c.windowUpper,
	}
}

// checkSeriesSpan: the series must cover at least one full period stride.
func (c *SufficiencyChecker) checkSeriesSpan(obs []domain.DailyObservation) SufficiencyCheck {
	threshold := fmt.Sprintf(">= %d years", c.minSpanYears)
	if len(obs) == 0 {
		return SufficiencyCheck{
			Name:      "Series span",
			Threshold: threshold,
			Actual:    "0 years (no data)",
			Pass:      false,
		}
	}

	first, last := obs[0].Date, obs[len(obs)-1].Date
	spanYears := last.Sub(first).Hours() / 24 / 365.25
	return SufficiencyCheck{
		Name:      "Series span",
		Threshold: threshold,
		Actual:    fmt.Sprintf("%.1f years", spanYears),
		Pass:      spanYears >= float64(c.minSpanYears),
	}
}

// checkDuplicateDates: duplicate observation dates == 0.
func (c *SufficiencyChecker) checkDuplicateDates(obs []domain.DailyObservation) (SufficiencyCheck, []string) {
	seen := make(map[string]int)
	for _, o := range obs {
		seen[o.Date.UTC().Format("2006-01-02")]++
	}

	duplicateCount := 0
	var errs []string
	for _, o := range obs {
		key := o.Date.UTC().Format("2006-01-02")
		if seen[key] > 1 {
			duplicateCount++
			errs = append(errs, fmt.Sprintf("duplicate observation date: %s (count=%d)", key, seen[key]))
			seen[key] = 1 // report each date once
		}
	}

	return SufficiencyCheck{
		Name:      "Duplicate dates",
		Threshold: "= 0",
		Actual:    fmt.Sprintf("%d", duplicateCount),
		Pass:      duplicateCount == 0,
	}, errs
}

// checkPositiveValues: non-positive prices or valuation ratios == 0. The risk
// computation works in log space and rejects them outright.
func (c *SufficiencyChecker) checkPositiveValues(obs []domain.DailyObservation) (SufficiencyCheck, []string) {
	invalidCount := 0
	var errs []string
	for _, o := range obs {
		if o.Price <= 0 {
			invalidCount++
			errs = append(errs, fmt.Sprintf("non-positive price on %s: %g", o.Date.Format("2006-01-02"), o.Price))
		}
		if o.ValuationRatio <= 0 {
			invalidCount++
			errs = append(errs, fmt.Sprintf("non-positive valuation ratio on %s: %g", o.Date.Format("2006-01-02"), o.ValuationRatio))
		}
	}

	return SufficiencyCheck{
		Name:      "Non-positive values",
		Threshold: "= 0",
		Actual:    fmt.Sprintf("%d", invalidCount),
		Pass:      invalidCount == 0,
	}, errs
}

// checkContinuity: largest gap between consecutive observations stays within
// a month. A month-start buy schedule cannot tolerate missing months.
func (c *SufficiencyChecker) checkContinuity(obs []domain.DailyObservation) (SufficiencyCheck, []string) {
	threshold := fmt.Sprintf("<= %d days", c.maxGapDays)
	if len(obs) < 2 {
		return SufficiencyCheck{
			Name:      "Largest gap",
			Threshold: threshold,
			Actual:    "n/a",
			Pass:      true,
		}, nil
	}

	maxGap := 0
	var gapEnd time.Time
	for i := 1; i < len(obs); i++ {
		gap := int(obs[i].Date.Sub(obs[i-1].Date).Hours() / 24)
		if gap > maxGap {
			maxGap = gap
			gapEnd = obs[i].Date
		}
	}

	var errs []string
	pass := maxGap <= c.maxGapDays
	if !pass {
		errs = append(errs, fmt.Sprintf("gap of %d days ending %s", maxGap, gapEnd.Format("2006-01-02")))
	}

	return SufficiencyCheck{
		Name:      "Largest gap",
		Threshold: threshold,
		Actual:    fmt.Sprintf("%d days", maxGap),
		Pass:      pass,
	}, errs
}
