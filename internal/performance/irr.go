package performance

import (
	"math"

	"cape-risk-lab/internal/domain"
)

// internalRate finds the periodic internal rate of return of a cashflow
// event stream: the rate r for which the net present value
// sum(cf_i / (1+r)^i) is zero.
//
// The stream must contain both positive and negative entries for a root to
// exist. Candidate roots are located by scanning for NPV sign changes over
// (-1, 10] and refined by bisection; when several roots exist the one
// closest to zero is returned, matching the usual financial-calculator
// convention. Returns ok=false when no root is found; callers report the
// IRR as 0 in that case.
func internalRate(events []domain.PeriodCashflowEvent) (float64, bool) {
	hasPositive := false
	hasNegative := false
	for _, e := range events {
		if e > 0 {
			hasPositive = true
		}
		if e < 0 {
			hasNegative = true
		}
	}
	if !hasPositive || !hasNegative {
		return 0, false
	}

	npv := func(r float64) float64 {
		sum := 0.0
		discount := 1.0
		for _, e := range events {
			sum += float64(e) / discount
			discount *= 1 + r
		}
		return sum
	}

	const (
		lo   = -0.9999
		hi   = 10.0
		step = 0.0005
	)

	best := math.NaN()
	prev := npv(lo)
	prevR := lo
	for r := lo + step; r <= hi; r += step {
		cur := npv(r)
		if prev == 0 {
			best = closerToZero(best, prevR)
		} else if (prev < 0) != (cur < 0) {
			best = closerToZero(best, bisect(npv, prevR, r))
		}
		prev = cur
		prevR = r
	}
	if math.IsNaN(best) {
		return 0, false
	}
	return best, true
}

func bisect(f func(float64) float64, lo, hi float64) float64 {
	flo := f(lo)
	for i := 0; i < 128; i++ {
		mid := (lo + hi) / 2
		fmid := f(mid)
		if fmid == 0 {
			return mid
		}
		if (flo < 0) != (fmid < 0) {
			hi = mid
		} else {
			lo = mid
			flo = fmid
		}
	}
	return (lo + hi) / 2
}

func closerToZero(best, candidate float64) float64 {
	if math.IsNaN(best) || math.Abs(candidate) < math.Abs(best) {
		return candidate
	}
	return best
}
