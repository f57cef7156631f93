package domain

// Policy thresholds shared by the simulation engine. Risk above SellThreshold
// triggers the sell branch; risk in [HoldThreshold, SellThreshold] is the
// no-action caution band; anything below accumulates on month starts.
const (
	SellThreshold = 0.9
	HoldThreshold = 0.8

	// SellFraction of peak shares is liquidated per sell day.
	SellFraction = 0.1

	// ReinvestMinimum is the percentage-of-cash buy size below which the
	// engine falls back to the fixed schedule (or deploys all idle cash).
	ReinvestMinimum = 500.0

	// DeployAllBelow: when risk is under this level, a sub-minimum
	// percentage buy escalates to spending all idle sale proceeds plus the
	// fixed increment.
	DeployAllBelow = 0.5
)

// RiskTier maps one accumulation risk bucket [Lower, Upper) to its two
// contribution schedules: a fixed dollar amount of new money and a fraction
// of available sale proceeds. Keeping both schedules in one row guarantees
// the bucket boundaries cannot drift apart.
type RiskTier struct {
	Lower       float64
	Upper       float64
	FixedAmount float64
	Fraction    float64
}

// DefaultTiers is the accumulation schedule, highest risk bucket first.
// Buckets cover [0, 0.8); risk at or above HoldThreshold never reaches the
// tier lookup.
var DefaultTiers = []RiskTier{
	{Lower: 0.7, Upper: 0.8, FixedAmount: 50, Fraction: 0.01},
	{Lower: 0.6, Upper: 0.7, FixedAmount: 100, Fraction: 0.02},
	{Lower: 0.5, Upper: 0.6, FixedAmount: 150, Fraction: 0.04},
	{Lower: 0.4, Upper: 0.5, FixedAmount: 200, Fraction: 0.06},
	{Lower: 0.3, Upper: 0.4, FixedAmount: 250, Fraction: 0.08},
	{Lower: 0.2, Upper: 0.3, FixedAmount: 400, Fraction: 0.10},
	{Lower: 0.1, Upper: 0.2, FixedAmount: 500, Fraction: 0.15},
	{Lower: 0.0, Upper: 0.1, FixedAmount: 600, Fraction: 0.20},
}

// TierFor returns the accumulation tier covering the given risk value via an
// ordered scan. The bottom bucket is closed below zero as well: a slightly
// negative risk (float noise from normalization) still lands in the last
// tier, matching a bare "risk < 0.1" fallthrough.
func TierFor(tiers []RiskTier, risk float64) (RiskTier, bool) {
	for i, t := range tiers {
		if risk >= t.Lower && risk < t.Upper {
			return t, true
		}
		if i == len(tiers)-1 && risk < t.Upper {
			return t, true
		}
	}
	return RiskTier{}, false
}
