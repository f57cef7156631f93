package simulation

import (
	"fmt"
	"math"

	"cape-risk-lab/internal/domain"
)

// Engine runs the day-by-day backtest of both contribution strategies over a
// risk-augmented price series. It is pure computation: callers persist the
// resulting trace themselves.
//
// The benchmark leg invests the fixed monthly amount on every month-start
// day, unconditionally. The strategy leg branches on the day's risk value:
// above the sell threshold it liquidates a fraction of peak holdings (any
// day); inside the caution band it does nothing; below the caution band it
// buys on month starts, sized by the tier schedule and by how much idle cash
// previous sales left behind.
//
// A run is deterministic: the same series and parameters always produce an
// identical trace.
type Engine struct {
	params domain.SimulationParams
	tiers  []domain.RiskTier
}

// NewEngine creates an engine with the default tier schedule.
func NewEngine(params domain.SimulationParams) *Engine {
	return &Engine{params: params, tiers: domain.DefaultTiers}
}

// NewEngineWithTiers creates an engine with a custom accumulation schedule.
// Tiers must be ordered highest bucket first, as domain.DefaultTiers is.
func NewEngineWithTiers(params domain.SimulationParams, tiers []domain.RiskTier) *Engine {
	return &Engine{params: params, tiers: tiers}
}

// legState is the running portfolio state of one leg.
type legState struct {
	shares   float64
	cashflow float64 // cumulative, negative = net invested
	invested float64 // gross purchases, non-decreasing
}

func (s *legState) buy(amount, price float64) {
	s.shares += amount / price
	s.cashflow -= amount
	s.invested += amount
}

// Run simulates both legs over the series, one pass, and returns the daily
// trace. Rows before January 1 of the configured start year are skipped. An
// empty (or fully filtered) series yields an empty trace, not an error.
func (e *Engine) Run(points []domain.RiskPoint) ([]domain.DailyResult, error) {
	if e.params.MonthlyInvestment <= 0 {
		return nil, fmt.Errorf("monthly investment %v: %w", e.params.MonthlyInvestment, ErrNonPositiveContribution)
	}
	for i := 1; i < len(points); i++ {
		if !points[i-1].Date.Before(points[i].Date) {
			return nil, fmt.Errorf("row %d (%s): %w", i, points[i].Date.Format("2006-01-02"), ErrUnsortedSeries)
		}
	}

	var (
		bench      legState
		strat      legState
		peakShares float64 // strategy only, never decreases
		newMoney   float64 // externally sourced capital, excludes reinvested proceeds
	)

	results := make([]domain.DailyResult, 0, len(points))
	for _, p := range points {
		if p.Date.Year() < e.params.StartYear {
			continue
		}
		price := p.Price
		monthStart := p.Date.Day() == 1

		if monthStart {
			bench.buy(e.params.MonthlyInvestment, price)
		}

		risk := p.Risk
		switch {
		case math.IsNaN(risk):
			// Undefined risk: no strategy action today.
		case risk > domain.SellThreshold:
			// Sell leg, any day of the month. Selling never resets the peak.
			sellShares := math.Min(peakShares*domain.SellFraction, strat.shares)
			strat.shares -= sellShares
			strat.cashflow += sellShares * price
		case risk >= domain.HoldThreshold:
			// Caution band: hold.
		case monthStart:
			buy, newPortion := e.buySize(risk, strat.cashflow, newMoney)
			if buy > 0 {
				strat.buy(buy, price)
				peakShares = math.Max(peakShares, strat.shares)
				newMoney += newPortion
			}
		}

		results = append(results, domain.DailyResult{
			Date:                   p.Date,
			Risk:                   risk,
			BenchmarkValue:         bench.shares * price,
			StrategyValue:          strat.shares * price,
			BenchmarkCashflow:      domain.CumulativeCashflow(bench.cashflow),
			StrategyCashflow:       domain.CumulativeCashflow(strat.cashflow),
			BenchmarkInvested:      bench.invested,
			StrategyInvested:       strat.invested,
			BenchmarkCapitalAtRisk: -bench.invested,
			StrategyCapitalAtRisk:  -newMoney,
			BenchmarkProfit:        bench.shares*price + bench.cashflow,
			StrategyProfit:         strat.shares*price + strat.cashflow,
		})
	}

	for i := range results {
		results[i].BenchmarkPctProfit = pctProfit(results[i].BenchmarkProfit, results[i].BenchmarkCapitalAtRisk)
		results[i].StrategyPctProfit = pctProfit(results[i].StrategyProfit, results[i].StrategyCapitalAtRisk)
	}
	return results, nil
}

// buySize decides the month-start purchase for the strategy leg: the total
// amount to spend and the portion of it that counts as new external money.
//
// With no idle sale proceeds the fixed schedule applies. Otherwise the tier's
// percentage of the proceeds is the candidate buy; if that is below the
// reinvest minimum, either the whole cash pile plus the fixed increment is
// deployed (deep-undervaluation case) or the engine falls back to the fixed
// schedule. A percentage buy at or above the minimum is pure reinvestment
// and adds no new money.
func (e *Engine) buySize(risk, cashflow, newMoney float64) (buy, newPortion float64) {
	tier, ok := domain.TierFor(e.tiers, risk)
	if !ok {
		return 0, 0
	}
	if cashflow <= -newMoney {
		return tier.FixedAmount, tier.FixedAmount
	}
	proceeds := math.Max(0, cashflow+newMoney)
	potential := proceeds * tier.Fraction
	if potential < domain.ReinvestMinimum {
		if proceeds > 0 && risk < domain.DeployAllBelow {
			return proceeds + tier.FixedAmount, tier.FixedAmount
		}
		return tier.FixedAmount, tier.FixedAmount
	}
	return potential, 0
}

// pctProfit expresses profit as a percentage of committed capital. A leg with
// no capital committed reads 0; a degenerate division reads NaN.
func pctProfit(profit, capitalAtRisk float64) float64 {
	if capitalAtRisk == 0 {
		return 0
	}
	pct := profit / math.Abs(capitalAtRisk) * 100
	if math.IsInf(pct, 0) {
		return math.NaN()
	}
	return pct
}
