package domain

// CumulativeCashflow is the running net cash transferred into or out of a
// strategy leg since the start of a simulation run. Negative means net
// invested, positive means net withdrawn. It is a distinct type from
// PeriodCashflowEvent so the two can never be confused at an interface
// boundary: a cumulative trace must be differenced before it is treated as a
// stream of discrete events.
type CumulativeCashflow float64

// PositiveCash returns the cash component that counts toward total value:
// sale proceeds sitting idle, never borrowed capital.
func (c CumulativeCashflow) PositiveCash() float64 {
	if c > 0 {
		return float64(c)
	}
	return 0
}

// PeriodCashflowEvent is a single discrete cash movement attributed to one
// period (one month in the analyzer): negative for a contribution, positive
// for a withdrawal or the terminal liquidation value.
type PeriodCashflowEvent float64

// DiffCashflows converts a cumulative cashflow trace into per-period events.
// The first event equals the first cumulative value (everything that happened
// up to and including the first period); each subsequent event is the
// first difference.
func DiffCashflows(cumulative []CumulativeCashflow) []PeriodCashflowEvent {
	if len(cumulative) == 0 {
		return nil
	}
	events := make([]PeriodCashflowEvent, len(cumulative))
	events[0] = PeriodCashflowEvent(cumulative[0])
	for i := 1; i < len(cumulative); i++ {
		events[i] = PeriodCashflowEvent(cumulative[i] - cumulative[i-1])
	}
	return events
}
