package domain

// PerformanceMetrics holds risk-adjusted performance figures for one leg of
// one simulation run. Returns and deviations are annualized from monthly
// figures; the IRR is the annualized internal rate of return over the monthly
// cashflow event stream.
type PerformanceMetrics struct {
	MeanAnnualReturn float64
	AnnualStdDev     float64
	RiskFreeRate     float64 // average annual rate actually applied
	SharpeRatio      float64
	AnnualIRR        float64

	// IRRConverged is false when the root-find failed and AnnualIRR was
	// reported as 0 per the numeric-guard policy.
	IRRConverged bool
}
