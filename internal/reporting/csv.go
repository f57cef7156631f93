package reporting

import (
	"fmt"
	"strings"

	"cape-risk-lab/internal/domain"
)

// RenderReturnsCSV renders the period returns table as CSV string.
func RenderReturnsCSV(rows []domain.PeriodReturnsRow) string {
	var sb strings.Builder

	sb.WriteString("period,years,benchmark_return_pct,strategy_return_pct,outperformance_pct,")
	sb.WriteString("benchmark_max_drawdown_pct,strategy_max_drawdown_pct\n")

	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("%s,%d,%.6f,%.6f,%.6f,%.6f,%.6f\n",
			r.Period,
			r.Years,
			r.BenchmarkReturnPct,
			r.StrategyReturnPct,
			r.OutperformancePct,
			r.BenchmarkMaxDrawdownPct,
			r.StrategyMaxDrawdownPct,
		))
	}

	return sb.String()
}

// RenderRiskCSV renders the period risk table as CSV string.
func RenderRiskCSV(rows []domain.PeriodRiskRow) string {
	var sb strings.Builder

	sb.WriteString("period,years,benchmark_sharpe,strategy_sharpe,benchmark_irr_pct,strategy_irr_pct\n")

	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("%s,%d,%.6f,%.6f,%.6f,%.6f\n",
			r.Period,
			r.Years,
			r.BenchmarkSharpe,
			r.StrategySharpe,
			r.BenchmarkIRRPct,
			r.StrategyIRRPct,
		))
	}

	return sb.String()
}
