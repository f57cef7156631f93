package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders report as Markdown string. Returns, drawdowns and
// IRR are presented with two decimals, Sharpe with three.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Multi-Decade Backtest Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Periods analyzed: %d\n\n", r.RunCount))

	// Data Summary
	sb.WriteString("## Data Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Series Start | %s |\n", r.DataSummary.SeriesStart.Format("2006-01-02")))
	sb.WriteString(fmt.Sprintf("| Series End | %s |\n", r.DataSummary.SeriesEnd.Format("2006-01-02")))
	sb.WriteString(fmt.Sprintf("| Total Days Simulated | %d |\n", r.DataSummary.TotalDays))
	sb.WriteString(fmt.Sprintf("| Monthly Investment | %.2f |\n", r.DataSummary.MonthlyInvestment))
	sb.WriteString("\n")

	// Data Quality
	if len(r.DataQuality.SufficiencyChecks) > 0 {
		sb.WriteString("## Data Quality\n\n")
		sb.WriteString("| Check | Threshold | Actual | Status |\n")
		sb.WriteString("|-------|-----------|--------|--------|\n")
		for _, check := range r.DataQuality.SufficiencyChecks {
			status := "FAIL"
			if check.Pass {
				status = "PASS"
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
				check.Name, check.Threshold, check.Actual, status))
		}
		sb.WriteString("\n")

		if len(r.DataQuality.IntegrityErrors) > 0 {
			sb.WriteString("### Integrity Errors\n\n")
			for _, err := range r.DataQuality.IntegrityErrors {
				sb.WriteString(fmt.Sprintf("- %s\n", err))
			}
			sb.WriteString("\n")
		}
	}

	// Period Returns
	sb.WriteString("## Period Returns\n\n")
	if len(r.PeriodReturns) > 0 {
		sb.WriteString("| Period | Years | Benchmark Return % | Strategy Return % | Outperformance % | Benchmark MaxDD % | Strategy MaxDD % |\n")
		sb.WriteString("|--------|-------|--------------------|-------------------|------------------|-------------------|------------------|\n")
		for _, row := range r.PeriodReturns {
			sb.WriteString(fmt.Sprintf("| %s | %d | %.2f | %.2f | %.2f | %.2f | %.2f |\n",
				row.Period, row.Years,
				row.BenchmarkReturnPct, row.StrategyReturnPct, row.OutperformancePct,
				row.BenchmarkMaxDrawdownPct, row.StrategyMaxDrawdownPct))
		}
	} else {
		sb.WriteString("No period returns available.\n")
	}
	sb.WriteString("\n")

	// Risk-Adjusted Performance
	sb.WriteString("## Risk-Adjusted Performance\n\n")
	if len(r.PeriodRisk) > 0 {
		sb.WriteString("| Period | Years | Benchmark Sharpe | Strategy Sharpe | Benchmark IRR % | Strategy IRR % |\n")
		sb.WriteString("|--------|-------|------------------|-----------------|-----------------|----------------|\n")
		for _, row := range r.PeriodRisk {
			sb.WriteString(fmt.Sprintf("| %s | %d | %.3f | %.3f | %.2f | %.2f |\n",
				row.Period, row.Years,
				row.BenchmarkSharpe, row.StrategySharpe,
				row.BenchmarkIRRPct, row.StrategyIRRPct))
		}
	} else {
		sb.WriteString("No risk data available.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}
