// Package pipeline produces the report artifacts: it runs data sufficiency
// checks, generates the period tables and writes them to disk as Markdown
// and CSV.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"cape-risk-lab/internal/observability"
	"cape-risk-lab/internal/reporting"
	"cape-risk-lab/internal/storage"
)

// Output file names, relative to the configured output directory.
const (
	ReportFile     = "REPORT.md"
	ReturnsCSVFile = "period_returns.csv"
	RiskCSVFile    = "period_risk.csv"
)

// Pipeline orchestrates report generation and file output.
type Pipeline struct {
	reportGen          *reporting.Generator
	sufficiencyChecker *SufficiencyChecker
	outputDir          string
	clock              func() time.Time
	integrityErrors    []string
}

// NewPipeline creates a new report pipeline writing into outputDir.
func NewPipeline(
	runStore storage.RunStore,
	summaryStore storage.PeriodSummaryStore,
	outputDir string,
) *Pipeline {
	return &Pipeline{
		reportGen: reporting.NewGenerator(runStore, summaryStore),
		outputDir: outputDir,
		clock:     func() time.Time { return time.Now().UTC() },
	}
}

// WithSufficiencyChecker adds observation-series sufficiency checks to the
// pipeline. windowUpper is the risk rolling window, minSpanYears the period
// stride.
func (p *Pipeline) WithSufficiencyChecker(observationStore storage.ObservationStore, windowUpper, minSpanYears int) *Pipeline {
	p.sufficiencyChecker = NewSufficiencyChecker(observationStore, windowUpper, minSpanYears)
	return p
}

// WithClock sets a custom clock function for deterministic output.
func (p *Pipeline) WithClock(clock func() time.Time) *Pipeline {
	p.clock = clock
	p.reportGen = p.reportGen.WithClock(clock)
	return p
}

// WithIntegrityErrors adds additional integrity errors to include in the
// report, merged with errors from the sufficiency checks.
func (p *Pipeline) WithIntegrityErrors(errors []string) *Pipeline {
	p.integrityErrors = append(p.integrityErrors, errors...)
	return p
}

// Run executes the full pipeline and writes the output files:
//   - REPORT.md
//   - period_returns.csv
//   - period_risk.csv
func (p *Pipeline) Run(ctx context.Context) error {
	start := time.Now()
	err := p.run(ctx)

	status := "ok"
	if err != nil {
		status = "error"
	}
	observability.RecordPipelineRun("report", status, time.Since(start).Seconds())
	if err == nil {
		observability.RecordPipelineSuccess(p.clock().Unix())
	}
	return err
}

func (p *Pipeline) run(ctx context.Context) error {
	if err := os.MkdirAll(p.outputDir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	// Sufficiency first: the data quality section heads the report even
	// when checks fail.
	var dataQuality reporting.DataQualitySection
	if p.sufficiencyChecker != nil {
		suffResult, err := p.sufficiencyChecker.Check(ctx)
		if err != nil {
			return err
		}
		dataQuality = convertToDataQuality(suffResult)
	}

	if len(p.integrityErrors) > 0 {
		dataQuality.IntegrityErrors = append(dataQuality.IntegrityErrors, p.integrityErrors...)
		dataQuality.AllChecksPassed = false
	}

	report, err := p.reportGen.Generate(ctx)
	if err != nil {
		return err
	}
	report.DataQuality = dataQuality

	reportMD := reporting.RenderMarkdown(report)
	if err := os.WriteFile(filepath.Join(p.outputDir, ReportFile), []byte(reportMD), 0644); err != nil {
		return err
	}

	returnsCSV := reporting.RenderReturnsCSV(report.PeriodReturns)
	if err := os.WriteFile(filepath.Join(p.outputDir, ReturnsCSVFile), []byte(returnsCSV), 0644); err != nil {
		return err
	}

	riskCSV := reporting.RenderRiskCSV(report.PeriodRisk)
	if err := os.WriteFile(filepath.Join(p.outputDir, RiskCSVFile), []byte(riskCSV), 0644); err != nil {
		return err
	}

	observability.RecordReportGenerated()
	return nil
}

// convertToDataQuality converts SufficiencyResult to reporting.DataQualitySection.
func convertToDataQuality(result *SufficiencyResult) reporting.DataQualitySection {
	checks := make([]reporting.SufficiencyCheckRow, len(result.Checks))
	for i, c := range result.Checks {
		checks[i] = reporting.SufficiencyCheckRow{
			Name:      c.Name,
			Threshold: c.Threshold,
			Actual:    c.Actual,
			Pass:      c.Pass,
		}
	}
	return reporting.DataQualitySection{
		SufficiencyChecks: checks,
		IntegrityErrors:   result.Errors,
		AllChecksPassed:   result.AllPass,
	}
}
