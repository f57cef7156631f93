package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// ComputeRunID computes a deterministic run_id using SHA256.
// Formula: SHA256(start_year|initial_investment|monthly_investment|series_start|series_end|days)
// Returns hex-encoded hash (64 characters). The same series span and
// parameters always hash to the same run.
func ComputeRunID(
	startYear int,
	initialInvestment float64,
	monthlyInvestment float64,
	seriesStart time.Time,
	seriesEnd time.Time,
	days int,
) string {
	data := fmt.Sprintf("%d|%g|%g|%d|%d|%d",
		startYear,
		initialInvestment,
		monthlyInvestment,
		seriesStart.Unix(),
		seriesEnd.Unix(),
		days,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
