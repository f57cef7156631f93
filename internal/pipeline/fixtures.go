package pipeline

import (
	"context"
	"math"
	"time"

	"cape-risk-lab/internal/domain"
	"cape-risk-lab/internal/storage"
)

// Fixture series bounds. 26 years covers two full decade periods plus the
// rolling-window warmup.
var (
	fixtureStart = time.Date(1965, 1, 1, 0, 0, 0, 0, time.UTC)
	fixtureEnd   = time.Date(1990, 12, 31, 0, 0, 0, 0, time.UTC)
)

// LoadFixtures seeds the observation store with a deterministic synthetic
// daily series for demonstration runs without real market data. Price trends
// upward with an oscillation; the valuation ratio oscillates around a mean
// of 17 so the risk corridor stays defined.
func LoadFixtures(ctx context.Context, observationStore storage.ObservationStore) error {
	var obs []domain.DailyObservation
	i := 0
	for d := fixtureStart; !d.After(fixtureEnd); d = d.AddDate(0, 0, 1) {
		t := float64(i)
		obs = append(obs, domain.DailyObservation{
			Date:           d,
			Price:          50*math.Exp(t/12000) + 10*math.Sin(t/180),
			ValuationRatio: 17 + 5*math.Sin(t/140) + 1.5*math.Sin(t/23),
		})
		i++
	}
	return observationStore.InsertBulk(ctx, obs)
}
