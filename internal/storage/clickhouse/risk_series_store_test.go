package clickhouse

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cape-risk-lab/internal/domain"
	"cape-risk-lab/internal/storage"
)

func day(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func riskPoint(date time.Time, risk float64) domain.RiskPoint {
	return domain.RiskPoint{
		Date:             date,
		Price:            100.5,
		ValuationRatio:   18.2,
		RollingMeanUpper: 18.0,
		RollingStdUpper:  0.05,
		RollingMeanLower: 17.9,
		RollingStdLower:  0.04,
		UpperBound:       21.0,
		LowerBound:       15.8,
		HistoricalAvg:    17.5,
		HistoricalUpper:  22.1,
		HistoricalLower:  13.9,
		Risk:             risk,
	}
}

func TestRiskSeriesStore_InsertBulkAndGetAll(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewRiskSeriesStore(conn)
	ctx := context.Background()

	// Empty insert is a no-op
	require.NoError(t, store.InsertBulk(ctx, nil))

	points := []domain.RiskPoint{
		riskPoint(day(1970, 1, 2), 0.42),
		riskPoint(day(1970, 1, 1), 0.40),
		riskPoint(day(1970, 1, 5), 0.44),
	}
	require.NoError(t, store.InsertBulk(ctx, points))

	got, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)

	// Ordered by date ASC
	assert.True(t, got[0].Date.Equal(day(1970, 1, 1)))
	assert.True(t, got[2].Date.Equal(day(1970, 1, 5)))
	assert.Equal(t, 0.40, got[0].Risk)
	assert.Equal(t, 100.5, got[0].Price)
	assert.Equal(t, 18.2, got[0].ValuationRatio)
	assert.Equal(t, 21.0, got[0].UpperBound)
	assert.Equal(t, 17.5, got[0].HistoricalAvg)
}

func TestRiskSeriesStore_UndefinedRiskRoundTrip(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewRiskSeriesStore(conn)
	ctx := context.Background()

	points := []domain.RiskPoint{
		riskPoint(day(1970, 1, 1), math.NaN()),
		riskPoint(day(1970, 1, 2), 0.5),
	}
	require.NoError(t, store.InsertBulk(ctx, points))

	got, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.False(t, got[0].RiskDefined())
	assert.True(t, got[1].RiskDefined())
	assert.Equal(t, 0.5, got[1].Risk)
}

func TestRiskSeriesStore_InsertBulk_DuplicateDate(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewRiskSeriesStore(conn)
	ctx := context.Background()

	points := []domain.RiskPoint{riskPoint(day(1970, 1, 1), 0.4)}
	require.NoError(t, store.InsertBulk(ctx, points))

	err := store.InsertBulk(ctx, points)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestRiskSeriesStore_InsertBulk_IntraBatchDuplicate(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewRiskSeriesStore(conn)
	ctx := context.Background()

	points := []domain.RiskPoint{
		riskPoint(day(1970, 1, 1), 0.4),
		riskPoint(day(1970, 1, 1), 0.5),
	}
	err := store.InsertBulk(ctx, points)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	// Nothing committed
	got, err := store.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRiskSeriesStore_GetByDateRange(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewRiskSeriesStore(conn)
	ctx := context.Background()

	var points []domain.RiskPoint
	for d := 1; d <= 10; d++ {
		points = append(points, riskPoint(day(1970, 1, d), 0.4))
	}
	require.NoError(t, store.InsertBulk(ctx, points))

	// Inclusive range
	got, err := store.GetByDateRange(ctx, day(1970, 1, 3), day(1970, 1, 6))
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.True(t, got[0].Date.Equal(day(1970, 1, 3)))
	assert.True(t, got[3].Date.Equal(day(1970, 1, 6)))

	// Single-day range
	got, err = store.GetByDateRange(ctx, day(1970, 1, 1), day(1970, 1, 1))
	require.NoError(t, err)
	require.Len(t, got, 1)

	// Empty range
	got, err = store.GetByDateRange(ctx, day(1971, 1, 1), day(1971, 12, 31))
	require.NoError(t, err)
	assert.Empty(t, got)
}
