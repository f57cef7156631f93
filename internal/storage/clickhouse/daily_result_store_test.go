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

func dailyResult(date time.Time) domain.DailyResult {
	return domain.DailyResult{
		Date:                   date,
		Risk:                   0.35,
		BenchmarkValue:         1050.0,
		StrategyValue:          1120.0,
		BenchmarkCashflow:      domain.CumulativeCashflow(-1000),
		StrategyCashflow:       domain.CumulativeCashflow(-800),
		BenchmarkInvested:      1000.0,
		StrategyInvested:       900.0,
		BenchmarkCapitalAtRisk: -1000.0,
		StrategyCapitalAtRisk:  -800.0,
		BenchmarkProfit:        50.0,
		StrategyProfit:         320.0,
		BenchmarkPctProfit:     5.0,
		StrategyPctProfit:      40.0,
	}
}

func TestDailyResultStore_InsertBulkAndGetByRunID(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewDailyResultStore(conn)
	ctx := context.Background()

	// Empty insert is a no-op
	require.NoError(t, store.InsertBulk(ctx, "run-1", nil))

	results := []domain.DailyResult{
		dailyResult(day(1970, 1, 2)),
		dailyResult(day(1970, 1, 1)),
		dailyResult(day(1970, 1, 5)),
	}
	require.NoError(t, store.InsertBulk(ctx, "run-1", results))

	got, err := store.GetByRunID(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, got, 3)

	// Ordered by date ASC
	assert.True(t, got[0].Date.Equal(day(1970, 1, 1)))
	assert.True(t, got[2].Date.Equal(day(1970, 1, 5)))
	assert.Equal(t, 0.35, got[0].Risk)
	assert.Equal(t, 1050.0, got[0].BenchmarkValue)
	assert.Equal(t, domain.CumulativeCashflow(-1000), got[0].BenchmarkCashflow)
	assert.Equal(t, domain.CumulativeCashflow(-800), got[0].StrategyCashflow)
	assert.Equal(t, -800.0, got[0].StrategyCapitalAtRisk)
	assert.Equal(t, 40.0, got[0].StrategyPctProfit)
}

func TestDailyResultStore_UndefinedRiskRoundTrip(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewDailyResultStore(conn)
	ctx := context.Background()

	r := dailyResult(day(1970, 1, 1))
	r.Risk = math.NaN()
	require.NoError(t, store.InsertBulk(ctx, "run-1", []domain.DailyResult{r}))

	got, err := store.GetByRunID(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, math.IsNaN(got[0].Risk))
}

func TestDailyResultStore_RunIsolation(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewDailyResultStore(conn)
	ctx := context.Background()

	require.NoError(t, store.InsertBulk(ctx, "run-1", []domain.DailyResult{
		dailyResult(day(1970, 1, 1)),
		dailyResult(day(1970, 1, 2)),
	}))
	require.NoError(t, store.InsertBulk(ctx, "run-2", []domain.DailyResult{
		dailyResult(day(1970, 1, 1)),
	}))

	got, err := store.GetByRunID(ctx, "run-1")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = store.GetByRunID(ctx, "run-2")
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = store.GetByRunID(ctx, "run-999")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDailyResultStore_InsertBulk_DuplicateDate(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewDailyResultStore(conn)
	ctx := context.Background()

	results := []domain.DailyResult{dailyResult(day(1970, 1, 1))}
	require.NoError(t, store.InsertBulk(ctx, "run-1", results))

	err := store.InsertBulk(ctx, "run-1", results)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestDailyResultStore_InsertBulk_IntraBatchDuplicate(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewDailyResultStore(conn)
	ctx := context.Background()

	results := []domain.DailyResult{
		dailyResult(day(1970, 1, 1)),
		dailyResult(day(1970, 1, 1)),
	}
	err := store.InsertBulk(ctx, "run-1", results)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	got, err := store.GetByRunID(ctx, "run-1")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDailyResultStore_InsertBulk_EmptyRunID(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewDailyResultStore(conn)
	ctx := context.Background()

	err := store.InsertBulk(ctx, "", []domain.DailyResult{dailyResult(day(1970, 1, 1))})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}
