package lookup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cape-risk-lab/internal/domain"
)

func TestRateAt(t *testing.T) {
	rates := []domain.RateObservation{
		{Date: time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC), AnnualRate: 0.05},
		{Date: time.Date(1970, 6, 1, 0, 0, 0, 0, time.UTC), AnnualRate: 0.07},
		{Date: time.Date(1971, 1, 1, 0, 0, 0, 0, time.UTC), AnnualRate: 0.04},
	}

	tests := []struct {
		name   string
		target time.Time
		want   float64
	}{
		{"exact match", time.Date(1970, 6, 1, 0, 0, 0, 0, time.UTC), 0.07},
		{"forward fill between observations", time.Date(1970, 9, 15, 0, 0, 0, 0, time.UTC), 0.07},
		{"after last observation", time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC), 0.04},
		{"before first observation", time.Date(1960, 1, 1, 0, 0, 0, 0, time.UTC), 0.05},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RateAt(tt.target, rates)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("empty series", func(t *testing.T) {
		_, err := RateAt(time.Now(), nil)
		assert.ErrorIs(t, err, ErrNoRateData)
	})
}
