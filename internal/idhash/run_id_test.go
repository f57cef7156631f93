package idhash

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestComputeRunID(t *testing.T) {
	start := time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(1989, 12, 29, 0, 0, 0, 0, time.UTC)

	a := ComputeRunID(1970, 0, 200, start, end, 5000)
	b := ComputeRunID(1970, 0, 200, start, end, 5000)
	assert.Equal(t, a, b, "same inputs must hash identically")
	assert.Len(t, a, 64)

	tests := []struct {
		name  string
		runID string
	}{
		{"different start year", ComputeRunID(1980, 0, 200, start, end, 5000)},
		{"different contribution", ComputeRunID(1970, 0, 250, start, end, 5000)},
		{"different span", ComputeRunID(1970, 0, 200, start, end.AddDate(0, 0, 1), 5000)},
		{"different day count", ComputeRunID(1970, 0, 200, start, end, 5001)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEqual(t, a, tt.runID)
		})
	}
}
