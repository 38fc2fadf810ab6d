package radio

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name string
		snr  float64
		rssi float64
		want int
	}{
		{"strong signal", 8, -80, ScoreGood},
		{"high snr but weak rssi", 10, -100, ScorePoor},
		{"mid snr lower bound", 3, -120, ScoreFair},
		{"mid snr upper bound", 7, -50, ScoreFair},
		{"low snr", 2.9, -60, ScorePoor},
		{"negative snr", -5, -110, ScorePoor},
		{"boundary snr just above 7", 7.1, -89.9, ScoreGood},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Score(tt.snr, tt.rssi)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScoreDeterministic(t *testing.T) {
	first, err := Score(5.5, -97.2)
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		got, err := Score(5.5, -97.2)
		require.NoError(t, err)
		assert.Equal(t, first, got)
	}
}

func TestScoreNonFinite(t *testing.T) {
	for _, bad := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := Score(bad, -80)
		assert.ErrorIs(t, err, ErrNotFinite)

		_, err = Score(5, bad)
		assert.ErrorIs(t, err, ErrNotFinite)
	}
}

func TestStability(t *testing.T) {
	assert.Equal(t, StabilityStable, Stability([]float64{10, 10, 10}))
	assert.Equal(t, StabilityVeryUnstable, Stability([]float64{0, 10, 20}))
	assert.Equal(t, StabilityUnknown, Stability(nil))
	assert.Equal(t, StabilityUnstable, Stability([]float64{0, 5, 10}))
}

func TestStdDev(t *testing.T) {
	assert.InDelta(t, 8.16, StdDev([]float64{0, 10, 20}), 0.01)
	assert.Zero(t, StdDev(nil))
	assert.Zero(t, StdDev([]float64{4, 4, 4}))
}

func TestConnectivity(t *testing.T) {
	now := time.Now()
	threshold := 75 * time.Minute

	recent := now.Add(-10 * time.Minute)
	assert.Equal(t, ConnectivityOnline, Connectivity(&recent, now, threshold))

	stale := now.Add(-80 * time.Minute)
	assert.Equal(t, ConnectivityOffline, Connectivity(&stale, now, threshold))

	assert.Equal(t, ConnectivityUnknown, Connectivity(nil, now, threshold))
}

func TestHealthFromScore(t *testing.T) {
	assert.Equal(t, HealthHealthy, HealthFromScore(80))
	assert.Equal(t, HealthHealthy, HealthFromScore(100))
	assert.Equal(t, HealthDegraded, HealthFromScore(79.9))
	assert.Equal(t, HealthDegraded, HealthFromScore(50))
	assert.Equal(t, HealthCritical, HealthFromScore(49.9))
	assert.Equal(t, HealthCritical, HealthFromScore(0))
}
