package risk_test

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
	"github.com/couchcryptid/climate-risk-engine/internal/risk"
)

var forecastStart = time.Date(2026, time.March, 30, 9, 0, 0, 0, time.UTC)

func TestForecast_Shape(t *testing.T) {
	days := risk.Forecast(47.2, forecastStart, rand.NewPCG(1, 2))
	require.Len(t, days, risk.ForecastDays)

	for i, d := range days {
		assert.Equal(t, i+1, d.Day)
		want := forecastStart.AddDate(0, 0, i+1)
		assert.True(t, want.Equal(d.Date), "day %d date %s", d.Day, d.Date)
		assert.Equal(t, want.Format("02 Jan"), d.Label)
		assert.Equal(t, domain.ScoreToLabel(d.Score), d.Level)
		assert.Equal(t, domain.Round(d.Score, 1), d.Score)
	}
	assert.Equal(t, "31 Mar", days[0].Label)
	assert.Equal(t, "13 Apr", days[13].Label)
}

func TestForecast_Bounds(t *testing.T) {
	for _, base := range []float64{0, 3, 50, 97, 100} {
		for seed := uint64(0); seed < 100; seed++ {
			for _, d := range risk.Forecast(base, forecastStart, rand.NewPCG(seed, 7)) {
				require.GreaterOrEqual(t, d.Score, 5.0, "base %v seed %d", base, seed)
				require.LessOrEqual(t, d.Score, 100.0, "base %v seed %d", base, seed)
			}
		}
	}
}

func TestForecast_Drift(t *testing.T) {
	const runs = 500
	meanEnds := func(base float64) (first, last float64) {
		for seed := uint64(0); seed < runs; seed++ {
			days := risk.Forecast(base, forecastStart, rand.NewPCG(seed, 11))
			first += days[0].Score
			last += days[len(days)-1].Score
		}
		return first / runs, last / runs
	}

	first, last := meanEnds(90)
	assert.Greater(t, last, first, "high risk should trend up")

	first, last = meanEnds(10)
	assert.Less(t, last, first, "low risk should trend down")
}

func TestForecast_Deterministic(t *testing.T) {
	a := risk.Forecast(62, forecastStart, rand.NewPCG(5, 5))
	b := risk.Forecast(62, forecastStart, rand.NewPCG(5, 5))
	assert.Equal(t, a, b)
}
