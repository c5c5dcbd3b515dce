package risk

import (
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
)

const (
	// ForecastDays is the length of the simulated trajectory.
	ForecastDays = 14

	forecastFloor   = 5.0
	forecastCeiling = 100.0
	forecastNoise   = 4.0

	// Scores above risingAbove drift up by risingDrift per day; the rest
	// drift down by fallingDrift per day.
	risingAbove  = 60.0
	risingDrift  = 0.3
	fallingDrift = 0.2
)

// Forecast simulates a daily overall-risk trajectory for the next
// ForecastDays days starting the day after start. It is a presentation aid,
// not a model prediction: each day is base plus Gaussian noise plus a linear
// drift, clamped to [5,100]. src supplies the noise.
func Forecast(base float64, start time.Time, src rand.Source) []domain.ForecastDay {
	noise := distuv.Normal{Mu: 0, Sigma: forecastNoise, Src: src}
	drift := -fallingDrift
	if base > risingAbove {
		drift = risingDrift
	}

	days := make([]domain.ForecastDay, ForecastDays)
	for i := range days {
		day := i + 1
		date := start.AddDate(0, 0, day)
		score := domain.Round(domain.Clamp(base+noise.Rand()+drift*float64(day), forecastFloor, forecastCeiling), 1)
		days[i] = domain.ForecastDay{
			Day:   day,
			Date:  date,
			Label: date.Format("02 Jan"),
			Score: score,
			Level: domain.ScoreToLabel(score),
		}
	}
	return days
}
