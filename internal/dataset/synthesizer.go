// Package dataset synthesizes labelled climate/disease training samples and
// splits them into train and test partitions. All randomness flows from an
// explicit seed so a run is reproducible for a given (seed, size).
package dataset

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
)

// PCG stream selectors. The synthesizer and the split draw from independent
// streams of the same seed.
const (
	synthStream uint64 = 0x9e3779b97f4a7c15
	splitStream uint64 = 0xda3e39cb94b95bdb
)

// Sample is one labelled training observation. Reading.Month is always set.
type Sample struct {
	Reading domain.ClimateReading `json:"reading"`
	Scores  domain.DiseaseScores  `json:"scores"`  // unit interval, 4 decimals
	Overall float64               `json:"overall"` // unit interval, 4 decimals
	Level   domain.RiskLevel      `json:"overall_label"`
}

// Season is the derived season index of the sample's month.
func (s Sample) Season() int { return domain.SeasonOf(s.Reading.Month) }

// Features is the raw model input vector for the sample.
func (s Sample) Features() []float64 { return domain.Features(s.Reading, s.Reading.Month) }

// Synthesizer draws samples from the seasonal climate model and labels them
// with the category heuristics. It is not safe for concurrent use.
type Synthesizer struct {
	src rand.Source
	rng *rand.Rand
}

// NewSynthesizer returns a Synthesizer seeded with seed.
func NewSynthesizer(seed uint64) *Synthesizer {
	src := rand.NewPCG(seed, synthStream)
	return &Synthesizer{src: src, rng: rand.New(src)}
}

// Generate draws n samples. Successive calls continue the same stream.
func (s *Synthesizer) Generate(n int) []Sample {
	if n <= 0 {
		return nil
	}
	out := make([]Sample, n)
	for i := range out {
		out[i] = s.next()
	}
	return out
}

// Generate is shorthand for NewSynthesizer(seed).Generate(n).
func Generate(seed uint64, n int) []Sample {
	return NewSynthesizer(seed).Generate(n)
}

func (s *Synthesizer) next() Sample {
	month := s.rng.IntN(12) + 1
	m := float64(month)

	temp := s.normal(28+5*math.Sin((m-6)*math.Pi/6), 4)
	humidity := s.normal(65+20*math.Sin((m-8)*math.Pi/6), 12)
	rainScale := 100 + 80*math.Sin(math.Max(0, (m-7)*math.Pi/5))
	rainfall := math.Max(0, distuv.Exponential{Rate: 1 / rainScale, Src: s.src}.Rand())
	aqi := math.Max(0, s.normal(90+30*math.Cos((m-1)*math.Pi/6), 25))
	uv := math.Max(1, s.normal(6+3*math.Cos((m-7)*math.Pi/6), 1.5))

	// Heuristics see the unclamped humidity draw.
	raw := domain.ClimateReading{
		Temperature: temp,
		Humidity:    humidity,
		Rainfall:    rainfall,
		AQI:         aqi,
		UVIndex:     uv,
		Month:       month,
	}

	var risk, stored domain.DiseaseScores
	for _, d := range domain.Diseases {
		noise := distuv.Beta{Alpha: 2, Beta: 5, Src: s.src}.Rand()
		risk[d] = d.Profile().Heuristic(raw, noise)
		stored[d] = domain.Round(domain.Clamp(risk[d], 0, 1), 4)
	}
	overall := domain.OverallBlend(risk)

	return Sample{
		Reading: domain.ClimateReading{
			Temperature: domain.Round(temp, 2),
			Humidity:    domain.Round(domain.Clamp(humidity, 0, 100), 2),
			Rainfall:    domain.Round(rainfall, 2),
			AQI:         domain.Round(aqi, 2),
			UVIndex:     domain.Round(uv, 2),
			Month:       month,
		},
		Scores:  stored,
		Overall: domain.Round(overall, 4),
		Level:   domain.LevelForUnitScore(overall),
	}
}

func (s *Synthesizer) normal(mu, sigma float64) float64 {
	return distuv.Normal{Mu: mu, Sigma: sigma, Src: s.src}.Rand()
}
