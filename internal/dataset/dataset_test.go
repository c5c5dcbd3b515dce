package dataset_test

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/climate-risk-engine/internal/dataset"
	"github.com/couchcryptid/climate-risk-engine/internal/domain"
)

func TestGenerate_Deterministic(t *testing.T) {
	a := dataset.Generate(42, 300)
	b := dataset.Generate(42, 300)

	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("same seed produced different samples (-a +b):\n%s", diff)
	}

	c := dataset.Generate(43, 300)
	assert.NotEqual(t, a, c)
}

func TestGenerate_PrefixStable(t *testing.T) {
	long := dataset.Generate(7, 200)
	short := dataset.Generate(7, 50)
	assert.Equal(t, short, long[:50])
}

func TestGenerate_Ranges(t *testing.T) {
	samples := dataset.Generate(42, 4000)
	require.Len(t, samples, 4000)

	months := make(map[int]int)
	for _, s := range samples {
		r := s.Reading
		assert.GreaterOrEqual(t, r.Humidity, 0.0)
		assert.LessOrEqual(t, r.Humidity, 100.0)
		assert.GreaterOrEqual(t, r.Rainfall, 0.0)
		assert.GreaterOrEqual(t, r.AQI, 0.0)
		assert.GreaterOrEqual(t, r.UVIndex, 1.0)
		require.GreaterOrEqual(t, r.Month, 1)
		require.LessOrEqual(t, r.Month, 12)
		months[r.Month]++

		for _, d := range domain.Diseases {
			assert.GreaterOrEqual(t, s.Scores[d], 0.0)
			assert.LessOrEqual(t, s.Scores[d], 1.0)
		}
		assert.GreaterOrEqual(t, s.Overall, 0.0)
		assert.LessOrEqual(t, s.Overall, 1.0)
		assert.Equal(t, domain.LevelForUnitScore(s.Overall), s.Level, "overall %v", s.Overall)
		assert.Equal(t, domain.SeasonOf(r.Month), s.Season())
	}
	assert.Len(t, months, 12)
}

func TestGenerate_Rounding(t *testing.T) {
	for _, s := range dataset.Generate(3, 100) {
		assert.Equal(t, domain.Round(s.Reading.Temperature, 2), s.Reading.Temperature)
		assert.Equal(t, domain.Round(s.Reading.Rainfall, 2), s.Reading.Rainfall)
		for _, v := range s.Scores {
			assert.Equal(t, domain.Round(v, 4), v)
		}
	}
}

func TestGenerate_LabelsSpanBands(t *testing.T) {
	counts := make(map[domain.RiskLevel]int)
	for _, s := range dataset.Generate(42, 8000) {
		counts[s.Level]++
	}
	// Moderate dominates; Low and High both occur.
	assert.Greater(t, counts[domain.Moderate], counts[domain.Low])
	assert.Positive(t, counts[domain.Low])
	assert.Positive(t, counts[domain.High])
}

func TestGenerate_Seasonality(t *testing.T) {
	// Temperature peaks in September and bottoms out in March.
	var warm, cool []float64
	for _, s := range dataset.Generate(11, 6000) {
		switch s.Reading.Month {
		case 8, 9, 10:
			warm = append(warm, s.Reading.Temperature)
		case 2, 3, 4:
			cool = append(cool, s.Reading.Temperature)
		}
	}
	assert.Greater(t, mean(warm), mean(cool)+4)
}

func TestGenerate_Empty(t *testing.T) {
	assert.Empty(t, dataset.Generate(1, 0))
	assert.Empty(t, dataset.Generate(1, -5))
}

func TestTrainTestSplit(t *testing.T) {
	s, err := dataset.TrainTestSplit(8000, 0.2, 42)
	require.NoError(t, err)
	assert.Len(t, s.Test, 1600)
	assert.Len(t, s.Train, 6400)

	all := append(append([]int(nil), s.Train...), s.Test...)
	sort.Ints(all)
	for i, v := range all {
		require.Equal(t, i, v)
	}

	again, err := dataset.TrainTestSplit(8000, 0.2, 42)
	require.NoError(t, err)
	assert.Equal(t, s, again)
}

func TestTrainTestSplit_Errors(t *testing.T) {
	_, err := dataset.TrainTestSplit(1, 0.2, 1)
	assert.Error(t, err)
	_, err = dataset.TrainTestSplit(100, 0, 1)
	assert.Error(t, err)
	_, err = dataset.TrainTestSplit(100, 1, 1)
	assert.Error(t, err)

	s, err := dataset.TrainTestSplit(2, 0.9, 1)
	require.NoError(t, err)
	assert.Len(t, s.Test, 1)
	assert.Len(t, s.Train, 1)
}

func TestRows(t *testing.T) {
	got := dataset.Rows([]string{"a", "b", "c", "d"}, []int{3, 0})
	assert.Equal(t, []string{"d", "a"}, got)
}

func mean(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
