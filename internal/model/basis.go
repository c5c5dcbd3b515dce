package model

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
)

// measurements are the continuous features that enter the basis as z and z².
// Month and season enter as month indicators instead.
var measurements = [...]int{
	domain.FeatureTemperature,
	domain.FeatureHumidity,
	domain.FeatureRainfall,
	domain.FeatureAQI,
	domain.FeatureUVIndex,
}

// hinge is max(0, x-knot)/span, or max(0, knot-x)/span when below is set.
// Caps such as min(1, x/k) are linear minus an excess hinge at k.
type hinge struct {
	feature int
	knot    float64
	span    float64
	below   bool
}

func (h hinge) eval(x []float64) float64 {
	d := x[h.feature] - h.knot
	if h.below {
		d = -d
	}
	return math.Max(0, d) / h.span
}

// hinges sit at the knots of the category heuristics that label the training
// data, so the piecewise-linear targets lie in the span of the basis.
var hinges = [...]hinge{
	{feature: domain.FeatureHumidity, knot: 55, span: 45},
	{feature: domain.FeatureHumidity, knot: 60, span: 40},
	{feature: domain.FeatureHumidity, knot: 70, span: 30},
	{feature: domain.FeatureTemperature, knot: 22, span: 18},
	{feature: domain.FeatureTemperature, knot: 25, span: 15},
	{feature: domain.FeatureTemperature, knot: 28, span: 17},
	{feature: domain.FeatureTemperature, knot: 30, span: 15},
	{feature: domain.FeatureTemperature, knot: 25, span: 20, below: true},
	{feature: domain.FeatureRainfall, knot: 100, span: 100, below: true},
	{feature: domain.FeatureRainfall, knot: 200, span: 200},
	{feature: domain.FeatureRainfall, knot: 250, span: 250},
	{feature: domain.FeatureAQI, knot: 200, span: 200},
	{feature: domain.FeatureUVIndex, knot: 10, span: 10},
	{feature: domain.FeatureUVIndex, knot: 11, span: 11},
}

// monthIndicators covers February to December; January is the intercept.
const monthIndicators = 11

// basisWidth is the length of an expanded row, without the intercept.
const basisWidth = 2*len(measurements) + len(hinges) + monthIndicators

// expand maps a clipped raw feature vector x and its standardized form z onto
// the basis both the classifier and the regressors are fitted on:
// [z, z², hinges, month indicators].
func expand(x, z []float64) []float64 {
	out := make([]float64, 0, basisWidth)
	for _, f := range measurements {
		out = append(out, z[f])
	}
	for _, f := range measurements {
		out = append(out, z[f]*z[f])
	}
	for _, h := range hinges {
		out = append(out, h.eval(x))
	}
	month := int(math.Round(x[domain.FeatureMonth]))
	for m := 2; m <= 12; m++ {
		if m == month {
			out = append(out, 1)
		} else {
			out = append(out, 0)
		}
	}
	return out
}

// basisRow clips, standardizes and expands one raw feature vector.
func basisRow(std *Standardizer, raw []float64) ([]float64, error) {
	x, err := std.Clip(raw)
	if err != nil {
		return nil, err
	}
	z, err := std.Transform(x)
	if err != nil {
		return nil, err
	}
	return expand(x, z), nil
}

// designMatrix stacks expanded rows behind a leading intercept column.
func designMatrix(rows [][]float64) *mat.Dense {
	if len(rows) == 0 {
		return nil
	}
	cols := len(rows[0]) + 1
	m := mat.NewDense(len(rows), cols, nil)
	for i, row := range rows {
		dst := m.RawRowView(i)
		dst[0] = 1
		copy(dst[1:], row)
	}
	return m
}
