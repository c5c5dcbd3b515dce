package model

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// minScale replaces a zero standard deviation so constant columns map to 0.
const minScale = 1e-12

// Standardizer centres and scales each feature column using statistics from
// the rows it was fitted on. Inputs are first clipped to the per-column range
// seen during Fit, so estimators are never evaluated outside their training
// support. It is immutable after Fit.
type Standardizer struct {
	mean  []float64
	scale []float64
	lo    []float64
	hi    []float64
}

// FitStandardizer computes per-column mean, standard deviation and range.
func FitStandardizer(rows [][]float64) (*Standardizer, error) {
	if len(rows) == 0 {
		return nil, errors.New("standardizer: no rows")
	}
	dims := len(rows[0])
	if dims == 0 {
		return nil, errors.New("standardizer: zero-width rows")
	}

	col := make([]float64, len(rows))
	s := &Standardizer{
		mean:  make([]float64, dims),
		scale: make([]float64, dims),
		lo:    make([]float64, dims),
		hi:    make([]float64, dims),
	}
	for j := range dims {
		for i, row := range rows {
			if len(row) != dims {
				return nil, fmt.Errorf("standardizer: row %d has %d values, want %d", i, len(row), dims)
			}
			col[i] = row[j]
		}
		// Population deviation, matching the usual z-score convention.
		mean, sd := stat.PopMeanStdDev(col, nil)
		if sd < minScale {
			sd = 1
		}
		s.mean[j] = mean
		s.scale[j] = sd
		s.lo[j] = floats.Min(col)
		s.hi[j] = floats.Max(col)
	}
	return s, nil
}

// Dims is the expected input width.
func (s *Standardizer) Dims() int { return len(s.mean) }

// Mean returns a copy of the fitted column means.
func (s *Standardizer) Mean() []float64 { return append([]float64(nil), s.mean...) }

// Scale returns a copy of the fitted column scales.
func (s *Standardizer) Scale() []float64 { return append([]float64(nil), s.scale...) }

// Range returns copies of the fitted column minima and maxima.
func (s *Standardizer) Range() (lo, hi []float64) {
	return append([]float64(nil), s.lo...), append([]float64(nil), s.hi...)
}

// Clip returns x with every value bounded to its column's training range.
func (s *Standardizer) Clip(x []float64) ([]float64, error) {
	if len(x) != len(s.mean) {
		return nil, fmt.Errorf("standardizer: got %d features, want %d", len(x), len(s.mean))
	}
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = min(max(v, s.lo[i]), s.hi[i])
	}
	return out, nil
}

// Transform returns (clip(x)-mean)/scale in a new slice.
func (s *Standardizer) Transform(x []float64) ([]float64, error) {
	z, err := s.Clip(x)
	if err != nil {
		return nil, err
	}
	for i, v := range z {
		z[i] = (v - s.mean[i]) / s.scale[i]
	}
	return z, nil
}
