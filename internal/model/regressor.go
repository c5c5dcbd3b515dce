package model

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
)

// minTargetVariance rejects targets with nothing to learn.
const minTargetVariance = 1e-12

var errDegenerateTarget = errors.New("target has zero variance")

// LinearRegressor is an ordinary least squares fit. coef[0] is the intercept.
type LinearRegressor struct {
	coef []float64
}

// FitLinear solves min ||x·β − y||² + ridge·||β₁..||² by QR decomposition. x
// must carry a leading intercept column, which is not penalized. A small
// positive ridge keeps the system full rank when a basis column is constant
// or collinear over the training rows.
func FitLinear(x *mat.Dense, y []float64, ridge float64) (*LinearRegressor, error) {
	if x == nil {
		return nil, errors.New("linear: no rows")
	}
	n, p := x.Dims()
	if n != len(y) {
		return nil, fmt.Errorf("linear: %d rows but %d targets", n, len(y))
	}
	if n < p {
		return nil, fmt.Errorf("linear: %d rows cannot determine %d coefficients", n, p)
	}
	if ridge < 0 {
		return nil, fmt.Errorf("linear: negative ridge %v", ridge)
	}
	if stat.Variance(y, nil) < minTargetVariance {
		return nil, errDegenerateTarget
	}

	a, b := x, mat.NewVecDense(n, y)
	if ridge > 0 {
		a, b = augment(x, y, ridge)
	}
	var qr mat.QR
	qr.Factorize(a)
	beta := mat.NewVecDense(p, nil)
	if err := qr.SolveVecTo(beta, false, b); err != nil {
		return nil, fmt.Errorf("linear: %w", err)
	}
	coef := append([]float64(nil), beta.RawVector().Data...)
	if !domain.Finite(coef...) {
		return nil, errors.New("linear: non-finite coefficients")
	}
	return &LinearRegressor{coef: coef}, nil
}

// augment appends sqrt(ridge)·I rows for every non-intercept coefficient, with
// zero targets, so ordinary least squares on the result is ridge regression.
func augment(x *mat.Dense, y []float64, ridge float64) (*mat.Dense, *mat.VecDense) {
	n, p := x.Dims()
	a := mat.NewDense(n+p-1, p, nil)
	a.Slice(0, n, 0, p).(*mat.Dense).Copy(x)
	w := math.Sqrt(ridge)
	for j := 1; j < p; j++ {
		a.Set(n+j-1, j, w)
	}
	b := mat.NewVecDense(n+p-1, nil)
	copy(b.RawVector().Data, y)
	return a, b
}

// Predict evaluates the fit for an expanded feature vector without the
// intercept term.
func (r *LinearRegressor) Predict(x []float64) (float64, error) {
	if len(x)+1 != len(r.coef) {
		return 0, fmt.Errorf("linear: got %d inputs, want %d", len(x), len(r.coef)-1)
	}
	return r.coef[0] + floats.Dot(r.coef[1:], x), nil
}

// RMSE is the root mean squared error over rows of x (with intercept column).
func (r *LinearRegressor) RMSE(x *mat.Dense, y []float64) float64 {
	if x == nil || len(y) == 0 {
		return 0
	}
	pred := mat.NewVecDense(len(y), nil)
	pred.MulVec(x, mat.NewVecDense(len(r.coef), r.coef))
	return floats.Distance(pred.RawVector().Data, y, 2) / math.Sqrt(float64(len(y)))
}
