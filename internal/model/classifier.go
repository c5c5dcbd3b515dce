package model

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"

	"github.com/couchcryptid/climate-risk-engine/internal/domain"
)

// SoftmaxOptions tune the classifier fit.
type SoftmaxOptions struct {
	MaxIterations int
	L2Penalty     float64
}

// SoftmaxClassifier is a multinomial logistic regression. weights is
// dims×classes with row 0 holding the per-class intercepts.
type SoftmaxClassifier struct {
	weights   *mat.Dense
	dims      int
	classes   int
	converged bool
}

// FitSoftmax minimizes the mean cross-entropy plus an L2 penalty on the
// non-intercept weights with L-BFGS. x must carry a leading intercept column.
// Classes absent from y still get a weight column and end up with low
// probability everywhere.
func FitSoftmax(x *mat.Dense, y []int, classes int, opts SoftmaxOptions) (*SoftmaxClassifier, error) {
	if x == nil {
		return nil, errors.New("softmax: no rows")
	}
	n, dims := x.Dims()
	if n != len(y) {
		return nil, fmt.Errorf("softmax: %d rows but %d labels", n, len(y))
	}
	if classes < 2 {
		return nil, fmt.Errorf("softmax: need at least 2 classes, got %d", classes)
	}

	onehot := mat.NewDense(n, classes, nil)
	for i, label := range y {
		if label < 0 || label >= classes {
			return nil, fmt.Errorf("softmax: label %d at row %d outside [0,%d)", label, i, classes)
		}
		onehot.Set(i, label, 1)
	}

	obj := &crossEntropy{x: x, y: onehot, l2: opts.L2Penalty, rows: n, dims: dims, classes: classes}
	problem := optimize.Problem{Func: obj.loss, Grad: obj.grad}
	settings := &optimize.Settings{
		MajorIterations:   opts.MaxIterations,
		GradientThreshold: 1e-6,
	}

	result, err := optimize.Minimize(problem, make([]float64, dims*classes), settings, &optimize.LBFGS{})
	if result == nil || !domain.Finite(result.X...) || !domain.Finite(result.F) {
		if err == nil {
			err = errors.New("non-finite solution")
		}
		return nil, fmt.Errorf("softmax: %w", err)
	}
	// A line search that stalls next to the optimum reports an error alongside
	// a usable location.
	converged := err == nil && result.Status != optimize.IterationLimit

	return &SoftmaxClassifier{
		weights:   mat.NewDense(dims, classes, append([]float64(nil), result.X...)),
		dims:      dims,
		classes:   classes,
		converged: converged,
	}, nil
}

// Converged reports whether the optimizer stopped on a convergence criterion
// rather than the iteration limit or a stalled line search.
func (c *SoftmaxClassifier) Converged() bool { return c.converged }

// Probabilities returns the class distribution for an expanded feature vector
// without the intercept term.
func (c *SoftmaxClassifier) Probabilities(x []float64) ([]float64, error) {
	if len(x)+1 != c.dims {
		return nil, fmt.Errorf("softmax: got %d inputs, want %d", len(x), c.dims-1)
	}
	in := make([]float64, c.dims)
	in[0] = 1
	copy(in[1:], x)

	scores := mat.NewVecDense(c.classes, nil)
	scores.MulVec(c.weights.T(), mat.NewVecDense(c.dims, in))
	p := scores.RawVector().Data
	softmaxInPlace(p)
	return p, nil
}

// Predict returns the most probable class and its probability.
func (c *SoftmaxClassifier) Predict(x []float64) (int, float64, error) {
	p, err := c.Probabilities(x)
	if err != nil {
		return 0, 0, err
	}
	k := floats.MaxIdx(p)
	return k, p[k], nil
}

// Accuracy is the fraction of rows of x (with intercept column) whose
// predicted class matches y.
func (c *SoftmaxClassifier) Accuracy(x *mat.Dense, y []int) float64 {
	if x == nil || len(y) == 0 {
		return 0
	}
	var scores mat.Dense
	scores.Mul(x, c.weights)
	correct := 0
	for i, label := range y {
		if floats.MaxIdx(scores.RawRowView(i)) == label {
			correct++
		}
	}
	return float64(correct) / float64(len(y))
}

type crossEntropy struct {
	x, y                *mat.Dense
	l2                  float64
	rows, dims, classes int
}

func (o *crossEntropy) loss(params []float64) float64 {
	w := mat.NewDense(o.dims, o.classes, params)
	var scores mat.Dense
	scores.Mul(o.x, w)

	var total float64
	for i := range o.rows {
		row := scores.RawRowView(i)
		total += floats.LogSumExp(row) - floats.Dot(row, o.y.RawRowView(i))
	}

	var penalty float64
	for _, v := range params[o.classes:] {
		penalty += v * v
	}
	return total/float64(o.rows) + 0.5*o.l2*penalty
}

// grad writes Xᵀ(P−Y)/n + λW (intercept row unpenalized) into dst.
func (o *crossEntropy) grad(dst, params []float64) {
	w := mat.NewDense(o.dims, o.classes, params)
	var resid mat.Dense
	resid.Mul(o.x, w)
	for i := range o.rows {
		softmaxInPlace(resid.RawRowView(i))
	}
	resid.Sub(&resid, o.y)

	g := mat.NewDense(o.dims, o.classes, dst)
	g.Mul(o.x.T(), &resid)
	g.Scale(1/float64(o.rows), g)
	for i := o.classes; i < len(dst); i++ {
		dst[i] += o.l2 * params[i]
	}
}

func softmaxInPlace(s []float64) {
	lse := floats.LogSumExp(s)
	for i, v := range s {
		s[i] = math.Exp(v - lse)
	}
}
