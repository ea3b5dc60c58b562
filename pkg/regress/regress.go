// Package regress provides the ordinary-least-squares primitive the rest of
// the pipeline is built on: single-predictor fits with confidence and
// prediction intervals, and a multi-predictor fit for exploratory models.
// Models are refit from scratch on every call; with single-digit row counts
// the cost is negligible and there is no cached state to invalidate.
package regress

import (
	"fmt"
	"math"

	"github.com/bapenda-labs/pad-forecast/pkg/dataset"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Model is a fitted single-predictor OLS regression with an intercept.
type Model struct {
	Intercept float64
	Slope     float64
	R2        float64

	// ResidualStdErr is s, the square root of SSE/(n-2). Zero when the fit
	// has no residual degrees of freedom (n == 2).
	ResidualStdErr float64

	n     int
	xMean float64
	sxx   float64
}

// Fit runs OLS of y on x with an intercept. It requires at least two
// observations and at least two distinct x values.
func Fit(x, y []float64) (*Model, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("predictor has %d observations, response has %d", len(x), len(y))
	}
	if len(x) < 2 {
		return nil, fmt.Errorf("need at least 2 observations, got %d: %w", len(x), dataset.ErrInsufficientData)
	}
	distinct := false
	for i := 1; i < len(x); i++ {
		if x[i] != x[0] {
			distinct = true
			break
		}
	}
	if !distinct {
		return nil, fmt.Errorf("predictor is constant across all %d observations: %w", len(x), dataset.ErrInsufficientData)
	}

	intercept, slope := stat.LinearRegression(x, y, nil, false)

	n := len(x)
	xMean := stat.Mean(x, nil)
	var sxx, sse float64
	estimates := make([]float64, n)
	for i := range x {
		dx := x[i] - xMean
		sxx += dx * dx
		estimates[i] = intercept + slope*x[i]
		resid := y[i] - estimates[i]
		sse += resid * resid
	}

	var s float64
	if n > 2 {
		s = math.Sqrt(sse / float64(n-2))
	}

	return &Model{
		Intercept:      intercept,
		Slope:          slope,
		R2:             stat.RSquaredFrom(estimates, y, nil),
		ResidualStdErr: s,
		n:              n,
		xMean:          xMean,
		sxx:            sxx,
	}, nil
}

// N returns the number of observations the model was fitted on.
func (m *Model) N() int {
	return m.n
}

// Predict evaluates the fitted line at x.
func (m *Model) Predict(x float64) float64 {
	return m.Intercept + m.Slope*x
}

// ConfidenceInterval returns the (lower, upper) confidence interval of the
// mean response at x0 for significance level alpha (alpha=0.32 gives a 68%
// interval). With no residual degrees of freedom the interval collapses to
// the point estimate.
func (m *Model) ConfidenceInterval(x0, alpha float64) (float64, float64) {
	se := m.ResidualStdErr * math.Sqrt(1.0/float64(m.n)+m.leverage(x0))
	return m.interval(x0, alpha, se)
}

// PredictionInterval returns the (lower, upper) interval for a new
// observation at x0, which adds the residual variance term on top of the
// mean-response uncertainty.
func (m *Model) PredictionInterval(x0, alpha float64) (float64, float64) {
	se := m.ResidualStdErr * math.Sqrt(1.0+1.0/float64(m.n)+m.leverage(x0))
	return m.interval(x0, alpha, se)
}

func (m *Model) leverage(x0 float64) float64 {
	if m.sxx == 0 {
		return 0
	}
	dx := x0 - m.xMean
	return dx * dx / m.sxx
}

func (m *Model) interval(x0, alpha, se float64) (float64, float64) {
	center := m.Predict(x0)
	df := m.n - 2
	if df <= 0 || se == 0 {
		return center, center
	}
	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(df)}.Quantile(1 - alpha/2)
	return center - t*se, center + t*se
}

// MultiModel is a fitted multi-predictor OLS regression with an intercept.
type MultiModel struct {
	Intercept    float64
	Coefficients []float64
	R2           float64
}

// FitMulti runs OLS of y on several predictor columns with an intercept.
// There must be more observations than parameters.
func FitMulti(predictors [][]float64, y []float64) (*MultiModel, error) {
	if len(predictors) == 0 {
		return nil, fmt.Errorf("no predictors supplied")
	}
	n := len(y)
	p := len(predictors)
	for i, col := range predictors {
		if len(col) != n {
			return nil, fmt.Errorf("predictor %d has %d observations, response has %d", i, len(col), n)
		}
	}
	if n <= p+1 {
		return nil, fmt.Errorf("need more than %d observations for %d predictors, got %d: %w",
			p+1, p, n, dataset.ErrInsufficientData)
	}

	design := mat.NewDense(n, p+1, nil)
	for i := 0; i < n; i++ {
		design.Set(i, 0, 1)
		for j, col := range predictors {
			design.Set(i, j+1, col[i])
		}
	}

	var qr mat.QR
	qr.Factorize(design)
	beta := mat.NewVecDense(p+1, nil)
	if err := qr.SolveVecTo(beta, false, mat.NewVecDense(n, y)); err != nil {
		return nil, fmt.Errorf("singular design matrix: %w", dataset.ErrInsufficientData)
	}

	model := &MultiModel{
		Intercept:    beta.AtVec(0),
		Coefficients: make([]float64, p),
	}
	for j := 0; j < p; j++ {
		model.Coefficients[j] = beta.AtVec(j + 1)
	}

	estimates := make([]float64, n)
	for i := 0; i < n; i++ {
		value := model.Intercept
		for j, col := range predictors {
			value += model.Coefficients[j] * col[i]
		}
		estimates[i] = value
	}
	model.R2 = stat.RSquaredFrom(estimates, y, nil)

	return model, nil
}

// Predict evaluates the fitted hyperplane at one predictor vector.
func (m *MultiModel) Predict(x []float64) (float64, error) {
	if len(x) != len(m.Coefficients) {
		return 0, fmt.Errorf("expected %d predictor values, got %d", len(m.Coefficients), len(x))
	}
	value := m.Intercept
	for j, v := range x {
		value += m.Coefficients[j] * v
	}
	return value, nil
}
