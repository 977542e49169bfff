package fit

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/gridverify/errs"
)

func powerModel(x float64, p []float64) float64 {
	return p[0] + p[1]*math.Pow(x, p[2])
}

func powerGrad(x float64, p []float64, grad []float64) {
	xp := math.Pow(x, p[2])
	grad[0] = 1
	grad[1] = xp
	grad[2] = p[1] * xp * math.Log(x)
}

func TestCurveFitRecoversPowerLaw(t *testing.T) {
	require := require.New(t)

	xs := []float64{1, 2, 4, 8}
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = powerModel(x, []float64{1.0, 0.05, 2.0})
	}

	res, err := CurveFit(Problem{
		X:       xs,
		Y:       ys,
		Model:   powerModel,
		Grad:    powerGrad,
		Initial: []float64{1.0, 0.1, 1.0},
		Lower:   []float64{math.Inf(-1), math.Inf(-1), 0},
	})
	require.NoError(err)

	require.InDelta(1.0, res.Params[0], 1e-6)
	require.InDelta(0.05, res.Params[1], 1e-6)
	require.InDelta(2.0, res.Params[2], 1e-6)
	require.InDelta(1.0, res.RSquared, 1e-9)
	require.Less(res.RMSE, 1e-6)
	require.Positive(res.Iterations)
	require.True(res.CovarianceDefined())
	require.Len(res.StdErr(), 3)
}

func TestCurveFitFiniteDifferences(t *testing.T) {
	require := require.New(t)

	xs := []float64{0.5, 1, 2, 3, 4}
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = 2 - 0.5*x + 0.25*x*x
	}

	res, err := CurveFit(Problem{
		X: xs,
		Y: ys,
		Model: func(x float64, p []float64) float64 {
			return p[0] + p[1]*x + p[2]*x*x
		},
		Initial: []float64{0, 0, 0},
	})
	require.NoError(err)
	require.InDelta(2.0, res.Params[0], 1e-6)
	require.InDelta(-0.5, res.Params[1], 1e-6)
	require.InDelta(0.25, res.Params[2], 1e-6)
}

func TestCurveFitRespectsBounds(t *testing.T) {
	require := require.New(t)

	// Unconstrained slope is negative; the lower bound pins it at zero.
	xs := []float64{1, 2, 3, 4}
	ys := []float64{4, 3, 2, 1}

	res, err := CurveFit(Problem{
		X: xs,
		Y: ys,
		Model: func(x float64, p []float64) float64 {
			return p[0] + p[1]*x
		},
		Grad: func(x float64, _ []float64, grad []float64) {
			grad[0] = 1
			grad[1] = x
		},
		Initial: []float64{0, 1},
		Lower:   []float64{math.Inf(-1), 0},
	})
	require.NoError(err)
	require.InDelta(0.0, res.Params[1], 1e-9)
	require.InDelta(2.5, res.Params[0], 1e-6)
}

func TestCurveFitClipsInitialGuess(t *testing.T) {
	require := require.New(t)

	res, err := CurveFit(Problem{
		X:       []float64{1, 2, 3},
		Y:       []float64{5, 5, 5},
		Model:   func(_ float64, p []float64) float64 { return p[0] },
		Initial: []float64{100},
		Upper:   []float64{10},
	})
	require.NoError(err)
	require.InDelta(5.0, res.Params[0], 1e-6)
}

func TestCovarianceUndefinedWhenSquare(t *testing.T) {
	require := require.New(t)

	xs := []float64{1, 2, 4}
	ys := []float64{10, 10.5, 12}

	res, err := CurveFit(Problem{
		X:       xs,
		Y:       ys,
		Model:   powerModel,
		Grad:    powerGrad,
		Initial: []float64{10, 0.5, 1},
		Lower:   []float64{math.Inf(-1), math.Inf(-1), 0},
	})
	require.NoError(err)
	require.False(res.CovarianceDefined())
	require.Nil(res.StdErr())
	require.InDelta(math.Log2(3), res.Params[2], 1e-5)
}

func TestCurveFitNotConverged(t *testing.T) {
	_, err := CurveFit(Problem{
		X:       []float64{1, 2, 3, 4},
		Y:       []float64{1, 4, 9, 16},
		Model:   powerModel,
		Grad:    powerGrad,
		Initial: []float64{0, 0.1, 0.1},
	}, WithMaxIterations(1), WithTolerance(0, 0, 0))
	require.ErrorIs(t, err, errs.ErrFitNotConverged)
}

func TestCurveFitNonFiniteStart(t *testing.T) {
	_, err := CurveFit(Problem{
		X:       []float64{1, 2},
		Y:       []float64{1, 2},
		Model:   func(x float64, p []float64) float64 { return math.Log(p[0]) * x },
		Initial: []float64{-1},
	})
	require.ErrorIs(t, err, errs.ErrFitNotConverged)
}

func TestCurveFitValidation(t *testing.T) {
	model := func(x float64, p []float64) float64 { return p[0] * x }

	tests := []struct {
		name    string
		problem Problem
		opts    []Option
		wantErr error
	}{
		{"nil model", Problem{X: []float64{1}, Y: []float64{1}, Initial: []float64{1}}, nil, errs.ErrInvalidOption},
		{"length mismatch", Problem{X: []float64{1}, Y: []float64{1, 2}, Model: model, Initial: []float64{1}}, nil, errs.ErrLengthMismatch},
		{"empty", Problem{Model: model, Initial: []float64{1}}, nil, errs.ErrEmptySeries},
		{"no parameters", Problem{X: []float64{1}, Y: []float64{1}, Model: model}, nil, errs.ErrInvalidOption},
		{
			"bound length", Problem{X: []float64{1}, Y: []float64{1}, Model: model, Initial: []float64{1}, Lower: []float64{0, 0}},
			nil, errs.ErrInvalidBounds,
		},
		{
			"inverted bounds", Problem{X: []float64{1}, Y: []float64{1}, Model: model, Initial: []float64{1}, Lower: []float64{2}, Upper: []float64{1}},
			nil, errs.ErrInvalidBounds,
		},
		{"bad iterations", Problem{X: []float64{1}, Y: []float64{1}, Model: model, Initial: []float64{1}}, []Option{WithMaxIterations(0)}, errs.ErrInvalidOption},
		{"bad tolerance", Problem{X: []float64{1}, Y: []float64{1}, Model: model, Initial: []float64{1}}, []Option{WithTolerance(-1, 0, 0)}, errs.ErrInvalidOption},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CurveFit(tt.problem, tt.opts...)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRSquaredAndRMSE(t *testing.T) {
	require := require.New(t)

	observed := []float64{1, 2, 3, 4}
	require.InDelta(1.0, RSquared(observed, observed), 1e-12)
	require.InDelta(0.0, RMSE(observed, observed), 1e-12)

	predicted := []float64{1.5, 2.5, 3.5, 4.5}
	require.InDelta(0.5, RMSE(observed, predicted), 1e-12)
	require.InDelta(0.8, RSquared(observed, predicted), 1e-12)

	require.Equal(1.0, RSquared([]float64{2, 2}, []float64{2, 2}))
	require.Equal(0.0, RSquared([]float64{2, 2}, []float64{1, 1}))
	require.Equal(0.0, RSquared(nil, nil))
	require.Equal(0.0, RMSE(nil, nil))
}
