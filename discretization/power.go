package discretization

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/arloliu/gridverify/errs"
	"github.com/arloliu/gridverify/internal/fit"
)

// FittedModel is a power series in h whose coefficients are found per
// response by bounded nonlinear least squares on normalized data.
type FittedModel struct {
	solved
	eval func(params []float64, h float64) float64
	info map[string]FitInfo
}

// Evaluate returns the fitted response of key at size h.
func (m *FittedModel) Evaluate(key string, h float64) (float64, error) {
	col, err := m.column(key)
	if err != nil {
		return 0, err
	}

	return m.eval(col, h), nil
}

// EvaluateAll returns the fitted response of key at every size in hs.
func (m *FittedModel) EvaluateAll(key string, hs []float64) ([]float64, error) {
	return evaluateAll(m, key, hs)
}

// FitInfo reports solver statistics for key.
func (m *FittedModel) FitInfo(key string) (FitInfo, bool) {
	info, ok := m.info[key]
	if ok {
		info.StdErr = append([]float64(nil), info.StdErr...)
	}

	return info, ok
}

// powerSeries describes one fitted functional form on normalized data,
// x = h/h0 and y = f/f0.
type powerSeries struct {
	kind  ModelKind
	names []string
	model fit.Func
	grad  fit.Jacobian
	// initial returns the starting guess from the normalized data.
	initial func(xs, ys []float64) []float64
	lower   []float64
	upper   []float64
	// rescale maps normalized parameters back to data units in place, and
	// returns the per-parameter scale applied so standard errors follow.
	rescale func(params []float64, f0, h0 float64) []float64
	eval    func(params []float64, h float64) float64
	order   func(params []float64) []float64
}

// NewSinglePower fits f(h) = f_est + alpha*h^p for every response. The
// observed order p is bounded by the analysis order limits, [0, +Inf) unless
// set with WithOrderLimits.
func NewSinglePower(a *Analysis) (Model, error) {
	lo, hi := a.cfg.OrderLimits[0], a.cfg.OrderLimits[1]
	inf := math.Inf(1)

	return fitPowerSeries(a, powerSeries{
		kind:  ModelSinglePower,
		names: []string{ParamFEst, ParamAlpha, ParamOrder},
		model: func(x float64, p []float64) float64 {
			return p[0] + p[1]*math.Pow(x, p[2])
		},
		grad: func(x float64, p []float64, grad []float64) {
			xp := math.Pow(x, p[2])
			grad[0] = 1
			grad[1] = xp
			grad[2] = p[1] * xp * math.Log(x)
		},
		initial: func(xs, ys []float64) []float64 {
			n := len(xs)
			p0 := math.Min(math.Max(1, lo), hi)
			alpha0 := (ys[n-1] - ys[0]) / math.Pow(xs[n-1]-xs[0], p0)

			return []float64{ys[0], alpha0, p0}
		},
		lower: []float64{-inf, -inf, lo},
		upper: []float64{inf, inf, hi},
		rescale: func(p []float64, f0, h0 float64) []float64 {
			scale := []float64{f0, f0 / math.Pow(h0, p[2]), 1}
			for i := range p {
				p[i] *= scale[i]
			}

			return scale
		},
		eval: func(p []float64, h float64) float64 {
			return p[0] + p[1]*math.Pow(h, p[2])
		},
		order: func(p []float64) []float64 {
			return []float64{p[2]}
		},
	})
}

// NewFirstAndSecondOrder fits f(h) = f_est + alpha_1*h + alpha_2*h² for every
// response. The reported order is the coefficient pair [alpha_1, alpha_2].
func NewFirstAndSecondOrder(a *Analysis) (Model, error) {
	return fitPowerSeries(a, powerSeries{
		kind:  ModelFirstAndSecondOrder,
		names: []string{ParamFEst, ParamAlpha1, ParamAlpha2},
		model: func(x float64, p []float64) float64 {
			return p[0] + p[1]*x + p[2]*x*x
		},
		grad: func(x float64, _ []float64, grad []float64) {
			grad[0] = 1
			grad[1] = x
			grad[2] = x * x
		},
		initial: func(xs, ys []float64) []float64 {
			n := len(xs)
			df := ys[n-1] - ys[0]
			dh := xs[n-1] - xs[0]

			return []float64{ys[0], df / dh, df / (dh * dh)}
		},
		rescale: func(p []float64, f0, h0 float64) []float64 {
			scale := []float64{f0, f0 / h0, f0 / (h0 * h0)}
			for i := range p {
				p[i] *= scale[i]
			}

			return scale
		},
		eval: func(p []float64, h float64) float64 {
			return p[0] + p[1]*h + p[2]*h*h
		},
		order: func(p []float64) []float64 {
			return []float64{p[1], p[2]}
		},
	})
}

func fitPowerSeries(a *Analysis, ps powerSeries) (*FittedModel, error) {
	n := a.Len()
	if n < 2 {
		return nil, fmt.Errorf("%w: %s fit needs at least 2 levels, have %d", errs.ErrInsufficientLevels, ps.kind, n)
	}

	keys := a.Keys()
	m := &FittedModel{
		solved: solved{
			kind:   ps.kind,
			params: newParameters(ps.names, keys),
			fEst:   make(map[string]float64, len(keys)),
			order:  make(map[string][]float64, len(keys)),
		},
		eval: ps.eval,
		info: make(map[string]FitInfo, len(keys)),
	}

	hs := a.Sizes()
	h0 := hs[0]
	xs := make([]float64, n)
	for i, h := range hs {
		xs[i] = h / h0
	}

	fitOpts := []fit.Option{fit.WithLogger(a.logger.With(slog.String("model", ps.kind.String())))}
	if a.cfg.MaxIterations > 0 {
		fitOpts = append(fitOpts, fit.WithMaxIterations(a.cfg.MaxIterations))
	}

	for _, key := range keys {
		values, err := a.Response(key)
		if err != nil {
			return nil, err
		}

		f0 := normalizationScale(values)
		ys := make([]float64, n)
		for i, v := range values {
			ys[i] = v / f0
		}

		res, err := fit.CurveFit(fit.Problem{
			X:       xs,
			Y:       ys,
			Model:   ps.model,
			Grad:    ps.grad,
			Initial: ps.initial(xs, ys),
			Lower:   ps.lower,
			Upper:   ps.upper,
		}, fitOpts...)
		if err != nil {
			return nil, fmt.Errorf("%s fit of %q: %w", ps.kind, key, err)
		}

		params := res.Params
		scale := ps.rescale(params, f0, h0)
		for i, name := range ps.names {
			m.params.set(name, key, params[i])
		}
		m.fEst[key] = params[0]
		m.order[key] = ps.order(params)

		info := FitInfo{
			Iterations:        res.Iterations,
			Evaluations:       res.Evaluations,
			Cost:              res.Cost,
			RSquared:          res.RSquared,
			RMSE:              res.RMSE * math.Abs(f0),
			CovarianceDefined: res.CovarianceDefined(),
		}
		if stdErr := res.StdErr(); stdErr != nil {
			for i := range stdErr {
				stdErr[i] *= math.Abs(scale[i])
			}
			info.StdErr = stdErr
		}
		m.info[key] = info

		if !info.CovarianceDefined && n != len(ps.names) {
			a.logger.Warn("covariance of fitted parameters could not be estimated",
				slog.String("model", ps.kind.String()),
				slog.String("key", key),
				slog.Int("levels", n))
		}
	}

	return m, nil
}

// normalizationScale returns the value used to normalize a response column:
// the finest value, or the largest magnitude when the finest value is zero,
// or 1 for an all-zero column.
func normalizationScale(values []float64) float64 {
	if values[0] != 0 {
		return values[0]
	}

	scale := 0.0
	for _, v := range values {
		scale = math.Max(scale, math.Abs(v))
	}
	if scale == 0 {
		return 1
	}

	return scale
}
