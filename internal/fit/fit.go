package fit

import (
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/arloliu/gridverify/errs"
	"github.com/arloliu/gridverify/internal/logging"
	"github.com/arloliu/gridverify/internal/options"
)

const (
	defaultMaxIterations = 800
	defaultTolerance     = 1e-12
	initialDamping       = 1e-3
	maxDamping           = 1e16
	minDamping           = 1e-15
)

// Func evaluates a model with parameters params at abscissa x.
type Func func(x float64, params []float64) float64

// Jacobian writes the partial derivatives of a model with respect to each
// parameter at abscissa x into grad.
type Jacobian func(x float64, params []float64, grad []float64)

// Problem describes a curve fit y ≈ Model(x, params).
//
// Lower and Upper are optional. A nil slice leaves every parameter unbounded on
// that side; individual entries may be ±Inf.
type Problem struct {
	X       []float64
	Y       []float64
	Model   Func
	Grad    Jacobian
	Initial []float64
	Lower   []float64
	Upper   []float64
}

// Config holds solver settings.
type Config struct {
	MaxIterations int
	FTol          float64
	XTol          float64
	GTol          float64
	Logger        *slog.Logger
}

// Option is a functional option for Config.
type Option = options.Option[*Config]

// WithMaxIterations limits the number of accepted or rejected Jacobian evaluations.
func WithMaxIterations(n int) Option {
	return options.New(func(c *Config) error {
		if n <= 0 {
			return fmt.Errorf("%w: max iterations must be positive, got %d", errs.ErrInvalidOption, n)
		}
		c.MaxIterations = n

		return nil
	})
}

// WithTolerance sets the relative cost, step and gradient tolerances.
func WithTolerance(ftol, xtol, gtol float64) Option {
	return options.New(func(c *Config) error {
		if ftol < 0 || xtol < 0 || gtol < 0 {
			return fmt.Errorf("%w: tolerances must not be negative", errs.ErrInvalidOption)
		}
		c.FTol, c.XTol, c.GTol = ftol, xtol, gtol

		return nil
	})
}

// WithLogger sets the logger used for per-iteration debug records.
func WithLogger(logger *slog.Logger) Option {
	return options.NoError(func(c *Config) {
		c.Logger = logger
	})
}

// Result is the outcome of a converged fit.
type Result struct {
	// Params holds the fitted parameters in problem order.
	Params []float64
	// Residuals holds Model(x_i) - y_i at Params.
	Residuals []float64
	// Cost is ½·Σr².
	Cost float64
	// Iterations counts the outer solver iterations.
	Iterations int
	// Evaluations counts residual vector evaluations.
	Evaluations int
	// RSquared is the coefficient of determination of the fit.
	RSquared float64
	// RMSE is the root mean square residual.
	RMSE float64
	// Covariance is the estimated parameter covariance, nil when undefined.
	Covariance *mat.SymDense
}

// CovarianceDefined reports whether the parameter covariance could be estimated.
func (r *Result) CovarianceDefined() bool {
	return r.Covariance != nil
}

// StdErr returns the standard error of each parameter, or nil when the
// covariance is undefined.
func (r *Result) StdErr() []float64 {
	if r.Covariance == nil {
		return nil
	}

	n := r.Covariance.SymmetricDim()
	out := make([]float64, n)
	for i := range n {
		out[i] = math.Sqrt(r.Covariance.At(i, i))
	}

	return out
}

// solver carries the per-call state of one fit.
type solver struct {
	p      Problem
	cfg    Config
	n, m   int
	lower  []float64
	upper  []float64
	evals  int
	logger *slog.Logger
}

// CurveFit minimizes ½·Σ(Model(x_i, params) - y_i)² subject to the box bounds.
//
// The initial guess is clipped into the bounds. A fit that exhausts the
// iteration limit, or whose residuals are not finite at the initial point,
// fails with errs.ErrFitNotConverged.
func CurveFit(p Problem, opts ...Option) (*Result, error) {
	cfg := Config{
		MaxIterations: defaultMaxIterations,
		FTol:          defaultTolerance,
		XTol:          defaultTolerance,
		GTol:          defaultTolerance,
	}
	if err := options.Apply(&cfg, opts...); err != nil {
		return nil, err
	}

	s, err := newSolver(p, cfg)
	if err != nil {
		return nil, err
	}

	return s.run()
}

func newSolver(p Problem, cfg Config) (*solver, error) {
	if p.Model == nil {
		return nil, fmt.Errorf("%w: model function is required", errs.ErrInvalidOption)
	}
	if len(p.X) != len(p.Y) {
		return nil, fmt.Errorf("%w: %d abscissas for %d observations", errs.ErrLengthMismatch, len(p.X), len(p.Y))
	}
	if len(p.X) == 0 {
		return nil, errs.ErrEmptySeries
	}

	m := len(p.Initial)
	if m == 0 {
		return nil, fmt.Errorf("%w: initial guess is empty", errs.ErrInvalidOption)
	}

	s := &solver{
		p:      p,
		cfg:    cfg,
		n:      len(p.X),
		m:      m,
		lower:  fillBound(p.Lower, m, math.Inf(-1)),
		upper:  fillBound(p.Upper, m, math.Inf(1)),
		logger: cfg.Logger,
	}
	if s.lower == nil || s.upper == nil {
		return nil, fmt.Errorf("%w: bounds must have %d entries", errs.ErrInvalidBounds, m)
	}
	for j := range m {
		if !(s.lower[j] < s.upper[j]) {
			return nil, fmt.Errorf("%w: parameter %d has lower %v >= upper %v",
				errs.ErrInvalidBounds, j, s.lower[j], s.upper[j])
		}
	}
	if s.logger == nil {
		s.logger = logging.Discard()
	}

	return s, nil
}

func fillBound(b []float64, m int, def float64) []float64 {
	if b == nil {
		out := make([]float64, m)
		for i := range out {
			out[i] = def
		}

		return out
	}
	if len(b) != m {
		return nil
	}

	return append([]float64(nil), b...)
}

func (s *solver) run() (*Result, error) {
	x := make([]float64, s.m)
	copy(x, s.p.Initial)
	s.clip(x)

	r := make([]float64, s.n)
	cost := s.residuals(x, r)
	if !isFinite(cost) {
		return nil, fmt.Errorf("%w: residuals are not finite at the initial guess", errs.ErrFitNotConverged)
	}

	jac := mat.NewDense(s.n, s.m, nil)
	grad := make([]float64, s.m)
	trial := make([]float64, s.m)
	rTrial := make([]float64, s.n)
	lambda := initialDamping

	for iter := 1; iter <= s.cfg.MaxIterations; iter++ {
		if cost == 0 {
			return s.finish(x, r, cost, iter-1, jac), nil
		}

		s.jacobian(x, jac)
		rv := mat.NewVecDense(s.n, r)
		gv := mat.NewVecDense(s.m, grad)
		gv.MulVec(jac.T(), rv)

		free := s.freeSet(x, grad)
		if len(free) == 0 || s.projectedGradientNorm(free, grad) <= s.cfg.GTol {
			return s.finish(x, r, cost, iter-1, jac), nil
		}

		var jtj mat.SymDense
		jtj.SymOuterK(1, jac.T())

		for {
			step, ok := s.dampedStep(&jtj, grad, free, lambda)
			if ok {
				copy(trial, x)
				for k, j := range free {
					trial[j] += step[k]
				}
				s.clip(trial)

				trialCost := s.residuals(trial, rTrial)
				if isFinite(trialCost) && trialCost < cost {
					dx := stepNorm(trial, x)
					xNorm := floats.Norm(x, 2)
					decrease := cost - trialCost

					copy(x, trial)
					copy(r, rTrial)
					prev := cost
					cost = trialCost
					lambda = math.Max(lambda/10, minDamping)

					s.logger.Debug("fit step accepted",
						slog.Int("iteration", iter),
						slog.Float64("cost", cost),
						slog.Float64("lambda", lambda))

					if decrease <= s.cfg.FTol*prev || dx <= s.cfg.XTol*(s.cfg.XTol+xNorm) {
						return s.finish(x, r, cost, iter, jac), nil
					}

					break
				}
			}

			lambda *= 10
			if lambda > maxDamping {
				// No descent direction remains at machine precision.
				return s.finish(x, r, cost, iter, jac), nil
			}
		}
	}

	return nil, fmt.Errorf("%w: no convergence after %d iterations (cost %g)",
		errs.ErrFitNotConverged, s.cfg.MaxIterations, cost)
}

// finish evaluates statistics and covariance at the final point.
func (s *solver) finish(x, r []float64, cost float64, iterations int, jac *mat.Dense) *Result {
	s.jacobian(x, jac)

	predicted := make([]float64, s.n)
	for i := range predicted {
		predicted[i] = s.p.Y[i] + r[i]
	}

	res := &Result{
		Params:      append([]float64(nil), x...),
		Residuals:   append([]float64(nil), r...),
		Cost:        cost,
		Iterations:  iterations,
		Evaluations: s.evals,
		RSquared:    RSquared(s.p.Y, predicted),
		RMSE:        RMSE(s.p.Y, predicted),
		Covariance:  covariance(jac, cost, s.n, s.m),
	}

	s.logger.Debug("fit converged",
		slog.Int("iterations", iterations),
		slog.Float64("cost", cost),
		slog.Bool("covariance", res.CovarianceDefined()))

	return res
}

// covariance returns s²·(JᵀJ)⁻¹, or nil when it is undefined.
func covariance(jac *mat.Dense, cost float64, n, m int) *mat.SymDense {
	if n <= m {
		return nil
	}

	var jtj mat.SymDense
	jtj.SymOuterK(1, jac.T())

	var chol mat.Cholesky
	if !chol.Factorize(&jtj) {
		return nil
	}

	var inv mat.SymDense
	if err := chol.InverseTo(&inv); err != nil {
		return nil
	}
	inv.ScaleSym(2*cost/float64(n-m), &inv)

	return &inv
}

// dampedStep solves the damped normal equations restricted to the free parameters.
func (s *solver) dampedStep(jtj *mat.SymDense, grad []float64, free []int, lambda float64) ([]float64, bool) {
	k := len(free)
	a := mat.NewSymDense(k, nil)
	b := mat.NewVecDense(k, nil)
	for p, i := range free {
		for q := p; q < k; q++ {
			a.SetSym(p, q, jtj.At(i, free[q]))
		}
		d := jtj.At(i, i)
		if d < minDamping {
			d = minDamping
		}
		a.SetSym(p, p, a.At(p, p)+lambda*d)
		b.SetVec(p, -grad[i])
	}

	var chol mat.Cholesky
	if !chol.Factorize(a) {
		return nil, false
	}

	var step mat.VecDense
	if err := chol.SolveVecTo(&step, b); err != nil {
		return nil, false
	}

	out := make([]float64, k)
	for p := range out {
		out[p] = step.AtVec(p)
	}
	for _, v := range out {
		if !isFinite(v) {
			return nil, false
		}
	}

	return out, true
}

// freeSet returns the parameters not pinned to a bound by an outward gradient.
// The gradient is of the cost, so a descent step moves along -grad.
func (s *solver) freeSet(x, grad []float64) []int {
	free := make([]int, 0, s.m)
	for j := range s.m {
		if x[j] <= s.lower[j] && grad[j] > 0 {
			continue
		}
		if x[j] >= s.upper[j] && grad[j] < 0 {
			continue
		}
		free = append(free, j)
	}

	return free
}

func (s *solver) projectedGradientNorm(free []int, grad []float64) float64 {
	norm := 0.0
	for _, j := range free {
		norm = math.Max(norm, math.Abs(grad[j]))
	}

	return norm
}

// residuals fills r with Model(x_i) - y_i and returns the cost ½·Σr².
func (s *solver) residuals(params, r []float64) float64 {
	s.evals++
	for i, xi := range s.p.X {
		r[i] = s.p.Model(xi, params) - s.p.Y[i]
	}

	return 0.5 * floats.Dot(r, r)
}

// jacobian fills jac with ∂Model(x_i)/∂params_j, analytically when Grad is set
// and by forward differences otherwise.
func (s *solver) jacobian(params []float64, jac *mat.Dense) {
	row := make([]float64, s.m)
	if s.p.Grad != nil {
		for i, xi := range s.p.X {
			s.p.Grad(xi, params, row)
			jac.SetRow(i, row)
		}

		return
	}

	shifted := append([]float64(nil), params...)
	eps := math.Sqrt(2.220446049250313e-16)
	for j := range s.m {
		h := eps * math.Max(math.Abs(params[j]), 1)
		if params[j]+h > s.upper[j] {
			h = -h
		}
		shifted[j] = params[j] + h
		for i, xi := range s.p.X {
			jac.Set(i, j, (s.p.Model(xi, shifted)-s.p.Model(xi, params))/h)
		}
		shifted[j] = params[j]
	}
}

func (s *solver) clip(x []float64) {
	for j := range x {
		x[j] = math.Min(math.Max(x[j], s.lower[j]), s.upper[j])
	}
}

func stepNorm(a, b []float64) float64 {
	return floats.Distance(a, b, 2)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
