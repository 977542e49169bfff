package discretization

import (
	"fmt"
	"maps"
	"slices"

	"github.com/arloliu/gridverify/errs"
)

// Parameter names shared by several models.
const (
	ParamFEst   = "f_est"
	ParamAlpha  = "alpha"
	ParamOrder  = "p"
	ParamAlpha1 = "alpha_1"
	ParamAlpha2 = "alpha_2"
	ParamMean   = "mean"
	ParamStd    = "std"
	ParamZero   = "order"
)

// Model is a discretization model: a functional form f(h) solved once per
// response quantity, used to extrapolate to zero discretization size.
type Model interface {
	// Kind identifies the model.
	Kind() ModelKind
	// Evaluate returns the modeled response of key at size h.
	Evaluate(key string, h float64) (float64, error)
	// EvaluateAll returns the modeled response of key at every size in hs.
	EvaluateAll(key string, hs []float64) ([]float64, error)
	// FEst returns the extrapolated estimate per response key.
	FEst() map[string]float64
	// Order returns the observed order per response key. Constant models
	// report [0]; FirstAndSecondOrder reports [alpha_1, alpha_2].
	Order() map[string][]float64
	// Parameters returns the fitted parameter table.
	Parameters() *Parameters
}

// FitInfo describes the nonlinear least-squares solve of one response.
type FitInfo struct {
	Iterations        int
	Evaluations       int
	Cost              float64
	RSquared          float64
	RMSE              float64
	CovarianceDefined bool
	// StdErr holds the standard error of each parameter in Parameters order,
	// nil when the covariance is undefined.
	StdErr []float64
}

// FitReporter is implemented by models solved with a curve fit.
type FitReporter interface {
	FitInfo(key string) (FitInfo, bool)
}

// ModelFactory builds and solves a Model for an analysis. Factories may read
// the analysis data and configuration but must not retain it beyond reads.
type ModelFactory func(a *Analysis) (Model, error)

// ModelFactoryOf returns the built-in factory for kind.
func ModelFactoryOf(kind ModelKind) (ModelFactory, error) {
	switch kind {
	case ModelSinglePower:
		return NewSinglePower, nil
	case ModelFirstAndSecondOrder:
		return NewFirstAndSecondOrder, nil
	case ModelAverageValue:
		return NewAverageValue, nil
	case ModelFinestValue:
		return NewFinestValue, nil
	case ModelMaximumValue:
		return NewMaximumValue, nil
	case ModelMinimumValue:
		return NewMinimumValue, nil
	default:
		return nil, fmt.Errorf("%w: model kind %d", errs.ErrUnknownModel, int(kind))
	}
}

// solved holds what every model caches after its solve.
type solved struct {
	kind   ModelKind
	params *Parameters
	fEst   map[string]float64
	order  map[string][]float64
}

func (s *solved) Kind() ModelKind {
	return s.kind
}

func (s *solved) FEst() map[string]float64 {
	return maps.Clone(s.fEst)
}

func (s *solved) Order() map[string][]float64 {
	out := make(map[string][]float64, len(s.order))
	for k, v := range s.order {
		out[k] = slices.Clone(v)
	}

	return out
}

func (s *solved) Parameters() *Parameters {
	return s.params
}

func (s *solved) column(key string) ([]float64, error) {
	return s.params.Column(key)
}

// evaluateAll applies eval to every size in hs.
func evaluateAll(m Model, key string, hs []float64) ([]float64, error) {
	out := make([]float64, len(hs))
	for i, h := range hs {
		v, err := m.Evaluate(key, h)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}

	return out, nil
}
