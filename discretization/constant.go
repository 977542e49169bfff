package discretization

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/arloliu/gridverify/errs"
)

// ConstantModel estimates the response with a single value independent of the
// discretization size. Its observed order is always zero.
type ConstantModel struct {
	solved
}

// Evaluate returns the estimate of key for any h.
func (m *ConstantModel) Evaluate(key string, _ float64) (float64, error) {
	v, ok := m.fEst[key]
	if !ok {
		return 0, fmt.Errorf("%w: %q", errs.ErrUnknownKey, key)
	}

	return v, nil
}

// EvaluateAll broadcasts the estimate of key over hs.
func (m *ConstantModel) EvaluateAll(key string, hs []float64) ([]float64, error) {
	return evaluateAll(m, key, hs)
}

// NewAverageValue estimates every response by the mean over all levels and
// records the sample standard deviation. With a single level the standard
// deviation is NaN.
func NewAverageValue(a *Analysis) (Model, error) {
	return newConstant(a, ModelAverageValue, []string{ParamMean, ParamStd, ParamZero},
		func(values []float64) []float64 {
			return []float64{stat.Mean(values, nil), stat.StdDev(values, nil), 0}
		})
}

// NewFinestValue estimates every response by its value at the finest level.
func NewFinestValue(a *Analysis) (Model, error) {
	return newConstant(a, ModelFinestValue, []string{ParamFEst, ParamZero},
		func(values []float64) []float64 {
			return []float64{values[0], 0}
		})
}

// NewMaximumValue estimates every response by its largest value.
func NewMaximumValue(a *Analysis) (Model, error) {
	return newConstant(a, ModelMaximumValue, []string{ParamFEst, ParamZero},
		func(values []float64) []float64 {
			return []float64{floats.Max(values), 0}
		})
}

// NewMinimumValue estimates every response by its smallest value.
func NewMinimumValue(a *Analysis) (Model, error) {
	return newConstant(a, ModelMinimumValue, []string{ParamFEst, ParamZero},
		func(values []float64) []float64 {
			return []float64{floats.Min(values), 0}
		})
}

// newConstant solves a constant model. solve returns the parameter column of
// one response, starting with the estimate.
func newConstant(a *Analysis, kind ModelKind, names []string, solve func([]float64) []float64) (*ConstantModel, error) {
	keys := a.Keys()
	m := &ConstantModel{solved: solved{
		kind:   kind,
		params: newParameters(names, keys),
		fEst:   make(map[string]float64, len(keys)),
		order:  make(map[string][]float64, len(keys)),
	}}

	for _, key := range keys {
		values, err := a.Response(key)
		if err != nil {
			return nil, err
		}

		col := solve(slices.Clone(values))
		for i, name := range names {
			m.params.set(name, key, col[i])
		}
		m.fEst[key] = col[0]
		m.order[key] = []float64{0}
	}

	return m, nil
}
