package discretization

import (
	"bytes"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/gridverify/errs"
	"github.com/arloliu/gridverify/series"
)

const key = series.DefaultResponseName

func newSeries(t *testing.T, sizes, values []float64) *series.Series {
	t.Helper()

	s, err := series.New(sizes, values)
	require.NoError(t, err)

	return s
}

func bufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})), &buf
}

func TestClassicThreeLevels(t *testing.T) {
	require := require.New(t)

	logger, buf := bufferLogger()
	a, err := NewClassic(newSeries(t, []float64{4, 1, 2}, []float64{12, 10, 10.5}), WithLogger(logger))
	require.NoError(err)

	require.Equal(PresetClassic, a.Preset())
	require.Equal(3, a.Len())
	require.Equal([]float64{1, 2, 4}, a.Sizes())

	fEst, err := a.FEstOf(key)
	require.NoError(err)
	require.InDelta(9.75, fEst, 1e-6)
	require.Less(fEst, 10.0)

	order, err := a.OrderOf(key)
	require.NoError(err)
	require.Len(order, 1)
	require.InDelta(math.Log2(3), order[0], 1e-6)

	alpha, err := a.Parameters().Get(ParamAlpha, key)
	require.NoError(err)
	require.InDelta(0.25, alpha, 1e-6)
	require.Equal([]string{ParamFEst, ParamAlpha, ParamOrder}, a.Parameters().Names())

	v, err := a.Evaluate(key, 2)
	require.NoError(err)
	require.InDelta(10.5, v, 1e-6)

	info, ok := a.FitInfo(key)
	require.True(ok)
	require.False(info.CovarianceDefined)
	require.Nil(info.StdErr)
	require.InDelta(1.0, info.RSquared, 1e-9)
	require.Empty(buf.String(), "three levels with three parameters must not warn")
}

func TestClassicRecoversSyntheticData(t *testing.T) {
	require := require.New(t)

	sizes := []float64{0.1, 0.2, 0.4, 0.8, 1.6}
	values := make([]float64, len(sizes))
	for i, h := range sizes {
		values[i] = 3.5 - 1.2*math.Pow(h, 1.8)
	}

	a, err := NewClassic(newSeries(t, sizes, values))
	require.NoError(err)

	col, err := a.Parameters().Column(key)
	require.NoError(err)
	require.InDelta(3.5, col[0], 1e-6)
	require.InDelta(-1.2, col[1], 1e-6)
	require.InDelta(1.8, col[2], 1e-6)

	info, ok := a.FitInfo(key)
	require.True(ok)
	require.True(info.CovarianceDefined)
	require.Len(info.StdErr, 3)
}

func TestClassicTwoLevelsWarns(t *testing.T) {
	require := require.New(t)

	logger, buf := bufferLogger()
	a, err := NewClassic(newSeries(t, []float64{1, 2}, []float64{1, 1.5}), WithLogger(logger))
	require.NoError(err)
	require.Equal(2, a.Len())
	require.Contains(buf.String(), "covariance")
}

func TestClassicSingleLevel(t *testing.T) {
	_, err := NewClassic(newSeries(t, []float64{1}, []float64{1}))
	require.ErrorIs(t, err, errs.ErrInsufficientLevels)
}

func TestClassicZeroFinestValue(t *testing.T) {
	require := require.New(t)

	// f = -0.5 + 0.5*h exactly, with f(1) = 0.
	a, err := NewClassic(newSeries(t, []float64{1, 2, 4}, []float64{0, 0.5, 1.5}))
	require.NoError(err)

	fEst, err := a.FEstOf(key)
	require.NoError(err)
	require.InDelta(-0.5, fEst, 1e-6)

	order, err := a.OrderOf(key)
	require.NoError(err)
	require.InDelta(1.0, order[0], 1e-6)
}

func TestOrderLimits(t *testing.T) {
	require := require.New(t)

	s := newSeries(t, []float64{1, 2, 4}, []float64{10, 10.5, 12})

	a, err := NewClassic(s, WithOrderLimits([]float64{0.5, 1.2}))
	require.NoError(err)
	order, err := a.OrderOf(key)
	require.NoError(err)
	require.InDelta(1.2, order[0], 1e-6)

	for _, limits := range [][]float64{nil, {1}, {1, 2, 3}, {2, 1}, {1, 1}, {math.NaN(), 1}} {
		_, err := NewClassic(s, WithOrderLimits(limits))
		require.ErrorIs(err, errs.ErrInvalidBounds, "limits %v", limits)
	}
}

func TestFitNotConverged(t *testing.T) {
	s := newSeries(t, []float64{1, 2, 4}, []float64{10, 10.5, 12})

	_, err := NewClassic(s, WithMaxIterations(1))
	require.ErrorIs(t, err, errs.ErrFitNotConverged)
	require.Contains(t, err.Error(), key)

	_, err = NewClassic(s, WithMaxIterations(0))
	require.ErrorIs(t, err, errs.ErrInvalidOption)
}

func TestFirstAndSecondOrder(t *testing.T) {
	require := require.New(t)

	sizes := []float64{0.5, 1, 2, 4}
	values := make([]float64, len(sizes))
	for i, h := range sizes {
		values[i] = 2 + 0.5*h + 0.25*h*h
	}

	a, err := NewCustom(newSeries(t, sizes, values), WithModel(NewFirstAndSecondOrder))
	require.NoError(err)
	require.Equal(ModelFirstAndSecondOrder, a.Model().Kind())

	fEst, err := a.FEstOf(key)
	require.NoError(err)
	require.InDelta(2.0, fEst, 1e-6)

	order, err := a.OrderOf(key)
	require.NoError(err)
	require.Len(order, 2)
	require.InDelta(0.5, order[0], 1e-6)
	require.InDelta(0.25, order[1], 1e-6)

	_, err = a.Uncertainty(key, 0)
	require.ErrorIs(err, errs.ErrUnsupportedOrder)
}

func TestAveragePreset(t *testing.T) {
	require := require.New(t)

	a, err := NewAverage(newSeries(t, []float64{1, 2, 4}, []float64{10, 10.5, 12}))
	require.NoError(err)
	require.Equal(ModelAverageValue, a.Model().Kind())
	require.Equal(ErrorEstimated, a.ErrorModel().Kind())
	require.Equal(UncertaintyStudentsT, a.UncertaintyModel().Kind())

	fEst, err := a.FEstOf(key)
	require.NoError(err)
	require.InDelta(65.0/6, fEst, 1e-12)

	std, err := a.Parameters().Get(ParamStd, key)
	require.NoError(err)
	require.InDelta(1.0408329997330665, std, 1e-12)

	order, err := a.OrderOf(key)
	require.NoError(err)
	require.Equal([]float64{0}, order)

	_, ok := a.FitInfo(key)
	require.False(ok)

	us, err := a.Uncertainties(key)
	require.NoError(err)
	require.Len(us, 3)
	for _, u := range us {
		require.InDelta(2.585572506368369, u, 1e-6)
	}

	u1, err := a.Uncertainty(key, 1)
	require.NoError(err)
	require.Equal(us[0], u1)

	_, err = a.Uncertainty(key, 3)
	require.ErrorIs(err, errs.ErrIndexOutOfRange)
}

func TestAverageSingleLevel(t *testing.T) {
	require := require.New(t)

	a, err := NewAverage(newSeries(t, []float64{1}, []float64{7}))
	require.NoError(err)

	fEst, err := a.FEstOf(key)
	require.NoError(err)
	require.Equal(7.0, fEst)

	_, err = a.Uncertainty(key, 0)
	require.ErrorIs(err, errs.ErrInsufficientLevels)
}

func TestConstantModels(t *testing.T) {
	s := newSeries(t, []float64{1, 2, 4, 8}, []float64{5, 7, 4, 6})

	tests := []struct {
		name    string
		factory ModelFactory
		kind    ModelKind
		want    float64
	}{
		{"finest", NewFinestValue, ModelFinestValue, 5},
		{"maximum", NewMaximumValue, ModelMaximumValue, 7},
		{"minimum", NewMinimumValue, ModelMinimumValue, 4},
		{"average", NewAverageValue, ModelAverageValue, 5.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)

			a, err := NewCustom(s, WithModel(tt.factory), WithUncertaintyModel(NewFactorOfSafety))
			require.NoError(err)
			require.Equal(tt.kind, a.Model().Kind())

			fEst, err := a.FEstOf(key)
			require.NoError(err)
			require.Equal(tt.want, fEst)

			got, err := a.Model().EvaluateAll(key, []float64{0, 1, 100})
			require.NoError(err)
			require.Equal([]float64{tt.want, tt.want, tt.want}, got)

			order, err := a.OrderOf(key)
			require.NoError(err)
			require.Equal([]float64{0}, order)
		})
	}
}

func TestEstimatedError(t *testing.T) {
	require := require.New(t)

	a, err := NewCustom(newSeries(t, []float64{1, 2, 4}, []float64{5, 7, 4}), WithModel(NewFinestValue),
		WithUncertaintyModel(NewFactorOfSafety))
	require.NoError(err)

	got, err := a.Errors(key)
	require.NoError(err)
	require.Equal([]float64{0, 2, -1}, got)

	e, err := a.Error(key, 2)
	require.NoError(err)
	require.Equal(-1.0, e)

	all, err := a.ErrorsAll()
	require.NoError(err)
	require.Equal(map[string][]float64{key: {0, 2, -1}}, all)

	u, err := a.Uncertainty(key, 2)
	require.NoError(err)
	require.Equal(3.0, u)

	us, err := a.Uncertainties(key, WithFactor(2))
	require.NoError(err)
	require.Equal([]float64{0, 4, 2}, us)

	_, err = a.Error(key, 3)
	require.ErrorIs(err, errs.ErrIndexOutOfRange)
	_, err = a.Error("missing", 0)
	require.ErrorIs(err, errs.ErrUnknownKey)
}

func TestRelativeError(t *testing.T) {
	require := require.New(t)

	s, err := series.FromColumns([]float64{1, 2, 4, 8}, []series.Column{
		{Name: "u", Values: []float64{1, 3, 6, 10}},
		{Name: "v", Values: []float64{2, 2, 2, 2}},
	})
	require.NoError(err)

	a, err := NewCustom(s,
		WithModel(NewFinestValue),
		WithErrorModel(NewRelativeError),
		WithUncertaintyModel(NewFactorOfSafety))
	require.NoError(err)
	require.Equal(ErrorRelative, a.ErrorModel().Kind())

	rel, err := a.RelativeErrors("u")
	require.NoError(err)
	require.Equal([]float64{-2, -3, -4, -4}, rel)

	// The coarsest level repeats the last pair for single queries too.
	last, err := a.RelativeError("u", 3)
	require.NoError(err)
	prev, err := a.RelativeError("u", 2)
	require.NoError(err)
	require.Equal(prev, last)

	abs, err := a.AbsRelativeErrors("u")
	require.NoError(err)
	require.Equal([]float64{2, 3, 4, 4}, abs)

	absOne, err := a.AbsRelativeError("u", 0)
	require.NoError(err)
	require.Equal(2.0, absOne)

	got, err := a.Errors("u")
	require.NoError(err)
	require.Equal(rel, got)

	e, err := a.Error("u", 1)
	require.NoError(err)
	require.Equal(-3.0, e)

	all, err := a.RelativeErrorsAll()
	require.NoError(err)
	require.Equal([]float64{0, 0, 0, 0}, all["v"])

	_, err = a.RelativeError("u", 4)
	require.ErrorIs(err, errs.ErrIndexOutOfRange)
	_, err = a.RelativeError("u", -1)
	require.ErrorIs(err, errs.ErrIndexOutOfRange)
}

func TestRelativeErrorSingleLevel(t *testing.T) {
	require := require.New(t)

	a, err := NewCustom(newSeries(t, []float64{1}, []float64{3}), WithModel(NewFinestValue),
		WithErrorModel(NewRelativeError), WithUncertaintyModel(NewFactorOfSafety))
	require.NoError(err)

	_, err = a.RelativeErrors(key)
	require.ErrorIs(err, errs.ErrInsufficientLevels)
	_, err = a.RelativeError(key, 0)
	require.ErrorIs(err, errs.ErrInsufficientLevels)
}

func TestAccessorsReturnCopies(t *testing.T) {
	require := require.New(t)

	a, err := NewClassic(newSeries(t, []float64{1, 2, 4}, []float64{10, 10.5, 12}))
	require.NoError(err)

	fEst := a.FEst()
	fEst[key] = 0
	v, err := a.FEstOf(key)
	require.NoError(err)
	require.NotZero(v)

	order := a.Order()
	order[key][0] = -1
	p, err := a.OrderOf(key)
	require.NoError(err)
	require.Positive(p[0])

	require.Equal([]float64{2, 2}, a.RefinementRatios())
	require.Equal(series.DefaultSizeKey, a.SizeKey())
	require.Same(a.Data(), a.Data())

	_, err = a.FEstOf("missing")
	require.ErrorIs(err, errs.ErrUnknownKey)
	_, err = a.OrderOf("missing")
	require.ErrorIs(err, errs.ErrUnknownKey)
	_, err = a.Evaluate("missing", 1)
	require.ErrorIs(err, errs.ErrUnknownKey)
}

func TestMultipleResponses(t *testing.T) {
	require := require.New(t)

	s, err := series.FromMap([]float64{1, 2, 4}, map[string][]float64{
		"lift": {1.0, 1.1, 1.4},
		"drag": {10, 10.5, 12},
	})
	require.NoError(err)

	a, err := NewClassic(s)
	require.NoError(err)
	require.Equal([]string{"drag", "lift"}, a.Parameters().Keys())

	row, err := a.Parameters().Row(ParamFEst)
	require.NoError(err)
	require.Len(row, 2)
	require.InDelta(9.75, row[0], 1e-6)
	require.InDelta(0.95, row[1], 1e-6)

	require.Contains(a.String(), "model=single_power")
}

func TestNewRejectsBadInput(t *testing.T) {
	require := require.New(t)

	_, err := NewClassic(nil)
	require.ErrorIs(err, errs.ErrEmptySeries)

	s := newSeries(t, []float64{1, 2}, []float64{1, 2})
	_, err = New(Preset(42), s)
	require.ErrorIs(err, errs.ErrUnknownModel)

	_, err = NewCustom(s, WithModel(nil))
	require.ErrorIs(err, errs.ErrInvalidOption)
	_, err = NewCustom(s, WithErrorModel(nil))
	require.ErrorIs(err, errs.ErrInvalidOption)
	_, err = NewCustom(s, WithUncertaintyModel(nil))
	require.ErrorIs(err, errs.ErrInvalidOption)
}

func TestPresetOverridesModelOptions(t *testing.T) {
	require := require.New(t)

	s := newSeries(t, []float64{1, 2, 4}, []float64{10, 10.5, 12})
	a, err := NewAverage(s, WithModel(NewFinestValue))
	require.NoError(err)
	require.Equal(ModelAverageValue, a.Model().Kind())

	c, err := NewCustom(s)
	require.NoError(err)
	require.Equal(ModelSinglePower, c.Model().Kind())
	require.Equal(UncertaintyGCI, c.UncertaintyModel().Kind())
}

// fixedModel is a caller-defined model reporting a constant estimate.
type fixedModel struct {
	value  float64
	params *Parameters
	keys   []string
}

func (m *fixedModel) Kind() ModelKind                            { return ModelKind(100) }
func (m *fixedModel) Evaluate(string, float64) (float64, error) { return m.value, nil }
func (m *fixedModel) EvaluateAll(_ string, hs []float64) ([]float64, error) {
	out := make([]float64, len(hs))
	for i := range out {
		out[i] = m.value
	}

	return out, nil
}

func (m *fixedModel) FEst() map[string]float64 {
	out := make(map[string]float64, len(m.keys))
	for _, k := range m.keys {
		out[k] = m.value
	}

	return out
}

func (m *fixedModel) Order() map[string][]float64 {
	out := make(map[string][]float64, len(m.keys))
	for _, k := range m.keys {
		out[k] = []float64{2}
	}

	return out
}

func (m *fixedModel) Parameters() *Parameters { return m.params }

func TestCustomCallerModel(t *testing.T) {
	require := require.New(t)

	factory := func(a *Analysis) (Model, error) {
		keys := a.Keys()
		cols := make(map[string][]float64, len(keys))
		for _, k := range keys {
			cols[k] = []float64{1}
		}
		params, err := NewParameters([]string{ParamFEst}, keys, cols)
		if err != nil {
			return nil, err
		}

		return &fixedModel{value: 1, params: params, keys: keys}, nil
	}

	a, err := NewCustom(newSeries(t, []float64{1, 2}, []float64{1.5, 3}), WithModel(factory))
	require.NoError(err)
	require.Equal("unknown", a.Model().Kind().String())

	got, err := a.Errors(key)
	require.NoError(err)
	require.Equal([]float64{0.5, 2}, got)

	// GCI with p = 2 and r = 2: 1.25*1.5/3 for both levels, times 4 for the coarsest.
	us, err := a.Uncertainties(key)
	require.NoError(err)
	require.InDelta(0.625, us[0], 1e-12)
	require.InDelta(2.5, us[1], 1e-12)

	_, err = NewParameters([]string{"a"}, []string{"x"}, map[string][]float64{"x": {1, 2}})
	require.ErrorIs(err, errs.ErrLengthMismatch)
	_, err = NewParameters([]string{"a"}, []string{"x"}, nil)
	require.ErrorIs(err, errs.ErrUnknownKey)
}

func TestModelFactoryFailurePropagates(t *testing.T) {
	s := newSeries(t, []float64{1, 2}, []float64{1, 2})
	_, err := NewCustom(s, WithErrorModel(func(*Analysis) (ErrorModel, error) {
		return nil, errs.ErrInvalidOption
	}))
	require.ErrorIs(t, err, errs.ErrInvalidOption)
}
