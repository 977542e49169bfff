package discretization

import (
	"fmt"
	"log/slog"
	"maps"
	"math"
	"slices"
	"strings"

	"github.com/arloliu/gridverify/errs"
	"github.com/arloliu/gridverify/internal/logging"
	"github.com/arloliu/gridverify/internal/options"
	"github.com/arloliu/gridverify/series"
)

// Preset names a fixed composition of the model triad.
type Preset int

const (
	// PresetClassic is SinglePower + EstimatedError + GCI, consistent with ASME V&V 20.
	PresetClassic Preset = iota
	// PresetAverage is AverageValue + EstimatedError + StudentsT, for oscillatory data.
	PresetAverage
	// PresetCustom uses the triad chosen with WithModel, WithErrorModel and
	// WithUncertaintyModel. Unset members default to the Classic ones.
	PresetCustom
)

var presetNames = map[Preset]string{
	PresetClassic: "classic",
	PresetAverage: "average",
	PresetCustom:  "custom",
}

// String returns the configuration name of the preset.
func (p Preset) String() string {
	if name, ok := presetNames[p]; ok {
		return name
	}

	return "unknown"
}

// ParsePreset resolves a case-insensitive preset name.
func ParsePreset(name string) (Preset, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "classic", "":
		return PresetClassic, nil
	case "average":
		return PresetAverage, nil
	case "custom":
		return PresetCustom, nil
	default:
		return Preset(-1), fmt.Errorf("%w: preset %q, supported: average, classic, custom", errs.ErrUnknownModel, name)
	}
}

// Analysis composes a data series with a discretization model, an error model
// and an uncertainty model. The discretization model is solved during
// construction; afterwards the analysis is immutable and safe for concurrent
// reads.
type Analysis struct {
	preset      Preset
	cfg         Config
	logger      *slog.Logger
	data        *series.Series
	model       Model
	errModel    ErrorModel
	uncertainty UncertaintyModel
	fEst        map[string]float64
	order       map[string][]float64
}

// NewClassic builds a Classic analysis: SinglePower, EstimatedError and GCI.
// Model selection options are overridden by the preset.
func NewClassic(data *series.Series, opts ...Option) (*Analysis, error) {
	return New(PresetClassic, data, opts...)
}

// NewAverage builds an Average analysis: AverageValue, EstimatedError and
// StudentsT. Model selection options are overridden by the preset.
func NewAverage(data *series.Series, opts ...Option) (*Analysis, error) {
	return New(PresetAverage, data, opts...)
}

// NewCustom builds an analysis from the triad selected with WithModel,
// WithErrorModel and WithUncertaintyModel.
func NewCustom(data *series.Series, opts ...Option) (*Analysis, error) {
	return New(PresetCustom, data, opts...)
}

// New builds an analysis for preset.
//
// Construction order is fixed: the discretization model is built and solved,
// its estimates and orders are cached, then the error model and finally the
// uncertainty model are built. A failed fit of any response fails the whole
// construction.
func New(preset Preset, data *series.Series, opts ...Option) (*Analysis, error) {
	if data == nil {
		return nil, errs.ErrEmptySeries
	}

	cfg := defaultConfig()
	if err := options.Apply(&cfg, opts...); err != nil {
		return nil, err
	}

	switch preset {
	case PresetClassic:
		cfg.Model, cfg.Error, cfg.Uncertainty = NewSinglePower, NewEstimatedError, NewGCI
	case PresetAverage:
		cfg.Model, cfg.Error, cfg.Uncertainty = NewAverageValue, NewEstimatedError, NewStudentsT
	case PresetCustom:
	default:
		return nil, fmt.Errorf("%w: preset %d", errs.ErrUnknownModel, int(preset))
	}

	a := &Analysis{
		preset: preset,
		cfg:    cfg,
		logger: logging.Scoped(cfg.Logger, "discretization"),
		data:   data,
	}

	model, err := cfg.Model(a)
	if err != nil {
		return nil, err
	}
	a.model = model
	a.fEst = model.FEst()
	a.order = model.Order()

	if a.errModel, err = cfg.Error(a); err != nil {
		return nil, err
	}
	if a.uncertainty, err = cfg.Uncertainty(a); err != nil {
		return nil, err
	}

	a.logger.Debug("analysis solved",
		slog.String("preset", preset.String()),
		slog.String("model", model.Kind().String()),
		slog.Int("levels", data.Len()),
		slog.Int("responses", len(data.Keys())))

	return a, nil
}

// Preset returns the preset the analysis was built with.
func (a *Analysis) Preset() Preset {
	return a.preset
}

// Len returns the number of discretization levels.
func (a *Analysis) Len() int {
	return a.data.Len()
}

// Data returns the underlying series.
func (a *Analysis) Data() *series.Series {
	return a.data
}

// Sizes returns the discretization sizes, finest first.
func (a *Analysis) Sizes() []float64 {
	return a.data.Sizes()
}

// SizeKey returns the name of the size column.
func (a *Analysis) SizeKey() string {
	return a.data.SizeKey()
}

// Keys returns the response keys.
func (a *Analysis) Keys() []string {
	return a.data.Keys()
}

// Response returns the values of key, finest first.
func (a *Analysis) Response(key string) ([]float64, error) {
	return a.data.Response(key)
}

// RefinementRatios returns sizes[i+1]/sizes[i] for every adjacent pair.
func (a *Analysis) RefinementRatios() []float64 {
	return a.data.RefinementRatios()
}

// FEst returns the extrapolated estimate of every response.
func (a *Analysis) FEst() map[string]float64 {
	return maps.Clone(a.fEst)
}

// FEstOf returns the extrapolated estimate of key.
func (a *Analysis) FEstOf(key string) (float64, error) {
	v, ok := a.fEst[key]
	if !ok {
		return 0, fmt.Errorf("%w: %q", errs.ErrUnknownKey, key)
	}

	return v, nil
}

// Order returns the observed order of every response.
func (a *Analysis) Order() map[string][]float64 {
	out := make(map[string][]float64, len(a.order))
	for k, v := range a.order {
		out[k] = slices.Clone(v)
	}

	return out
}

// OrderOf returns the observed order of key.
func (a *Analysis) OrderOf(key string) ([]float64, error) {
	v, ok := a.order[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", errs.ErrUnknownKey, key)
	}

	return slices.Clone(v), nil
}

// Parameters returns the fitted parameter table.
func (a *Analysis) Parameters() *Parameters {
	return a.model.Parameters()
}

// Model returns the discretization model.
func (a *Analysis) Model() Model {
	return a.model
}

// ErrorModel returns the error model.
func (a *Analysis) ErrorModel() ErrorModel {
	return a.errModel
}

// UncertaintyModel returns the uncertainty model.
func (a *Analysis) UncertaintyModel() UncertaintyModel {
	return a.uncertainty
}

// Evaluate returns the modeled response of key at size h.
func (a *Analysis) Evaluate(key string, h float64) (float64, error) {
	return a.model.Evaluate(key, h)
}

// RelativeError returns f_index - f_{index+1} for key. The coarsest level
// returns the error of the last pair, f_{N-2} - f_{N-1}.
func (a *Analysis) RelativeError(key string, index int) (float64, error) {
	values, err := a.data.Response(key)
	if err != nil {
		return 0, err
	}
	n := len(values)
	if index < 0 || index >= n {
		return 0, fmt.Errorf("%w: %d not in [0, %d)", errs.ErrIndexOutOfRange, index, n)
	}
	if n < 2 {
		return 0, fmt.Errorf("%w: relative error needs 2 levels, have %d", errs.ErrInsufficientLevels, n)
	}
	if index == n-1 {
		index = n - 2
	}

	return values[index] - values[index+1], nil
}

// RelativeErrors returns the relative error of key at every level.
func (a *Analysis) RelativeErrors(key string) ([]float64, error) {
	values, err := a.data.Response(key)
	if err != nil {
		return nil, err
	}

	return relativeErrors(values)
}

// RelativeErrorsAll returns the relative errors of every response.
func (a *Analysis) RelativeErrorsAll() (map[string][]float64, error) {
	return a.all(a.RelativeErrors)
}

// AbsRelativeError returns |RelativeError(key, index)|.
func (a *Analysis) AbsRelativeError(key string, index int) (float64, error) {
	v, err := a.RelativeError(key, index)
	if err != nil {
		return 0, err
	}

	return math.Abs(v), nil
}

// AbsRelativeErrors returns the absolute relative error of key at every level.
func (a *Analysis) AbsRelativeErrors(key string) ([]float64, error) {
	values, err := a.RelativeErrors(key)
	if err != nil {
		return nil, err
	}
	for i, v := range values {
		values[i] = math.Abs(v)
	}

	return values, nil
}

// Error returns the error of key at level index from the error model.
func (a *Analysis) Error(key string, index int) (float64, error) {
	return a.errModel.Error(key, index)
}

// Errors returns the error of key at every level from the error model.
func (a *Analysis) Errors(key string) ([]float64, error) {
	return a.errModel.Errors(key)
}

// ErrorsAll returns the errors of every response.
func (a *Analysis) ErrorsAll() (map[string][]float64, error) {
	return a.all(a.errModel.Errors)
}

// Uncertainty returns the uncertainty of key at level index.
func (a *Analysis) Uncertainty(key string, index int, opts ...UncertaintyOption) (float64, error) {
	return a.uncertainty.Uncertainty(key, index, opts...)
}

// Uncertainties returns the uncertainty of key at every level.
func (a *Analysis) Uncertainties(key string, opts ...UncertaintyOption) ([]float64, error) {
	return a.uncertainty.Uncertainties(key, opts...)
}

// FitInfo returns curve-fit statistics of key when the model is a curve fit.
func (a *Analysis) FitInfo(key string) (FitInfo, bool) {
	r, ok := a.model.(FitReporter)
	if !ok {
		return FitInfo{}, false
	}

	return r.FitInfo(key)
}

// String returns a short description of the analysis.
func (a *Analysis) String() string {
	return fmt.Sprintf("Analysis{%s: model=%s, error=%s, uncertainty=%s, levels=%d, responses=%v}",
		a.preset, a.model.Kind(), a.errModel.Kind(), a.uncertainty.Kind(), a.Len(), a.Keys())
}

func (a *Analysis) all(fn func(key string) ([]float64, error)) (map[string][]float64, error) {
	keys := a.Keys()
	out := make(map[string][]float64, len(keys))
	for _, key := range keys {
		values, err := fn(key)
		if err != nil {
			return nil, err
		}
		out[key] = values
	}

	return out, nil
}
