package discretization

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/arloliu/gridverify/errs"
	"github.com/arloliu/gridverify/internal/options"
)

const (
	// DefaultSafetyFactor is the GCI factor of safety.
	DefaultSafetyFactor = 1.25
	// DefaultSignificance is the two-sided significance of the Student's t interval.
	DefaultSignificance = 0.05
	// DefaultFactor is the multiplier applied by FactorOfSafety.
	DefaultFactor = 3.0
)

// UncertaintyConfig holds the tunables of the uncertainty models. Each model
// reads only the fields it uses.
type UncertaintyConfig struct {
	SafetyFactor float64
	Normalize    bool
	Significance float64
	Factor       float64
}

// UncertaintyOption is a functional option for UncertaintyConfig.
type UncertaintyOption = options.Option[*UncertaintyConfig]

// DefaultUncertaintyConfig returns the default tunables.
func DefaultUncertaintyConfig() UncertaintyConfig {
	return UncertaintyConfig{
		SafetyFactor: DefaultSafetyFactor,
		Significance: DefaultSignificance,
		Factor:       DefaultFactor,
	}
}

// WithSafetyFactor sets the GCI factor of safety. It must be positive and finite.
func WithSafetyFactor(fs float64) UncertaintyOption {
	return options.Check(fs, positive("safety factor"), func(c *UncertaintyConfig, v float64) {
		c.SafetyFactor = v
	})
}

// WithNormalize makes GCI report values relative to the response at each level.
func WithNormalize(normalize bool) UncertaintyOption {
	return options.NoError(func(c *UncertaintyConfig) {
		c.Normalize = normalize
	})
}

// WithSignificance sets the two-sided significance of the Student's t
// interval. It must lie in (0, 1).
func WithSignificance(s float64) UncertaintyOption {
	return options.Check(s, func(v float64) error {
		if !(v > 0 && v < 1) {
			return fmt.Errorf("%w: significance must be in (0, 1), got %v", errs.ErrInvalidOption, v)
		}

		return nil
	}, func(c *UncertaintyConfig, v float64) {
		c.Significance = v
	})
}

// WithFactor sets the FactorOfSafety multiplier. It must be positive and finite.
func WithFactor(f float64) UncertaintyOption {
	return options.Check(f, positive("factor"), func(c *UncertaintyConfig, v float64) {
		c.Factor = v
	})
}

func positive(name string) func(float64) error {
	return func(v float64) error {
		if !(v > 0) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s must be positive and finite, got %v", errs.ErrInvalidOption, name, v)
		}

		return nil
	}
}

// UncertaintyModel computes the discretization uncertainty of each level.
type UncertaintyModel interface {
	Kind() UncertaintyKind
	// Uncertainty returns the uncertainty of key at level index.
	Uncertainty(key string, index int, opts ...UncertaintyOption) (float64, error)
	// Uncertainties returns the uncertainty of key at every level, finest first.
	Uncertainties(key string, opts ...UncertaintyOption) ([]float64, error)
}

// UncertaintyFactory builds an UncertaintyModel for an analysis whose
// discretization and error models are already in place.
type UncertaintyFactory func(a *Analysis) (UncertaintyModel, error)

// UncertaintyFactoryOf returns the built-in factory for kind.
func UncertaintyFactoryOf(kind UncertaintyKind) (UncertaintyFactory, error) {
	switch kind {
	case UncertaintyGCI:
		return NewGCI, nil
	case UncertaintyStudentsT:
		return NewStudentsT, nil
	case UncertaintyFactorOfSafety:
		return NewFactorOfSafety, nil
	default:
		return nil, fmt.Errorf("%w: uncertainty kind %d", errs.ErrUnknownModel, int(kind))
	}
}

// uncertaintyConfig applies the analysis defaults and then opts.
func (a *Analysis) uncertaintyConfig(opts []UncertaintyOption) (UncertaintyConfig, error) {
	cfg := DefaultUncertaintyConfig()
	if err := options.Apply(&cfg, a.cfg.UncertaintyDefaults...); err != nil {
		return UncertaintyConfig{}, err
	}
	if err := options.Apply(&cfg, opts...); err != nil {
		return UncertaintyConfig{}, err
	}

	return cfg, nil
}

// uncertainties evaluates one for every level.
func uncertainties(a *Analysis, one func(index int) (float64, error)) ([]float64, error) {
	out := make([]float64, a.Len())
	for i := range out {
		v, err := one(i)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}

	return out, nil
}

// GCI is Roache's Grid Convergence Index:
//
//	GCI_i = Fs*|e_i| / (r_i^p - 1)
//
// where e_i is the relative error and r_i the refinement ratio to the next
// coarser level. The coarsest level uses the coarse-grid form
// r^p*Fs*|e|/(r^p - 1) with the ratio of the last pair. Values are absolute
// unless WithNormalize(true) divides them by the response at each level.
type GCI struct {
	a *Analysis
}

// NewGCI returns a GCI model bound to a.
func NewGCI(a *Analysis) (UncertaintyModel, error) {
	return &GCI{a: a}, nil
}

// Kind returns UncertaintyGCI.
func (g *GCI) Kind() UncertaintyKind {
	return UncertaintyGCI
}

// Uncertainty returns the GCI of key at level index. It fails with
// errs.ErrUnsupportedOrder when the model reports more than one order term and
// with errs.ErrDegenerateOrder when r^p equals one.
func (g *GCI) Uncertainty(key string, index int, opts ...UncertaintyOption) (float64, error) {
	cfg, err := g.a.uncertaintyConfig(opts)
	if err != nil {
		return 0, err
	}

	return g.at(key, index, cfg)
}

// Uncertainties returns the GCI of key at every level.
func (g *GCI) Uncertainties(key string, opts ...UncertaintyOption) ([]float64, error) {
	cfg, err := g.a.uncertaintyConfig(opts)
	if err != nil {
		return nil, err
	}

	return uncertainties(g.a, func(i int) (float64, error) {
		return g.at(key, i, cfg)
	})
}

func (g *GCI) at(key string, index int, cfg UncertaintyConfig) (float64, error) {
	order, err := g.a.OrderOf(key)
	if err != nil {
		return 0, err
	}
	if len(order) != 1 {
		return 0, fmt.Errorf("%w: GCI needs a single order for %q, have %d terms",
			errs.ErrUnsupportedOrder, key, len(order))
	}

	absErr, err := g.a.AbsRelativeError(key, index)
	if err != nil {
		return 0, err
	}
	r, err := g.a.data.Ratio(index)
	if err != nil {
		return 0, err
	}

	rp := math.Pow(r, order[0])
	if rp == 1 {
		return 0, fmt.Errorf("%w: r=%v, p=%v for %q", errs.ErrDegenerateOrder, r, order[0], key)
	}

	gci := cfg.SafetyFactor * absErr / (rp - 1)
	if index == g.a.Len()-1 {
		gci *= rp
	}

	if cfg.Normalize {
		v, err := g.a.data.Value(key, index)
		if err != nil {
			return 0, err
		}
		gci /= v
	}

	return gci, nil
}

// StudentsT is a two-sided Student's t confidence half-width of the spread of
// the response over all levels:
//
//	U = t(N-1, 1 - s/2) * std / sqrt(N)
//
// with the sample standard deviation std. The value is identical for every level.
type StudentsT struct {
	a *Analysis
}

// NewStudentsT returns a StudentsT model bound to a.
func NewStudentsT(a *Analysis) (UncertaintyModel, error) {
	return &StudentsT{a: a}, nil
}

// Kind returns UncertaintyStudentsT.
func (s *StudentsT) Kind() UncertaintyKind {
	return UncertaintyStudentsT
}

// Uncertainty returns the interval half-width of key. The index is only validated.
func (s *StudentsT) Uncertainty(key string, index int, opts ...UncertaintyOption) (float64, error) {
	if index < 0 || index >= s.a.Len() {
		return 0, fmt.Errorf("%w: %d not in [0, %d)", errs.ErrIndexOutOfRange, index, s.a.Len())
	}
	cfg, err := s.a.uncertaintyConfig(opts)
	if err != nil {
		return 0, err
	}

	return s.halfWidth(key, cfg)
}

// Uncertainties returns the interval half-width of key repeated for every level.
func (s *StudentsT) Uncertainties(key string, opts ...UncertaintyOption) ([]float64, error) {
	cfg, err := s.a.uncertaintyConfig(opts)
	if err != nil {
		return nil, err
	}
	u, err := s.halfWidth(key, cfg)
	if err != nil {
		return nil, err
	}

	out := make([]float64, s.a.Len())
	for i := range out {
		out[i] = u
	}

	return out, nil
}

func (s *StudentsT) halfWidth(key string, cfg UncertaintyConfig) (float64, error) {
	values, err := s.a.Response(key)
	if err != nil {
		return 0, err
	}
	n := len(values)
	if n < 2 {
		return 0, fmt.Errorf("%w: Student's t needs 2 levels, have %d", errs.ErrInsufficientLevels, n)
	}

	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 1)}.Quantile(1 - cfg.Significance/2)

	return t * stat.StdDev(values, nil) / math.Sqrt(float64(n)), nil
}

// FactorOfSafety scales the absolute error of the analysis error model by a
// constant factor: U_i = factor * |e_i|.
type FactorOfSafety struct {
	a *Analysis
}

// NewFactorOfSafety returns a FactorOfSafety model bound to a.
func NewFactorOfSafety(a *Analysis) (UncertaintyModel, error) {
	return &FactorOfSafety{a: a}, nil
}

// Kind returns UncertaintyFactorOfSafety.
func (f *FactorOfSafety) Kind() UncertaintyKind {
	return UncertaintyFactorOfSafety
}

// Uncertainty returns factor*|error| of key at level index.
func (f *FactorOfSafety) Uncertainty(key string, index int, opts ...UncertaintyOption) (float64, error) {
	cfg, err := f.a.uncertaintyConfig(opts)
	if err != nil {
		return 0, err
	}
	e, err := f.a.Error(key, index)
	if err != nil {
		return 0, err
	}

	return cfg.Factor * math.Abs(e), nil
}

// Uncertainties returns factor*|error| of key at every level.
func (f *FactorOfSafety) Uncertainties(key string, opts ...UncertaintyOption) ([]float64, error) {
	cfg, err := f.a.uncertaintyConfig(opts)
	if err != nil {
		return nil, err
	}
	values, err := f.a.Errors(key)
	if err != nil {
		return nil, err
	}
	for i, e := range values {
		values[i] = cfg.Factor * math.Abs(e)
	}

	return values, nil
}
