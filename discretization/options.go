package discretization

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/arloliu/gridverify/errs"
	"github.com/arloliu/gridverify/internal/options"
)

// Config holds the composition and tunables of an Analysis.
type Config struct {
	// Logger receives fit diagnostics. Nil selects the default logger.
	Logger *slog.Logger
	// OrderLimits bounds the observed order of SinglePower fits.
	OrderLimits []float64
	// MaxIterations limits each curve fit; zero keeps the solver default.
	MaxIterations int
	// Model, Error and Uncertainty build the model triad.
	Model       ModelFactory
	Error       ErrorFactory
	Uncertainty UncertaintyFactory
	// UncertaintyDefaults are applied before per-call uncertainty options.
	UncertaintyDefaults []UncertaintyOption
}

// Option is a functional option for Config.
type Option = options.Option[*Config]

func defaultConfig() Config {
	return Config{
		OrderLimits: []float64{0, math.Inf(1)},
		Model:       NewSinglePower,
		Error:       NewEstimatedError,
		Uncertainty: NewGCI,
	}
}

// WithLogger sets the logger used for fit diagnostics and degenerate-covariance warnings.
func WithLogger(logger *slog.Logger) Option {
	return options.NoError(func(c *Config) {
		c.Logger = logger
	})
}

// WithOrderLimits bounds the observed order p of SinglePower fits. limits must
// hold exactly two values with limits[0] < limits[1]; either may be infinite.
func WithOrderLimits(limits []float64) Option {
	return options.New(func(c *Config) error {
		if len(limits) != 2 {
			return fmt.Errorf("%w: got %d values", errs.ErrInvalidBounds, len(limits))
		}
		if math.IsNaN(limits[0]) || math.IsNaN(limits[1]) || !(limits[0] < limits[1]) {
			return fmt.Errorf("%w: got [%v, %v]", errs.ErrInvalidBounds, limits[0], limits[1])
		}
		c.OrderLimits = []float64{limits[0], limits[1]}

		return nil
	})
}

// WithMaxIterations limits the iterations of each curve fit.
func WithMaxIterations(n int) Option {
	return options.New(func(c *Config) error {
		if n <= 0 {
			return fmt.Errorf("%w: max iterations must be positive, got %d", errs.ErrInvalidOption, n)
		}
		c.MaxIterations = n

		return nil
	})
}

// WithModel selects the discretization model of a custom analysis.
func WithModel(f ModelFactory) Option {
	return options.New(func(c *Config) error {
		if f == nil {
			return fmt.Errorf("%w: nil model factory", errs.ErrInvalidOption)
		}
		c.Model = f

		return nil
	})
}

// WithErrorModel selects the error model of a custom analysis.
func WithErrorModel(f ErrorFactory) Option {
	return options.New(func(c *Config) error {
		if f == nil {
			return fmt.Errorf("%w: nil error model factory", errs.ErrInvalidOption)
		}
		c.Error = f

		return nil
	})
}

// WithUncertaintyModel selects the uncertainty model of a custom analysis.
func WithUncertaintyModel(f UncertaintyFactory) Option {
	return options.New(func(c *Config) error {
		if f == nil {
			return fmt.Errorf("%w: nil uncertainty model factory", errs.ErrInvalidOption)
		}
		c.Uncertainty = f

		return nil
	})
}

// WithUncertaintyDefaults sets uncertainty options applied to every
// uncertainty query of the analysis before the per-call options.
func WithUncertaintyDefaults(opts ...UncertaintyOption) Option {
	return options.New(func(c *Config) error {
		probe := DefaultUncertaintyConfig()
		if err := options.Apply(&probe, opts...); err != nil {
			return err
		}
		c.UncertaintyDefaults = append(c.UncertaintyDefaults, opts...)

		return nil
	})
}
