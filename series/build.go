package series

import (
	"fmt"
	"slices"

	"github.com/arloliu/gridverify/errs"
	"github.com/arloliu/gridverify/internal/options"
)

// Config holds naming options applied while building a Series.
type Config struct {
	SizeKey      string
	ResponseName string
}

// Option is a functional option for Config.
type Option = options.Option[*Config]

// WithSizeKey names the size column. An empty name is rejected.
func WithSizeKey(name string) Option {
	return options.New(func(c *Config) error {
		if name == "" {
			return fmt.Errorf("%w: size key must not be empty", errs.ErrInvalidOption)
		}
		c.SizeKey = name

		return nil
	})
}

// WithResponseName names the response of a single-column series built by New.
func WithResponseName(name string) Option {
	return options.New(func(c *Config) error {
		if name == "" {
			return fmt.Errorf("%w: response name must not be empty", errs.ErrInvalidOption)
		}
		c.ResponseName = name

		return nil
	})
}

func newConfig(opts []Option) (Config, error) {
	cfg := Config{
		SizeKey:      DefaultSizeKey,
		ResponseName: DefaultResponseName,
	}
	if err := options.Apply(&cfg, opts...); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// New builds a Series from paired sizes and values of a single response quantity.
//
// Example:
//
//	s, err := series.New([]float64{4, 1, 2}, []float64{12.0, 10.0, 10.5})
//	// s.Sizes() == [1 2 4], response "System Response Quantity" == [10 10.5 12]
func New(sizes, values []float64, opts ...Option) (*Series, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	return build(cfg.SizeKey, sizes, []Column{{Name: cfg.ResponseName, Values: values}})
}

// FromColumns builds a Series from sizes and ordered, named response columns.
func FromColumns(sizes []float64, cols []Column, opts ...Option) (*Series, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	return build(cfg.SizeKey, sizes, cols)
}

// FromMap builds a Series from sizes and a mapping of response name to values.
// Response keys are ordered lexically since Go maps carry no order.
func FromMap(sizes []float64, responses map[string][]float64, opts ...Option) (*Series, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	return build(cfg.SizeKey, sizes, columnsFromMap(responses, ""))
}

// FromRecords builds a Series from one mapping holding both the size column and
// the response columns. An empty sizeKey selects DefaultSizeKey.
func FromRecords(records map[string][]float64, sizeKey string) (*Series, error) {
	if sizeKey == "" {
		sizeKey = DefaultSizeKey
	}
	sizes, ok := records[sizeKey]
	if !ok {
		return nil, fmt.Errorf("%w: %q not found in data for discretization levels", errs.ErrMissingSizeKey, sizeKey)
	}

	return build(sizeKey, sizes, columnsFromMap(records, sizeKey))
}

// FromTable builds a Series from a Table whose column sizeKey holds the
// discretization sizes. An empty sizeKey selects DefaultSizeKey.
func FromTable(t Table, sizeKey string) (*Series, error) {
	if sizeKey == "" {
		sizeKey = DefaultSizeKey
	}
	sizes, ok := t.Column(sizeKey)
	if !ok {
		return nil, fmt.Errorf("%w: %q not found in table for discretization levels", errs.ErrMissingSizeKey, sizeKey)
	}

	cols := make([]Column, 0, len(t))
	for _, col := range t {
		if col.Name == sizeKey {
			continue
		}
		cols = append(cols, col)
	}

	return build(sizeKey, sizes, cols)
}

// columnsFromMap converts a response mapping to columns in lexical key order,
// skipping the skip key.
func columnsFromMap(m map[string][]float64, skip string) []Column {
	keys := make([]string, 0, len(m))
	for k := range m {
		if k == skip {
			continue
		}
		keys = append(keys, k)
	}
	slices.Sort(keys)

	cols := make([]Column, 0, len(keys))
	for _, k := range keys {
		cols = append(cols, Column{Name: k, Values: m[k]})
	}

	return cols
}

// Table is an ordered collection of named columns, one of which holds sizes.
type Table []Column

// Column returns the values of the named column.
func (t Table) Column(name string) ([]float64, bool) {
	for _, col := range t {
		if col.Name == name {
			return col.Values, true
		}
	}

	return nil, false
}

// Names returns the column names in table order.
func (t Table) Names() []string {
	names := make([]string, len(t))
	for i, col := range t {
		names[i] = col.Name
	}

	return names
}
