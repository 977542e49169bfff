package discretization

import (
	"fmt"
	"slices"

	"github.com/arloliu/gridverify/errs"
)

// Parameters is the table of fitted values keyed by parameter name and
// response key. It is filled once while a model is solved and is read-only
// afterwards.
type Parameters struct {
	names  []string
	keys   []string
	values map[string]map[string]float64
}

func newParameters(names, keys []string) *Parameters {
	p := &Parameters{
		names:  slices.Clone(names),
		keys:   slices.Clone(keys),
		values: make(map[string]map[string]float64, len(names)),
	}
	for _, name := range names {
		p.values[name] = make(map[string]float64, len(keys))
	}

	return p
}

// NewParameters builds a table from one column per response key, each holding
// the parameters in names order. It is meant for Model implementations outside
// this package.
func NewParameters(names, keys []string, columns map[string][]float64) (*Parameters, error) {
	p := newParameters(names, keys)
	for _, key := range keys {
		col, ok := columns[key]
		if !ok {
			return nil, fmt.Errorf("%w: no parameters for %q", errs.ErrUnknownKey, key)
		}
		if len(col) != len(names) {
			return nil, fmt.Errorf("%w: %q has %d parameters for %d names",
				errs.ErrLengthMismatch, key, len(col), len(names))
		}
		for i, name := range names {
			p.set(name, key, col[i])
		}
	}

	return p, nil
}

func (p *Parameters) set(name, key string, v float64) {
	p.values[name][key] = v
}

// Names returns the parameter names in model order, e.g. f_est, alpha, p.
func (p *Parameters) Names() []string {
	return slices.Clone(p.names)
}

// Keys returns the response keys in series order.
func (p *Parameters) Keys() []string {
	return slices.Clone(p.keys)
}

// Get returns one parameter of one response.
func (p *Parameters) Get(name, key string) (float64, error) {
	row, ok := p.values[name]
	if !ok {
		return 0, fmt.Errorf("%w: parameter %q", errs.ErrUnknownKey, name)
	}
	v, ok := row[key]
	if !ok {
		return 0, fmt.Errorf("%w: %q", errs.ErrUnknownKey, key)
	}

	return v, nil
}

// Column returns all parameters of one response in Names order.
func (p *Parameters) Column(key string) ([]float64, error) {
	if !slices.Contains(p.keys, key) {
		return nil, fmt.Errorf("%w: %q", errs.ErrUnknownKey, key)
	}

	out := make([]float64, len(p.names))
	for i, name := range p.names {
		out[i] = p.values[name][key]
	}

	return out, nil
}

// Row returns one parameter for every response in Keys order.
func (p *Parameters) Row(name string) ([]float64, error) {
	row, ok := p.values[name]
	if !ok {
		return nil, fmt.Errorf("%w: parameter %q", errs.ErrUnknownKey, name)
	}

	out := make([]float64, len(p.keys))
	for i, key := range p.keys {
		out[i] = row[key]
	}

	return out, nil
}
