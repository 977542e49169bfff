package series

import (
	"fmt"
	"math"
	"slices"

	"github.com/arloliu/gridverify/errs"
)

const (
	// DefaultSizeKey is the size column name used when the caller does not name one.
	DefaultSizeKey = "hs"
	// DefaultResponseName names a single response supplied without a key.
	DefaultResponseName = "System Response Quantity"
)

// Column is a named, ordered sequence of response values.
type Column struct {
	Name   string
	Values []float64
}

// Series is a validated set of discretization levels sorted from the finest
// (smallest size) to the coarsest, with one or more response quantities.
//
// A Series is immutable after construction. Every accessor returns a copy.
type Series struct {
	sizeKey   string
	sizes     []float64
	keys      []string
	responses map[string][]float64
	ratios    []float64
}

// build validates the raw columns, sorts all rows by size and computes the refinement ratios.
func build(sizeKey string, sizes []float64, cols []Column) (*Series, error) {
	if len(sizes) == 0 {
		return nil, errs.ErrEmptySeries
	}
	if len(cols) == 0 {
		return nil, errs.ErrNoResponses
	}
	if sizeKey == "" {
		sizeKey = DefaultSizeKey
	}

	for i, h := range sizes {
		if h <= 0 || math.IsNaN(h) || math.IsInf(h, 0) {
			return nil, fmt.Errorf("%w: level %d has size %v", errs.ErrInvalidSize, i, h)
		}
	}

	seen := make(map[string]struct{}, len(cols))
	for _, col := range cols {
		if col.Name == sizeKey {
			return nil, fmt.Errorf("%w: %q is also the size key", errs.ErrDuplicateKey, col.Name)
		}
		if _, dup := seen[col.Name]; dup {
			return nil, fmt.Errorf("%w: %q", errs.ErrDuplicateKey, col.Name)
		}
		seen[col.Name] = struct{}{}

		if len(col.Values) != len(sizes) {
			return nil, fmt.Errorf("%w: %q has %d values for %d sizes",
				errs.ErrLengthMismatch, col.Name, len(col.Values), len(sizes))
		}
		for i, v := range col.Values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: %q level %d is %v", errs.ErrNonFiniteValue, col.Name, i, v)
			}
		}
	}

	// Sort a row permutation and apply it to every column.
	perm := make([]int, len(sizes))
	for i := range perm {
		perm[i] = i
	}
	slices.SortStableFunc(perm, func(a, b int) int {
		switch {
		case sizes[a] < sizes[b]:
			return -1
		case sizes[a] > sizes[b]:
			return 1
		default:
			return 0
		}
	})

	s := &Series{
		sizeKey:   sizeKey,
		sizes:     make([]float64, len(sizes)),
		keys:      make([]string, 0, len(cols)),
		responses: make(map[string][]float64, len(cols)),
	}
	for i, p := range perm {
		s.sizes[i] = sizes[p]
	}
	for i := 1; i < len(s.sizes); i++ {
		if s.sizes[i] == s.sizes[i-1] {
			return nil, fmt.Errorf("%w: %v", errs.ErrDuplicateSize, s.sizes[i])
		}
	}

	for _, col := range cols {
		values := make([]float64, len(perm))
		for i, p := range perm {
			values[i] = col.Values[p]
		}
		s.keys = append(s.keys, col.Name)
		s.responses[col.Name] = values
	}

	s.ratios = make([]float64, 0, len(s.sizes)-1)
	for i := 0; i+1 < len(s.sizes); i++ {
		s.ratios = append(s.ratios, s.sizes[i+1]/s.sizes[i])
	}

	return s, nil
}

// Len returns the number of discretization levels.
func (s *Series) Len() int {
	return len(s.sizes)
}

// SizeKey returns the name of the size column.
func (s *Series) SizeKey() string {
	return s.sizeKey
}

// Sizes returns the discretization sizes in ascending order.
func (s *Series) Sizes() []float64 {
	return slices.Clone(s.sizes)
}

// Size returns the discretization size at level i.
func (s *Series) Size(i int) (float64, error) {
	if i < 0 || i >= len(s.sizes) {
		return 0, fmt.Errorf("%w: %d not in [0, %d)", errs.ErrIndexOutOfRange, i, len(s.sizes))
	}

	return s.sizes[i], nil
}

// Keys returns the response quantity names in their canonical order.
func (s *Series) Keys() []string {
	return slices.Clone(s.keys)
}

// Has reports whether key names a response quantity in the series.
func (s *Series) Has(key string) bool {
	_, ok := s.responses[key]
	return ok
}

// Response returns the values of one response quantity ordered like Sizes.
func (s *Series) Response(key string) ([]float64, error) {
	values, ok := s.responses[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", errs.ErrUnknownKey, key)
	}

	return slices.Clone(values), nil
}

// Value returns the response value of key at level i.
func (s *Series) Value(key string, i int) (float64, error) {
	values, ok := s.responses[key]
	if !ok {
		return 0, fmt.Errorf("%w: %q", errs.ErrUnknownKey, key)
	}
	if i < 0 || i >= len(values) {
		return 0, fmt.Errorf("%w: %d not in [0, %d)", errs.ErrIndexOutOfRange, i, len(values))
	}

	return values[i], nil
}

// Responses returns a copy of all response columns keyed by name.
func (s *Series) Responses() map[string][]float64 {
	out := make(map[string][]float64, len(s.responses))
	for k, v := range s.responses {
		out[k] = slices.Clone(v)
	}

	return out
}

// RefinementRatios returns the N-1 ratios sizes[i+1]/sizes[i].
func (s *Series) RefinementRatios() []float64 {
	return slices.Clone(s.ratios)
}

// Ratio returns the refinement ratio assigned to level i.
//
// Levels 0..N-2 use the ratio to the next coarser level. The coarsest level
// reuses the ratio of the adjacent pair, ratio[N-2].
func (s *Series) Ratio(i int) (float64, error) {
	n := len(s.sizes)
	if n < 2 {
		return 0, fmt.Errorf("%w: refinement ratio needs 2 levels, have %d", errs.ErrInsufficientLevels, n)
	}
	if i < 0 || i >= n {
		return 0, fmt.Errorf("%w: %d not in [0, %d)", errs.ErrIndexOutOfRange, i, n)
	}
	if i == n-1 {
		return s.ratios[n-2], nil
	}

	return s.ratios[i], nil
}

// String returns a short description of the series.
func (s *Series) String() string {
	return fmt.Sprintf("Series{%s: %d levels, responses: %v}", s.sizeKey, len(s.sizes), s.keys)
}
