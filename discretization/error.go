package discretization

import (
	"fmt"

	"github.com/arloliu/gridverify/errs"
)

// ErrorModel computes the discretization error of each level.
type ErrorModel interface {
	Kind() ErrorKind
	// Error returns the error of key at level index.
	Error(key string, index int) (float64, error)
	// Errors returns the error of key at every level, finest first.
	Errors(key string) ([]float64, error)
}

// ErrorFactory builds an ErrorModel for an analysis whose discretization
// model is already solved.
type ErrorFactory func(a *Analysis) (ErrorModel, error)

// ErrorFactoryOf returns the built-in factory for kind.
func ErrorFactoryOf(kind ErrorKind) (ErrorFactory, error) {
	switch kind {
	case ErrorEstimated:
		return NewEstimatedError, nil
	case ErrorRelative:
		return NewRelativeError, nil
	default:
		return nil, fmt.Errorf("%w: error kind %d", errs.ErrUnknownModel, int(kind))
	}
}

// EstimatedError is the difference between each level and the extrapolated
// estimate: e_i = f_i - f_est.
type EstimatedError struct {
	a *Analysis
}

// NewEstimatedError returns an EstimatedError bound to a.
func NewEstimatedError(a *Analysis) (ErrorModel, error) {
	return &EstimatedError{a: a}, nil
}

// Kind returns ErrorEstimated.
func (e *EstimatedError) Kind() ErrorKind {
	return ErrorEstimated
}

// Error returns f_index - f_est for key.
func (e *EstimatedError) Error(key string, index int) (float64, error) {
	fEst, err := e.a.FEstOf(key)
	if err != nil {
		return 0, err
	}
	v, err := e.a.data.Value(key, index)
	if err != nil {
		return 0, err
	}

	return v - fEst, nil
}

// Errors returns f_i - f_est for every level of key.
func (e *EstimatedError) Errors(key string) ([]float64, error) {
	fEst, err := e.a.FEstOf(key)
	if err != nil {
		return nil, err
	}
	values, err := e.a.Response(key)
	if err != nil {
		return nil, err
	}
	for i := range values {
		values[i] -= fEst
	}

	return values, nil
}

// RelativeError is the difference between each level and the next coarser
// one. The coarsest level repeats the error of the pair before it.
type RelativeError struct {
	a *Analysis
}

// NewRelativeError returns a RelativeError bound to a.
func NewRelativeError(a *Analysis) (ErrorModel, error) {
	return &RelativeError{a: a}, nil
}

// Kind returns ErrorRelative.
func (e *RelativeError) Kind() ErrorKind {
	return ErrorRelative
}

// Error returns the relative error of key at level index.
func (e *RelativeError) Error(key string, index int) (float64, error) {
	return e.a.RelativeError(key, index)
}

// Errors returns the relative error of key at every level.
func (e *RelativeError) Errors(key string) ([]float64, error) {
	return e.a.RelativeErrors(key)
}

// relativeErrors computes f_i - f_{i+1}, with the last entry equal to f_{N-2} - f_{N-1}.
func relativeErrors(values []float64) ([]float64, error) {
	n := len(values)
	if n < 2 {
		return nil, fmt.Errorf("%w: relative error needs 2 levels, have %d", errs.ErrInsufficientLevels, n)
	}

	out := make([]float64, n)
	for i := 0; i+1 < n; i++ {
		out[i] = values[i] - values[i+1]
	}
	out[n-1] = out[n-2]

	return out, nil
}
