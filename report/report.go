// Package report turns a solved analysis into a flat, immutable Report that
// can be exported as CSV, printed as a summary table or archived with the
// snapshot package.
package report

import (
	"fmt"
	"math"
	"slices"

	"github.com/arloliu/gridverify/discretization"
	"github.com/arloliu/gridverify/errs"
)

// Response holds every per-level result of one response quantity.
type Response struct {
	Key    string
	Values []float64
	FEst   float64
	Order  []float64
	// Params holds the fitted parameters in Report.ParamNames order.
	Params        []float64
	Errors        []float64
	Uncertainties []float64
	// ErrorFailure and UncertaintyFailure record why Errors or Uncertainties
	// could not be computed. The matching slice is then all NaN.
	ErrorFailure       string
	UncertaintyFailure string
}

// Report is a snapshot of an analysis taken through its read accessors.
type Report struct {
	Name             string
	Preset           string
	Model            string
	ErrorModel       string
	UncertaintyModel string
	SizeKey          string
	Sizes            []float64
	ParamNames       []string
	Responses        []Response
}

// New builds a Report from a. Uncertainty options are forwarded to every
// uncertainty query. Per-response error or uncertainty failures, such as GCI
// on a zero-order model, are recorded in the Response instead of failing.
func New(name string, a *discretization.Analysis, opts ...discretization.UncertaintyOption) (*Report, error) {
	if a == nil {
		return nil, errs.ErrEmptySeries
	}

	params := a.Parameters()
	r := &Report{
		Name:             name,
		Preset:           a.Preset().String(),
		Model:            a.Model().Kind().String(),
		ErrorModel:       a.ErrorModel().Kind().String(),
		UncertaintyModel: a.UncertaintyModel().Kind().String(),
		SizeKey:          a.SizeKey(),
		Sizes:            a.Sizes(),
		ParamNames:       params.Names(),
	}

	for _, key := range a.Keys() {
		values, err := a.Response(key)
		if err != nil {
			return nil, err
		}
		fEst, err := a.FEstOf(key)
		if err != nil {
			return nil, err
		}
		order, err := a.OrderOf(key)
		if err != nil {
			return nil, err
		}
		col, err := params.Column(key)
		if err != nil {
			return nil, err
		}

		resp := Response{
			Key:    key,
			Values: values,
			FEst:   fEst,
			Order:  order,
			Params: col,
		}

		if resp.Errors, err = a.Errors(key); err != nil {
			resp.Errors = nanSlice(len(values))
			resp.ErrorFailure = err.Error()
		}
		if resp.Uncertainties, err = a.Uncertainties(key, opts...); err != nil {
			resp.Uncertainties = nanSlice(len(values))
			resp.UncertaintyFailure = err.Error()
		}

		r.Responses = append(r.Responses, resp)
	}

	return r, nil
}

// Len returns the number of discretization levels.
func (r *Report) Len() int {
	return len(r.Sizes)
}

// Keys returns the response keys in report order.
func (r *Report) Keys() []string {
	keys := make([]string, len(r.Responses))
	for i := range r.Responses {
		keys[i] = r.Responses[i].Key
	}

	return keys
}

// Response returns the response named key.
func (r *Report) Response(key string) (*Response, error) {
	i := slices.IndexFunc(r.Responses, func(resp Response) bool { return resp.Key == key })
	if i < 0 {
		return nil, fmt.Errorf("%w: %q", errs.ErrUnknownKey, key)
	}

	return &r.Responses[i], nil
}

// Param returns the parameter name of resp.
func (r *Report) Param(resp *Response, name string) (float64, error) {
	i := slices.Index(r.ParamNames, name)
	if i < 0 || i >= len(resp.Params) {
		return 0, fmt.Errorf("%w: parameter %q", errs.ErrUnknownKey, name)
	}

	return resp.Params[i], nil
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}

	return out
}
