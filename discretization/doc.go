// Package discretization estimates discretization error and uncertainty of
// simulation results computed at several resolutions.
//
// An Analysis composes three pluggable model families over a series.Series:
//
//   - a discretization Model, solved once per response, that extrapolates the
//     response to zero discretization size (SinglePower, FirstAndSecondOrder,
//     AverageValue, FinestValue, MaximumValue, MinimumValue)
//   - an ErrorModel giving the error of each level (EstimatedError, RelativeError)
//   - an UncertaintyModel giving the uncertainty of each level (GCI, StudentsT,
//     FactorOfSafety)
//
// Two presets cover the common cases:
//
//	s, _ := series.New([]float64{1, 2, 4}, []float64{10, 10.5, 12})
//
//	a, err := discretization.NewClassic(s) // SinglePower + EstimatedError + GCI
//	a, err := discretization.NewAverage(s) // AverageValue + EstimatedError + StudentsT
//
// Any other combination, including caller-defined models, is built with NewCustom:
//
//	a, err := discretization.NewCustom(s,
//	    discretization.WithModel(discretization.NewFinestValue),
//	    discretization.WithErrorModel(discretization.NewRelativeError),
//	    discretization.WithUncertaintyModel(discretization.NewFactorOfSafety),
//	)
//
// The model is solved during construction, so all errors surface from the
// constructor. Afterwards an Analysis is read-only.
package discretization
