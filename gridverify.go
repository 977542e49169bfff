// Package gridverify estimates the numerical error and uncertainty of a
// simulation result computed on a series of refined grids (solution
// verification).
//
// A discretization model is fitted to the response values as a function of
// the discretization size h. The fit gives the extrapolated value at h = 0
// and the observed order of convergence. An error model and an uncertainty
// model then quantify every level.
//
// # Core Features
//
//   - Six discretization models: single power, first and second order,
//     average, finest, maximum and minimum value
//   - Estimated and relative error models
//   - GCI, Student's t and factor of safety uncertainty models
//   - Classic (ASME V&V 20) and Average presets, or a custom triad
//   - CSV and table reports, convergence plots and compressed binary snapshots
//
// # Basic Usage
//
// Running the Classic preset on three grids:
//
//	import "github.com/arloliu/gridverify"
//
//	a, err := gridverify.Classic([]float64{1, 2, 4}, []float64{10.0, 10.5, 12.0})
//	if err != nil {
//	    return err
//	}
//	key := a.Keys()[0]
//	fEst, _ := a.FEstOf(key)         // 9.75
//	gci, _ := a.Uncertainty(key, 0)  // 0.3125
//
// Several responses are passed as a mapping, optionally together with the
// size column:
//
//	a, err := gridverify.Average(map[string]any{
//	    "dx":   []float64{0.1, 0.2, 0.4},
//	    "temp": []float64{305.2, 304.8, 306.1},
//	}, "dx")
//
// # Package Structure
//
// This package provides top-level wrappers over the series, discretization,
// report and snapshot packages for the most common use cases. Use those
// packages directly for full control.
package gridverify

import (
	"github.com/arloliu/gridverify/discretization"
	"github.com/arloliu/gridverify/internal/hash"
	"github.com/arloliu/gridverify/report"
	"github.com/arloliu/gridverify/series"
	"github.com/arloliu/gridverify/snapshot"
)

// Classic runs the Classic preset (SinglePower, EstimatedError, GCI).
//
// Parameters:
//   - sizes: Discretization sizes, or a mapping/table holding the size column
//   - responses: Response values, a mapping of name to values, or the size key
//     when sizes already holds every column (see series.Parse)
//   - opts: Analysis options such as discretization.WithOrderLimits
//
// Returns:
//   - *discretization.Analysis: Solved analysis
//   - error: Configuration or fit error
func Classic(sizes, responses any, opts ...discretization.Option) (*discretization.Analysis, error) {
	return New(discretization.PresetClassic, sizes, responses, opts...)
}

// Average runs the Average preset (AverageValue, EstimatedError, StudentsT).
func Average(sizes, responses any, opts ...discretization.Option) (*discretization.Analysis, error) {
	return New(discretization.PresetAverage, sizes, responses, opts...)
}

// Custom runs an analysis whose triad is chosen with discretization.WithModel,
// discretization.WithErrorModel and discretization.WithUncertaintyModel.
func Custom(sizes, responses any, opts ...discretization.Option) (*discretization.Analysis, error) {
	return New(discretization.PresetCustom, sizes, responses, opts...)
}

// New parses loosely typed input into a series and solves an analysis with
// the given preset.
func New(preset discretization.Preset, sizes, responses any, opts ...discretization.Option) (*discretization.Analysis, error) {
	data, err := series.Parse(sizes, responses)
	if err != nil {
		return nil, err
	}

	return discretization.New(preset, data, opts...)
}

// Archive captures a as a report named name and encodes it as a snapshot.
// Uncertainty failures are recorded in the archive rather than returned.
func Archive(name string, a *discretization.Analysis, opts ...snapshot.Option) ([]byte, error) {
	rep, err := report.New(name, a)
	if err != nil {
		return nil, err
	}

	return snapshot.Encode(rep, opts...)
}

// KeyID returns the hash under which a response key is indexed in snapshots.
func KeyID(key string) uint64 {
	return hash.ID(key)
}
