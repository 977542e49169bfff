// Package series holds the validated input of a solution-verification study:
// discretization sizes (grid spacing, cell size or time step) sorted from the
// finest to the coarsest level, one or more named response quantities computed
// at those levels, and the refinement ratios between adjacent levels.
//
// A Series can be built from paired slices, a keyed mapping, a table with a
// designated size column, or loosely typed values decoded from a study file:
//
//	s, err := series.New([]float64{1, 2, 4}, []float64{10, 10.5, 12})
//
//	s, err := series.FromRecords(map[string][]float64{
//	    "hs":   {4, 2, 1},
//	    "drag": {12, 10.5, 10},
//	}, "hs")
//
// Every constructor produces the same canonical representation. Rows are
// sorted by size with a single permutation applied to all responses, and the
// result is immutable.
package series
