package fit

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// RSquared calculates the coefficient of determination (R²).
//
// R² measures the proportion of variance in the observed values that is
// explained by the model. A value of 1 indicates a perfect fit.
//
// Formula: R² = 1 - (SS_res / SS_tot)
//
// Parameters:
//   - observed: Measured response values
//   - predicted: Model values at the same abscissas
//
// Returns:
//   - float64: R² value, or 1 for a perfect fit of constant data and 0 for
//     any other fit of constant data
func RSquared(observed, predicted []float64) float64 {
	if len(observed) == 0 {
		return 0
	}

	mean := stat.Mean(observed, nil)
	ssTot := 0.0
	ssRes := 0.0

	for i := range observed {
		ssTot += (observed[i] - mean) * (observed[i] - mean)
		ssRes += (observed[i] - predicted[i]) * (observed[i] - predicted[i])
	}

	if ssTot == 0 {
		if ssRes == 0 {
			return 1
		}

		return 0
	}

	return 1.0 - (ssRes / ssTot)
}

// RMSE calculates the root mean square error.
//
// Formula: RMSE = √(Σ(observed - predicted)² / n)
//
// Parameters:
//   - observed: Measured response values
//   - predicted: Model values at the same abscissas
//
// Returns:
//   - float64: RMSE in the units of the response (lower is better)
func RMSE(observed, predicted []float64) float64 {
	if len(observed) == 0 {
		return 0
	}

	sumSq := 0.0
	for i := range observed {
		diff := observed[i] - predicted[i]
		sumSq += diff * diff
	}

	return math.Sqrt(sumSq / float64(len(observed)))
}
