package discretization

import (
	"fmt"
	"slices"
	"strings"

	"github.com/arloliu/gridverify/errs"
)

// ModelKind identifies a discretization model.
type ModelKind int

const (
	// ModelSinglePower fits f(h) = f0 + alpha*h^p.
	ModelSinglePower ModelKind = iota
	// ModelFirstAndSecondOrder fits f(h) = f0 + alpha_1*h + alpha_2*h².
	ModelFirstAndSecondOrder
	// ModelAverageValue estimates f0 as the mean of all levels.
	ModelAverageValue
	// ModelFinestValue estimates f0 as the value at the finest level.
	ModelFinestValue
	// ModelMaximumValue estimates f0 as the largest value.
	ModelMaximumValue
	// ModelMinimumValue estimates f0 as the smallest value.
	ModelMinimumValue
)

var modelKindNames = map[ModelKind]string{
	ModelSinglePower:         "single_power",
	ModelFirstAndSecondOrder: "first_and_second_order",
	ModelAverageValue:        "average",
	ModelFinestValue:         "finest",
	ModelMaximumValue:        "maximum",
	ModelMinimumValue:        "minimum",
}

// String returns the configuration name of the model kind.
func (k ModelKind) String() string {
	if name, ok := modelKindNames[k]; ok {
		return name
	}

	return "unknown"
}

// ErrorKind identifies an error model.
type ErrorKind int

const (
	// ErrorEstimated measures data against the extrapolated estimate.
	ErrorEstimated ErrorKind = iota
	// ErrorRelative measures data against the next coarser level.
	ErrorRelative
)

var errorKindNames = map[ErrorKind]string{
	ErrorEstimated: "estimated",
	ErrorRelative:  "relative",
}

// String returns the configuration name of the error kind.
func (k ErrorKind) String() string {
	if name, ok := errorKindNames[k]; ok {
		return name
	}

	return "unknown"
}

// UncertaintyKind identifies an uncertainty model.
type UncertaintyKind int

const (
	// UncertaintyGCI is the Grid Convergence Index.
	UncertaintyGCI UncertaintyKind = iota
	// UncertaintyStudentsT is a Student's t confidence interval on the level spread.
	UncertaintyStudentsT
	// UncertaintyFactorOfSafety scales the absolute error by a constant factor.
	UncertaintyFactorOfSafety
)

var uncertaintyKindNames = map[UncertaintyKind]string{
	UncertaintyGCI:            "gci",
	UncertaintyStudentsT:      "students_t",
	UncertaintyFactorOfSafety: "factor_of_safety",
}

// String returns the configuration name of the uncertainty kind.
func (k UncertaintyKind) String() string {
	if name, ok := uncertaintyKindNames[k]; ok {
		return name
	}

	return "unknown"
}

// ParseModelKind resolves a case-insensitive model name such as "single_power".
func ParseModelKind(name string) (ModelKind, error) {
	return parseKind(name, modelKindNames, "model")
}

// ParseErrorKind resolves a case-insensitive error model name such as "estimated".
func ParseErrorKind(name string) (ErrorKind, error) {
	return parseKind(name, errorKindNames, "error model")
}

// ParseUncertaintyKind resolves a case-insensitive uncertainty model name such as "gci".
func ParseUncertaintyKind(name string) (UncertaintyKind, error) {
	return parseKind(name, uncertaintyKindNames, "uncertainty model")
}

// ModelKinds returns every model kind in declaration order.
func ModelKinds() []ModelKind {
	return sortedKinds(modelKindNames)
}

// ErrorKinds returns every error kind in declaration order.
func ErrorKinds() []ErrorKind {
	return sortedKinds(errorKindNames)
}

// UncertaintyKinds returns every uncertainty kind in declaration order.
func UncertaintyKinds() []UncertaintyKind {
	return sortedKinds(uncertaintyKindNames)
}

func sortedKinds[K ~int](names map[K]string) []K {
	kinds := make([]K, 0, len(names))
	for k := range names {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)

	return kinds
}

func parseKind[K ~int](name string, names map[K]string, what string) (K, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
	for k, n := range names {
		if n == normalized {
			return k, nil
		}
	}

	supported := make([]string, 0, len(names))
	for _, n := range names {
		supported = append(supported, n)
	}
	slices.Sort(supported)

	return K(-1), fmt.Errorf("%w: %s %q, supported: %s", errs.ErrUnknownModel, what, name, strings.Join(supported, ", "))
}
