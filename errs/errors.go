// Package errs defines the sentinel errors returned by gridverify packages.
//
// Errors are wrapped with context using fmt.Errorf("%w: ...") so callers can
// classify failures with errors.Is:
//
//	a, err := discretization.NewClassic(data)
//	if errors.Is(err, errs.ErrFitNotConverged) {
//	    // numerical failure for one response quantity
//	}
package errs

import "errors"

// Configuration errors: malformed constructor arguments. These are returned
// synchronously and are never silently coerced.
var (
	// ErrEmptySeries is returned when no discretization levels are supplied.
	ErrEmptySeries = errors.New("no discretization levels provided")
	// ErrInvalidShape is returned when discretization sizes are not one dimensional.
	ErrInvalidShape = errors.New("discretization sizes must be one dimensional")
	// ErrMissingSizeKey is returned when the designated size column is absent.
	ErrMissingSizeKey = errors.New("size key not found")
	// ErrIncompatibleInput is returned when the response argument does not pair with the size argument.
	ErrIncompatibleInput = errors.New("incompatible input types")
	// ErrNoResponses is returned when no response quantity is present.
	ErrNoResponses = errors.New("at least one response quantity is required")
	// ErrLengthMismatch is returned when a response column length differs from the number of sizes.
	ErrLengthMismatch = errors.New("response length does not match number of sizes")
	// ErrInvalidSize is returned for non-positive or non-finite discretization sizes.
	ErrInvalidSize = errors.New("discretization size must be positive and finite")
	// ErrDuplicateSize is returned when two levels share the same discretization size.
	ErrDuplicateSize = errors.New("duplicate discretization size")
	// ErrNonFiniteValue is returned for NaN or infinite response values.
	ErrNonFiniteValue = errors.New("response value must be finite")
	// ErrDuplicateKey is returned when a response name is used twice.
	ErrDuplicateKey = errors.New("duplicate response key")
	// ErrUnknownKey is returned when a response key is not part of the data.
	ErrUnknownKey = errors.New("unknown response key")
	// ErrIndexOutOfRange is returned when a level index is outside [0, N).
	ErrIndexOutOfRange = errors.New("level index out of range")
	// ErrInsufficientLevels is returned when an operation needs more levels than available.
	ErrInsufficientLevels = errors.New("insufficient discretization levels")
	// ErrInvalidBounds is returned when order limits are not an ordered pair.
	ErrInvalidBounds = errors.New("order limits must be an ordered pair of two values")
	// ErrInvalidOption is returned for out-of-domain option values.
	ErrInvalidOption = errors.New("invalid option value")
	// ErrUnknownModel is returned when a model name cannot be resolved.
	ErrUnknownModel = errors.New("unknown model")
)

// Numerical errors.
var (
	// ErrFitNotConverged is returned when the nonlinear least-squares solver fails.
	ErrFitNotConverged = errors.New("curve fit did not converge")
	// ErrDegenerateOrder is returned when r^p equals one, which makes GCI undefined.
	ErrDegenerateOrder = errors.New("refinement ratio raised to observed order equals one")
	// ErrUnsupportedOrder is returned when an uncertainty model needs a scalar order.
	ErrUnsupportedOrder = errors.New("observed order is not a scalar")
)

// Snapshot errors.
var (
	// ErrInvalidHeaderSize is returned when the snapshot is shorter than its header.
	ErrInvalidHeaderSize = errors.New("invalid snapshot header size")
	// ErrInvalidMagic is returned when the header magic number does not match.
	ErrInvalidMagic = errors.New("invalid snapshot magic number")
	// ErrInvalidCompression is returned for an unknown compression type.
	ErrInvalidCompression = errors.New("invalid compression type")
	// ErrInvalidEncoding is returned for an unknown float column encoding.
	ErrInvalidEncoding = errors.New("invalid encoding type")
	// ErrChecksumMismatch is returned when the payload checksum does not match the header.
	ErrChecksumMismatch = errors.New("snapshot checksum mismatch")
	// ErrTruncatedPayload is returned when the payload ends before all sections are read.
	ErrTruncatedPayload = errors.New("truncated snapshot payload")
	// ErrHashCollision is returned when two response keys hash to the same ID.
	ErrHashCollision = errors.New("response key hash collision")
	// ErrTextTooLong is returned when a string exceeds the 65535 byte length prefix.
	ErrTextTooLong = errors.New("text exceeds maximum length")
	// ErrEmptyKey is returned when a response key to archive is empty.
	ErrEmptyKey = errors.New("response key must not be empty")
)
