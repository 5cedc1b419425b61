// Package syncerr defines the error taxonomy shared across the
// synchronization core (loop filter, interpolator, frame detector, timing
// corrector, CFO estimator, Costas loop).
package syncerr

import "errors"

var (
	// ErrInvalidConfig covers preamble-length parity violations, thresholds
	// outside [0,1], out-of-range Zadoff-Chu parameters, payload lengths not
	// divisible by the chunk size, and unknown detector modes.
	ErrInvalidConfig = errors.New("syncerr: invalid configuration")

	// ErrInsufficientData is returned when the timing corrector is asked to
	// emit a symbol but fewer than two unprocessed samples remain.
	ErrInsufficientData = errors.New("syncerr: insufficient data")

	// ErrUsageError is returned when Correct is called on a CoarseCfoEstimator
	// before a CFO estimate has been produced.
	ErrUsageError = errors.New("syncerr: usage error")
)
