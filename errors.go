package jxl

import "github.com/pkg/errors"

// newSentinel creates a base error value for use with errors.Is, following
// the error-wrapping convention pkg/errors is used for throughout this
// module (every component boundary wraps with errors.Wrap/Wrapf so the
// originating call site is preserved in the chain).
func newSentinel(msg string) error {
	return errors.New(msg)
}

// Error taxonomy (spec.md §7). Each sentinel is compared with errors.Is;
// wrapping preserves the call-site chain down to the orchestrator boundary.
var (
	// ErrInvalidOptions covers quality/effort out of range, inconsistent
	// animation config, ROI outside the image.
	ErrInvalidOptions = newSentinel("jxl: invalid options")

	// ErrInvalidFrame covers zero dimension, dimension overflow, bad
	// channel count, mismatched frame dimensions in an animation, or an
	// unsupported bit depth.
	ErrInvalidFrame = newSentinel("jxl: invalid frame")

	// ErrBitstreamFull is returned when a bounded bitstream writer runs
	// out of room.
	ErrBitstreamFull = newSentinel("jxl: bitstream capacity exceeded")

	// ErrAlphabetViolation is returned when the entropy coder is handed a
	// symbol outside its declared alphabet.
	ErrAlphabetViolation = newSentinel("jxl: symbol outside entropy alphabet")

	// ErrInternalInvariant indicates a post-condition of a pipeline stage
	// failed; this is always a codec bug, never malformed user input.
	ErrInternalInvariant = newSentinel("jxl: internal invariant violated")
)

// InvalidOptionsError wraps ErrInvalidOptions with a specific sub-kind, as
// named by spec.md §6 ("Orchestrator exit status on invalid input:
// InvalidOptions with a specific sub-kind").
type InvalidOptionsError struct {
	Subkind string
	Cause   error
}

func (e *InvalidOptionsError) Error() string {
	if e.Cause != nil {
		return "jxl: invalid options (" + e.Subkind + "): " + e.Cause.Error()
	}
	return "jxl: invalid options (" + e.Subkind + ")"
}

func (e *InvalidOptionsError) Unwrap() error { return ErrInvalidOptions }

func invalidOptions(subkind string) error {
	return errors.WithStack(&InvalidOptionsError{Subkind: subkind})
}

// InvalidFrameError wraps ErrInvalidFrame with a specific sub-kind.
type InvalidFrameError struct {
	Subkind string
}

func (e *InvalidFrameError) Error() string {
	return "jxl: invalid frame (" + e.Subkind + ")"
}

func (e *InvalidFrameError) Unwrap() error { return ErrInvalidFrame }

func invalidFrame(subkind string) error {
	return errors.WithStack(&InvalidFrameError{Subkind: subkind})
}
