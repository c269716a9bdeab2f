package fusion

import "errors"

var (
	// ErrMissingSubAdapter matches every *MissingSubAdapterError.
	ErrMissingSubAdapter = errors.New("missing sub-adapter")

	// ErrSequenceUnavailable is yielded when the sequence provider returned
	// nothing usable for a zipped region.
	ErrSequenceUnavailable = errors.New("sequence unavailable")
)

// Side names one of the two sub-adapters.
type Side string

const (
	SideSequence Side = "sequence"
	SideScore    Side = "score"
)

// MissingSubAdapterError reports which sub-adapter was never configured.
type MissingSubAdapterError struct {
	Side Side
}

func (e *MissingSubAdapterError) Error() string {
	return "missing " + string(e.Side) + " sub-adapter"
}

func (e *MissingSubAdapterError) Is(target error) bool {
	return target == ErrMissingSubAdapter
}

func missing(side Side) error { return &MissingSubAdapterError{Side: side} }
