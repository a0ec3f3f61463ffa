package expreplay

import (
	"errors"
	"fmt"
)

var (
	errEmptyBuffer         = errors.New("buffer is empty")
	errInsufficientSamples = errors.New("buffer has insufficient " +
		"samples to sample")
)

// ExpReplayError describes an error that occurred during an operation
// on an ExperienceReplayer
type ExpReplayError struct {
	Op  string
	Err error
}

func (e *ExpReplayError) Error() string {
	return fmt.Sprintf("%v: %v", e.Op, e.Err)
}

func (e *ExpReplayError) Unwrap() error {
	return e.Err
}

// IsEmptyBuffer returns whether err was caused by sampling from an
// empty buffer
func IsEmptyBuffer(err error) bool {
	return errors.Is(err, errEmptyBuffer)
}

// IsInsufficientSamples returns whether err was caused by sampling
// from a buffer that has not yet reached its minimum capacity
func IsInsufficientSamples(err error) bool {
	return errors.Is(err, errInsufficientSamples)
}
