package spellingbee

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks input that violates a precondition. The run state
	// is never changed by a rejected operation.
	ErrValidation = errors.New("invalid request")
	ErrNotFound   = errors.New("not found")
	ErrLoadFailed = errors.New("loading competition failed")

	// ErrWrongPhase is the ErrValidation raised when an operation arrives in
	// a phase that does not accept it.
	ErrWrongPhase = fmt.Errorf("%w: wrong phase", ErrValidation)
)
