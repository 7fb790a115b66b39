package heat

import (
	"errors"
	"fmt"
)

// Domain errors for solve operations.
var (
	// ErrInvalidArgument indicates malformed solver input. Nothing is mutated.
	ErrInvalidArgument = errors.New("heat: invalid argument")

	// ErrNotConverged indicates the sweep budget ran out above tolerance.
	// The kernel never returns it; see [Result.Err].
	ErrNotConverged = errors.New("heat: residual above tolerance after sweep budget")
)

// ArgumentError wraps ErrInvalidArgument with the offending argument.
type ArgumentError struct {
	Arg    string
	Reason string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("%v: %s %s", ErrInvalidArgument, e.Arg, e.Reason)
}

func (e *ArgumentError) Unwrap() error {
	return ErrInvalidArgument
}

func invalid(arg, format string, args ...any) error {
	return &ArgumentError{Arg: arg, Reason: fmt.Sprintf(format, args...)}
}
