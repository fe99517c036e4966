package cloth

import (
	"errors"
	"fmt"
)

// Construction errors. All of them are fatal: a system that fails to build or
// validate is never handed to the solver.
var (
	// ErrGridSize indicates a grid resolution that is even or too small.
	ErrGridSize = errors.New("cloth: grid size must be odd and at least 3")

	// ErrParameterBounds indicates a numeric parameter outside its valid range.
	ErrParameterBounds = errors.New("cloth: parameter out of valid bounds")

	// ErrSpringIndex indicates a spring endpoint that is not a valid particle.
	ErrSpringIndex = errors.New("cloth: spring references invalid particle")

	// ErrEmptySystem indicates a system without particles.
	ErrEmptySystem = errors.New("cloth: system has no particles")
)

// BuildError wraps a construction error with the operation that produced it.
type BuildError struct {
	Op     string
	Detail string
	Err    error
}

func (e *BuildError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %v (%s)", e.Op, e.Err, e.Detail)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}
