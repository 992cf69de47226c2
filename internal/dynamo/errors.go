package dynamo

import "errors"

// Domain errors for cloth construction and stepping.
var (
	// ErrInvalidTopology indicates bad grid dimensions or spring endpoints.
	ErrInvalidTopology = errors.New("dynamo: invalid topology")

	// ErrInvalidParams indicates a physical constant outside its valid range.
	ErrInvalidParams = errors.New("dynamo: invalid parameters")

	// ErrInvalidStep indicates a negative or non-finite time step.
	ErrInvalidStep = errors.New("dynamo: invalid time step")

	// ErrInvalidState indicates a NaN or Inf coordinate.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrUnknownName indicates an unregistered integrator, force model or policy.
	ErrUnknownName = errors.New("dynamo: unknown name")
)
