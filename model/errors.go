package model

import "errors"

var (
	// ErrUnknownVar is returned when a variable is looked up by a name
	// the model does not hold
	ErrUnknownVar = errors.New("unknown variable")

	// ErrShape is returned when a value does not match the shape of the
	// variable it is assigned to
	ErrShape = errors.New("shape mismatch")

	// ErrDuplicateVar is returned when a variable is declared twice
	ErrDuplicateVar = errors.New("duplicate variable")
)
