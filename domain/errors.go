package domain

import "errors"

// ErrInvalid is returned when a Domain cannot be constructed from the
// given values
var ErrInvalid = errors.New("invalid domain")
