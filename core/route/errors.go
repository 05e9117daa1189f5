package route

import "errors"

var (
	ErrInvalidPattern   = errors.New("invalid route path pattern")
	ErrInvalidRegexp    = errors.New("invalid route path pattern regexp")
	ErrCatchAllPosition = errors.New("catch-all segment must be last")
	ErrDuplicateParam   = errors.New("duplicate parameter name")
	ErrInvalidPolicy    = errors.New("invalid trailing slash policy")
)
