package partial

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidName     = errors.New("partial: invalid region name")
	ErrInvalidMode     = errors.New("partial: invalid merge mode")
	ErrDuplicateRegion = errors.New("partial: duplicate region name")
	ErrMalformedMarker = errors.New("partial: malformed region marker")
)

// DuplicateError reports a region name declared twice in one render.
// The later declaration wins unless strict names are enabled.
type DuplicateError struct {
	Name string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("partial: region %q declared more than once; the last declaration wins", e.Name)
}

func (e *DuplicateError) Unwrap() error {
	return ErrDuplicateRegion
}
