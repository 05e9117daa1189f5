package patch

import (
	"errors"
	"fmt"
)

var (
	ErrNilDocument      = errors.New("patch: nil document")
	ErrNilEnvelope      = errors.New("patch: nil envelope")
	ErrMissingRegion    = errors.New("patch: region not in document")
	ErrUnbalancedRegion = errors.New("patch: unbalanced region markers")
	ErrInvalidFragment  = errors.New("patch: invalid region content")
	ErrMalformedPayload = errors.New("patch: malformed partial payload")
	ErrStaleBuild       = errors.New("patch: build id mismatch")
	ErrUnexpectedStatus = errors.New("patch: unexpected response status")
	ErrSuperseded       = errors.New("patch: navigation superseded")
	ErrMount            = errors.New("patch: island mount failed")
)

// RegionError ties an error to a region name.
type RegionError struct {
	Name string
	Err  error
}

func (e *RegionError) Error() string {
	return fmt.Sprintf("region %q: %v", e.Name, e.Err)
}

func (e *RegionError) Unwrap() error {
	return e.Err
}
