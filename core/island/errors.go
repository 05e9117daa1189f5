package island

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyType         = errors.New("island: empty component type")
	ErrInvalidProps      = errors.New("island: props are not JSON-serializable")
	ErrDuplicateIdentity = errors.New("island: duplicate identity in scope")
	ErrUnresolvedType    = errors.New("island: component type missing from manifest")
)

// DuplicateError reports two islands sharing one identity within a region scope.
// The later declaration is authoritative on the client.
type DuplicateError struct {
	Identity Identity
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("island: duplicate identity %s in one scope", e.Identity)
}

func (e *DuplicateError) Unwrap() error {
	return ErrDuplicateIdentity
}
