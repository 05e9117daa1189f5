package fsroute

import (
	"errors"
	"fmt"
)

var (
	ErrConflict           = errors.New("fsroute: conflicting routes")
	ErrDefinitionMismatch = errors.New("fsroute: definition type does not match its namespace key")
	ErrInvalidDefinition  = errors.New("fsroute: invalid definition")
	ErrInvalidKey         = errors.New("fsroute: invalid namespace key")
	ErrUnknownSpecial     = errors.New("fsroute: unknown special file")
	ErrAppNotAtRoot       = errors.New("fsroute: _app is only allowed at the namespace root")
)

// ConflictError reports two routes resolving to the same URL pattern.
type ConflictError struct {
	Pattern string
	First   string
	Second  string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("fsroute: %s and %s both resolve to %s", e.First, e.Second, e.Pattern)
}

func (e *ConflictError) Unwrap() error {
	return ErrConflict
}

// SourceError attaches the namespace key to a build error.
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("fsroute: %s: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}
