package tool

import (
	"errors"
	"fmt"
)

// ErrUnknownTool is returned by Dispatch for a name not in the registry.
var ErrUnknownTool = errors.New("unknown tool")

// ArgErrorKind classifies schema validation failures.
type ArgErrorKind int

const (
	// MissingField means a required argument was absent.
	MissingField ArgErrorKind = iota
	// BadType means an argument had the wrong JSON type.
	BadType
)

// ArgError reports a schema validation failure for one argument. The
// handler never runs when one is returned.
type ArgError struct {
	Field string
	Kind  ArgErrorKind
	Want  string
}

func (e *ArgError) Error() string {
	switch e.Kind {
	case MissingField:
		return fmt.Sprintf("missing required field %q", e.Field)
	case BadType:
		return fmt.Sprintf("field %q must be a %s", e.Field, e.Want)
	}
	return fmt.Sprintf("invalid field %q", e.Field)
}
