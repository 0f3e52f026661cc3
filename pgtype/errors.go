package pgtype

import "fmt"

// UnsupportedPostgresTypeError fires for any catalog type outside the
// closed set the registrar knows how to canonicalize: ranges, pseudo
// types, or an array/domain whose base could not itself be registered.
type UnsupportedPostgresTypeError struct {
	Schema string
	Name   string
	Kind   string
}

func (e *UnsupportedPostgresTypeError) Error() string {
	return fmt.Sprintf("unsupported postgres type %s.%s (kind=%s)", e.Schema, e.Name, e.Kind)
}
