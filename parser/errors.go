package parser

import (
	"fmt"

	"github.com/cornucopia-rs/cornucopia-go/position"
)

// UnexpectedTokenError is raised when the scanner finds a character that
// cannot start (or continue) the grammar production it's inside.
type UnexpectedTokenError struct {
	Path string
	Pos  position.Position
	Want string
	Got  string
}

func (e *UnexpectedTokenError) Error() string {
	return fmt.Sprintf("%s:%s: unexpected token: want %s, got %q", e.Path, e.Pos, e.Want, e.Got)
}

// UnterminatedQueryError is raised when a query's SQL body runs off the
// end of the file without a closing ';'.
type UnterminatedQueryError struct {
	Path string
	Pos  position.Position
	Name string
}

func (e *UnterminatedQueryError) Error() string {
	return fmt.Sprintf("%s:%s: query %q is missing its terminating ';'", e.Path, e.Pos, e.Name)
}

// BadMetadataFormError is raised when a query's metadata header matches
// neither the Extended nor the PgCompatible grammar.
type BadMetadataFormError struct {
	Path string
	Pos  position.Position
	Name string
	Why  string
}

func (e *BadMetadataFormError) Error() string {
	return fmt.Sprintf("%s:%s: query %q has a malformed metadata header: %s", e.Path, e.Pos, e.Name, e.Why)
}
