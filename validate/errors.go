package validate

import (
	"fmt"

	"github.com/cornucopia-rs/cornucopia-go/position"
)

// Namespace records which slot of a query (params or row) a
// TypeAnnotation reference was used in, for error reporting. It does not
// select a lookup table: a module's annotations share one name table, so
// a declared name resolves from either slot and a params annotation and
// a row annotation cannot share a name.
type Namespace string

const (
	NamespaceParams Namespace = "params"
	NamespaceRow    Namespace = "row"
)

// DuplicateQueryNameError fires when two queries in the same module
// share a name.
type DuplicateQueryNameError struct {
	Path string
	Name string
	Pos  position.Position
}

func (e *DuplicateQueryNameError) Error() string {
	return fmt.Sprintf("%s:%s: query name %q is already declared in this module", e.Path, e.Pos, e.Name)
}

// DuplicateTypeNameError fires when two TypeAnnotation declarations in
// the same module share a name.
type DuplicateTypeNameError struct {
	Path string
	Name string
	Pos  position.Position
}

func (e *DuplicateTypeNameError) Error() string {
	return fmt.Sprintf("%s:%s: type annotation %q is already declared in this module", e.Path, e.Pos, e.Name)
}

// UnknownNamedStructError fires when a Named(X) descriptor references a
// TypeAnnotation that was never declared.
type UnknownNamedStructError struct {
	Path      string
	Query     string
	Name      string
	Namespace Namespace
	Pos       position.Position
}

func (e *UnknownNamedStructError) Error() string {
	return fmt.Sprintf("%s:%s: query %q references undeclared %s type %q", e.Path, e.Pos, e.Query, e.Namespace, e.Name)
}

// DuplicateBindParamError fires when a query's bind-parameter list
// names the same identifier twice. The parser itself already collapses
// repeated `:ident` mentions onto a single `$N`, so this only triggers
// against hand-built Query values that bypass the parser.
type DuplicateBindParamError struct {
	Path  string
	Query string
	Name  string
	Pos   position.Position
}

func (e *DuplicateBindParamError) Error() string {
	return fmt.Sprintf("%s:%s: query %q lists bind parameter %q more than once", e.Path, e.Pos, e.Query, e.Name)
}
