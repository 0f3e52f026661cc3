// Package prepare drives each validated query through a live
// connection: preparing its SQL, checking the duplicate-column and
// nullable-reference rules that can only be decided once the database
// has spoken, registering every parameter/column type, and interning
// the resulting row and params shapes into the module's IR.
package prepare

import (
	"fmt"

	"github.com/cornucopia-rs/cornucopia-go/position"
)

// DatabaseError wraps a failure from preparing or introspecting
// against the live connection.
type DatabaseError struct {
	Query string
	Path  string
	Pos   position.Position
	Cause error
}

func (e *DatabaseError) Error() string {
	return fmt.Sprintf("%s:%s: query %q: database error: %v", e.Path, e.Pos, e.Query, e.Cause)
}

func (e *DatabaseError) Unwrap() error { return e.Cause }

// DiagnosticInfo reports the fields cornucopia.Diagnostic needs to
// render this error in the external error-output format.
func (e *DatabaseError) DiagnosticInfo() (query, path string, pos position.Position) {
	return e.Query, e.Path, e.Pos
}

// DuplicateSqlColNameError fires when a query's SELECT projects two
// result columns under the same name.
type DuplicateSqlColNameError struct {
	Query string
	Path  string
	Pos   position.Position
	Name  string
}

func (e *DuplicateSqlColNameError) Error() string {
	return fmt.Sprintf("%s:%s: query %q: duplicate result column %q", e.Path, e.Pos, e.Query, e.Name)
}

func (e *DuplicateSqlColNameError) DiagnosticInfo() (query, path string, pos position.Position) {
	return e.Query, e.Path, e.Pos
}

// UnknownNullableColumnError fires when an Implicit/PgCompatible
// nullable-column reference names a column the prepared statement
// doesn't actually project.
type UnknownNullableColumnError struct {
	Query string
	Path  string
	Pos   position.Position
	Name  string
}

func (e *UnknownNullableColumnError) Error() string {
	return fmt.Sprintf("%s:%s: query %q: nullable reference %q does not name a result column", e.Path, e.Pos, e.Query, e.Name)
}

func (e *UnknownNullableColumnError) DiagnosticInfo() (query, path string, pos position.Position) {
	return e.Query, e.Path, e.Pos
}

// UnknownNullableParamError is the parameter-side counterpart of
// UnknownNullableColumnError: a nullable reference that doesn't name an
// actual bind parameter.
type UnknownNullableParamError struct {
	Query string
	Path  string
	Pos   position.Position
	Name  string
}

func (e *UnknownNullableParamError) Error() string {
	return fmt.Sprintf("%s:%s: query %q: nullable reference %q does not name a bind parameter", e.Path, e.Pos, e.Query, e.Name)
}

func (e *UnknownNullableParamError) DiagnosticInfo() (query, path string, pos position.Position) {
	return e.Query, e.Path, e.Pos
}

// ParamCountMismatchError fires when the number of parameters the
// prepared statement reports doesn't match the number the query's
// metadata header declared.
type ParamCountMismatchError struct {
	Query string
	Path  string
	Pos   position.Position
	Want  int
	Got   int
}

func (e *ParamCountMismatchError) Error() string {
	return fmt.Sprintf("%s:%s: query %q: declared %d parameter(s), prepared statement reports %d", e.Path, e.Pos, e.Query, e.Want, e.Got)
}

func (e *ParamCountMismatchError) DiagnosticInfo() (query, path string, pos position.Position) {
	return e.Query, e.Path, e.Pos
}

// FieldCountMismatchError fires when a Named(X) descriptor's declared
// field count doesn't match the prepared statement's column or
// parameter count.
type FieldCountMismatchError struct {
	Query     string
	Path      string
	Pos       position.Position
	Struct    string
	Namespace string
	Want      int
	Got       int
}

func (e *FieldCountMismatchError) Error() string {
	return fmt.Sprintf("%s:%s: query %q: %s type %q declares %d field(s), prepared statement reports %d", e.Path, e.Pos, e.Query, e.Namespace, e.Struct, e.Want, e.Got)
}

func (e *FieldCountMismatchError) DiagnosticInfo() (query, path string, pos position.Position) {
	return e.Query, e.Path, e.Pos
}

// NamedFieldUnresolvedError fires when a Named(X) descriptor declares a
// field that this particular query never actually binds (params) or
// projects (row). The same declared type can be reused across queries
// that reference its fields in different orders, so resolution is by
// name, not by declaration position.
type NamedFieldUnresolvedError struct {
	Query     string
	Path      string
	Pos       position.Position
	Struct    string
	Namespace string
	Field     string
}

func (e *NamedFieldUnresolvedError) Error() string {
	return fmt.Sprintf("%s:%s: query %q: %s type %q declares field %q, which this query does not %s", e.Path, e.Pos, e.Query, e.Namespace, e.Struct, e.Field, resolveVerb(e.Namespace))
}

func (e *NamedFieldUnresolvedError) DiagnosticInfo() (query, path string, pos position.Position) {
	return e.Query, e.Path, e.Pos
}

func resolveVerb(namespace string) string {
	if namespace == "params" {
		return "bind"
	}
	return "project"
}
