package cornucopia

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cornucopia-rs/cornucopia-go/position"
)

// Sentinel errors for the taxonomy in the spec's error handling design.
// Each typed error below implements Is so errors.Is(err, ErrX) works
// through wrapping. The error types of the stage packages (parser,
// validate, prepare, pgtype, ir) have no sentinels and no Is method;
// match those with errors.As.
var (
	// ErrIO covers directory walks and file reads that fail before any
	// query is even parsed. Fatal: nothing downstream can proceed.
	ErrIO = errors.New("cornucopia: io error")

	// ErrEmitterFormat is returned by an external [Emitter] when it
	// cannot render a [Preparation]. Fatal.
	ErrEmitterFormat = errors.New("cornucopia: emitter format error")
)

// IOError wraps a failure reading the queries directory or a query file.
type IOError struct {
	Op    string // "read_dir", "read_file"
	Path  string
	Cause error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("cornucopia: %s %q: %v", e.Op, e.Path, e.Cause)
}

func (e *IOError) Unwrap() error { return e.Cause }

func (e *IOError) Is(target error) bool { return target == ErrIO }

// NewIOError constructs an IOError.
func NewIOError(op, path string, cause error) *IOError {
	return &IOError{Op: op, Path: path, Cause: cause}
}

// EmitterFormatError is the error an [Emitter] returns when it fails to
// render a query's output.
type EmitterFormatError struct {
	Query string
	Cause error
}

func (e *EmitterFormatError) Error() string {
	return fmt.Sprintf("cornucopia: emitter: query %q: %v", e.Query, e.Cause)
}

func (e *EmitterFormatError) Unwrap() error { return e.Cause }

func (e *EmitterFormatError) Is(target error) bool { return target == ErrEmitterFormat }

// NewEmitterFormatError constructs an EmitterFormatError.
func NewEmitterFormatError(query string, cause error) *EmitterFormatError {
	return &EmitterFormatError{Query: query, Cause: cause}
}

// diagnosable is implemented by the prepare package's per-query error
// types, giving Compile a name-agnostic way to build a Diagnostic
// without a type switch over every concrete prepare error.
type diagnosable interface {
	DiagnosticInfo() (query, path string, pos position.Position)
}

// Diagnostic is a single per-query failure surfaced to the user. It is
// the shape every prepare-stage error (database, duplicate-column,
// nullable-reference, count-mismatch, incompatible-struct,
// unsupported-type) is converted to before being reported, per the
// spec's external error output contract. Parse and validation errors are
// not converted: [Report] keeps them in Structural and prints them via
// their own Error().
type Diagnostic struct {
	Query string
	Path  string
	Pos   position.Position
	Err   error
}

// String renders the diagnostic exactly as the spec's external interface
// requires: `Error while preparing query "NAME" [file: "PATH", line: L] (DETAIL)`.
func (d Diagnostic) String() string {
	return fmt.Sprintf("Error while preparing query %q [file: %q, line: %d] (%v)",
		d.Query, d.Path, d.Pos.Line, d.Err)
}

// Diagnostics is a collected run of per-query failures. A non-empty
// Diagnostics means the compile run failed, but every query that could
// be processed still was — per-query errors never abort the whole run.
type Diagnostics []Diagnostic

func (ds Diagnostics) Error() string {
	if len(ds) == 0 {
		return "cornucopia: no diagnostics"
	}
	lines := make([]string, len(ds))
	for i, d := range ds {
		lines[i] = d.String()
	}
	return strings.Join(lines, "\n")
}

// HasErrors reports whether any diagnostics were collected.
func (ds Diagnostics) HasErrors() bool { return len(ds) > 0 }
