package parser

import "github.com/cornucopia-rs/cornucopia-go/position"

// TypeAnnotationField is one `name: type` (or `name: type?`) entry in a
// declared type annotation.
type TypeAnnotationField struct {
	Name     position.Parsed[string]
	Type     position.Parsed[string]
	Nullable bool
}

// TypeAnnotation is a user-declared row/params shape: `Name(field: type?, …)`.
type TypeAnnotation struct {
	Name   position.Parsed[string]
	Fields []TypeAnnotationField
}

// Descriptor is the closed sum for a query's params/row shape:
// either Implicit (a list of nullable idents applied to an
// auto-derived struct) or Named (a reference to a declared
// TypeAnnotation).
type Descriptor interface {
	descriptorMarker()
}

// ImplicitDescriptor names the nullable columns/parameters to apply to
// the anonymous struct auto-derived from the query.
type ImplicitDescriptor struct {
	Nullable []position.Parsed[string]
}

func (ImplicitDescriptor) descriptorMarker() {}

// NamedDescriptor references a declared TypeAnnotation by name.
type NamedDescriptor struct {
	Name position.Parsed[string]
}

func (NamedDescriptor) descriptorMarker() {}

// QueryKind distinguishes the two metadata header forms.
type QueryKind int

const (
	// Extended is the primary style: separate descriptors for params and row.
	Extended QueryKind = iota
	// PgCompatible is the legacy style: flat param-name list plus a flat
	// nullable-column list.
	PgCompatible
)

// Query is one parsed query: its metadata header plus the raw SQL body.
type Query struct {
	Name position.Parsed[string]
	Kind QueryKind

	// Extended fields.
	Params Descriptor
	Row    Descriptor

	// PgCompatible fields.
	PgParamNames      []position.Parsed[string]
	PgNullableColumns []position.Parsed[string]

	// SQL is the query body with every `:ident` bind-parameter rewritten
	// to its `$N` positional placeholder, whitespace otherwise preserved
	// verbatim. BindParams lists the identifiers in first-mention order,
	// which is the order that defines their `$N` numbering.
	SQL        string
	BindParams []position.Parsed[string]
	Pos        position.Position
}

// ParsedModule is one query file's parse result: the declared type
// annotations (a single list; nothing marks an annotation as params or
// row, and the validator resolves both slots against it) plus the
// queries in file order.
type ParsedModule struct {
	Path        string
	Name        string
	Annotations []TypeAnnotation
	Queries     []Query
}
