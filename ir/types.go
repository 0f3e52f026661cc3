// Package ir assembles the per-module interning structures (rows,
// params, queries, each an insertion-order-preserving map keyed by
// name) into the final Preparation the emitter consumes.
package ir

import (
	"github.com/cornucopia-rs/cornucopia-go/internal/orderedmap"
	"github.com/cornucopia-rs/cornucopia-go/pgtype"
)

// PreparedField is one parameter or column: its name, registered type,
// and nullability. InnerNullable applies only when Type is an Array
// and always reports false today — the grammar has no per-field
// composite/array-element nullability syntax yet.
type PreparedField struct {
	Name          string
	Type          pgtype.Type
	Nullable      bool
	InnerNullable bool
}

// PreparedQuery is one query's prepared shape: its parameter fields
// plus, if it has a row, the interned row's index and the column
// permutation that maps the row's canonical (sorted) field order back
// to this query's wire column order.
type PreparedQuery struct {
	Name   string
	Params []PreparedField
	HasRow bool
	RowIdx int
	ColIdx []int
	SQL    string
}

// PreparedStruct is an interned row or params shape. Fields are stored
// sorted by name (the canonical order used for equality). Queries is
// only populated for params structs — the back-edge rows don't need
// because the reverse edge lives on PreparedQuery.
type PreparedStruct struct {
	Name    string
	Fields  []PreparedField
	IsCopy  bool
	Queries []int
}

// PreparedType is a registered Custom (enum or composite) type, ready
// for the emitter to generate a definition for. Its fields keep
// database-declared order, never sorted, because composite wire format
// is positional.
type PreparedType struct {
	Name       string
	StructName string
	Content    pgtype.CustomContent
	IsCopy     bool
	IsParams   bool
}

// PreparedModule is one query file's fully prepared output.
type PreparedModule struct {
	Path    string
	Name    string
	Queries *orderedmap.Map[PreparedQuery]
	Rows    *orderedmap.Map[PreparedStruct]
	Params  *orderedmap.Map[PreparedStruct]
}

// Preparation is the final IR handed to the emitter: modules sorted by
// name, and every Custom type the registrar produced, bucketed by
// schema in registration order.
type Preparation struct {
	Modules []PreparedModule
	Types   map[string][]PreparedType
}
