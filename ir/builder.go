package ir

import (
	"sort"

	"github.com/cornucopia-rs/cornucopia-go/internal/orderedmap"
)

// ModuleBuilder accumulates one module's interned rows, params, and
// queries as the preparer walks its query list. Its zero value is not
// usable — construct with NewModuleBuilder.
type ModuleBuilder struct {
	path string
	name string

	queries *orderedmap.Map[PreparedQuery]
	rows    *orderedmap.Map[PreparedStruct]
	params  *orderedmap.Map[PreparedStruct]
}

func NewModuleBuilder(path, name string) *ModuleBuilder {
	return &ModuleBuilder{
		path:    path,
		name:    name,
		queries: orderedmap.New[PreparedQuery](),
		rows:    orderedmap.New[PreparedStruct](),
		params:  orderedmap.New[PreparedStruct](),
	}
}

func sortedByName(fields []PreparedField) []PreparedField {
	out := make([]PreparedField, len(fields))
	copy(out, fields)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func fieldsEqual(a, b []PreparedField) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Name != b[i].Name || a[i].Nullable != b[i].Nullable || a[i].InnerNullable != b[i].InnerNullable {
			return false
		}
		as, an := a[i].Type.SchemaName()
		bs, bn := b[i].Type.SchemaName()
		if as != bs || an != bn {
			return false
		}
	}
	return true
}

func indexOfFieldByName(fields []PreparedField, name string) int {
	for i, f := range fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

func allCopy(fields []PreparedField) bool {
	for _, f := range fields {
		if !f.Type.IsCopy() {
			return false
		}
	}
	return true
}

// AddRow interns a row shape per the row-interning contract: a new
// name is stored sorted by field name; an existing name must match
// structurally, and the returned permutation maps the stored (sorted)
// field order to this call's (wire) field order.
func (b *ModuleBuilder) AddRow(name string, fields []PreparedField) (int, []int, error) {
	sorted := sortedByName(fields)

	if idx, ok := b.rows.GetIndex(name); ok {
		existing := b.rows.At(idx)
		if !fieldsEqual(existing.Fields, sorted) {
			return 0, nil, &IncompatibleNamedStructError{Name: name, Prev: existing.Fields, New: sorted}
		}
		return idx, buildColIdx(existing.Fields, fields), nil
	}

	idx := b.rows.Append(name, PreparedStruct{Name: name, Fields: sorted, IsCopy: allCopy(sorted)})
	return idx, buildColIdx(sorted, fields), nil
}

// AddParams interns a params shape: symmetric to AddRow but appends
// queryIdx as a back-edge and never returns a permutation — callers
// bind params by name, not wire position.
func (b *ModuleBuilder) AddParams(name string, fields []PreparedField, queryIdx int) (int, error) {
	sorted := sortedByName(fields)

	if idx, ok := b.params.GetIndex(name); ok {
		existing := b.params.At(idx)
		if !fieldsEqual(existing.Fields, sorted) {
			return 0, &IncompatibleNamedStructError{Name: name, Prev: existing.Fields, New: sorted}
		}
		existing.Queries = append(existing.Queries, queryIdx)
		b.params.SetAt(idx, existing)
		return idx, nil
	}

	idx := b.params.Append(name, PreparedStruct{Name: name, Fields: sorted, IsCopy: allCopy(sorted), Queries: []int{queryIdx}})
	return idx, nil
}

// AddQuery appends a new prepared query and returns its index.
func (b *ModuleBuilder) AddQuery(q PreparedQuery) int {
	return b.queries.Append(q.Name, q)
}

func buildColIdx(stored, submitted []PreparedField) []int {
	idx := make([]int, len(stored))
	for i, f := range stored {
		idx[i] = indexOfFieldByName(submitted, f.Name)
	}
	return idx
}

// Build finalizes the module's prepared output.
func (b *ModuleBuilder) Build() PreparedModule {
	return PreparedModule{Path: b.path, Name: b.name, Queries: b.queries, Rows: b.rows, Params: b.params}
}
