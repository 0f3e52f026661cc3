package ir_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cornucopia-rs/cornucopia-go/ir"
	"github.com/cornucopia-rs/cornucopia-go/pgtype"
)

func simple(name string, copy bool) pgtype.Type {
	return pgtype.SimpleType{Schema: "pg_catalog", Name: name, Copy: copy}
}

func TestAddRowNewEntryIsSortedAndColIdxMapsWireOrder(t *testing.T) {
	b := ir.NewModuleBuilder("authors.sql", "authors")

	fields := []ir.PreparedField{
		{Name: "name", Type: simple("text", false)},
		{Name: "id", Type: simple("int4", true)},
	}
	idx, colIdx, err := b.AddRow("Author", fields)
	require.NoError(t, err)
	assert.Equal(t, 0, idx)
	// stored sorted: [id, name]; id is at position 1 in submitted, name at 0.
	assert.Equal(t, []int{1, 0}, colIdx)
}

func TestAddRowSameNameSameShapeInternsToSameIndex(t *testing.T) {
	b := ir.NewModuleBuilder("authors.sql", "authors")

	idx1, _, err := b.AddRow("Author", []ir.PreparedField{
		{Name: "id", Type: simple("int4", true)},
		{Name: "name", Type: simple("text", false)},
	})
	require.NoError(t, err)

	idx2, colIdx, err := b.AddRow("Author", []ir.PreparedField{
		{Name: "name", Type: simple("text", false)},
		{Name: "id", Type: simple("int4", true)},
	})
	require.NoError(t, err)
	assert.Equal(t, idx1, idx2)
	assert.Equal(t, []int{1, 0}, colIdx)
}

func TestAddRowIncompatibleShapeFails(t *testing.T) {
	b := ir.NewModuleBuilder("authors.sql", "authors")

	_, _, err := b.AddRow("Author", []ir.PreparedField{
		{Name: "id", Type: simple("int4", true)},
	})
	require.NoError(t, err)

	_, _, err = b.AddRow("Author", []ir.PreparedField{
		{Name: "id", Type: simple("int4", true)},
		{Name: "name", Type: simple("text", false)},
	})
	require.Error(t, err)
	assert.IsType(t, &ir.IncompatibleNamedStructError{}, err)
}

func TestAddParamsAppendsBackEdges(t *testing.T) {
	b := ir.NewModuleBuilder("authors.sql", "authors")

	fields := []ir.PreparedField{{Name: "id", Type: simple("int4", true)}}
	idx1, err := b.AddParams("ByIDParams", fields, 0)
	require.NoError(t, err)

	idx2, err := b.AddParams("ByIDParams", fields, 1)
	require.NoError(t, err)
	assert.Equal(t, idx1, idx2)

	built := b.Build()
	stored, ok := built.Params.Get("ByIDParams")
	require.True(t, ok)
	assert.Equal(t, []int{0, 1}, stored.Queries)
}

func TestAddRowIsCopyReflectsAllFields(t *testing.T) {
	b := ir.NewModuleBuilder("t.sql", "t")

	_, _, err := b.AddRow("AllCopy", []ir.PreparedField{
		{Name: "a", Type: simple("int4", true)},
		{Name: "b", Type: simple("bool", true)},
	})
	require.NoError(t, err)

	built := b.Build()
	row, ok := built.Rows.Get("AllCopy")
	require.True(t, ok)
	assert.True(t, row.IsCopy)

	_, _, err = b.AddRow("HasString", []ir.PreparedField{
		{Name: "a", Type: simple("int4", true)},
		{Name: "s", Type: simple("text", false)},
	})
	require.NoError(t, err)
	built = b.Build()
	row, ok = built.Rows.Get("HasString")
	require.True(t, ok)
	assert.False(t, row.IsCopy)
}
