package ir_test

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"github.com/cornucopia-rs/cornucopia-go/ir"
	"github.com/cornucopia-rs/cornucopia-go/pgtype"
)

func buildFixturePreparation(t *testing.T) ir.Preparation {
	t.Helper()

	b := ir.NewModuleBuilder("authors.sql", "authors")
	fields := []ir.PreparedField{
		{Name: "id", Type: pgtype.SimpleType{Schema: "pg_catalog", Name: "int4", Copy: true}},
		{Name: "name", Type: pgtype.SimpleType{Schema: "pg_catalog", Name: "text"}},
	}
	rowIdx, colIdx, err := b.AddRow("Author", fields)
	require.NoError(t, err)

	q := ir.PreparedQuery{
		Name:   "ByID",
		Params: []ir.PreparedField{{Name: "id", Type: pgtype.SimpleType{Schema: "pg_catalog", Name: "int4", Copy: true}}},
		HasRow: true,
		RowIdx: rowIdx,
		ColIdx: colIdx,
		SQL:    "SELECT id, name FROM author WHERE id = $1",
	}
	queryIdx := b.AddQuery(q)
	_, err = b.AddParams("ByIDParams", q.Params, queryIdx)
	require.NoError(t, err)

	reg := pgtype.NewRegistrar(fakeFetcher{byOID: map[uint32]pgtype.CatalogType{}})
	return ir.Assemble([]ir.PreparedModule{b.Build()}, reg)
}

// TestPreparationDeterministic builds the same fixture input twice and
// asserts the two Preparations marshal to byte-identical JSON, using
// the first run's output as the golden reference for the second via
// goldie — proving reassembling identical input always reproduces the
// same emission order (sorted modules, sorted struct fields, stable
// custom-type bucketing).
func TestPreparationDeterministic(t *testing.T) {
	prep1 := buildFixturePreparation(t)
	prep2 := buildFixturePreparation(t)

	data1, err := json.MarshalIndent(prep1, "", "  ")
	require.NoError(t, err)
	data2, err := json.MarshalIndent(prep2, "", "  ")
	require.NoError(t, err)

	g := goldie.New(t, goldie.WithFixtureDir(t.TempDir()))
	require.NoError(t, g.Update(t, "preparation", data1))
	g.Assert(t, "preparation", data2)
}
