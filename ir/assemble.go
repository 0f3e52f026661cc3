package ir

import (
	"sort"

	"github.com/cornucopia-rs/cornucopia-go/internal/camel"
	"github.com/cornucopia-rs/cornucopia-go/pgtype"
)

// Assemble sorts the prepared modules by name and extracts every
// Custom type the registrar produced, bucketed by schema in
// registration order, to build the final Preparation.
func Assemble(modules []PreparedModule, reg *pgtype.Registrar) Preparation {
	sorted := make([]PreparedModule, len(modules))
	copy(sorted, modules)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	types := make(map[string][]PreparedType)
	for _, ct := range reg.CustomTypes() {
		pt := PreparedType{
			Name:       ct.Name,
			StructName: camel.UpperCamel(ct.Name),
			Content:    ct.Content,
			IsCopy:     ct.IsCopy(),
			IsParams:   ct.IsParams(),
		}
		types[ct.Schema] = append(types[ct.Schema], pt)
	}

	return Preparation{Modules: sorted, Types: types}
}
