package pgtype

import "context"

// CatalogKind is the pg_type.typtype/typcategory classification the
// registrar needs to decide which Type variant to build.
type CatalogKind string

const (
	CatalogKindBase      CatalogKind = "base"
	CatalogKindArray     CatalogKind = "array"
	CatalogKindDomain    CatalogKind = "domain"
	CatalogKindEnum      CatalogKind = "enum"
	CatalogKindComposite CatalogKind = "composite"
	CatalogKindPseudo    CatalogKind = "pseudo"
	CatalogKindRange     CatalogKind = "range"
)

// CatalogField is one attribute of a composite catalog type.
type CatalogField struct {
	Name    string
	TypeOID uint32
}

// CatalogType is the raw shape of one pg_type row, as reported by a
// CatalogFetcher. It carries just enough to build every Type variant
// without the registrar knowing how the fetch happened.
type CatalogType struct {
	OID     uint32
	Schema  string
	Name    string
	Kind    CatalogKind
	ElemOID uint32 // valid when Kind == CatalogKindArray
	BaseOID uint32 // valid when Kind == CatalogKindDomain

	EnumLabels      []string       // valid when Kind == CatalogKindEnum, in declaration order
	CompositeFields []CatalogField // valid when Kind == CatalogKindComposite, in attribute order
}

// CatalogFetcher resolves a single pg_type OID to its catalog shape.
// dialect/pg implements this against a live connection; tests use a
// hand-built fake.
type CatalogFetcher interface {
	FetchType(ctx context.Context, oid uint32) (CatalogType, error)
}
