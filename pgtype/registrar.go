package pgtype

import "context"

// Registrar maintains an OID -> Type cache: each OID is fetched and
// canonicalized at most once, and element/base/field types are
// registered recursively before their containing type is built.
type Registrar struct {
	fetcher CatalogFetcher
	byOID   map[uint32]Type
	order   []uint32 // registration order, first mention wins
}

func NewRegistrar(fetcher CatalogFetcher) *Registrar {
	return &Registrar{fetcher: fetcher, byOID: make(map[uint32]Type)}
}

// Register resolves oid to its canonicalized Type, fetching and
// caching it (and recursively, anything it references) on first use.
func (r *Registrar) Register(ctx context.Context, oid uint32) (Type, error) {
	if t, ok := r.byOID[oid]; ok {
		return t, nil
	}

	ct, err := r.fetcher.FetchType(ctx, oid)
	if err != nil {
		return nil, err
	}

	var t Type
	switch ct.Kind {
	case CatalogKindBase:
		copyFlag, ok := builtinScalarCopy[ct.Name]
		if !ok {
			return nil, &UnsupportedPostgresTypeError{Schema: ct.Schema, Name: ct.Name, Kind: string(ct.Kind)}
		}
		t = SimpleType{Schema: ct.Schema, Name: ct.Name, Copy: copyFlag}

	case CatalogKindArray:
		elem, err := r.Register(ctx, ct.ElemOID)
		if err != nil {
			return nil, err
		}
		t = ArrayType{Schema: ct.Schema, Name: ct.Name, Elem: elem}

	case CatalogKindDomain:
		base, err := r.Register(ctx, ct.BaseOID)
		if err != nil {
			return nil, err
		}
		t = DomainType{Schema: ct.Schema, Name: ct.Name, Base: base}

	case CatalogKindEnum:
		t = CustomType{Schema: ct.Schema, Name: ct.Name, Content: EnumContent{Variants: ct.EnumLabels}}

	case CatalogKindComposite:
		fields := make([]CompositeField, 0, len(ct.CompositeFields))
		for _, f := range ct.CompositeFields {
			ft, err := r.Register(ctx, f.TypeOID)
			if err != nil {
				return nil, err
			}
			fields = append(fields, CompositeField{Name: f.Name, Type: ft})
		}
		t = CustomType{Schema: ct.Schema, Name: ct.Name, Content: CompositeContent{Fields: fields}}

	default:
		return nil, &UnsupportedPostgresTypeError{Schema: ct.Schema, Name: ct.Name, Kind: string(ct.Kind)}
	}

	r.byOID[oid] = t
	r.order = append(r.order, oid)
	return t, nil
}

// CustomTypes returns every registered CustomType (enum or composite)
// in registration order.
func (r *Registrar) CustomTypes() []CustomType {
	var out []CustomType
	for _, oid := range r.order {
		if ct, ok := r.byOID[oid].(CustomType); ok {
			out = append(out, ct)
		}
	}
	return out
}
