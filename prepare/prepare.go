package prepare

import (
	"context"
	"fmt"

	"github.com/cornucopia-rs/cornucopia-go/dialect/pg"
	"github.com/cornucopia-rs/cornucopia-go/internal/camel"
	"github.com/cornucopia-rs/cornucopia-go/ir"
	"github.com/cornucopia-rs/cornucopia-go/parser"
	"github.com/cornucopia-rs/cornucopia-go/pgtype"
	"github.com/cornucopia-rs/cornucopia-go/position"
)

// Describer prepares a SQL statement and reports its parameter and
// result-column shape. *pg.Conn implements this; tests use a fake.
type Describer interface {
	Describe(ctx context.Context, sql string) (*pg.StatementDescription, error)
}

// Registrar canonicalizes a catalog OID into a registered Type.
// *pgtype.Registrar implements this.
type Registrar interface {
	Register(ctx context.Context, oid uint32) (pgtype.Type, error)
}

// Module prepares every query in mod against conn, registering types
// through reg and interning rows/params into a fresh module builder.
// Like the validator, a failure on one query doesn't stop the rest:
// every error is collected and returned alongside whatever did
// prepare successfully.
func Module(ctx context.Context, conn Describer, reg Registrar, mod *parser.ParsedModule) (ir.PreparedModule, []error) {
	builder := ir.NewModuleBuilder(mod.Path, mod.Name)

	declByName := make(map[string]parser.TypeAnnotation, len(mod.Annotations))
	for _, ann := range mod.Annotations {
		declByName[ann.Name.Value] = ann
	}

	var errs []error
	for _, q := range mod.Queries {
		if err := prepareQuery(ctx, conn, reg, mod.Path, declByName, builder, q); err != nil {
			errs = append(errs, err)
		}
	}
	return builder.Build(), errs
}

func toSet(idents []position.Parsed[string]) map[string]bool {
	set := make(map[string]bool, len(idents))
	for _, id := range idents {
		set[id.Value] = true
	}
	return set
}

func prepareQuery(ctx context.Context, conn Describer, reg Registrar, path string, declByName map[string]parser.TypeAnnotation, builder *ir.ModuleBuilder, q parser.Query) error {
	desc, err := conn.Describe(ctx, q.SQL)
	if err != nil {
		return &DatabaseError{Query: q.Name.Value, Path: path, Pos: q.Pos, Cause: err}
	}

	seenCol := make(map[string]bool, len(desc.Columns))
	for _, c := range desc.Columns {
		if seenCol[c.Name] {
			return &DuplicateSqlColNameError{Query: q.Name.Value, Path: path, Pos: q.Pos, Name: c.Name}
		}
		seenCol[c.Name] = true
	}

	nullableCols, nullableParams := nullableReferenceSets(q)

	for name := range nullableCols {
		if !seenCol[name] {
			return &UnknownNullableColumnError{Query: q.Name.Value, Path: path, Pos: q.Pos, Name: name}
		}
	}
	bindParamNames := make(map[string]bool, len(q.BindParams))
	for _, bp := range q.BindParams {
		bindParamNames[bp.Value] = true
	}
	for name := range nullableParams {
		if !bindParamNames[name] {
			return &UnknownNullableParamError{Query: q.Name.Value, Path: path, Pos: q.Pos, Name: name}
		}
	}

	paramFields, paramsName, err := prepareParams(ctx, reg, path, declByName, q, desc, nullableParams)
	if err != nil {
		return err
	}
	rowFields, rowName, hasRow, err := prepareRow(ctx, reg, path, declByName, q, desc, nullableCols)
	if err != nil {
		return err
	}

	pq := ir.PreparedQuery{Name: q.Name.Value, Params: paramFields, SQL: q.SQL}

	if hasRow {
		rowIdx, colIdx, err := builder.AddRow(rowName, rowFields)
		if err != nil {
			return wrapIRErr(q, path, err)
		}
		pq.HasRow = true
		pq.RowIdx = rowIdx
		pq.ColIdx = colIdx
	}

	queryIdx := builder.AddQuery(pq)

	if len(paramFields) > 0 {
		if _, err := builder.AddParams(paramsName, paramFields, queryIdx); err != nil {
			return wrapIRErr(q, path, err)
		}
	}

	return nil
}

func nullableReferenceSets(q parser.Query) (cols, params map[string]bool) {
	if q.Kind == parser.PgCompatible {
		return toSet(q.PgNullableColumns), map[string]bool{}
	}
	cols, params = map[string]bool{}, map[string]bool{}
	if imp, ok := q.Row.(parser.ImplicitDescriptor); ok {
		cols = toSet(imp.Nullable)
	}
	if imp, ok := q.Params.(parser.ImplicitDescriptor); ok {
		params = toSet(imp.Nullable)
	}
	return cols, params
}

func wrapIRErr(q parser.Query, path string, err error) error {
	return fmt.Errorf("%s:%s: query %q: %w", path, q.Pos, q.Name.Value, err)
}

func prepareParams(ctx context.Context, reg Registrar, path string, declByName map[string]parser.TypeAnnotation, q parser.Query, desc *pg.StatementDescription, nullableParams map[string]bool) ([]ir.PreparedField, string, error) {
	if q.Kind == parser.PgCompatible {
		if len(q.PgParamNames) != len(desc.ParamOIDs) {
			return nil, "", &ParamCountMismatchError{Query: q.Name.Value, Path: path, Pos: q.Pos, Want: len(q.PgParamNames), Got: len(desc.ParamOIDs)}
		}
		fields := make([]ir.PreparedField, len(q.PgParamNames))
		for i, name := range q.PgParamNames {
			typ, err := reg.Register(ctx, desc.ParamOIDs[i])
			if err != nil {
				return nil, "", &DatabaseError{Query: q.Name.Value, Path: path, Pos: q.Pos, Cause: err}
			}
			fields[i] = ir.PreparedField{Name: name.Value, Type: typ}
		}
		return fields, camel.UpperCamel(q.Name.Value) + "Params", nil
	}

	if named, ok := q.Params.(parser.NamedDescriptor); ok {
		ann := declByName[named.Name.Value]
		if len(ann.Fields) != len(desc.ParamOIDs) {
			return nil, "", &FieldCountMismatchError{Query: q.Name.Value, Path: path, Pos: q.Pos, Struct: ann.Name.Value, Namespace: "params", Want: len(ann.Fields), Got: len(desc.ParamOIDs)}
		}
		bindPos := make(map[string]int, len(q.BindParams))
		for i, bp := range q.BindParams {
			bindPos[bp.Value] = i
		}
		fields := make([]ir.PreparedField, len(ann.Fields))
		for i, f := range ann.Fields {
			pos, ok := bindPos[f.Name.Value]
			if !ok {
				return nil, "", &NamedFieldUnresolvedError{Query: q.Name.Value, Path: path, Pos: q.Pos, Struct: ann.Name.Value, Namespace: "params", Field: f.Name.Value}
			}
			typ, err := reg.Register(ctx, desc.ParamOIDs[pos])
			if err != nil {
				return nil, "", &DatabaseError{Query: q.Name.Value, Path: path, Pos: q.Pos, Cause: err}
			}
			fields[i] = ir.PreparedField{Name: f.Name.Value, Type: typ, Nullable: f.Nullable}
		}
		return fields, ann.Name.Value, nil
	}

	if len(q.BindParams) != len(desc.ParamOIDs) {
		return nil, "", &ParamCountMismatchError{Query: q.Name.Value, Path: path, Pos: q.Pos, Want: len(q.BindParams), Got: len(desc.ParamOIDs)}
	}
	fields := make([]ir.PreparedField, len(q.BindParams))
	for i, bp := range q.BindParams {
		typ, err := reg.Register(ctx, desc.ParamOIDs[i])
		if err != nil {
			return nil, "", &DatabaseError{Query: q.Name.Value, Path: path, Pos: q.Pos, Cause: err}
		}
		fields[i] = ir.PreparedField{Name: bp.Value, Type: typ, Nullable: nullableParams[bp.Value]}
	}
	return fields, camel.UpperCamel(q.Name.Value) + "Params", nil
}

func prepareRow(ctx context.Context, reg Registrar, path string, declByName map[string]parser.TypeAnnotation, q parser.Query, desc *pg.StatementDescription, nullableCols map[string]bool) ([]ir.PreparedField, string, bool, error) {
	if len(desc.Columns) == 0 {
		return nil, "", false, nil
	}

	if q.Kind == parser.Extended {
		if named, ok := q.Row.(parser.NamedDescriptor); ok {
			ann := declByName[named.Name.Value]
			if len(ann.Fields) != len(desc.Columns) {
				return nil, "", false, &FieldCountMismatchError{Query: q.Name.Value, Path: path, Pos: q.Pos, Struct: ann.Name.Value, Namespace: "row", Want: len(ann.Fields), Got: len(desc.Columns)}
			}
			colNames := make(map[string]bool, len(desc.Columns))
			for _, c := range desc.Columns {
				colNames[c.Name] = true
			}
			annField := make(map[string]parser.TypeAnnotationField, len(ann.Fields))
			for _, f := range ann.Fields {
				if !colNames[f.Name.Value] {
					return nil, "", false, &NamedFieldUnresolvedError{Query: q.Name.Value, Path: path, Pos: q.Pos, Struct: ann.Name.Value, Namespace: "row", Field: f.Name.Value}
				}
				annField[f.Name.Value] = f
			}
			// Row fields must come out in wire-column order (col_idx indexes
			// desc.Columns positions), with the annotation consulted only
			// for nullability, not for field order.
			fields := make([]ir.PreparedField, len(desc.Columns))
			for i, c := range desc.Columns {
				f, ok := annField[c.Name]
				if !ok {
					return nil, "", false, &NamedFieldUnresolvedError{Query: q.Name.Value, Path: path, Pos: q.Pos, Struct: ann.Name.Value, Namespace: "row", Field: c.Name}
				}
				typ, err := reg.Register(ctx, c.OID)
				if err != nil {
					return nil, "", false, &DatabaseError{Query: q.Name.Value, Path: path, Pos: q.Pos, Cause: err}
				}
				fields[i] = ir.PreparedField{Name: f.Name.Value, Type: typ, Nullable: f.Nullable}
			}
			return fields, ann.Name.Value, true, nil
		}
	}

	fields := make([]ir.PreparedField, len(desc.Columns))
	for i, c := range desc.Columns {
		typ, err := reg.Register(ctx, c.OID)
		if err != nil {
			return nil, "", false, &DatabaseError{Query: q.Name.Value, Path: path, Pos: q.Pos, Cause: err}
		}
		fields[i] = ir.PreparedField{Name: c.Name, Type: typ, Nullable: nullableCols[c.Name]}
	}
	return fields, camel.UpperCamel(q.Name.Value), true, nil
}
