// Package pg is the only component that talks to a live PostgreSQL
// connection: it prepares each query to learn its parameter/result
// shape, and answers pgtype.CatalogFetcher lookups by querying the
// system catalogs. The connection itself is reached through a small
// interface (mirroring dialect/sql's ExecQuerier split in the teacher
// this package descends from) so the prepare path can be exercised
// against a fake in tests without a live database.
package pg

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/cornucopia-rs/cornucopia-go/pgtype"
)

// pgxRow is the subset of pgx.Row this package uses.
type pgxRow interface {
	Scan(dest ...any) error
}

// pgxRows is the subset of pgx.Rows this package uses.
type pgxRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
}

// pgxConn is the subset of *pgx.Conn this package uses. It exists so
// Conn can be exercised against a fake in tests.
type pgxConn interface {
	Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgxRow
	Query(ctx context.Context, sql string, args ...any) (pgxRows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// liveConn adapts *pgx.Conn to pgxConn.
type liveConn struct{ c *pgx.Conn }

func (l liveConn) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return l.c.Prepare(ctx, name, sql)
}

func (l liveConn) QueryRow(ctx context.Context, sql string, args ...any) pgxRow {
	return l.c.QueryRow(ctx, sql, args...)
}

func (l liveConn) Query(ctx context.Context, sql string, args ...any) (pgxRows, error) {
	return l.c.Query(ctx, sql, args...)
}

func (l liveConn) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return l.c.Exec(ctx, sql, args...)
}

// Conn wraps a PostgreSQL connection used for statement preparation
// and catalog introspection.
type Conn struct {
	conn pgxConn
	raw  *pgx.Conn // nil when conn is a test fake
}

// Connect opens a live connection to dsn.
func Connect(ctx context.Context, dsn string) (*Conn, error) {
	raw, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("dialect/pg: connect: %w", err)
	}
	return &Conn{conn: liveConn{raw}, raw: raw}, nil
}

// Close closes the underlying connection, if this Conn owns one.
func (c *Conn) Close(ctx context.Context) error {
	if c.raw == nil {
		return nil
	}
	return c.raw.Close(ctx)
}

// StatementDescription is the prepare-time shape the preparer needs:
// the parameter type OIDs in bind-position order, and the result
// columns' names and type OIDs in wire order.
type StatementDescription struct {
	ParamOIDs []uint32
	Columns   []ColumnDescription
}

// ColumnDescription is one result column's wire shape.
type ColumnDescription struct {
	Name string
	OID  uint32
}

// Describe prepares sql as an unnamed statement and reports its
// parameter and result-column shape without executing it.
func (c *Conn) Describe(ctx context.Context, sql string) (*StatementDescription, error) {
	if err := c.setSearchPath(ctx); err != nil {
		return nil, err
	}
	sd, err := c.conn.Prepare(ctx, "", sql)
	if err != nil {
		return nil, fmt.Errorf("dialect/pg: describe: %w", err)
	}
	desc := &StatementDescription{ParamOIDs: make([]uint32, len(sd.ParamOIDs))}
	for i, oid := range sd.ParamOIDs {
		desc.ParamOIDs[i] = oid
	}
	for _, f := range sd.Fields {
		desc.Columns = append(desc.Columns, ColumnDescription{Name: f.Name, OID: f.DataTypeOID})
	}
	return desc, nil
}

const typeLookupQuery = `
SELECT n.nspname, t.typname, t.typtype, t.typcategory, t.typelem, t.typbasetype
FROM pg_catalog.pg_type t
JOIN pg_catalog.pg_namespace n ON n.oid = t.typnamespace
WHERE t.oid = $1`

// FetchType implements pgtype.CatalogFetcher against the live catalogs.
func (c *Conn) FetchType(ctx context.Context, oid uint32) (pgtype.CatalogType, error) {
	if err := c.setSearchPath(ctx); err != nil {
		return pgtype.CatalogType{}, err
	}

	var schema, name, typtype, typcategory string
	var elemOID, baseOID uint32
	row := c.conn.QueryRow(ctx, typeLookupQuery, oid)
	if err := row.Scan(&schema, &name, &typtype, &typcategory, &elemOID, &baseOID); err != nil {
		return pgtype.CatalogType{}, fmt.Errorf("dialect/pg: fetch type %d: %w", oid, err)
	}

	ct := pgtype.CatalogType{OID: oid, Schema: schema, Name: name}
	switch {
	case typcategory == "A":
		ct.Kind = pgtype.CatalogKindArray
		ct.ElemOID = elemOID
	case typtype == "d":
		ct.Kind = pgtype.CatalogKindDomain
		ct.BaseOID = baseOID
	case typtype == "e":
		ct.Kind = pgtype.CatalogKindEnum
		labels, err := c.fetchEnumLabels(ctx, oid)
		if err != nil {
			return pgtype.CatalogType{}, err
		}
		ct.EnumLabels = labels
	case typtype == "c":
		ct.Kind = pgtype.CatalogKindComposite
		fields, err := c.fetchCompositeFields(ctx, oid)
		if err != nil {
			return pgtype.CatalogType{}, err
		}
		ct.CompositeFields = fields
	case typtype == "b":
		ct.Kind = pgtype.CatalogKindBase
	case typtype == "r":
		ct.Kind = pgtype.CatalogKindRange
	default:
		ct.Kind = pgtype.CatalogKindPseudo
	}
	return ct, nil
}

const enumLabelsQuery = `
SELECT enumlabel FROM pg_catalog.pg_enum
WHERE enumtypid = $1
ORDER BY enumsortorder`

func (c *Conn) fetchEnumLabels(ctx context.Context, oid uint32) ([]string, error) {
	rows, err := c.conn.Query(ctx, enumLabelsQuery, oid)
	if err != nil {
		return nil, fmt.Errorf("dialect/pg: fetch enum labels for %d: %w", oid, err)
	}
	defer rows.Close()

	var labels []string
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, fmt.Errorf("dialect/pg: scan enum label for %d: %w", oid, err)
		}
		labels = append(labels, label)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("dialect/pg: fetch enum labels for %d: %w", oid, err)
	}
	return labels, nil
}

const compositeFieldsQuery = `
SELECT a.attname, a.atttypid
FROM pg_catalog.pg_attribute a
WHERE a.attrelid = (SELECT typrelid FROM pg_catalog.pg_type WHERE oid = $1)
  AND a.attnum > 0
  AND NOT a.attisdropped
ORDER BY a.attnum`

func (c *Conn) fetchCompositeFields(ctx context.Context, oid uint32) ([]pgtype.CatalogField, error) {
	rows, err := c.conn.Query(ctx, compositeFieldsQuery, oid)
	if err != nil {
		return nil, fmt.Errorf("dialect/pg: fetch composite fields for %d: %w", oid, err)
	}
	defer rows.Close()

	var fields []pgtype.CatalogField
	for rows.Next() {
		var f pgtype.CatalogField
		if err := rows.Scan(&f.Name, &f.TypeOID); err != nil {
			return nil, fmt.Errorf("dialect/pg: scan composite field for %d: %w", oid, err)
		}
		fields = append(fields, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("dialect/pg: fetch composite fields for %d: %w", oid, err)
	}
	return fields, nil
}

type ctxSchemasKey struct{}

// WithSchemas returns a context carrying the schema search path that
// Describe and FetchType should apply before issuing any query.
func WithSchemas(ctx context.Context, schemas []string) context.Context {
	return context.WithValue(ctx, ctxSchemasKey{}, schemas)
}

var validIdentifierRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

func (c *Conn) setSearchPath(ctx context.Context) error {
	schemas, ok := ctx.Value(ctxSchemasKey{}).([]string)
	if !ok || len(schemas) == 0 {
		return nil
	}
	for _, s := range schemas {
		if !validIdentifierRe.MatchString(s) {
			return fmt.Errorf("dialect/pg: invalid schema name %q", s)
		}
	}
	stmt := fmt.Sprintf("SET search_path = %s", strings.Join(schemas, ", "))
	if _, err := c.conn.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("dialect/pg: set search_path: %w", err)
	}
	return nil
}

var _ pgtype.CatalogFetcher = (*Conn)(nil)
