package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cornucopia-rs/cornucopia-go/parser"
)

func TestParseExtendedQueryImplicitDescriptors(t *testing.T) {
	src := `
AuthorByID([], [bio]) :
    SELECT name, bio FROM authors WHERE id = :id;
`
	mod, errs := parser.Parse("authors.sql", "authors", src)
	require.Empty(t, errs)
	require.Len(t, mod.Queries, 1)

	q := mod.Queries[0]
	assert.Equal(t, "AuthorByID", q.Name.Value)
	assert.Equal(t, parser.Extended, q.Kind)

	params, ok := q.Params.(parser.ImplicitDescriptor)
	require.True(t, ok)
	assert.Empty(t, params.Nullable)

	row, ok := q.Row.(parser.ImplicitDescriptor)
	require.True(t, ok)
	require.Len(t, row.Nullable, 1)
	assert.Equal(t, "bio", row.Nullable[0].Value)

	assert.Equal(t, "SELECT name, bio FROM authors WHERE id = $1", q.SQL)
	require.Len(t, q.BindParams, 1)
	assert.Equal(t, "id", q.BindParams[0].Value)
}

func TestParseExtendedQueryNamedDescriptors(t *testing.T) {
	src := `InsertAuthor(AuthorParams, Author) : INSERT INTO authors (name) VALUES (:name) RETURNING id, name;`

	mod, errs := parser.Parse("authors.sql", "authors", src)
	require.Empty(t, errs)
	require.Len(t, mod.Queries, 1)

	q := mod.Queries[0]
	params, ok := q.Params.(parser.NamedDescriptor)
	require.True(t, ok)
	assert.Equal(t, "AuthorParams", params.Name.Value)

	row, ok := q.Row.(parser.NamedDescriptor)
	require.True(t, ok)
	assert.Equal(t, "Author", row.Name.Value)
}

func TestParseExtendedQueryWithBangMarker(t *testing.T) {
	src := `insert_book([], [])! : INSERT INTO Book(title) VALUES (:title);`

	mod, errs := parser.Parse("books.sql", "books", src)
	require.Empty(t, errs)
	require.Len(t, mod.Queries, 1)

	q := mod.Queries[0]
	assert.Equal(t, "insert_book", q.Name.Value)
	assert.Equal(t, "INSERT INTO Book(title) VALUES ($1)", q.SQL)
	require.Len(t, q.BindParams, 1)
	assert.Equal(t, "title", q.BindParams[0].Value)
}

func TestParsePgCompatibleQueryWithBangMarker(t *testing.T) {
	src := `ByID(params => [id], row => [name])! : SELECT id, name FROM author WHERE id = :id;`

	mod, errs := parser.Parse("author.sql", "author", src)
	require.Empty(t, errs)
	require.Len(t, mod.Queries, 1)
	assert.Equal(t, parser.PgCompatible, mod.Queries[0].Kind)
}

func TestParseBindParamRepeatedUseSharesPlaceholder(t *testing.T) {
	src := `FindDup([], [id]) : SELECT id FROM t WHERE a = :x OR b = :x;`

	mod, errs := parser.Parse("t.sql", "t", src)
	require.Empty(t, errs)
	require.Len(t, mod.Queries, 1)

	q := mod.Queries[0]
	assert.Equal(t, "SELECT id FROM t WHERE a = $1 OR b = $1", q.SQL)
	require.Len(t, q.BindParams, 1)
	assert.Equal(t, "x", q.BindParams[0].Value)
}

func TestParseBindParamIgnoresCastAndStringLiterals(t *testing.T) {
	src := `Weird([], [v]) : SELECT 'it''s :not a param', data::json, v FROM t WHERE id = :id;`

	mod, errs := parser.Parse("t.sql", "t", src)
	require.Empty(t, errs)
	require.Len(t, mod.Queries, 1)

	q := mod.Queries[0]
	assert.Equal(t, "SELECT 'it''s :not a param', data::json, v FROM t WHERE id = $1", q.SQL)
	require.Len(t, q.BindParams, 1)
	assert.Equal(t, "id", q.BindParams[0].Value)
}

func TestParsePgCompatibleQuery(t *testing.T) {
	src := `AuthorByID(params => [id], row => [name, bio]?) : SELECT name, bio FROM authors WHERE id = :id;`

	mod, errs := parser.Parse("authors.sql", "authors", src)
	require.Empty(t, errs)
	require.Len(t, mod.Queries, 1)

	q := mod.Queries[0]
	assert.Equal(t, parser.PgCompatible, q.Kind)
	require.Len(t, q.PgParamNames, 1)
	assert.Equal(t, "id", q.PgParamNames[0].Value)
	require.Len(t, q.PgNullableColumns, 2)
	assert.Equal(t, "bio", q.PgNullableColumns[1].Value)
}

func TestParseTypeAnnotation(t *testing.T) {
	src := `
Author(
    id: int4,
    name: text,
    bio: text?,
    tags: text[],
)
`
	mod, errs := parser.Parse("authors.sql", "authors", src)
	require.Empty(t, errs)
	require.Len(t, mod.Annotations, 1)

	ann := mod.Annotations[0]
	assert.Equal(t, "Author", ann.Name.Value)
	require.Len(t, ann.Fields, 4)
	assert.Equal(t, "bio", ann.Fields[2].Name.Value)
	assert.True(t, ann.Fields[2].Nullable)
	assert.Equal(t, "text[]", ann.Fields[3].Type.Value)
}

func TestParseMultiWordSQLType(t *testing.T) {
	src := `Event(at: timestamp with time zone)`

	mod, errs := parser.Parse("events.sql", "events", src)
	require.Empty(t, errs)
	require.Len(t, mod.Annotations, 1)
	assert.Equal(t, "timestamp with time zone", mod.Annotations[0].Fields[0].Type.Value)
}

func TestParseModuleWithMultipleQueriesAndAnnotations(t *testing.T) {
	src := `
Author(id: int4, name: text)

AuthorByID([], Author) : SELECT id, name FROM authors WHERE id = :id;

AllAuthors([], Author) : SELECT id, name FROM authors;
`
	mod, errs := parser.Parse("authors.sql", "authors", src)
	require.Empty(t, errs)
	require.Len(t, mod.Annotations, 1)
	require.Len(t, mod.Queries, 2)
	assert.Equal(t, "AuthorByID", mod.Queries[0].Name.Value)
	assert.Equal(t, "AllAuthors", mod.Queries[1].Name.Value)
}

func TestParseUnterminatedQueryRecoversForLaterQueries(t *testing.T) {
	src := `
Broken([], [id]) : SELECT id FROM t WHERE id = :id
`
	mod, errs := parser.Parse("t.sql", "t", src)
	require.Len(t, errs, 1)
	assert.IsType(t, &parser.UnterminatedQueryError{}, errs[0])
	assert.Empty(t, mod.Queries)
}

func TestParseUnexpectedTokenRecoversAndContinues(t *testing.T) {
	src := `
!!! garbage ;
Good([], [id]) : SELECT id FROM t;
`
	mod, errs := parser.Parse("t.sql", "t", src)
	require.NotEmpty(t, errs)
	assert.IsType(t, &parser.UnexpectedTokenError{}, errs[0])
	require.Len(t, mod.Queries, 1)
	assert.Equal(t, "Good", mod.Queries[0].Name.Value)
}

func TestParseBadMetadataFormError(t *testing.T) {
	src := `Bad(bogus => [x]) : SELECT 1;`

	_, errs := parser.Parse("t.sql", "t", src)
	require.Len(t, errs, 1)
	assert.IsType(t, &parser.BadMetadataFormError{}, errs[0])
}
