package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cornucopia-rs/cornucopia-go/parser"
	"github.com/cornucopia-rs/cornucopia-go/validate"
)

func mustParse(t *testing.T, src string) *parser.ParsedModule {
	t.Helper()
	mod, errs := parser.Parse("t.sql", "t", src)
	require.Empty(t, errs)
	return mod
}

func TestModuleCleanHasNoErrors(t *testing.T) {
	mod := mustParse(t, `
Author(id: int4, name: text)

ByID([], Author) : SELECT id, name FROM authors WHERE id = :id;
`)
	res := validate.Module(mod)
	assert.False(t, res.HasErrors())
}

func TestModuleDuplicateQueryName(t *testing.T) {
	mod := mustParse(t, `
One([], [id]) : SELECT id FROM t;
One([], [id]) : SELECT id FROM t;
`)
	res := validate.Module(mod)
	require.True(t, res.HasErrors())
	require.Len(t, res.Errors, 1)
	assert.IsType(t, &validate.DuplicateQueryNameError{}, res.Errors[0])
}

func TestModuleDuplicateTypeName(t *testing.T) {
	mod := mustParse(t, `
Author(id: int4)
Author(id: int4, name: text)
`)
	res := validate.Module(mod)
	require.True(t, res.HasErrors())
	require.Len(t, res.Errors, 1)
	assert.IsType(t, &validate.DuplicateTypeNameError{}, res.Errors[0])
}

func TestModuleUnknownNamedStruct(t *testing.T) {
	mod := mustParse(t, `ByID(Missing, Author) : SELECT id FROM t WHERE id = :id;`)
	res := validate.Module(mod)
	require.True(t, res.HasErrors())
	require.Len(t, res.Errors, 2) // both Params and Row reference undeclared names
	for _, err := range res.Errors {
		assert.IsType(t, &validate.UnknownNamedStructError{}, err)
	}
}

func TestModuleUnknownNamedStructReportsCorrectNamespace(t *testing.T) {
	mod := mustParse(t, `
Author(id: int4)
ByID(Missing, Author) : SELECT id FROM t WHERE id = :id;
`)
	res := validate.Module(mod)
	require.Len(t, res.Errors, 1)
	unknown, ok := res.Errors[0].(*validate.UnknownNamedStructError)
	require.True(t, ok)
	assert.Equal(t, validate.NamespaceParams, unknown.Namespace)
	assert.Equal(t, "Missing", unknown.Name)
}

func TestModuleImplicitDescriptorsAreAcceptedUnconditionally(t *testing.T) {
	mod := mustParse(t, `NoSuchColumnYet([], [does_not_exist_yet]) : SELECT id FROM t;`)
	res := validate.Module(mod)
	assert.False(t, res.HasErrors())
}

func TestModuleCollectsErrorsFromMultipleQueries(t *testing.T) {
	mod := mustParse(t, `
First(Missing1, []) : SELECT 1;
Second(Missing2, []) : SELECT 2;
`)
	res := validate.Module(mod)
	require.Len(t, res.Errors, 2)
}
