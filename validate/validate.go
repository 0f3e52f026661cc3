// Package validate enforces the naming and reference rules a parsed
// module must satisfy before it can be prepared against a database:
// unique query names, unique type-annotation names, and every
// Named(X) descriptor resolving to a real declaration. Nullable-ident
// references inside Implicit descriptors are accepted here and
// re-checked after preparation, once the actual column/parameter names
// are known.
package validate

import (
	"strings"

	"github.com/cornucopia-rs/cornucopia-go/parser"
)

// Result accumulates every rule violation found in a module. Unlike a
// single returned error, Result keeps going after the first failure so
// a user sees every problem in one run.
type Result struct {
	Errors []error
}

func (r *Result) HasErrors() bool { return len(r.Errors) > 0 }

func (r *Result) Error() string {
	var b strings.Builder
	for i, err := range r.Errors {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(err.Error())
	}
	return b.String()
}

// Module validates one parsed module and returns every violation found,
// across all of its queries and annotations, without stopping at the
// first. The Result does not mark which queries are still usable;
// Compile skips every query of a module whose Result has errors.
func Module(mod *parser.ParsedModule) *Result {
	res := &Result{}

	seenQuery := make(map[string]bool, len(mod.Queries))
	for _, q := range mod.Queries {
		if seenQuery[q.Name.Value] {
			res.Errors = append(res.Errors, &DuplicateQueryNameError{Path: mod.Path, Name: q.Name.Value, Pos: q.Name.Pos})
			continue
		}
		seenQuery[q.Name.Value] = true
	}

	declByName := make(map[string]parser.TypeAnnotation, len(mod.Annotations))
	for _, ann := range mod.Annotations {
		if _, ok := declByName[ann.Name.Value]; ok {
			res.Errors = append(res.Errors, &DuplicateTypeNameError{Path: mod.Path, Name: ann.Name.Value, Pos: ann.Name.Pos})
			continue
		}
		declByName[ann.Name.Value] = ann
	}

	for _, q := range mod.Queries {
		checkDescriptor(mod.Path, q.Name.Value, q.Params, NamespaceParams, declByName, res)
		checkDescriptor(mod.Path, q.Name.Value, q.Row, NamespaceRow, declByName, res)
		checkBindParamDuplicates(mod.Path, q, res)
	}

	return res
}

func checkDescriptor(path, queryName string, d parser.Descriptor, ns Namespace, declByName map[string]parser.TypeAnnotation, res *Result) {
	named, ok := d.(parser.NamedDescriptor)
	if !ok {
		return // Implicit: nothing to resolve yet.
	}
	if _, found := declByName[named.Name.Value]; !found {
		res.Errors = append(res.Errors, &UnknownNamedStructError{
			Path:      path,
			Query:     queryName,
			Name:      named.Name.Value,
			Namespace: ns,
			Pos:       named.Name.Pos,
		})
	}
}

func checkBindParamDuplicates(path string, q parser.Query, res *Result) {
	seen := make(map[string]bool, len(q.BindParams))
	for _, bp := range q.BindParams {
		if seen[bp.Value] {
			res.Errors = append(res.Errors, &DuplicateBindParamError{Path: path, Query: q.Name.Value, Name: bp.Value, Pos: bp.Pos})
			continue
		}
		seen[bp.Value] = true
	}
}
