// Package camel synthesizes UpperCamelCase Go identifiers from
// snake_case SQL identifiers, used to name the struct an Implicit
// descriptor auto-derives from a query.
package camel

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.Und, cases.NoLower)

// UpperCamel converts ident (snake_case, or already mixed) into
// UpperCamelCase: "author_by_id" -> "AuthorById".
func UpperCamel(ident string) string {
	parts := strings.Split(ident, "_")
	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		b.WriteString(titleCaser.String(p))
	}
	return b.String()
}
