package camel_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cornucopia-rs/cornucopia-go/internal/camel"
)

func TestUpperCamel(t *testing.T) {
	cases := map[string]string{
		"author_by_id": "AuthorById",
		"authors":      "Authors",
		"book":         "Book",
		"__weird__":    "Weird",
	}
	for in, want := range cases {
		assert.Equal(t, want, camel.UpperCamel(in))
	}
}
