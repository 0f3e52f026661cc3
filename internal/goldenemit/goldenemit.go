// Package goldenemit is a test double for the cornucopia.Emitter
// interface. The real code-emission backend (full templated .go output
// per query) is a separate, out-of-scope project; this package proves
// the Emitter contract end-to-end by rendering one placeholder function
// per query with jennifer, just enough for golden-file comparison in
// tests.
package goldenemit

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dave/jennifer/jen"

	cornucopia "github.com/cornucopia-rs/cornucopia-go"
	"github.com/cornucopia-rs/cornucopia-go/internal/camel"
	"github.com/cornucopia-rs/cornucopia-go/ir"
)

// Emitter renders each module's queries as a minimal Go source stub. If
// Dir is non-empty, Emit also writes one "<module>.go" file per module;
// with Dir empty, it only populates Rendered for in-test inspection.
type Emitter struct {
	Dir      string
	rendered map[string]string
}

// New returns an Emitter that writes generated stubs under dir, or
// render-only (nothing touches disk) when dir is empty.
func New(dir string) *Emitter {
	return &Emitter{Dir: dir, rendered: make(map[string]string)}
}

// Emit implements cornucopia.Emitter.
func (e *Emitter) Emit(prep ir.Preparation) error {
	for _, mod := range prep.Modules {
		f := jen.NewFile(mod.Name)
		f.HeaderComment("Code generated by cornucopia. DO NOT EDIT.")

		for _, q := range mod.Queries.Values() {
			renderQuery(f, q)
		}

		var buf bytes.Buffer
		if err := f.Render(&buf); err != nil {
			return cornucopia.NewEmitterFormatError(mod.Name, err)
		}
		e.rendered[mod.Name] = buf.String()

		if e.Dir == "" {
			continue
		}
		path := filepath.Join(e.Dir, mod.Name+".go")
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return cornucopia.NewIOError("write_file", path, err)
		}
	}
	return nil
}

// Rendered returns the source rendered for a module by the most recent
// Emit call.
func (e *Emitter) Rendered(module string) (string, bool) {
	s, ok := e.rendered[module]
	return s, ok
}

func renderQuery(f *jen.File, q ir.PreparedQuery) {
	name := camel.UpperCamel(q.Name)
	f.Comment(fmt.Sprintf("%s is a placeholder for query %q (%d param(s), has row: %t).", name, q.Name, len(q.Params), q.HasRow))
	f.Func().Id(name).Params().Error().Block(
		jen.Return(jen.Nil()),
	)
}
