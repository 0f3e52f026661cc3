package cornucopia

import "github.com/cornucopia-rs/cornucopia-go/ir"

// Emitter renders a finished Preparation into generated source. This
// repository stops at the IR: a concrete code-emission backend (string
// or AST templating of .go output) is a separate, out-of-scope project
// that implements this interface. internal/goldenemit provides a test
// double so the contract is exercised without that backend existing.
type Emitter interface {
	Emit(prep ir.Preparation) error
}
