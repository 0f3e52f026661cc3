// Package parser turns a query-file module's raw text into a
// [ParsedModule]: the declared type annotations plus the queries, each
// with its bind parameters extracted and its SQL body rewritten to use
// `$N` placeholders. It performs no cross-reference checks — that is
// the validate package's job — and it never touches the database.
package parser

import (
	"fmt"
	"strings"

	"github.com/cornucopia-rs/cornucopia-go/position"
)

type headerKind int

const (
	headerUnknown headerKind = iota
	headerAnnotation
	headerPgCompatible
	headerExtended
)

type parserState struct {
	s    *scanner
	path string
}

// Parse parses one module's source text into a ParsedModule. Parse
// errors are collected rather than stopping the whole module: a
// malformed query is skipped (by scanning forward to its presumed end)
// so the rest of the file is still parsed, matching the per-query
// recoverability the spec assigns to parse errors.
func Parse(path, name, text string) (*ParsedModule, []error) {
	p := &parserState{s: newScanner(text), path: path}
	mod := &ParsedModule{Path: path, Name: name}
	var errs []error

	for {
		p.s.skipSpace()
		if p.s.eof() {
			break
		}
		if !isIdentStart(p.s.peek()) {
			pos := p.s.position()
			errs = append(errs, &UnexpectedTokenError{Path: path, Pos: pos, Want: "identifier", Got: string(p.s.peek())})
			p.recover()
			continue
		}

		ident, idPos := p.s.readIdent()
		p.s.skipSpace()
		if p.s.peek() != '(' {
			errs = append(errs, &UnexpectedTokenError{Path: path, Pos: p.s.position(), Want: "'('", Got: string(p.s.peek())})
			p.recover()
			continue
		}
		p.s.advance() // consume '('
		p.s.skipSpace()

		switch p.classifyHeader() {
		case headerAnnotation:
			ann, err := p.parseAnnotation(ident, idPos)
			if err != nil {
				errs = append(errs, err)
				p.recover()
				continue
			}
			mod.Annotations = append(mod.Annotations, *ann)

		case headerPgCompatible:
			q, err := p.parsePgCompatibleQuery(ident, idPos)
			if err != nil {
				errs = append(errs, err)
				p.recover()
				continue
			}
			mod.Queries = append(mod.Queries, *q)

		case headerExtended:
			q, err := p.parseExtendedQuery(ident, idPos)
			if err != nil {
				errs = append(errs, err)
				p.recover()
				continue
			}
			mod.Queries = append(mod.Queries, *q)

		default:
			errs = append(errs, &BadMetadataFormError{Path: path, Pos: idPos, Name: ident, Why: "header matches neither a type annotation, the extended form, nor the pg-compatible form"})
			p.recover()
		}
	}
	return mod, errs
}

// classifyHeader peeks past the already-consumed "ident (" to decide
// which of the three productions follows, without consuming input.
// Disambiguation needs only the token right after '(':
//   - '[' starts an Implicit descriptor -> Extended query.
//   - ident followed by "=>" -> PgCompatible query.
//   - ident followed by ':' -> a type-annotation field.
//   - ident followed by ',' or ')' -> a Named descriptor -> Extended query.
func (p *parserState) classifyHeader() headerKind {
	if p.s.peek() == '[' {
		return headerExtended
	}
	if !isIdentStart(p.s.peek()) {
		return headerUnknown
	}
	snap := *p.s
	p.s.readIdent()
	p.s.skipSpace()
	kind := headerExtended
	switch {
	case p.s.peek() == '=' && p.s.peekAt(1) == '>':
		kind = headerPgCompatible
	case p.s.peek() == ':':
		kind = headerAnnotation
	case p.s.peek() == ',' || p.s.peek() == ')':
		kind = headerExtended
	default:
		kind = headerUnknown
	}
	*p.s = snap
	return kind
}

// recover scans forward past the next ';' (or to EOF) so parsing can
// resume at the next query after a malformed one.
func (p *parserState) recover() {
	for !p.s.eof() {
		if p.s.advance() == ';' {
			return
		}
	}
}

func (p *parserState) parseAnnotation(name string, pos position.Position) (*TypeAnnotation, error) {
	ann := &TypeAnnotation{Name: position.NewParsed(name, pos)}
	for {
		p.s.skipSpace()
		if p.s.peek() == ')' {
			p.s.advance()
			return ann, nil
		}
		if !isIdentStart(p.s.peek()) {
			return nil, &UnexpectedTokenError{Path: p.path, Pos: p.s.position(), Want: "field name or ')'", Got: string(p.s.peek())}
		}
		fname, fpos := p.s.readIdent()
		p.s.skipSpace()
		if p.s.peek() != ':' {
			return nil, &UnexpectedTokenError{Path: p.path, Pos: p.s.position(), Want: "':'", Got: string(p.s.peek())}
		}
		p.s.advance()
		p.s.skipSpace()
		typeName, nullable, err := p.readSQLType()
		if err != nil {
			return nil, err
		}
		ann.Fields = append(ann.Fields, TypeAnnotationField{
			Name:     position.NewParsed(fname, fpos),
			Type:     position.NewParsed(typeName, fpos),
			Nullable: nullable,
		})
		p.s.skipSpace()
		switch p.s.peek() {
		case ',':
			p.s.advance()
		case ')':
			p.s.advance()
			return ann, nil
		default:
			return nil, &UnexpectedTokenError{Path: p.path, Pos: p.s.position(), Want: "',' or ')'", Got: string(p.s.peek())}
		}
	}
}

// readSQLType reads `ident { ident | "[]" } ["?"]`.
func (p *parserState) readSQLType() (string, bool, error) {
	if !isIdentStart(p.s.peek()) {
		return "", false, &UnexpectedTokenError{Path: p.path, Pos: p.s.position(), Want: "sql type", Got: string(p.s.peek())}
	}
	var b strings.Builder
	first, _ := p.s.readIdent()
	b.WriteString(first)
	for {
		if p.s.peek() == '[' && p.s.peekAt(1) == ']' {
			p.s.advance()
			p.s.advance()
			b.WriteString("[]")
			continue
		}
		snap := *p.s
		p.s.skipSpace()
		if isIdentStart(p.s.peek()) {
			word, _ := p.s.readIdent()
			b.WriteByte(' ')
			b.WriteString(word)
			continue
		}
		*p.s = snap
		break
	}
	nullable := false
	if p.s.peek() == '?' {
		p.s.advance()
		nullable = true
	}
	return b.String(), nullable, nil
}

func (p *parserState) parseIdentList() ([]position.Parsed[string], error) {
	if p.s.peek() != '[' {
		return nil, &UnexpectedTokenError{Path: p.path, Pos: p.s.position(), Want: "'['", Got: string(p.s.peek())}
	}
	p.s.advance()
	var idents []position.Parsed[string]
	p.s.skipSpace()
	for p.s.peek() != ']' {
		if p.s.eof() {
			return nil, &UnexpectedTokenError{Path: p.path, Pos: p.s.position(), Want: "']'", Got: "EOF"}
		}
		if !isIdentStart(p.s.peek()) {
			return nil, &UnexpectedTokenError{Path: p.path, Pos: p.s.position(), Want: "identifier or ']'", Got: string(p.s.peek())}
		}
		id, ip := p.s.readIdent()
		idents = append(idents, position.NewParsed(id, ip))
		p.s.skipSpace()
		if p.s.peek() == ',' {
			p.s.advance()
			p.s.skipSpace()
		}
	}
	p.s.advance() // consume ']'
	return idents, nil
}

func (p *parserState) parseDescriptor() (Descriptor, error) {
	p.s.skipSpace()
	if p.s.peek() == '[' {
		idents, err := p.parseIdentList()
		if err != nil {
			return nil, err
		}
		return ImplicitDescriptor{Nullable: idents}, nil
	}
	if isIdentStart(p.s.peek()) {
		id, ip := p.s.readIdent()
		return NamedDescriptor{Name: position.NewParsed(id, ip)}, nil
	}
	return nil, &UnexpectedTokenError{Path: p.path, Pos: p.s.position(), Want: "descriptor", Got: string(p.s.peek())}
}

func (p *parserState) parseExtendedQuery(name string, pos position.Position) (*Query, error) {
	q := &Query{Name: position.NewParsed(name, pos), Kind: Extended, Pos: pos}

	params, err := p.parseDescriptor()
	if err != nil {
		return nil, err
	}
	q.Params = params

	p.s.skipSpace()
	if p.s.peek() != ',' {
		return nil, &UnexpectedTokenError{Path: p.path, Pos: p.s.position(), Want: "','", Got: string(p.s.peek())}
	}
	p.s.advance()

	row, err := p.parseDescriptor()
	if err != nil {
		return nil, err
	}
	q.Row = row

	p.s.skipSpace()
	if p.s.peek() != ')' {
		return nil, &UnexpectedTokenError{Path: p.path, Pos: p.s.position(), Want: "')'", Got: string(p.s.peek())}
	}
	p.s.advance()

	p.s.skipSpace()
	if p.s.peek() == '!' {
		p.s.advance()
		p.s.skipSpace()
	}
	if p.s.peek() == ':' {
		p.s.advance()
	}
	p.s.skipSpace()

	sql, bindParams, err := p.scanSQLBody(name, pos)
	if err != nil {
		return nil, err
	}
	q.SQL = sql
	q.BindParams = bindParams
	return q, nil
}

func (p *parserState) parsePgCompatibleQuery(name string, pos position.Position) (*Query, error) {
	q := &Query{Name: position.NewParsed(name, pos), Kind: PgCompatible, Pos: pos}

	for {
		p.s.skipSpace()
		if p.s.peek() == ')' {
			p.s.advance()
			break
		}
		if !isIdentStart(p.s.peek()) {
			return nil, &UnexpectedTokenError{Path: p.path, Pos: p.s.position(), Want: "'params' or 'row'", Got: string(p.s.peek())}
		}
		key, keyPos := p.s.readIdent()
		p.s.skipSpace()
		if p.s.peek() != '=' || p.s.peekAt(1) != '>' {
			return nil, &UnexpectedTokenError{Path: p.path, Pos: p.s.position(), Want: "'=>'", Got: string(p.s.peek())}
		}
		p.s.advance()
		p.s.advance()
		p.s.skipSpace()

		idents, err := p.parseIdentList()
		if err != nil {
			return nil, err
		}
		if p.s.peek() == '?' {
			p.s.advance()
		}

		switch key {
		case "params":
			q.PgParamNames = idents
		case "row":
			q.PgNullableColumns = idents
		default:
			return nil, &BadMetadataFormError{Path: p.path, Pos: keyPos, Name: name, Why: fmt.Sprintf("unknown pg-compatible key %q", key)}
		}

		p.s.skipSpace()
		if p.s.peek() == ',' {
			p.s.advance()
			continue
		}
		if p.s.peek() == ')' {
			p.s.advance()
			break
		}
		return nil, &UnexpectedTokenError{Path: p.path, Pos: p.s.position(), Want: "',' or ')'", Got: string(p.s.peek())}
	}

	p.s.skipSpace()
	if p.s.peek() == '!' {
		p.s.advance()
		p.s.skipSpace()
	}
	if p.s.peek() == ':' {
		p.s.advance()
	}
	p.s.skipSpace()

	sql, bindParams, err := p.scanSQLBody(name, pos)
	if err != nil {
		return nil, err
	}
	q.SQL = sql
	q.BindParams = bindParams
	return q, nil
}

// scanSQLBody consumes the query's raw SQL text up to (and including)
// the terminating top-level ';', rewriting each first-mention of a
// `:ident` bind parameter to `$N` and every repeat mention to the same
// `$N`. Single- and double-quoted regions (and `::` casts) are tracked
// so that a literal colon inside a string, or a type cast, is never
// mistaken for a bind parameter.
func (p *parserState) scanSQLBody(name string, pos position.Position) (string, []position.Parsed[string], error) {
	var out strings.Builder
	order := make(map[string]int)
	var bindParams []position.Parsed[string]
	inSingle, inDouble := false, false

	for {
		if p.s.eof() {
			return "", nil, &UnterminatedQueryError{Path: p.path, Pos: pos, Name: name}
		}
		r := p.s.peek()

		if !inSingle && !inDouble && r == '-' && p.s.peekAt(1) == '-' {
			for !p.s.eof() && p.s.peek() != '\n' {
				out.WriteRune(p.s.advance())
			}
			continue
		}

		if r == '\'' && !inDouble {
			out.WriteRune(p.s.advance())
			inSingle = !inSingle
			if !inSingle && p.s.peek() == '\'' {
				// doubled '' escape: stays inside the string literal.
				out.WriteRune(p.s.advance())
				inSingle = true
			}
			continue
		}

		if r == '"' && !inSingle {
			out.WriteRune(p.s.advance())
			inDouble = !inDouble
			continue
		}

		if !inSingle && !inDouble && r == ';' {
			p.s.advance()
			return out.String(), bindParams, nil
		}

		if !inSingle && !inDouble && r == ':' && p.s.peekAt(1) == ':' {
			// "::" cast operator: consume as a unit so the second ':' is
			// never mistaken for the start of a bind parameter.
			out.WriteRune(p.s.advance())
			out.WriteRune(p.s.advance())
			continue
		}

		if !inSingle && !inDouble && r == ':' && isIdentStart(p.s.peekAt(1)) {
			bindPos := p.s.position()
			p.s.advance()
			ident, _ := p.s.readIdent()
			idx, ok := order[ident]
			if !ok {
				idx = len(order) + 1
				order[ident] = idx
				bindParams = append(bindParams, position.NewParsed(ident, bindPos))
			}
			fmt.Fprintf(&out, "$%d", idx)
			continue
		}

		out.WriteRune(p.s.advance())
	}
}
