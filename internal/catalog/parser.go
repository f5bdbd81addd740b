// Package catalog implements the catalog text format parser (spec
// §4.1, components C1/C2/C3): a lexical scanner, a two-pass recursive
// descent parser (collect declarations, then validate type references),
// and the indexed Catalog the solver and executor consume.
package catalog

import (
	"encoding/json"
	"strconv"

	"github.com/typeforge/synthcore/internal/diagnostics"
)

// typeRef records a use of a type name that must resolve to a declared
// type once the whole file has been parsed (spec §4.1 "reported after
// the whole file is parsed, so declaration order is immaterial").
type typeRef struct {
	name    string
	pos     diagnostics.Pos
	context string
}

// Parser turns catalog source text into a Catalog plus any diagnostics.
type Parser struct {
	src string
	l   *Lexer
	buf *Token

	cat    *Catalog
	errors []*diagnostics.Error
	refs   []typeRef
	fnID   int
}

// Parse is the library entry point named parse_catalog in spec §6.
func Parse(src string) (*Catalog, []*diagnostics.Error) {
	p := &Parser{
		src: stripComments(src),
		cat: newCatalog(),
	}
	p.l = NewLexer(p.src)

	p.parseProgram()

	for _, r := range p.refs {
		if !p.cat.HasType(r.name) {
			p.error(diagnostics.ErrUndeclaredTypeReference, r.pos, "undeclared type %q (%s)", r.name, r.context)
		}
	}
	p.cat.buildIndices()

	return p.cat, p.errors
}

func (p *Parser) error(code diagnostics.ErrorCode, pos diagnostics.Pos, format string, args ...any) {
	p.errors = append(p.errors, diagnostics.New(code, pos, format, args...))
}

func posOf(t Token) diagnostics.Pos { return diagnostics.Pos{Line: t.Line, Column: t.Column} }

func (p *Parser) addRef(name string, t Token, context string) {
	p.refs = append(p.refs, typeRef{name: name, pos: posOf(t), context: context})
}

// --- token stream -----------------------------------------------------

func (p *Parser) peek() Token {
	if p.buf == nil {
		t := p.l.NextToken()
		p.buf = &t
	}
	return *p.buf
}

func (p *Parser) advance() Token {
	t := p.peek()
	p.buf = nil
	return t
}

func (p *Parser) cur() Token { return p.peek() }

func (p *Parser) expect(tt TokenType) (Token, bool) {
	t := p.cur()
	if t.Type != tt {
		return t, false
	}
	return p.advance(), true
}

func (p *Parser) skipNewlines() {
	for p.cur().Type == NEWLINE {
		p.advance()
	}
}

// recoverToNewline discards tokens up to and including the next
// NEWLINE (or EOF), used after a malformed field/declaration so one bad
// line does not cascade into spurious downstream errors.
func (p *Parser) recoverToNewline() {
	for {
		t := p.cur()
		if t.Type == NEWLINE {
			p.advance()
			return
		}
		if t.Type == EOF {
			return
		}
		p.advance()
	}
}

// resyncAt discards the current lexer/lookahead and resumes scanning
// at an absolute byte offset into the (comment-stripped) source, used
// after raw-extracting a json(...)/template(...) implementation literal
// whose contents were never pushed through the token stream.
func (p *Parser) resyncAt(offset int) {
	line, col := lineColAt(p.src, offset)
	p.l = newLexerAt(p.src[offset:], line, col, offset)
	p.buf = nil
}

// --- top level ---------------------------------------------------------

func (p *Parser) parseProgram() {
	for {
		p.skipNewlines()
		t := p.cur()
		if t.Type == EOF {
			return
		}
		if t.Type == IDENT && t.Literal == "type" {
			p.parseTypeDecl()
			continue
		}
		if t.Type == IDENT && t.Literal == "fn" {
			p.parseFnDecl()
			continue
		}
		p.error(diagnostics.ErrMalformedSignature, posOf(t), "unexpected token %q at top level", t.Literal)
		p.recoverToNewline()
	}
}

// --- type declarations ---------------------------------------------------

func (p *Parser) parseTypeDecl() {
	p.advance() // 'type'

	nameTok, ok := p.expect(IDENT)
	if !ok {
		p.error(diagnostics.ErrMalformedType, posOf(nameTok), "expected a type name after 'type'")
		p.recoverToNewline()
		return
	}

	pos := posOf(nameTok)
	if p.cat.HasType(nameTok.Literal) {
		p.error(diagnostics.ErrDuplicateTypeName, pos, "type %q already declared", nameTok.Literal)
	}

	td := &TypeDefinition{Name: nameTok.Literal, Attributes: map[string]string{}, Line: nameTok.Line}

	// Disambiguation rule (spec §4.1): a declaration is a product iff a
	// bare '=' appears before any '['.
	switch p.cur().Type {
	case ASSIGN:
		p.advance()
		td.Product = p.parseProductComponents(nameTok.Literal)
	case LBRACKET:
		p.advance()
		p.parseAttributeList(td)
	}
	p.recoverToNewline()

	if !td.IsProduct() {
		p.parseLegacyAttrLines(td)
	}

	if !p.cat.HasType(nameTok.Literal) {
		p.cat.Types[nameTok.Literal] = td
	}
}

func (p *Parser) parseProductComponents(typeName string) []string {
	var comps []string
	for {
		compTok, ok := p.expect(IDENT)
		if !ok {
			p.error(diagnostics.ErrMalformedType, posOf(compTok), "expected a type name in product declaration for %q", typeName)
			return comps
		}
		comps = append(comps, compTok.Literal)
		p.addRef(compTok.Literal, compTok, "product component of "+typeName)
		if p.cur().Type == CROSS {
			p.advance()
			continue
		}
		return comps
	}
}

func (p *Parser) parseAttributeList(td *TypeDefinition) {
	for {
		if p.cur().Type == RBRACKET {
			p.advance()
			return
		}
		if p.cur().Type == NEWLINE || p.cur().Type == EOF {
			p.error(diagnostics.ErrMalformedType, posOf(p.cur()), "unterminated attribute list for type %q", td.Name)
			return
		}
		keyTok, ok := p.expect(IDENT)
		if !ok {
			p.error(diagnostics.ErrMalformedType, posOf(keyTok), "expected attribute name in type %q", td.Name)
			return
		}
		if _, ok := p.expect(ASSIGN); !ok {
			p.error(diagnostics.ErrMalformedType, posOf(p.cur()), "expected '=' after attribute %q in type %q", keyTok.Literal, td.Name)
			return
		}
		valTok := p.advance()
		td.Attributes[keyTok.Literal] = valTok.Literal

		if p.cur().Type == COMMA {
			p.advance()
			continue
		}
		if p.cur().Type == RBRACKET {
			p.advance()
			return
		}
		p.error(diagnostics.ErrMalformedType, posOf(p.cur()), "expected ',' or ']' in attribute list for type %q", td.Name)
		return
	}
}

// parseLegacyAttrLines accepts the older `attr key:type` dialect (spec
// §4.1 "Legacy shape"): zero or more lines, each beginning with the
// contextual keyword "attr", immediately following an atomic type with
// no braces.
func (p *Parser) parseLegacyAttrLines(td *TypeDefinition) {
	for {
		p.skipNewlines()
		t := p.cur()
		if t.Type != IDENT || t.Literal != "attr" {
			return
		}
		p.advance()
		keyTok, ok := p.expect(IDENT)
		if !ok {
			p.error(diagnostics.ErrMalformedAttr, posOf(keyTok), "malformed attr line for type %q", td.Name)
			p.recoverToNewline()
			continue
		}
		if _, ok := p.expect(COLON); !ok {
			p.error(diagnostics.ErrMalformedAttr, posOf(p.cur()), "expected ':' in attr line for type %q", td.Name)
			p.recoverToNewline()
			continue
		}
		typTok := p.advance()
		td.Attributes[keyTok.Literal] = typTok.Literal
		p.recoverToNewline()
	}
}

// --- function declarations -----------------------------------------------

func (p *Parser) parseFnDecl() {
	fnTok := p.advance() // 'fn'

	nameTok, ok := p.expect(IDENT)
	if !ok {
		p.error(diagnostics.ErrMalformedSignature, posOf(fnTok), "expected a function name after 'fn'")
		p.recoverToNewline()
		return
	}

	if _, ok := p.expect(LBRACE); !ok {
		p.error(diagnostics.ErrMalformedSignature, posOf(p.cur()), "expected '{' after fn %s", nameTok.Literal)
		p.recoverToNewline()
		return
	}

	fd := &FunctionDefinition{Name: nameTok.Literal, Cost: 1, Confidence: 1, Line: nameTok.Line}
	startPos := posOf(fnTok)

	for {
		p.skipNewlines()
		t := p.cur()
		if t.Type == RBRACE {
			p.advance()
			break
		}
		if t.Type == EOF {
			p.error(diagnostics.ErrUnterminatedFuncBlock, startPos, "function %q: unterminated block", nameTok.Literal)
			break
		}

		keyTok, ok := p.expect(IDENT)
		if !ok {
			p.error(diagnostics.ErrMalformedSignature, posOf(t), "expected a field name in fn %s", nameTok.Literal)
			p.recoverToNewline()
			continue
		}
		if _, ok := p.expect(COLON); !ok {
			p.error(diagnostics.ErrMalformedSignature, posOf(p.cur()), "expected ':' after field %q in fn %s", keyTok.Literal, nameTok.Literal)
			p.recoverToNewline()
			continue
		}

		errsBefore := len(p.errors)
		switch keyTok.Literal {
		case "sig":
			p.parseSigField(fd)
		case "impl":
			p.parseImplField(fd)
		case "cost":
			p.parseFloatField(&fd.Cost, nameTok.Literal, "cost")
		case "confidence":
			p.parseFloatField(&fd.Confidence, nameTok.Literal, "confidence")
		case "doc":
			if s, ok := p.expect(STRING); ok {
				fd.Doc = s.Literal
			} else {
				p.error(diagnostics.ErrMalformedSignature, posOf(p.cur()), "expected a string for doc in fn %s", nameTok.Literal)
			}
		case "inverse_of":
			if id, ok := p.expect(IDENT); ok {
				fd.InverseOf = id.Literal
			} else {
				p.error(diagnostics.ErrMalformedSignature, posOf(p.cur()), "expected a function name for inverse_of in fn %s", nameTok.Literal)
			}
		default:
			// Unknown field names are ignored for forward
			// compatibility (spec §4.1); skip their single value
			// token so it isn't mistaken for the next field name.
			p.advance()
		}
		// Fields pack onto shared lines (spec §4.1 examples write whole
		// fn blocks on one line), so only resync to the next line when
		// this field's own parse left the token stream in a bad spot.
		if len(p.errors) > errsBefore {
			p.recoverToNewline()
		}
	}

	if len(fd.Domain) == 0 {
		p.error(diagnostics.ErrMalformedSignature, startPos, "function %q has a missing or empty domain", nameTok.Literal)
		return
	}

	fd.ID = p.fnID
	p.fnID++
	for _, d := range fd.Domain {
		p.addRef(d, nameTok, "domain of "+nameTok.Literal)
	}
	if fd.Codomain != "" {
		p.addRef(fd.Codomain, nameTok, "codomain of "+nameTok.Literal)
	}
	p.cat.Functions = append(p.cat.Functions, fd)
}

func (p *Parser) parseFloatField(dst *float64, fnName, field string) {
	t := p.cur()
	if t.Type != INT && t.Type != FLOAT {
		p.error(diagnostics.ErrMalformedSignature, posOf(t), "expected a number for %s in fn %s", field, fnName)
		return
	}
	p.advance()
	v, err := strconv.ParseFloat(t.Literal, 64)
	if err != nil {
		p.error(diagnostics.ErrMalformedSignature, posOf(t), "invalid number %q for %s in fn %s", t.Literal, field, fnName)
		return
	}
	*dst = v
}

// parseSigField parses `sig: DOMAIN -> CODOMAIN` (spec §4.1 "Signature
// grammar").
func (p *Parser) parseSigField(fd *FunctionDefinition) {
	var domain []string

	if p.cur().Type == LPAREN {
		p.advance()
		for p.cur().Type != RPAREN {
			t, ok := p.expect(IDENT)
			if !ok {
				p.error(diagnostics.ErrMalformedSignature, posOf(t), "expected a type name in signature of fn %s", fd.Name)
				return
			}
			domain = append(domain, t.Literal)
			if p.cur().Type == COMMA {
				p.advance()
				continue
			}
			break
		}
		if _, ok := p.expect(RPAREN); !ok {
			p.error(diagnostics.ErrMalformedSignature, posOf(p.cur()), "expected ')' in signature of fn %s", fd.Name)
			return
		}
	} else {
		for {
			t, ok := p.expect(IDENT)
			if !ok {
				p.error(diagnostics.ErrMalformedSignature, posOf(t), "expected a type name in signature of fn %s", fd.Name)
				return
			}
			domain = append(domain, t.Literal)
			if p.cur().Type == COMMA {
				p.advance()
				continue
			}
			break
		}
	}

	if _, ok := p.expect(ARROW); !ok {
		p.error(diagnostics.ErrMalformedSignature, posOf(p.cur()), "expected '->' in signature of fn %s", fd.Name)
		return
	}
	codTok, ok := p.expect(IDENT)
	if !ok {
		p.error(diagnostics.ErrMalformedSignature, posOf(codTok), "expected a codomain type name in signature of fn %s", fd.Name)
		return
	}

	fd.Domain = domain
	fd.Codomain = codTok.Literal
}

// parseImplField parses `impl: KIND(ARG)` (spec §4.1). json/template
// arguments are raw-extracted from the source text rather than being
// pushed through the token stream, since they may contain arbitrary
// nested JSON structure the catalog grammar's own tokens do not need to
// model.
func (p *Parser) parseImplField(fd *FunctionDefinition) {
	kindTok, ok := p.expect(IDENT)
	if !ok {
		p.error(diagnostics.ErrMalformedImpl, posOf(kindTok), "expected an implementation kind in fn %s", fd.Name)
		return
	}
	kind := ImplKind(kindTok.Literal)

	lparenTok, ok := p.expect(LPAREN)
	if !ok {
		p.error(diagnostics.ErrMalformedImpl, posOf(p.cur()), "expected '(' after impl kind %q in fn %s", kind, fd.Name)
		return
	}

	switch kind {
	case ImplFormula, ImplSPARQL, ImplREST, ImplBuiltin:
		strTok, ok := p.expect(STRING)
		if !ok {
			p.error(diagnostics.ErrMalformedImpl, posOf(p.cur()), "expected a string argument for impl(%s) in fn %s", kind, fd.Name)
			return
		}
		if _, ok := p.expect(RPAREN); !ok {
			p.error(diagnostics.ErrMalformedImpl, posOf(p.cur()), "expected ')' after impl(%s) in fn %s", kind, fd.Name)
			return
		}
		switch kind {
		case ImplFormula:
			fd.Impl = Implementation{Kind: ImplFormula, Formula: strTok.Literal}
		case ImplSPARQL, ImplREST:
			fd.Impl = Implementation{Kind: kind, RemoteRef: strTok.Literal}
		case ImplBuiltin:
			fd.Impl = Implementation{Kind: ImplBuiltin, BuiltinName: strTok.Literal}
		}

	case ImplJSON:
		content, closeIdx, ok := scanBalanced(p.src, lparenTok.Offset+1)
		if !ok {
			p.error(diagnostics.ErrMalformedImpl, posOf(lparenTok), "unterminated json(...) literal in fn %s", fd.Name)
			return
		}
		var data any
		if err := json.Unmarshal([]byte(content), &data); err != nil {
			p.error(diagnostics.ErrMalformedImpl, posOf(lparenTok), "invalid json literal in fn %s: %v", fd.Name, err)
			p.resyncAt(closeIdx + 1)
			return
		}
		fd.Impl = Implementation{Kind: ImplJSON, JSONSchema: data}
		p.resyncAt(closeIdx + 1)

	case ImplTemplate:
		content, closeIdx, ok := scanBalanced(p.src, lparenTok.Offset+1)
		if !ok {
			p.error(diagnostics.ErrMalformedImpl, posOf(lparenTok), "unterminated template(...) literal in fn %s", fd.Name)
			return
		}
		pattern, bindings, err := parseTemplateArg(content)
		if err != nil {
			p.error(diagnostics.ErrMalformedImpl, posOf(lparenTok), "malformed template(...) in fn %s: %v", fd.Name, err)
			p.resyncAt(closeIdx + 1)
			return
		}
		fd.Impl = Implementation{Kind: ImplTemplate, TemplatePattern: pattern, TemplateBindings: bindings}
		p.resyncAt(closeIdx + 1)

	default:
		p.error(diagnostics.ErrMalformedImpl, posOf(kindTok), "unknown implementation kind %q in fn %s", kind, fd.Name)
		// Best-effort recovery: skip to the matching ')' if there is one.
		if content, closeIdx, ok := scanBalanced(p.src, lparenTok.Offset+1); ok {
			_ = content
			p.resyncAt(closeIdx + 1)
		}
	}
}

// parseTemplateArg splits a `template(...)` literal's raw content into
// its pattern string and its binding map (spec §3 "template(pattern,
// bindings)").
func parseTemplateArg(content string) (pattern string, bindings map[string]string, err error) {
	parts := splitTopLevelArgs(content)
	if len(parts) != 2 {
		return "", nil, errMalformed("expected \"pattern\", {bindings}")
	}
	pattern, uqErr := strconv.Unquote(parts[0])
	if uqErr != nil {
		return "", nil, errMalformed("pattern must be a quoted string")
	}
	var raw map[string]any
	if err := json.Unmarshal([]byte(parts[1]), &raw); err != nil {
		return "", nil, errMalformed("bindings must be a {\"name\": \"expr\", ...} object: " + err.Error())
	}
	bindings = make(map[string]string, len(raw))
	for k, v := range raw {
		s, ok := v.(string)
		if !ok {
			return "", nil, errMalformed("binding " + strconv.Quote(k) + " must be an expression string")
		}
		bindings[k] = s
	}
	return pattern, bindings, nil
}

type malformedErr string

func (e malformedErr) Error() string { return string(e) }
func errMalformed(msg string) error  { return malformedErr(msg) }
