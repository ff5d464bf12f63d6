package symdb

import "github.com/standardbeagle/cppsym/internal/token"

// DeclOutcome is the explicit result of the declaration classifier.
type DeclOutcome uint8

const (
	// DeclNone: the statement is not a variable declaration.
	DeclNone DeclOutcome = iota
	// DeclVariable: a variable declaration with extracted fields.
	DeclVariable
	// DeclFunctionLike: rejected because the shape is a function
	// declaration or call.
	DeclFunctionLike
)

// declInfo carries the fields extracted by the classifier.
type declInfo struct {
	outcome DeclOutcome

	typeStart *token.Token
	typeEnd   *token.Token
	nameTok   *token.Token

	indirection  int
	constness    uint32
	volatileness uint32
	ref          RefKind

	// dims are the array dimension token ranges, unfolded.
	dims []Dimension

	funcPtrArray bool

	static    bool
	extern    bool
	mutable   bool
	constexpr bool

	// after is the token following the declarator: ';', '=', ',', '{',
	// or '(' of a paren initializer.
	after *token.Token
}

// classifyDeclaration decides whether the statement starting at t declares
// a variable, and extracts the declarator fields when it does. It is
// purely syntactic apart from known-type lookups used to break the
// `a * b ;` ambiguity.
func (b *builder) classifyDeclaration(t *token.Token, s *Scope) declInfo {
	var d declInfo

	if t == nil || !t.IsName() && !t.Is("::") {
		return d
	}
	if t.IsControlKeyword() || t.Is("using") || t.Is("typedef") || t.Is("template") ||
		t.Is("namespace") || t.Is("public") || t.Is("protected") || t.Is("private") ||
		t.Is("goto") || t.Is("new") || t.Is("delete") || t.Is("operator") {
		return d
	}
	switch t.Str() {
	case "static_cast", "dynamic_cast", "const_cast", "reinterpret_cast":
		return d
	}

	p := t

	// Storage class and top-level qualifiers.
	for {
		switch p.Str() {
		case "static":
			d.static = true
		case "extern":
			d.extern = true
		case "mutable":
			d.mutable = true
		case "constexpr", "constinit":
			d.constexpr = true
			d.constness |= 1
		case "const":
			d.constness |= 1
		case "volatile":
			d.volatileness |= 1
		case "thread_local", "register", "inline":
			// storage noise
		default:
			goto qualifiersDone
		}
		p = p.Next()
	}
qualifiersDone:

	// The type.
	typeStart := p
	typeEnd, ok := b.parseTypeTokens(p)
	if !ok {
		return d
	}
	p = typeEnd.Next()

	// Trailing cv qualifiers bind to the base type.
	for p.Is("const") || p.Is("volatile") {
		if p.Is("const") {
			d.constness |= 1
		} else {
			d.volatileness |= 1
		}
		p = p.Next()
	}

	// Pointer and reference declarators.
	for {
		switch p.Str() {
		case "*":
			d.indirection++
			p = p.Next()
			for p.Is("const") || p.Is("volatile") {
				if p.Is("const") {
					d.constness |= 1 << uint(d.indirection)
				} else {
					d.volatileness |= 1 << uint(d.indirection)
				}
				p = p.Next()
			}
			continue
		case "&":
			d.ref = RefLValue
			p = p.Next()
			continue
		case "&&":
			d.ref = RefRValue
			p = p.Next()
			continue
		}
		break
	}

	// Parenthesized declarator: pointer-to-array `int (*x)[3]` and
	// array-of-function-pointers `int (*x[3])(args)`.
	if token.Match(p, "( *") {
		return b.classifyParenDeclarator(&d, typeStart, typeEnd, p)
	}

	if !p.IsIdentifier() {
		return d
	}
	d.nameTok = p
	p = p.Next()

	// Array dimensions.
	for p.Is("[") && p.Link() != nil {
		dim := Dimension{Start: p.Next(), End: p.Link().Prev()}
		if p.Next() == p.Link() {
			dim.Start, dim.End = nil, nil // []
		}
		d.dims = append(d.dims, dim)
		p = p.Link().Next()
	}

	switch p.Str() {
	case ";", ",", "=", "{":
		// `T v{...}` must have a linked brace; `}` would have ended the
		// statement earlier.
	case "(":
		// Paren initializer vs. function declaration: an argument that
		// can only be an expression makes it an initializer.
		if !parenLooksLikeInit(p) {
			d.outcome = DeclFunctionLike
			return d
		}
	case ":":
		// Bitfield member: `int flags : 3;`
		if !s.IsClassKind() || !p.Next().IsNumber() && !p.Next().IsIdentifier() {
			return d
		}
	default:
		return d
	}

	// `a * b ;` style ambiguity: only treat as declaration when the type
	// name is plausible.
	if d.indirection > 0 && typeStart == typeEnd && typeStart.IsIdentifier() &&
		s.IsExecutable() && !b.knownTypeName(s, typeStart.Str()) {
		if b.db.varOf[typeStart] != 0 || b.knownVariableName(s, typeStart.Str()) {
			return declInfo{}
		}
	}

	d.outcome = DeclVariable
	d.typeStart = typeStart
	d.typeEnd = typeEnd
	d.after = p
	return d
}

// classifyParenDeclarator handles `T (*name)[N]` and `T (*name[N])(args)`.
func (b *builder) classifyParenDeclarator(d *declInfo, typeStart, typeEnd, lparen *token.Token) declInfo {
	rparen := lparen.Link()
	if rparen == nil {
		return declInfo{}
	}
	p := lparen.Next()
	for p.Is("*") {
		d.indirection++
		p = p.Next()
	}
	if !p.IsIdentifier() {
		return declInfo{}
	}
	d.nameTok = p
	p = p.Next()
	insideDims := false
	for p.Is("[") && p.Link() != nil {
		insideDims = true
		dim := Dimension{Start: p.Next(), End: p.Link().Prev()}
		if p.Next() == p.Link() {
			dim.Start, dim.End = nil, nil
		}
		d.dims = append(d.dims, dim)
		p = p.Link().Next()
	}
	if p != rparen {
		return declInfo{}
	}
	p = rparen.Next()
	switch {
	case p.Is("[") && p.Link() != nil:
		// Pointer to array: the pointer is to the array, dims describe
		// the pointee; record dims and keep indirection.
		for p.Is("[") && p.Link() != nil {
			dim := Dimension{Start: p.Next(), End: p.Link().Prev()}
			d.dims = append(d.dims, dim)
			p = p.Link().Next()
		}
	case p.Is("(") && p.Link() != nil:
		// Function pointer (array): `T (*name[N])(args)`.
		if insideDims {
			d.funcPtrArray = true
		}
		p = p.Link().Next()
	}
	switch p.Str() {
	case ";", ",", "=", "{":
	default:
		return declInfo{}
	}
	d.outcome = DeclVariable
	d.typeStart = typeStart
	d.typeEnd = typeEnd
	d.after = p
	return *d
}

// parseTypeTokens consumes a type-as-written starting at p: builtin type
// sequences, elaborated types, decltype, auto, and qualified template
// names. Returns the last token of the type.
func (b *builder) parseTypeTokens(p *token.Token) (*token.Token, bool) {
	// decltype(expr)
	if p.Is("decltype") && p.Next().Is("(") && p.Next().Link() != nil {
		return p.Next().Link(), true
	}
	if p.Is("auto") {
		return p, true
	}

	// Elaborated type keyword used redundantly, C style.
	if p.Is("struct") || p.Is("class") || p.Is("union") || p.Is("enum") || p.Is("typename") {
		p = p.Next()
	}

	// Builtin type sequences: `unsigned long long`, `signed char`, ...
	if p.IsStandardType() {
		end := p
		for p.Next().IsStandardType() {
			p = p.Next()
			end = p
		}
		return end, true
	}

	// Qualified name with optional template arguments:
	// a::b::c<args>::d ...
	if p.Is("::") {
		p = p.Next()
	}
	if !p.IsIdentifier() {
		return nil, false
	}
	end := p
	for {
		if p.Next().Is("<") && p.Next().Link() != nil {
			p = p.Next().Link()
			end = p
		}
		if p.Next().Is("::") && p.At(2).IsIdentifier() {
			p = p.At(2)
			end = p
			continue
		}
		break
	}
	return end, true
}

// parenLooksLikeInit distinguishes `int x(5)` from `int x(int)`: any
// argument chunk starting with a literal or operator is an expression.
func parenLooksLikeInit(lparen *token.Token) bool {
	rparen := lparen.Link()
	if rparen == nil || lparen.Next() == rparen {
		return false // `T x()` is a function declaration
	}
	for p := lparen.Next(); p != nil && p != rparen; p = p.Next() {
		if p.IsLiteral() || p.Is("+") || p.Is("-") || p.Is("!") {
			return true
		}
		if p.Link() != nil && (p.Is("(") || p.Is("[") || p.Is("{") || p.Is("<")) {
			p = p.Link()
		}
	}
	return false
}

// knownTypeName reports whether name resolves to a type, typedef, library
// pod type, or builtin from the given scope.
func (b *builder) knownTypeName(s *Scope, name string) bool {
	if _, ok := b.lib.PodType(name); ok {
		return true
	}
	if b.resolveTypeName(s, name) != 0 {
		return true
	}
	_, ok := b.lookupTypedef(s, name)
	return ok
}

// knownVariableName reports whether name is a variable already declared in
// an enclosing scope.
func (b *builder) knownVariableName(s *Scope, name string) bool {
	for sc := s; sc != nil; sc = b.db.Scope(sc.Parent) {
		for _, id := range sc.Variables {
			v := b.db.Variable(id)
			if v != nil && v.Name() == name {
				return true
			}
		}
	}
	return false
}
