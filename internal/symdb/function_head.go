package symdb

import "github.com/standardbeagle/cppsym/internal/token"

// funcHead is the extracted shape of a recognized function declaration or
// definition, the tagged outcome of the head classifier.
type funcHead struct {
	retStart *token.Token
	retEnd   *token.Token
	nameTok  *token.Token
	// qualifiers is the written qualification chain before the name for
	// out-of-line definitions.
	qualifiers []string
	lparen     *token.Token
	destructor bool

	flags       fnFlags
	refQual     RefKind
	noexceptArg *token.Token
	throwArg    *token.Token

	// body is the '{' when a definition follows, nil for declarations.
	body *token.Token
	// end is the token the scope walk continues from.
	end *token.Token
}

// parseFunctionHead classifies a possible function declaration starting at
// declStart (head skips a template prefix). On success the function record
// is created, an inline body is opened on the stack, and the continue token
// is returned.
func (b *builder) parseFunctionHead(declStart, head *token.Token, s *Scope, access Access, stack *[]frame) (*token.Token, bool) {
	fh, ok := b.classifyFunctionHead(head, s)
	if !ok {
		return declStart, false
	}

	fn := b.newFunction(fh.nameTok, s.ID)
	fn.RetStart = fh.retStart
	fn.RetEnd = fh.retEnd
	fn.Access = access
	fn.RefQual = fh.refQual
	fn.NoexceptArg = fh.noexceptArg
	fn.ThrowArg = fh.throwArg
	fn.flags |= fh.flags
	fn.lparen = fh.lparen

	switch {
	case fh.destructor:
		fn.Kind = FuncDestructor
	case s.IsClassKind() && len(fh.qualifiers) == 0 && fh.nameTok.Str() == s.Name && fh.retStart == nil:
		// Copy/move classification happens once arguments are parsed.
		fn.Kind = FuncConstructor
	}

	if len(fh.qualifiers) > 0 {
		// Out-of-line definition or declaration: link after the walk so
		// declaration order does not matter.
		b.pendingDefs = append(b.pendingDefs, pendingDef{
			fn:         fn.ID,
			qualifiers: fh.qualifiers,
			fromScope:  s.ID,
		})
	} else if s.HoldsFunctions() {
		s.Functions = append(s.Functions, fn.ID)
	}

	if fh.body != nil {
		fn.flags |= fnHasBody
		fs := b.newScope(ScopeFunction, fh.nameTok.Str(), fh.nameTok, s.ID)
		fs.BodyStart = fh.body
		fs.BodyEnd = fh.body.Link()
		fs.Function = fn.ID
		fn.BodyScope = fs.ID
		if s.IsClassKind() {
			fs.FunctionOf = s.ID
		}
		b.db.scopeOf[fh.body] = fs.ID
		*stack = append(*stack, frame{scope: fs})
		return fh.body, true
	}
	return fh.end, true
}

// classifyFunctionHead is the deterministic syntactic classifier behind
// parseFunctionHead. It extracts the head fields without creating records.
func (b *builder) classifyFunctionHead(t *token.Token, s *Scope) (funcHead, bool) {
	var fh funcHead
	if t.IsControlKeyword() {
		return fh, false
	}

	// Leading specifiers.
	p := t
	for {
		switch p.Str() {
		case "virtual":
			fh.flags |= fnVirtual
		case "static":
			fh.flags |= fnStatic
		case "inline":
			fh.flags |= fnInline
		case "explicit":
			fh.flags |= fnExplicit
		case "constexpr", "consteval":
			fh.flags |= fnConstexpr
		case "extern":
			fh.flags |= fnExtern
		case "friend":
			fh.flags |= fnFriend
		default:
			goto specifiersDone
		}
		p = p.Next()
	}
specifiersDone:

	retStart := p

	// Scan for the declarator name followed by '('. The scan stops at
	// statement boundaries so a miss cannot run away.
	var nameTok *token.Token
	for q := p; q != nil; q = q.Next() {
		switch q.Str() {
		case ";", "{", "}", "=", ",":
			goto scanDone
		case "(":
			if q.Link() == nil {
				return fh, false
			}
			prev := q.Prev()
			if prev.IsIdentifier() || isOperatorNameEnd(prev) ||
				prev.IsName() && hasOperatorBefore(prev, retStart) {
				nameTok = prev
				goto scanDone
			}
			// Parenthesized declarator or macro: skip the group.
			q = q.Link()
		case "<", "[":
			if q.Link() != nil {
				q = q.Link()
			}
		}
	}
scanDone:
	if nameTok == nil {
		return fh, false
	}

	// operator names: back up to the operator keyword.
	opStart := nameTok
	if isOperatorNameEnd(nameTok) || nameTok.IsName() && hasOperatorBefore(nameTok, retStart) {
		for op := nameTok; op != nil; op = op.Prev() {
			if op.Is("operator") {
				opStart = op
				break
			}
			if op == retStart || op.Is(";") || op.Is("{") || op.Is("}") {
				break
			}
		}
		if !opStart.Is("operator") {
			return fh, false
		}
	}

	fh.lparen = nameTok.Next()
	if !fh.lparen.Is("(") || fh.lparen.Link() == nil {
		return fh, false
	}

	// Qualification chain before the name (or before `operator`).
	chainStart := opStart
	for chainStart.Prev().Is("::") && chainStart.At(-2).IsIdentifier() {
		fh.qualifiers = append([]string{chainStart.At(-2).Str()}, fh.qualifiers...)
		chainStart = chainStart.At(-2)
	}
	if chainStart.Prev().Is("::") {
		chainStart = chainStart.Prev() // global qualification
	}
	if chainStart.Prev().Is("~") {
		fh.destructor = true
		chainStart = chainStart.Prev()
	}

	fh.nameTok = nameTok
	if chainStart != retStart {
		fh.retStart = retStart
		fh.retEnd = chainStart.Prev()
	}

	// Constructors and destructors have no return type. A head with no
	// return type that is not one of those is a call, not a declaration.
	if fh.retStart == nil && !fh.destructor && !opStart.Is("operator") {
		className := s.Name
		if len(fh.qualifiers) > 0 {
			className = fh.qualifiers[len(fh.qualifiers)-1]
		}
		if nameTok.Str() != className {
			return fh, false
		}
	}

	if !b.plausibleParameterList(fh.lparen) {
		return fh, false
	}

	// Trailer after the parameter list.
	rparen := fh.lparen.Link()
	q := rparen.Next()
	for {
		switch q.Str() {
		case "const":
			fh.flags |= fnConst
		case "volatile":
			fh.flags |= fnVolatile
		case "override":
			fh.flags |= fnOverride
		case "final":
			fh.flags |= fnFinal
		case "&":
			fh.refQual = RefLValue
		case "&&":
			fh.refQual = RefRValue
		case "noexcept":
			fh.flags |= fnNoexcept
			if q.Next().Is("(") && q.Next().Link() != nil {
				fh.noexceptArg = q.At(2)
				q = q.Next().Link()
			}
		case "throw":
			if !q.Next().Is("(") || q.Next().Link() == nil {
				return fh, false
			}
			fh.flags |= fnThrowSpec
			fh.throwArg = q.At(2)
			q = q.Next().Link()
		case "->":
			// Trailing return type replaces the written `auto`.
			fh.retStart = q.Next()
			for q.Next() != nil && !q.Next().Is("{") && !q.Next().Is(";") {
				q = q.Next()
				if q.Link() != nil && q.Is("<") {
					q = q.Link()
				}
				fh.retEnd = q
			}
		case "=":
			switch q.Next().Str() {
			case "0":
				fh.flags |= fnPure
			case "default":
				fh.flags |= fnDefaulted
			case "delete":
				fh.flags |= fnDeleted
			default:
				return fh, false
			}
			q = q.Next()
		case ":":
			// Constructor initializer list: scan to the body.
			body := memberInitBody(q)
			if body == nil {
				return fh, false
			}
			fh.body = body
			fh.end = body
			return fh, true
		case "{":
			fh.body = q
			fh.end = q
			return fh, true
		case ";":
			fh.end = q
			return fh, true
		default:
			return fh, false
		}
		q = q.Next()
	}
}

func isOperatorNameEnd(t *token.Token) bool {
	switch {
	case t == nil || !t.IsOp():
		return false
	case t.Is(")"):
		return t.Prev().Is("(") && t.At(-2).Is("operator")
	case t.Is("]"):
		return t.Prev().Is("[") && t.At(-2).Is("operator")
	default:
		return t.Prev().Is("operator")
	}
}

// hasOperatorBefore detects conversion operator heads (`operator int (`,
// `operator const char * (`) by walking back from the name to the keyword.
func hasOperatorBefore(t, limit *token.Token) bool {
	for q := t; q != nil; q = q.Prev() {
		if q.Is("operator") {
			return true
		}
		if !q.IsName() && !q.Is("*") && !q.Is("&") && !q.Is("::") {
			return false
		}
		if q == limit {
			return false
		}
	}
	return false
}

// memberInitBody walks a constructor initializer list from ':' to the
// opening brace of the body.
func memberInitBody(colon *token.Token) *token.Token {
	for q := colon.Next(); q != nil; q = q.Next() {
		switch q.Str() {
		case "(", "[":
			if q.Link() == nil {
				return nil
			}
			q = q.Link()
		case "{":
			// Brace-init of a member unless preceded by ',' pattern
			// exhaustion; the body brace directly follows either the
			// colon chain or a closing bracket.
			if q.Prev().Is(")") || q.Prev().Is("}") || looksLikeBodyBrace(q) {
				return q
			}
			if q.Link() == nil {
				return nil
			}
			q = q.Link()
		case ";", "}":
			return nil
		}
	}
	return nil
}

// looksLikeBodyBrace: a member brace-init is always followed by ',' or the
// body brace; the body brace itself is followed by statements.
func looksLikeBodyBrace(brace *token.Token) bool {
	if brace.Link() == nil {
		return false
	}
	after := brace.Link().Next()
	return !after.Is(",") && !after.Is("{")
}

// plausibleParameterList checks that every top-level comma-separated chunk
// inside the parens could be a parameter declaration. `int x(5)` and
// `int x(y + 1)` fail here and fall through to the variable classifier.
func (b *builder) plausibleParameterList(lparen *token.Token) bool {
	rparen := lparen.Link()
	p := lparen.Next()
	if p == rparen {
		return true
	}
	for {
		if p.Is("...") {
			p = p.Next()
		} else if !startsParameterType(p) {
			return false
		}
		// Advance to the next top-level comma.
		for p != rparen && !p.Is(",") {
			if p.Link() != nil && (p.Is("(") || p.Is("[") || p.Is("{") || p.Is("<")) {
				p = p.Link()
			}
			p = p.Next()
		}
		if p == rparen {
			return true
		}
		p = p.Next()
	}
}

func startsParameterType(p *token.Token) bool {
	if p.IsStandardType() || p.Is("const") || p.Is("volatile") || p.Is("auto") ||
		p.Is("struct") || p.Is("class") || p.Is("enum") || p.Is("union") ||
		p.Is("decltype") || p.Is("typename") || p.Is("::") {
		return true
	}
	// A plain identifier is ambiguous; the language resolves the
	// ambiguity toward a type (most vexing parse), and so do we.
	return p.IsIdentifier()
}
