package symdb

import "github.com/standardbeagle/cppsym/internal/token"

// buildVariables is pass two: for every accepted declaration in every
// scope, derive a Variable record. Parameters are parsed here too so the
// constructor classifier and overload matcher see argument types.
func (b *builder) buildVariables() {
	for _, s := range b.db.scopes[1:] {
		switch {
		case s.Kind == ScopeEnum:
			// Enumerators are not variables.
		case s.IsClassKind():
			b.scanMembers(s)
		case s.Kind == ScopeGlobal || s.Kind == ScopeNamespace:
			b.scanDeclarations(s, flagGlobal, AccessNone)
		case s.IsExecutable():
			if s.condStart != nil {
				b.scanConditionRegion(s)
			}
			b.scanDeclarations(s, flagLocal, AccessNone)
		}
	}
	for _, fn := range b.db.functions[1:] {
		if fn.lparen != nil {
			b.parseParameters(fn)
		}
	}
}

// bodyRange returns the token region directly inside a scope's braces, or
// the whole stream for the global scope.
func (b *builder) bodyRange(s *Scope) (*token.Token, *token.Token) {
	if s.Kind == ScopeGlobal {
		return b.db.list.Front(), nil
	}
	if s.BodyStart == nil {
		return nil, nil
	}
	return s.BodyStart.Next(), s.BodyEnd
}

// bodySegments returns every token region directly inside a scope's
// braces. Reopened namespaces contribute one segment per body, in source
// order.
func (b *builder) bodySegments(s *Scope) []bodySpan {
	var segs []bodySpan
	for _, span := range s.earlierBodies {
		segs = append(segs, bodySpan{span.start.Next(), span.end})
	}
	start, end := b.bodyRange(s)
	if start != nil {
		segs = append(segs, bodySpan{start, end})
	}
	return segs
}

// scanDeclarations walks the statements directly inside a scope (child
// scope bodies are skipped wholesale) and records variable declarations.
// Every body of a reopened namespace is scanned.
func (b *builder) scanDeclarations(s *Scope, storage varFlags, access Access) {
	for _, seg := range b.bodySegments(s) {
		b.scanDeclRegion(s, seg.start, seg.end, storage, access)
	}
}

func (b *builder) scanDeclRegion(s *Scope, t, end *token.Token, storage varFlags, access Access) {
	for t != nil && t != end {
		if t.Is("{") && t.Link() != nil {
			t = t.Link().Next()
			continue
		}
		if t.Is(";") || t.Is(":") {
			t = t.Next()
			continue
		}
		if t.Is("if") || t.Is("for") || t.Is("while") || t.Is("switch") || t.Is("catch") {
			t = t.Next()
			if t.Is("constexpr") {
				t = t.Next()
			}
			if t.Is("(") && t.Link() != nil {
				t = t.Link().Next()
			}
			continue
		}
		if t.Is("else") || t.Is("do") || t.Is("try") {
			t = t.Next()
			continue
		}
		if t.Is("case") {
			for t != nil && t != end && !t.Is(":") {
				t = t.Next()
			}
			continue
		}
		if t.Is("default") && t.Next().Is(":") {
			t = t.At(2)
			continue
		}
		if t.Is("using") || t.Is("typedef") || t.Is("friend") ||
			t.Is("template") || t.Is("namespace") {
			t = advanceStatement(t, end)
			continue
		}
		d := b.classifyDeclaration(t, s)
		if d.outcome == DeclVariable {
			b.addDeclarators(d, s, storage, access)
		}
		t = advanceStatement(t, end)
	}
}

func advanceStatement(t, end *token.Token) *token.Token {
	st := skipToStatementEnd(t)
	if st == nil {
		return end
	}
	if st == t {
		return t.Next()
	}
	return st.Next()
}

// scanMembers walks a class body tracking access specifiers and records
// data members.
func (b *builder) scanMembers(s *Scope) {
	access := s.defaultAccess
	t, end := b.bodyRange(s)
	for t != nil && t != end {
		if token.Match(t, "public|protected|private :") {
			switch t.Str() {
			case "public":
				access = AccessPublic
			case "protected":
				access = AccessProtected
			case "private":
				access = AccessPrivate
			}
			t = t.At(2)
			continue
		}
		if t.Is("{") && t.Link() != nil {
			t = t.Link().Next()
			continue
		}
		if t.Is(";") {
			t = t.Next()
			continue
		}
		if t.Is("using") || t.Is("typedef") || t.Is("friend") ||
			t.Is("template") || t.Is("static_assert") {
			t = advanceStatement(t, end)
			continue
		}
		d := b.classifyDeclaration(t, s)
		if d.outcome == DeclVariable {
			b.addDeclarators(d, s, flagClassMember, access)
		}
		t = advanceStatement(t, end)
	}
}

// scanConditionRegion registers declarations written in a control-scope
// header: loop init variables, range-for variables, if-init declarations,
// and if-condition declarations. Each is a separate declaration owned by
// the control scope.
func (b *builder) scanConditionRegion(s *Scope) {
	t := s.condStart
	for t != nil {
		d := b.classifyDeclaration(t, s)
		if d.outcome == DeclVariable {
			b.addDeclarators(d, s, flagLocal, AccessNone)
		} else if d.outcome == DeclNone {
			// Range-for declaration has no initializer shape the
			// classifier accepts: `for (auto &x : xs)`.
			if rd, ok := b.classifyRangeForDecl(t, s); ok {
				b.addDeclarators(rd, s, flagLocal, AccessNone)
			}
		}
		// Next region chunk after ';' at top level.
		for t != nil && t != s.condEnd && !t.Is(";") {
			if t.Link() != nil && (t.Is("(") || t.Is("[") || t.Is("{") || t.Is("<")) {
				t = t.Link()
			}
			t = t.Next()
		}
		if t == nil || t == s.condEnd {
			return
		}
		t = t.Next()
	}
}

// classifyRangeForDecl accepts `type &name : range` header declarations.
func (b *builder) classifyRangeForDecl(t *token.Token, s *Scope) (declInfo, bool) {
	d := b.classifyDeclarator(t)
	if d.outcome != DeclVariable || d.nameTok == nil || !d.nameTok.Next().Is(":") {
		return declInfo{}, false
	}
	return d, true
}

// classifyDeclarator is the core declarator shape parse without statement
// terminator checks, used for range-for headers and parameters.
func (b *builder) classifyDeclarator(t *token.Token) declInfo {
	var d declInfo
	p := t
	for {
		switch p.Str() {
		case "const":
			d.constness |= 1
		case "volatile":
			d.volatileness |= 1
		case "constexpr":
			d.constexpr = true
			d.constness |= 1
		default:
			goto qualDone
		}
		p = p.Next()
	}
qualDone:
	typeStart := p
	typeEnd, ok := b.parseTypeTokens(p)
	if !ok {
		return d
	}
	p = typeEnd.Next()
	for p.Is("const") || p.Is("volatile") {
		if p.Is("const") {
			d.constness |= 1
		} else {
			d.volatileness |= 1
		}
		p = p.Next()
	}
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
	if p.IsIdentifier() {
		d.nameTok = p
		p = p.Next()
		for p.Is("[") && p.Link() != nil {
			dim := Dimension{Start: p.Next(), End: p.Link().Prev()}
			if p.Next() == p.Link() {
				dim.Start, dim.End = nil, nil
			}
			d.dims = append(d.dims, dim)
			p = p.Link().Next()
		}
	}
	d.outcome = DeclVariable
	d.typeStart = typeStart
	d.typeEnd = typeEnd
	d.after = p
	return d
}

// addDeclarators records the classified declarator and any further
// comma-separated declarators sharing the same written type.
func (b *builder) addDeclarators(d declInfo, s *Scope, storage varFlags, access Access) {
	b.addVariable(d, s, storage, access)
	t := d.after
	for {
		// Skip initializer to the ',' or ';'.
		for t != nil && !t.Is(",") && !t.Is(";") {
			if t.Link() != nil && (t.Is("(") || t.Is("[") || t.Is("{") || t.Is("<")) {
				t = t.Link()
			}
			t = t.Next()
		}
		if !t.Is(",") {
			return
		}
		t = t.Next()
		// Further declarators share the base type but not pointers,
		// references, or dimensions.
		next := declInfo{
			outcome:   DeclVariable,
			typeStart: d.typeStart,
			typeEnd:   d.typeEnd,
			constness: d.constness & 1,
			static:    d.static,
			extern:    d.extern,
			mutable:   d.mutable,
			constexpr: d.constexpr,
		}
		for {
			switch t.Str() {
			case "*":
				next.indirection++
				t = t.Next()
				for t.Is("const") || t.Is("volatile") {
					if t.Is("const") {
						next.constness |= 1 << uint(next.indirection)
					}
					t = t.Next()
				}
				continue
			case "&":
				next.ref = RefLValue
				t = t.Next()
				continue
			case "&&":
				next.ref = RefRValue
				t = t.Next()
				continue
			}
			break
		}
		if !t.IsIdentifier() {
			return
		}
		next.nameTok = t
		t = t.Next()
		for t.Is("[") && t.Link() != nil {
			dim := Dimension{Start: t.Next(), End: t.Link().Prev()}
			if t.Next() == t.Link() {
				dim.Start, dim.End = nil, nil
			}
			next.dims = append(next.dims, dim)
			t = t.Link().Next()
		}
		next.after = t
		b.addVariable(next, s, storage, access)
	}
}

// addVariable materializes one Variable record from a classified
// declarator.
func (b *builder) addVariable(d declInfo, s *Scope, storage varFlags, access Access) *Variable {
	v := b.newVariable(d.nameTok, s.ID)
	v.TypeStart = d.typeStart
	v.TypeEnd = d.typeEnd
	v.Indirection = d.indirection
	v.Constness = d.constness
	v.Volatileness = d.volatileness
	v.Ref = d.ref
	v.Access = access
	v.flags |= storage
	if d.static {
		v.flags |= flagStatic
	}
	if d.extern {
		v.flags |= flagExtern
	}
	if d.mutable {
		v.flags |= flagMutable
	}
	if d.constexpr {
		v.flags |= flagConstexpr
	}
	if d.funcPtrArray {
		v.flags |= flagFuncPointerArray
	}
	// Dimension sizes are folded after enumerators are evaluated.
	v.Dimensions = append(v.Dimensions, d.dims...)
	v.Type = b.resolveDeclaredType(d.typeStart, d.typeEnd, s)
	s.Variables = append(s.Variables, v.ID)
	return v
}

// parseParameters builds the argument Variables of a function from its
// parameter list tokens.
func (b *builder) parseParameters(fn *Function) {
	scopeID := fn.BodyScope
	if scopeID == 0 {
		scopeID = fn.Scope
	}
	s := b.db.Scope(scopeID)
	if s == nil {
		return
	}
	rparen := fn.lparen.Link()
	p := fn.lparen.Next()
	if p == rparen {
		return
	}
	if p.Is("void") && p.Next() == rparen {
		return
	}
	idx := 0
	for p != nil && p != rparen {
		if p.Is("...") {
			fn.flags |= fnVariadic
			break
		}
		d := b.classifyDeclarator(p)
		if d.outcome == DeclVariable {
			v := b.addParameter(d, s, idx)
			fn.Args = append(fn.Args, v.ID)
			idx++
		}
		// Advance past default values and trailing noise to the comma.
		for p != nil && p != rparen && !p.Is(",") {
			if p.Link() != nil && (p.Is("(") || p.Is("[") || p.Is("{") || p.Is("<")) {
				p = p.Link()
			}
			p = p.Next()
		}
		if p.Is(",") {
			p = p.Next()
		}
	}
}

func (b *builder) addParameter(d declInfo, s *Scope, idx int) *Variable {
	v := b.addVariable(d, s, flagArgument|flagLocal, AccessNone)
	v.Index = idx
	return v
}
