package symdb

import (
	"strings"

	"github.com/standardbeagle/cppsym/internal/token"
)

// frame is one entry of the scope stack during the forward walk.
type frame struct {
	scope  *Scope
	access Access
}

// buildScopes is pass one: a single forward walk over the token stream that
// partitions it into nested scopes and creates the skeleton records for
// types and functions. Constructs it cannot classify degrade to diagnostics
// and best-effort records; only token-linkage corruption is fatal.
func (b *builder) buildScopes() error {
	global := b.newScope(ScopeGlobal, "", nil, 0)
	stack := []frame{{scope: global}}

	// transparentClose marks closing braces of extern "C" style blocks
	// that do not open a scope.
	transparentClose := make(map[*token.Token]bool)

	for t := b.db.list.Front(); t != nil; t = t.Next() {
		f := &stack[len(stack)-1]
		s := f.scope

		if t.Is("}") {
			if transparentClose[t] {
				continue
			}
			if s.BodyEnd == t {
				if len(stack) > 1 {
					stack = stack[:len(stack)-1]
				}
				continue
			}
			// A closer we did not open a scope for. Bracket links are
			// verified by the tokenizer, so this is a body we chose
			// not to model (degraded construct).
			continue
		}

		// Access specifiers.
		if s.IsClassKind() && token.Match(t, "public|protected|private :") {
			switch t.Str() {
			case "public":
				f.access = AccessPublic
			case "protected":
				f.access = AccessProtected
			case "private":
				f.access = AccessPrivate
			}
			t = t.Next()
			continue
		}

		// extern "C" { ... } is transparent: no scope, no linkage model.
		if token.Match(t, "extern %str% {") {
			open := t.At(2)
			transparentClose[open.Link()] = true
			t = open
			continue
		}
		if token.Match(t, "extern %str%") {
			t = t.Next()
			continue
		}

		if t.Is("using") {
			t = b.parseUsing(t, s)
			continue
		}
		if t.Is("typedef") {
			t = b.parseTypedef(t, s)
			continue
		}

		if t.Is("namespace") {
			nt, handled := b.parseNamespace(t, s, &stack)
			if handled {
				t = nt
				continue
			}
		}

		if s.IsClassKind() && t.Is("friend") {
			t = b.parseFriend(t, s)
			continue
		}

		// Template prefix: remember it, then classify what follows.
		declStart := t
		head := t
		if token.Match(t, "template <") && t.Next().Link() != nil {
			head = t.Next().Link().Next()
			if head == nil {
				continue
			}
		}

		if head.Is("enum") {
			nt, handled := b.parseEnum(head, s)
			if handled {
				t = nt
				continue
			}
		}

		if head.Is("class") || head.Is("struct") || head.Is("union") {
			nt, handled := b.parseClass(head, s, &stack)
			if handled {
				t = nt
				continue
			}
		}

		// Control structures and blocks inside executable scopes.
		if s.IsExecutable() {
			if nt, handled := b.parseControl(t, s, &stack); handled {
				t = nt
				continue
			}
			if nt, handled := b.parseLambda(t, s, &stack); handled {
				t = nt
				continue
			}
			if t.Is("{") {
				if t.Link() == nil {
					return syntaxErrorAt(b.file(), t, "unmatched %q", "{")
				}
				p := t.Prev()
				if p == nil || p.Is(";") || p.Is("{") || p.Is("}") || p.Is(":") ||
					p.Is("else") || p.Is("do") || p.Is("try") {
					block := b.newScope(ScopeBlock, "", t, s.ID)
					block.BodyStart = t
					block.BodyEnd = t.Link()
					b.db.scopeOf[t] = block.ID
					stack = append(stack, frame{scope: block})
					continue
				}
				// Brace initializer or braced list inside a statement:
				// no scope of its own.
				t = t.Link()
				continue
			}
			// Statements are left for the variable and value-type
			// passes; skip to the end of the statement so nested
			// parens cannot confuse scope detection.
			continue
		}

		// Function heads live in class, namespace, and global scopes.
		if s.HoldsFunctions() && (head.IsName() || head.Is("~") || head.Is("::")) {
			if nt, handled := b.parseFunctionHead(declStart, head, s, f.access, &stack); handled {
				t = nt
				continue
			}
		}

		// Possible unexpanded macro at declaration level:
		// an all-caps name followed by parentheses and no statement shape.
		if s.HoldsFunctions() && head.IsIdentifier() && isMacroName(head.Str()) &&
			head.Next().Is("(") && head.Next().Link() != nil &&
			!head.Next().Link().Next().Is(";") {
			b.diagErr(head, &UnknownMacroError{
				File: b.file(), Line: head.Line(), Col: head.Col(), Name: head.Str(),
			})
			t = head.Next().Link()
			continue
		}
	}
	return nil
}

func isMacroName(s string) bool {
	if s == "" {
		return false
	}
	upper := false
	for _, c := range s {
		if c >= 'a' && c <= 'z' {
			return false
		}
		if c >= 'A' && c <= 'Z' {
			upper = true
		}
	}
	return upper
}

// skipToStatementEnd advances to the ';' ending the statement starting at
// t, skipping linked groups. Returns the last token when no ';' follows.
func skipToStatementEnd(t *token.Token) *token.Token {
	for ; t != nil; t = t.Next() {
		switch t.Str() {
		case ";":
			return t
		case "(", "[", "{":
			if t.Link() != nil {
				t = t.Link()
			}
		case "}":
			return t.Prev()
		}
		if t.Next() == nil {
			return t
		}
	}
	return nil
}

// parseUsing handles using-directives, using-declarations, and alias
// declarations. Returns the token to continue from.
func (b *builder) parseUsing(t *token.Token, s *Scope) *token.Token {
	if token.Match(t, "using namespace") {
		name, after := readQualifiedName(t.At(2))
		if name != "" {
			s.pendingUsing = append(s.pendingUsing, name)
		}
		return skipToStatementEnd(after)
	}
	if token.Match(t, "using %var% =") {
		start := t.At(3)
		end := skipToStatementEnd(start)
		b.recordTypedef(t.Next(), start, end.Prev(), s)
		return end
	}
	// using-declaration: `using ns::name;` imports a name.
	name, after := readQualifiedName(t.Next())
	if name != "" {
		s.usingDecls = append(s.usingDecls, name)
	}
	return skipToStatementEnd(after)
}

// parseTypedef records `typedef type... name;`. Function-pointer typedefs
// (`typedef ret (*name)(args);`) are recorded with the whole declarator as
// the aliased range.
func (b *builder) parseTypedef(t *token.Token, s *Scope) *token.Token {
	end := skipToStatementEnd(t)
	if end == nil || !end.Is(";") {
		return end
	}
	// The alias name is the last identifier of the declaration.
	var name *token.Token
	for p := t.Next(); p != nil && p != end; p = p.Next() {
		if p.IsIdentifier() {
			name = p
		}
	}
	if name == nil {
		return end
	}
	typeEnd := name.Prev()
	if name.Next().Is(")") {
		// Function pointer alias: alias the whole declaration.
		typeEnd = end.Prev()
	}
	b.recordTypedef(name, t.Next(), typeEnd, s)
	return end
}

func (b *builder) recordTypedef(name, start, end *token.Token, s *Scope) {
	if name == nil || start == nil {
		return
	}
	key := name.Str()
	if prefix := b.db.QualifiedName(s); prefix != "" {
		key = prefix + "::" + key
	}
	b.db.typedefs[key] = typedefInfo{scope: s.ID, start: start, end: end}
}

// readQualifiedName reads `a::b::c` starting at t. Returns the joined name
// and the token after it.
func readQualifiedName(t *token.Token) (string, *token.Token) {
	var parts []string
	if t.Is("::") {
		t = t.Next()
	}
	for t.IsIdentifier() {
		parts = append(parts, t.Str())
		if t.Next().Is("::") && t.At(2).IsIdentifier() {
			t = t.At(2)
			continue
		}
		return strings.Join(parts, "::"), t.Next()
	}
	return strings.Join(parts, "::"), t
}

// parseNamespace opens a namespace scope, handling anonymous and nested
// (`namespace a::b {`) forms.
func (b *builder) parseNamespace(t *token.Token, s *Scope, stack *[]frame) (*token.Token, bool) {
	p := t.Next()
	var names []string
	for p.IsIdentifier() {
		names = append(names, p.Str())
		if p.Next().Is("::") {
			p = p.At(2)
			continue
		}
		p = p.Next()
		break
	}
	if p.Is("=") {
		// Namespace alias: record as typedef-style alias of the target.
		name, after := readQualifiedName(p.Next())
		if len(names) == 1 && name != "" {
			s.namespaceAliases = append(s.namespaceAliases, nsAlias{alias: names[0], target: name})
		}
		return skipToStatementEnd(after), true
	}
	if !p.Is("{") {
		return t, false
	}
	if len(names) == 0 {
		names = []string{""}
	}
	parent := s
	for i, name := range names {
		ns := b.findOrAddNamespace(parent, name, t)
		if i == len(names)-1 {
			if ns.BodyStart != nil {
				ns.earlierBodies = append(ns.earlierBodies, bodySpan{ns.BodyStart, ns.BodyEnd})
			}
			ns.BodyStart = p
			ns.BodyEnd = p.Link()
			b.db.scopeOf[p] = ns.ID
			*stack = append(*stack, frame{scope: ns})
		}
		parent = ns
	}
	return p, true
}

// findOrAddNamespace reuses an already-open namespace of the same name so
// reopened namespaces share one scope record.
func (b *builder) findOrAddNamespace(parent *Scope, name string, def *token.Token) *Scope {
	for _, id := range parent.Children {
		child := b.db.Scope(id)
		if child != nil && child.Kind == ScopeNamespace && child.Name == name {
			return child
		}
	}
	return b.newScope(ScopeNamespace, name, def, parent.ID)
}

// parseFriend appends a friend declaration to the owning class's type.
func (b *builder) parseFriend(t *token.Token, s *Scope) *token.Token {
	typ := b.db.Type(s.Type)
	end := skipToStatementEnd(t)
	p := t.Next()
	for p != nil && (p.Is("class") || p.Is("struct") || p.Is("union") || p.Is("constexpr")) {
		p = p.Next()
	}
	name, after := readQualifiedName(p)
	if name == "" || typ == nil {
		return end
	}
	fi := FriendInfo{Name: name, NameTok: p}
	if after.Is("(") {
		// Friend function: the name is the function, resolved later if
		// at all. Keep the name only.
		fi.NameTok = nil
		for q := p; q != nil && q != after; q = q.Next() {
			if q.IsIdentifier() {
				fi.NameTok = q
			}
		}
		if fi.NameTok != nil {
			fi.Name = fi.NameTok.Str()
		}
	}
	typ.Friends = append(typ.Friends, fi)
	return end
}

// parseEnum handles enum definitions and forward declarations. The enum
// body is recorded as a scope but never recursed into; enumerators are
// collected here and folded by the enumerator pass.
func (b *builder) parseEnum(t *token.Token, s *Scope) (*token.Token, bool) {
	p := t.Next()
	enumClass := false
	if p.Is("class") || p.Is("struct") {
		enumClass = true
		p = p.Next()
	}
	var nameTok *token.Token
	name := ""
	if p.IsIdentifier() {
		nameTok = p
		name = p.Str()
		p = p.Next()
	}
	// Underlying type.
	if p.Is(":") {
		p = p.Next()
		for p != nil && (p.IsName() || p.Is("::")) && !p.Is("{") {
			p = p.Next()
		}
	}
	if p.Is(";") {
		if name != "" {
			typ := b.internType(ClassEnum, name, nameTok, s.ID)
			typ.EnumClass = enumClass
		}
		return p, true
	}
	if !p.Is("{") || p.Link() == nil {
		return t, false
	}

	typ := b.internType(ClassEnum, name, nameTok, s.ID)
	typ.EnumClass = enumClass
	es := b.newScope(ScopeEnum, name, t, s.ID)
	es.BodyStart = p
	es.BodyEnd = p.Link()
	es.EnumClass = enumClass
	es.Type = typ.ID
	typ.Scope = es.ID
	b.db.scopeOf[p] = es.ID

	// Collect enumerators.
	for e := p.Next(); e != nil && e != es.BodyEnd; e = e.Next() {
		if !e.IsIdentifier() {
			continue
		}
		en := &Enumerator{NameTok: e, Scope: es.ID}
		if e.Next().Is("=") {
			en.Start = e.At(2)
			q := en.Start
			for q != nil && q != es.BodyEnd && !q.Is(",") {
				if q.Link() != nil && (q.Is("(") || q.Is("{") || q.Is("[")) {
					q = q.Link()
				}
				en.End = q
				q = q.Next()
			}
			e = q.Prev()
		}
		typ.Enumerators = append(typ.Enumerators, en)
		// Move to the comma (or closer).
		for e.Next() != nil && !e.Next().Is(",") && e.Next() != es.BodyEnd {
			e = e.Next()
		}
		if e.Next().Is(",") {
			e = e.Next()
		}
	}
	return es.BodyEnd, true
}

// parseClass handles class/struct/union definitions, forward declarations,
// and qualified reopenings. Elaborated uses (`struct A x;`) are left for
// the variable pass.
func (b *builder) parseClass(t *token.Token, s *Scope, stack *[]frame) (*token.Token, bool) {
	kind := ScopeClass
	class := ClassClass
	switch t.Str() {
	case "struct":
		kind = ScopeStruct
		class = ClassStruct
	case "union":
		kind = ScopeUnion
		class = ClassUnion
	}

	p := t.Next()
	// Skip attributes and declspec-style noise.
	for token.Match(p, "[ [") {
		if p.Link() != nil {
			p = p.Link().Next()
		} else {
			break
		}
	}

	// Name, possibly qualified for reopenings (`struct A::B { };`).
	enclosing := s
	var nameTok *token.Token
	name := ""
	for p.IsIdentifier() {
		if p.Next().Is("::") && p.At(2).IsIdentifier() {
			if nested := b.db.nestedScope(enclosing, p.Str()); nested != nil {
				enclosing = nested
			}
			p = p.At(2)
			continue
		}
		nameTok = p
		name = p.Str()
		p = p.Next()
		break
	}
	// Template specialization arguments after the name.
	if p.Is("<") && p.Link() != nil {
		p = p.Link().Next()
		if p.Is(">") { // linked ">>" leaves a stray closer
			p = p.Next()
		}
	}
	if p.Is("final") {
		p = p.Next()
	}

	switch {
	case p.Is(";") && nameTok != nil:
		b.internType(class, name, nameTok, enclosing.ID)
		return p, true
	case p.Is(":") || p.Is("{"):
		typ := b.internType(class, name, nameTok, enclosing.ID)
		body := p
		if p.Is(":") {
			var bases []BaseInfo
			bases, body = b.parseBaseList(p.Next())
			typ.Bases = append(typ.Bases, bases...)
		}
		if !body.Is("{") || body.Link() == nil {
			// Incomplete base list with no body: keep the forward
			// declaration and degrade.
			b.diag(p, "incomplete %s %s", class, name)
			return skipToStatementEnd(p), true
		}
		cs := b.newScope(kind, name, t, enclosing.ID)
		cs.BodyStart = body
		cs.BodyEnd = body.Link()
		cs.Type = typ.ID
		typ.Scope = cs.ID
		b.db.scopeOf[body] = cs.ID
		*stack = append(*stack, frame{scope: cs, access: cs.defaultAccess})
		return body, true
	}
	// Elaborated use: not handled here.
	return t, false
}

// parseBaseList reads base-class specifiers up to the body brace. Bases
// that cannot be resolved later keep Found == false.
func (b *builder) parseBaseList(p *token.Token) ([]BaseInfo, *token.Token) {
	var bases []BaseInfo
	for p != nil && !p.Is("{") && !p.Is(";") {
		base := BaseInfo{Access: AccessNone}
		for {
			switch {
			case p.Is("virtual"):
				base.Virtual = true
				p = p.Next()
				continue
			case p.Is("public"):
				base.Access = AccessPublic
				p = p.Next()
				continue
			case p.Is("protected"):
				base.Access = AccessProtected
				p = p.Next()
				continue
			case p.Is("private"):
				base.Access = AccessPrivate
				p = p.Next()
				continue
			}
			break
		}
		base.NameTok = p
		base.Name, p = readQualifiedName(p)
		if p.Is("<") && p.Link() != nil {
			p = p.Link().Next()
		}
		if base.Name != "" {
			bases = append(bases, base)
		}
		if p.Is(",") {
			p = p.Next()
			continue
		}
		if !p.Is("{") {
			// Malformed base list: stop at the next safe point.
			p = skipToBodyOrEnd(p)
			break
		}
	}
	return bases, p
}

func skipToBodyOrEnd(p *token.Token) *token.Token {
	for p != nil && !p.Is("{") && !p.Is(";") {
		if p.Link() != nil && (p.Is("(") || p.Is("[")) {
			p = p.Link()
		}
		if p.Next() == nil {
			return p
		}
		p = p.Next()
	}
	return p
}

// parseControl opens scopes for if/else/for/while/do/switch/try/catch with
// braced bodies. Braceless bodies stay in the enclosing scope.
func (b *builder) parseControl(t *token.Token, s *Scope, stack *[]frame) (*token.Token, bool) {
	var kind ScopeKind
	switch t.Str() {
	case "if":
		kind = ScopeIf
	case "else":
		if t.Next().Is("if") {
			return t, false // handled by the nested if
		}
		if t.Next().Is("{") {
			return b.openControlBody(ScopeElse, t, t.Next(), nil, nil, s, stack), true
		}
		return t, false
	case "for":
		kind = ScopeFor
	case "while":
		kind = ScopeWhile
	case "do":
		if t.Next().Is("{") {
			return b.openControlBody(ScopeDo, t, t.Next(), nil, nil, s, stack), true
		}
		return t, false
	case "switch":
		kind = ScopeSwitch
	case "try":
		if t.Next().Is("{") {
			return b.openControlBody(ScopeTry, t, t.Next(), nil, nil, s, stack), true
		}
		return t, false
	case "catch":
		kind = ScopeCatch
	default:
		return t, false
	}

	paren := t.Next()
	if t.Is("if") && (paren.Is("constexpr") || paren.Is("!")) {
		paren = paren.Next()
	}
	if !paren.Is("(") || paren.Link() == nil {
		return t, false
	}
	body := paren.Link().Next()
	if !body.Is("{") {
		// Braceless body: condition declarations degrade to the
		// enclosing scope, walk continues at the closing paren.
		return paren.Link(), true
	}
	return b.openControlBody(kind, t, body, paren.Next(), paren.Link().Prev(), s, stack), true
}

func (b *builder) openControlBody(kind ScopeKind, def, body, condStart, condEnd *token.Token, s *Scope, stack *[]frame) *token.Token {
	cs := b.newScope(kind, "", def, s.ID)
	cs.BodyStart = body
	cs.BodyEnd = body.Link()
	cs.condStart = condStart
	cs.condEnd = condEnd
	b.db.scopeOf[body] = cs.ID
	*stack = append(*stack, frame{scope: cs})
	return body
}

// parseLambda recognizes `[capture](params) specs { body }` in expression
// position and opens a lambda scope plus its function record.
func (b *builder) parseLambda(t *token.Token, s *Scope, stack *[]frame) (*token.Token, bool) {
	if !t.Is("[") || t.Link() == nil {
		return t, false
	}
	// Subscript if the previous token ends a value.
	prev := t.Prev()
	if prev.IsIdentifier() || prev.Is(")") || prev.Is("]") || prev.IsNumber() || prev.IsString() {
		return t, false
	}
	p := t.Link().Next()
	var lparen *token.Token
	if p.Is("(") && p.Link() != nil {
		lparen = p
		p = p.Link().Next()
	}
	for p.Is("mutable") || p.Is("constexpr") || p.Is("noexcept") {
		p = p.Next()
	}
	if p.Is("->") {
		p = p.Next()
		for p != nil && !p.Is("{") && !p.Is(";") && !p.Is(")") && !p.Is(",") {
			if p.Is("<") && p.Link() != nil {
				p = p.Link()
			}
			p = p.Next()
		}
	}
	if !p.Is("{") || p.Link() == nil {
		return t, false
	}

	fn := b.newFunction(t, s.ID)
	fn.Kind = FuncLambda
	fn.flags |= fnHasBody
	fn.lparen = lparen
	ls := b.newScope(ScopeLambda, "", t, s.ID)
	ls.BodyStart = p
	ls.BodyEnd = p.Link()
	ls.Function = fn.ID
	fn.BodyScope = ls.ID
	b.db.scopeOf[p] = ls.ID
	*stack = append(*stack, frame{scope: ls})
	return p, true
}
