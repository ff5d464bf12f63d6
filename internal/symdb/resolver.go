package symdb

import (
	"strings"

	"github.com/standardbeagle/cppsym/internal/token"
)

// scopeChain lists the scopes a name lookup from s walks, inner to outer.
// Method bodies also see their class scope and its ancestors, matching
// qualified-name lookup for out-of-line definitions.
func (b *builder) scopeChain(s *Scope) []*Scope {
	var chain []*Scope
	seen := make(map[ScopeID]bool)
	var walk func(sc *Scope)
	walk = func(sc *Scope) {
		for ; sc != nil; sc = b.db.Scope(sc.Parent) {
			if seen[sc.ID] {
				return
			}
			seen[sc.ID] = true
			chain = append(chain, sc)
			if of := b.db.Scope(sc.FunctionOf); of != nil {
				walk(of)
			}
		}
	}
	walk(s)
	return chain
}

// expandAlias rewrites a leading namespace-alias segment of a qualified
// name using the aliases visible from s.
func (b *builder) expandAlias(s *Scope, name string) string {
	head, rest, qualified := strings.Cut(name, "::")
	if !qualified {
		return name
	}
	for _, sc := range b.scopeChain(s) {
		for _, a := range sc.namespaceAliases {
			if a.alias == head {
				return a.target + "::" + rest
			}
		}
	}
	return name
}

// resolveTypeName resolves a plain or qualified type name visible from s,
// honoring using-directives. Returns 0 when unresolved.
func (b *builder) resolveTypeName(s *Scope, name string) TypeID {
	name = strings.TrimPrefix(name, "::")
	name = b.expandAlias(s, name)

	for _, sc := range b.scopeChain(s) {
		if id := b.typeInScope(sc, name); id != 0 {
			return id
		}
		for _, nsID := range sc.usingNamespaces {
			if ns := b.db.Scope(nsID); ns != nil {
				if id := b.typeInScope(ns, name); id != 0 {
					return id
				}
			}
		}
	}
	// Unqualified using-declarations: `using ns::Type;`.
	base := name
	if i := strings.LastIndex(name, "::"); i >= 0 {
		base = name[i+2:]
	}
	for _, sc := range b.scopeChain(s) {
		for _, ud := range sc.usingDecls {
			if strings.HasSuffix(ud, "::"+base) || ud == base {
				if id, ok := b.db.typeIndex[ud]; ok && base == name {
					return id
				}
			}
		}
	}
	return 0
}

func (b *builder) typeInScope(sc *Scope, name string) TypeID {
	qual := name
	if prefix := b.db.QualifiedName(sc); prefix != "" {
		qual = prefix + "::" + name
	}
	if id, ok := b.db.typeIndex[qual]; ok {
		return id
	}
	return 0
}

// lookupTypedef resolves an alias name visible from s.
func (b *builder) lookupTypedef(s *Scope, name string) (typedefInfo, bool) {
	name = strings.TrimPrefix(name, "::")
	for _, sc := range b.scopeChain(s) {
		qual := name
		if prefix := b.db.QualifiedName(sc); prefix != "" {
			qual = prefix + "::" + name
		}
		if info, ok := b.db.typedefs[qual]; ok {
			return info, true
		}
		for _, nsID := range sc.usingNamespaces {
			if ns := b.db.Scope(nsID); ns != nil {
				qual := name
				if prefix := b.db.QualifiedName(ns); prefix != "" {
					qual = prefix + "::" + name
				}
				if info, ok := b.db.typedefs[qual]; ok {
					return info, true
				}
			}
		}
	}
	return typedefInfo{}, false
}

// coreTypeName extracts the qualified name part of a written type range,
// skipping elaboration keywords and template arguments: for
// `const std::vector<int>` it returns "std::vector".
func coreTypeName(start, end *token.Token) string {
	var parts []string
	for t := start; t != nil; t = t.Next() {
		switch {
		case t.Is("const") || t.Is("volatile") || t.Is("struct") || t.Is("class") ||
			t.Is("union") || t.Is("enum") || t.Is("typename") || t.Is("::"):
			// skip; '::' joins handled below
		case t.Is("<"):
			if t.Link() != nil && t.Link() != end && end != nil {
				t = t.Link()
			} else {
				return strings.Join(parts, "::")
			}
		case t.IsIdentifier():
			parts = append(parts, t.Str())
		case t.IsStandardType():
			return "" // builtin, no user type
		default:
			return strings.Join(parts, "::")
		}
		if t == end {
			break
		}
	}
	return strings.Join(parts, "::")
}

// resolveDeclaredType resolves the written declared type of a variable to a
// Type record, looking through typedefs and using aliases. Returns 0 for
// builtins and unresolved names.
func (b *builder) resolveDeclaredType(start, end *token.Token, s *Scope) TypeID {
	name := coreTypeName(start, end)
	for depth := 0; name != "" && depth < 10; depth++ {
		if id := b.resolveTypeName(s, name); id != 0 {
			return id
		}
		info, ok := b.lookupTypedef(s, name)
		if !ok {
			return 0
		}
		from := b.db.Scope(info.scope)
		if from == nil {
			return 0
		}
		s = from
		name = coreTypeName(info.start, info.end)
	}
	return 0
}

// findNamespaceScope resolves a (possibly qualified) namespace name
// visible from s.
func (b *builder) findNamespaceScope(s *Scope, name string) *Scope {
	name = b.expandAlias(s, strings.TrimPrefix(name, "::"))
	parts := strings.Split(name, "::")
	for _, sc := range b.scopeChain(s) {
		if found := b.descend(sc, parts); found != nil {
			return found
		}
	}
	return nil
}

func (b *builder) descend(from *Scope, parts []string) *Scope {
	cur := from
	for _, part := range parts {
		next := b.db.nestedScope(cur, part)
		if next == nil {
			return nil
		}
		cur = next
	}
	return cur
}

// resolveUsingDirectives binds the names collected during the scope walk
// to namespace scopes. Unresolvable directives are kept as diagnostics and
// otherwise ignored.
func (b *builder) resolveUsingDirectives() {
	for _, s := range b.db.scopes[1:] {
		for _, name := range s.pendingUsing {
			if ns := b.findNamespaceScope(s, name); ns != nil && ns.Kind == ScopeNamespace {
				s.usingNamespaces = append(s.usingNamespaces, ns.ID)
			} else {
				b.diag(s.DefTok, "unresolved using namespace %q", name)
			}
		}
	}
}

// resolveBases links base-class names to Type records, tolerating unknown
// bases ("name known, Type unknown"). Friend names resolve here too.
func (b *builder) resolveBases() {
	for _, t := range b.db.types[1:] {
		from := b.db.Scope(t.EnclosingScope)
		if from == nil {
			from = b.db.GlobalScope()
		}
		for i := range t.Bases {
			base := &t.Bases[i]
			if id := b.resolveTypeName(from, base.Name); id != 0 && id != t.ID {
				base.Type = id
				base.Found = true
			} else if hint := b.db.SuggestTypeName(base.Name); hint != "" {
				b.diag(base.NameTok, "unknown base class %q, did you mean %q", base.Name, hint)
			}
		}
		for i := range t.Friends {
			fr := &t.Friends[i]
			if id := b.resolveTypeName(from, fr.Name); id != 0 {
				fr.Type = id
			}
		}
	}
}

// classifyConstructors upgrades constructor kinds to copy or move once the
// single parameter's declared type is known.
func (b *builder) classifyConstructors() {
	for _, fn := range b.db.functions[1:] {
		if fn.Kind != FuncConstructor || len(fn.Args) != 1 {
			continue
		}
		arg := b.db.Variable(fn.Args[0])
		if arg == nil || arg.Indirection > 0 {
			continue
		}
		owner := b.db.Scope(fn.Scope)
		if owner == nil || owner.Type == 0 || arg.Type != owner.Type {
			continue
		}
		switch arg.Ref {
		case RefLValue:
			fn.Kind = FuncCopyConstructor
		case RefRValue:
			fn.Kind = FuncMoveConstructor
		}
	}
}
