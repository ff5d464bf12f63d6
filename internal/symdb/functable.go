package symdb

// findScopePath resolves a qualification chain like ["A", "B"] to a class
// or namespace scope visible from s, honoring using-directives.
func (b *builder) findScopePath(s *Scope, parts []string) *Scope {
	if len(parts) == 0 {
		return nil
	}
	for _, sc := range b.scopeChain(s) {
		if found := b.descendNamed(sc, parts); found != nil {
			return found
		}
		for _, nsID := range sc.usingNamespaces {
			if ns := b.db.Scope(nsID); ns != nil {
				if found := b.descendNamed(ns, parts); found != nil {
					return found
				}
			}
		}
	}
	return nil
}

func (b *builder) descendNamed(from *Scope, parts []string) *Scope {
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

// linkDefinitions matches out-of-line definitions to their in-class or
// in-namespace declarations. The pass runs after the whole walk, so
// declaring the class first or the qualified definition first yields the
// same Function record.
func (b *builder) linkDefinitions() {
	for _, pd := range b.pendingDefs {
		fn := b.db.Function(pd.fn)
		if fn == nil {
			continue
		}
		from := b.db.Scope(pd.fromScope)
		target := b.findScopePath(from, pd.qualifiers)
		if target == nil {
			// Unknown class or namespace: keep the function in the
			// scope the definition appeared in, best effort.
			b.diag(fn.NameTok, "unresolved qualified name for %q", fn.Name())
			if from != nil && from.HoldsFunctions() {
				from.Functions = append(from.Functions, fn.ID)
			}
			continue
		}

		if decl := b.findMatchingDeclaration(target, fn); decl != nil {
			b.mergeDefinition(decl, fn)
			continue
		}

		// No prior declaration: the definition itself declares the
		// function in the qualified scope.
		fn.Scope = target.ID
		if target.HoldsFunctions() {
			target.Functions = append(target.Functions, fn.ID)
		}
		b.adoptIntoClass(target, fn)
	}
	b.mergeRedeclarations()
}

// mergeRedeclarations collapses a prototype and its same-scope definition
// (either order) into one record, matching on name, signature, cv suffix,
// and ref-qualifier.
func (b *builder) mergeRedeclarations() {
	for _, s := range b.db.scopes[1:] {
		if !s.HoldsFunctions() {
			continue
		}
		kept := s.Functions[:0]
		for _, id := range s.Functions {
			fn := b.db.Function(id)
			if fn == nil || fn.ID != id {
				continue
			}
			merged := false
			for _, kid := range kept {
				decl := b.db.Function(kid)
				if decl == nil || decl == fn || decl.Name() != fn.Name() {
					continue
				}
				if (decl.Kind == FuncDestructor) != (fn.Kind == FuncDestructor) {
					continue
				}
				if decl.IsConst() != fn.IsConst() || decl.RefQual != fn.RefQual {
					continue
				}
				if decl.HasBody() && fn.HasBody() {
					continue
				}
				if !b.sameParameters(decl, fn) {
					continue
				}
				if fn.HasBody() {
					b.mergeDefinition(decl, fn)
				} else {
					b.mergeDefinition(fn, decl)
				}
				merged = true
				break
			}
			if !merged {
				kept = append(kept, id)
			}
		}
		s.Functions = kept
	}
}

// adoptIntoClass finishes a function attached to a class scope: kind for
// constructors and the functionOf back-link for the body.
func (b *builder) adoptIntoClass(target *Scope, fn *Function) {
	if target.IsClassKind() {
		if fn.Kind == FuncPlain && fn.Name() == target.Name && fn.RetStart == nil {
			fn.Kind = FuncConstructor
		}
		if bs := b.db.Scope(fn.BodyScope); bs != nil {
			bs.FunctionOf = target.ID
		}
	}
}

// mergeDefinition folds an out-of-line definition record into the declared
// function so both orders produce one record identity. The provisional
// arena slot aliases the declaration.
func (b *builder) mergeDefinition(decl, def *Function) {
	decl.DefTok = def.NameTok
	decl.flags |= def.flags & (fnHasBody | fnInline | fnConstexpr)
	if def.BodyScope != 0 {
		decl.BodyScope = def.BodyScope
		if bs := b.db.Scope(def.BodyScope); bs != nil {
			bs.Function = decl.ID
			if target := b.db.Scope(decl.Scope); target != nil && target.IsClassKind() {
				bs.FunctionOf = target.ID
			}
		}
	}
	if len(decl.Args) == 0 && len(def.Args) > 0 {
		decl.Args = def.Args
	}
	// Definition parameter names become usable for the body.
	b.db.functions[def.ID] = decl
}

// findMatchingDeclaration finds a declaration in target whose signature
// matches the out-of-line definition: name, argument count and types
// (ignoring top-level cv on by-value parameters), cv suffix, and
// ref-qualifier.
func (b *builder) findMatchingDeclaration(target *Scope, def *Function) *Function {
	for _, id := range target.Functions {
		decl := b.db.Function(id)
		if decl == nil || decl == def {
			continue
		}
		if decl.Name() != def.Name() {
			continue
		}
		if (decl.Kind == FuncDestructor) != (def.Kind == FuncDestructor) {
			continue
		}
		if decl.IsConst() != def.IsConst() || decl.IsVolatile() != def.IsVolatile() {
			continue
		}
		if decl.RefQual != def.RefQual {
			continue
		}
		if !b.sameParameters(decl, def) {
			continue
		}
		if decl.HasBody() && def.HasBody() {
			continue // an overload already defined elsewhere
		}
		return decl
	}
	return nil
}

// sameParameters compares the declared parameter lists of two functions.
func (b *builder) sameParameters(x, y *Function) bool {
	if len(x.Args) != len(y.Args) {
		return false
	}
	for i := range x.Args {
		vx := b.db.Variable(x.Args[i])
		vy := b.db.Variable(y.Args[i])
		if vx == nil || vy == nil {
			return false
		}
		if !b.sameParameterType(vx, vy) {
			return false
		}
	}
	return true
}

func (b *builder) sameParameterType(x, y *Variable) bool {
	if x.Indirection != y.Indirection || x.Ref != y.Ref {
		return false
	}
	if len(x.Dimensions) != len(y.Dimensions) {
		return false
	}
	// Top-level cv on by-value parameters does not participate.
	cx, cy := x.Constness, y.Constness
	if x.Indirection == 0 && x.Ref == RefNone {
		cx &^= 1
		cy &^= 1
	}
	if cx != cy {
		return false
	}
	if x.Type != 0 && y.Type != 0 {
		return x.Type == y.Type
	}
	return normalizedTypeText(x) == normalizedTypeText(y)
}

func normalizedTypeText(v *Variable) string {
	name := coreTypeName(v.TypeStart, v.TypeEnd)
	if name != "" {
		return name
	}
	return tokenRangeText(v.TypeStart, v.TypeEnd)
}

// markImplicitVirtual marks derived functions overriding a base virtual
// with an identical signature as virtual even without the keyword, and
// records the override link.
func (b *builder) markImplicitVirtual() {
	for _, s := range b.db.scopes[1:] {
		if !s.IsClassKind() || s.Type == 0 {
			continue
		}
		typ := b.db.Type(s.Type)
		for _, fnID := range s.Functions {
			fn := b.db.Function(fnID)
			if fn == nil || fn.Kind != FuncPlain && fn.Kind != FuncDestructor {
				continue
			}
			base, _ := b.db.findOverridden(typ, fn, make(map[TypeID]bool))
			if base != nil {
				fn.Overrides = base.ID
				if !fn.HasVirtualSpecifier() {
					fn.flags |= fnImplicitVirtual
				}
			}
		}
	}
}

// GetOverriddenFunction walks the base-class graph and returns the base
// function fn overrides, plus whether every base branch was resolvable.
// When a base is of unknown type the search still reports its best finding
// but flags incompleteness.
func (db *SymbolDatabase) GetOverriddenFunction(fn *Function) (*Function, bool) {
	if fn == nil {
		return nil, true
	}
	owner := db.Scope(fn.Scope)
	if owner == nil || owner.Type == 0 {
		return nil, true
	}
	return db.findOverridden(db.Type(owner.Type), fn, make(map[TypeID]bool))
}

func (db *SymbolDatabase) findOverridden(typ *Type, fn *Function, seen map[TypeID]bool) (*Function, bool) {
	if typ == nil || seen[typ.ID] {
		return nil, true
	}
	seen[typ.ID] = true
	allResolved := true
	var found *Function
	for _, base := range typ.Bases {
		if !base.Found {
			allResolved = false
			continue
		}
		baseType := db.Type(base.Type)
		if baseType == nil || baseType.Scope == 0 {
			allResolved = false
			continue
		}
		baseScope := db.Scope(baseType.Scope)
		for _, id := range baseScope.Functions {
			cand := db.Function(id)
			if cand == nil || !cand.IsVirtual() && !cand.HasVirtualSpecifier() {
				continue
			}
			if matchesOverrideSignature(db, cand, fn) {
				if found == nil {
					found = cand
				}
			}
		}
		sub, subResolved := db.findOverridden(baseType, fn, seen)
		if found == nil {
			found = sub
		}
		allResolved = allResolved && subResolved
	}
	return found, allResolved
}

func matchesOverrideSignature(db *SymbolDatabase, base, derived *Function) bool {
	if base.Kind == FuncDestructor || derived.Kind == FuncDestructor {
		return base.Kind == FuncDestructor && derived.Kind == FuncDestructor
	}
	if base.Name() != derived.Name() {
		return false
	}
	if base.IsConst() != derived.IsConst() || base.RefQual != derived.RefQual {
		return false
	}
	if len(base.Args) != len(derived.Args) {
		return false
	}
	for i := range base.Args {
		vb := db.Variable(base.Args[i])
		vd := db.Variable(derived.Args[i])
		if vb == nil || vd == nil {
			return false
		}
		if vb.Indirection != vd.Indirection || vb.Ref != vd.Ref {
			return false
		}
		if vb.Type != 0 && vd.Type != 0 && vb.Type != vd.Type {
			return false
		}
		if vb.Type == 0 && vd.Type == 0 &&
			normalizedTypeText(vb) != normalizedTypeText(vd) {
			return false
		}
	}
	return true
}
