package symdb

import "strings"

// Overload selection ranks candidates per argument: exact matches beat
// promotions, promotions beat conversions, and variadic candidates are a
// last resort. A tie between distinct candidates leaves the call
// unresolved rather than guessing.

const (
	argNoMatch = iota
	argConversion
	argPromotion
	argExact
)

// functionsNamed collects functions called name that are visible in s,
// following base classes when s is a record scope.
func (b *builder) functionsNamed(s *Scope, name string, seen map[ScopeID]bool) []*Function {
	if s == nil || seen[s.ID] {
		return nil
	}
	if seen == nil {
		seen = make(map[ScopeID]bool)
	}
	seen[s.ID] = true

	var out []*Function
	for _, id := range s.Functions {
		f := b.db.Function(id)
		if f != nil && f.Name() == name {
			out = append(out, f)
		}
	}
	if s.IsClassKind() && s.Type != 0 {
		typ := b.db.Type(s.Type)
		for i := range typ.Bases {
			base := &typ.Bases[i]
			if !base.Found {
				continue
			}
			bt := b.db.Type(base.Type)
			if bt == nil || bt.Scope == 0 {
				continue
			}
			out = append(out, b.functionsNamed(b.db.Scope(bt.Scope), name, seen)...)
		}
	}
	return out
}

// callCandidates resolves the candidate set for a call written as
// qual::name(...) from scope `from`. An empty qual means unqualified
// lookup along the scope chain, honoring using-directives; name hiding
// stops the walk at the first scope that contributes candidates.
func (b *builder) callCandidates(from *Scope, qual []string, name string) []*Function {
	if len(qual) > 0 {
		target := b.findScopePath(from, qual)
		if target == nil {
			return nil
		}
		return b.functionsNamed(target, name, nil)
	}
	for _, sc := range b.scopeChain(from) {
		cands := b.functionsNamed(sc, name, nil)
		for _, nsID := range sc.usingNamespaces {
			cands = append(cands, b.functionsNamed(b.db.Scope(nsID), name, nil)...)
		}
		// `using ns::f;` imports that overload set here.
		for _, ud := range sc.usingDecls {
			if !strings.HasSuffix(ud, "::"+name) {
				continue
			}
			parts := strings.Split(ud, "::")
			if target := b.findScopePath(from, parts[:len(parts)-1]); target != nil {
				cands = append(cands, b.functionsNamed(target, name, nil)...)
			}
		}
		if len(cands) > 0 {
			return cands
		}
	}
	return nil
}

// argMatchQuality rates how well one argument type fits one parameter.
func (b *builder) argMatchQuality(param *Variable, arg *ValueType) int {
	if param == nil {
		return argNoMatch
	}
	pv := param.VT
	if pv == nil {
		pv = b.variableValueType(param)
		param.VT = pv
	}
	if arg.IsUnknown() || pv.IsUnknown() {
		// Unknown is not evidence against a candidate.
		return argConversion
	}

	if pv.Pointer > 0 || arg.Pointer > 0 {
		return pointerMatchQuality(pv, arg)
	}

	// const T& binds like T for ranking purposes.
	if pv.Kind == arg.Kind && pv.Kind == VTNonStd {
		if pv.TypeID != 0 && pv.TypeID == arg.TypeID {
			return argExact
		}
		return argNoMatch
	}
	if pv.Kind == VTContainer && arg.Kind == VTContainer {
		if pv.Container == arg.Container {
			return argExact
		}
		return argNoMatch
	}
	if pv.Kind == VTSmartPointer && arg.Kind == VTSmartPointer {
		if pv.SmartPtr == arg.SmartPtr {
			return argExact
		}
		return argNoMatch
	}

	if pv.IsArithmetic() && arg.IsArithmetic() {
		if pv.Kind == arg.Kind {
			if pv.Sign == arg.Sign || pv.Sign == SignUnknown || arg.Sign == SignUnknown {
				return argExact
			}
			return argPromotion
		}
		sameFamily := pv.IsIntegral() == arg.IsIntegral()
		if sameFamily {
			return argPromotion
		}
		// Enum arguments convert to integers.
		return argConversion
	}
	if pv.IsArithmetic() && arg.Kind == VTNonStd && arg.TypeID != 0 {
		if typ := b.db.Type(arg.TypeID); typ != nil && typ.IsEnum() {
			if pv.IsIntegral() {
				return argPromotion
			}
			return argConversion
		}
	}
	return argNoMatch
}

func pointerMatchQuality(pv, arg *ValueType) int {
	if pv.Pointer == 0 || arg.Pointer == 0 {
		return argNoMatch
	}
	if pv.Pointer != arg.Pointer {
		return argNoMatch
	}
	if pv.Kind == arg.Kind {
		if pv.Kind == VTNonStd && pv.TypeID != arg.TypeID {
			return argNoMatch
		}
		// Adding pointee const is a qualification conversion and still
		// an exact-tier match; dropping it is not a match at all.
		if arg.Constness&^pv.Constness&1 != 0 {
			return argNoMatch
		}
		return argExact
	}
	if pv.Kind == VTVoid || arg.Kind == VTVoid || arg.Kind == VTUnknown {
		return argConversion
	}
	return argNoMatch
}

type callScore struct {
	fn    *Function
	total int
	worst int
}

func (b *builder) scoreCandidate(f *Function, args []*ValueType) (callScore, bool) {
	sc := callScore{fn: f, worst: argExact}
	min := b.db.MinArgCount(f)
	max := f.ArgCount()
	if len(args) < min {
		return sc, false
	}
	if len(args) > max && !f.IsVariadic() {
		return sc, false
	}
	for i, arg := range args {
		if i >= max {
			// Consumed by the ellipsis.
			break
		}
		q := b.argMatchQuality(b.db.Variable(f.Args[i]), arg)
		if q == argNoMatch {
			return sc, false
		}
		sc.total += q
		if q < sc.worst {
			sc.worst = q
		}
	}
	return sc, true
}

// resolveOverload picks the best candidate for the given argument types.
// It returns nil when no candidate fits or when the best score is shared,
// keeping ambiguous calls unresolved.
func (b *builder) resolveOverload(cands []*Function, args []*ValueType) *Function {
	var fixed, variadic []callScore
	for _, f := range cands {
		sc, ok := b.scoreCandidate(f, args)
		if !ok {
			continue
		}
		if f.IsVariadic() {
			variadic = append(variadic, sc)
		} else {
			fixed = append(fixed, sc)
		}
	}

	pick := func(scores []callScore) *Function {
		best := -1
		ambiguous := false
		for i := range scores {
			if best < 0 || scores[i].total > scores[best].total {
				best = i
				ambiguous = false
			} else if scores[i].total == scores[best].total && scores[i].fn != scores[best].fn {
				ambiguous = true
			}
		}
		if best < 0 || ambiguous {
			return nil
		}
		return scores[best].fn
	}

	if f := pick(fixed); f != nil {
		// A variadic twin of the same fixed signature makes the call
		// ambiguous rather than won.
		for i := range variadic {
			if variadic[i].fn.ArgCount() == len(args) && b.sameParameters(variadic[i].fn, f) {
				return nil
			}
		}
		return f
	}
	if len(fixed) > 0 {
		return nil
	}
	return pick(variadic)
}
