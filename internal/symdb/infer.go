package symdb

import (
	"strconv"
	"strings"

	"github.com/standardbeagle/cppsym/internal/library"
	"github.com/standardbeagle/cppsym/internal/token"
)

// setValueTypes is the final build pass. It derives a ValueType for every
// declared variable, then walks each executable scope's statements,
// annotating expression tokens, binding auto declarations, and resolving
// call sites against the function table.
func (b *builder) setValueTypes() {
	for _, v := range b.db.variables[1:] {
		if v == nil || v.VT != nil {
			continue
		}
		if typeIsAuto(v) || typeIsDecltype(v) {
			// Deduced once the initializer is inferred.
			continue
		}
		v.VT = b.variableValueType(v)
		if v.NameTok != nil {
			b.db.valueTypes[v.NameTok] = v.VT
		}
	}
	for _, s := range b.db.Scopes() {
		if s.IsExecutable() {
			b.inferScope(s)
		}
	}
}

func typeIsAuto(v *Variable) bool {
	for t := v.TypeStart; t != nil; t = t.Next() {
		if t.Is("auto") {
			return true
		}
		if t == v.TypeEnd {
			break
		}
	}
	return false
}

func typeIsDecltype(v *Variable) bool {
	return v.TypeStart != nil && v.TypeStart.Is("decltype")
}

func (b *builder) inferScope(s *Scope) {
	in := &inference{b: b, s: s}
	if s.condStart != nil {
		if s.Kind == ScopeFor {
			in.forHeader(s.condStart, s.condEnd)
		} else {
			in.region(s.condStart, s.condEnd.Next())
		}
	}
	for _, seg := range b.bodySegments(s) {
		in.region(seg.start, seg.end)
	}
}

// inference carries the lookup scope for one region walk.
type inference struct {
	b *builder
	s *Scope
}

func (in *inference) set(t *token.Token, vt *ValueType) {
	if t != nil && vt != nil {
		in.b.db.valueTypes[t] = vt
	}
}

// region walks statements between start (inclusive) and end (exclusive).
// Nested brace bodies are skipped; those scopes run their own walk.
func (in *inference) region(start, end *token.Token) {
	for t := start; t != nil && t != end; {
		switch {
		case t.Is("{") && t.Link() != nil:
			t = t.Link().Next()
		case t.Is(";") || t.Is(":"):
			t = t.Next()
		case t.Is("if") || t.Is("for") || t.Is("while") || t.Is("switch") ||
			t.Is("catch") || t.Is("else") || t.Is("do") || t.Is("try"):
			// Conditions and bodies belong to the child scope.
			t = t.Next()
			if t != nil && t.Is("(") && t.Link() != nil {
				t = t.Link().Next()
			}
		case t.Is("break") || t.Is("continue") || t.Is("goto"):
			t = skipStatement(t, end)
		case t.Is("case"):
			_, t = in.expr(t.Next(), end, 2)
		case t.Is("default") || t.Is("public") || t.Is("private") || t.Is("protected"):
			t = t.Next()
		case t.Is("using") || t.Is("typedef") || t.Is("static_assert"):
			t = skipStatement(t, end)
		default:
			t = in.statement(t, end)
		}
	}
}

func skipStatement(t, end *token.Token) *token.Token {
	for t != nil && t != end && !t.Is(";") {
		if t.Link() != nil && (t.Is("(") || t.Is("[") || t.Is("{")) {
			t = t.Link()
		}
		t = t.Next()
	}
	if t != nil && t != end {
		t = t.Next()
	}
	return t
}

// statement infers one statement starting at t. Declarations are
// recognized by their name tokens recorded in the variable pass; anything
// else is treated as an expression statement.
func (in *inference) statement(t, end *token.Token) *token.Token {
	stop := statementStop(t, end)

	if t.Is("return") || t.Is("throw") || t.Is("delete") {
		p := t.Next()
		if t.Is("delete") && p.Is("[") && p.Link() != nil {
			p = p.Link().Next()
		}
		if p != nil && p != stop && !p.Is(";") {
			in.expr(p, stop, 0)
		}
		return afterStop(stop, end)
	}

	if decl := in.declSiteIn(t, stop); decl != nil {
		in.declaration(decl, stop)
		return afterStop(stop, end)
	}

	in.expr(t, stop, 0)
	return afterStop(stop, end)
}

// statementStop finds the terminating semicolon (or brace/end) of the
// statement starting at t. The returned token is exclusive.
func statementStop(t, end *token.Token) *token.Token {
	for p := t; p != nil && p != end; p = p.Next() {
		if p.Link() != nil && (p.Is("(") || p.Is("[")) {
			p = p.Link()
			continue
		}
		if p.Is(";") || p.Is("{") || p.Is("}") {
			return p
		}
	}
	return end
}

func afterStop(stop, end *token.Token) *token.Token {
	if stop == nil || stop == end {
		return end
	}
	if stop.Is(";") {
		return stop.Next()
	}
	return stop
}

// declSiteIn returns the first variable whose declaration name token lies
// in [t, stop), or nil when the statement declares nothing.
func (in *inference) declSiteIn(t, stop *token.Token) *Variable {
	for p := t; p != nil && p != stop; p = p.Next() {
		if p.Link() != nil && (p.Is("(") || p.Is("[")) {
			p = p.Link()
			continue
		}
		if v := in.b.db.Variable(in.b.db.varOf[p]); v != nil && v.NameTok == p {
			return v
		}
	}
	return nil
}

// declaration infers initializers for every declarator in the statement
// and deduces auto/decltype types.
func (in *inference) declaration(first *Variable, stop *token.Token) {
	for v := first; v != nil; {
		in.declarator(v)
		var next *Variable
		for p := v.NameTok; p != nil && p != stop; p = p.Next() {
			if p.Link() != nil && (p.Is("(") || p.Is("[") || p.Is("{")) {
				p = p.Link()
				continue
			}
			if p == v.NameTok {
				continue
			}
			if cand := in.b.db.Variable(in.b.db.varOf[p]); cand != nil && cand.NameTok == p {
				next = cand
				break
			}
		}
		v = next
	}
}

func (in *inference) declarator(v *Variable) {
	if v.NameTok == nil {
		return
	}
	p := v.NameTok.Next()
	for p != nil && p.Is("[") && p.Link() != nil {
		p = p.Link().Next()
	}

	var init *ValueType
	switch {
	case p.Is("="):
		init, _ = in.expr(p.Next(), nil, 2)
	case (p.Is("(") || p.Is("{")) && p.Link() != nil:
		args := in.callArgs(p)
		if len(args) == 1 {
			init = args[0]
		}
	}

	switch {
	case typeIsAuto(v):
		v.VT = bindAutoVT(v, init)
	case typeIsDecltype(v):
		v.VT = in.decltypeVT(v)
	}
	in.set(v.NameTok, v.VT)
}

// decltypeVT infers decltype(expr) and applies the declarator shape.
func (in *inference) decltypeVT(v *Variable) *ValueType {
	lp := v.TypeStart.Next()
	if !lp.Is("(") || lp.Link() == nil {
		return &ValueType{}
	}
	inner, _ := in.expr(lp.Next(), lp.Link(), 0)
	if inner == nil {
		return &ValueType{}
	}
	vt := inner.clone()
	vt.Pointer += v.Indirection
	vt.Constness |= v.Constness
	vt.Volatileness |= v.Volatileness
	if v.Ref != RefNone {
		vt.Ref = v.Ref
	}
	return vt
}

// bindAutoVT applies the written declarator shape to the deduced
// initializer type. Plain auto decays; auto& and auto&& bind references;
// auto* keeps the pointer; written const is merged at its written level.
func bindAutoVT(v *Variable, init *ValueType) *ValueType {
	if init == nil {
		return &ValueType{OriginalTypeName: "auto"}
	}
	var vt *ValueType
	switch {
	case v.Ref != RefNone:
		vt = init.clone()
		vt.Ref = v.Ref
	case v.Indirection > 0:
		vt = init.clone()
		vt.Ref = RefNone
		if vt.Pointer < v.Indirection {
			vt.Pointer = v.Indirection
		}
	default:
		vt = init.decay()
	}
	vt.Constness |= v.Constness
	vt.Volatileness |= v.Volatileness
	return vt
}

// forHeader handles `for (init; cond; inc)` and `for (decl : range)`.
func (in *inference) forHeader(cs, ce *token.Token) {
	end := ce.Next()
	for p := cs; p != nil && p != end; p = p.Next() {
		if p.Link() != nil && (p.Is("(") || p.Is("[")) {
			p = p.Link()
			continue
		}
		if p.Is(":") {
			in.rangeFor(cs, p, end)
			return
		}
		if p.Is(";") {
			break
		}
	}
	in.region(cs, end)
}

func (in *inference) rangeFor(cs, colon, end *token.Token) {
	rangeVT, _ := in.expr(colon.Next(), end, 0)
	elem := elementOf(rangeVT)
	for p := cs; p != nil && p != colon; p = p.Next() {
		v := in.b.db.Variable(in.b.db.varOf[p])
		if v == nil || v.NameTok != p {
			continue
		}
		if typeIsAuto(v) {
			v.VT = bindAutoVT(v, elem)
		}
		in.set(p, v.VT)
		return
	}
}

// elementOf yields the type produced by iterating a range expression.
func elementOf(vt *ValueType) *ValueType {
	switch {
	case vt == nil:
		return nil
	case vt.Kind == VTContainer:
		if vt.Elem == nil {
			return nil
		}
		e := vt.Elem.clone()
		e.Ref = RefNone
		return e
	case vt.Pointer > 0:
		e := vt.clone()
		e.Pointer--
		e.Ref = RefNone
		return e
	}
	return nil
}

// Binary operator precedence; 0 means not a binary operator.
func binPrec(op string) int {
	switch op {
	case ",":
		return 1
	case "=", "+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "<<=", ">>=":
		return 2
	case "?":
		return 3
	case "||":
		return 4
	case "&&":
		return 5
	case "|":
		return 6
	case "^":
		return 7
	case "&":
		return 8
	case "==", "!=":
		return 9
	case "<", "<=", ">", ">=", "<=>":
		return 10
	case "<<", ">>":
		return 11
	case "+", "-":
		return 12
	case "*", "/", "%":
		return 13
	case ".*", "->*":
		return 14
	}
	return 0
}

// expr is a precedence-climbing expression walk. It returns the inferred
// type and the first token it did not consume. stop is exclusive and may
// be nil.
func (in *inference) expr(t, stop *token.Token, minPrec int) (*ValueType, *token.Token) {
	lhs, t := in.unary(t, stop)
	for t != nil && t != stop {
		op := t.Str()
		// A linked angle bracket is a template delimiter, not less-than.
		if (op == "<" || op == ">") && t.Link() != nil {
			break
		}
		prec := binPrec(op)
		if prec == 0 || prec < minPrec {
			break
		}
		opTok := t
		if op == "?" {
			var a, b *ValueType
			a, t = in.expr(t.Next(), stop, 0)
			if t != nil && t.Is(":") {
				b, t = in.expr(t.Next(), stop, prec)
			}
			lhs = in.commonType(a, b)
			in.set(opTok, lhs)
			continue
		}
		nextMin := prec + 1
		if prec == 2 {
			nextMin = prec // assignment is right-associative
		}
		var rhs *ValueType
		rhs, t = in.expr(opTok.Next(), stop, nextMin)
		lhs = in.binary(op, lhs, rhs)
		in.set(opTok, lhs)
	}
	return lhs, t
}

func (in *inference) unary(t, stop *token.Token) (*ValueType, *token.Token) {
	if t == nil || t == stop {
		return nil, t
	}
	plat := in.b.lib.Platform()
	switch t.Str() {
	case "*":
		v, nt := in.unary(t.Next(), stop)
		res := derefVT(v)
		in.set(t, res)
		return res, nt
	case "&":
		v, nt := in.unary(t.Next(), stop)
		res := addrOfVT(v)
		in.set(t, res)
		return res, nt
	case "!":
		_, nt := in.unary(t.Next(), stop)
		res := &ValueType{Kind: VTBool, Sign: Unsigned}
		in.set(t, res)
		return res, nt
	case "~", "+", "-":
		v, nt := in.unary(t.Next(), stop)
		var res *ValueType
		if v.IsIntegral() && v.Pointer == 0 {
			res = promoteInt(v.decay(), plat)
		} else if v.IsFloat() {
			res = v.decay()
		}
		in.set(t, res)
		return res, nt
	case "++", "--":
		v, nt := in.unary(t.Next(), stop)
		in.set(t, v)
		return v, nt
	case "sizeof":
		nt := t.Next()
		if nt.Is("(") && nt.Link() != nil {
			nt = nt.Link().Next()
		} else {
			_, nt = in.unary(nt, stop)
		}
		res := in.sizeTypeVT()
		in.set(t, res)
		return res, nt
	case "new":
		return in.newExpr(t, stop)
	case "throw":
		in.expr(t.Next(), stop, 0)
		return nil, stop
	}
	return in.postfix(t, stop)
}

func (in *inference) sizeTypeVT() *ValueType {
	plat := in.b.lib.Platform()
	return &ValueType{
		Kind:             intKindForBits(plat.PointerBit, plat),
		Sign:             Unsigned,
		OriginalTypeName: "size_t",
	}
}

func (in *inference) newExpr(t, stop *token.Token) (*ValueType, *token.Token) {
	p := t.Next()
	if p.Is("(") && p.Link() != nil { // placement
		p = p.Link().Next()
	}
	typeEnd, ok := in.b.parseTypeTokens(p)
	if !ok {
		return nil, skipStatement(t, stop)
	}
	vt := in.b.baseValueType(p, typeEnd, in.s)
	nt := typeEnd.Next()
	for nt != nil && nt != stop && nt.Is("*") {
		vt.Pointer++
		nt = nt.Next()
	}
	vt.Pointer++ // new T yields T*
	if nt != nil && (nt.Is("(") || nt.Is("[") || nt.Is("{")) && nt.Link() != nil {
		if nt.Is("(") || nt.Is("{") {
			in.callArgs(nt)
		}
		nt = nt.Link().Next()
	}
	in.set(t, vt)
	return vt, nt
}

// postfix parses a primary followed by member access, indexing, calls,
// and increment operators.
func (in *inference) postfix(t, stop *token.Token) (*ValueType, *token.Token) {
	vt, t := in.primary(t, stop)
	for t != nil && t != stop {
		switch {
		case t.Is(".") || t.Is("->"):
			name := t.Next()
			if name == nil || !name.IsName() {
				return vt, t
			}
			recv := vt
			if t.Is("->") {
				recv = derefVT(vt)
			}
			vt = in.member(recv, name)
			if name.Next().Is("(") && name.Next().Link() != nil {
				t = name.Next().Link().Next()
			} else {
				t = name.Next()
			}
		case t.Is("[") && t.Link() != nil:
			in.expr(t.Next(), t.Link(), 0)
			vt = indexVT(vt)
			in.set(t, vt)
			t = t.Link().Next()
		case t.Is("(") && t.Link() != nil:
			// Call through an expression we do not model.
			in.callArgs(t)
			vt = nil
			t = t.Link().Next()
		case t.Is("++") || t.Is("--"):
			in.set(t, vt)
			t = t.Next()
		default:
			return vt, t
		}
	}
	return vt, t
}

// member resolves `recv.name` / `recv->name`: record members and methods,
// container accessors, smart-pointer members.
func (in *inference) member(recv *ValueType, name *token.Token) *ValueType {
	if recv == nil {
		if name.Next().Is("(") && name.Next().Link() != nil {
			in.callArgs(name.Next())
		}
		return nil
	}

	if recv.Kind == VTContainer && recv.Pointer == 0 {
		return in.containerAccess(recv, name)
	}

	if recv.Kind == VTSmartPointer && recv.Pointer == 0 {
		if lp := name.Next(); lp.Is("(") && lp.Link() != nil {
			in.callArgs(lp)
			if name.Is("get") && recv.Elem != nil {
				vt := recv.Elem.clone()
				vt.Pointer++
				in.set(name, vt)
				return vt
			}
		}
		return nil
	}

	if recv.Kind == VTNonStd && recv.Pointer == 0 && recv.TypeScope != 0 {
		cls := in.b.db.Scope(recv.TypeScope)
		if name.Next().Is("(") && name.Next().Link() != nil {
			args := in.callArgs(name.Next())
			cands := in.b.functionsNamed(cls, name.Str(), nil)
			if f := in.b.resolveOverload(cands, args); f != nil {
				in.b.db.callOf[name] = f.ID
				vt := in.b.functionReturnVT(f)
				in.set(name, vt)
				return vt
			}
			return nil
		}
		if v := in.memberVariable(cls, name.Str(), nil); v != nil {
			in.b.db.varOf[name] = v.ID
			in.set(name, v.VT)
			return v.VT
		}
		// Enum nested in the class, e.g. obj.Color is not valid, but
		// members of anonymous unions resolve through here; give up.
		return nil
	}

	if name.Next().Is("(") && name.Next().Link() != nil {
		in.callArgs(name.Next())
	}
	return nil
}

func (in *inference) containerAccess(recv *ValueType, name *token.Token) *ValueType {
	lp := name.Next()
	if !lp.Is("(") || lp.Link() == nil {
		return nil
	}
	in.callArgs(lp)
	var vt *ValueType
	switch recv.Container.AccessorYield(name.Str()) {
	case library.YieldItem:
		if recv.Elem != nil {
			vt = recv.Elem.decay()
		}
	case library.YieldItemRef:
		if recv.Elem != nil {
			vt = recv.Elem.clone()
			vt.Ref = RefLValue
			if recv.IsConst(0) {
				vt.Constness |= 1
			}
		}
	case library.YieldIterator, library.YieldStartIterator, library.YieldEndIterator:
		vt = &ValueType{Kind: VTIterator, Container: recv.Container, Elem: recv.Elem}
	case library.YieldSize:
		vt = in.sizeTypeVT()
	case library.YieldBufferRaw:
		if recv.Elem != nil {
			vt = recv.Elem.clone()
			vt.Pointer++
		}
	}
	in.set(name, vt)
	return vt
}

// memberVariable finds a data member by name, searching base classes.
func (in *inference) memberVariable(cls *Scope, name string, seen map[ScopeID]bool) *Variable {
	if cls == nil || seen[cls.ID] {
		return nil
	}
	if seen == nil {
		seen = make(map[ScopeID]bool)
	}
	seen[cls.ID] = true
	for _, id := range cls.Variables {
		v := in.b.db.Variable(id)
		if v != nil && v.Name() == name {
			return v
		}
	}
	if cls.Type != 0 {
		typ := in.b.db.Type(cls.Type)
		for i := range typ.Bases {
			base := &typ.Bases[i]
			if !base.Found {
				continue
			}
			bt := in.b.db.Type(base.Type)
			if bt == nil || bt.Scope == 0 {
				continue
			}
			if v := in.memberVariable(in.b.db.Scope(bt.Scope), name, seen); v != nil {
				return v
			}
		}
	}
	return nil
}

func (in *inference) primary(t, stop *token.Token) (*ValueType, *token.Token) {
	if t == nil || t == stop {
		return nil, t
	}
	switch t.Kind() {
	case token.Number:
		vt := in.literalVT(t)
		in.set(t, vt)
		return vt, t.Next()
	case token.String:
		vt := stringLiteralVT(t, in.b.lib.Platform())
		in.set(t, vt)
		return vt, t.Next()
	case token.CharLit:
		vt := charLitVT(t, in.b.lib.Platform())
		in.set(t, vt)
		return vt, t.Next()
	}

	switch {
	case t.Is("true") || t.Is("false"):
		vt := &ValueType{Kind: VTBool, Sign: Unsigned}
		in.set(t, vt)
		return vt, t.Next()
	case t.Is("nullptr") || t.Is("NULL"):
		vt := &ValueType{Pointer: 1}
		in.set(t, vt)
		return vt, t.Next()
	case t.Is("this"):
		vt := in.thisVT()
		in.set(t, vt)
		return vt, t.Next()
	case t.Is("static_cast") || t.Is("dynamic_cast") || t.Is("const_cast") || t.Is("reinterpret_cast"):
		return in.namedCast(t, stop)
	case t.Is("(") && t.Link() != nil:
		return in.parenExpr(t, stop)
	case t.Is("[") && t.Link() != nil:
		return in.lambdaExpr(t, stop)
	case t.Is("{") && t.Link() != nil:
		in.callArgs(t)
		return nil, t.Link().Next()
	case t.IsStandardType() && t.Next().Is("(") && t.Next().Link() != nil:
		// Functional cast over a builtin, e.g. int(x).
		lp := t.Next()
		in.callArgs(lp)
		vt := in.b.baseValueType(t, t, in.s)
		in.set(t, vt)
		return vt, lp.Link().Next()
	case t.IsName() || t.Is("::"):
		return in.nameExpr(t, stop)
	}
	return nil, t.Next()
}

func (in *inference) thisVT() *ValueType {
	for s := in.s; s != nil; s = in.b.db.Scope(s.Parent) {
		if s.Kind != ScopeFunction || s.Function == 0 {
			continue
		}
		fn := in.b.db.Function(s.Function)
		cls := in.b.db.Scope(s.FunctionOf)
		if cls == nil {
			cls = in.b.db.Scope(fn.Scope)
		}
		if cls == nil || !cls.IsClassKind() || cls.Type == 0 {
			return nil
		}
		vt := &ValueType{
			Kind:             VTNonStd,
			TypeID:           cls.Type,
			TypeScope:        cls.ID,
			Pointer:          1,
			OriginalTypeName: cls.Name,
		}
		if fn.IsConst() {
			vt.Constness |= 1
		}
		return vt
	}
	return nil
}

func (in *inference) namedCast(t, stop *token.Token) (*ValueType, *token.Token) {
	lt := t.Next()
	if !lt.Is("<") || lt.Link() == nil {
		return nil, t.Next()
	}
	vt := in.typeInRange(lt.Next(), lt.Link().Prev())
	lp := lt.Link().Next()
	nt := lp
	if lp.Is("(") && lp.Link() != nil {
		in.expr(lp.Next(), lp.Link(), 0)
		nt = lp.Link().Next()
	}
	in.set(t, vt)
	return vt, nt
}

// parenExpr disambiguates `(T)expr` casts from grouping. The contents
// must parse entirely as a known type and the cast must be followed by
// something an expression can start with.
func (in *inference) parenExpr(t, stop *token.Token) (*ValueType, *token.Token) {
	closer := t.Link()
	if in.looksLikeCast(t.Next(), closer) && startsExpression(closer.Next(), stop) {
		vt := in.typeInRange(t.Next(), closer.Prev())
		in.set(t, vt)
		operand := closer.Next()
		_, nt := in.unary(operand, stop)
		return vt, nt
	}
	vt, _ := in.expr(t.Next(), closer, 0)
	in.set(t, vt)
	return vt, closer.Next()
}

func (in *inference) looksLikeCast(first, closer *token.Token) bool {
	if first == nil || first == closer {
		return false
	}
	typeEnd, ok := in.b.parseTypeTokens(first)
	if !ok {
		return false
	}
	if !first.IsStandardType() && !first.Is("const") && !first.Is("unsigned") && !first.Is("signed") {
		name := coreTypeName(first, typeEnd)
		if !in.b.knownTypeName(in.s, name) {
			if _, pod := in.b.lib.PodType(name); !pod {
				if _, c := in.b.lib.Container(name); !c {
					return false
				}
			}
		}
	}
	for p := typeEnd.Next(); p != nil && p != closer; p = p.Next() {
		switch p.Str() {
		case "*", "&", "&&", "const", "volatile":
		default:
			return false
		}
	}
	return true
}

func startsExpression(t, stop *token.Token) bool {
	if t == nil || t == stop {
		return false
	}
	if t.IsName() && !t.IsKeyword() {
		return true
	}
	switch t.Kind() {
	case token.Number, token.String, token.CharLit:
		return true
	}
	switch t.Str() {
	case "(", "*", "&", "!", "~", "+", "-", "++", "--", "sizeof", "new", "this", "true", "false", "nullptr":
		return true
	}
	return false
}

// typeInRange builds a ValueType from a written type with declarator
// suffixes, e.g. `const unsigned char * *`.
func (in *inference) typeInRange(start, end *token.Token) *ValueType {
	if start == nil || end == nil {
		return nil
	}
	baseEnd := end
	for p := start; p != nil; p = p.Next() {
		if p.Is("*") || p.Is("&") || p.Is("&&") {
			baseEnd = p.Prev()
			break
		}
		if p == end {
			break
		}
	}
	vt := in.b.baseValueType(start, baseEnd, in.s)
	for p := baseEnd.Next(); p != nil; p = p.Next() {
		switch p.Str() {
		case "*":
			vt.Pointer++
		case "&":
			vt.Ref = RefLValue
		case "&&":
			vt.Ref = RefRValue
		case "const":
			vt.Constness |= 1 << uint(vt.Pointer)
		case "volatile":
			vt.Volatileness |= 1 << uint(vt.Pointer)
		}
		if p == end {
			break
		}
	}
	return vt
}

func (in *inference) lambdaExpr(t, stop *token.Token) (*ValueType, *token.Token) {
	nt := t.Link().Next()
	if nt.Is("(") && nt.Link() != nil {
		nt = nt.Link().Next()
	}
	for nt != nil && nt != stop && !nt.Is("{") {
		nt = nt.Next()
	}
	if nt != nil && nt.Is("{") && nt.Link() != nil {
		nt = nt.Link().Next() // body is its own scope
	}
	return nil, nt
}

// nameExpr resolves a possibly qualified identifier: variable, enumerator,
// call, or functional cast.
func (in *inference) nameExpr(t, stop *token.Token) (*ValueType, *token.Token) {
	parts, last, after := splitQualified(t)
	if last == nil {
		return nil, t.Next()
	}
	full := strings.Join(parts, "::")
	name := parts[len(parts)-1]
	qual := parts[:len(parts)-1]

	if after.Is("(") && after.Link() != nil {
		if last.IsStandardType() || in.b.knownTypeName(in.s, full) {
			// Functional cast: T(expr).
			in.callArgs(after)
			vt := in.b.baseValueType(t, last, in.s)
			in.set(last, vt)
			return vt, after.Link().Next()
		}
		args := in.callArgs(after)
		cands := in.b.callCandidates(in.s, qual, name)
		if f := in.b.resolveOverload(cands, args); f != nil {
			in.b.db.callOf[last] = f.ID
			vt := in.b.functionReturnVT(f)
			in.set(last, vt)
			return vt, after.Link().Next()
		}
		if lf, ok := in.b.lib.Function(full); ok {
			vt := in.libReturnVT(lf.ReturnType)
			in.set(last, vt)
			return vt, after.Link().Next()
		}
		return nil, after.Link().Next()
	}

	if v := in.findVariable(parts); v != nil {
		if v.VT == nil {
			v.VT = in.b.variableValueType(v)
		}
		in.b.db.varOf[last] = v.ID
		in.set(last, v.VT)
		return v.VT, after
	}
	if vt := in.enumeratorVT(parts); vt != nil {
		in.set(last, vt)
		return vt, after
	}
	return nil, after
}

// splitQualified reads `::a::b<T>::c`, returning the name parts, the last
// identifier token, and the first token after the whole name.
func splitQualified(t *token.Token) (parts []string, last, after *token.Token) {
	if t.Is("::") {
		t = t.Next()
	}
	for t != nil && t.IsIdentifier() {
		parts = append(parts, t.Str())
		last = t
		t = t.Next()
		if t.Is("<") && t.Link() != nil {
			t = t.Link().Next()
		}
		if t.Is("::") && t.Next().IsIdentifier() {
			t = t.Next()
			continue
		}
		break
	}
	return parts, last, t
}

// findVariable resolves a (possibly qualified) variable name from the
// current scope: locals, parameters, members of the enclosing class and
// its bases, then globals.
func (in *inference) findVariable(parts []string) *Variable {
	name := parts[len(parts)-1]
	if len(parts) > 1 {
		target := in.b.findScopePath(in.s, parts[:len(parts)-1])
		if target == nil {
			return nil
		}
		return in.scopeVariable(target, name)
	}
	for _, sc := range in.b.scopeChain(in.s) {
		if sc.IsClassKind() {
			if v := in.memberVariable(sc, name, nil); v != nil {
				return v
			}
			continue
		}
		if v := in.scopeVariable(sc, name); v != nil {
			return v
		}
		for _, nsID := range sc.usingNamespaces {
			if ns := in.b.db.Scope(nsID); ns != nil {
				if v := in.scopeVariable(ns, name); v != nil {
					return v
				}
			}
		}
	}
	return nil
}

func (in *inference) scopeVariable(sc *Scope, name string) *Variable {
	for _, id := range sc.Variables {
		v := in.b.db.Variable(id)
		if v != nil && v.Name() == name {
			return v
		}
	}
	return nil
}

// enumeratorVT resolves an enumerator reference. Unscoped enumerators are
// visible from the enclosing scope; scoped ones require qualification.
func (in *inference) enumeratorVT(parts []string) *ValueType {
	name := parts[len(parts)-1]
	if len(parts) > 1 {
		prefix := strings.Join(parts[:len(parts)-1], "::")
		if id := in.b.resolveTypeName(in.s, prefix); id != 0 {
			typ := in.b.db.Type(id)
			if typ != nil && typ.IsEnum() {
				for i := range typ.Enumerators {
					if typ.Enumerators[i].NameTok.Is(name) {
						return enumVT(typ)
					}
				}
			}
			// E::x where E is a class: a static member would have
			// resolved as a variable already.
			return nil
		}
		return nil
	}
	for _, sc := range in.b.scopeChain(in.s) {
		for _, childID := range sc.Children {
			child := in.b.db.Scope(childID)
			if child == nil || child.Kind != ScopeEnum || child.EnumClass {
				continue
			}
			typ := in.b.db.Type(child.Type)
			if typ == nil {
				continue
			}
			for i := range typ.Enumerators {
				if typ.Enumerators[i].NameTok.Is(name) {
					return enumVT(typ)
				}
			}
		}
	}
	return nil
}

func enumVT(typ *Type) *ValueType {
	return &ValueType{
		Kind:             VTNonStd,
		Sign:             Signed,
		TypeID:           typ.ID,
		TypeScope:        typ.Scope,
		OriginalTypeName: typ.Name,
	}
}

// callArgs infers each top-level argument of a parenthesized or braced
// list, returning their types in order.
func (in *inference) callArgs(lparen *token.Token) []*ValueType {
	closer := lparen.Link()
	if closer == nil {
		return nil
	}
	var out []*ValueType
	t := lparen.Next()
	for t != nil && t != closer {
		vt, nt := in.expr(t, closer, 2)
		out = append(out, vt)
		if nt == nil || nt == closer {
			break
		}
		if nt.Is(",") {
			t = nt.Next()
		} else {
			t = nt.Next()
		}
	}
	return out
}

// functionReturnVT derives the return type of a resolved call.
func (b *builder) functionReturnVT(f *Function) *ValueType {
	switch f.Kind {
	case FuncConstructor, FuncCopyConstructor, FuncMoveConstructor:
		owner := b.db.Scope(f.Scope)
		if owner != nil && owner.Type != 0 {
			return &ValueType{
				Kind:             VTNonStd,
				TypeID:           owner.Type,
				TypeScope:        owner.ID,
				OriginalTypeName: owner.Name,
			}
		}
		return nil
	case FuncDestructor:
		return &ValueType{Kind: VTVoid}
	}
	if f.RetStart == nil {
		return nil
	}
	s := b.db.Scope(f.Scope)
	vt := b.baseValueType(f.RetStart, f.RetEnd, s)
	for t := f.RetStart; t != nil; t = t.Next() {
		switch t.Str() {
		case "*":
			vt.Pointer++
		case "&":
			vt.Ref = RefLValue
		case "&&":
			vt.Ref = RefRValue
		}
		if t == f.RetEnd {
			break
		}
	}
	return vt
}

// libReturnVT parses a library descriptor's return type string, e.g.
// "void *" or "size_t".
func (in *inference) libReturnVT(ret string) *ValueType {
	if ret == "" {
		return nil
	}
	vt := &ValueType{}
	words := strings.Fields(ret)
	stdWords := 0
	for _, w := range words {
		switch w {
		case "const":
			vt.Constness |= 1 << uint(vt.Pointer)
		case "volatile":
			vt.Volatileness |= 1 << uint(vt.Pointer)
		case "*":
			vt.Pointer++
		case "unsigned":
			vt.Sign = Unsigned
			stdWords++
		case "signed":
			vt.Sign = Signed
			stdWords++
		case "void":
			vt.Kind = VTVoid
			stdWords++
		case "bool":
			vt.Kind = VTBool
			stdWords++
		case "char":
			vt.Kind = VTChar
			stdWords++
		case "short":
			vt.Kind = VTShort
			stdWords++
		case "int":
			if vt.Kind == VTUnknown {
				vt.Kind = VTInt
			}
			stdWords++
		case "long":
			if vt.Kind == VTLong {
				vt.Kind = VTLongLong
			} else {
				vt.Kind = VTLong
			}
			stdWords++
		case "float":
			vt.Kind = VTFloat
			stdWords++
		case "double":
			vt.Kind = VTDouble
			stdWords++
		default:
			if pt, ok := in.b.lib.PodType(w); ok {
				plat := in.b.lib.Platform()
				bits := pt.Size * 8
				if pt.Size == 0 {
					bits = plat.PointerBit
				}
				vt.Kind = intKindForBits(bits, plat)
				if pt.Sign == 'u' {
					vt.Sign = Unsigned
				} else {
					vt.Sign = Signed
				}
				vt.OriginalTypeName = w
				stdWords++
			}
		}
	}
	if vt.Kind == VTUnknown && vt.Sign != SignUnknown && stdWords > 0 {
		vt.Kind = VTInt
	}
	return vt
}

// binary computes the result type of one binary operation.
func (in *inference) binary(op string, lhs, rhs *ValueType) *ValueType {
	plat := in.b.lib.Platform()
	switch op {
	case "=", "+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "<<=", ">>=":
		if lhs == nil {
			return nil
		}
		r := lhs.clone()
		r.Ref = RefNone
		return r
	case "==", "!=", "<", "<=", ">", ">=", "&&", "||":
		return &ValueType{Kind: VTBool, Sign: Unsigned}
	case ",":
		return rhs
	case "+", "-":
		if lhs.IsPointer() && rhs != nil && rhs.IsIntegral() && rhs.Pointer == 0 {
			return lhs.decay()
		}
		if op == "+" && rhs.IsPointer() && lhs != nil && lhs.IsIntegral() && lhs.Pointer == 0 {
			return rhs.decay()
		}
		if op == "-" && lhs.IsPointer() && rhs.IsPointer() {
			return in.ptrdiffVT()
		}
		if lhs != nil && lhs.Kind == VTIterator {
			if rhs != nil && rhs.Kind == VTIterator && op == "-" {
				return in.ptrdiffVT()
			}
			return lhs.decay()
		}
		return arithmeticCommonType(asArith(lhs, in.b), asArith(rhs, in.b), plat)
	case "<<", ">>":
		if lhs == nil {
			return nil
		}
		if lhs.IsIntegral() && lhs.Pointer == 0 {
			return promoteInt(lhs.decay(), plat)
		}
		if lhs.Kind == VTNonStd {
			// Stream-style shift returns the left operand.
			return lhs.decay()
		}
		return nil
	case "*", "/", "%", "&", "|", "^":
		return arithmeticCommonType(asArith(lhs, in.b), asArith(rhs, in.b), plat)
	}
	return nil
}

func (in *inference) ptrdiffVT() *ValueType {
	plat := in.b.lib.Platform()
	return &ValueType{
		Kind:             intKindForBits(plat.PointerBit, plat),
		Sign:             Signed,
		OriginalTypeName: "ptrdiff_t",
	}
}

// asArith maps enum values to int for the usual arithmetic conversions.
func asArith(vt *ValueType, b *builder) *ValueType {
	if vt == nil || vt.Kind != VTNonStd || vt.Pointer > 0 {
		return vt
	}
	if typ := b.db.Type(vt.TypeID); typ != nil && typ.IsEnum() {
		return &ValueType{Kind: VTInt, Sign: Signed}
	}
	return vt
}

// commonType merges the two branches of a conditional expression.
func (in *inference) commonType(a, b *ValueType) *ValueType {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	if vt := arithmeticCommonType(asArith(a, in.b), asArith(b, in.b), in.b.lib.Platform()); vt != nil {
		return vt
	}
	if a.IsPointer() && b.IsPointer() {
		if a.Kind == VTUnknown {
			return b.decay()
		}
		return a.decay()
	}
	if a.Kind == b.Kind && a.TypeID == b.TypeID {
		return a.decay()
	}
	return nil
}

func derefVT(vt *ValueType) *ValueType {
	switch {
	case vt == nil:
		return nil
	case vt.Pointer > 0:
		r := vt.clone()
		r.Pointer--
		r.Ref = RefNone
		return r
	case vt.Kind == VTIterator, vt.Kind == VTSmartPointer:
		if vt.Elem == nil {
			return nil
		}
		r := vt.Elem.clone()
		r.Ref = RefLValue
		return r
	}
	return nil
}

func addrOfVT(vt *ValueType) *ValueType {
	if vt == nil {
		return nil
	}
	r := vt.clone()
	r.Pointer++
	r.Ref = RefNone
	return r
}

func indexVT(vt *ValueType) *ValueType {
	switch {
	case vt == nil:
		return nil
	case vt.Kind == VTContainer:
		if vt.Elem == nil {
			return nil
		}
		r := vt.Elem.clone()
		r.Ref = RefLValue
		return r
	case vt.Pointer > 0:
		r := vt.clone()
		r.Pointer--
		r.Ref = RefNone
		return r
	}
	return nil
}

// literalVT types a numeric literal: suffixes pick the family, unsuffixed
// decimal integers take the smallest fitting standard type per platform.
func (in *inference) literalVT(t *token.Token) *ValueType {
	text := t.Str()
	plat := in.b.lib.Platform()

	if isFloatLiteral(text) {
		switch {
		case strings.HasSuffix(text, "f") || strings.HasSuffix(text, "F"):
			return &ValueType{Kind: VTFloat, Sign: Signed}
		case strings.HasSuffix(text, "l") || strings.HasSuffix(text, "L"):
			return &ValueType{Kind: VTLongDouble, Sign: Signed}
		}
		return &ValueType{Kind: VTDouble, Sign: Signed}
	}

	body := strings.ReplaceAll(text, "'", "")
	unsigned := false
	longs := 0
	for {
		if n := len(body); n > 0 {
			switch body[n-1] {
			case 'u', 'U':
				unsigned = true
				body = body[:n-1]
				continue
			case 'l', 'L':
				longs++
				body = body[:n-1]
				continue
			}
		}
		break
	}
	val, err := strconv.ParseUint(body, 0, 64)
	if err != nil {
		return &ValueType{Kind: VTInt, Sign: Signed}
	}

	kind := VTInt
	if longs == 1 {
		kind = VTLong
	} else if longs >= 2 {
		kind = VTLongLong
	}
	for kind < VTLongLong && !literalFits(val, kindBits(kind, plat), unsigned) {
		switch kind {
		case VTInt:
			kind = VTLong
		case VTLong:
			kind = VTLongLong
		}
	}
	sign := Signed
	if unsigned {
		sign = Unsigned
	}
	return &ValueType{Kind: kind, Sign: sign}
}

func literalFits(val uint64, bits int, unsigned bool) bool {
	if bits <= 0 || bits >= 64 {
		return true
	}
	if unsigned {
		return val < 1<<uint(bits)
	}
	return val < 1<<uint(bits-1)
}

func isFloatLiteral(text string) bool {
	if strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X") {
		return strings.ContainsAny(text, "pP")
	}
	if strings.ContainsRune(text, '.') {
		return true
	}
	return strings.ContainsAny(text, "eE")
}

func stringLiteralVT(t *token.Token, plat library.Platform) *ValueType {
	vt := &ValueType{Kind: VTChar, Pointer: 1, Constness: 1}
	if strings.HasPrefix(t.Str(), "L") || strings.HasPrefix(t.Str(), "u") || strings.HasPrefix(t.Str(), "U") {
		vt.Kind = VTWChar
	}
	if vt.Kind == VTChar {
		if plat.CharSigned {
			vt.Sign = Signed
		} else {
			vt.Sign = Unsigned
		}
	}
	return vt
}

func charLitVT(t *token.Token, plat library.Platform) *ValueType {
	if strings.HasPrefix(t.Str(), "L") || strings.HasPrefix(t.Str(), "u") || strings.HasPrefix(t.Str(), "U") {
		return &ValueType{Kind: VTWChar, Sign: Unsigned}
	}
	vt := &ValueType{Kind: VTChar}
	if plat.CharSigned {
		vt.Sign = Signed
	} else {
		vt.Sign = Unsigned
	}
	return vt
}
