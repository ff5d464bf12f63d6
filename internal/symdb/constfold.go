package symdb

import (
	"strconv"
	"strings"

	"github.com/standardbeagle/cppsym/internal/token"
)

// constFolder evaluates enumerator-style integral constant expressions:
// literals, already-known enumerators, const integer variables, sizeof,
// parentheses, and the usual integer operators. Anything else makes the
// fold fail, never panic.
type constFolder struct {
	b   *builder
	s   *Scope
	cur *token.Token
	// stop is the token after the last expression token.
	stop  *token.Token
	depth int
}

// foldConstExpr evaluates the inclusive token range [start, end] as seen
// from scope s. The second result reports whether the value is known.
func (b *builder) foldConstExpr(start, end *token.Token, s *Scope) (int64, bool) {
	if start == nil {
		return 0, false
	}
	cf := &constFolder{b: b, s: s, cur: start}
	if end != nil {
		cf.stop = end.Next()
	}
	val, ok := cf.parseBinary(0)
	if !ok || cf.peek() != nil {
		return 0, false
	}
	return val, true
}

func (cf *constFolder) peek() *token.Token {
	if cf.cur == nil || cf.cur == cf.stop {
		return nil
	}
	return cf.cur
}

func (cf *constFolder) next() {
	if cf.cur != nil && cf.cur != cf.stop {
		cf.cur = cf.cur.Next()
	}
}

// binaryPrec returns the precedence of an integer binary operator, 0 for
// non-operators.
func binaryPrec(s string) int {
	switch s {
	case "||":
		return 1
	case "&&":
		return 2
	case "|":
		return 3
	case "^":
		return 4
	case "&":
		return 5
	case "==", "!=":
		return 6
	case "<", ">", "<=", ">=":
		return 7
	case "<<", ">>":
		return 8
	case "+", "-":
		return 9
	case "*", "/", "%":
		return 10
	}
	return 0
}

func (cf *constFolder) parseBinary(minPrec int) (int64, bool) {
	cf.depth++
	defer func() { cf.depth-- }()
	if cf.depth > 64 {
		return 0, false
	}
	lhs, ok := cf.parseUnary()
	if !ok {
		return 0, false
	}
	for {
		op := cf.peek()
		if op == nil {
			return lhs, true
		}
		prec := binaryPrec(op.Str())
		if prec == 0 || prec < minPrec {
			return lhs, true
		}
		cf.next()
		rhs, ok := cf.parseBinary(prec + 1)
		if !ok {
			return 0, false
		}
		lhs, ok = applyBinary(op.Str(), lhs, rhs)
		if !ok {
			return 0, false
		}
	}
}

func applyBinary(op string, a, c int64) (int64, bool) {
	switch op {
	case "+":
		return a + c, true
	case "-":
		return a - c, true
	case "*":
		return a * c, true
	case "/":
		if c == 0 {
			return 0, false
		}
		return a / c, true
	case "%":
		if c == 0 {
			return 0, false
		}
		return a % c, true
	case "<<":
		if c < 0 || c > 63 {
			return 0, false
		}
		return a << uint(c), true
	case ">>":
		if c < 0 || c > 63 {
			return 0, false
		}
		return a >> uint(c), true
	case "&":
		return a & c, true
	case "|":
		return a | c, true
	case "^":
		return a ^ c, true
	case "==":
		return boolVal(a == c), true
	case "!=":
		return boolVal(a != c), true
	case "<":
		return boolVal(a < c), true
	case ">":
		return boolVal(a > c), true
	case "<=":
		return boolVal(a <= c), true
	case ">=":
		return boolVal(a >= c), true
	case "&&":
		return boolVal(a != 0 && c != 0), true
	case "||":
		return boolVal(a != 0 || c != 0), true
	}
	return 0, false
}

func boolVal(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func (cf *constFolder) parseUnary() (int64, bool) {
	t := cf.peek()
	if t == nil {
		return 0, false
	}
	switch t.Str() {
	case "+":
		cf.next()
		return cf.parseUnary()
	case "-":
		cf.next()
		v, ok := cf.parseUnary()
		return -v, ok
	case "~":
		cf.next()
		v, ok := cf.parseUnary()
		return ^v, ok
	case "!":
		cf.next()
		v, ok := cf.parseUnary()
		return boolVal(v == 0), ok
	case "sizeof":
		return cf.parseSizeof()
	}
	return cf.parsePrimary()
}

func (cf *constFolder) parsePrimary() (int64, bool) {
	t := cf.peek()
	if t == nil {
		return 0, false
	}
	switch {
	case t.Is("("):
		if t.Link() == nil {
			return 0, false
		}
		cf.next()
		v, ok := cf.parseBinary(0)
		if !ok || !cf.peek().Is(")") {
			return 0, false
		}
		cf.next()
		return v, true
	case t.IsNumber():
		cf.next()
		return parseIntLiteral(t.Str())
	case t.IsChar():
		cf.next()
		return charLiteralValue(t.Str())
	case t.Is("true"):
		cf.next()
		return 1, true
	case t.Is("false"):
		cf.next()
		return 0, true
	case t.IsIdentifier():
		name, after := readQualifiedName(t)
		// Move past the whole qualified name.
		for cf.peek() != nil && cf.peek() != after {
			cf.next()
		}
		base := name
		if i := strings.LastIndex(name, "::"); i >= 0 {
			base = name[i+2:]
		}
		if e := cf.b.db.findEnumerator(cf.s, base); e != nil {
			if !e.ValueKnown {
				return 0, false
			}
			return e.Value, true
		}
		if v := cf.b.findConstVariable(cf.s, base); v != nil {
			return cf.b.foldVariableInit(v)
		}
		return 0, false
	}
	return 0, false
}

func (cf *constFolder) parseSizeof() (int64, bool) {
	cf.next() // sizeof
	t := cf.peek()
	if !t.Is("(") || t.Link() == nil {
		return 0, false
	}
	inner := t.Next()
	closer := t.Link()
	for cf.peek() != nil && cf.peek() != closer {
		cf.next()
	}
	if cf.peek() != closer {
		return 0, false
	}
	cf.next()
	if bits := cf.b.sizeofBits(inner, closer.Prev(), cf.s); bits > 0 {
		return int64(bits / 8), true
	}
	return 0, false
}

// sizeofBits returns the bit width of a written type, 0 when unknown.
func (b *builder) sizeofBits(start, end *token.Token, s *Scope) int {
	p := b.lib.Platform()
	text := tokenRangeText(start, end)
	switch text {
	case "bool", "char", "signed char", "unsigned char":
		return p.CharBit
	case "short", "unsigned short", "short int", "unsigned short int":
		return p.ShortBit
	case "int", "unsigned", "unsigned int", "signed", "signed int":
		return p.IntBit
	case "long", "unsigned long", "long int", "unsigned long int":
		return p.LongBit
	case "long long", "unsigned long long", "long long int":
		return p.LongLongBit
	case "float":
		return 32
	case "double":
		return 64
	}
	if strings.HasSuffix(text, "*") {
		return p.PointerBit
	}
	if pt, ok := b.lib.PodType(text); ok {
		if pt.Size == 0 {
			return p.PointerBit
		}
		return pt.Size * 8
	}
	return 0
}

func tokenRangeText(start, end *token.Token) string {
	var parts []string
	for t := start; t != nil; t = t.Next() {
		parts = append(parts, t.Str())
		if t == end {
			break
		}
	}
	return strings.Join(parts, " ")
}

// findConstVariable finds a const integral variable visible from s.
func (b *builder) findConstVariable(s *Scope, name string) *Variable {
	for _, sc := range b.scopeChain(s) {
		for _, id := range sc.Variables {
			v := b.db.Variable(id)
			if v != nil && v.Name() == name && v.IsConst() && !v.IsPointer() {
				return v
			}
		}
	}
	return nil
}

// foldVariableInit evaluates `const int n = <expr>;` initializers.
func (b *builder) foldVariableInit(v *Variable) (int64, bool) {
	if v.NameTok == nil || !v.NameTok.Next().Is("=") {
		return 0, false
	}
	start := v.NameTok.At(2)
	end := start
	for q := start; q != nil && !q.Is(";") && !q.Is(","); q = q.Next() {
		if q.Link() != nil && (q.Is("(") || q.Is("[") || q.Is("{")) {
			q = q.Link()
		}
		end = q
	}
	return b.foldConstExpr(start, end, b.db.Scope(v.Scope))
}

// parseIntLiteral folds an integer literal with optional base prefix,
// digit separators, and suffixes. Floating literals fail.
func parseIntLiteral(s string) (int64, bool) {
	s = strings.ReplaceAll(s, "'", "")
	s = strings.TrimRight(s, "uUlL")
	if s == "" {
		return 0, false
	}
	if strings.ContainsAny(s, ".eEpP") && !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return 0, false
	}
	v, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		// Large unsigned values still fold, wrapping into int64.
		u, uerr := strconv.ParseUint(s, 0, 64)
		if uerr != nil {
			return 0, false
		}
		return int64(u), true
	}
	return v, true
}

// charLiteralValue folds simple character literals, including the common
// escapes.
func charLiteralValue(s string) (int64, bool) {
	s = strings.TrimPrefix(s, "L")
	s = strings.TrimPrefix(s, "u8")
	s = strings.TrimPrefix(s, "u")
	s = strings.TrimPrefix(s, "U")
	if len(s) < 3 || s[0] != '\'' || s[len(s)-1] != '\'' {
		return 0, false
	}
	body := s[1 : len(s)-1]
	if len(body) == 1 {
		return int64(body[0]), true
	}
	if body[0] == '\\' && len(body) == 2 {
		switch body[1] {
		case 'n':
			return '\n', true
		case 't':
			return '\t', true
		case 'r':
			return '\r', true
		case '0':
			return 0, true
		case '\\':
			return '\\', true
		case '\'':
			return '\'', true
		}
	}
	return 0, false
}
