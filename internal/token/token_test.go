package token

import "testing"

func makeList(texts ...string) *List {
	l := NewList("test.cpp")
	for i, s := range texts {
		kind := Op
		if s != "" && (s[0] == '_' || s[0] >= 'a' && s[0] <= 'z' || s[0] >= 'A' && s[0] <= 'Z') {
			kind = Name
		}
		if s != "" && s[0] >= '0' && s[0] <= '9' {
			kind = Number
		}
		l.Push(New(s, kind, 1, i+1))
	}
	return l
}

func TestNilSafeAccessors(t *testing.T) {
	var tok *Token
	if tok.Next() != nil || tok.Prev() != nil || tok.Link() != nil {
		t.Fatal("nil token navigation must yield nil")
	}
	if tok.Is("x") || tok.IsName() || tok.IsIdentifier() || tok.IsKeyword() {
		t.Fatal("nil token predicates must be false")
	}
	if tok.At(3) != nil || tok.At(-1) != nil {
		t.Fatal("nil token At must yield nil")
	}
}

func TestIdentifierVsKeyword(t *testing.T) {
	l := makeList("while", "counter", "int")
	w := l.Front()
	if !w.IsKeyword() || w.IsIdentifier() {
		t.Errorf("while: keyword classification wrong")
	}
	c := w.Next()
	if !c.IsIdentifier() || c.IsKeyword() {
		t.Errorf("counter: identifier classification wrong")
	}
	if !w.IsControlKeyword() {
		t.Errorf("while must be a control keyword")
	}
	if c.IsControlKeyword() {
		t.Errorf("counter is not a control keyword")
	}
	if !w.Next().Next().IsStandardType() {
		t.Errorf("int must be a standard type")
	}
}

func TestAt(t *testing.T) {
	l := makeList("a", "b", "c")
	if got := l.Front().At(2).Str(); got != "c" {
		t.Fatalf("At(2) = %q, want c", got)
	}
	if got := l.Back().At(-2).Str(); got != "a" {
		t.Fatalf("At(-2) = %q, want a", got)
	}
	if l.Front().At(5) != nil {
		t.Fatal("At past end must be nil")
	}
}

func TestMatch(t *testing.T) {
	cases := []struct {
		tokens  []string
		pattern string
		want    bool
	}{
		{[]string{"using", "namespace", "std", ";"}, "using namespace %name% ;", true},
		{[]string{"int", "x", "="}, "%type% %var% =", true},
		{[]string{"int", "x", "="}, "%type% %var% ;", false},
		{[]string{"struct", "S"}, "class|struct|union %name%", true},
		{[]string{"42", "+"}, "%num% %op%", true},
		{[]string{"x"}, "%var% (", false}, // stream ends before pattern
		{[]string{"if", "("}, "%var% (", false},
	}
	for _, tc := range cases {
		t.Run(tc.pattern, func(t *testing.T) {
			l := makeList(tc.tokens...)
			if got := Match(l.Front(), tc.pattern); got != tc.want {
				t.Errorf("Match(%v, %q) = %t, want %t", tc.tokens, tc.pattern, got, tc.want)
			}
		})
	}
	if Match(nil, "%any%") {
		t.Error("Match on nil token must be false")
	}
}

func TestSkipQualifiers(t *testing.T) {
	l := makeList("const", "volatile", "int")
	if got := SkipQualifiers(l.Front()).Str(); got != "int" {
		t.Fatalf("SkipQualifiers = %q, want int", got)
	}
	if SkipQualifiers(nil) != nil {
		t.Fatal("SkipQualifiers(nil) must be nil")
	}
}

func TestSkipScopeQualification(t *testing.T) {
	l := makeList("::", "a", "::", "b", "::", "c", "(")
	if got := SkipScopeQualification(l.Front()).Str(); got != "c" {
		t.Fatalf("SkipScopeQualification = %q, want c", got)
	}
	plain := makeList("x", "=", "1")
	if got := SkipScopeQualification(plain.Front()).Str(); got != "x" {
		t.Fatalf("unqualified name must stay put, got %q", got)
	}
}

func TestFindClosing(t *testing.T) {
	l := makeList("(", "a", "(", "b", ")", ")", ";")
	closer := FindClosing(l.Front(), "(", ")")
	if closer == nil || closer.Next() == nil || !closer.Next().Is(";") {
		t.Fatal("FindClosing must find the outer closer")
	}
	unbalanced := makeList("(", "a")
	if FindClosing(unbalanced.Front(), "(", ")") != nil {
		t.Fatal("unbalanced stream must yield nil")
	}
}

func TestLinkedTo(t *testing.T) {
	l := makeList("(", ")")
	open, closer := l.Front(), l.Back()
	open.SetLink(closer)
	closer.SetLink(open)
	if !open.LinkedTo(closer) {
		t.Fatal("LinkedTo must see the link")
	}
	if open.NextAfterLink() != nil {
		t.Fatal("NextAfterLink at stream end must be nil")
	}
}
