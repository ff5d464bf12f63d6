package token

import "strings"

// Match reports whether the token sequence starting at t matches the
// space-separated pattern. Pattern elements:
//
//	%name%  identifier or keyword
//	%var%   identifier that is not a keyword
//	%type%  identifier, keyword type, or builtin type name
//	%num%   numeric literal
//	%str%   string literal
//	%op%    punctuation
//	%any%   any single token
//	a|b|c   any of the listed literal texts
//
// Everything else matches the token text literally. A nil token or a stream
// that ends before the pattern does never matches.
func Match(t *Token, pattern string) bool {
	for _, elem := range strings.Fields(pattern) {
		if t == nil {
			return false
		}
		if !matchOne(t, elem) {
			return false
		}
		t = t.next
	}
	return true
}

func matchOne(t *Token, elem string) bool {
	switch elem {
	case "%name%":
		return t.kind == Name
	case "%var%":
		return t.IsIdentifier()
	case "%type%":
		return t.kind == Name && (!keywords[t.str] || t.IsStandardType() || t.str == "auto")
	case "%num%":
		return t.kind == Number
	case "%str%":
		return t.kind == String
	case "%op%":
		return t.kind == Op
	case "%any%":
		return true
	}
	if strings.ContainsRune(elem, '|') {
		for _, alt := range strings.Split(elem, "|") {
			if t.str == alt {
				return true
			}
		}
		return false
	}
	return t.str == elem
}

// SkipQualifiers advances past const/volatile/constexpr/mutable qualifiers.
func SkipQualifiers(t *Token) *Token {
	for t != nil {
		switch t.str {
		case "const", "volatile", "constexpr", "mutable", "constinit":
			t = t.next
		default:
			return t
		}
	}
	return nil
}

// SkipScopeQualification advances past a leading `a :: b ::` qualification
// chain, returning the final unqualified name token. A lone leading `::`
// (global qualification) is skipped too.
func SkipScopeQualification(t *Token) *Token {
	if t.Is("::") {
		t = t.Next()
	}
	for t.IsName() && t.Next().Is("::") && t.At(2).IsName() {
		t = t.At(2)
	}
	return t
}

// FindClosing returns the matching closer for an opening bracket by walking
// the stream, used by the tokenizer before links exist. open and close are
// single-character bracket texts.
func FindClosing(t *Token, open, close string) *Token {
	depth := 0
	for ; t != nil; t = t.next {
		switch t.str {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return t
			}
		}
	}
	return nil
}
