// Package token is the read-only view over the tokenized translation unit
// that every analysis pass queries. It exposes syntactic facts (token kind,
// bracket links, source position, small pattern matching) and owns no
// analysis state; semantic annotations live in the symbol database.
package token

// Kind classifies a single token.
type Kind uint8

const (
	// Name is an identifier or keyword.
	Name Kind = iota
	// Number is an integer or floating literal, including suffixes.
	Number
	// String is a string literal including quotes and prefix.
	String
	// CharLit is a character literal.
	CharLit
	// Op is punctuation or an operator, possibly multi-character.
	Op
)

// Token is one element of the doubly linked token stream produced by the
// tokenizer collaborator. Bracket tokens are pre-linked to their matching
// closer before analysis starts.
type Token struct {
	str  string
	kind Kind

	line int
	col  int

	next *Token
	prev *Token
	link *Token
}

// New creates a detached token. The tokenizer links tokens into a List.
func New(str string, kind Kind, line, col int) *Token {
	return &Token{str: str, kind: kind, line: line, col: col}
}

// Str returns the token text.
func (t *Token) Str() string { return t.str }

// Kind returns the token kind.
func (t *Token) Kind() Kind { return t.kind }

// Line returns the 1-based source line.
func (t *Token) Line() int { return t.line }

// Col returns the 1-based source column.
func (t *Token) Col() int { return t.col }

// Next returns the following token, or nil at the end of the stream.
func (t *Token) Next() *Token {
	if t == nil {
		return nil
	}
	return t.next
}

// Prev returns the preceding token, or nil at the start of the stream.
func (t *Token) Prev() *Token {
	if t == nil {
		return nil
	}
	return t.prev
}

// Link returns the matching bracket for (, ), {, }, [, ] and linked template
// angle brackets, or nil when the token is not a linked bracket.
func (t *Token) Link() *Token {
	if t == nil {
		return nil
	}
	return t.link
}

// SetLink records the matching bracket. Only the tokenizer calls this.
func (t *Token) SetLink(other *Token) { t.link = other }

// At returns the token n positions after t (before, for negative n).
// Returns nil when the stream ends first.
func (t *Token) At(n int) *Token {
	for t != nil && n > 0 {
		t = t.next
		n--
	}
	for t != nil && n < 0 {
		t = t.prev
		n++
	}
	return t
}

// Is reports whether the token text equals s.
func (t *Token) Is(s string) bool { return t != nil && t.str == s }

// IsName reports whether the token is an identifier or keyword.
func (t *Token) IsName() bool { return t != nil && t.kind == Name }

// IsNumber reports whether the token is a numeric literal.
func (t *Token) IsNumber() bool { return t != nil && t.kind == Number }

// IsString reports whether the token is a string literal.
func (t *Token) IsString() bool { return t != nil && t.kind == String }

// IsChar reports whether the token is a character literal.
func (t *Token) IsChar() bool { return t != nil && t.kind == CharLit }

// IsOp reports whether the token is punctuation.
func (t *Token) IsOp() bool { return t != nil && t.kind == Op }

// IsKeyword reports whether the token is a C/C++ keyword.
func (t *Token) IsKeyword() bool { return t != nil && t.kind == Name && keywords[t.str] }

// IsIdentifier reports whether the token is a name that is not a keyword.
func (t *Token) IsIdentifier() bool { return t != nil && t.kind == Name && !keywords[t.str] }

// IsLiteral reports whether the token is a number, string, char, or bool literal.
func (t *Token) IsLiteral() bool {
	if t == nil {
		return false
	}
	switch t.kind {
	case Number, String, CharLit:
		return true
	}
	return t.str == "true" || t.str == "false" || t.str == "nullptr"
}

// LinkedTo reports whether t is an opening bracket whose link is closer.
func (t *Token) LinkedTo(closer *Token) bool {
	return t != nil && t.link != nil && t.link == closer
}

// NextAfterLink returns the token after this bracket's matching closer,
// or nil when the token has no link.
func (t *Token) NextAfterLink() *Token {
	if t == nil || t.link == nil {
		return nil
	}
	return t.link.next
}

// keywords is the C/C++ keyword table consulted by IsKeyword. Alternative
// operator spellings are included so declarations never mistake them for
// type names.
var keywords = map[string]bool{
	"alignas": true, "alignof": true, "asm": true, "auto": true,
	"bool": true, "break": true, "case": true, "catch": true,
	"char": true, "char8_t": true, "char16_t": true, "char32_t": true,
	"class": true, "const": true, "const_cast": true, "constexpr": true,
	"consteval": true, "constinit": true, "continue": true, "decltype": true,
	"default": true, "delete": true, "do": true, "double": true,
	"dynamic_cast": true, "else": true, "enum": true, "explicit": true,
	"export": true, "extern": true, "false": true,
	"float": true, "for": true, "friend": true, "goto": true,
	"if": true, "inline": true, "int": true, "long": true,
	"mutable": true, "namespace": true, "new": true, "noexcept": true,
	"nullptr": true, "operator": true, "private": true,
	"protected": true, "public": true, "register": true, "reinterpret_cast": true,
	"restrict": true, "return": true, "short": true, "signed": true,
	"sizeof": true, "static": true, "static_assert": true, "static_cast": true,
	"struct": true, "switch": true, "template": true, "this": true,
	"thread_local": true, "throw": true, "true": true, "try": true,
	"typedef": true, "typeid": true, "typename": true, "union": true,
	"unsigned": true, "using": true, "virtual": true, "void": true,
	"volatile": true, "wchar_t": true, "while": true,
	"and": true, "and_eq": true, "bitand": true, "bitor": true,
	"compl": true, "not": true, "not_eq": true, "or": true,
	"or_eq": true, "xor": true, "xor_eq": true,
}

// IsControlKeyword reports whether the token starts a control statement.
func (t *Token) IsControlKeyword() bool {
	if t == nil || t.kind != Name {
		return false
	}
	switch t.str {
	case "if", "else", "for", "while", "do", "switch", "case", "default",
		"break", "continue", "return", "goto", "try", "catch", "throw":
		return true
	}
	return false
}

// IsStandardType reports whether the token names a builtin arithmetic or
// void type.
func (t *Token) IsStandardType() bool {
	if t == nil || t.kind != Name {
		return false
	}
	switch t.str {
	case "bool", "char", "char8_t", "char16_t", "char32_t", "wchar_t",
		"short", "int", "long", "float", "double", "void",
		"signed", "unsigned":
		return true
	}
	return false
}

// List owns a tokenized translation unit: the doubly linked token sequence
// plus the source file name it came from.
type List struct {
	front *Token
	back  *Token
	file  string
}

// NewList creates an empty token list for the named source file.
func NewList(file string) *List {
	return &List{file: file}
}

// File returns the source file name the stream was produced from.
func (l *List) File() string { return l.file }

// Front returns the first token, or nil for an empty list.
func (l *List) Front() *Token { return l.front }

// Back returns the last token, or nil for an empty list.
func (l *List) Back() *Token { return l.back }

// Push appends a token to the list and wires the prev/next links.
func (l *List) Push(t *Token) {
	if l.back == nil {
		l.front = t
		l.back = t
		return
	}
	t.prev = l.back
	l.back.next = t
	l.back = t
}

// Len counts the tokens. Intended for tests and diagnostics only.
func (l *List) Len() int {
	n := 0
	for t := l.front; t != nil; t = t.next {
		n++
	}
	return n
}
