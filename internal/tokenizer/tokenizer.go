// Package tokenizer turns C/C++ source text into the linked token stream the
// symbol database consumes. It is the minimal form of the upstream tokenizer
// collaborator: comments and preprocessor lines are stripped (macro expansion
// is assumed to have happened already), punctuation pairs are pre-linked, and
// template angle brackets are linked where the heuristic can tell them from
// comparison operators.
package tokenizer

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/standardbeagle/cppsym/internal/token"
)

// Error reports structural corruption the tokenizer cannot recover from,
// such as an unmatched bracket. The symbol database treats it as fatal for
// the translation unit.
type Error struct {
	File string
	Line int
	Col  int
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Col, e.Msg)
}

// threeCharOps and twoCharOps are matched longest-first during scanning.
var threeCharOps = []string{"<<=", ">>=", "...", "->*", "<=>"}

var twoCharOps = []string{
	"::", "->", "++", "--", "<<", ">>", "<=", ">=", "==", "!=",
	"&&", "||", "+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", ".*",
}

// Tokenize scans source into a linked token list and resolves bracket links.
// It returns an *Error when the bracket structure is corrupt beyond repair.
func Tokenize(file, source string) (*token.List, error) {
	list := token.NewList(file)
	line, col := 1, 1
	i := 0
	n := len(source)

	advance := func(k int) {
		for j := 0; j < k; j++ {
			if source[i+j] == '\n' {
				line++
				col = 1
			} else {
				col++
			}
		}
		i += k
	}

	for i < n {
		c := source[i]

		// Whitespace.
		if c == ' ' || c == '\t' || c == '\r' || c == '\n' {
			advance(1)
			continue
		}

		// Line comment.
		if strings.HasPrefix(source[i:], "//") {
			for i < n && source[i] != '\n' {
				advance(1)
			}
			continue
		}

		// Block comment.
		if strings.HasPrefix(source[i:], "/*") {
			end := strings.Index(source[i+2:], "*/")
			if end < 0 {
				advance(n - i)
				continue
			}
			advance(end + 4)
			continue
		}

		// Preprocessor line. Honors trailing backslash continuations.
		if c == '#' && col == firstColOnLine(source, i) {
			for i < n {
				if source[i] == '\n' {
					if i > 0 && source[i-1] == '\\' {
						advance(1)
						continue
					}
					break
				}
				advance(1)
			}
			continue
		}

		startLine, startCol := line, col

		// String literal, including raw strings and encoding prefixes.
		if isStringStart(source[i:]) {
			text, consumed, err := scanString(source[i:])
			if err != nil {
				return nil, &Error{File: file, Line: startLine, Col: startCol, Msg: err.Error()}
			}
			kind := token.String
			if strings.HasSuffix(text, "'") {
				kind = token.CharLit
			}
			list.Push(token.New(text, kind, startLine, startCol))
			advance(consumed)
			continue
		}

		// Number: integers, floats, hex, suffixes, digit separators.
		if unicode.IsDigit(rune(c)) || (c == '.' && i+1 < n && unicode.IsDigit(rune(source[i+1]))) {
			j := i
			for j < n && isNumberChar(source, j) {
				j++
			}
			list.Push(token.New(source[i:j], token.Number, startLine, startCol))
			advance(j - i)
			continue
		}

		// Identifier or keyword.
		if isNameStart(c) {
			j := i
			for j < n && isNameChar(source[j]) {
				j++
			}
			list.Push(token.New(source[i:j], token.Name, startLine, startCol))
			advance(j - i)
			continue
		}

		// Operators, longest match first.
		if op := matchOp(source[i:]); op != "" {
			list.Push(token.New(op, token.Op, startLine, startCol))
			advance(len(op))
			continue
		}

		list.Push(token.New(string(c), token.Op, startLine, startCol))
		advance(1)
	}

	if err := linkBrackets(list); err != nil {
		return nil, err
	}
	linkAngleBrackets(list)
	return list, nil
}

func firstColOnLine(source string, i int) int {
	col := 1
	for j := i - 1; j >= 0 && source[j] != '\n'; j-- {
		if source[j] != ' ' && source[j] != '\t' {
			return -1 // something precedes the '#'
		}
		col++
	}
	return col
}

func isNameStart(c byte) bool {
	return c == '_' || unicode.IsLetter(rune(c))
}

func isNameChar(c byte) bool {
	return c == '_' || unicode.IsLetter(rune(c)) || unicode.IsDigit(rune(c))
}

func isNumberChar(source string, j int) bool {
	c := source[j]
	if unicode.IsDigit(rune(c)) || unicode.IsLetter(rune(c)) || c == '.' || c == '\'' {
		return true
	}
	// Exponent sign: 1e+3, 0x1p-4.
	if (c == '+' || c == '-') && j > 0 {
		p := source[j-1]
		return p == 'e' || p == 'E' || p == 'p' || p == 'P'
	}
	return false
}

var stringPrefixes = []string{"u8R", "LR", "uR", "UR", "u8", "L", "u", "U", "R", ""}

func isStringStart(s string) bool {
	for _, prefix := range stringPrefixes {
		if strings.HasPrefix(s, prefix) && len(s) > len(prefix) {
			c := s[len(prefix)]
			if c == '"' || c == '\'' {
				return true
			}
		}
	}
	return false
}

func scanString(s string) (text string, consumed int, err error) {
	j := 0
	for j < len(s) && s[j] != '"' && s[j] != '\'' {
		j++ // encoding prefix
	}
	raw := j > 0 && s[j-1] == 'R'
	quote := s[j]
	if raw && quote == '"' {
		// R"delim( ... )delim"
		open := strings.IndexByte(s[j:], '(')
		if open < 0 {
			return "", 0, fmt.Errorf("unterminated raw string")
		}
		delim := s[j+1 : j+open]
		closer := ")" + delim + `"`
		end := strings.Index(s[j+open:], closer)
		if end < 0 {
			return "", 0, fmt.Errorf("unterminated raw string")
		}
		total := j + open + end + len(closer)
		return s[:total], total, nil
	}
	k := j + 1
	for k < len(s) {
		if s[k] == '\\' {
			k += 2
			continue
		}
		if s[k] == quote {
			return s[:k+1], k + 1, nil
		}
		if s[k] == '\n' {
			break
		}
		k++
	}
	return "", 0, fmt.Errorf("unterminated %c literal", quote)
}

func matchOp(s string) string {
	for _, op := range threeCharOps {
		if strings.HasPrefix(s, op) {
			return op
		}
	}
	for _, op := range twoCharOps {
		if strings.HasPrefix(s, op) {
			return op
		}
	}
	return ""
}

// linkBrackets links (), {}, []. Mismatched or unmatched brackets are
// structural corruption and abort tokenization.
func linkBrackets(list *token.List) error {
	type open struct {
		tok  *token.Token
		char string
	}
	var stack []open
	closers := map[string]string{")": "(", "}": "{", "]": "["}
	for t := list.Front(); t != nil; t = t.Next() {
		switch t.Str() {
		case "(", "{", "[":
			stack = append(stack, open{t, t.Str()})
		case ")", "}", "]":
			if len(stack) == 0 || stack[len(stack)-1].char != closers[t.Str()] {
				return &Error{File: list.File(), Line: t.Line(), Col: t.Col(),
					Msg: fmt.Sprintf("unmatched %q", t.Str())}
			}
			opener := stack[len(stack)-1].tok
			stack = stack[:len(stack)-1]
			opener.SetLink(t)
			t.SetLink(opener)
		}
	}
	if len(stack) > 0 {
		t := stack[len(stack)-1].tok
		return &Error{File: list.File(), Line: t.Line(), Col: t.Col(),
			Msg: fmt.Sprintf("unmatched %q", t.Str())}
	}
	return nil
}

// linkAngleBrackets links template argument lists. The heuristic links a `<`
// that directly follows a name when a balanced `>` is found before any
// token that cannot occur inside a template argument list. Unlinkable angle
// brackets are left unlinked; they are comparisons.
func linkAngleBrackets(list *token.List) {
	for t := list.Front(); t != nil; t = t.Next() {
		if !t.Is("<") || !t.Prev().IsName() || t.Prev().IsKeyword() && !isTemplateKeyword(t.Prev()) {
			continue
		}
		if closer := findTemplateEnd(t); closer != nil {
			t.SetLink(closer)
			closer.SetLink(t)
		}
	}
}

func isTemplateKeyword(t *token.Token) bool {
	switch t.Str() {
	case "template", "decltype":
		return true
	}
	return false
}

func findTemplateEnd(open *token.Token) *token.Token {
	depth := 0
	for t := open; t != nil; t = t.Next() {
		switch t.Str() {
		case "<":
			depth++
		case ">":
			depth--
			if depth == 0 {
				return t
			}
		case ">>":
			// Nested template close: vector<pair<int,int>>.
			depth -= 2
			if depth <= 0 {
				return t
			}
		case ";", "{", "}", "&&", "||":
			return nil
		case "(", "[":
			// Skip over bracketed sub-expressions.
			if t.Link() == nil {
				return nil
			}
			t = t.Link()
		}
	}
	return nil
}
