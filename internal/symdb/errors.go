package symdb

import (
	"fmt"

	"github.com/standardbeagle/cppsym/internal/token"
)

// SyntaxError reports structural corruption the builder cannot recover from.
// The caller decides whether to keep partial results for the translation
// unit; other units are unaffected.
type SyntaxError struct {
	File string
	Line int
	Col  int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d:%d: syntax error: %s", e.File, e.Line, e.Col, e.Msg)
}

// UnknownMacroError reports a token shape that looks like an unexpanded
// macro. It is recoverable: the surrounding construct degrades to unknown.
type UnknownMacroError struct {
	File string
	Line int
	Col  int
	Name string
}

func (e *UnknownMacroError) Error() string {
	return fmt.Sprintf("%s:%d:%d: unknown macro %q", e.File, e.Line, e.Col, e.Name)
}

// LookupError reports an out-of-range handle passed to a bounds-checked
// accessor. Handle 0 is reserved and always out of range.
type LookupError struct {
	What string
	ID   uint32
	Max  uint32
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("%s id %d out of range (max %d)", e.What, e.ID, e.Max)
}

func syntaxErrorAt(file string, t *token.Token, format string, args ...any) *SyntaxError {
	e := &SyntaxError{File: file, Msg: fmt.Sprintf(format, args...)}
	if t != nil {
		e.Line = t.Line()
		e.Col = t.Col()
	}
	return e
}

// Diagnostic is one recoverable finding recorded during the build, such as
// an unknown macro or an unresolved base class.
type Diagnostic struct {
	Line int
	Col  int
	Msg  string

	// Err carries the typed cause when one exists, such as
	// *UnknownMacroError. Nil for plain findings.
	Err error
}
