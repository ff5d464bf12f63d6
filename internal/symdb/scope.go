package symdb

import "github.com/standardbeagle/cppsym/internal/token"

// ScopeKind is the lexical kind of a scope.
type ScopeKind uint8

const (
	// ScopeGlobal is the single root scope of a translation unit.
	ScopeGlobal ScopeKind = iota + 1
	// ScopeNamespace is a namespace body.
	ScopeNamespace
	// ScopeClass is a class body.
	ScopeClass
	// ScopeStruct is a struct body.
	ScopeStruct
	// ScopeUnion is a union body.
	ScopeUnion
	// ScopeEnum is an enum body.
	ScopeEnum
	// ScopeFunction is a function body.
	ScopeFunction
	// ScopeIf is an if statement body.
	ScopeIf
	// ScopeElse is an else branch body.
	ScopeElse
	// ScopeFor is a for loop body.
	ScopeFor
	// ScopeWhile is a while loop body.
	ScopeWhile
	// ScopeDo is a do-while loop body.
	ScopeDo
	// ScopeSwitch is a switch statement body.
	ScopeSwitch
	// ScopeTry is a try block.
	ScopeTry
	// ScopeCatch is a catch handler block.
	ScopeCatch
	// ScopeLambda is a lambda body.
	ScopeLambda
	// ScopeBlock is an unconditional brace block.
	ScopeBlock
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeGlobal:
		return "Global"
	case ScopeNamespace:
		return "Namespace"
	case ScopeClass:
		return "Class"
	case ScopeStruct:
		return "Struct"
	case ScopeUnion:
		return "Union"
	case ScopeEnum:
		return "Enum"
	case ScopeFunction:
		return "Function"
	case ScopeIf:
		return "If"
	case ScopeElse:
		return "Else"
	case ScopeFor:
		return "For"
	case ScopeWhile:
		return "While"
	case ScopeDo:
		return "Do"
	case ScopeSwitch:
		return "Switch"
	case ScopeTry:
		return "Try"
	case ScopeCatch:
		return "Catch"
	case ScopeLambda:
		return "Lambda"
	case ScopeBlock:
		return "Block"
	}
	return "Unknown"
}

// bodySpan is one brace pair of a scope body.
type bodySpan struct {
	start, end *token.Token
}

// Scope is one lexical nesting unit. Token references are borrowed from the
// translation unit's token list; record references are arena handles.
type Scope struct {
	ID   ScopeID
	Kind ScopeKind

	// Name is the scope's own name: class/namespace name, function name,
	// empty for control and block scopes.
	Name string

	// DefTok is the class/struct/union/enum/namespace keyword or the
	// function name token that introduced the scope. Nil for global.
	DefTok *token.Token

	// BodyStart and BodyEnd are the opening and closing brace. Both nil
	// for a scope that has no body (degraded best-effort records).
	BodyStart *token.Token
	BodyEnd   *token.Token

	// earlierBodies holds the brace pairs of prior bodies when a
	// namespace is reopened; BodyStart and BodyEnd track the latest one.
	earlierBodies []bodySpan

	Parent   ScopeID
	Children []ScopeID

	// Variables declared directly in this scope, in declaration order.
	Variables []VariableID

	// Functions declared or defined in this scope. Only class, struct,
	// union, namespace, and global scopes hold functions.
	Functions []FunctionID

	// Type is the back-link to the Type this scope defines, for
	// class/struct/union/enum scopes.
	Type TypeID

	// Function is the Function whose body this scope is.
	Function FunctionID

	// FunctionOf is the class scope a method body belongs to.
	FunctionOf ScopeID

	// EnumClass marks `enum class` scopes.
	EnumClass bool

	// defaultAccess is the access level members get without a specifier.
	defaultAccess Access

	// usingNamespaces lists namespace scopes named by using-directives in
	// this scope, in source order. pendingUsing keeps the written names
	// until directives are resolved after the scope walk.
	usingNamespaces []ScopeID
	pendingUsing    []string

	// usingDecls lists names imported by using-declarations.
	usingDecls []string

	// namespaceAliases lists `namespace a = b::c;` aliases seen here.
	namespaceAliases []nsAlias

	// condStart and condEnd bound the condition/header region of a
	// control scope, so condition declarations land in the right scope.
	condStart *token.Token
	condEnd   *token.Token
}

type nsAlias struct {
	alias  string
	target string
}

// IsClassKind reports whether the scope is a class, struct, or union body.
func (s *Scope) IsClassKind() bool {
	return s.Kind == ScopeClass || s.Kind == ScopeStruct || s.Kind == ScopeUnion
}

// IsExecutable reports whether statements can appear directly in the scope.
func (s *Scope) IsExecutable() bool {
	switch s.Kind {
	case ScopeFunction, ScopeIf, ScopeElse, ScopeFor, ScopeWhile, ScopeDo,
		ScopeSwitch, ScopeTry, ScopeCatch, ScopeLambda, ScopeBlock:
		return true
	}
	return false
}

// HoldsFunctions reports whether function records may be attached here.
func (s *Scope) HoldsFunctions() bool {
	switch s.Kind {
	case ScopeGlobal, ScopeNamespace, ScopeClass, ScopeStruct, ScopeUnion:
		return true
	}
	return false
}

// Scope dereferences a ScopeID. Returns nil for the reserved handle 0 and
// out-of-range handles.
func (db *SymbolDatabase) Scope(id ScopeID) *Scope {
	if id == 0 || int(id) >= len(db.scopes) {
		return nil
	}
	return db.scopes[id]
}

// GlobalScope returns the root scope.
func (db *SymbolDatabase) GlobalScope() *Scope { return db.scopes[1] }

// Scopes iterates all scopes in creation order (global first).
func (db *SymbolDatabase) Scopes() []*Scope { return db.scopes[1:] }

// FunctionScopes lists all function-body scopes in source order.
func (db *SymbolDatabase) FunctionScopes() []*Scope {
	var out []*Scope
	for _, s := range db.scopes[1:] {
		if s.Kind == ScopeFunction {
			out = append(out, s)
		}
	}
	return out
}

// ClassAndStructScopes lists all class and struct body scopes.
func (db *SymbolDatabase) ClassAndStructScopes() []*Scope {
	var out []*Scope
	for _, s := range db.scopes[1:] {
		if s.Kind == ScopeClass || s.Kind == ScopeStruct {
			out = append(out, s)
		}
	}
	return out
}

// QualifiedName returns the scope's name qualified by its named ancestors,
// e.g. "ns::Outer::Inner". The global scope yields "".
func (db *SymbolDatabase) QualifiedName(s *Scope) string {
	if s == nil || s.Kind == ScopeGlobal {
		return ""
	}
	parent := db.QualifiedName(db.Scope(s.Parent))
	if s.Name == "" {
		return parent
	}
	if parent == "" {
		return s.Name
	}
	return parent + "::" + s.Name
}

// ScopeByName finds a scope by its fully qualified name. Returns nil when
// no scope matches.
func (db *SymbolDatabase) ScopeByName(qualified string) *Scope {
	if qualified == "" {
		return db.GlobalScope()
	}
	for _, s := range db.scopes[1:] {
		if s.Name != "" && db.QualifiedName(s) == qualified {
			return s
		}
	}
	return nil
}

// nestedScope finds the directly nested scope with the given name.
func (db *SymbolDatabase) nestedScope(parent *Scope, name string) *Scope {
	for _, id := range parent.Children {
		child := db.Scope(id)
		if child != nil && child.Name == name {
			return child
		}
	}
	return nil
}
