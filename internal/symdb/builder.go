package symdb

import (
	"fmt"

	"github.com/standardbeagle/cppsym/internal/library"
	"github.com/standardbeagle/cppsym/internal/token"
)

// SymbolDatabase is the finished symbol database for one translation unit.
// It exclusively owns the scope, type, function, variable, and enumerator
// records; everything else holds borrowed references into the arenas and
// into the external token stream. After Build returns the database is
// immutable and safe for concurrent readers.
type SymbolDatabase struct {
	list *token.List
	lib  *library.Library

	// Arenas. Slot 0 of each is nil so that handle 0 means "none".
	scopes    []*Scope
	types     []*Type
	functions []*Function
	variables []*Variable

	// typeIndex merges forward declarations and reopenings, keyed by
	// fully qualified name.
	typeIndex map[string]TypeID

	// typedefs maps alias names (qualified at declaration scope) to the
	// aliased token range.
	typedefs map[string]typedefInfo

	valueTypes map[*token.Token]*ValueType
	scopeOf    map[*token.Token]ScopeID
	callOf     map[*token.Token]FunctionID
	varOf      map[*token.Token]VariableID

	diags []Diagnostic
}

type typedefInfo struct {
	scope ScopeID
	start *token.Token
	end   *token.Token
}

// TokenList returns the translation unit's token stream.
func (db *SymbolDatabase) TokenList() *token.List { return db.list }

// Library returns the descriptor service the build ran with.
func (db *SymbolDatabase) Library() *library.Library { return db.lib }

// Diagnostics lists recoverable findings recorded during the build.
func (db *SymbolDatabase) Diagnostics() []Diagnostic { return db.diags }

// ValueTypeOf returns the inferred static type of an expression token, or
// nil when the token produces no value or inference failed.
func (db *SymbolDatabase) ValueTypeOf(t *token.Token) *ValueType {
	return db.valueTypes[t]
}

// ScopeOf returns the scope owning a compound-statement opening token or a
// scope-defining token, or nil.
func (db *SymbolDatabase) ScopeOf(t *token.Token) *Scope {
	return db.Scope(db.scopeOf[t])
}

// Build constructs the symbol database for one tokenized translation unit.
// Recoverable trouble (unknown macros, unresolvable declarators, ambiguous
// overloads) degrades to unknown records and a Diagnostic; only structural
// corruption of the token stream returns a *SyntaxError. Build is the
// single recovery boundary: no panic escapes it.
func Build(list *token.List, lib *library.Library) (db *SymbolDatabase, err error) {
	if lib == nil {
		lib = library.Default()
	}
	db = &SymbolDatabase{
		list:       list,
		lib:        lib,
		scopes:     []*Scope{nil},
		types:      []*Type{nil},
		functions:  []*Function{nil},
		variables:  []*Variable{nil},
		typeIndex:  make(map[string]TypeID),
		typedefs:   make(map[string]typedefInfo),
		valueTypes: make(map[*token.Token]*ValueType),
		scopeOf:    make(map[*token.Token]ScopeID),
		callOf:     make(map[*token.Token]FunctionID),
		varOf:      make(map[*token.Token]VariableID),
	}

	defer func() {
		if r := recover(); r != nil {
			db = nil
			err = &SyntaxError{File: list.File(), Msg: fmt.Sprintf("internal failure: %v", r)}
		}
	}()

	b := &builder{db: db, lib: lib}
	if err := b.buildScopes(); err != nil {
		return nil, err
	}
	b.resolveUsingDirectives()
	b.resolveBases()
	b.buildVariables()
	b.classifyConstructors()
	b.evaluateEnums()
	b.foldDimensions()
	b.linkDefinitions()
	b.markImplicitVirtual()
	b.setValueTypes()
	return db, nil
}

// builder is the explicit context threaded through the build pass. It is
// discarded when Build returns; nothing about the walk is ambient state.
type builder struct {
	db  *SymbolDatabase
	lib *library.Library

	// pendingDefs are out-of-line function definitions found before
	// their declarations were linkable.
	pendingDefs []pendingDef
}

// pendingDef is an out-of-line definition (`Ret Class::method(...) {...}`)
// awaiting linkage to its in-class declaration.
type pendingDef struct {
	fn FunctionID
	// qualifiers is the written qualification chain, e.g. ["A", "B"]
	// for `void A::B::f()`.
	qualifiers []string
	// fromScope is the scope the definition appeared in.
	fromScope ScopeID
}

func (b *builder) file() string { return b.db.list.File() }

func (b *builder) diag(t *token.Token, format string, args ...any) {
	d := Diagnostic{Msg: fmt.Sprintf(format, args...)}
	if t != nil {
		d.Line = t.Line()
		d.Col = t.Col()
	}
	b.db.diags = append(b.db.diags, d)
}

func (b *builder) diagErr(t *token.Token, err error) {
	d := Diagnostic{Msg: err.Error(), Err: err}
	if t != nil {
		d.Line = t.Line()
		d.Col = t.Col()
	}
	b.db.diags = append(b.db.diags, d)
}

func (b *builder) newScope(kind ScopeKind, name string, def *token.Token, parent ScopeID) *Scope {
	s := &Scope{
		ID:     ScopeID(len(b.db.scopes)),
		Kind:   kind,
		Name:   name,
		DefTok: def,
		Parent: parent,
	}
	switch kind {
	case ScopeClass:
		s.defaultAccess = AccessPrivate
	case ScopeStruct, ScopeUnion:
		s.defaultAccess = AccessPublic
	}
	b.db.scopes = append(b.db.scopes, s)
	if p := b.db.Scope(parent); p != nil {
		p.Children = append(p.Children, s.ID)
	}
	if def != nil {
		b.db.scopeOf[def] = s.ID
	}
	return s
}

func (b *builder) newFunction(name *token.Token, scope ScopeID) *Function {
	f := &Function{
		ID:      FunctionID(len(b.db.functions)),
		NameTok: name,
		Scope:   scope,
	}
	b.db.functions = append(b.db.functions, f)
	return f
}

func (b *builder) newVariable(name *token.Token, scope ScopeID) *Variable {
	v := &Variable{
		ID:      VariableID(len(b.db.variables)),
		NameTok: name,
		Scope:   scope,
		Index:   -1,
	}
	b.db.variables = append(b.db.variables, v)
	if name != nil {
		b.db.varOf[name] = v.ID
	}
	return v
}

// internType finds or creates the Type with the given qualified name,
// merging forward declarations, reopenings, and definitions.
func (b *builder) internType(class TypeClass, name string, nameTok *token.Token, enclosing ScopeID) *Type {
	qual := name
	if enc := b.db.Scope(enclosing); enc != nil {
		if prefix := b.db.QualifiedName(enc); prefix != "" {
			qual = prefix + "::" + name
		}
	}
	if id, ok := b.db.typeIndex[qual]; ok {
		t := b.db.Type(id)
		if t.Class == ClassUnknown {
			t.Class = class
		}
		return t
	}
	t := &Type{
		ID:             TypeID(len(b.db.types)),
		Class:          class,
		Name:           name,
		NameTok:        nameTok,
		QualName:       qual,
		EnclosingScope: enclosing,
	}
	b.db.types = append(b.db.types, t)
	b.db.typeIndex[qual] = t.ID
	return t
}
