package symdb

import "github.com/standardbeagle/cppsym/internal/token"

// TypeClass distinguishes the declaration keyword behind a Type.
type TypeClass uint8

const (
	// ClassUnknown is a type only seen through an unresolved reference.
	ClassUnknown TypeClass = iota
	// ClassClass is a `class`.
	ClassClass
	// ClassStruct is a `struct`.
	ClassStruct
	// ClassUnion is a `union`.
	ClassUnion
	// ClassEnum is an `enum` or `enum class`.
	ClassEnum
)

func (c TypeClass) String() string {
	switch c {
	case ClassClass:
		return "class"
	case ClassStruct:
		return "struct"
	case ClassUnion:
		return "union"
	case ClassEnum:
		return "enum"
	}
	return "unknown"
}

// BaseInfo is one inheritance edge. Found distinguishes a resolved base
// from a base whose name is known but whose Type is not in this unit.
type BaseInfo struct {
	Access  Access
	Virtual bool
	Name    string
	NameTok *token.Token
	Type    TypeID
	Found   bool
}

// FriendInfo is one friend declaration inside a class. Type is 0 when the
// befriended name could not be resolved in this unit.
type FriendInfo struct {
	NameTok *token.Token
	Name    string
	Type    TypeID
}

// Type is the semantic entity behind a class/struct/union/enum name.
// Forward declarations and reopenings merge into one record, keyed by the
// fully qualified name at the point of declaration.
type Type struct {
	ID      TypeID
	Class   TypeClass
	Name    string
	NameTok *token.Token

	// QualName is the fully qualified name used as the merge key.
	QualName string

	// Scope is the body scope when the type is complete, 0 for forward
	// declarations.
	Scope ScopeID

	// EnclosingScope is where the declaration appeared.
	EnclosingScope ScopeID

	Bases   []BaseInfo
	Friends []FriendInfo

	// Enumerators, in declaration order, for enum types.
	Enumerators []*Enumerator

	// EnumClass marks scoped enums.
	EnumClass bool
}

// IsComplete reports whether a body scope was seen for the type.
func (t *Type) IsComplete() bool { return t.Scope != 0 }

// IsEnum reports whether the type is an enum.
func (t *Type) IsEnum() bool { return t.Class == ClassEnum }

// Enumerator is one named constant of an enum type. Value is meaningful
// only when ValueKnown is set; consumers must not assume zero otherwise.
type Enumerator struct {
	NameTok *token.Token
	Scope   ScopeID

	// Start and End bound the initializer expression, nil without one.
	Start *token.Token
	End   *token.Token

	Value      int64
	ValueKnown bool
}

// Name returns the enumerator's name.
func (e *Enumerator) Name() string {
	if e.NameTok == nil {
		return ""
	}
	return e.NameTok.Str()
}

// Type dereferences a TypeID. Returns nil for handle 0 and out-of-range
// handles.
func (db *SymbolDatabase) Type(id TypeID) *Type {
	if id == 0 || int(id) >= len(db.types) {
		return nil
	}
	return db.types[id]
}

// Types lists all declared types in declaration order.
func (db *SymbolDatabase) Types() []*Type { return db.types[1:] }

// TypeByQualName finds a type by fully qualified name.
func (db *SymbolDatabase) TypeByQualName(qual string) *Type {
	id, ok := db.typeIndex[qual]
	if !ok {
		return nil
	}
	return db.Type(id)
}

// findEnumerator locates an enumerator visible from the given scope by
// plain name, searching the scope chain and, for unscoped enums, the
// enclosing scopes' enum types.
func (db *SymbolDatabase) findEnumerator(start *Scope, name string) *Enumerator {
	for s := start; s != nil; s = db.Scope(s.Parent) {
		if s.Kind == ScopeEnum {
			typ := db.Type(s.Type)
			if typ != nil {
				if e := typ.enumerator(name); e != nil {
					return e
				}
			}
		}
		for _, childID := range s.Children {
			child := db.Scope(childID)
			if child == nil || child.Kind != ScopeEnum || child.EnumClass {
				continue
			}
			typ := db.Type(child.Type)
			if typ != nil {
				if e := typ.enumerator(name); e != nil {
					return e
				}
			}
		}
	}
	return nil
}

func (t *Type) enumerator(name string) *Enumerator {
	for _, e := range t.Enumerators {
		if e.Name() == name {
			return e
		}
	}
	return nil
}
