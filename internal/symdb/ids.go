// Package symdb builds the symbol database for one tokenized C/C++
// translation unit: the scope tree, type registry, variable and function
// tables, enumerator values, and a static ValueType for expression tokens.
// The database is built in a single synchronous pass and is immutable and
// safe for concurrent readers afterwards.
package symdb

// Handle types index the arenas owned by SymbolDatabase. The zero value of
// every handle is reserved and means "none"; arena slot 0 is never used.
type (
	// ScopeID identifies a Scope.
	ScopeID uint32
	// TypeID identifies a Type.
	TypeID uint32
	// FunctionID identifies a Function.
	FunctionID uint32
	// VariableID identifies a Variable.
	VariableID uint32
)

// Access is the C++ member access level.
type Access uint8

const (
	// AccessNone is used outside class scopes.
	AccessNone Access = iota
	// AccessPublic is public member access.
	AccessPublic
	// AccessProtected is protected member access.
	AccessProtected
	// AccessPrivate is private member access.
	AccessPrivate
)

func (a Access) String() string {
	switch a {
	case AccessPublic:
		return "public"
	case AccessProtected:
		return "protected"
	case AccessPrivate:
		return "private"
	}
	return "none"
}

// RefKind distinguishes non-references from lvalue and rvalue references.
type RefKind uint8

const (
	// RefNone means not a reference.
	RefNone RefKind = iota
	// RefLValue is an lvalue reference.
	RefLValue
	// RefRValue is an rvalue reference.
	RefRValue
)

func (r RefKind) String() string {
	switch r {
	case RefLValue:
		return "lvalue"
	case RefRValue:
		return "rvalue"
	}
	return "none"
}
