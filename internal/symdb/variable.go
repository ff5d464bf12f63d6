package symdb

import "github.com/standardbeagle/cppsym/internal/token"

type varFlags uint16

const (
	flagStatic varFlags = 1 << iota
	flagExtern
	flagLocal
	flagGlobal
	flagArgument
	flagClassMember
	flagMutable
	flagConstexpr
	flagFuncPointerArray
)

// Dimension is one array dimension. Num is meaningful only when Known.
type Dimension struct {
	Start *token.Token
	End   *token.Token
	Known bool
	Num   int64
}

// Variable is one declared variable, member, or parameter.
type Variable struct {
	ID VariableID

	// NameTok is the declaration-site identifier, nil for unnamed
	// parameters.
	NameTok *token.Token

	// TypeStart and TypeEnd bound the declared type as written.
	TypeStart *token.Token
	TypeEnd   *token.Token

	Scope ScopeID

	// Index is the position in the argument list, -1 for non-parameters.
	Index int

	// Indirection is the pointer depth of the declarator.
	Indirection int

	// Constness and Volatileness carry one bit per indirection level;
	// bit 0 is the base value type. `char * const * const p` sets bits
	// 1 and 2, not bit 0.
	Constness    uint32
	Volatileness uint32

	Ref RefKind

	Dimensions []Dimension

	flags  varFlags
	Access Access

	// Type is the declared user type when resolvable, 0 otherwise.
	Type TypeID

	// VT is the derived value type of the variable's name token.
	VT *ValueType
}

// Name returns the variable name, empty for unnamed parameters.
func (v *Variable) Name() string {
	if v.NameTok == nil {
		return ""
	}
	return v.NameTok.Str()
}

// IsPointer reports whether the outermost declarator shape is a pointer.
// An array of pointers is not itself a pointer.
func (v *Variable) IsPointer() bool { return v.Indirection > 0 && len(v.Dimensions) == 0 }

// IsArray reports whether the variable is an array.
func (v *Variable) IsArray() bool { return len(v.Dimensions) > 0 }

// IsPointerArray reports whether the variable is an array of pointers.
func (v *Variable) IsPointerArray() bool { return len(v.Dimensions) > 0 && v.Indirection > 0 }

// IsFuncPointerArray reports whether the variable is an array of function
// pointers.
func (v *Variable) IsFuncPointerArray() bool { return v.flags&flagFuncPointerArray != 0 }

// IsReference reports whether the declarator is a reference.
func (v *Variable) IsReference() bool { return v.Ref != RefNone }

// IsRValueReference reports whether the declarator is an rvalue reference.
func (v *Variable) IsRValueReference() bool { return v.Ref == RefRValue }

// IsConst reports constness of the outermost level: the pointer itself for
// pointers, the value for everything else.
func (v *Variable) IsConst() bool {
	return v.Constness&(1<<uint(v.Indirection)) != 0
}

// IsPointeeConst reports whether the pointed-to base type is const.
func (v *Variable) IsPointeeConst() bool { return v.Indirection > 0 && v.Constness&1 != 0 }

// IsVolatile reports volatility at the base level.
func (v *Variable) IsVolatile() bool { return v.Volatileness&1 != 0 }

// IsStatic reports static storage.
func (v *Variable) IsStatic() bool { return v.flags&flagStatic != 0 }

// IsExtern reports extern linkage.
func (v *Variable) IsExtern() bool { return v.flags&flagExtern != 0 }

// IsLocal reports whether the variable is function-local.
func (v *Variable) IsLocal() bool { return v.flags&flagLocal != 0 }

// IsGlobal reports namespace or file scope.
func (v *Variable) IsGlobal() bool { return v.flags&flagGlobal != 0 }

// IsArgument reports whether the variable is a function parameter.
func (v *Variable) IsArgument() bool { return v.flags&flagArgument != 0 }

// IsClassMember reports whether the variable is a data member.
func (v *Variable) IsClassMember() bool { return v.flags&flagClassMember != 0 }

// IsMutable reports the mutable specifier.
func (v *Variable) IsMutable() bool { return v.flags&flagMutable != 0 }

// IsConstexpr reports the constexpr specifier.
func (v *Variable) IsConstexpr() bool { return v.flags&flagConstexpr != 0 }

// TypeName returns the declared type as written, joined with single spaces.
func (v *Variable) TypeName() string {
	if v.TypeStart == nil {
		return ""
	}
	var out string
	for t := v.TypeStart; t != nil; t = t.Next() {
		if out != "" {
			out += " "
		}
		out += t.Str()
		if t == v.TypeEnd {
			break
		}
	}
	return out
}

// Variable dereferences a VariableID. Returns nil for the reserved handle 0
// and out-of-range handles; id 0 means "no variable".
func (db *SymbolDatabase) Variable(id VariableID) *Variable {
	if id == 0 || int(id) >= len(db.variables) {
		return nil
	}
	return db.variables[id]
}

// VariableAt is the bounds-checked accessor. Unlike Variable it reports an
// out-of-range handle as a LookupError.
func (db *SymbolDatabase) VariableAt(id VariableID) (*Variable, error) {
	if id == 0 || int(id) >= len(db.variables) {
		return nil, &LookupError{What: "variable", ID: uint32(id), Max: uint32(len(db.variables) - 1)}
	}
	return db.variables[id], nil
}

// VariableCount returns the number of variables, excluding the reserved
// slot 0.
func (db *SymbolDatabase) VariableCount() int { return len(db.variables) - 1 }

// VariableOf returns the Variable bound to a declaration-site or use-site
// identifier token, or nil.
func (db *SymbolDatabase) VariableOf(t *token.Token) *Variable {
	return db.Variable(db.varOf[t])
}
