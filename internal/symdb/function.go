package symdb

import "github.com/standardbeagle/cppsym/internal/token"

// FunctionKind classifies special member functions.
type FunctionKind uint8

const (
	// FuncPlain is an ordinary function or method.
	FuncPlain FunctionKind = iota
	// FuncConstructor is a constructor that is not copy or move.
	FuncConstructor
	// FuncCopyConstructor is a copy constructor.
	FuncCopyConstructor
	// FuncMoveConstructor is a move constructor.
	FuncMoveConstructor
	// FuncDestructor is a destructor.
	FuncDestructor
	// FuncLambda is the call operator of a lambda.
	FuncLambda
)

func (k FunctionKind) String() string {
	switch k {
	case FuncConstructor:
		return "constructor"
	case FuncCopyConstructor:
		return "copy-constructor"
	case FuncMoveConstructor:
		return "move-constructor"
	case FuncDestructor:
		return "destructor"
	case FuncLambda:
		return "lambda"
	}
	return "function"
}

type fnFlags uint32

const (
	fnConst fnFlags = 1 << iota
	fnVolatile
	fnStatic
	fnVirtual // the virtual keyword was written
	fnImplicitVirtual
	fnOverride
	fnFinal
	fnExplicit
	fnInline
	fnExtern
	fnFriend
	fnNoexcept
	fnThrowSpec
	fnDeleted
	fnDefaulted
	fnPure
	fnVariadic
	fnHasBody
	fnAttrConst
	fnAttrPure
	fnAttrNothrow
	fnAttrNoreturn
	fnAttrNodiscard
	fnConstexpr
)

// Function is one function declaration, merged with its out-of-line
// definition when both are present.
type Function struct {
	ID FunctionID

	// NameTok is the in-class/in-namespace declaration name token.
	NameTok *token.Token

	// DefTok is the definition name token when the definition is
	// out-of-line, otherwise nil (NameTok covers both).
	DefTok *token.Token

	// RetStart and RetEnd bound the return type as written; nil for
	// constructors and destructors.
	RetStart *token.Token
	RetEnd   *token.Token

	// Scope is the scope the function is declared in.
	Scope ScopeID

	// BodyScope is the function body scope, 0 for pure declarations.
	BodyScope ScopeID

	// Args holds the parameters in order.
	Args []VariableID

	Kind    FunctionKind
	Access  Access
	RefQual RefKind

	// NoexceptArg points into the noexcept(...) condition when present.
	NoexceptArg *token.Token

	// ThrowArg points into a dynamic exception specification.
	ThrowArg *token.Token

	// Overrides links a virtual override to the base class function, 0
	// when not an override or not resolvable.
	Overrides FunctionID

	// lparen is the opening parenthesis of the parameter list; the
	// variable pass parses arguments from it.
	lparen *token.Token

	flags fnFlags
}

// Name returns the function name.
func (f *Function) Name() string {
	if f.NameTok == nil {
		return ""
	}
	return f.NameTok.Str()
}

// ArgCount returns the number of declared parameters.
func (f *Function) ArgCount() int { return len(f.Args) }

// MinArgCount returns the number of parameters without default values.
func (db *SymbolDatabase) MinArgCount(f *Function) int {
	n := 0
	for _, id := range f.Args {
		v := db.Variable(id)
		if v == nil || !hasDefaultValue(v) {
			n++
		} else {
			break
		}
	}
	return n
}

func hasDefaultValue(v *Variable) bool {
	if v.NameTok != nil {
		return v.NameTok.Next().Is("=")
	}
	return v.TypeEnd != nil && v.TypeEnd.Next().Is("=")
}

// IsConst reports a const member function.
func (f *Function) IsConst() bool { return f.flags&fnConst != 0 }

// IsVolatile reports a volatile member function.
func (f *Function) IsVolatile() bool { return f.flags&fnVolatile != 0 }

// IsStatic reports the static specifier.
func (f *Function) IsStatic() bool { return f.flags&fnStatic != 0 }

// HasVirtualSpecifier reports whether virtual was written.
func (f *Function) HasVirtualSpecifier() bool { return f.flags&fnVirtual != 0 }

// IsVirtual reports virtual dispatch, written or inherited from a base
// class override.
func (f *Function) IsVirtual() bool { return f.flags&(fnVirtual|fnImplicitVirtual) != 0 }

// IsImplicitlyVirtual reports a virtual override without the keyword.
func (f *Function) IsImplicitlyVirtual() bool { return f.flags&fnImplicitVirtual != 0 }

// HasOverrideSpecifier reports the override specifier.
func (f *Function) HasOverrideSpecifier() bool { return f.flags&fnOverride != 0 }

// HasFinalSpecifier reports the final specifier.
func (f *Function) HasFinalSpecifier() bool { return f.flags&fnFinal != 0 }

// IsExplicit reports the explicit specifier.
func (f *Function) IsExplicit() bool { return f.flags&fnExplicit != 0 }

// IsInline reports the inline specifier.
func (f *Function) IsInline() bool { return f.flags&fnInline != 0 }

// IsExtern reports the extern specifier.
func (f *Function) IsExtern() bool { return f.flags&fnExtern != 0 }

// IsFriend reports a friend function declaration.
func (f *Function) IsFriend() bool { return f.flags&fnFriend != 0 }

// IsNoexcept reports a noexcept specification.
func (f *Function) IsNoexcept() bool { return f.flags&fnNoexcept != 0 }

// HasThrowSpec reports a dynamic exception specification.
func (f *Function) HasThrowSpec() bool { return f.flags&fnThrowSpec != 0 }

// IsDeleted reports "= delete".
func (f *Function) IsDeleted() bool { return f.flags&fnDeleted != 0 }

// IsDefaulted reports "= default".
func (f *Function) IsDefaulted() bool { return f.flags&fnDefaulted != 0 }

// IsPure reports a pure virtual declaration ("= 0").
func (f *Function) IsPure() bool { return f.flags&fnPure != 0 }

// IsVariadic reports a trailing ellipsis parameter.
func (f *Function) IsVariadic() bool { return f.flags&fnVariadic != 0 }

// HasBody reports whether a definition with a body was seen.
func (f *Function) HasBody() bool { return f.flags&fnHasBody != 0 }

// IsConstexpr reports the constexpr specifier.
func (f *Function) IsConstexpr() bool { return f.flags&fnConstexpr != 0 }

// IsAttrConst reports a library-declared __attribute__((const)) function.
func (f *Function) IsAttrConst() bool { return f.flags&fnAttrConst != 0 }

// IsAttrPure reports a library-declared pure function.
func (f *Function) IsAttrPure() bool { return f.flags&fnAttrPure != 0 }

// IsAttrNothrow reports a library-declared nothrow function.
func (f *Function) IsAttrNothrow() bool { return f.flags&fnAttrNothrow != 0 }

// IsAttrNoreturn reports a library-declared noreturn function.
func (f *Function) IsAttrNoreturn() bool { return f.flags&fnAttrNoreturn != 0 }

// IsAttrNodiscard reports a nodiscard function.
func (f *Function) IsAttrNodiscard() bool { return f.flags&fnAttrNodiscard != 0 }

// Function dereferences a FunctionID. Returns nil for handle 0 and
// out-of-range handles.
func (db *SymbolDatabase) Function(id FunctionID) *Function {
	if id == 0 || int(id) >= len(db.functions) {
		return nil
	}
	return db.functions[id]
}

// Functions lists all functions in declaration order. Arena slots aliased
// by declaration/definition merging are skipped so each function appears
// once.
func (db *SymbolDatabase) Functions() []*Function {
	out := make([]*Function, 0, len(db.functions)-1)
	for i, f := range db.functions[1:] {
		if f == nil || f.ID != FunctionID(i+1) {
			continue
		}
		out = append(out, f)
	}
	return out
}

// CallTarget returns the Function a call-site name token was bound to, or
// nil when the call is unresolved.
func (db *SymbolDatabase) CallTarget(t *token.Token) *Function {
	return db.Function(db.callOf[t])
}
