package symdb

import (
	"strings"

	"github.com/standardbeagle/cppsym/internal/library"
)

// Sign is the signedness of an arithmetic value type.
type Sign uint8

const (
	// SignUnknown means signedness is not known or not applicable.
	SignUnknown Sign = iota
	// Signed marks signed arithmetic types.
	Signed
	// Unsigned marks unsigned arithmetic types.
	Unsigned
)

func (s Sign) String() string {
	switch s {
	case Signed:
		return "signed"
	case Unsigned:
		return "unsigned"
	}
	return ""
}

// VTKind is the primitive kind of a ValueType, ordered by arithmetic
// conversion rank for the integer and floating families.
type VTKind uint8

const (
	// VTUnknown means the type could not be inferred.
	VTUnknown VTKind = iota
	// VTNonStd is a user record (class/struct/union) or enum type.
	VTNonStd
	// VTVoid is void.
	VTVoid
	// VTBool is bool.
	VTBool
	// VTChar is char and its signed/unsigned variants.
	VTChar
	// VTShort is short.
	VTShort
	// VTWChar is wchar_t.
	VTWChar
	// VTInt is int.
	VTInt
	// VTLong is long.
	VTLong
	// VTLongLong is long long.
	VTLongLong
	// VTUnknownInt is an integer of unknown width (library pod type with
	// no size on this platform).
	VTUnknownInt
	// VTFloat is float.
	VTFloat
	// VTDouble is double.
	VTDouble
	// VTLongDouble is long double.
	VTLongDouble
	// VTContainer is a library-described container.
	VTContainer
	// VTIterator is a container iterator.
	VTIterator
	// VTSmartPointer is a library-described smart pointer.
	VTSmartPointer
)

func (k VTKind) String() string {
	switch k {
	case VTNonStd:
		return "record"
	case VTVoid:
		return "void"
	case VTBool:
		return "bool"
	case VTChar:
		return "char"
	case VTShort:
		return "short"
	case VTWChar:
		return "wchar_t"
	case VTInt:
		return "int"
	case VTLong:
		return "long"
	case VTLongLong:
		return "long long"
	case VTUnknownInt:
		return "unknown int"
	case VTFloat:
		return "float"
	case VTDouble:
		return "double"
	case VTLongDouble:
		return "long double"
	case VTContainer:
		return "container"
	case VTIterator:
		return "iterator"
	case VTSmartPointer:
		return "smart-pointer"
	}
	return "unknown"
}

// ValueType is the inferred static type of one expression token.
type ValueType struct {
	Sign Sign
	Kind VTKind

	// Pointer is the indirection depth.
	Pointer int

	// Constness and Volatileness carry one bit per indirection level;
	// bit 0 is the base value type.
	Constness    uint32
	Volatileness uint32

	Ref RefKind

	// TypeID is the user type behind VTNonStd and enum values.
	TypeID TypeID

	// TypeScope is that type's body scope when complete.
	TypeScope ScopeID

	// Container describes VTContainer and VTIterator values.
	Container *library.Container

	// SmartPtr describes VTSmartPointer values.
	SmartPtr *library.SmartPointer

	// Elem is the element type of containers, iterators, and smart
	// pointers.
	Elem *ValueType

	// OriginalTypeName preserves the typedef'd spelling for display.
	OriginalTypeName string
}

// IsIntegral reports the integer family, including bool and char.
func (vt *ValueType) IsIntegral() bool {
	return vt != nil && vt.Kind >= VTBool && vt.Kind <= VTUnknownInt
}

// IsFloat reports the floating family.
func (vt *ValueType) IsFloat() bool {
	return vt != nil && vt.Kind >= VTFloat && vt.Kind <= VTLongDouble
}

// IsArithmetic reports integral or floating.
func (vt *ValueType) IsArithmetic() bool { return vt.IsIntegral() || vt.IsFloat() }

// IsPointer reports nonzero indirection.
func (vt *ValueType) IsPointer() bool { return vt != nil && vt.Pointer > 0 }

// IsUnknown reports a wholly unknown type.
func (vt *ValueType) IsUnknown() bool { return vt == nil || vt.Kind == VTUnknown && vt.Pointer == 0 }

// IsConst reports constness at the given indirection level.
func (vt *ValueType) IsConst(level int) bool {
	return vt != nil && vt.Constness&(1<<uint(level)) != 0
}

// IsVolatile reports volatility at the given indirection level.
func (vt *ValueType) IsVolatile(level int) bool {
	return vt != nil && vt.Volatileness&(1<<uint(level)) != 0
}

// clone returns a copy; Elem is shared (element types are never mutated
// after construction).
func (vt *ValueType) clone() *ValueType {
	if vt == nil {
		return nil
	}
	c := *vt
	return &c
}

// decay returns the type after lvalue-to-rvalue conversion: references and
// top-level qualifiers dropped, arrays outside this model.
func (vt *ValueType) decay() *ValueType {
	if vt == nil {
		return nil
	}
	c := vt.clone()
	c.Ref = RefNone
	if c.Pointer == 0 {
		c.Constness &^= 1
		c.Volatileness &^= 1
	}
	return c
}

// String renders the type for dumps and tests, e.g. "const int *".
func (vt *ValueType) String() string {
	if vt == nil {
		return "unknown"
	}
	var sb strings.Builder
	if vt.Constness&1 != 0 {
		sb.WriteString("const ")
	}
	if vt.Volatileness&1 != 0 {
		sb.WriteString("volatile ")
	}
	if vt.Sign == Unsigned && vt.Kind != VTBool {
		sb.WriteString("unsigned ")
	}
	switch vt.Kind {
	case VTNonStd:
		sb.WriteString(vt.OriginalTypeName)
		if vt.OriginalTypeName == "" {
			sb.WriteString("record")
		}
	case VTContainer:
		sb.WriteString(vt.Container.Name)
	case VTIterator:
		sb.WriteString(vt.Container.Name)
		sb.WriteString("::iterator")
	case VTSmartPointer:
		sb.WriteString(vt.SmartPtr.Name)
	default:
		sb.WriteString(vt.Kind.String())
	}
	for level := 1; level <= vt.Pointer; level++ {
		sb.WriteString(" *")
		if vt.Constness&(1<<uint(level)) != 0 {
			sb.WriteString(" const")
		}
		if vt.Volatileness&(1<<uint(level)) != 0 {
			sb.WriteString(" volatile")
		}
	}
	switch vt.Ref {
	case RefLValue:
		sb.WriteString(" &")
	case RefRValue:
		sb.WriteString(" &&")
	}
	return sb.String()
}

// intKindForBits maps a platform bit width to the narrowest standard
// integer kind of at least that width.
func intKindForBits(bits int, p library.Platform) VTKind {
	switch {
	case bits <= p.IntBit:
		return VTInt
	case bits <= p.LongBit:
		return VTLong
	case bits <= p.LongLongBit:
		return VTLongLong
	}
	return VTLongLong
}

// kindBits returns the platform width of an integer kind, 0 when unknown.
func kindBits(k VTKind, p library.Platform) int {
	switch k {
	case VTBool, VTChar:
		return p.CharBit
	case VTShort:
		return p.ShortBit
	case VTWChar:
		return 32
	case VTInt:
		return p.IntBit
	case VTLong:
		return p.LongBit
	case VTLongLong:
		return p.LongLongBit
	}
	return 0
}

// promoteInt applies integral promotion: bool/char/short promote to int,
// keeping unsigned only when the narrower type cannot fit in int.
func promoteInt(vt *ValueType, p library.Platform) *ValueType {
	if !vt.IsIntegral() || vt.Pointer > 0 {
		return vt
	}
	if vt.Kind >= VTInt {
		return vt
	}
	out := vt.clone()
	if vt.Sign == Unsigned && kindBits(vt.Kind, p) >= p.IntBit {
		out.Sign = Unsigned
	} else {
		out.Sign = Signed
	}
	out.Kind = VTInt
	out.OriginalTypeName = ""
	return out
}

// arithmeticCommonType applies the usual arithmetic conversions to two
// operand types, returning nil when no common type exists.
func arithmeticCommonType(a, b *ValueType, p library.Platform) *ValueType {
	if a == nil || b == nil {
		return nil
	}
	if !a.IsArithmetic() || a.Pointer > 0 || !b.IsArithmetic() || b.Pointer > 0 {
		return nil
	}
	// Floating wins over integral; wider floating wins.
	if a.IsFloat() || b.IsFloat() {
		k := a.Kind
		if b.Kind > k {
			k = b.Kind
		}
		if !a.IsFloat() {
			k = b.Kind
		} else if !b.IsFloat() {
			k = a.Kind
		}
		return &ValueType{Kind: k, Sign: Signed}
	}
	pa := promoteInt(a.decay(), p)
	pb := promoteInt(b.decay(), p)
	out := pa.clone()
	if pb.Kind > out.Kind {
		out.Kind = pb.Kind
		out.Sign = pb.Sign
		out.OriginalTypeName = ""
	} else if pb.Kind == out.Kind && pb.Sign == Unsigned {
		// Same rank: unsigned wins.
		out.Sign = Unsigned
	}
	out.Ref = RefNone
	out.Constness = 0
	out.Volatileness = 0
	return out
}
