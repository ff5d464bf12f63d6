package symdb

import (
	"strings"

	"github.com/standardbeagle/cppsym/internal/library"
	"github.com/standardbeagle/cppsym/internal/token"
)

// baseValueType derives the ValueType of a written base type (no declarator
// stars or refs), resolving typedefs, library pod types, containers, smart
// pointers, and user records. Unknown names yield VTUnknown, never an
// error.
func (b *builder) baseValueType(start, end *token.Token, s *Scope) *ValueType {
	if start == nil {
		return &ValueType{}
	}

	p := start
	vt := &ValueType{}
	for p != nil {
		switch p.Str() {
		case "const":
			vt.Constness |= 1
		case "volatile":
			vt.Volatileness |= 1
		case "struct", "class", "union", "enum", "typename":
			// elaboration noise
		default:
			goto prefixDone
		}
		if p == end {
			return vt
		}
		p = p.Next()
	}
prefixDone:

	if p.Is("auto") {
		vt.Kind = VTUnknown
		vt.OriginalTypeName = "auto"
		return vt
	}
	if p.Is("decltype") {
		// decltype(expr) is resolved by the inference walk; the base
		// type alone stays unknown here.
		return vt
	}

	if p.IsStandardType() {
		b.applyStandardType(vt, p, end)
		return vt
	}

	name := coreTypeName(p, end)
	if name == "" {
		return vt
	}
	return b.namedValueType(vt, name, p, end, s, 0)
}

func (b *builder) applyStandardType(vt *ValueType, p, end *token.Token) {
	vt.Sign = SignUnknown
	for ; p != nil; p = p.Next() {
		switch p.Str() {
		case "signed":
			vt.Sign = Signed
		case "unsigned":
			vt.Sign = Unsigned
		case "bool":
			vt.Kind = VTBool
		case "char", "char8_t":
			vt.Kind = VTChar
		case "char16_t", "char32_t", "wchar_t":
			vt.Kind = VTWChar
		case "short":
			vt.Kind = VTShort
		case "int":
			if vt.Kind != VTShort && vt.Kind != VTLong && vt.Kind != VTLongLong {
				vt.Kind = VTInt
			}
		case "long":
			if vt.Kind == VTLong {
				vt.Kind = VTLongLong
			} else if vt.Kind == VTDouble {
				vt.Kind = VTLongDouble
			} else {
				vt.Kind = VTLong
			}
		case "float":
			vt.Kind = VTFloat
		case "double":
			if vt.Kind == VTLong {
				vt.Kind = VTLongDouble
			} else {
				vt.Kind = VTDouble
			}
		case "void":
			vt.Kind = VTVoid
		case "const":
			vt.Constness |= 1
		case "volatile":
			vt.Volatileness |= 1
		default:
			goto done
		}
		if p == end {
			break
		}
	}
done:
	// `unsigned` and `signed` alone mean int.
	if vt.Kind == VTUnknown && vt.Sign != SignUnknown {
		vt.Kind = VTInt
	}
	if vt.Sign == SignUnknown && vt.Kind >= VTShort && vt.Kind <= VTLongLong {
		vt.Sign = Signed
	}
	if vt.Sign == SignUnknown && vt.Kind == VTChar {
		if b.lib.Platform().CharSigned {
			vt.Sign = Signed
		} else {
			vt.Sign = Unsigned
		}
	}
	if vt.Kind == VTBool {
		vt.Sign = Unsigned
	}
}

// namedValueType resolves a user-written type name: container, smart
// pointer, pod alias, typedef, record, or enum.
func (b *builder) namedValueType(vt *ValueType, name string, start, end *token.Token, s *Scope, depth int) *ValueType {
	if depth > 10 {
		return vt
	}

	if c, ok := b.lib.Container(name); ok {
		vt.Kind = VTContainer
		vt.Container = c
		vt.OriginalTypeName = name
		vt.Elem = b.containerElement(c, start, end, s)
		return vt
	}
	if sp, ok := b.lib.SmartPointer(name); ok {
		vt.Kind = VTSmartPointer
		vt.SmartPtr = sp
		vt.OriginalTypeName = name
		vt.Elem = b.templateArgValueType(start, end, 0, s)
		return vt
	}
	if strings.HasSuffix(name, "::iterator") || strings.HasSuffix(name, "::const_iterator") {
		cname := name[:strings.LastIndex(name, "::")]
		if c, ok := b.lib.Container(cname); ok {
			vt.Kind = VTIterator
			vt.Container = c
			vt.OriginalTypeName = name
			return vt
		}
	}
	if pt, ok := b.lib.PodType(name); ok {
		p := b.lib.Platform()
		bits := pt.Size * 8
		if pt.Size == 0 {
			bits = p.PointerBit
		}
		vt.Kind = intKindForBits(bits, p)
		if kindBits(vt.Kind, p) != bits {
			vt.Kind = VTUnknownInt
		}
		if pt.Sign == 'u' {
			vt.Sign = Unsigned
		} else {
			vt.Sign = Signed
		}
		vt.OriginalTypeName = name
		return vt
	}
	if id := b.resolveTypeName(s, name); id != 0 {
		typ := b.db.Type(id)
		vt.Kind = VTNonStd
		vt.TypeID = id
		vt.TypeScope = typ.Scope
		vt.OriginalTypeName = name
		if typ.IsEnum() {
			vt.Sign = Signed
		}
		return vt
	}
	if info, ok := b.lookupTypedef(s, name); ok {
		inner := b.baseValueTypeDepth(info.start, info.end, b.db.Scope(info.scope), depth+1)
		inner.Constness |= vt.Constness
		inner.Volatileness |= vt.Volatileness
		// Typedef-preserving display keeps the written alias.
		inner.OriginalTypeName = name
		// Pointer typedefs carry indirection into the alias.
		extra := 0
		for t := info.start; t != nil; t = t.Next() {
			if t.Is("*") {
				extra++
			}
			if t == info.end {
				break
			}
		}
		inner.Pointer += extra
		return inner
	}
	vt.OriginalTypeName = name
	return vt
}

func (b *builder) baseValueTypeDepth(start, end *token.Token, s *Scope, depth int) *ValueType {
	if s == nil || depth > 10 {
		return &ValueType{}
	}
	return b.baseValueType(start, end, s)
}

// containerElement derives the element ValueType from the written template
// arguments, using the descriptor's element parameter index. String-like
// containers default to char.
func (b *builder) containerElement(c *library.Container, start, end *token.Token, s *Scope) *ValueType {
	if c.StringLike {
		elem := &ValueType{Kind: VTChar}
		if b.lib.Platform().CharSigned {
			elem.Sign = Signed
		} else {
			elem.Sign = Unsigned
		}
		return elem
	}
	return b.templateArgValueType(start, end, c.ElementParam, s)
}

// templateArgValueType parses the idx-th top-level template argument of
// the written type as a ValueType. Returns nil when absent.
func (b *builder) templateArgValueType(start, end *token.Token, idx int, s *Scope) *ValueType {
	var open *token.Token
	for t := start; t != nil; t = t.Next() {
		if t.Is("<") && t.Link() != nil {
			open = t
			break
		}
		if t == end {
			break
		}
	}
	if open == nil {
		return nil
	}
	closer := open.Link()
	argStart := open.Next()
	depth0End := closer
	n := 0
	for t := argStart; t != nil && t != closer; t = t.Next() {
		if t.Link() != nil && (t.Is("<") || t.Is("(") || t.Is("[")) {
			t = t.Link()
			continue
		}
		if t.Is(",") {
			if n == idx {
				depth0End = t
				break
			}
			n++
			argStart = t.Next()
		}
	}
	if n < idx {
		return nil
	}
	aEnd := depth0End.Prev()
	if argStart == nil || aEnd == nil || argStart == depth0End {
		return nil
	}
	vt := b.baseValueType(argStart, aEnd, s)
	// Declarator stars inside the argument.
	for t := argStart; t != nil && t != depth0End; t = t.Next() {
		if t.Is("*") {
			vt.Pointer++
		}
	}
	return vt
}

// variableValueType derives the full ValueType of a declared variable,
// combining the base type with the declarator's indirection, qualifiers,
// reference kind, and array-ness.
func (b *builder) variableValueType(v *Variable) *ValueType {
	s := b.db.Scope(v.Scope)
	if s == nil {
		s = b.db.GlobalScope()
	}
	vt := b.baseValueType(v.TypeStart, v.TypeEnd, s)
	vt.Pointer += v.Indirection
	vt.Constness |= v.Constness
	vt.Volatileness |= v.Volatileness
	vt.Ref = v.Ref
	return vt
}
