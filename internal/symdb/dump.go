package symdb

import (
	"encoding/xml"
	"fmt"
	"io"
)

// Dump writes the database as an XML document: scope tree, type registry,
// function and variable tables, and the token value types. Element order
// follows arena order so the output is stable across identical builds.
func (db *SymbolDatabase) Dump(w io.Writer) error {
	d := &xmlDumper{w: w}
	d.printf("<?xml version=\"1.0\"?>\n")
	d.open("symboldatabase", "file", db.list.File())

	d.open("scopes")
	for _, s := range db.Scopes() {
		attrs := []string{
			"id", itoa(uint32(s.ID)),
			"kind", s.Kind.String(),
			"parent", itoa(uint32(s.Parent)),
		}
		if s.Name != "" {
			attrs = append(attrs, "name", db.QualifiedName(s))
		}
		if s.Function != 0 {
			attrs = append(attrs, "function", itoa(uint32(s.Function)))
		}
		if s.DefTok != nil {
			attrs = append(attrs, "line", itoa(uint32(s.DefTok.Line())))
		}
		d.open("scope", attrs...)
		for _, id := range s.Variables {
			d.leaf("varref", "id", itoa(uint32(id)))
		}
		for _, id := range s.Functions {
			d.leaf("funcref", "id", itoa(uint32(id)))
		}
		d.close("scope")
	}
	d.close("scopes")

	d.open("types")
	for _, t := range db.Types() {
		d.open("type",
			"id", itoa(uint32(t.ID)),
			"class", t.Class.String(),
			"name", t.QualName,
			"scope", itoa(uint32(t.Scope)))
		for i := range t.Bases {
			base := &t.Bases[i]
			attrs := []string{
				"name", base.Name,
				"access", base.Access.String(),
				"found", boolAttr(base.Found),
			}
			if base.Virtual {
				attrs = append(attrs, "virtual", "true")
			}
			d.leaf("base", attrs...)
		}
		for i := range t.Friends {
			d.leaf("friend", "name", t.Friends[i].Name, "isFriend", "true")
		}
		for _, e := range t.Enumerators {
			attrs := []string{"name", e.NameTok.Str()}
			if e.ValueKnown {
				attrs = append(attrs, "value", fmt.Sprintf("%d", e.Value))
			}
			d.leaf("enumerator", attrs...)
		}
		d.close("type")
	}
	d.close("types")

	d.open("functions")
	for _, f := range db.Functions() {
		attrs := []string{
			"id", itoa(uint32(f.ID)),
			"name", f.Name(),
			"kind", f.Kind.String(),
			"scope", itoa(uint32(f.Scope)),
			"argCount", itoa(uint32(f.ArgCount())),
		}
		if f.IsConst() {
			attrs = append(attrs, "isConst", "true")
		}
		if f.IsStatic() {
			attrs = append(attrs, "isStatic", "true")
		}
		if f.IsVirtual() {
			attrs = append(attrs, "isVirtual", "true")
		}
		if f.IsImplicitlyVirtual() {
			attrs = append(attrs, "isImplicitlyVirtual", "true")
		}
		if f.IsNoexcept() {
			attrs = append(attrs, "isNoexcept", "true")
		}
		if f.IsVariadic() {
			attrs = append(attrs, "isVariadic", "true")
		}
		if f.IsPure() {
			attrs = append(attrs, "isPure", "true")
		}
		if f.IsDeleted() {
			attrs = append(attrs, "isDeleted", "true")
		}
		if f.IsFriend() {
			attrs = append(attrs, "isFriend", "true")
		}
		if f.HasBody() {
			attrs = append(attrs, "hasBody", "true")
		}
		if f.Overrides != 0 {
			attrs = append(attrs, "overrides", itoa(uint32(f.Overrides)))
		}
		d.open("function", attrs...)
		for _, id := range f.Args {
			d.leaf("arg", "id", itoa(uint32(id)))
		}
		d.close("function")
	}
	d.close("functions")

	d.open("variables")
	for _, v := range db.variables[1:] {
		if v == nil {
			continue
		}
		attrs := []string{
			"id", itoa(uint32(v.ID)),
			"name", v.Name(),
			"typeName", v.TypeName(),
			"scope", itoa(uint32(v.Scope)),
		}
		if v.IsPointer() {
			attrs = append(attrs, "isPointer", "true")
		}
		if v.IsArray() {
			attrs = append(attrs, "isArray", "true")
		}
		if v.IsReference() {
			attrs = append(attrs, "isReference", "true")
		}
		if v.IsConst() {
			attrs = append(attrs, "isConst", "true")
		}
		if v.IsStatic() {
			attrs = append(attrs, "isStatic", "true")
		}
		if v.IsArgument() {
			attrs = append(attrs, "isArgument", "true")
		}
		if v.IsClassMember() {
			attrs = append(attrs, "isClassMember", "true")
		}
		if v.VT != nil {
			attrs = append(attrs, "valueType", v.VT.String())
		}
		for i, dim := range v.Dimensions {
			if dim.Known {
				attrs = append(attrs, fmt.Sprintf("dim%d", i), fmt.Sprintf("%d", dim.Num))
			}
		}
		d.leaf("variable", attrs...)
	}
	d.close("variables")

	d.close("symboldatabase")
	return d.err
}

// xmlDumper is a minimal indenting XML writer; errors are sticky.
type xmlDumper struct {
	w     io.Writer
	depth int
	err   error
}

func (d *xmlDumper) printf(format string, args ...any) {
	if d.err != nil {
		return
	}
	_, d.err = fmt.Fprintf(d.w, format, args...)
}

func (d *xmlDumper) indent() {
	for i := 0; i < d.depth; i++ {
		d.printf("  ")
	}
}

func (d *xmlDumper) open(name string, attrs ...string) {
	d.indent()
	d.printf("<%s%s>\n", name, attrString(attrs))
	d.depth++
}

func (d *xmlDumper) close(name string) {
	d.depth--
	d.indent()
	d.printf("</%s>\n", name)
}

func (d *xmlDumper) leaf(name string, attrs ...string) {
	d.indent()
	d.printf("<%s%s/>\n", name, attrString(attrs))
}

func attrString(attrs []string) string {
	out := ""
	for i := 0; i+1 < len(attrs); i += 2 {
		out += fmt.Sprintf(" %s=\"%s\"", attrs[i], xmlEscape(attrs[i+1]))
	}
	return out
}

func xmlEscape(s string) string {
	var buf []byte
	if err := xml.EscapeText(writerFunc(func(p []byte) (int, error) {
		buf = append(buf, p...)
		return len(p), nil
	}), []byte(s)); err != nil {
		return s
	}
	return string(buf)
}

type writerFunc func([]byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) { return f(p) }

func itoa(v uint32) string { return fmt.Sprintf("%d", v) }

func boolAttr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
