package symdb

import (
	"fmt"
	"io"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// ScopeCount returns the number of scopes, excluding the reserved slot 0.
func (db *SymbolDatabase) ScopeCount() int { return len(db.scopes) - 1 }

// TypeCount returns the number of type records.
func (db *SymbolDatabase) TypeCount() int { return len(db.types) - 1 }

// FunctionCount returns the number of function records, counting a merged
// declaration/definition pair once.
func (db *SymbolDatabase) FunctionCount() int { return len(db.Functions()) }

// FunctionByName finds a function by fully qualified name, e.g.
// "ns::Class::method". Overloads return the first declared one.
func (db *SymbolDatabase) FunctionByName(qualified string) *Function {
	i := strings.LastIndex(qualified, "::")
	scopeName, name := "", qualified
	if i >= 0 {
		scopeName, name = qualified[:i], qualified[i+2:]
	}
	s := db.ScopeByName(scopeName)
	if s == nil {
		return nil
	}
	for _, id := range s.Functions {
		if f := db.Function(id); f != nil && f.Name() == name {
			return f
		}
	}
	return nil
}

// EnumeratorValue looks up a qualified enumerator such as "Color::Red" or
// "MAX" and returns its folded value. ok is false when the enumerator does
// not exist or its value is unknown.
func (db *SymbolDatabase) EnumeratorValue(qualified string) (value int64, ok bool) {
	i := strings.LastIndex(qualified, "::")
	name := qualified
	if i >= 0 {
		prefix, base := qualified[:i], qualified[i+2:]
		if id, found := db.typeIndex[prefix]; found {
			typ := db.Type(id)
			if typ != nil && typ.IsEnum() {
				for _, e := range typ.Enumerators {
					if e.NameTok.Is(base) {
						return e.Value, e.ValueKnown
					}
				}
			}
		}
		return 0, false
	}
	for _, typ := range db.Types() {
		if !typ.IsEnum() {
			continue
		}
		for _, e := range typ.Enumerators {
			if e.NameTok.Is(name) {
				return e.Value, e.ValueKnown
			}
		}
	}
	return 0, false
}

// Arguments dereferences a function's parameter handles.
func (db *SymbolDatabase) Arguments(f *Function) []*Variable {
	out := make([]*Variable, 0, len(f.Args))
	for _, id := range f.Args {
		if v := db.Variable(id); v != nil {
			out = append(out, v)
		}
	}
	return out
}

// Fingerprint is a stable digest of the database contents. Two builds of
// the same source with the same library produce the same fingerprint.
func (db *SymbolDatabase) Fingerprint() uint64 {
	h := xxhash.New()
	db.writeNormalized(h)
	return h.Sum64()
}

func (db *SymbolDatabase) writeNormalized(w io.Writer) {
	for _, s := range db.Scopes() {
		fmt.Fprintf(w, "scope %d %s %q parent=%d vars=%d funcs=%d\n",
			s.ID, s.Kind, db.QualifiedName(s), s.Parent, len(s.Variables), len(s.Functions))
	}
	for _, t := range db.Types() {
		fmt.Fprintf(w, "type %d %s %q bases=%d enums=%d\n",
			t.ID, t.Class, t.QualName, len(t.Bases), len(t.Enumerators))
		for _, e := range t.Enumerators {
			fmt.Fprintf(w, "enumerator %s known=%t value=%d\n", e.NameTok.Str(), e.ValueKnown, e.Value)
		}
	}
	for _, f := range db.Functions() {
		fmt.Fprintf(w, "function %d %s kind=%s args=%d flags=%x overrides=%d\n",
			f.ID, f.Name(), f.Kind, len(f.Args), uint32(f.flags), f.Overrides)
	}
	for _, v := range db.variables[1:] {
		if v == nil {
			continue
		}
		fmt.Fprintf(w, "variable %d %s type=%q ind=%d c=%x v=%x ref=%d dims=%d vt=%s\n",
			v.ID, v.Name(), v.TypeName(), v.Indirection, v.Constness, v.Volatileness,
			v.Ref, len(v.Dimensions), v.VT.String())
	}
}

// String renders a human-readable scope tree for debugging.
func (db *SymbolDatabase) String() string {
	var sb strings.Builder
	db.printScope(&sb, db.GlobalScope(), 0)
	return sb.String()
}

func (db *SymbolDatabase) printScope(sb *strings.Builder, s *Scope, depth int) {
	if s == nil {
		return
	}
	indent := strings.Repeat("  ", depth)
	name := s.Name
	if name == "" {
		name = "<" + strings.ToLower(s.Kind.String()) + ">"
	}
	fmt.Fprintf(sb, "%s%s %s\n", indent, s.Kind, name)
	for _, id := range s.Variables {
		v := db.Variable(id)
		if v == nil {
			continue
		}
		fmt.Fprintf(sb, "%s  var %s %s (%s)\n", indent, v.TypeName(), v.Name(), v.VT.String())
	}
	for _, id := range s.Functions {
		f := db.Function(id)
		if f == nil {
			continue
		}
		fmt.Fprintf(sb, "%s  func %s/%d %s\n", indent, f.Name(), f.ArgCount(), f.Kind)
	}
	for _, id := range s.Children {
		db.printScope(sb, db.Scope(id), depth+1)
	}
}
