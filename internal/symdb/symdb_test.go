package symdb

import (
	"testing"

	"github.com/standardbeagle/cppsym/internal/library"
	"github.com/standardbeagle/cppsym/internal/token"
	"github.com/standardbeagle/cppsym/internal/tokenizer"
	"github.com/stretchr/testify/require"
)

func build(t *testing.T, source string) *SymbolDatabase {
	t.Helper()
	return buildWith(t, source, nil)
}

func buildWith(t *testing.T, source string, lib *library.Library) *SymbolDatabase {
	t.Helper()
	list, err := tokenizer.Tokenize("test.cpp", source)
	require.NoError(t, err)
	db, err := Build(list, lib)
	require.NoError(t, err)
	require.NotNil(t, db)
	return db
}

// tok returns the nth occurrence (1-based) of a token spelled text.
func tok(t *testing.T, db *SymbolDatabase, text string, nth int) *token.Token {
	t.Helper()
	for tk := db.TokenList().Front(); tk != nil; tk = tk.Next() {
		if tk.Is(text) {
			nth--
			if nth == 0 {
				return tk
			}
		}
	}
	t.Fatalf("token %q not found", text)
	return nil
}

// findVar returns the first variable with the given name anywhere in the
// database.
func findVar(t *testing.T, db *SymbolDatabase, name string) *Variable {
	t.Helper()
	for id := 1; id <= db.VariableCount(); id++ {
		if v := db.Variable(VariableID(id)); v != nil && v.Name() == name {
			return v
		}
	}
	t.Fatalf("variable %q not found", name)
	return nil
}

func scopesOfKind(db *SymbolDatabase, kind ScopeKind) []*Scope {
	var out []*Scope
	for _, s := range db.Scopes() {
		if s.Kind == kind {
			out = append(out, s)
		}
	}
	return out
}
