package symdb

import (
	"errors"
	"strings"
	"testing"

	"github.com/standardbeagle/cppsym/internal/tokenizer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSurvivesMalformedInput(t *testing.T) {
	// None of these may panic; each either builds a degraded database or
	// reports a SyntaxError.
	sources := []string{
		"",
		";;;",
		"int",
		"class ;",
		"struct A : ;",
		"enum { , , };",
		"void f(",
		"template <typename T> T broken(T t { return t; }",
		"int x = = = 5;",
		"namespace { namespace { namespace { int deep; } } }",
		"operator int double char;",
		"a b c d e f g h;",
		"~ ~ ~ ~;",
		"using using using;",
		"typedef;",
		"#define HALF_STATEMENT int x",
		"int arr[[[7]]];",
		"auto v = [](int x { return x; };",
	}
	for _, src := range sources {
		list, err := tokenizer.Tokenize("fuzz.cpp", src)
		if err != nil {
			continue // unmatched brackets are the tokenizer's call
		}
		db, err := Build(list, nil)
		if err != nil {
			var se *SyntaxError
			assert.ErrorAs(t, err, &se, "source %q", src)
			assert.Nil(t, db, "source %q", src)
			continue
		}
		require.NotNil(t, db, "source %q", src)
		assert.NotNil(t, db.GlobalScope(), "source %q", src)
	}
}

func TestBuildIsIdempotent(t *testing.T) {
	source := `
namespace app {
enum Level { Debug, Info = 5, Warn };
struct Logger {
    Level min;
    void log(Level lv, const char *msg);
    void log(int code);
};
void Logger::log(Level lv, const char *msg) {
    int n = lv + 1;
}
}
`
	a := build(t, source)
	b := build(t, source)
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.Equal(t, a.ScopeCount(), b.ScopeCount())
	assert.Equal(t, a.FunctionCount(), b.FunctionCount())
	assert.Equal(t, a.VariableCount(), b.VariableCount())
}

func TestFingerprintChangesWithContent(t *testing.T) {
	a := build(t, `int x;`)
	b := build(t, `int y;`)
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
}

func TestDiagnosticsAreRecoverable(t *testing.T) {
	db := build(t, `
struct Unknown : MissingBase {};
int ok;
`)
	// The build degrades, records the problem, and keeps going.
	assert.NotNil(t, findVar(t, db, "ok"))
	typ := db.TypeByQualName("Unknown")
	require.NotNil(t, typ)
	assert.False(t, typ.Bases[0].Found)
}

func TestUnknownMacroDiagnosticIsTyped(t *testing.T) {
	db := build(t, `
MYSTERY_EXPORT(widget)

int ok;
`)
	assert.NotNil(t, findVar(t, db, "ok"))

	var me *UnknownMacroError
	found := false
	for _, d := range db.Diagnostics() {
		if errors.As(d.Err, &me) {
			found = true
		}
	}
	require.True(t, found, "expected a typed unknown-macro diagnostic")
	assert.Equal(t, "MYSTERY_EXPORT", me.Name)
	assert.Equal(t, "test.cpp", me.File)
	assert.Equal(t, 2, me.Line)
}

func TestStringRendersScopeTree(t *testing.T) {
	db := build(t, `
namespace a {
struct B {
    void c();
};
}
`)
	out := db.String()
	assert.Contains(t, out, "a")
	assert.Contains(t, out, "B")
}

func TestSuggestTypeName(t *testing.T) {
	db := build(t, `
namespace ui {
struct ScrollBar {};
struct Button {};
}
`)
	assert.Equal(t, "ui::ScrollBar", db.SuggestTypeName("ScrolBar"))
	assert.Equal(t, "ui::Button", db.SuggestTypeName("Buton"))
	assert.Equal(t, "", db.SuggestTypeName("zzzz"))
}

func TestDumpXML(t *testing.T) {
	db := build(t, `
struct Shape {
    virtual double area() const = 0;
};
struct Circle : Shape {
    double r;
    double area() const;
};
double Circle::area() const {
    return 3.14 * r * r;
}
enum Color { Red = 2 };
int counts[4];
`)
	var sb strings.Builder
	require.NoError(t, db.Dump(&sb))
	out := sb.String()

	assert.True(t, strings.HasPrefix(out, "<?xml version=\"1.0\"?>\n"))
	assert.Contains(t, out, `<symboldatabase file="test.cpp">`)
	assert.Contains(t, out, `name="Circle"`)
	assert.Contains(t, out, `<base name="Shape" access="public" found="true"`)
	assert.Contains(t, out, `isPure="true"`)
	assert.Contains(t, out, `isImplicitlyVirtual="true"`)
	assert.Contains(t, out, `hasBody="true"`)
	assert.Contains(t, out, `<enumerator name="Red" value="2"/>`)
	assert.Contains(t, out, `isArray="true"`)
	assert.Contains(t, out, `dim0="4"`)
	assert.Contains(t, out, "</symboldatabase>")
}

func TestDumpEscapesAttributeValues(t *testing.T) {
	db := build(t, `
void cmp(int a, int b);
std::vector<int> v;
`)
	var sb strings.Builder
	require.NoError(t, db.Dump(&sb))
	out := sb.String()
	assert.Contains(t, out, "std :: vector &lt; int &gt;")
	assert.NotContains(t, out, `typeName="std :: vector < int >"`)
}
