package symdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScopeTreeBasic(t *testing.T) {
	db := build(t, `
namespace gfx {
class Canvas {
public:
    void clear();
};
}
`)
	ns := db.ScopeByName("gfx")
	require.NotNil(t, ns)
	assert.Equal(t, ScopeNamespace, ns.Kind)
	assert.Equal(t, db.GlobalScope().ID, ns.Parent)

	cls := db.ScopeByName("gfx::Canvas")
	require.NotNil(t, cls)
	assert.Equal(t, ScopeClass, cls.Kind)
	assert.Equal(t, "gfx::Canvas", db.QualifiedName(cls))
	assert.Equal(t, ns.ID, cls.Parent)

	require.NotNil(t, db.FunctionByName("gfx::Canvas::clear"))
}

func TestControlScopes(t *testing.T) {
	db := build(t, `
void run(int n) {
    if (n > 0) {
        n--;
    } else {
        n++;
    }
    for (int i = 0; i < n; i++) {
        while (n > i) {
            n--;
        }
    }
    switch (n) {
    case 0: {
        break;
    }
    }
}
`)
	assert.Len(t, scopesOfKind(db, ScopeFunction), 1)
	assert.Len(t, scopesOfKind(db, ScopeIf), 1)
	assert.Len(t, scopesOfKind(db, ScopeElse), 1)
	assert.Len(t, scopesOfKind(db, ScopeFor), 1)
	assert.Len(t, scopesOfKind(db, ScopeWhile), 1)
	assert.Len(t, scopesOfKind(db, ScopeSwitch), 1)

	// The for-init variable lands in the for scope, not the function.
	i := findVar(t, db, "i")
	assert.Equal(t, ScopeFor, db.Scope(i.Scope).Kind)
}

func TestBraceInitializersOpenNoScope(t *testing.T) {
	db := build(t, `
void fill() {
    int x{1};
    int y = {2};
    int arr[3] = {4, 5, 6};
    { int inner; }
}
`)
	blocks := scopesOfKind(db, ScopeBlock)
	require.Len(t, blocks, 1, "only the compound statement opens a block")
	assert.Equal(t, blocks[0].ID, findVar(t, db, "inner").Scope)
	assert.True(t, findVar(t, db, "x").IsLocal())
	assert.True(t, findVar(t, db, "y").IsLocal())
	assert.True(t, findVar(t, db, "arr").IsArray())
}

func TestNamespaceReopening(t *testing.T) {
	db := build(t, `
namespace app { int a; }
namespace app { int b; }
`)
	var nss []*Scope
	for _, s := range db.Scopes() {
		if s.Kind == ScopeNamespace && s.Name == "app" {
			nss = append(nss, s)
		}
	}
	require.Len(t, nss, 1, "reopened namespace must merge into one scope")
	assert.Len(t, nss[0].Variables, 2)
}

func TestNestedClassQualifiedNames(t *testing.T) {
	db := build(t, `
struct Outer {
    struct Inner {
        int x;
    };
};
`)
	inner := db.ScopeByName("Outer::Inner")
	require.NotNil(t, inner)
	assert.Equal(t, ScopeStruct, inner.Kind)

	typ := db.TypeByQualName("Outer::Inner")
	require.NotNil(t, typ)
	assert.Equal(t, inner.ID, typ.Scope)
	assert.Equal(t, typ.ID, inner.Type)
}

func TestForwardDeclarationMergesWithDefinition(t *testing.T) {
	db := build(t, `
class Widget;
class Widget {
    int w;
};
`)
	var widgets []*Type
	for _, typ := range db.Types() {
		if typ.Name == "Widget" {
			widgets = append(widgets, typ)
		}
	}
	require.Len(t, widgets, 1)
	assert.True(t, widgets[0].IsComplete())
}

func TestMemberAccessLevels(t *testing.T) {
	db := build(t, `
class C {
    int priv;
public:
    int pub;
protected:
    int prot;
};
struct S {
    int open;
};
`)
	assert.Equal(t, AccessPrivate, findVar(t, db, "priv").Access)
	assert.Equal(t, AccessPublic, findVar(t, db, "pub").Access)
	assert.Equal(t, AccessProtected, findVar(t, db, "prot").Access)
	assert.Equal(t, AccessPublic, findVar(t, db, "open").Access)
}

func TestBaseClassResolution(t *testing.T) {
	db := build(t, `
struct Base {};
struct Mid : public Base {};
struct Leaf : private Mid, virtual Base {};
`)
	mid := db.TypeByQualName("Mid")
	require.NotNil(t, mid)
	require.Len(t, mid.Bases, 1)
	assert.True(t, mid.Bases[0].Found)
	assert.Equal(t, AccessPublic, mid.Bases[0].Access)

	leaf := db.TypeByQualName("Leaf")
	require.NotNil(t, leaf)
	require.Len(t, leaf.Bases, 2)
	assert.Equal(t, AccessPrivate, leaf.Bases[0].Access)
	assert.True(t, leaf.Bases[1].Virtual)
}

func TestUnknownBaseDiagnosed(t *testing.T) {
	db := build(t, `
struct Widget {};
struct W : Wdiget {};
`)
	typ := db.TypeByQualName("W")
	require.NotNil(t, typ)
	require.Len(t, typ.Bases, 1)
	assert.False(t, typ.Bases[0].Found)
	assert.NotEmpty(t, db.Diagnostics())
}

func TestFriendDeclarations(t *testing.T) {
	db := build(t, `
class Key {
    friend class Door;
};
class Door {};
`)
	typ := db.TypeByQualName("Key")
	require.NotNil(t, typ)
	require.Len(t, typ.Friends, 1)
	assert.Equal(t, "Door", typ.Friends[0].Name)
}
