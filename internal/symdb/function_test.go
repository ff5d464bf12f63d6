package symdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutOfLineDefinitionMerges(t *testing.T) {
	db := build(t, `
struct Widget {
    void resize(int w, int h);
    virtual void draw();
};
void Widget::resize(int w, int h) {
    w = h;
}
`)
	assert.Equal(t, 2, db.FunctionCount())

	resize := db.FunctionByName("Widget::resize")
	require.NotNil(t, resize)
	assert.True(t, resize.HasBody())
	assert.NotNil(t, resize.DefTok, "definition site recorded on the merged record")
	assert.Equal(t, 2, resize.ArgCount())

	body := db.Scope(resize.BodyScope)
	require.NotNil(t, body)
	assert.Equal(t, resize.ID, body.Function)
	assert.Equal(t, db.ScopeByName("Widget").ID, body.FunctionOf)
}

func TestDefinitionBeforeDeclarationStillLinks(t *testing.T) {
	// The out-of-line body appearing before the prototype is re-parsed
	// in a later include in real units; order must not matter.
	db := build(t, `
namespace net {
    int checksum(int seed);
}
int net::checksum(int seed) {
    return seed * 31;
}
`)
	assert.Equal(t, 1, db.FunctionCount())
	fn := db.FunctionByName("net::checksum")
	require.NotNil(t, fn)
	assert.True(t, fn.HasBody())
}

func TestFreeFunctionPrototypeMerges(t *testing.T) {
	db := build(t, `
int add(int a, int b);
int add(int a, int b) {
    return a + b;
}
int sub(int a, int b);
`)
	assert.Equal(t, 2, db.FunctionCount())
	add := db.FunctionByName("add")
	require.NotNil(t, add)
	assert.True(t, add.HasBody())
	assert.False(t, db.FunctionByName("sub").HasBody())
}

func TestOverloadsStaySeparate(t *testing.T) {
	db := build(t, `
void log(int code);
void log(const char *msg);
`)
	assert.Equal(t, 2, db.FunctionCount())
}

func TestImplicitVirtual(t *testing.T) {
	db := build(t, `
struct Base {
    virtual void draw();
    virtual ~Base();
};
struct Derived : Base {
    void draw();
    void other();
};
`)
	d := db.FunctionByName("Derived::draw")
	require.NotNil(t, d)
	assert.True(t, d.IsImplicitlyVirtual())
	assert.True(t, d.IsVirtual())
	assert.False(t, d.HasVirtualSpecifier())

	base, complete := db.GetOverriddenFunction(d)
	require.NotNil(t, base)
	assert.True(t, complete)
	assert.Same(t, db.FunctionByName("Base::draw"), base)
	assert.Equal(t, base.ID, d.Overrides)

	other := db.FunctionByName("Derived::other")
	require.NotNil(t, other)
	assert.False(t, other.IsVirtual())
}

func TestOverloadWithDifferentSignatureIsNotOverride(t *testing.T) {
	db := build(t, `
struct Base {
    virtual void set(int v);
};
struct Derived : Base {
    void set(double v);
};
`)
	d := db.FunctionByName("Derived::set")
	require.NotNil(t, d)
	assert.False(t, d.IsVirtual())
	assert.EqualValues(t, 0, d.Overrides)
}

func TestConstructorClassification(t *testing.T) {
	db := build(t, `
struct Packet {
    Packet();
    Packet(int size);
    Packet(const Packet &other);
    Packet(Packet &&other);
    ~Packet();
};
`)
	cls := db.ScopeByName("Packet")
	require.NotNil(t, cls)
	var kinds []FunctionKind
	for _, id := range cls.Functions {
		kinds = append(kinds, db.Function(id).Kind)
	}
	assert.Equal(t, []FunctionKind{
		FuncConstructor,
		FuncConstructor,
		FuncCopyConstructor,
		FuncMoveConstructor,
		FuncDestructor,
	}, kinds)
}

func TestFunctionSpecifiers(t *testing.T) {
	db := build(t, `
struct Shape {
    virtual double area() const = 0;
    void reset() noexcept;
    Shape(const Shape &) = delete;
    static int count();
};
int vprint(const char *fmt, ...);
`)
	area := db.FunctionByName("Shape::area")
	require.NotNil(t, area)
	assert.True(t, area.IsConst())
	assert.True(t, area.IsPure())
	assert.True(t, area.HasVirtualSpecifier())

	reset := db.FunctionByName("Shape::reset")
	require.NotNil(t, reset)
	assert.True(t, reset.IsNoexcept())

	cls := db.ScopeByName("Shape")
	var deleted *Function
	for _, id := range cls.Functions {
		if f := db.Function(id); f.Kind == FuncCopyConstructor {
			deleted = f
		}
	}
	require.NotNil(t, deleted)
	assert.True(t, deleted.IsDeleted())

	count := db.FunctionByName("Shape::count")
	require.NotNil(t, count)
	assert.True(t, count.IsStatic())

	vprint := db.FunctionByName("vprint")
	require.NotNil(t, vprint)
	assert.True(t, vprint.IsVariadic())
	assert.Equal(t, 1, vprint.ArgCount())
}

func TestDefaultArgumentsAndMinArgCount(t *testing.T) {
	db := build(t, `
void open(const char *path, int mode = 0, bool create = false);
`)
	fn := db.FunctionByName("open")
	require.NotNil(t, fn)
	assert.Equal(t, 3, fn.ArgCount())
	assert.Equal(t, 1, db.MinArgCount(fn))
}

func TestCallTargetInsideBody(t *testing.T) {
	db := build(t, `
int twice(int v) { return v * 2; }
void use() {
    int r = twice(21);
}
`)
	call := tok(t, db, "twice", 2)
	target := db.CallTarget(call)
	require.NotNil(t, target)
	assert.Same(t, db.FunctionByName("twice"), target)
}
