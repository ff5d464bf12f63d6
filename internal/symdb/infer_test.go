package symdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLiteralTypes(t *testing.T) {
	db := build(t, `
void f() {
    double a = 1.5;
    float b = 2.0f;
    long double c = 3.0L;
    int d = 42;
    unsigned long long e = 10ull;
    long g = 7L;
    char h = 'x';
    const char *s = "hi";
    bool t1 = true;
}
`)
	assert.Equal(t, VTDouble, db.ValueTypeOf(tok(t, db, "1.5", 1)).Kind)
	assert.Equal(t, VTFloat, db.ValueTypeOf(tok(t, db, "2.0f", 1)).Kind)
	assert.Equal(t, VTLongDouble, db.ValueTypeOf(tok(t, db, "3.0L", 1)).Kind)
	assert.Equal(t, VTInt, db.ValueTypeOf(tok(t, db, "42", 1)).Kind)

	e := db.ValueTypeOf(tok(t, db, "10ull", 1))
	assert.Equal(t, VTLongLong, e.Kind)
	assert.Equal(t, Unsigned, e.Sign)

	assert.Equal(t, VTLong, db.ValueTypeOf(tok(t, db, "7L", 1)).Kind)
	assert.Equal(t, VTChar, db.ValueTypeOf(tok(t, db, "'x'", 1)).Kind)

	s := db.ValueTypeOf(tok(t, db, `"hi"`, 1))
	require.NotNil(t, s)
	assert.Equal(t, VTChar, s.Kind)
	assert.Equal(t, 1, s.Pointer)
	assert.True(t, s.IsConst(0))

	assert.Equal(t, VTBool, db.ValueTypeOf(tok(t, db, "true", 1)).Kind)
}

func TestUnsuffixedLiteralWidening(t *testing.T) {
	db := build(t, `
void f() {
    long long big = 3000000000;
}
`)
	// 3e9 does not fit a 32-bit int; it lands in the first fitting type.
	vt := db.ValueTypeOf(tok(t, db, "3000000000", 1))
	require.NotNil(t, vt)
	assert.Equal(t, VTLong, vt.Kind)
	assert.Equal(t, Signed, vt.Sign)
}

func TestUsualArithmeticConversions(t *testing.T) {
	db := build(t, `
void f(int i, double d, unsigned u, float fl, char c) {
    auto a = i + d;
    auto b = i + u;
    auto e = c + c;
    auto g = fl + i;
}
`)
	a := findVar(t, db, "a").VT
	require.NotNil(t, a)
	assert.Equal(t, VTDouble, a.Kind)

	b := findVar(t, db, "b").VT
	require.NotNil(t, b)
	assert.Equal(t, VTInt, b.Kind)
	assert.Equal(t, Unsigned, b.Sign)

	e := findVar(t, db, "e").VT
	require.NotNil(t, e)
	assert.Equal(t, VTInt, e.Kind, "char operands promote to int")

	g := findVar(t, db, "g").VT
	require.NotNil(t, g)
	assert.Equal(t, VTFloat, g.Kind)
}

func TestComparisonAndLogicYieldBool(t *testing.T) {
	db := build(t, `
void f(int i, double d) {
    bool a = i < d;
    bool b = i == 0 && d > 1.0;
}
`)
	assert.Equal(t, VTBool, db.ValueTypeOf(tok(t, db, "<", 1)).Kind)
	assert.Equal(t, VTBool, db.ValueTypeOf(tok(t, db, "&&", 1)).Kind)
}

func TestPointerArithmetic(t *testing.T) {
	db := build(t, `
void f(int *p, int n) {
    auto a = p + n;
    auto b = p - p;
    auto c = *p;
    auto d = &n;
    auto e = p[2];
}
`)
	a := findVar(t, db, "a").VT
	require.NotNil(t, a)
	assert.Equal(t, 1, a.Pointer)
	assert.Equal(t, VTInt, a.Kind)

	b := findVar(t, db, "b").VT
	require.NotNil(t, b)
	assert.Equal(t, 0, b.Pointer)
	assert.Equal(t, Signed, b.Sign)
	assert.Equal(t, "ptrdiff_t", b.OriginalTypeName)

	c := findVar(t, db, "c").VT
	require.NotNil(t, c)
	assert.Equal(t, 0, c.Pointer)
	assert.Equal(t, VTInt, c.Kind)

	d := findVar(t, db, "d").VT
	require.NotNil(t, d)
	assert.Equal(t, 1, d.Pointer)
	assert.Equal(t, VTInt, d.Kind)

	e := findVar(t, db, "e").VT
	require.NotNil(t, e)
	assert.Equal(t, VTInt, e.Kind)
	assert.Equal(t, 0, e.Pointer)
}

func TestTernaryCommonType(t *testing.T) {
	db := build(t, `
void f(bool cond) {
    auto x = cond ? 1 : 2.0;
    auto y = cond ? 'a' : 'b';
}
`)
	x := findVar(t, db, "x").VT
	require.NotNil(t, x)
	assert.Equal(t, VTDouble, x.Kind)

	y := findVar(t, db, "y").VT
	require.NotNil(t, y)
	assert.Equal(t, VTInt, y.Kind, "promoted before merging")
}

func TestAutoDeduction(t *testing.T) {
	db := build(t, `
void f(int i, const int ci, int *p, const char *cs) {
    auto a = i;
    auto b = ci;
    const auto &c = i;
    auto &&d = 1;
    auto *e = p;
    auto g = cs;
}
`)
	a := findVar(t, db, "a").VT
	require.NotNil(t, a)
	assert.Equal(t, VTInt, a.Kind)
	assert.Equal(t, RefNone, a.Ref)

	b := findVar(t, db, "b").VT
	require.NotNil(t, b)
	assert.False(t, b.IsConst(0), "plain auto drops top-level const")

	c := findVar(t, db, "c").VT
	require.NotNil(t, c)
	assert.Equal(t, RefLValue, c.Ref)
	assert.True(t, c.IsConst(0))

	d := findVar(t, db, "d").VT
	require.NotNil(t, d)
	assert.Equal(t, RefRValue, d.Ref)

	e := findVar(t, db, "e").VT
	require.NotNil(t, e)
	assert.Equal(t, 1, e.Pointer)
	assert.Equal(t, VTInt, e.Kind)

	g := findVar(t, db, "g").VT
	require.NotNil(t, g)
	assert.Equal(t, 1, g.Pointer)
	assert.True(t, g.IsConst(0), "pointee const survives auto decay")
}

func TestDecltypeDeclaration(t *testing.T) {
	db := build(t, `
void f(unsigned long n) {
    decltype(n) m = n;
}
`)
	m := findVar(t, db, "m").VT
	require.NotNil(t, m)
	assert.Equal(t, VTLong, m.Kind)
	assert.Equal(t, Unsigned, m.Sign)
}

func TestRangeForElementBinding(t *testing.T) {
	db := build(t, `
void f(std::vector<int> &v) {
    for (auto &e : v) {
        e = 0;
    }
    for (auto x : v) {
        x++;
    }
}
`)
	e := findVar(t, db, "e").VT
	require.NotNil(t, e)
	assert.Equal(t, VTInt, e.Kind)
	assert.Equal(t, RefLValue, e.Ref)

	x := findVar(t, db, "x").VT
	require.NotNil(t, x)
	assert.Equal(t, VTInt, x.Kind)
	assert.Equal(t, RefNone, x.Ref)
}

func TestContainerAccessors(t *testing.T) {
	db := build(t, `
void f(std::vector<double> v, std::string s) {
    auto n = v.size();
    auto &front = v.front();
    auto it = v.begin();
    auto buf = s.data();
    auto ch = s[0];
}
`)
	n := findVar(t, db, "n").VT
	require.NotNil(t, n)
	assert.Equal(t, Unsigned, n.Sign)
	assert.Equal(t, "size_t", n.OriginalTypeName)

	front := findVar(t, db, "front").VT
	require.NotNil(t, front)
	assert.Equal(t, VTDouble, front.Kind)
	assert.Equal(t, RefLValue, front.Ref)

	it := findVar(t, db, "it").VT
	require.NotNil(t, it)
	assert.Equal(t, VTIterator, it.Kind)

	buf := findVar(t, db, "buf").VT
	require.NotNil(t, buf)
	assert.Equal(t, VTChar, buf.Kind)
	assert.Equal(t, 1, buf.Pointer)

	ch := findVar(t, db, "ch").VT
	require.NotNil(t, ch)
	assert.Equal(t, VTChar, ch.Kind)
	assert.Equal(t, 0, ch.Pointer)
}

func TestIteratorDereference(t *testing.T) {
	db := build(t, `
void f(std::vector<int> v) {
    auto it = v.begin();
    auto val = *it;
    auto next = it + 1;
}
`)
	val := findVar(t, db, "val").VT
	require.NotNil(t, val)
	assert.Equal(t, VTInt, val.Kind)

	next := findVar(t, db, "next").VT
	require.NotNil(t, next)
	assert.Equal(t, VTIterator, next.Kind)
}

func TestSmartPointerAccess(t *testing.T) {
	db := build(t, `
struct Widget { int id; };
void f(std::unique_ptr<Widget> up) {
    auto &w = *up;
    auto raw = up.get();
}
`)
	w := findVar(t, db, "w").VT
	require.NotNil(t, w)
	assert.Equal(t, VTNonStd, w.Kind)
	assert.Equal(t, RefLValue, w.Ref)

	raw := findVar(t, db, "raw").VT
	require.NotNil(t, raw)
	assert.Equal(t, VTNonStd, raw.Kind)
	assert.Equal(t, 1, raw.Pointer)
}

func TestMemberAccessAndMethods(t *testing.T) {
	db := build(t, `
struct Size { int w; int h; };
struct Box {
    Size size;
    int area() const;
};
void f(Box box, Box *pb) {
    auto w = box.size.w;
    auto a = box.area();
    auto h = pb->size.h;
}
`)
	w := findVar(t, db, "w").VT
	require.NotNil(t, w)
	assert.Equal(t, VTInt, w.Kind)

	a := findVar(t, db, "a").VT
	require.NotNil(t, a)
	assert.Equal(t, VTInt, a.Kind)
	assert.Same(t, db.FunctionByName("Box::area"), db.CallTarget(tok(t, db, "area", 2)))

	h := findVar(t, db, "h").VT
	require.NotNil(t, h)
	assert.Equal(t, VTInt, h.Kind)
}

func TestInheritedMemberAccess(t *testing.T) {
	db := build(t, `
struct Base { int tag; };
struct Derived : Base {};
void f(Derived d) {
    auto v = d.tag;
}
`)
	v := findVar(t, db, "v").VT
	require.NotNil(t, v)
	assert.Equal(t, VTInt, v.Kind)
}

func TestThisInsideConstMethod(t *testing.T) {
	db := build(t, `
struct Node {
    int value;
    int get() const {
        return this->value;
    }
};
`)
	vt := db.ValueTypeOf(tok(t, db, "this", 1))
	require.NotNil(t, vt)
	assert.Equal(t, 1, vt.Pointer)
	assert.Equal(t, VTNonStd, vt.Kind)
	assert.True(t, vt.IsConst(0))
}

func TestCastsAndFunctionalCasts(t *testing.T) {
	db := build(t, `
void f(double d, void *vp) {
    auto a = static_cast<int>(d);
    auto b = (float)d;
    auto c = int(d);
}
`)
	a := findVar(t, db, "a").VT
	require.NotNil(t, a)
	assert.Equal(t, VTInt, a.Kind)

	b := findVar(t, db, "b").VT
	require.NotNil(t, b)
	assert.Equal(t, VTFloat, b.Kind)

	c := findVar(t, db, "c").VT
	require.NotNil(t, c)
	assert.Equal(t, VTInt, c.Kind)
}

func TestParenGroupingIsNotACast(t *testing.T) {
	db := build(t, `
void f(int i) {
    auto a = (i + 1) * 2;
}
`)
	a := findVar(t, db, "a").VT
	require.NotNil(t, a)
	assert.Equal(t, VTInt, a.Kind)
}

func TestNewExpression(t *testing.T) {
	db := build(t, `
struct Blob {};
void f() {
    auto p = new Blob();
    auto q = new int[8];
}
`)
	p := findVar(t, db, "p").VT
	require.NotNil(t, p)
	assert.Equal(t, VTNonStd, p.Kind)
	assert.Equal(t, 1, p.Pointer)

	q := findVar(t, db, "q").VT
	require.NotNil(t, q)
	assert.Equal(t, VTInt, q.Kind)
	assert.Equal(t, 1, q.Pointer)
}

func TestSizeofYieldsSizeType(t *testing.T) {
	db := build(t, `
void f(int i) {
    auto n = sizeof(i);
}
`)
	n := findVar(t, db, "n").VT
	require.NotNil(t, n)
	assert.Equal(t, Unsigned, n.Sign)
	assert.Equal(t, "size_t", n.OriginalTypeName)
}

func TestStreamShiftReturnsLeftOperand(t *testing.T) {
	db := build(t, `
struct Stream {};
void f(Stream out, int shift) {
    auto a = out << 1;
    auto b = shift << 1;
}
`)
	a := findVar(t, db, "a").VT
	require.NotNil(t, a)
	assert.Equal(t, VTNonStd, a.Kind)

	b := findVar(t, db, "b").VT
	require.NotNil(t, b)
	assert.Equal(t, VTInt, b.Kind)
}

func TestLibraryFunctionReturnTypes(t *testing.T) {
	db := build(t, `
void f(const char *s) {
    auto n = strlen(s);
    auto m = malloc(16);
}
`)
	n := findVar(t, db, "n").VT
	require.NotNil(t, n)
	assert.Equal(t, Unsigned, n.Sign)

	m := findVar(t, db, "m").VT
	require.NotNil(t, m)
	assert.Equal(t, VTVoid, m.Kind)
	assert.Equal(t, 1, m.Pointer)
}

func TestEnumeratorInExpression(t *testing.T) {
	db := build(t, `
enum Color { Red, Green };
enum class Mode { Off, On };
void f() {
    auto c = Red;
    auto m = Mode::On;
    auto sum = Red + 1;
}
`)
	c := findVar(t, db, "c").VT
	require.NotNil(t, c)
	assert.Equal(t, VTNonStd, c.Kind)
	assert.Equal(t, db.TypeByQualName("Color").ID, c.TypeID)

	m := findVar(t, db, "m").VT
	require.NotNil(t, m)
	assert.Equal(t, db.TypeByQualName("Mode").ID, m.TypeID)

	sum := findVar(t, db, "sum").VT
	require.NotNil(t, sum)
	assert.Equal(t, VTInt, sum.Kind, "enums convert to int in arithmetic")
}
