package symdb

import (
	"testing"

	"github.com/standardbeagle/cppsym/internal/library"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinValueTypes(t *testing.T) {
	db := build(t, `
int i;
unsigned long ul;
long long ll;
unsigned u;
signed char sc;
bool b;
float f;
long double ld;
void *vp;
`)
	i := findVar(t, db, "i").VT
	require.NotNil(t, i)
	assert.Equal(t, VTInt, i.Kind)
	assert.Equal(t, Signed, i.Sign)

	ul := findVar(t, db, "ul").VT
	assert.Equal(t, VTLong, ul.Kind)
	assert.Equal(t, Unsigned, ul.Sign)

	assert.Equal(t, VTLongLong, findVar(t, db, "ll").VT.Kind)

	u := findVar(t, db, "u").VT
	assert.Equal(t, VTInt, u.Kind, "bare unsigned means unsigned int")
	assert.Equal(t, Unsigned, u.Sign)

	sc := findVar(t, db, "sc").VT
	assert.Equal(t, VTChar, sc.Kind)
	assert.Equal(t, Signed, sc.Sign)

	assert.Equal(t, VTBool, findVar(t, db, "b").VT.Kind)
	assert.Equal(t, VTFloat, findVar(t, db, "f").VT.Kind)
	assert.Equal(t, VTLongDouble, findVar(t, db, "ld").VT.Kind)

	vp := findVar(t, db, "vp").VT
	assert.Equal(t, VTVoid, vp.Kind)
	assert.Equal(t, 1, vp.Pointer)
}

func TestPointerConstLevelsInValueType(t *testing.T) {
	db := build(t, `
const char * const cp = 0;
`)
	vt := findVar(t, db, "cp").VT
	require.NotNil(t, vt)
	assert.Equal(t, VTChar, vt.Kind)
	assert.Equal(t, 1, vt.Pointer)
	assert.True(t, vt.IsConst(0), "pointee const")
	assert.True(t, vt.IsConst(1), "pointer const")
	assert.Equal(t, "const char * const", vt.String())
}

func TestContainerValueTypes(t *testing.T) {
	db := build(t, `
std::string name;
std::vector<int> counts;
std::vector<int>::iterator cursor;
std::map<int, double> scores;
`)
	name := findVar(t, db, "name").VT
	require.NotNil(t, name)
	assert.Equal(t, VTContainer, name.Kind)
	require.NotNil(t, name.Elem)
	assert.Equal(t, VTChar, name.Elem.Kind)

	counts := findVar(t, db, "counts").VT
	require.NotNil(t, counts)
	assert.Equal(t, VTContainer, counts.Kind)
	require.NotNil(t, counts.Elem)
	assert.Equal(t, VTInt, counts.Elem.Kind)

	cursor := findVar(t, db, "cursor").VT
	require.NotNil(t, cursor)
	assert.Equal(t, VTIterator, cursor.Kind)

	scores := findVar(t, db, "scores").VT
	require.NotNil(t, scores)
	require.NotNil(t, scores.Elem, "map element is the mapped type")
	assert.Equal(t, VTDouble, scores.Elem.Kind)
}

func TestSmartPointerValueTypes(t *testing.T) {
	db := build(t, `
struct Widget {};
std::unique_ptr<Widget> owner;
std::shared_ptr<int> shared;
`)
	owner := findVar(t, db, "owner").VT
	require.NotNil(t, owner)
	assert.Equal(t, VTSmartPointer, owner.Kind)
	require.NotNil(t, owner.Elem)
	assert.Equal(t, VTNonStd, owner.Elem.Kind)
	assert.Equal(t, db.TypeByQualName("Widget").ID, owner.Elem.TypeID)

	shared := findVar(t, db, "shared").VT
	require.NotNil(t, shared)
	require.NotNil(t, shared.Elem)
	assert.Equal(t, VTInt, shared.Elem.Kind)
}

func TestUserRecordAndEnumValueTypes(t *testing.T) {
	db := build(t, `
struct Point { int x; int y; };
enum Color { Red };
Point origin;
Color tint;
Point *ptr;
`)
	origin := findVar(t, db, "origin").VT
	require.NotNil(t, origin)
	assert.Equal(t, VTNonStd, origin.Kind)
	assert.Equal(t, db.TypeByQualName("Point").ID, origin.TypeID)

	tint := findVar(t, db, "tint").VT
	require.NotNil(t, tint)
	assert.Equal(t, VTNonStd, tint.Kind)
	assert.Equal(t, Signed, tint.Sign)

	ptr := findVar(t, db, "ptr").VT
	require.NotNil(t, ptr)
	assert.Equal(t, 1, ptr.Pointer)
}

func TestTypedefChasing(t *testing.T) {
	db := build(t, `
typedef unsigned int uint;
typedef uint *uintp;
uint a;
uintp b;
using rune = int;
rune r;
`)
	a := findVar(t, db, "a").VT
	require.NotNil(t, a)
	assert.Equal(t, VTInt, a.Kind)
	assert.Equal(t, Unsigned, a.Sign)
	assert.Equal(t, "uint", a.OriginalTypeName)

	bvt := findVar(t, db, "b").VT
	require.NotNil(t, bvt)
	assert.Equal(t, VTInt, bvt.Kind)
	assert.Equal(t, 1, bvt.Pointer, "pointer typedef carries indirection")

	r := findVar(t, db, "r").VT
	require.NotNil(t, r)
	assert.Equal(t, VTInt, r.Kind)
}

func TestPodTypeWidths(t *testing.T) {
	db := build(t, `
size_t n;
int32_t fixed;
uint8_t byte_;
`)
	n := findVar(t, db, "n").VT
	require.NotNil(t, n)
	assert.Equal(t, Unsigned, n.Sign)
	assert.True(t, n.IsIntegral())

	fixed := findVar(t, db, "fixed").VT
	require.NotNil(t, fixed)
	assert.Equal(t, VTInt, fixed.Kind)
	assert.Equal(t, Signed, fixed.Sign)

	byte_ := findVar(t, db, "byte_").VT
	require.NotNil(t, byte_)
	assert.Equal(t, Unsigned, byte_.Sign)
}

func TestPlatformChangesPodWidths(t *testing.T) {
	lib := library.Default()
	plat, err := library.PlatformByName("unix32")
	require.NoError(t, err)
	lib.SetPlatform(plat)

	db := buildWith(t, `size_t n;`, lib)
	n := findVar(t, db, "n").VT
	require.NotNil(t, n)
	assert.Equal(t, VTInt, n.Kind, "32-bit size_t fits int on unix32")
	assert.Equal(t, Unsigned, n.Sign)
}

func TestReferenceAndDecay(t *testing.T) {
	db := build(t, `
int x;
const int &cr = x;
`)
	cr := findVar(t, db, "cr").VT
	require.NotNil(t, cr)
	assert.Equal(t, RefLValue, cr.Ref)
	assert.True(t, cr.IsConst(0))

	d := cr.decay()
	assert.Equal(t, RefNone, d.Ref)
	assert.False(t, d.IsConst(0), "decay drops top-level const on non-pointers")
}
