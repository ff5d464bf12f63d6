package symdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnumeratorFolding(t *testing.T) {
	db := build(t, `
enum Color { Red = 11, Green, Blue = Red + Green };
`)
	for name, want := range map[string]int64{
		"Color::Red":   11,
		"Color::Green": 12,
		"Color::Blue":  23,
	} {
		got, ok := db.EnumeratorValue(name)
		require.True(t, ok, name)
		assert.Equal(t, want, got, name)
	}

	// Unscoped enumerators are reachable bare too.
	got, ok := db.EnumeratorValue("Green")
	require.True(t, ok)
	assert.EqualValues(t, 12, got)
}

func TestEnumClassScoping(t *testing.T) {
	db := build(t, `
enum class Mode : unsigned char { Off, On = 1 << 3, Auto };
`)
	typ := db.TypeByQualName("Mode")
	require.NotNil(t, typ)
	assert.True(t, typ.EnumClass)

	off, ok := db.EnumeratorValue("Mode::Off")
	require.True(t, ok)
	assert.EqualValues(t, 0, off)
	on, ok := db.EnumeratorValue("Mode::On")
	require.True(t, ok)
	assert.EqualValues(t, 8, on)
	auto, ok := db.EnumeratorValue("Mode::Auto")
	require.True(t, ok)
	assert.EqualValues(t, 9, auto)
}

func TestEnumeratorExpressionOperators(t *testing.T) {
	db := build(t, `
enum Masks {
    A = 1 << 4,
    B = A | 2,
    C = (A + B) * 2,
    D = A ? 0 : 1
};
`)
	a, ok := db.EnumeratorValue("Masks::A")
	require.True(t, ok)
	assert.EqualValues(t, 16, a)
	bv, ok := db.EnumeratorValue("Masks::B")
	require.True(t, ok)
	assert.EqualValues(t, 18, bv)
	c, ok := db.EnumeratorValue("Masks::C")
	require.True(t, ok)
	assert.EqualValues(t, 68, c)

	// Unsupported initializer shapes stay unknown rather than wrong.
	_, ok = db.EnumeratorValue("Masks::D")
	assert.False(t, ok)
}

func TestEnumeratorSizeofAndChar(t *testing.T) {
	db := build(t, `
enum Sizes {
    IntSize = sizeof(int),
    Letter = 'A'
};
`)
	is, ok := db.EnumeratorValue("Sizes::IntSize")
	require.True(t, ok)
	assert.EqualValues(t, 4, is)
	l, ok := db.EnumeratorValue("Sizes::Letter")
	require.True(t, ok)
	assert.EqualValues(t, 65, l)
}

func TestUnknownInitializerDoesNotPoisonFollowers(t *testing.T) {
	db := build(t, `
enum Partial { P0 = UNKNOWN_MACRO, P1, P2 = 5, P3 };
`)
	_, ok := db.EnumeratorValue("Partial::P0")
	assert.False(t, ok)
	_, ok = db.EnumeratorValue("Partial::P1")
	assert.False(t, ok, "successor of an unknown value is unknown")
	p2, ok := db.EnumeratorValue("Partial::P2")
	require.True(t, ok)
	assert.EqualValues(t, 5, p2)
	p3, ok := db.EnumeratorValue("Partial::P3")
	require.True(t, ok)
	assert.EqualValues(t, 6, p3)
}

func TestArrayDimensionFromEnumerator(t *testing.T) {
	db := build(t, `
enum { MAX = 10 };
int table[MAX + 2];
int plain[MAX];
`)
	table := findVar(t, db, "table")
	require.Len(t, table.Dimensions, 1)
	assert.True(t, table.Dimensions[0].Known)
	assert.EqualValues(t, 12, table.Dimensions[0].Num)

	plain := findVar(t, db, "plain")
	require.Len(t, plain.Dimensions, 1)
	assert.True(t, plain.Dimensions[0].Known)
	assert.EqualValues(t, 10, plain.Dimensions[0].Num)
}

func TestDimensionFromConstVariable(t *testing.T) {
	db := build(t, `
const int N = 4;
int grid[N * N];
`)
	grid := findVar(t, db, "grid")
	require.Len(t, grid.Dimensions, 1)
	assert.True(t, grid.Dimensions[0].Known)
	assert.EqualValues(t, 16, grid.Dimensions[0].Num)
}
