package library

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultContainers(t *testing.T) {
	lib := Default()

	vec, ok := lib.Container("std::vector")
	require.True(t, ok)
	assert.Equal(t, 0, vec.ElementParam)
	assert.False(t, vec.StringLike)

	m, ok := lib.Container("std::map")
	require.True(t, ok)
	assert.Equal(t, 1, m.ElementParam, "map element is the mapped type, not the key")

	s, ok := lib.Container("std::string")
	require.True(t, ok)
	assert.True(t, s.StringLike)

	_, ok = lib.Container("std::stack")
	assert.False(t, ok)
}

func TestContainerLookupToleratesMissingStdPrefix(t *testing.T) {
	lib := Default()

	plain, ok := lib.Container("vector")
	require.True(t, ok)
	qualified, _ := lib.Container("std::vector")
	assert.Same(t, qualified, plain)

	rooted, ok := lib.Container("::vector")
	require.True(t, ok)
	assert.Same(t, qualified, rooted)
}

func TestAccessorYield(t *testing.T) {
	lib := Default()
	vec, ok := lib.Container("std::vector")
	require.True(t, ok)

	assert.Equal(t, YieldItemRef, vec.AccessorYield("front"))
	assert.Equal(t, YieldStartIterator, vec.AccessorYield("begin"))
	assert.Equal(t, YieldEndIterator, vec.AccessorYield("cend"))
	assert.Equal(t, YieldSize, vec.AccessorYield("size"))
	assert.Equal(t, YieldBufferRaw, vec.AccessorYield("data"))
	assert.Equal(t, YieldNone, vec.AccessorYield("swap"))

	var none *Container
	assert.Equal(t, YieldNone, none.AccessorYield("size"))
}

func TestDefaultSmartPointers(t *testing.T) {
	lib := Default()

	up, ok := lib.SmartPointer("std::unique_ptr")
	require.True(t, ok)
	assert.True(t, up.Unique)

	sp, ok := lib.SmartPointer("shared_ptr")
	require.True(t, ok)
	assert.False(t, sp.Unique)

	_, ok = lib.SmartPointer("boost::scoped_ptr")
	assert.False(t, ok)
}

func TestDefaultPodTypes(t *testing.T) {
	lib := Default()

	u32, ok := lib.PodType("uint32_t")
	require.True(t, ok)
	assert.Equal(t, 4, u32.Size)
	assert.Equal(t, byte('u'), u32.Sign)

	sz, ok := lib.PodType("size_t")
	require.True(t, ok)
	assert.Equal(t, 0, sz.Size, "size 0 tracks the platform pointer width")
	assert.Equal(t, byte('u'), sz.Sign)

	pd, ok := lib.PodType("ptrdiff_t")
	require.True(t, ok)
	assert.Equal(t, byte('s'), pd.Sign)

	_, ok = lib.PodType("quad_t")
	assert.False(t, ok)
}

func TestDefaultFunctions(t *testing.T) {
	lib := Default()

	strlen, ok := lib.Function("strlen")
	require.True(t, ok)
	assert.True(t, strlen.Pure)
	assert.Equal(t, "size_t", strlen.ReturnType)

	printf, ok := lib.Function("printf")
	require.True(t, ok)
	assert.True(t, printf.Variadic)

	abort, ok := lib.Function("abort")
	require.True(t, ok)
	assert.True(t, abort.NoReturn)

	_, ok = lib.Function("qsort")
	assert.False(t, ok)
}

func TestNewIsEmpty(t *testing.T) {
	lib := New()
	_, ok := lib.Container("std::vector")
	assert.False(t, ok)
	assert.Equal(t, "native", lib.Platform().Name)
	assert.Empty(t, lib.ContainerNames())
}

func TestPlatformByName(t *testing.T) {
	cases := []struct {
		name       string
		longBit    int
		pointerBit int
	}{
		{"native", 64, 64},
		{"unix32", 32, 32},
		{"unix64", 64, 64},
		{"win32A", 32, 32},
		{"win32W", 32, 32},
		{"win64", 32, 64},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := PlatformByName(tc.name)
			require.NoError(t, err)
			assert.Equal(t, tc.longBit, p.LongBit)
			assert.Equal(t, tc.pointerBit, p.PointerBit)
			assert.Equal(t, 32, p.IntBit)
		})
	}

	_, err := PlatformByName("vax")
	assert.Error(t, err)

	p, err := PlatformByName("")
	require.NoError(t, err)
	assert.Equal(t, "native", p.Name)
}

func TestLoadFileMerges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.toml")
	src := `
platform = "unix32"

[[containers]]
name = "boost::circular_buffer"
elementParam = 0

[containers.accessors]
front = "item-ref"
size = "size"
begin = "start-iterator"

[[smartPointers]]
name = "boost::scoped_ptr"
unique = true

[[functions]]
name = "strnlen"
args = 2
pure = true
nothrow = true
returnType = "size_t"

[[podTypes]]
name = "u_int32_t"
size = 4
sign = "u"
`
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	lib := Default()
	require.NoError(t, lib.LoadFile(path))

	assert.Equal(t, "unix32", lib.Platform().Name)

	cb, ok := lib.Container("boost::circular_buffer")
	require.True(t, ok)
	assert.Equal(t, YieldItemRef, cb.AccessorYield("front"))
	assert.Equal(t, YieldStartIterator, cb.AccessorYield("begin"))

	sp, ok := lib.SmartPointer("boost::scoped_ptr")
	require.True(t, ok)
	assert.True(t, sp.Unique)

	fn, ok := lib.Function("strnlen")
	require.True(t, ok)
	assert.Equal(t, 2, fn.Args)
	assert.Equal(t, "size_t", fn.ReturnType)

	pt, ok := lib.PodType("u_int32_t")
	require.True(t, ok)
	assert.Equal(t, byte('u'), pt.Sign)

	// Defaults survive the merge.
	_, ok = lib.Container("std::vector")
	assert.True(t, ok)
}

func TestLoadFileOverridesByName(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "override.toml")
	src := `
[[containers]]
name = "std::vector"
elementParam = 0
stringLike = true
`
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	lib := Default()
	require.NoError(t, lib.LoadFile(path))

	vec, ok := lib.Container("std::vector")
	require.True(t, ok)
	assert.True(t, vec.StringLike, "later file wins on a name clash")
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		err := Default().LoadFile(filepath.Join(dir, "nope.toml"))
		assert.Error(t, err)
	})

	t.Run("bad toml", func(t *testing.T) {
		path := filepath.Join(dir, "bad.toml")
		require.NoError(t, os.WriteFile(path, []byte("[[containers]\nname="), 0o644))
		assert.Error(t, Default().LoadFile(path))
	})

	t.Run("unknown yield", func(t *testing.T) {
		path := filepath.Join(dir, "yield.toml")
		src := "[[containers]]\nname = \"x\"\n[containers.accessors]\npop = \"magic\"\n"
		require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
		err := Default().LoadFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown yield")
	})

	t.Run("unknown platform", func(t *testing.T) {
		path := filepath.Join(dir, "plat.toml")
		require.NoError(t, os.WriteFile(path, []byte("platform = \"pdp11\"\n"), 0o644))
		assert.Error(t, Default().LoadFile(path))
	})
}
