package dtype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScalarNames(t *testing.T) {
	cases := []struct {
		t    Type
		name string
	}{
		{I8, "i8"},
		{U16, "u16"},
		{F32, "f32"},
		{CI16, "ci16"},
		{CF32, "cf32"},
	}
	for _, c := range cases {
		assert.Equal(t, c.name, c.t.String())
	}
}

func TestVectorName(t *testing.T) {
	v := New(32, FLOAT, 4, false)
	assert.Equal(t, "Vector<f32, 4>", v.String())
}

func TestStorageName(t *testing.T) {
	s := New(32, STORAGE, 1, false)
	assert.Equal(t, "u32 (storage)", s.String())
}

func TestComplexFloat32Info(t *testing.T) {
	d := New(32, FLOAT, 1, true)
	info := Describe(d)

	assert.Equal(t, "cf32", info.Name)
	assert.True(t, info.IsComplex)
	assert.True(t, info.IsFloating)
	assert.Equal(t, uint8(32), info.NBit)
}

func TestIsSigned(t *testing.T) {
	assert.True(t, Describe(I8).IsSigned)
	assert.True(t, Describe(F32).IsSigned)
	assert.False(t, Describe(U8).IsSigned)
}

func TestElementBytes(t *testing.T) {
	assert.Equal(t, 4, ElementBytes(F32))
	assert.Equal(t, 8, ElementBytes(CF32))
	assert.Equal(t, 1, ElementBytes(New(1, UINT, 1, false))) // sub-byte rounds up
	assert.Equal(t, 1, ElementBytes(New(4, UINT, 1, false)))
	assert.Equal(t, 32, ElementBytes(New(32, FLOAT, 4, true)))
}

// TestNameRoundTripDistinctness exercises the property from §8: distinct
// codes produce distinct names, across a broad sweep of field combinations.
func TestNameRoundTripDistinctness(t *testing.T) {
	seen := make(map[string]Type)
	classes := []Class{INT, UINT, FLOAT, STRING, STORAGE}
	nbits := []uint8{1, 2, 4, 8, 16, 32, 64}
	vecLens := []uint16{1, 2, 4}
	complexFlags := []bool{false, true}

	for _, c := range classes {
		for _, nb := range nbits {
			for _, vl := range vecLens {
				for _, cx := range complexFlags {
					ty := New(nb, c, vl, cx)
					name := ty.String()
					if prior, ok := seen[name]; ok && prior != ty {
						t.Fatalf("name collision: %s produced by both %#x and %#x", name, uint32(prior), uint32(ty))
					}
					seen[name] = ty
				}
			}
		}
	}
}

func TestLookupResolvesCanonicalNames(t *testing.T) {
	for _, name := range []string{"i8", "u16", "f32", "f64", "ci16", "cf32"} {
		ty, ok := Lookup(name)
		require.True(t, ok, "expected %q to resolve", name)
		assert.Equal(t, name, ty.String())
	}
}

func TestLookupRejectsUnknownName(t *testing.T) {
	_, ok := Lookup("not-a-type")
	assert.False(t, ok)
}

func TestUnknownClassProducesQuestionMarkForm(t *testing.T) {
	bogus := Type(uint32(0xF) << classShift) // class 0xF is not a defined Class
	assert.Contains(t, bogus.String(), "?")
}
