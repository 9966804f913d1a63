package memspace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessible(t *testing.T) {
	assert.True(t, Accessible(SYSTEM))
	assert.True(t, Accessible(PINNED_HOST))
	assert.True(t, Accessible(MANAGED))
	assert.False(t, Accessible(DEVICE))
}

func TestAllocAutoResolvesToSystem(t *testing.T) {
	e := NewEngine()
	h, err := e.Alloc(16, AUTO)
	require.NoError(t, err)
	assert.Equal(t, SYSTEM, h.Space())
}

func TestAllocZeroFilled(t *testing.T) {
	e := NewEngine()
	h, err := e.Alloc(8, SYSTEM)
	require.NoError(t, err)
	for _, b := range h.Bytes() {
		assert.Equal(t, byte(0), b)
	}
}

func TestAllocRejectsNonPositiveSize(t *testing.T) {
	e := NewEngine()
	_, err := e.Alloc(0, SYSTEM)
	assert.Error(t, err)
	_, err = e.Alloc(-1, SYSTEM)
	assert.Error(t, err)
}

func TestFreeToleratesNilAndDoubleFree(t *testing.T) {
	e := NewEngine()
	e.Free(nil)

	h, err := e.Alloc(4, SYSTEM)
	require.NoError(t, err)
	e.Free(h)
	e.Free(h) // no panic
	assert.Equal(t, 0, h.Len())
}

func TestGetSpaceUnknownAddressIsSystem(t *testing.T) {
	e := NewEngine()
	assert.Equal(t, SYSTEM, e.GetSpace(nil))
	assert.Equal(t, SYSTEM, e.GetSpace(&Handle{}))
}

func TestGetSpaceTracksAllocation(t *testing.T) {
	e := NewEngine()
	h, err := e.Alloc(4, PINNED_HOST)
	require.NoError(t, err)
	assert.Equal(t, PINNED_HOST, e.GetSpace(h))
}

func TestCopyAcrossEverySpacePair(t *testing.T) {
	e := NewEngine()
	spaces := []Space{SYSTEM, DEVICE, PINNED_HOST, MANAGED}
	payload := []byte{1, 2, 3, 4, 5, 6, 7, 8}

	for _, src := range spaces {
		for _, dst := range spaces {
			s, err := e.Alloc(len(payload), src)
			require.NoError(t, err)
			copy(s.Bytes(), payload)

			d, err := e.Alloc(len(payload), dst)
			require.NoError(t, err)

			require.NoError(t, e.Copy(Background(), d, s, 0, 0, len(payload)))
			assert.Equal(t, payload, d.Bytes(), "src=%s dst=%s", src, dst)
		}
	}
}

func TestCopyRejectsOutOfBounds(t *testing.T) {
	e := NewEngine()
	s, _ := e.Alloc(4, SYSTEM)
	d, _ := e.Alloc(4, SYSTEM)
	err := e.Copy(Background(), d, s, 0, 0, 8)
	assert.Error(t, err)
}

func TestCopyRejectsFreedHandle(t *testing.T) {
	e := NewEngine()
	s, _ := e.Alloc(4, SYSTEM)
	d, _ := e.Alloc(4, SYSTEM)
	e.Free(s)
	assert.Error(t, e.Copy(Background(), d, s, 0, 0, 4))
}

func TestCopy2DRespectsPitch(t *testing.T) {
	e := NewEngine()
	// src: 2 rows of 4 bytes each in an 8-byte-pitch buffer (4 bytes padding/row)
	src, _ := e.Alloc(16, SYSTEM)
	copy(src.Bytes()[0:4], []byte{1, 2, 3, 4})
	copy(src.Bytes()[8:12], []byte{5, 6, 7, 8})

	dst, _ := e.Alloc(8, SYSTEM) // tightly packed: 2 rows of 4 bytes, pitch 4
	require.NoError(t, e.Copy2D(Background(), dst, src, 0, 0, 4, 8, 4, 2))

	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8}, dst.Bytes())
}

func TestMemsetFillsRange(t *testing.T) {
	e := NewEngine()
	h, _ := e.Alloc(8, SYSTEM)
	require.NoError(t, e.Memset(Background(), h, 2, 4, 0xAB))
	assert.Equal(t, []byte{0, 0, 0xAB, 0xAB, 0xAB, 0xAB, 0, 0}, h.Bytes())
}

func TestMemset2DRespectsPitch(t *testing.T) {
	e := NewEngine()
	h, _ := e.Alloc(16, SYSTEM)
	require.NoError(t, e.Memset2D(Background(), h, 0, 8, 4, 2, 0xFF))
	assert.Equal(t, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0, 0, 0, 0, 0xFF, 0xFF, 0xFF, 0xFF, 0, 0, 0, 0}, h.Bytes())
}

func TestAlignmentMeetsHostMinimum(t *testing.T) {
	e := NewEngine()
	assert.GreaterOrEqual(t, e.Alignment(), 4096)
}

func TestStreamLifecycle(t *testing.T) {
	e := NewEngine()
	id := e.NewStream()
	assert.NotEqual(t, NoStream, id)
	assert.NoError(t, e.Synchronize(id))
	e.DestroyStream(id)
	e.DestroyStream(NoStream) // no-op, no panic
}

func TestParseSpace(t *testing.T) {
	cases := []struct {
		name string
		want Space
	}{
		{"auto", AUTO},
		{"AUTO", AUTO},
		{"system", SYSTEM},
		{"device", DEVICE},
		{"pinned_host", PINNED_HOST},
		{"pinned", PINNED_HOST},
		{"managed", MANAGED},
	}
	for _, c := range cases {
		got, ok := ParseSpace(c.name)
		require.True(t, ok, c.name)
		assert.Equal(t, c.want, got)
	}

	_, ok := ParseSpace("nowhere")
	assert.False(t, ok)
}
