package ndarray

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsdr/streamcore/dtype"
	"github.com/nsdr/streamcore/memspace"
)

func TestMallocProducesContiguousStrides(t *testing.T) {
	e := memspace.NewEngine()
	d, err := Malloc(e, memspace.SYSTEM, dtype.F32, []int64{2, 3, 4})
	require.NoError(t, err)
	defer d.Free(e)

	assert.Equal(t, []int64{48, 16, 4}, d.Strides)
	assert.True(t, IsContiguous(d.Shape, d.Strides, int64(dtype.ElementBytes(dtype.F32))))
	assert.True(t, d.Native())
}

func TestMallocRejectsEmptyShape(t *testing.T) {
	e := memspace.NewEngine()
	_, err := Malloc(e, memspace.SYSTEM, dtype.F32, nil)
	assert.Error(t, err)
}

func TestMallocRejectsNegativeDim(t *testing.T) {
	e := memspace.NewEngine()
	_, err := Malloc(e, memspace.SYSTEM, dtype.F32, []int64{2, -1})
	assert.Error(t, err)
}

func TestMallocRejectsZeroDim(t *testing.T) {
	e := memspace.NewEngine()
	_, err := Malloc(e, memspace.SYSTEM, dtype.F32, []int64{2, 0, 4})
	assert.Error(t, err)
}

func TestMallocRejectsTooManyDims(t *testing.T) {
	e := memspace.NewEngine()
	shape := make([]int64, MaxDims+1)
	for i := range shape {
		shape[i] = 1
	}
	_, err := Malloc(e, memspace.SYSTEM, dtype.F32, shape)
	assert.Error(t, err)
}

func TestMallocAcceptsMaxDims(t *testing.T) {
	e := memspace.NewEngine()
	shape := make([]int64, MaxDims)
	for i := range shape {
		shape[i] = 1
	}
	d, err := Malloc(e, memspace.SYSTEM, dtype.F32, shape)
	require.NoError(t, err)
	d.Free(e)
}

func TestCopyRejectsImmutableDestination(t *testing.T) {
	e := memspace.NewEngine()
	s, err := Malloc(e, memspace.SYSTEM, dtype.U8, []int64{4})
	require.NoError(t, err)
	defer s.Free(e)
	d, err := Malloc(e, memspace.SYSTEM, dtype.U8, []int64{4})
	require.NoError(t, err)
	defer d.Free(e)
	d.MakeImmutable()

	assert.Error(t, Copy(e, memspace.Background(), d, s))
}

func TestMemsetRejectsImmutableDestination(t *testing.T) {
	e := memspace.NewEngine()
	d, err := Malloc(e, memspace.SYSTEM, dtype.U8, []int64{4})
	require.NoError(t, err)
	defer d.Free(e)
	d.MakeImmutable()

	assert.Error(t, Memset(e, memspace.Background(), d, 0x1))
}

func TestViewInheritsImmutableFlag(t *testing.T) {
	e := memspace.NewEngine()
	d, err := Malloc(e, memspace.SYSTEM, dtype.U8, []int64{2, 4})
	require.NoError(t, err)
	defer d.Free(e)
	d.MakeImmutable()

	v := d.View([]int64{8}, []int64{1})
	assert.True(t, v.Immutable)
}

func TestFreeIsIdempotent(t *testing.T) {
	e := memspace.NewEngine()
	d, err := Malloc(e, memspace.SYSTEM, dtype.U8, []int64{4})
	require.NoError(t, err)
	d.Free(e)
	d.Free(e) // no panic
}

func TestViewIsUnownedAndFreeIsNoop(t *testing.T) {
	e := memspace.NewEngine()
	d, err := Malloc(e, memspace.SYSTEM, dtype.U8, []int64{2, 4})
	require.NoError(t, err)

	v := d.View([]int64{8}, []int64{1})
	v.Free(e) // must not touch shared storage

	// original still usable after the view's no-op Free.
	require.NoError(t, Memset(e, memspace.Background(), d, 0x7))
	d.Free(e)
}

func TestConjugateTogglesFlagAndSharesStorage(t *testing.T) {
	e := memspace.NewEngine()
	d, err := Malloc(e, memspace.SYSTEM, dtype.CF32, []int64{4})
	require.NoError(t, err)
	defer d.Free(e)

	c := d.Conjugate()
	assert.True(t, c.Conjugated())
	assert.False(t, d.Conjugated())
	assert.Same(t, d.Handle(), c.Handle())
}

// TestCopyIdentityAcrossSpacesAndPaddedDims implements the §8 property:
// copying preserves element values across every (src,dst) space pair, for
// both a contiguous and a padded layout.
func TestCopyIdentityAcrossSpacesAndPaddedDims(t *testing.T) {
	spaces := []memspace.Space{memspace.SYSTEM, memspace.DEVICE, memspace.PINNED_HOST, memspace.MANAGED}
	e := memspace.NewEngine()

	for _, src := range spaces {
		for _, dst := range spaces {
			s, err := Malloc(e, src, dtype.U8, []int64{3, 4})
			require.NoError(t, err)
			payload := s.Handle().Bytes()
			for i := range payload {
				payload[i] = byte(i + 1)
			}

			d, err := Malloc(e, dst, dtype.U8, []int64{3, 4})
			require.NoError(t, err)

			require.NoError(t, Copy(e, memspace.Background(), d, s))
			assert.Equal(t, s.Handle().Bytes(), d.Handle().Bytes(), "src=%s dst=%s", src, dst)

			// Padded layout: the same rows of width 4 stored at a pitch of 6.
			ph, err := e.Alloc(3*6, src)
			require.NoError(t, err)
			for r := 0; r < 3; r++ {
				copy(ph.Bytes()[r*6:r*6+4], payload[r*4:r*4+4])
			}
			ps := &Descriptor{Space: src, DType: dtype.U8, Shape: []int64{3, 4}, Strides: []int64{6, 1}, handle: ph, owned: true}
			pd, err := Malloc(e, dst, dtype.U8, []int64{3, 4})
			require.NoError(t, err)
			require.NoError(t, Copy(e, memspace.Background(), pd, ps))
			assert.Equal(t, s.Handle().Bytes(), pd.Handle().Bytes(), "padded src=%s dst=%s", src, dst)

			s.Free(e)
			d.Free(e)
			ps.Free(e)
			pd.Free(e)
		}
	}
}

func TestCopyRejectsShapeMismatch(t *testing.T) {
	e := memspace.NewEngine()
	s, err := Malloc(e, memspace.SYSTEM, dtype.U8, []int64{2, 4})
	require.NoError(t, err)
	d, err := Malloc(e, memspace.SYSTEM, dtype.U8, []int64{4, 2})
	require.NoError(t, err)
	assert.Error(t, Copy(e, memspace.Background(), d, s))
}

func TestCopyRejectsDTypeMismatch(t *testing.T) {
	e := memspace.NewEngine()
	s, err := Malloc(e, memspace.SYSTEM, dtype.U8, []int64{4})
	require.NoError(t, err)
	d, err := Malloc(e, memspace.SYSTEM, dtype.U32, []int64{4})
	require.NoError(t, err)
	assert.Error(t, Copy(e, memspace.Background(), d, s))
}

// TestCopyPaddedTwoDimensionalFallsBackToCopy2D builds a descriptor whose
// rows are padded to a wider pitch than the logical row width and confirms
// Copy still lands the right bytes via the per-row Copy2D fallback.
func TestCopyPaddedTwoDimensionalFallsBackToCopy2D(t *testing.T) {
	e := memspace.NewEngine()

	srcHandle, err := e.Alloc(2*6, memspace.SYSTEM) // 2 rows, pitch 6, logical width 4
	require.NoError(t, err)
	for r := 0; r < 2; r++ {
		row := srcHandle.Bytes()[r*6 : r*6+4]
		for i := range row {
			row[i] = byte(r*4 + i + 1)
		}
	}
	src := &Descriptor{Space: memspace.SYSTEM, DType: dtype.U8, Shape: []int64{2, 4}, Strides: []int64{6, 1}, handle: srcHandle, owned: true}

	dst, err := Malloc(e, memspace.SYSTEM, dtype.U8, []int64{2, 4})
	require.NoError(t, err)

	require.NoError(t, Copy(e, memspace.Background(), dst, src))
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8}, dst.Handle().Bytes())

	src.Free(e)
	dst.Free(e)
}

func TestMemsetFillsContiguousDescriptor(t *testing.T) {
	e := memspace.NewEngine()
	d, err := Malloc(e, memspace.SYSTEM, dtype.U8, []int64{2, 3})
	require.NoError(t, err)
	defer d.Free(e)

	require.NoError(t, Memset(e, memspace.Background(), d, 0x42))
	for _, b := range d.Handle().Bytes() {
		assert.Equal(t, byte(0x42), b)
	}
}

func TestValidateRejectsStrideShapeLengthMismatch(t *testing.T) {
	d := &Descriptor{Shape: []int64{2, 3}, Strides: []int64{4}, DType: dtype.U8}
	assert.Error(t, d.Validate())
}
