package ndarray

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsContiguousCOrder(t *testing.T) {
	shape := []int64{2, 3, 4}
	strides := []int64{3 * 4 * 4, 4 * 4, 4} // elemSize=4
	assert.True(t, IsContiguous(shape, strides, 4))
}

func TestIsContiguousDetectsPadding(t *testing.T) {
	shape := []int64{2, 3, 4}
	strides := []int64{3 * 5 * 4, 5 * 4, 4} // row padded to 5 elements
	assert.False(t, IsContiguous(shape, strides, 4))
}

func TestPaddedDimsMaskFlagsPaddedDimension(t *testing.T) {
	shape := []int64{2, 3, 4}
	strides := []int64{3 * 5 * 4, 5 * 4, 4}
	mask := PaddedDimsMask(shape, strides, 4, 0)
	assert.NotZero(t, mask&(1<<1), "dimension 1 is padded")
}

func TestPaddedDimsMaskContiguousIsZero(t *testing.T) {
	shape := []int64{2, 3, 4}
	strides := []int64{3 * 4 * 4, 4 * 4, 4}
	assert.Equal(t, uint32(0), PaddedDimsMask(shape, strides, 4, 0))
}

func TestPaddedDimsMaskHonorsKeepOverride(t *testing.T) {
	shape := []int64{2, 3, 4}
	strides := []int64{3 * 4 * 4, 4 * 4, 4}
	mask := PaddedDimsMask(shape, strides, 4, 1<<0)
	assert.NotZero(t, mask&(1<<0))
}

// TestFlattenFullyContiguousCollapsesToOneDim covers the common case:
// a fully contiguous 3-D array flattens to a single dimension.
func TestFlattenFullyContiguousCollapsesToOneDim(t *testing.T) {
	shape := []int64{2, 3, 4}
	strides := []int64{3 * 4 * 4, 4 * 4, 4}

	outShape, outStrides := Flatten(shape, strides, 0)
	assert.Equal(t, []int64{24}, outShape)
	assert.Equal(t, []int64{4}, outStrides)
}

func TestFlattenRespectsKeepMask(t *testing.T) {
	shape := []int64{2, 3, 4}
	strides := []int64{3 * 4 * 4, 4 * 4, 4}

	// keep dimension 0 from fusing with the rest.
	outShape, outStrides := Flatten(shape, strides, 1<<0)
	assert.Equal(t, []int64{2, 12}, outShape)
	assert.Equal(t, []int64{48, 4}, outStrides)
}

// TestFlattenPreservesByteIterationOrder implements the §8 invariant
// directly: the sorted multiset of byte offsets visited is identical before
// and after flattening, for a non-trivially-padded descriptor.
func TestFlattenPreservesByteIterationOrder(t *testing.T) {
	shape := []int64{2, 3, 4}
	elemSize := int64(4)
	strides := []int64{3 * 5 * elemSize, 5 * elemSize, elemSize} // dim 1 padded

	before := visitOffsets(shape, strides)

	mask := PaddedDimsMask(shape, strides, elemSize, 0)
	outShape, outStrides := Flatten(shape, strides, mask)
	after := visitOffsets(outShape, outStrides)

	assert.ElementsMatch(t, before, after)
}

func TestFlattenEmptyShape(t *testing.T) {
	outShape, outStrides := Flatten(nil, nil, 0)
	assert.Nil(t, outShape)
	assert.Nil(t, outStrides)
}

// visitOffsets enumerates every byte offset reachable by iterating all
// shape indices under strides, as a sorted multiset (slice).
func visitOffsets(shape, strides []int64) []int64 {
	if len(shape) == 0 {
		return nil
	}
	idx := make([]int64, len(shape))
	var out []int64
	for {
		var off int64
		for i, ix := range idx {
			off += ix * strides[i]
		}
		out = append(out, off)

		d := len(shape) - 1
		for d >= 0 {
			idx[d]++
			if idx[d] < shape[d] {
				break
			}
			idx[d] = 0
			d--
		}
		if d < 0 {
			break
		}
	}
	return out
}
