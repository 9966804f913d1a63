package ndarray

import (
	"github.com/nsdr/streamcore/dtype"
	"github.com/nsdr/streamcore/memspace"
	"github.com/nsdr/streamcore/status"
)

// Descriptor is a strided multi-dimensional array view over a memspace
// Handle: shape in elements, strides in bytes, matching the source's
// ndarray.py layout. A Descriptor produced by Malloc owns its Handle and
// must be released exactly once via Free; a Descriptor produced by View
// aliases another's Handle and its Free is a no-op — see the single-owner
// resolution in DESIGN.md for why there is no third way to construct one.
type Descriptor struct {
	Space   memspace.Space
	DType   dtype.Type
	Shape   []int64
	Strides []int64

	// Immutable marks a descriptor that may not appear as the destination
	// of Copy or Memset. A View inherits its source's Immutable flag;
	// MakeImmutable sets it on a descriptor after the fact.
	Immutable bool

	handle *memspace.Handle
	owned  bool
	freed  bool

	conjugated bool
	native     bool
}

// MakeImmutable marks d as immutable in place and returns d, so callers can
// chain it onto Malloc/View.
func (d *Descriptor) MakeImmutable() *Descriptor {
	d.Immutable = true
	return d
}

// Native reports whether the descriptor's data is in the host's native byte
// order, surfaced from the source's ndarray.py .native flag.
func (d *Descriptor) Native() bool { return d.native }

// Conjugated reports whether the descriptor represents the complex
// conjugate of its underlying storage without having touched the bytes,
// mirroring ndarray.py's .conjugated flag.
func (d *Descriptor) Conjugated() bool { return d.conjugated }

// Handle returns the backing memspace.Handle. Valid until Free.
func (d *Descriptor) Handle() *memspace.Handle { return d.handle }

// Validate checks the descriptor's shape/space/dtype for internal
// consistency, following the teacher's Validate() error convention.
func (d *Descriptor) Validate() error {
	const op = "ndarray.Validate"
	if len(d.Shape) == 0 || len(d.Shape) > MaxDims {
		return status.New(status.INVALID_SHAPE, op)
	}
	if len(d.Strides) != len(d.Shape) {
		return status.New(status.INVALID_STRIDE, op)
	}
	for _, s := range d.Shape {
		if s < 1 {
			return status.New(status.INVALID_SHAPE, op)
		}
	}
	if dtype.ElementBytes(d.DType) <= 0 {
		return status.New(status.INVALID_DTYPE, op)
	}
	return nil
}

// Malloc reads space/dtype/shape and allocates a new, owned, C-contiguous
// Descriptor: strides are derived, not caller-supplied. On failure it
// returns a nil Descriptor and a non-nil error; no partially-built
// Descriptor ever escapes.
func Malloc(engine *memspace.Engine, space memspace.Space, dt dtype.Type, shape []int64) (*Descriptor, error) {
	const op = "ndarray.Malloc"
	if len(shape) == 0 || len(shape) > MaxDims {
		return nil, status.New(status.INVALID_SHAPE, op)
	}
	for _, s := range shape {
		if s < 1 {
			return nil, status.New(status.INVALID_SHAPE, op)
		}
	}

	elemSize := int64(dtype.ElementBytes(dt))
	if elemSize <= 0 {
		return nil, status.New(status.INVALID_DTYPE, op)
	}

	shapeCopy := append([]int64(nil), shape...)
	strides := contiguousStrides(shapeCopy, elemSize)
	nbytes := numElements(shapeCopy) * elemSize

	h, err := engine.Alloc(int(nbytes), space)
	if err != nil {
		return nil, status.Wrap(status.From(err), op, err)
	}

	return &Descriptor{
		Space:   h.Space(),
		DType:   dt,
		Shape:   shapeCopy,
		Strides: strides,
		handle:  h,
		owned:   true,
		native:  true,
	}, nil
}

// Free releases the descriptor's storage via the memory engine in d.Space.
// It is a no-op on a View (unowned) descriptor, tolerates a nil Descriptor,
// and tolerates a second call on the same Descriptor.
func (d *Descriptor) Free(engine *memspace.Engine) {
	if d == nil || d.freed || !d.owned {
		return
	}
	engine.Free(d.handle)
	d.freed = true
}

// View returns a new Descriptor aliasing d's storage with shape/strides
// overridden by the caller, and owned=false: its Free is a no-op, and
// callers remain responsible for freeing the original. This is the only
// sanctioned way to alias another descriptor's data.
func (d *Descriptor) View(shape, strides []int64) *Descriptor {
	return &Descriptor{
		Space:      d.Space,
		DType:      d.DType,
		Shape:      append([]int64(nil), shape...),
		Strides:    append([]int64(nil), strides...),
		Immutable:  d.Immutable,
		handle:     d.handle,
		owned:      false,
		conjugated: d.conjugated,
		native:     d.native,
	}
}

// Conjugate returns a View sharing d's storage with the conjugated flag
// flipped, matching the source's zero-copy .conj() behavior.
func (d *Descriptor) Conjugate() *Descriptor {
	v := d.View(d.Shape, d.Strides)
	v.conjugated = !d.conjugated
	return v
}

func elemSizeOf(d *Descriptor) int64 { return int64(dtype.ElementBytes(d.DType)) }

func nbytesOf(d *Descriptor) int64 { return numElements(d.Shape) * elemSizeOf(d) }

func sameShape(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Copy copies src's contents into dst, flattening both descriptors by their
// combined padded-dimension mask first so the common contiguous case always
// takes the single fast-path copy.
func Copy(engine *memspace.Engine, ctx memspace.Context, dst, src *Descriptor) error {
	const op = "ndarray.Copy"
	if dst == nil || src == nil {
		return status.New(status.INVALID_HANDLE, op)
	}
	if dst.Immutable {
		return status.New(status.INVALID_STATE, op)
	}
	if !sameShape(dst.Shape, src.Shape) {
		return status.New(status.INVALID_SHAPE, op)
	}
	if dst.DType != src.DType {
		return status.New(status.INVALID_DTYPE, op)
	}

	elemSize := elemSizeOf(dst)
	keep := PaddedDimsMask(dst.Shape, dst.Strides, elemSize, 0) | PaddedDimsMask(src.Shape, src.Strides, elemSize, 0)

	dstShape, dstStrides := Flatten(dst.Shape, dst.Strides, keep)
	srcShape, srcStrides := Flatten(src.Shape, src.Strides, keep)

	if IsContiguous(dstShape, dstStrides, elemSize) && IsContiguous(srcShape, srcStrides, elemSize) {
		n := int(numElements(dstShape) * elemSize)
		return engine.Copy(ctx, dst.handle, src.handle, 0, 0, n)
	}

	switch len(dstShape) {
	case 1:
		// A strided 1-D array is copied as one element per row at its stride.
		return engine.Copy2D(ctx, dst.handle, src.handle, 0, 0, int(dstStrides[0]), int(srcStrides[0]), int(elemSize), int(dstShape[0]))
	case 2:
		if dstStrides[1] != elemSize || srcStrides[1] != elemSize {
			return status.New(status.UNSUPPORTED_STRIDE, op)
		}
		width := int(dstShape[1] * elemSize)
		height := int(dstShape[0])
		return engine.Copy2D(ctx, dst.handle, src.handle, 0, 0, int(dstStrides[0]), int(srcStrides[0]), width, height)
	default:
		return status.New(status.UNSUPPORTED_STRIDE, op)
	}
}

// Memset fills dst with value (0-255), flattening the same way Copy does.
func Memset(engine *memspace.Engine, ctx memspace.Context, dst *Descriptor, value byte) error {
	const op = "ndarray.Memset"
	if dst == nil {
		return status.New(status.INVALID_HANDLE, op)
	}
	if dst.Immutable {
		return status.New(status.INVALID_STATE, op)
	}

	elemSize := elemSizeOf(dst)
	keep := PaddedDimsMask(dst.Shape, dst.Strides, elemSize, 0)
	shape, strides := Flatten(dst.Shape, dst.Strides, keep)

	if IsContiguous(shape, strides, elemSize) {
		n := int(numElements(shape) * elemSize)
		return engine.Memset(ctx, dst.handle, 0, n, value)
	}

	switch len(shape) {
	case 1:
		return engine.Memset2D(ctx, dst.handle, 0, int(strides[0]), int(elemSize), int(shape[0]), value)
	case 2:
		if strides[1] != elemSize {
			return status.New(status.UNSUPPORTED, op)
		}
		width := int(shape[1] * elemSize)
		height := int(shape[0])
		return engine.Memset2D(ctx, dst.handle, 0, int(strides[0]), width, height, value)
	default:
		return status.New(status.UNSUPPORTED, op)
	}
}
