package memspace

import (
	"sync"

	"github.com/nsdr/streamcore/status"
)

// copyFunc performs a flat byte copy from src[srcOff:srcOff+n] into
// dst[dstOff:dstOff+n]. Every (Space, Space) pair resolves to the same
// underlying implementation today (both sides are plain Go slices), but the
// dispatch table keeps the space pair explicit in one place — the point
// where a future real DEVICE backend would plug in a cgo memcpy variant per
// pair, exactly as the teacher's registry dispatches per plugin name instead
// of hand-writing a type switch at every call site.
type copyFunc func(dst, src *Handle, dstOff, srcOff, n int) error

var (
	copyTableMu sync.RWMutex
	copyTable   = buildCopyTable()
)

func buildCopyTable() map[[2]Space]copyFunc {
	t := make(map[[2]Space]copyFunc, 16)
	spaces := []Space{SYSTEM, DEVICE, PINNED_HOST, MANAGED}
	for _, s := range spaces {
		for _, d := range spaces {
			t[[2]Space{s, d}] = flatCopy
		}
	}
	return t
}

func flatCopy(dst, src *Handle, dstOff, srcOff, n int) error {
	copy(dst.buf[dstOff:dstOff+n], src.buf[srcOff:srcOff+n])
	return nil
}

func lookupCopy(src, dst Space) (copyFunc, bool) {
	copyTableMu.RLock()
	defer copyTableMu.RUnlock()
	fn, ok := copyTable[[2]Space{resolve(src), resolve(dst)}]
	return fn, ok
}

// Copy copies n bytes from src (starting at srcOff) into dst (starting at
// dstOff), regardless of which spaces the two handles live in. It never
// inspects the caller's pointers directly, only the byte ranges the Handles
// expose — same size-and-bounds discipline as ndarray.Copy above it.
func (e *Engine) Copy(ctx Context, dst, src *Handle, dstOff, srcOff, n int) error {
	const op = "memspace.Copy"
	if dst == nil || src == nil || dst.freed || src.freed {
		return status.New(status.INVALID_HANDLE, op)
	}
	if n < 0 || srcOff < 0 || dstOff < 0 {
		return status.New(status.INVALID_ARGUMENT, op)
	}
	if srcOff+n > len(src.buf) || dstOff+n > len(dst.buf) {
		return status.New(status.INSUFFICIENT_STORAGE, op)
	}

	fn, ok := lookupCopy(src.space, dst.space)
	if !ok {
		return status.New(status.UNSUPPORTED_SPACE, op)
	}

	unlock := e.lockStream(ctx.Stream)
	defer unlock()

	if n == 0 {
		return nil
	}
	return fn(dst, src, dstOff, srcOff, n)
}

// Copy2D copies a 2D region of height rows and width bytes per row from src
// to dst, honoring independent per-buffer row pitches (srcPitch/dstPitch),
// matching §4.B's copy2D operation used for padded-dimension arrays.
func (e *Engine) Copy2D(ctx Context, dst, src *Handle, dstOff, srcOff, dstPitch, srcPitch, width, height int) error {
	const op = "memspace.Copy2D"
	if width < 0 || height < 0 || dstPitch < width || srcPitch < width {
		return status.New(status.INVALID_ARGUMENT, op)
	}
	for row := 0; row < height; row++ {
		if err := e.Copy(ctx, dst, src, dstOff+row*dstPitch, srcOff+row*srcPitch, width); err != nil {
			return err
		}
	}
	return nil
}

// Memset fills n bytes of h (starting at off) with value.
func (e *Engine) Memset(ctx Context, h *Handle, off, n int, value byte) error {
	const op = "memspace.Memset"
	if h == nil || h.freed {
		return status.New(status.INVALID_HANDLE, op)
	}
	if n < 0 || off < 0 || off+n > len(h.buf) {
		return status.New(status.INVALID_ARGUMENT, op)
	}

	unlock := e.lockStream(ctx.Stream)
	defer unlock()

	region := h.buf[off : off+n]
	for i := range region {
		region[i] = value
	}
	return nil
}

// Memset2D fills a 2D region analogous to Copy2D, honoring pitch.
func (e *Engine) Memset2D(ctx Context, h *Handle, off, pitch, width, height int, value byte) error {
	const op = "memspace.Memset2D"
	if width < 0 || height < 0 || pitch < width {
		return status.New(status.INVALID_ARGUMENT, op)
	}
	for row := 0; row < height; row++ {
		if err := e.Memset(ctx, h, off+row*pitch, width, value); err != nil {
			return err
		}
	}
	return nil
}
