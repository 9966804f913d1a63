package memspace

import (
	"sync"
	"unsafe"

	"github.com/nsdr/streamcore/status"
)

// hostAlignment is the alignment guaranteed by Alloc for host-addressable
// spaces, matching SPEC_FULL.md §4.B's "≥ 4096 bytes for host spaces".
const hostAlignment = 4096

// Handle is an opaque, space-tagged allocation. It is the Go-idiomatic
// stand-in for the source's raw (pointer, space) pair: since this is a
// from-scratch Go rewrite (no C ABI to preserve, per SPEC_FULL.md §9), the
// "current device" is never kept in a process-wide global — every Handle
// carries its own Space, and cross-space calls take both Handles explicitly.
type Handle struct {
	buf   []byte
	space Space
	freed bool
}

// Bytes exposes the handle's backing storage. Callers must not call this on
// a DEVICE handle expecting meaningful access semantics — per Accessible,
// DEVICE storage is conceptually off the host's address space even though
// this implementation, lacking real device memory, backs it with a Go
// slice. Use Copy to move data into a host-accessible space first.
func (h *Handle) Bytes() []byte {
	if h == nil {
		return nil
	}
	return h.buf
}

// Space reports the handle's memory space.
func (h *Handle) Space() Space {
	if h == nil {
		return SYSTEM
	}
	return h.space
}

// Len reports the handle's size in bytes.
func (h *Handle) Len() int { return len(h.buf) }

// Engine is the space-aware allocator/copier. It is safe for concurrent use.
type Engine struct {
	mu      sync.Mutex
	byAddr  map[*byte]Space // best-effort pointer→space introspection
	streams map[StreamID]*stream
	nextID  StreamID
}

// NewEngine constructs a ready-to-use memory engine.
func NewEngine() *Engine {
	return &Engine{
		byAddr:  make(map[*byte]Space),
		streams: make(map[StreamID]*stream),
	}
}

// Alloc returns a new zero-filled Handle of size bytes in space. size must
// be > 0; AUTO resolves to SYSTEM.
func (e *Engine) Alloc(size int, space Space) (*Handle, error) {
	const op = "memspace.Alloc"
	if size <= 0 {
		return nil, status.New(status.INVALID_ARGUMENT, op)
	}
	sp := resolve(space)
	if !validSpace(sp) {
		return nil, status.New(status.UNSUPPORTED_SPACE, op)
	}

	raw := make([]byte, size+hostAlignment-1)
	off := (hostAlignment - int(uintptr(unsafe.Pointer(&raw[0]))%hostAlignment)) % hostAlignment
	buf := raw[off : off+size : off+size]
	h := &Handle{buf: buf, space: sp}

	e.mu.Lock()
	if len(buf) > 0 {
		e.byAddr[&buf[0]] = sp
	}
	e.mu.Unlock()

	return h, nil
}

// Free releases h. It tolerates a nil Handle and double-free (both become
// no-ops), matching §4.B's "never reads ptr; tolerates NULL".
func (e *Engine) Free(h *Handle) {
	if h == nil || h.freed {
		return
	}
	e.mu.Lock()
	if len(h.buf) > 0 {
		delete(e.byAddr, &h.buf[0])
	}
	e.mu.Unlock()
	h.freed = true
	h.buf = nil
}

// GetSpace performs best-effort introspection of an address, returning the
// space it was allocated in, or SYSTEM if the address is unknown to this
// engine (matching §4.B: "returns SYSTEM when unavailable").
func (e *Engine) GetSpace(h *Handle) Space {
	if h == nil || len(h.buf) == 0 {
		return SYSTEM
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if sp, ok := e.byAddr[&h.buf[0]]; ok {
		return sp
	}
	return SYSTEM
}

// Alignment returns the alignment guaranteed by Alloc for host spaces.
func (e *Engine) Alignment() int { return hostAlignment }

func validSpace(s Space) bool {
	switch s {
	case SYSTEM, DEVICE, PINNED_HOST, MANAGED:
		return true
	default:
		return false
	}
}
