// Package ring implements the multi-producer/single-consumer byte ring
// buffer that sits between a capture source and its readers: producers
// reserve and commit spans of bytes, the ring tracks one open sequence at a
// time, and readers drain committed spans in the order they were reserved.
//
// Grounded on the teacher's internal/otus/module/buffer/buffer.go
// (BatchBuffer: fixed-capacity slice, First/Last offset bookkeeping,
// full-buffer rejection), generalized from a single flat append-only buffer
// into reservable byte spans over a circular buffer, and on
// internal/pipeline/pipeline.go's context.Context + sync.WaitGroup +
// buffered-channel idiom for shutdown and backpressure — a condition
// variable plays the role pipeline.go gives its buffered rawPacketChan,
// since span sizes here are variable rather than one-packet-per-slot.
package ring

import (
	"sync"

	"github.com/nsdr/streamcore/status"
)

// SpanMeta is the metadata a producer attaches when committing a span,
// matching §3's Ring span tag triple (time_tag, header_bytes,
// tensor_shape_hint). TensorShape is advisory: a consumer may reinterpret
// Data as an ndarray.Descriptor of this element shape, but the ring itself
// never validates it against the span's byte length.
type SpanMeta struct {
	TimeTag        int64
	OffsetFromHead int64
	HeaderBytes    []byte
	TensorShape    []int64
}

// Span is a reserved, writable region of the ring's backing buffer. A
// producer writes into Data, then calls Ring.CommitSpan to publish it.
type Span struct {
	ring   *Ring
	offset int64
	Data   []byte

	mu        sync.Mutex
	committed bool
	meta      SpanMeta
}

// Sequence describes the currently open logical data sequence: a capture
// "key" (e.g. a source/tuning identity), its header bytes, and the
// parallel-substream layout the writer commits spans against.
type Sequence struct {
	Key         string
	HeaderBytes []byte
	NRinglet    int
	SlotNTime   int64
}

// Ring is a fixed-capacity circular byte buffer supporting blocking,
// padding-avoids-wraparound span reservation and in-order committed-span
// delivery to a single consumer.
type Ring struct {
	mu   sync.Mutex
	cond *sync.Cond

	buf  []byte
	cap  int64
	head int64 // oldest unfreed byte offset (monotonic)
	tail int64 // next byte offset to reserve (monotonic)

	committed []*Span // spans committed but not yet delivered, in reservation order
	pending   []*Span // spans reserved but not yet committed, in reservation order

	shutdown bool
	seq      *Sequence
}

// New allocates a ring with the given byte capacity.
func New(capacity int64) *Ring {
	r := &Ring{
		buf: make([]byte, capacity),
		cap: capacity,
	}
	r.cond = sync.NewCond(&r.mu)
	return r
}

// Shutdown prevents further reservations and wakes every blocked caller:
// ReserveSpan returns INTERRUPTED, and Next returns END_OF_DATA once it has
// nothing left to deliver. Safe to call more than once.
func (r *Ring) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.shutdown {
		return
	}
	r.shutdown = true
	r.cond.Broadcast()
}

// ReserveSpan blocks until nbytes of contiguous space are free in the ring
// or the ring is shut down. On success it returns a Span whose Data the
// caller may write into before calling CommitSpan.
func (r *Ring) ReserveSpan(nbytes int64) (*Span, error) {
	const op = "ring.ReserveSpan"
	if nbytes <= 0 || nbytes > r.cap {
		return nil, status.New(status.INVALID_ARGUMENT, op)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for {
		if r.shutdown {
			return nil, status.New(status.INTERRUPTED, op)
		}

		phys := r.tail % r.cap
		padded := nbytes
		if phys+nbytes > r.cap {
			padded = nbytes + (r.cap - phys) // skip the unusable tail remainder
		}

		if r.tail+padded-r.head > r.cap {
			r.cond.Wait()
			continue
		}

		if padded != nbytes {
			r.tail += padded - nbytes
			phys = 0
		}

		offset := r.tail
		r.tail += nbytes

		span := &Span{ring: r, offset: offset, Data: r.buf[phys : phys+nbytes]}
		r.pending = append(r.pending, span)
		return span, nil
	}
}

// CommitSpan publishes span with the given metadata, making it visible to
// Next. Committing the same span twice is a no-op.
func (r *Ring) CommitSpan(span *Span, meta SpanMeta) error {
	const op = "ring.CommitSpan"
	if span == nil || span.ring != r {
		return status.New(status.INVALID_HANDLE, op)
	}

	span.mu.Lock()
	if span.committed {
		span.mu.Unlock()
		return nil
	}
	span.committed = true
	span.meta = meta
	span.mu.Unlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	for i, p := range r.pending {
		if p == span {
			r.pending = append(r.pending[:i], r.pending[i+1:]...)
			break
		}
	}
	r.committed = append(r.committed, span)
	for i := len(r.committed) - 1; i > 0 && r.committed[i-1].offset > span.offset; i-- {
		r.committed[i], r.committed[i-1] = r.committed[i-1], r.committed[i]
	}
	r.cond.Broadcast()
	return nil
}

// Next blocks until a committed span is available or the ring shuts down
// with nothing left to deliver, returning status.END_OF_DATA in the latter
// case. Delivered spans are in the order they were reserved: a committed
// span is held back while an earlier-reserved span is still uncommitted.
func (r *Ring) Next() (*Span, SpanMeta, error) {
	const op = "ring.Next"
	r.mu.Lock()
	defer r.mu.Unlock()

	for len(r.committed) == 0 || (len(r.pending) > 0 && r.pending[0].offset < r.committed[0].offset) {
		if r.shutdown {
			return nil, SpanMeta{}, status.New(status.END_OF_DATA, op)
		}
		r.cond.Wait()
	}

	span := r.committed[0]
	r.committed = r.committed[1:]
	r.head = span.offset + int64(len(span.Data))
	r.cond.Broadcast() // freed space may unblock a producer
	return span, span.meta, nil
}

// BeginSequence opens a new sequence, closing any previously open one —
// matching §4.E's "starts a new sequence; closes any open one".
func (r *Ring) BeginSequence(key string, headerBytes []byte, nringlet int, slotNTime int64) *Sequence {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq = &Sequence{Key: key, HeaderBytes: headerBytes, NRinglet: nringlet, SlotNTime: slotNTime}
	return r.seq
}

// EndSequence closes the currently open sequence, if any.
func (r *Ring) EndSequence() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq = nil
}

// CurrentSequence returns the currently open sequence, or nil if none.
func (r *Ring) CurrentSequence() *Sequence {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seq
}

// Len reports the number of unfreed, reserved-or-committed bytes.
func (r *Ring) Len() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tail - r.head
}

// Cap reports the ring's total byte capacity.
func (r *Ring) Cap() int64 { return r.cap }
