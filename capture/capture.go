package capture

import (
	"context"
	"errors"
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/nsdr/streamcore/decoder"
	"github.com/nsdr/streamcore/ring"
	"github.com/nsdr/streamcore/status"
)

// ErrFormatFatal names the "format-fatal" class of §4.G's state diagram.
// No function in this package returns it: NewSession rejects an unresolvable
// format with status.UNSUPPORTED, and Run reports a source read failure as a
// status.INTERNAL_ERROR wrapping the source's own error.
var ErrFormatFatal = errors.New("capture: format-fatal error")

// Event is delivered to a Callback on every status transition. HeaderBytes
// is the currently attached sequence header; a non-nil return value from
// the callback replaces it for subsequent spans in the same sequence,
// mirroring §4.G step 7's "may return a new header to attach".
type Event struct {
	Status      Status
	Seq         int64
	TimeTag     int64
	Tags        decoder.SequenceTags
	HeaderBytes []byte
}

// Callback is notified of every sequence-lifecycle transition.
type Callback func(Event) (headerOverride []byte)

// Config parameterizes one capture Session. NSrc/Src0/FrameBytes/SlotNTime
// describe the per-slot ringlet layout; BufferNTime is the number of time
// slots kept open in the ring's sliding window at once.
type Config struct {
	Format      decoder.Format
	Source      Source
	Ring        *ring.Ring
	Callback    Callback

	NSrc        int
	Src0        int32
	FrameBytes  int64
	SlotNTime   int64
	BufferNTime int64

	ReadTimeout        time.Duration
	MaxPacketsPerCycle int
	CoreAffinity       int // < 0 disables pinning

	// TensorShapeHint is attached to every span this session commits, per
	// §3's Ring span tag triple. It is advisory element-shape metadata
	// (typically [NSrc, FrameBytes/elementBytes]); nil disables it.
	TensorShapeHint []int64
}

// Session drives one format's capture state machine: decode, address,
// write, detect sequence change, emit. Grounded on the teacher's
// pkg/capture/capture.go netCapture (mutex-guarded running state plus a
// context-driven goroutine loop), generalized here to the per-packet
// decode/dispatch/emit cycle of §4.G.
type Session struct {
	cfg Config
	dec decoder.Decoder

	stats Stats

	mu       sync.Mutex
	state    State
	canceled bool

	baseSeq      int64
	headSlot     int64
	haveBaseSeq  bool
	slots        []*ring.Span
	slotTouched  []bool
	curTags      decoder.SequenceTags
	curTagsValid bool
	header       []byte
}

// NewSession validates cfg and resolves its decoder.
func NewSession(cfg Config) (*Session, error) {
	const op = "capture.NewSession"
	if cfg.Source == nil || cfg.Ring == nil {
		return nil, status.New(status.INVALID_ARGUMENT, op)
	}
	if cfg.NSrc <= 0 || cfg.FrameBytes <= 0 || cfg.SlotNTime <= 0 || cfg.BufferNTime <= 0 {
		return nil, status.New(status.INVALID_ARGUMENT, op)
	}
	dec, ok := decoder.Get(cfg.Format)
	if !ok {
		return nil, status.New(status.UNSUPPORTED, op)
	}
	if cfg.MaxPacketsPerCycle <= 0 {
		cfg.MaxPacketsPerCycle = 64
	}
	if cfg.CoreAffinity < 0 {
		cfg.CoreAffinity = -1
	}
	return &Session{
		cfg:         cfg,
		dec:         dec,
		state:       StateIdle,
		slots:       make([]*ring.Span, cfg.BufferNTime),
		slotTouched: make([]bool, cfg.BufferNTime),
	}, nil
}

// State returns the session's current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Stats returns a point-in-time counter snapshot.
func (s *Session) Stats() Stats {
	return s.stats.Snapshot()
}

// Shutdown requests the capture loop stop at its next observation point,
// per §5's "observe an external shutdown flag between every source read
// and every reserve_span call".
func (s *Session) Shutdown() {
	s.mu.Lock()
	s.canceled = true
	s.mu.Unlock()
}

func (s *Session) isCanceled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canceled
}

// Run executes the receive-cycle loop until the source is exhausted, the
// session is shut down, ctx is canceled, or a format-fatal error occurs.
// It pins the calling OS thread to CoreAffinity when configured, per §5's
// "one dedicated thread per capture".
func (s *Session) Run(ctx context.Context) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	if s.cfg.CoreAffinity >= 0 {
		if err := setAffinity(s.cfg.CoreAffinity); err != nil {
			return status.Wrap(status.INTERNAL_ERROR, "capture.Run", err)
		}
	}

	s.mu.Lock()
	s.state = StateAwaitingFirst
	s.mu.Unlock()

	for {
		if s.isCanceled() || ctx.Err() != nil {
			return s.interrupt()
		}

		n := 0
		for n < s.cfg.MaxPacketsPerCycle {
			if s.isCanceled() || ctx.Err() != nil {
				return s.interrupt()
			}

			deadline := time.Now().Add(s.cfg.ReadTimeout)
			packet, err := s.cfg.Source.ReadPacket(deadline)
			if err != nil {
				if IsTimeout(err) {
					s.stats.incNoDataCycles()
					s.emit(Event{Status: NO_DATA})
					break
				}
				if errors.Is(err, io.EOF) {
					s.Flush()
					s.setTerminal()
					return nil
				}
				s.emit(Event{Status: ERROR})
				s.setTerminal()
				return status.Wrap(status.INTERNAL_ERROR, "capture.Run", err)
			}

			if err := s.handlePacket(packet); err != nil {
				if status.From(err) == status.INTERRUPTED {
					return s.interrupt()
				}
				s.emit(Event{Status: ERROR})
				s.setTerminal()
				return status.Wrap(status.INTERNAL_ERROR, "capture.Run", err)
			}
			n++
		}
	}
}

func (s *Session) interrupt() error {
	s.setTerminal()
	s.emit(Event{Status: INTERRUPTED})
	return status.New(status.INTERRUPTED, "capture.Run")
}

func (s *Session) setTerminal() {
	s.mu.Lock()
	s.state = StateTerminal
	s.mu.Unlock()
}

// handlePacket runs one packet through decode, validate, address, write,
// and sequence-change detection, per §4.G steps 2-7.
func (s *Session) handlePacket(packet []byte) error {
	s.stats.incPacketsRead()

	res, err := s.dec.Parse(packet)
	if err != nil {
		if errors.Is(err, decoder.ErrSyncMismatch) {
			s.stats.incBadSync()
			return nil
		}
		s.stats.incDropped()
		return nil
	}

	if res.SrcID < s.cfg.Src0 || res.SrcID >= s.cfg.Src0+int32(s.cfg.NSrc) {
		s.stats.incOutOfRangeSource()
		return nil
	}
	ringlet := int64(res.SrcID - s.cfg.Src0)

	s.mu.Lock()
	if !s.haveBaseSeq {
		s.baseSeq = res.Seq
		s.haveBaseSeq = true
		s.headSlot = 0
	}
	s.mu.Unlock()

	timeSlot := (res.Seq - s.baseSeq) / s.cfg.SlotNTime
	if timeSlot < s.headSlot {
		s.stats.incDropped()
		return nil
	}
	if timeSlot >= s.headSlot+s.cfg.BufferNTime {
		if err := s.rotateTo(timeSlot); err != nil {
			return err
		}
	}

	span, err := s.slotSpan(timeSlot)
	if err != nil {
		return err
	}

	off := ringlet * s.cfg.FrameBytes
	if off+int64(res.PayloadLen) > int64(len(span.Data)) {
		s.stats.incDropped()
		return nil
	}
	copy(span.Data[off:off+int64(res.PayloadLen)], packet[res.PayloadOffset:res.PayloadOffset+res.PayloadLen])
	s.stats.incPacketsWritten()

	s.handleSequence(res)
	return nil
}

// handleSequence compares res.Tags against the currently open sequence,
// closing and reopening it on a mismatch, and emits the resulting status,
// per §4.G step 6 and the ENDED-then-STARTED behavior §8 scenario 5 tests
// for a tag change (the state diagram's single "CHANGED" transition is
// realized here as that pair of events; CHANGED remains a defined status
// for callers who want to distinguish a reopen from a cold start, but this
// session does not emit it on a tag flip).
func (s *Session) handleSequence(res decoder.ParseResult) {
	s.mu.Lock()
	first := !s.curTagsValid
	changed := s.curTagsValid && s.curTags != res.Tags
	if first || changed {
		s.curTags = res.Tags
		s.curTagsValid = true
	}
	s.mu.Unlock()

	if changed {
		s.cfg.Ring.EndSequence()
		s.stats.incSequencesEnded()
		s.emit(Event{Status: ENDED, Seq: res.Seq, TimeTag: res.TimeTag, Tags: res.Tags})
	}
	if first || changed {
		s.mu.Lock()
		s.state = StateStreaming
		s.mu.Unlock()
		s.cfg.Ring.BeginSequence(string(s.cfg.Format), s.header, s.cfg.NSrc, s.cfg.SlotNTime)
		s.stats.incSequencesStarted()
		s.emit(Event{Status: STARTED, Seq: res.Seq, TimeTag: res.TimeTag, Tags: res.Tags, HeaderBytes: s.header})
		return
	}
	s.emit(Event{Status: CONTINUED, Seq: res.Seq, TimeTag: res.TimeTag, Tags: res.Tags})
}

// slotSpan returns the reserved span backing timeSlot, reserving it lazily
// on first touch.
func (s *Session) slotSpan(timeSlot int64) (*ring.Span, error) {
	idx := timeSlot % s.cfg.BufferNTime
	if s.slotTouched[idx] && s.slots[idx] != nil {
		return s.slots[idx], nil
	}
	span, err := s.cfg.Ring.ReserveSpan(int64(s.cfg.NSrc) * s.cfg.FrameBytes)
	if err != nil {
		return nil, err
	}
	s.slots[idx] = span
	s.slotTouched[idx] = true
	return span, nil
}

// rotateTo commits and evicts slots one at a time until timeSlot fits in
// the window, advancing headSlot and base_seq as it goes, per §4.G step 4
// ("advance the ring head by committing the oldest span and rotating
// base_seq").
func (s *Session) rotateTo(timeSlot int64) error {
	for timeSlot >= s.headSlot+s.cfg.BufferNTime {
		idx := s.headSlot % s.cfg.BufferNTime
		if s.slotTouched[idx] && s.slots[idx] != nil {
			meta := ring.SpanMeta{
				TimeTag:        s.baseSeq + s.headSlot*s.cfg.SlotNTime,
				OffsetFromHead: s.headSlot,
				HeaderBytes:    s.header,
				TensorShape:    s.cfg.TensorShapeHint,
			}
			if err := s.cfg.Ring.CommitSpan(s.slots[idx], meta); err != nil {
				return err
			}
		}
		s.slots[idx] = nil
		s.slotTouched[idx] = false
		s.headSlot++
	}
	return nil
}

// Flush drains any in-flight slot spans to the ring and emits ENDED for
// the open sequence, per §4.G's Flush contract.
func (s *Session) Flush() {
	for i := int64(0); i < s.cfg.BufferNTime; i++ {
		idx := s.headSlot % s.cfg.BufferNTime
		if s.slotTouched[idx] && s.slots[idx] != nil {
			meta := ring.SpanMeta{
				TimeTag:        s.baseSeq + s.headSlot*s.cfg.SlotNTime,
				OffsetFromHead: s.headSlot,
				HeaderBytes:    s.header,
				TensorShape:    s.cfg.TensorShapeHint,
			}
			_ = s.cfg.Ring.CommitSpan(s.slots[idx], meta)
			s.slots[idx] = nil
			s.slotTouched[idx] = false
		}
		s.headSlot++
	}

	s.mu.Lock()
	wasValid := s.curTagsValid
	s.curTagsValid = false
	s.mu.Unlock()

	if wasValid {
		s.cfg.Ring.EndSequence()
		s.stats.incSequencesEnded()
		s.emit(Event{Status: ENDED})
	}
}

// End forces the session into TERMINAL and emits ENDED, without draining
// in-flight spans (unlike Flush).
func (s *Session) End() {
	s.mu.Lock()
	s.state = StateTerminal
	wasValid := s.curTagsValid
	s.curTagsValid = false
	s.mu.Unlock()

	if wasValid {
		s.cfg.Ring.EndSequence()
		s.stats.incSequencesEnded()
	}
	s.emit(Event{Status: ENDED})
}

// Seek repositions a file source to offset and re-arms the session for a
// fresh AWAITING_FIRST, per §4.G's "otherwise behaves as a fresh
// AWAITING_FIRST". Only valid for sources implementing Seekable.
func (s *Session) Seek(offset int64, whence int) error {
	const op = "capture.Seek"
	seeker, ok := s.cfg.Source.(Seekable)
	if !ok {
		return status.New(status.UNSUPPORTED, op)
	}
	if _, err := seeker.Seek(offset, whence); err != nil {
		return status.Wrap(status.INTERNAL_ERROR, op, err)
	}

	s.mu.Lock()
	s.haveBaseSeq = false
	s.curTagsValid = false
	s.state = StateAwaitingFirst
	s.mu.Unlock()
	return nil
}

func (s *Session) emit(ev Event) {
	if s.cfg.Callback == nil {
		return
	}
	ev.HeaderBytes = s.header
	if h := s.cfg.Callback(ev); h != nil {
		s.mu.Lock()
		s.header = h
		s.mu.Unlock()
	}
}
