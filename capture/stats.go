package capture

import "sync/atomic"

// Stats tracks running counters for one capture session. Grounded on the
// teacher's pkg/capture/stats.go CaptureStats: plain int64 fields updated
// with sync/atomic so a status reader on another goroutine never blocks
// the capture goroutine.
type Stats struct {
	PacketsRead      int64
	BadSync          int64
	OutOfRangeSource int64
	Dropped          int64
	PacketsWritten   int64
	SequencesStarted int64
	SequencesEnded   int64
	NoDataCycles     int64
}

func (s *Stats) incPacketsRead()      { atomic.AddInt64(&s.PacketsRead, 1) }
func (s *Stats) incBadSync()          { atomic.AddInt64(&s.BadSync, 1) }
func (s *Stats) incOutOfRangeSource() { atomic.AddInt64(&s.OutOfRangeSource, 1) }
func (s *Stats) incDropped()          { atomic.AddInt64(&s.Dropped, 1) }
func (s *Stats) incPacketsWritten()   { atomic.AddInt64(&s.PacketsWritten, 1) }
func (s *Stats) incSequencesStarted() { atomic.AddInt64(&s.SequencesStarted, 1) }
func (s *Stats) incSequencesEnded()   { atomic.AddInt64(&s.SequencesEnded, 1) }
func (s *Stats) incNoDataCycles()     { atomic.AddInt64(&s.NoDataCycles, 1) }

// Snapshot returns a point-in-time copy safe to read from any goroutine.
func (s *Stats) Snapshot() Stats {
	return Stats{
		PacketsRead:      atomic.LoadInt64(&s.PacketsRead),
		BadSync:          atomic.LoadInt64(&s.BadSync),
		OutOfRangeSource: atomic.LoadInt64(&s.OutOfRangeSource),
		Dropped:          atomic.LoadInt64(&s.Dropped),
		PacketsWritten:   atomic.LoadInt64(&s.PacketsWritten),
		SequencesStarted: atomic.LoadInt64(&s.SequencesStarted),
		SequencesEnded:   atomic.LoadInt64(&s.SequencesEnded),
		NoDataCycles:     atomic.LoadInt64(&s.NoDataCycles),
	}
}
