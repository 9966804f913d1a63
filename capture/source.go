// Package capture implements the format-polymorphic packet-capture state
// machine: it reads timestamped packets from a UDP socket, raw socket, or
// file, buffers them into a ring.Ring at an offset given by each packet's
// time slot and source index, and drives sequence-lifecycle callbacks
// (started/continued/ended/no-data/interrupted) as the packet stream's
// identifying tags evolve; a tag change is reported as ended then started.
//
// Grounded on the teacher's pkg/capture/capture.go (netCapture: a
// mutex-guarded running flag plus a context.CancelFunc-driven goroutine
// loop), generalized from its single fixed manager.ReadPacket() call to the
// format-polymorphic decode/dispatch/emit cycle described below.
package capture

import (
	"errors"
	"net"
	"time"
)

// ErrSourceClosed is returned by ReadPacket once a Source has been closed.
var ErrSourceClosed = errors.New("capture: source closed")

// Source is the packet-byte origin a Session reads from: a UDP socket, a
// raw socket, or a file. ReadPacket blocks until a packet is available, the
// deadline passes, or the source is closed/exhausted.
type Source interface {
	// ReadPacket returns the next raw packet, blocking at most until
	// deadline. A timeout returns an error satisfying IsTimeout. End of
	// input (file sources) returns io.EOF.
	ReadPacket(deadline time.Time) ([]byte, error)
	Close() error
}

// Seekable is implemented by sources that support repositioning — in this
// package, only FileSource.
type Seekable interface {
	Seek(offset int64, whence int) (int64, error)
}

// IsTimeout reports whether err represents a read deadline expiring rather
// than a genuine source failure.
func IsTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
