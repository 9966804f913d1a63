package capture

import (
	"fmt"
	"net"
	"time"
)

// UDPSource reads packets off a bound UDP socket. No direct teacher
// analog exists — grounded on the Source interface shape shared with
// RawSource and FileSource — wrapping net.ListenUDP with SetReadDeadline
// for the timeout-bounded blocking read §5 requires.
type UDPSource struct {
	conn    *net.UDPConn
	maxSize int
}

// NewUDPSource binds a UDP socket at addr (host:port, host may be empty
// for all interfaces). maxSize bounds the largest datagram ReadPacket will
// return; 0 selects a 9000-byte (jumbo-frame-sized) default.
func NewUDPSource(addr string, maxSize int) (*UDPSource, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("capture: resolve udp addr %q: %w", addr, err)
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return nil, fmt.Errorf("capture: listen udp %q: %w", addr, err)
	}
	if maxSize <= 0 {
		maxSize = 9000
	}
	return &UDPSource{conn: conn, maxSize: maxSize}, nil
}

func (s *UDPSource) ReadPacket(deadline time.Time) ([]byte, error) {
	if err := s.conn.SetReadDeadline(deadline); err != nil {
		return nil, err
	}
	buf := make([]byte, s.maxSize)
	n, _, err := s.conn.ReadFromUDP(buf)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

func (s *UDPSource) Close() error { return s.conn.Close() }
