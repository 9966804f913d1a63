package capture

import (
	"fmt"
	"io"
	"os"
	"time"
)

// FileSource replays fixed-size packet records from a plain file, one
// record per ReadPacket call starting at the current offset. Adapted from
// the teacher's internal/source/file/source.go (gopacket/pcap file replay)
// but generalized from Ethernet frames to this module's raw, fixed-size
// format-tagged packet records, and extended with Seek — the teacher's
// pcap.OpenOffline has none, since pcap files have no fixed record size to
// seek by, but this module's §4.G file-source seek requirement needs one.
type FileSource struct {
	f          *os.File
	recordSize int
}

// NewFileSource opens path for fixed-size record reads of recordSize bytes.
func NewFileSource(path string, recordSize int) (*FileSource, error) {
	if recordSize <= 0 {
		return nil, fmt.Errorf("capture: file source record size must be positive, got %d", recordSize)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("capture: open %q: %w", path, err)
	}
	return &FileSource{f: f, recordSize: recordSize}, nil
}

// ReadPacket reads the next fixed-size record. deadline is ignored — file
// reads never block — matching §4.G's "for file sources, 'packet' is a
// fixed-size record read from the current offset."
func (s *FileSource) ReadPacket(deadline time.Time) ([]byte, error) {
	buf := make([]byte, s.recordSize)
	if _, err := io.ReadFull(s.f, buf); err != nil {
		if err == io.ErrUnexpectedEOF {
			return nil, io.EOF
		}
		return nil, err
	}
	return buf, nil
}

// Seek repositions the file by record-aligned byte offset; whence follows
// io.SeekStart/io.SeekCurrent/io.SeekEnd (the spec's SET=0/CUR=1/END=2).
func (s *FileSource) Seek(offset int64, whence int) (int64, error) {
	return s.f.Seek(offset, whence)
}

func (s *FileSource) Close() error { return s.f.Close() }
