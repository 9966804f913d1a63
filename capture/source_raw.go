package capture

import (
	"fmt"
	"os"
	"time"

	"github.com/google/gopacket/afpacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"
	"golang.org/x/net/bpf"
)

// RawSourceConfig configures a RawSource.
type RawSourceConfig struct {
	Device       string
	SnapLen      int
	BufferSizeMB int
	TimeoutMs    int
	FanoutID     uint16
	BPFFilter    string
}

// RawSource reads raw frames off an AF_PACKET socket. Adapted from the
// teacher's internal/source/afpacket/source.go (gopacket/afpacket.TPacket,
// golang.org/x/net/bpf), generalized from the teacher's Ethernet/BPF-filtered
// frame capture into a raw byte Source usable with any of this module's
// packet formats; the teacher's TPacketVersion3 ring-buffer sizing helper
// (recomputeSize/gcd/lcm) is reused unchanged.
type RawSource struct {
	handle *afpacket.TPacket
}

// NewRawSource opens an AF_PACKET raw socket on cfg.Device.
func NewRawSource(cfg RawSourceConfig) (*RawSource, error) {
	pageSize := os.Getpagesize()
	frameSize, blockSize, numBlocks, err := recomputeSize(cfg.BufferSizeMB, cfg.SnapLen, pageSize)
	if err != nil {
		return nil, err
	}

	tp, err := afpacket.NewTPacket(
		afpacket.OptInterface(cfg.Device),
		afpacket.OptFrameSize(frameSize),
		afpacket.OptBlockSize(blockSize),
		afpacket.OptNumBlocks(numBlocks),
		afpacket.OptPollTimeout(time.Duration(cfg.TimeoutMs)*time.Millisecond),
		afpacket.SocketRaw,
		afpacket.TPacketVersion3,
	)
	if err != nil {
		return nil, fmt.Errorf("capture: open raw socket on %q: %w", cfg.Device, err)
	}

	if cfg.FanoutID > 0 {
		if err := tp.SetFanout(afpacket.FanoutHashWithDefrag, cfg.FanoutID); err != nil {
			tp.Close()
			return nil, err
		}
	}

	if cfg.BPFFilter != "" {
		pcapBPF, err := pcap.CompileBPFFilter(layers.LinkTypeEthernet, frameSize, cfg.BPFFilter)
		if err != nil {
			tp.Close()
			return nil, err
		}
		rawBPF := make([]bpf.RawInstruction, len(pcapBPF))
		for i, inst := range pcapBPF {
			rawBPF[i] = bpf.RawInstruction{Op: inst.Code, Jt: inst.Jt, Jf: inst.Jf, K: inst.K}
		}
		if err := tp.SetBPF(rawBPF); err != nil {
			tp.Close()
			return nil, err
		}
	}

	return &RawSource{handle: tp}, nil
}

// ReadPacket reads the next frame. The AF_PACKET poll timeout configured at
// construction, not deadline, bounds the wait — afpacket.TPacket has no
// per-call deadline API — so a caller wanting a tighter bound should lower
// RawSourceConfig.TimeoutMs.
func (s *RawSource) ReadPacket(deadline time.Time) ([]byte, error) {
	data, _, err := s.handle.ReadPacketData()
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (s *RawSource) Close() error {
	s.handle.Close()
	return nil
}

// recomputeSize recalculates the frame size, block size, and number of
// blocks to meet Linux AF_PACKET PACKET_MMAP's alignment requirements
// while staying within the target memory budget. Taken unchanged from the
// teacher's internal/source/afpacket/util.go.
func recomputeSize(ringBufferSizeMB, snapLen, pageSize int) (frameSize, blockSize, numBlocks int, err error) {
	const tpacketAlignment = 16
	const tpacketHdrLen = 52

	if ringBufferSizeMB <= 0 {
		return 0, 0, 0, fmt.Errorf("ringBufferSizeMB must be positive, got %d", ringBufferSizeMB)
	}
	if snapLen <= 0 {
		return 0, 0, 0, fmt.Errorf("snapLen must be positive, got %d", snapLen)
	}
	if pageSize <= 0 || pageSize%tpacketAlignment != 0 {
		return 0, 0, 0, fmt.Errorf("pageSize must be positive and multiple of %d, got %d", tpacketAlignment, pageSize)
	}

	targetBytes := ringBufferSizeMB * 1024 * 1024

	rawFrameSize := tpacketHdrLen + snapLen
	frameSize = ((rawFrameSize + tpacketAlignment - 1) / tpacketAlignment) * tpacketAlignment

	minBlockSize := pageSize
	if minBlockSize < frameSize {
		minBlockSize = frameSize
	}

	blockSize = lcm(pageSize, frameSize)

	const maxBlockSize = 4 * 1024 * 1024
	if blockSize < minBlockSize {
		blockSize = minBlockSize
	}
	if blockSize > maxBlockSize {
		blockSize = maxBlockSize
		blockSize = (blockSize / pageSize) * pageSize
	}

	numBlocks = targetBytes / blockSize
	if numBlocks < 1 {
		numBlocks = 1
	}

	if blockSize%frameSize != 0 {
		framesPerBlock := blockSize / frameSize
		if framesPerBlock < 1 {
			framesPerBlock = 1
		}
		blockSize = framesPerBlock * frameSize
		blockSize = ((blockSize + pageSize - 1) / pageSize) * pageSize
	}

	return frameSize, blockSize, numBlocks, nil
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func lcm(a, b int) int {
	if a == 0 || b == 0 {
		return 0
	}
	return (a * b) / gcd(a, b)
}
