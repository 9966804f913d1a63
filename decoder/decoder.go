// Package decoder implements the format-polymorphic packet decoder
// registry: eleven fixed, big-endian wire formats, each decoded and
// re-encoded by a pure function with no state outside its output.
//
// Grounded file-for-file on the teacher's internal/core/decoder/{ethernet,
// ip,transport}.go: one file per wire format, a package-level const block
// of header lengths/field offsets, encoding/binary.BigEndian field
// extraction, and sentinel errors from a shared errors file. The
// format-name lookup table is grounded on internal/plugin/registry.go's
// map[string]T + sync.RWMutex + sorted-name-list idiom, narrowed here to
// the closed, compile-time-known set of eleven formats, so the table is a
// plain package var rather than something built by a dynamic Register call.
package decoder

import (
	"errors"
	"sort"
	"sync"
)

// Format names the eleven supported wire formats.
type Format string

const (
	FormatVDIF   Format = "vdif"
	FormatTBN    Format = "tbn"
	FormatDRX    Format = "drx"
	FormatDRX8   Format = "drx8"
	FormatCHIPS  Format = "chips"
	FormatSNAP2  Format = "snap2"
	FormatIBeam  Format = "ibeam"
	FormatPBeam  Format = "pbeam"
	FormatCOR    Format = "cor"
	FormatTBX    Format = "tbx"
	FormatSimple Format = "simple"
)

var (
	// ErrTooShort is returned when a packet is smaller than the format's
	// fixed header length.
	ErrTooShort = errors.New("decoder: packet shorter than header")
	// ErrSyncMismatch is returned when the header's sync word does not
	// match the format's expected constant.
	ErrSyncMismatch = errors.New("decoder: sync word mismatch")
)

// SequenceTags is the variadic tuple of format-specific fields a decoder
// uses to detect a sequence change, per §4.F. Only the fields relevant to a
// given format are populated; the others always stay at their zero value,
// so capture's sequence-change check can compare whole SequenceTags values.
type SequenceTags struct {
	NChan      uint16
	Chan0      uint32
	Decimation uint32
	Gain       int16
	Tuning     uint32
	SrcID      uint32
	Stand0     uint16
	Stand1     uint16
}

// ParseResult is what Parse extracts from one packet.
type ParseResult struct {
	SyncOK        bool
	Seq           int64
	SrcID         int32
	TimeTag       int64
	PayloadOffset int
	PayloadLen    int
	Tags          SequenceTags
}

// LayoutParams parameterizes ComputeRingOffset: how many sources share a
// span, the first source's id, and the per-source/per-slot frame size.
type LayoutParams struct {
	NSrc       int
	Src0       int32
	FrameBytes int64
	SlotNTime  int64
}

// PacketDesc carries the fields FillHeader needs to write a new header,
// mirroring the source's PacketDesc passed to a header filler.
type PacketDesc struct {
	Seq   int64
	SrcID int32
	Tags  SequenceTags
}

// Decoder is the per-format pure codec: no state outside its output.
type Decoder interface {
	Format() Format
	HeaderLen() int
	Parse(packet []byte) (ParseResult, error)
	ComputeRingOffset(seq int64, srcID int32, layout LayoutParams) int64
	FillHeader(desc PacketDesc, framecount int64, out []byte) error
}

var (
	registryMu sync.RWMutex
	registry   = map[Format]Decoder{
		FormatVDIF:   vdifDecoder{},
		FormatTBN:    tbnDecoder{},
		FormatDRX:    drxDecoder{},
		FormatDRX8:   drx8Decoder{},
		FormatCHIPS:  chipsDecoder{},
		FormatSNAP2:  snap2Decoder{},
		FormatIBeam:  ibeamDecoder{},
		FormatPBeam:  pbeamDecoder{},
		FormatCOR:    corDecoder{},
		FormatTBX:    tbxDecoder{},
		FormatSimple: simpleDecoder{},
	}
)

// Get resolves a format name to its Decoder.
func Get(format Format) (Decoder, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	d, ok := registry[format]
	return d, ok
}

// Formats returns every supported format name, sorted.
func Formats() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for f := range registry {
		names = append(names, string(f))
	}
	sort.Strings(names)
	return names
}

// computeRingOffset is the shared deterministic layout formula used by
// every format: sources are interleaved per time slot, so a source's span
// offset is (slot_index * nsrc + source_index) * frame_bytes.
func computeRingOffset(seq int64, srcID int32, layout LayoutParams) int64 {
	if layout.NSrc <= 0 || layout.FrameBytes <= 0 {
		return 0
	}
	slot := int64(0)
	if layout.SlotNTime > 0 {
		slot = seq / layout.SlotNTime
	}
	srcIdx := int64(srcID - layout.Src0)
	if srcIdx < 0 {
		srcIdx = 0
	}
	return (slot*int64(layout.NSrc) + srcIdx) * layout.FrameBytes
}

// frameCountWord packs a 24-bit frame count with an 8-bit format tag in the
// high byte, matching the bit layout of the teacher-grounded tbx header's
// frame_count_word (tag in bits 25-32, frame count in bits 1-24).
func frameCountWord(tag uint8, framecount int64) uint32 {
	return uint32(framecount&0xFFFFFF) | uint32(tag)<<24
}

func frameCountFromWord(word uint32) int64 {
	return int64(word & 0xFFFFFF)
}
