package decoder

import "encoding/binary"

// vdif's header generalizes the tbx layout (sync + tagged frame count +
// seconds count + time tag) with the station/thread/channel fields a
// multi-antenna VLBI-style frame needs to detect a sequence change. Per
// SPEC_FULL.md §6 every field is written big-endian on the wire, including
// here, even though the real-world VDIF standard is little-endian — this
// module's wire format is self-consistent, not a byte-for-byte replica of
// the public VDIF spec.
const (
	vdifSyncWord  uint32 = 0x1ACFFC1D
	vdifFrameTag  uint8  = 0x01
	vdifHeaderLen        = 32
)

type vdifDecoder struct{}

func (vdifDecoder) Format() Format  { return FormatVDIF }
func (vdifDecoder) HeaderLen() int { return vdifHeaderLen }

func (vdifDecoder) Parse(packet []byte) (ParseResult, error) {
	if len(packet) < vdifHeaderLen {
		return ParseResult{}, ErrTooShort
	}
	if binary.BigEndian.Uint32(packet[0:4]) != vdifSyncWord {
		return ParseResult{SyncOK: false}, ErrSyncMismatch
	}
	fcw := binary.BigEndian.Uint32(packet[4:8])
	// packet[8:12] is seconds_count.
	stationID := binary.BigEndian.Uint16(packet[12:14])
	threadID := binary.BigEndian.Uint16(packet[14:16])
	nchan := binary.BigEndian.Uint16(packet[16:18])
	bitsPerSample := binary.BigEndian.Uint16(packet[18:20])
	_ = bitsPerSample
	chan0 := binary.BigEndian.Uint32(packet[20:24])
	timeTag := binary.BigEndian.Uint64(packet[24:32])

	return ParseResult{
		SyncOK:        true,
		Seq:           frameCountFromWord(fcw),
		SrcID:         int32(threadID),
		TimeTag:       int64(timeTag),
		PayloadOffset: vdifHeaderLen,
		PayloadLen:    len(packet) - vdifHeaderLen,
		Tags: SequenceTags{
			NChan:  nchan,
			Chan0:  chan0,
			SrcID:  uint32(stationID),
			Tuning: 0,
		},
	}, nil
}

func (vdifDecoder) ComputeRingOffset(seq int64, srcID int32, layout LayoutParams) int64 {
	return computeRingOffset(seq, srcID, layout)
}

func (vdifDecoder) FillHeader(desc PacketDesc, framecount int64, out []byte) error {
	if len(out) < vdifHeaderLen {
		return ErrTooShort
	}
	for i := range out[:vdifHeaderLen] {
		out[i] = 0
	}
	binary.BigEndian.PutUint32(out[0:4], vdifSyncWord)
	binary.BigEndian.PutUint32(out[4:8], frameCountWord(vdifFrameTag, framecount))
	binary.BigEndian.PutUint16(out[12:14], uint16(desc.Tags.SrcID))
	binary.BigEndian.PutUint16(out[14:16], uint16(desc.SrcID))
	binary.BigEndian.PutUint16(out[16:18], desc.Tags.NChan)
	binary.BigEndian.PutUint32(out[20:24], desc.Tags.Chan0)
	binary.BigEndian.PutUint64(out[24:32], uint64(desc.Seq))
	return nil
}
