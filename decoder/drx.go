package decoder

import "encoding/binary"

// drx carries beamformed digital receiver output across up to two tunings
// and two polarizations; drx_id packs beam<<5|tune<<3|pol, matching the
// retained original source's drx_hdr_type.
const (
	drxSyncWord  uint32 = 0x5CDEC2A0
	drxFrameTag  uint8  = 0x03
	drxHeaderLen        = 36
)

type drxDecoder struct{}

func (drxDecoder) Format() Format  { return FormatDRX }
func (drxDecoder) HeaderLen() int { return drxHeaderLen }

func (drxDecoder) Parse(packet []byte) (ParseResult, error) {
	if len(packet) < drxHeaderLen {
		return ParseResult{}, ErrTooShort
	}
	if binary.BigEndian.Uint32(packet[0:4]) != drxSyncWord {
		return ParseResult{SyncOK: false}, ErrSyncMismatch
	}
	fcw := binary.BigEndian.Uint32(packet[4:8])
	// packet[8:12] is seconds_count; not needed for sequence detection.
	drxID := packet[12]
	// packet[13] reserved, packet[14:16] frame_length unused here.
	decimation := binary.BigEndian.Uint32(packet[16:20])
	// packet[20:24] is time_offset; not needed for sequence detection.
	tuning := binary.BigEndian.Uint32(packet[24:28])
	timeTag := binary.BigEndian.Uint64(packet[28:36])

	return ParseResult{
		SyncOK:        true,
		Seq:           frameCountFromWord(fcw),
		SrcID:         int32(drxID),
		TimeTag:       int64(timeTag),
		PayloadOffset: drxHeaderLen,
		PayloadLen:    len(packet) - drxHeaderLen,
		Tags: SequenceTags{
			Decimation: decimation,
			Tuning:     tuning,
			SrcID:      uint32(drxID),
		},
	}, nil
}

func (drxDecoder) ComputeRingOffset(seq int64, srcID int32, layout LayoutParams) int64 {
	return computeRingOffset(seq, srcID, layout)
}

func (drxDecoder) FillHeader(desc PacketDesc, framecount int64, out []byte) error {
	if len(out) < drxHeaderLen {
		return ErrTooShort
	}
	for i := range out[:drxHeaderLen] {
		out[i] = 0
	}
	binary.BigEndian.PutUint32(out[0:4], drxSyncWord)
	binary.BigEndian.PutUint32(out[4:8], frameCountWord(drxFrameTag, framecount))
	out[12] = byte(desc.SrcID)
	binary.BigEndian.PutUint32(out[16:20], desc.Tags.Decimation)
	binary.BigEndian.PutUint32(out[24:28], desc.Tags.Tuning)
	binary.BigEndian.PutUint64(out[28:36], uint64(desc.Seq))
	return nil
}
