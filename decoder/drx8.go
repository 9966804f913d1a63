package decoder

import "encoding/binary"

// drx8 is the 8-bit-sample variant of drx: identical field layout, distinct
// sync word and frame tag so a receiver mixing both beam formats on the
// same port can tell them apart before the payload is even touched.
const (
	drx8SyncWord  uint32 = 0x5CDEC2A8
	drx8FrameTag  uint8  = 0x04
	drx8HeaderLen        = 36
)

type drx8Decoder struct{}

func (drx8Decoder) Format() Format  { return FormatDRX8 }
func (drx8Decoder) HeaderLen() int { return drx8HeaderLen }

func (drx8Decoder) Parse(packet []byte) (ParseResult, error) {
	if len(packet) < drx8HeaderLen {
		return ParseResult{}, ErrTooShort
	}
	if binary.BigEndian.Uint32(packet[0:4]) != drx8SyncWord {
		return ParseResult{SyncOK: false}, ErrSyncMismatch
	}
	fcw := binary.BigEndian.Uint32(packet[4:8])
	drxID := packet[12]
	decimation := binary.BigEndian.Uint32(packet[16:20])
	tuning := binary.BigEndian.Uint32(packet[24:28])
	timeTag := binary.BigEndian.Uint64(packet[28:36])

	return ParseResult{
		SyncOK:        true,
		Seq:           frameCountFromWord(fcw),
		SrcID:         int32(drxID),
		TimeTag:       int64(timeTag),
		PayloadOffset: drx8HeaderLen,
		PayloadLen:    len(packet) - drx8HeaderLen,
		Tags: SequenceTags{
			Decimation: decimation,
			Tuning:     tuning,
			SrcID:      uint32(drxID),
		},
	}, nil
}

func (drx8Decoder) ComputeRingOffset(seq int64, srcID int32, layout LayoutParams) int64 {
	return computeRingOffset(seq, srcID, layout)
}

func (drx8Decoder) FillHeader(desc PacketDesc, framecount int64, out []byte) error {
	if len(out) < drx8HeaderLen {
		return ErrTooShort
	}
	for i := range out[:drx8HeaderLen] {
		out[i] = 0
	}
	binary.BigEndian.PutUint32(out[0:4], drx8SyncWord)
	binary.BigEndian.PutUint32(out[4:8], frameCountWord(drx8FrameTag, framecount))
	out[12] = byte(desc.SrcID)
	binary.BigEndian.PutUint32(out[16:20], desc.Tags.Decimation)
	binary.BigEndian.PutUint32(out[24:28], desc.Tags.Tuning)
	binary.BigEndian.PutUint64(out[28:36], uint64(desc.Seq))
	return nil
}
