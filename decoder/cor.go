package decoder

import "encoding/binary"

// cor carries one baseline's cross-correlation products for a channel
// window: the stand pair identifies the baseline, alongside the usual
// channel window.
const (
	corSyncWord  uint32 = 0x5CDEC7A0
	corFrameTag  uint8  = 0x0A
	corHeaderLen        = 32
)

type corDecoder struct{}

func (corDecoder) Format() Format  { return FormatCOR }
func (corDecoder) HeaderLen() int { return corHeaderLen }

func (corDecoder) Parse(packet []byte) (ParseResult, error) {
	if len(packet) < corHeaderLen {
		return ParseResult{}, ErrTooShort
	}
	if binary.BigEndian.Uint32(packet[0:4]) != corSyncWord {
		return ParseResult{SyncOK: false}, ErrSyncMismatch
	}
	fcw := binary.BigEndian.Uint32(packet[4:8])
	chan0 := binary.BigEndian.Uint32(packet[12:16])
	nchan := binary.BigEndian.Uint16(packet[16:18])
	stand0 := binary.BigEndian.Uint16(packet[18:20])
	stand1 := binary.BigEndian.Uint16(packet[20:22])
	// packet[22:24] reserved.
	timeTag := binary.BigEndian.Uint64(packet[24:32])

	return ParseResult{
		SyncOK:        true,
		Seq:           frameCountFromWord(fcw),
		SrcID:         int32(stand0),
		TimeTag:       int64(timeTag),
		PayloadOffset: corHeaderLen,
		PayloadLen:    len(packet) - corHeaderLen,
		Tags: SequenceTags{
			NChan:  nchan,
			Chan0:  chan0,
			Stand0: stand0,
			Stand1: stand1,
		},
	}, nil
}

func (corDecoder) ComputeRingOffset(seq int64, srcID int32, layout LayoutParams) int64 {
	return computeRingOffset(seq, srcID, layout)
}

func (corDecoder) FillHeader(desc PacketDesc, framecount int64, out []byte) error {
	if len(out) < corHeaderLen {
		return ErrTooShort
	}
	for i := range out[:corHeaderLen] {
		out[i] = 0
	}
	binary.BigEndian.PutUint32(out[0:4], corSyncWord)
	binary.BigEndian.PutUint32(out[4:8], frameCountWord(corFrameTag, framecount))
	binary.BigEndian.PutUint32(out[12:16], desc.Tags.Chan0)
	binary.BigEndian.PutUint16(out[16:18], desc.Tags.NChan)
	binary.BigEndian.PutUint16(out[18:20], desc.Tags.Stand0)
	binary.BigEndian.PutUint16(out[20:22], desc.Tags.Stand1)
	binary.BigEndian.PutUint64(out[24:32], uint64(desc.Seq))
	return nil
}
