package decoder

import "encoding/binary"

// snap2 carries paired-antenna F-engine channelized voltages off a SNAP2
// board; stand0/stand1 identify the antenna pair multiplexed into the
// packet alongside the usual channel window.
const (
	snap2SyncWord  uint32 = 0x5CDEC4A0
	snap2FrameTag  uint8  = 0x06
	snap2HeaderLen        = 32
)

type snap2Decoder struct{}

func (snap2Decoder) Format() Format  { return FormatSNAP2 }
func (snap2Decoder) HeaderLen() int { return snap2HeaderLen }

func (snap2Decoder) Parse(packet []byte) (ParseResult, error) {
	if len(packet) < snap2HeaderLen {
		return ParseResult{}, ErrTooShort
	}
	if binary.BigEndian.Uint32(packet[0:4]) != snap2SyncWord {
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
		PayloadOffset: snap2HeaderLen,
		PayloadLen:    len(packet) - snap2HeaderLen,
		Tags: SequenceTags{
			NChan:  nchan,
			Chan0:  chan0,
			Stand0: stand0,
			Stand1: stand1,
		},
	}, nil
}

func (snap2Decoder) ComputeRingOffset(seq int64, srcID int32, layout LayoutParams) int64 {
	return computeRingOffset(seq, srcID, layout)
}

func (snap2Decoder) FillHeader(desc PacketDesc, framecount int64, out []byte) error {
	if len(out) < snap2HeaderLen {
		return ErrTooShort
	}
	for i := range out[:snap2HeaderLen] {
		out[i] = 0
	}
	binary.BigEndian.PutUint32(out[0:4], snap2SyncWord)
	binary.BigEndian.PutUint32(out[4:8], frameCountWord(snap2FrameTag, framecount))
	binary.BigEndian.PutUint32(out[12:16], desc.Tags.Chan0)
	binary.BigEndian.PutUint16(out[16:18], desc.Tags.NChan)
	binary.BigEndian.PutUint16(out[18:20], desc.Tags.Stand0)
	binary.BigEndian.PutUint16(out[20:22], desc.Tags.Stand1)
	binary.BigEndian.PutUint64(out[24:32], uint64(desc.Seq))
	return nil
}
