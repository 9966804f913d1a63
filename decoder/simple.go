package decoder

import "encoding/binary"

// simple is the minimal format used for synthetic test streams and
// formats with no sequence-identifying tags beyond source id: sync word,
// frame count word, source id, time tag.
const (
	simpleSyncWord  uint32 = 0x5CDE0001
	simpleFrameTag  uint8  = 0x0B
	simpleHeaderLen        = 20
)

type simpleDecoder struct{}

func (simpleDecoder) Format() Format  { return FormatSimple }
func (simpleDecoder) HeaderLen() int { return simpleHeaderLen }

func (simpleDecoder) Parse(packet []byte) (ParseResult, error) {
	if len(packet) < simpleHeaderLen {
		return ParseResult{}, ErrTooShort
	}
	if binary.BigEndian.Uint32(packet[0:4]) != simpleSyncWord {
		return ParseResult{SyncOK: false}, ErrSyncMismatch
	}
	fcw := binary.BigEndian.Uint32(packet[4:8])
	srcID := binary.BigEndian.Uint32(packet[8:12])
	timeTag := binary.BigEndian.Uint64(packet[12:20])

	return ParseResult{
		SyncOK:        true,
		Seq:           frameCountFromWord(fcw),
		SrcID:         int32(srcID),
		TimeTag:       int64(timeTag),
		PayloadOffset: simpleHeaderLen,
		PayloadLen:    len(packet) - simpleHeaderLen,
	}, nil
}

func (simpleDecoder) ComputeRingOffset(seq int64, srcID int32, layout LayoutParams) int64 {
	return computeRingOffset(seq, srcID, layout)
}

func (simpleDecoder) FillHeader(desc PacketDesc, framecount int64, out []byte) error {
	if len(out) < simpleHeaderLen {
		return ErrTooShort
	}
	for i := range out[:simpleHeaderLen] {
		out[i] = 0
	}
	binary.BigEndian.PutUint32(out[0:4], simpleSyncWord)
	binary.BigEndian.PutUint32(out[4:8], frameCountWord(simpleFrameTag, framecount))
	binary.BigEndian.PutUint32(out[8:12], uint32(desc.SrcID))
	binary.BigEndian.PutUint64(out[12:20], uint64(desc.Seq))
	return nil
}
