package decoder

import "encoding/binary"

// chips carries one channel range of a coherent all-sky imaging
// correlator's whole-array spectrometer output. There is no per-stand
// source to address: every packet is SrcID 0, and the channel window
// (chan0, nchan) is a sequence tag only, not an addressing field.
const (
	chipsSyncWord  uint32 = 0x5CDEC3A0
	chipsFrameTag  uint8  = 0x05
	chipsHeaderLen        = 28
)

type chipsDecoder struct{}

func (chipsDecoder) Format() Format  { return FormatCHIPS }
func (chipsDecoder) HeaderLen() int { return chipsHeaderLen }

func (chipsDecoder) Parse(packet []byte) (ParseResult, error) {
	if len(packet) < chipsHeaderLen {
		return ParseResult{}, ErrTooShort
	}
	if binary.BigEndian.Uint32(packet[0:4]) != chipsSyncWord {
		return ParseResult{SyncOK: false}, ErrSyncMismatch
	}
	fcw := binary.BigEndian.Uint32(packet[4:8])
	chan0 := binary.BigEndian.Uint32(packet[12:16])
	nchan := binary.BigEndian.Uint16(packet[16:18])
	// packet[18:20] reserved.
	timeTag := binary.BigEndian.Uint64(packet[20:28])

	return ParseResult{
		SyncOK:        true,
		Seq:           frameCountFromWord(fcw),
		SrcID:         0,
		TimeTag:       int64(timeTag),
		PayloadOffset: chipsHeaderLen,
		PayloadLen:    len(packet) - chipsHeaderLen,
		Tags: SequenceTags{
			NChan: nchan,
			Chan0: chan0,
		},
	}, nil
}

func (chipsDecoder) ComputeRingOffset(seq int64, srcID int32, layout LayoutParams) int64 {
	return computeRingOffset(seq, srcID, layout)
}

func (chipsDecoder) FillHeader(desc PacketDesc, framecount int64, out []byte) error {
	if len(out) < chipsHeaderLen {
		return ErrTooShort
	}
	for i := range out[:chipsHeaderLen] {
		out[i] = 0
	}
	binary.BigEndian.PutUint32(out[0:4], chipsSyncWord)
	binary.BigEndian.PutUint32(out[4:8], frameCountWord(chipsFrameTag, framecount))
	binary.BigEndian.PutUint32(out[12:16], desc.Tags.Chan0)
	binary.BigEndian.PutUint16(out[16:18], desc.Tags.NChan)
	binary.BigEndian.PutUint64(out[20:28], uint64(desc.Seq))
	return nil
}
