package decoder

import "encoding/binary"

// tbn carries narrow-band time-series samples for a single tuning, one
// stand/polarization pair per packet. The tbn_id field packs stand<<1|pol,
// mirroring the retained original source's tbn_hdr_type.
const (
	tbnSyncWord  uint32 = 0x5CDEC1A0
	tbnFrameTag  uint8  = 0x02
	tbnHeaderLen        = 24
)

type tbnDecoder struct{}

func (tbnDecoder) Format() Format  { return FormatTBN }
func (tbnDecoder) HeaderLen() int { return tbnHeaderLen }

func (tbnDecoder) Parse(packet []byte) (ParseResult, error) {
	if len(packet) < tbnHeaderLen {
		return ParseResult{}, ErrTooShort
	}
	if binary.BigEndian.Uint32(packet[0:4]) != tbnSyncWord {
		return ParseResult{SyncOK: false}, ErrSyncMismatch
	}
	fcw := binary.BigEndian.Uint32(packet[4:8])
	// packet[8:12] is seconds_count; not needed for sequence detection.
	tbnID := binary.BigEndian.Uint16(packet[12:14])
	gain := int16(binary.BigEndian.Uint16(packet[14:16]))
	timeTag := binary.BigEndian.Uint64(packet[16:24])

	stand := tbnID >> 1

	return ParseResult{
		SyncOK:        true,
		Seq:           frameCountFromWord(fcw),
		SrcID:         int32(stand),
		TimeTag:       int64(timeTag),
		PayloadOffset: tbnHeaderLen,
		PayloadLen:    len(packet) - tbnHeaderLen,
		Tags: SequenceTags{
			Gain:   gain,
			Stand0: stand,
		},
	}, nil
}

func (tbnDecoder) ComputeRingOffset(seq int64, srcID int32, layout LayoutParams) int64 {
	return computeRingOffset(seq, srcID, layout)
}

func (tbnDecoder) FillHeader(desc PacketDesc, framecount int64, out []byte) error {
	if len(out) < tbnHeaderLen {
		return ErrTooShort
	}
	for i := range out[:tbnHeaderLen] {
		out[i] = 0
	}
	binary.BigEndian.PutUint32(out[0:4], tbnSyncWord)
	binary.BigEndian.PutUint32(out[4:8], frameCountWord(tbnFrameTag, framecount))
	binary.BigEndian.PutUint16(out[12:14], desc.Tags.Stand0<<1)
	binary.BigEndian.PutUint16(out[14:16], uint16(desc.Tags.Gain))
	binary.BigEndian.PutUint64(out[16:24], uint64(desc.Seq))
	return nil
}
