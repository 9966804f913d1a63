package decoder

import "encoding/binary"

// tbx's wire layout is taken directly from the retained original source's
// tbx_hdr_type: sync_word, frame_count_word, seconds_count, first_chan,
// nstand, nchan, time_tag — 28 bytes, packed, network byte order.
const (
	tbxSyncWord  uint32 = 0x5CDEC0DE
	tbxFrameTag  uint8  = 0x08
	tbxHeaderLen        = 28
)

type tbxDecoder struct{}

func (tbxDecoder) Format() Format  { return FormatTBX }
func (tbxDecoder) HeaderLen() int { return tbxHeaderLen }

func (tbxDecoder) Parse(packet []byte) (ParseResult, error) {
	if len(packet) < tbxHeaderLen {
		return ParseResult{}, ErrTooShort
	}
	sync := binary.BigEndian.Uint32(packet[0:4])
	if sync != tbxSyncWord {
		return ParseResult{SyncOK: false}, ErrSyncMismatch
	}
	fcw := binary.BigEndian.Uint32(packet[4:8])
	// packet[8:12] is seconds_count; not needed for sequence detection.
	chan0 := binary.BigEndian.Uint32(packet[12:16])
	nstand := binary.BigEndian.Uint16(packet[16:18])
	nchan := binary.BigEndian.Uint16(packet[18:20])
	timeTag := binary.BigEndian.Uint64(packet[20:28])

	return ParseResult{
		SyncOK:        true,
		Seq:           frameCountFromWord(fcw),
		SrcID:         int32(chan0),
		TimeTag:       int64(timeTag),
		PayloadOffset: tbxHeaderLen,
		PayloadLen:    len(packet) - tbxHeaderLen,
		Tags: SequenceTags{
			NChan:  nchan,
			Chan0:  chan0,
			Stand0: nstand,
		},
	}, nil
}

func (tbxDecoder) ComputeRingOffset(seq int64, srcID int32, layout LayoutParams) int64 {
	return computeRingOffset(seq, srcID, layout)
}

func (tbxDecoder) FillHeader(desc PacketDesc, framecount int64, out []byte) error {
	if len(out) < tbxHeaderLen {
		return ErrTooShort
	}
	for i := range out[:tbxHeaderLen] {
		out[i] = 0
	}
	binary.BigEndian.PutUint32(out[0:4], tbxSyncWord)
	binary.BigEndian.PutUint32(out[4:8], frameCountWord(tbxFrameTag, framecount))
	binary.BigEndian.PutUint32(out[12:16], uint32(desc.SrcID))
	binary.BigEndian.PutUint16(out[16:18], desc.Tags.Stand0)
	binary.BigEndian.PutUint16(out[18:20], desc.Tags.NChan)
	binary.BigEndian.PutUint64(out[20:28], uint64(desc.Seq))
	return nil
}
