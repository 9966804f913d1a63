package decoder

import "encoding/binary"

// pbeam carries a power (post-detection, real-valued) beam: the same
// beam/channel identity as ibeam plus an applied gain, since power beams
// are typically scaled before transmission.
const (
	pbeamSyncWord  uint32 = 0x5CDEC6A0
	pbeamFrameTag  uint8  = 0x09
	pbeamHeaderLen        = 32
)

type pbeamDecoder struct{}

func (pbeamDecoder) Format() Format  { return FormatPBeam }
func (pbeamDecoder) HeaderLen() int { return pbeamHeaderLen }

func (pbeamDecoder) Parse(packet []byte) (ParseResult, error) {
	if len(packet) < pbeamHeaderLen {
		return ParseResult{}, ErrTooShort
	}
	if binary.BigEndian.Uint32(packet[0:4]) != pbeamSyncWord {
		return ParseResult{SyncOK: false}, ErrSyncMismatch
	}
	fcw := binary.BigEndian.Uint32(packet[4:8])
	chan0 := binary.BigEndian.Uint32(packet[12:16])
	nchan := binary.BigEndian.Uint16(packet[16:18])
	beamID := binary.BigEndian.Uint16(packet[18:20])
	gain := int16(binary.BigEndian.Uint16(packet[20:22]))
	// packet[22:24] reserved.
	timeTag := binary.BigEndian.Uint64(packet[24:32])

	return ParseResult{
		SyncOK:        true,
		Seq:           frameCountFromWord(fcw),
		SrcID:         int32(beamID),
		TimeTag:       int64(timeTag),
		PayloadOffset: pbeamHeaderLen,
		PayloadLen:    len(packet) - pbeamHeaderLen,
		Tags: SequenceTags{
			NChan: nchan,
			Chan0: chan0,
			SrcID: uint32(beamID),
			Gain:  gain,
		},
	}, nil
}

func (pbeamDecoder) ComputeRingOffset(seq int64, srcID int32, layout LayoutParams) int64 {
	return computeRingOffset(seq, srcID, layout)
}

func (pbeamDecoder) FillHeader(desc PacketDesc, framecount int64, out []byte) error {
	if len(out) < pbeamHeaderLen {
		return ErrTooShort
	}
	for i := range out[:pbeamHeaderLen] {
		out[i] = 0
	}
	binary.BigEndian.PutUint32(out[0:4], pbeamSyncWord)
	binary.BigEndian.PutUint32(out[4:8], frameCountWord(pbeamFrameTag, framecount))
	binary.BigEndian.PutUint32(out[12:16], desc.Tags.Chan0)
	binary.BigEndian.PutUint16(out[16:18], desc.Tags.NChan)
	binary.BigEndian.PutUint16(out[18:20], uint16(desc.SrcID))
	binary.BigEndian.PutUint16(out[20:22], uint16(desc.Tags.Gain))
	binary.BigEndian.PutUint64(out[24:32], uint64(desc.Seq))
	return nil
}
