package decoder

import "encoding/binary"

// ibeam carries an incoherent-sum beam's channelized voltages; beamID
// distinguishes concurrent beams sharing a port, alongside the channel
// window.
const (
	ibeamSyncWord  uint32 = 0x5CDEC5A0
	ibeamFrameTag  uint8  = 0x07
	ibeamHeaderLen        = 28
)

type ibeamDecoder struct{}

func (ibeamDecoder) Format() Format  { return FormatIBeam }
func (ibeamDecoder) HeaderLen() int { return ibeamHeaderLen }

func (ibeamDecoder) Parse(packet []byte) (ParseResult, error) {
	if len(packet) < ibeamHeaderLen {
		return ParseResult{}, ErrTooShort
	}
	if binary.BigEndian.Uint32(packet[0:4]) != ibeamSyncWord {
		return ParseResult{SyncOK: false}, ErrSyncMismatch
	}
	fcw := binary.BigEndian.Uint32(packet[4:8])
	chan0 := binary.BigEndian.Uint32(packet[12:16])
	nchan := binary.BigEndian.Uint16(packet[16:18])
	beamID := binary.BigEndian.Uint16(packet[18:20])
	timeTag := binary.BigEndian.Uint64(packet[20:28])

	return ParseResult{
		SyncOK:        true,
		Seq:           frameCountFromWord(fcw),
		SrcID:         int32(beamID),
		TimeTag:       int64(timeTag),
		PayloadOffset: ibeamHeaderLen,
		PayloadLen:    len(packet) - ibeamHeaderLen,
		Tags: SequenceTags{
			NChan: nchan,
			Chan0: chan0,
			SrcID: uint32(beamID),
		},
	}, nil
}

func (ibeamDecoder) ComputeRingOffset(seq int64, srcID int32, layout LayoutParams) int64 {
	return computeRingOffset(seq, srcID, layout)
}

func (ibeamDecoder) FillHeader(desc PacketDesc, framecount int64, out []byte) error {
	if len(out) < ibeamHeaderLen {
		return ErrTooShort
	}
	for i := range out[:ibeamHeaderLen] {
		out[i] = 0
	}
	binary.BigEndian.PutUint32(out[0:4], ibeamSyncWord)
	binary.BigEndian.PutUint32(out[4:8], frameCountWord(ibeamFrameTag, framecount))
	binary.BigEndian.PutUint32(out[12:16], desc.Tags.Chan0)
	binary.BigEndian.PutUint16(out[16:18], desc.Tags.NChan)
	binary.BigEndian.PutUint16(out[18:20], uint16(desc.SrcID))
	binary.BigEndian.PutUint64(out[20:28], uint64(desc.Seq))
	return nil
}
