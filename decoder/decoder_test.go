package decoder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allFormats() []Format {
	return []Format{
		FormatVDIF, FormatTBN, FormatDRX, FormatDRX8, FormatCHIPS,
		FormatSNAP2, FormatIBeam, FormatPBeam, FormatCOR, FormatTBX, FormatSimple,
	}
}

func TestRegistryHasEveryFormat(t *testing.T) {
	for _, f := range allFormats() {
		d, ok := Get(f)
		require.True(t, ok, "missing decoder for %s", f)
		assert.Equal(t, f, d.Format())
	}
	assert.Len(t, Formats(), len(allFormats()))
}

func TestFillHeaderThenParseRoundTrips(t *testing.T) {
	for _, f := range allFormats() {
		d, ok := Get(f)
		require.True(t, ok)

		desc := PacketDesc{
			Seq:   12345,
			SrcID: 7,
			Tags: SequenceTags{
				NChan:      16,
				Chan0:      100,
				Decimation: 4,
				Gain:       9,
				Tuning:     2,
				SrcID:      7,
				Stand0:     3,
				Stand1:     5,
			},
		}

		payload := []byte("payload-bytes")
		packet := make([]byte, d.HeaderLen()+len(payload))
		require.NoError(t, d.FillHeader(desc, desc.Seq, packet), "format %s", f)
		copy(packet[d.HeaderLen():], payload)

		result, err := d.Parse(packet)
		require.NoError(t, err, "format %s", f)
		assert.True(t, result.SyncOK)
		assert.Equal(t, desc.Seq, result.Seq)
		assert.Equal(t, desc.Seq, result.TimeTag, "format %s", f)
		assert.Equal(t, d.HeaderLen(), result.PayloadOffset)
		assert.Equal(t, len(payload), result.PayloadLen)
		assert.Equal(t, payload, packet[result.PayloadOffset:result.PayloadOffset+result.PayloadLen])
	}
}

func TestParseRejectsShortPacket(t *testing.T) {
	for _, f := range allFormats() {
		d, _ := Get(f)
		_, err := d.Parse(make([]byte, d.HeaderLen()-1))
		assert.ErrorIs(t, err, ErrTooShort, "format %s", f)
	}
}

func TestParseRejectsBadSync(t *testing.T) {
	for _, f := range allFormats() {
		d, _ := Get(f)
		packet := make([]byte, d.HeaderLen())
		_, err := d.Parse(packet) // zero bytes never match a nonzero sync word
		assert.ErrorIs(t, err, ErrSyncMismatch, "format %s", f)
	}
}

func TestComputeRingOffsetIsDeterministic(t *testing.T) {
	layout := LayoutParams{NSrc: 4, Src0: 0, FrameBytes: 256, SlotNTime: 10}
	for _, f := range allFormats() {
		d, _ := Get(f)
		a := d.ComputeRingOffset(25, 2, layout)
		b := d.ComputeRingOffset(25, 2, layout)
		assert.Equal(t, a, b, "format %s", f)
		assert.Equal(t, int64(10)*layout.FrameBytes, a, "format %s", f)
	}
}
