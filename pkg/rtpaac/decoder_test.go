package rtpaac

import (
	"testing"

	"github.com/stretchr/testify/require"

	mcbits "github.com/bluenviron/mediacommon/v2/pkg/bits"
)

func newGenericDecoder(t *testing.T, sampleRate int, fmtp map[string]string) *Decoder {
	d := &Decoder{SampleRate: sampleRate}
	err := d.Init(fmtp)
	require.NoError(t, err)
	return d
}

var genericFMTP = map[string]string{
	"streamtype":       "5",
	"mode":             "AAC-hbr",
	"sizelength":       "13",
	"indexlength":      "3",
	"indexdeltalength": "3",
}

func TestDecoderInit(t *testing.T) {
	d := newGenericDecoder(t, 44100, genericFMTP)
	require.Equal(t, 13, d.SizeLength)
	require.Equal(t, 3, d.IndexLength)
	require.Equal(t, 3, d.IndexDeltaLength)
	require.Equal(t, 0, d.CTSDeltaLength)

	err := (&Decoder{}).Init(map[string]string{"sizelength": "abc"})
	require.EqualError(t, err, "invalid sizelength: abc")
}

func TestDecodeGeneric(t *testing.T) {
	for _, ca := range []struct {
		name    string
		payload []byte
		rtpts   int64
		frames  []*Frame
	}{
		{
			"single",
			[]byte{
				0x00, 0x10, 0x00, 0x20,
				0x01, 0x02, 0x03, 0x04,
			},
			1024,
			[]*Frame{{
				Data: []byte{0x01, 0x02, 0x03, 0x04},
				DTS:  2089,
				PTS:  2089,
			}},
		},
		{
			"aggregated",
			[]byte{
				0x00, 0x20, 0x00, 0x20, 0x00, 0x18,
				0x01, 0x02, 0x03, 0x04,
				0x05, 0x06, 0x07,
			},
			0,
			[]*Frame{
				{Data: []byte{0x01, 0x02, 0x03, 0x04}},
				{Data: []byte{0x05, 0x06, 0x07}},
			},
		},
		{
			"timestamp rounded to frame size",
			[]byte{
				0x00, 0x10, 0x00, 0x08,
				0xaa,
			},
			2000,
			[]*Frame{{
				Data: []byte{0xaa},
				DTS:  4179,
				PTS:  4179,
			}},
		},
	} {
		t.Run(ca.name, func(t *testing.T) {
			d := newGenericDecoder(t, 44100, genericFMTP)
			frames, err := d.Decode(ca.payload, ca.rtpts)
			require.NoError(t, err)
			require.Equal(t, ca.frames, frames)
		})
	}
}

func TestDecodeCTSDelta(t *testing.T) {
	d := newGenericDecoder(t, 48000, map[string]string{
		"sizelength":     "13",
		"indexlength":    "3",
		"ctsdeltalength": "16",
	})

	// 33 bits of AU header
	headers := make([]byte, 5)
	pos := 0
	mcbits.WriteBitsUnsafe(headers, &pos, 2, 13)
	mcbits.WriteBitsUnsafe(headers, &pos, 0, 3)
	mcbits.WriteFlagUnsafe(headers, &pos, true)
	mcbits.WriteBitsUnsafe(headers, &pos, 1024, 16)

	payload := append([]byte{0x00, 33}, headers...)
	payload = append(payload, 0xaa, 0xbb)

	frames, err := d.Decode(payload, 0)
	require.NoError(t, err)
	require.Equal(t, []*Frame{{
		Data: []byte{0xaa, 0xbb},
		DTS:  0,
		PTS:  1920,
	}}, frames)
}

func TestDecodeWithoutHeaders(t *testing.T) {
	d := &Decoder{SampleRate: 48000}

	frames, err := d.Decode([]byte{0xff, 0xff, 0x05, 0xaa, 0xbb}, 1024)
	require.NoError(t, err)
	require.Equal(t, []*Frame{{
		Data: []byte{0xaa, 0xbb},
		DTS:  1920,
		PTS:  1920,
	}}, frames)

	_, err = d.Decode([]byte{0xff, 0xff}, 0)
	require.EqualError(t, err, "payload is too short")
}

func TestDecodeErrors(t *testing.T) {
	for _, ca := range []struct {
		name    string
		payload []byte
		err     string
	}{
		{
			"empty",
			[]byte{0x00},
			"payload is too short",
		},
		{
			"zero headers length",
			[]byte{0x00, 0x00, 0x01},
			"invalid AU-headers-length",
		},
		{
			"missing headers",
			[]byte{0x00, 0x20, 0x00},
			"payload is too short",
		},
		{
			"missing data",
			[]byte{0x00, 0x10, 0x00, 0x20, 0x01},
			"payload is too short",
		},
	} {
		t.Run(ca.name, func(t *testing.T) {
			d := newGenericDecoder(t, 44100, genericFMTP)
			_, err := d.Decode(ca.payload, 0)
			require.EqualError(t, err, ca.err)
		})
	}

	_, err := (&Decoder{}).Decode([]byte{0x00}, 0)
	require.EqualError(t, err, "sample rate is unknown")
}
