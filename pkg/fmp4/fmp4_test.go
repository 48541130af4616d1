package fmp4

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

type testBox struct {
	typ      string
	payload  []byte
	children []*testBox
}

var containers = map[string]struct{}{
	"moov": {},
	"trak": {},
	"mdia": {},
	"minf": {},
	"dinf": {},
	"stbl": {},
	"mvex": {},
	"moof": {},
	"traf": {},
}

// parseBoxes splits a buffer into boxes and checks that sizes are consistent.
func parseBoxes(t *testing.T, buf []byte) []*testBox {
	var ret []*testBox

	for len(buf) > 0 {
		require.GreaterOrEqual(t, len(buf), 8)
		size := int(binary.BigEndian.Uint32(buf))
		require.GreaterOrEqual(t, size, 8)
		require.LessOrEqual(t, size, len(buf))

		b := &testBox{
			typ:     string(buf[4:8]),
			payload: buf[8:size],
		}
		if _, ok := containers[b.typ]; ok {
			b.children = parseBoxes(t, b.payload)
		}

		ret = append(ret, b)
		buf = buf[size:]
	}

	return ret
}

func findBox(boxes []*testBox, path ...string) *testBox {
	for _, b := range boxes {
		if b.typ == path[0] {
			if len(path) == 1 {
				return b
			}
			return findBox(b.children, path[1:]...)
		}
	}
	return nil
}

var testSPS = []byte{
	0x67, 0x42, 0xc0, 0x28, 0xd9, 0x00, 0x78, 0x02,
	0x27, 0xe5, 0x84, 0x00, 0x00, 0x03, 0x00, 0x04,
	0x00, 0x00, 0x03, 0x00, 0xf0, 0x3c, 0x60, 0xc9, 0x20,
}

var testPPS = []byte{0x68, 0xcb, 0x8c, 0xb2}

func TestFtyp(t *testing.T) {
	require.Equal(t, []byte{
		0x00, 0x00, 0x00, 0x18, 'f', 't', 'y', 'p',
		'i', 's', 'o', 'm', 0x00, 0x00, 0x00, 0x01,
		'i', 's', 'o', 'm', 'a', 'v', 'c', '1',
	}, ftyp())
}

func TestInitSegmentVideo(t *testing.T) {
	buf := InitSegment([]*Track{{
		ID:        1,
		Type:      TrackTypeVideo,
		Timescale: 90000,
		Duration:  90000,
		Width:     1920,
		Height:    1080,
		SPS:       [][]byte{testSPS},
		PPS:       [][]byte{testPPS},
	}}, 90000, 90000)

	boxes := parseBoxes(t, buf)
	require.Len(t, boxes, 2)
	require.Equal(t, "ftyp", boxes[0].typ)
	require.Equal(t, "moov", boxes[1].typ)

	mvhd := findBox(boxes, "moov", "mvhd")
	require.Len(t, mvhd.payload, 100)
	require.Equal(t, uint32(90000), binary.BigEndian.Uint32(mvhd.payload[12:]))

	tkhd := findBox(boxes, "moov", "trak", "tkhd")
	require.Len(t, tkhd.payload, 84)
	require.Equal(t, []byte{0x00, 0x00, 0x00, 0x07}, tkhd.payload[:4])
	require.Equal(t, uint32(1), binary.BigEndian.Uint32(tkhd.payload[12:]))
	require.Equal(t, uint32(1920<<16), binary.BigEndian.Uint32(tkhd.payload[76:]))
	require.Equal(t, uint32(1080<<16), binary.BigEndian.Uint32(tkhd.payload[80:]))

	mdhd := findBox(boxes, "moov", "trak", "mdia", "mdhd")
	require.Equal(t, []byte{0x55, 0xc4, 0x00, 0x00}, mdhd.payload[20:])

	hdlr := findBox(boxes, "moov", "trak", "mdia", "hdlr")
	require.Equal(t, "vide", string(hdlr.payload[8:12]))

	require.NotNil(t, findBox(boxes, "moov", "trak", "mdia", "minf", "vmhd"))
	require.Equal(t, []byte{
		0x00, 0x00, 0x00, 0x1c, 'd', 'r', 'e', 'f',
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01,
		0x00, 0x00, 0x00, 0x0c, 'u', 'r', 'l', ' ',
		0x00, 0x00, 0x00, 0x01,
	}, findBox(boxes, "moov", "trak", "mdia", "minf", "dinf").payload)

	stsd := findBox(boxes, "moov", "trak", "mdia", "minf", "stbl", "stsd")
	entries := parseBoxes(t, stsd.payload[8:])
	require.Len(t, entries, 1)
	require.Equal(t, "avc1", entries[0].typ)

	avc1 := entries[0].payload
	require.Equal(t, uint16(1920), binary.BigEndian.Uint16(avc1[24:]))
	require.Equal(t, uint16(1080), binary.BigEndian.Uint16(avc1[26:]))

	children := parseBoxes(t, avc1[78:])
	require.Len(t, children, 2)
	require.Equal(t, "avcC", children[0].typ)
	require.Equal(t, append(append([]byte{
		0x01, 0x42, 0xc0, 0x28, 0xff, 0xe1,
		0x00, byte(len(testSPS)),
	}, testSPS...), append([]byte{0x01, 0x00, 0x04}, testPPS...)...), children[0].payload)
	require.Equal(t, "btrt", children[1].typ)

	trex := findBox(boxes, "moov", "mvex", "trex")
	require.Equal(t, []byte{
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x01,
		0x00, 0x00, 0x00, 0x01,
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x01, 0x00, 0x01,
	}, trex.payload)
}

func TestInitSegmentAudio(t *testing.T) {
	buf := InitSegment([]*Track{{
		ID:           2,
		Type:         TrackTypeAudio,
		Timescale:    44100,
		SampleRate:   44100,
		ChannelCount: 2,
		Config:       []byte{0x12, 0x10},
	}}, 44100, 44100)

	boxes := parseBoxes(t, buf)

	tkhd := findBox(boxes, "moov", "trak", "tkhd")
	require.Equal(t, uint32(0xFFFFFFFF), binary.BigEndian.Uint32(tkhd.payload[20:]))
	require.Equal(t, []byte{0x01, 0x00}, tkhd.payload[36:38])

	hdlr := findBox(boxes, "moov", "trak", "mdia", "hdlr")
	require.Equal(t, "soun", string(hdlr.payload[8:12]))
	require.NotNil(t, findBox(boxes, "moov", "trak", "mdia", "minf", "smhd"))

	stsd := findBox(boxes, "moov", "trak", "mdia", "minf", "stbl", "stsd")
	entries := parseBoxes(t, stsd.payload[8:])
	require.Equal(t, "mp4a", entries[0].typ)

	mp4a := entries[0].payload
	require.Equal(t, []byte{0x00, 0x02, 0x00, 0x10}, mp4a[16:20])
	require.Equal(t, []byte{0xac, 0x44, 0x00, 0x00}, mp4a[24:28])

	require.Equal(t, []byte{
		0x00, 0x00, 0x00, 0x27, 'e', 's', 'd', 's',
		0x00, 0x00, 0x00, 0x00,
		0x03, 0x19, 0x00, 0x01, 0x00,
		0x04, 0x11, 0x40, 0x15,
		0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
		0x05, 0x02, 0x12, 0x10,
		0x06, 0x01, 0x02,
	}, mp4a[28:])
}

func TestMoof(t *testing.T) {
	samples := []*Sample{
		{
			Duration: 3000,
			Size:     100,
			CTS:      0,
			Flags: SampleFlags{
				DependsOn: 2,
			},
		},
		{
			Duration: 3000,
			Size:     50,
			CTS:      3000,
			Flags: SampleFlags{
				DependsOn: 1,
				IsNonSync: true,
			},
		},
	}

	moof := Moof(5, 123456, 1, samples)
	boxes := parseBoxes(t, moof)
	require.Len(t, boxes, 1)

	require.Equal(t, []byte{
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x05,
	}, findBox(boxes, "moof", "mfhd").payload)

	require.Equal(t, []byte{
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01,
	}, findBox(boxes, "moof", "traf", "tfhd").payload)

	require.Equal(t, []byte{
		0x00, 0x00, 0x00, 0x00, 0x00, 0x01, 0xe2, 0x40,
	}, findBox(boxes, "moof", "traf", "tfdt").payload)

	require.Equal(t, []byte{
		0x00, 0x00, 0x0f, 0x01,
		0x00, 0x00, 0x00, 0x02,
		0x00, 0x00, 0x00, byte(len(moof) + 8),
		0x00, 0x00, 0x0b, 0xb8, 0x00, 0x00, 0x00, 0x64,
		0x02, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x0b, 0xb8, 0x00, 0x00, 0x00, 0x32,
		0x01, 0x01, 0x00, 0x00, 0x00, 0x00, 0x0b, 0xb8,
	}, findBox(boxes, "moof", "traf", "trun").payload)

	require.Equal(t, []byte{
		0x00, 0x00, 0x00, 0x00, 0x20, 0x10,
	}, findBox(boxes, "moof", "traf", "sdtp").payload)
}

func TestMoofFixedLayout(t *testing.T) {
	for _, ca := range []struct {
		name string
		base uint32
		tfdt []byte
	}{
		{
			"zero",
			0,
			[]byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00},
		},
		{
			"max 32-bit decode time",
			0xFFFFFFFF,
			[]byte{0x00, 0x00, 0x00, 0x00, 0xff, 0xff, 0xff, 0xff},
		},
	} {
		t.Run(ca.name, func(t *testing.T) {
			moof := Moof(1, ca.base, 2, []*Sample{{Duration: 1024, Size: 10}})
			boxes := parseBoxes(t, moof)

			// tfdt version 0, 32-bit decode time
			require.Equal(t, ca.tfdt, findBox(boxes, "moof", "traf", "tfdt").payload)

			// trun version 0, flags 0x000F01
			trun := findBox(boxes, "moof", "traf", "trun").payload
			require.Equal(t, []byte{0x00, 0x00, 0x0f, 0x01}, trun[:4])

			// sdtp follows trun, one byte per sample
			sdtp := findBox(boxes, "moof", "traf", "sdtp")
			require.NotNil(t, sdtp)
			require.Len(t, sdtp.payload, 4+1)

			traf := findBox(boxes, "moof", "traf")
			var types []string
			for _, c := range traf.children {
				types = append(types, c.typ)
			}
			require.Equal(t, []string{"tfhd", "tfdt", "trun", "sdtp"}, types)
		})
	}
}

func TestMdat(t *testing.T) {
	require.Equal(t, []byte{
		0x00, 0x00, 0x00, 0x0b, 'm', 'd', 'a', 't',
		0x01, 0x02, 0x03,
	}, Mdat([]byte{0x01, 0x02, 0x03}))
}
