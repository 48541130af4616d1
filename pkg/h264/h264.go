// Package h264 contains utilities to work with the H264 codec.
package h264

import (
	"encoding/binary"

	mch264 "github.com/bluenviron/mediacommon/v2/pkg/codecs/h264"
)

// NALU is a NAL unit.
type NALU struct {
	Type mch264.NALUType

	// nal_ref_idc, 0 to 3.
	NRI uint8

	// payload, without the header byte.
	Data []byte

	DTS int64
	PTS int64

	// slice_type of slices, or -1 when not parsed.
	SliceType int
}

// NewNALU allocates a NALU from its header byte and payload.
func NewNALU(header byte, data []byte, dts int64, pts int64) *NALU {
	return &NALU{
		Type:      mch264.NALUType(header & 0x1F),
		NRI:       (header >> 5) & 0x03,
		Data:      data,
		DTS:       dts,
		PTS:       pts,
		SliceType: -1,
	}
}

// Header returns the header byte.
func (n *NALU) Header() byte {
	return n.NRI<<5 | byte(n.Type)
}

// Bytes returns the header byte followed by the payload.
func (n *NALU) Bytes() []byte {
	ret := make([]byte, 1+len(n.Data))
	ret[0] = n.Header()
	copy(ret[1:], n.Data)
	return ret
}

// Size returns the size of the length-prefixed NALU.
func (n *NALU) Size() int {
	return 4 + 1 + len(n.Data)
}

// Marshal encodes the NALU with a 4-byte length prefix (AVCC).
func (n *NALU) Marshal() []byte {
	ret := make([]byte, n.Size())
	binary.BigEndian.PutUint32(ret, uint32(1+len(n.Data)))
	ret[4] = n.Header()
	copy(ret[5:], n.Data)
	return ret
}

// IsKeyframe checks whether the NALU is an IDR or an all-I slice.
func (n *NALU) IsKeyframe() bool {
	return n.Type == mch264.NALUTypeIDR || n.SliceType == 7
}
