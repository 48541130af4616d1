package rtph264

import (
	"encoding/binary"
	"fmt"

	mch264 "github.com/bluenviron/mediacommon/v2/pkg/codecs/h264"

	"github.com/bluenviron/gortspws/pkg/h264"
)

// Decoder reassembles NALUs from RTP/H264 payloads (RFC6184).
// Single NALUs, STAP-A, STAP-B, FU-A and FU-B are supported.
type Decoder struct {
	fragment     *h264.NALU
	fragmentType mch264.NALUType
	fragments    [][]byte
	fragmentSize int
}

// Decode decodes NALUs from a RTP payload.
// dts and pts are assigned to every NALU that starts in this payload.
// ErrMorePacketsNeeded is returned while a fragmented NALU is incomplete.
func (d *Decoder) Decode(payload []byte, dts int64, pts int64) ([]*h264.NALU, error) {
	if len(payload) < 1 {
		return nil, fmt.Errorf("payload is too short")
	}

	typ := mch264.NALUType(payload[0] & 0x1F)

	switch {
	case typ >= 1 && typ <= 23:
		return []*h264.NALU{h264.NewNALU(payload[0], payload[1:], dts, pts)}, nil

	case typ == mch264.NALUTypeSTAPA:
		return decodeSTAP(payload[1:], dts, pts)

	case typ == mch264.NALUTypeSTAPB:
		if len(payload) < 3 {
			return nil, fmt.Errorf("invalid STAP-B packet (invalid size)")
		}
		// DON is not used
		return decodeSTAP(payload[3:], dts, pts)

	case typ == mch264.NALUTypeFUA:
		return d.decodeFU(payload[0], payload[1:], dts, pts)

	case typ == mch264.NALUTypeFUB:
		// FU indicator, FU header, 2-byte DON
		if len(payload) < 4 {
			return nil, fmt.Errorf("invalid FU-B packet (invalid size)")
		}
		// DON is not used
		return d.decodeFU(payload[0], append([]byte{payload[1]}, payload[4:]...), dts, pts)
	}

	return nil, fmt.Errorf("packet type not supported (%v)", typ)
}

func decodeSTAP(payload []byte, dts int64, pts int64) ([]*h264.NALU, error) {
	var nalus []*h264.NALU

	for len(payload) > 0 {
		if len(payload) < 2 {
			return nil, fmt.Errorf("invalid STAP packet (invalid size)")
		}

		size := int(binary.BigEndian.Uint16(payload))
		payload = payload[2:]

		// avoid final padding
		if size == 0 {
			break
		}

		if size > len(payload) {
			return nil, fmt.Errorf("invalid STAP packet (invalid size)")
		}

		nalus = append(nalus, h264.NewNALU(payload[0], payload[1:size], dts, pts))
		payload = payload[size:]
	}

	if len(nalus) == 0 {
		return nil, fmt.Errorf("STAP packet doesn't contain any NALU")
	}

	return nalus, nil
}

// decodeFU handles a fragmentation unit. payload starts with the FU header.
func (d *Decoder) decodeFU(indicator byte, payload []byte, dts int64, pts int64) ([]*h264.NALU, error) {
	if len(payload) < 1 {
		return nil, fmt.Errorf("invalid FU packet (invalid size)")
	}

	start := (payload[0] >> 7) == 1
	end := ((payload[0] >> 6) & 0x01) == 1
	typ := mch264.NALUType(payload[0] & 0x1F)
	data := payload[1:]

	if start {
		d.fragment = h264.NewNALU((indicator&0xE0)|byte(typ), nil, dts, pts)
		d.fragmentType = typ
		d.fragments = [][]byte{data}
		d.fragmentSize = len(data)
	} else {
		if d.fragment == nil {
			return nil, ErrNonStartingPacketAndNoPrevious
		}

		if typ != d.fragmentType {
			return nil, fmt.Errorf("fragment type (%v) doesn't match the current one (%v)", typ, d.fragmentType)
		}

		size := d.fragmentSize + len(data)
		if size > maxNALUSize {
			d.reset()
			return nil, fmt.Errorf("NALU size (%d) is too big (maximum is %d)", size, maxNALUSize)
		}

		d.fragmentSize = size

		d.fragments = append(d.fragments, data)
	}

	if !end {
		return nil, ErrMorePacketsNeeded
	}

	nalu := d.fragment
	nalu.Data = make([]byte, d.fragmentSize)
	n := 0
	for _, p := range d.fragments {
		n += copy(nalu.Data[n:], p)
	}

	d.reset()

	return []*h264.NALU{nalu}, nil
}

func (d *Decoder) reset() {
	d.fragment = nil
	d.fragments = nil
	d.fragmentSize = 0
}

// Reset discards any fragment in progress.
func (d *Decoder) Reset() {
	d.reset()
}
