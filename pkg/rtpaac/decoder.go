package rtpaac

import (
	"fmt"
	"math"
	"strconv"

	"github.com/bluenviron/gortspws/pkg/bits"
)

// Decoder extracts AAC access units from RTP payloads.
type Decoder struct {
	SampleRate int

	// AU header section, from fmtp.
	SizeLength              int
	IndexLength             int
	IndexDeltaLength        int
	CTSDeltaLength          int
	DTSDeltaLength          int
	RandomAccessIndication  int
	StreamStateIndication   int
	AuxiliaryDataSizeLength int
}

// Init initializes the decoder with the fmtp parameters of the media.
// Keys are expected to be lowercase.
func (d *Decoder) Init(fmtp map[string]string) error {
	for _, p := range []struct {
		key string
		dst *int
	}{
		{"sizelength", &d.SizeLength},
		{"indexlength", &d.IndexLength},
		{"indexdeltalength", &d.IndexDeltaLength},
		{"ctsdeltalength", &d.CTSDeltaLength},
		{"dtsdeltalength", &d.DTSDeltaLength},
		{"randomaccessindication", &d.RandomAccessIndication},
		{"streamstateindication", &d.StreamStateIndication},
		{"auxiliarydatasizelength", &d.AuxiliaryDataSizeLength},
	} {
		val, ok := fmtp[p.key]
		if !ok {
			continue
		}

		n, err := strconv.ParseUint(val, 10, 31)
		if err != nil || n > 32 {
			return fmt.Errorf("invalid %s: %v", p.key, val)
		}
		*p.dst = int(n)
	}

	return nil
}

func (d *Decoder) headerLength() int {
	return d.SizeLength + max(d.IndexLength, d.IndexDeltaLength) + d.CTSDeltaLength +
		d.DTSDeltaLength + d.RandomAccessIndication + d.StreamStateIndication +
		d.AuxiliaryDataSizeLength
}

// timestamp converts a RTP timestamp into 90khz units,
// aligned to the AAC frame size.
func (d *Decoder) timestamp(rtpts int64) int64 {
	return int64(math.Round(float64(rtpts)/1024)) * 1024 * 90000 / int64(d.SampleRate)
}

func (d *Decoder) scaleDelta(v int64) int64 {
	return v * 90000 / int64(d.SampleRate)
}

// Decode decodes the access units contained in a RTP payload.
// rtpts is the RTP timestamp, relative to the start of the stream.
func (d *Decoder) Decode(payload []byte, rtpts int64) ([]*Frame, error) {
	if d.SampleRate <= 0 {
		return nil, fmt.Errorf("sample rate is unknown")
	}

	ts := d.timestamp(rtpts)

	if d.headerLength() == 0 {
		return d.decodeWithoutHeaders(payload, ts)
	}

	if len(payload) < 2 {
		return nil, fmt.Errorf("payload is too short")
	}

	// AU-headers-length, in bits
	headersLen := int(uint16(payload[0])<<8 | uint16(payload[1]))
	if headersLen == 0 {
		return nil, fmt.Errorf("invalid AU-headers-length")
	}

	pos := 2 + headersLen/8
	if (headersLen % 8) != 0 {
		pos++
	}
	if pos > len(payload) {
		return nil, fmt.Errorf("payload is too short")
	}

	r := bits.NewReader(payload[2:pos])
	data := payload[pos:]

	if d.AuxiliaryDataSizeLength > 0 {
		var err error
		data, err = d.skipAuxiliaryData(data)
		if err != nil {
			return nil, err
		}
	}

	var frames []*Frame
	first := true

	for r.Pos() < headersLen {
		frame, size, err := d.readAUHeader(r, first, ts)
		if err != nil {
			return nil, err
		}
		first = false

		if size > len(data) {
			return nil, fmt.Errorf("payload is too short")
		}

		frame.Data = data[:size]
		data = data[size:]
		frames = append(frames, frame)
	}

	return frames, nil
}

func (d *Decoder) readAUHeader(r *bits.Reader, first bool, ts int64) (*Frame, int, error) {
	size, err := r.ReadBits(d.SizeLength)
	if err != nil {
		return nil, 0, err
	}

	// AU-index and AU-index-delta are not used, frames are in order
	if first {
		err = r.SkipBits(d.IndexLength)
	} else {
		err = r.SkipBits(d.IndexDeltaLength)
	}
	if err != nil {
		return nil, 0, err
	}

	frame := &Frame{DTS: ts, PTS: ts}

	if d.CTSDeltaLength > 0 {
		delta, err := d.readDelta(r, d.CTSDeltaLength)
		if err != nil {
			return nil, 0, err
		}
		frame.PTS += delta
	}

	if d.DTSDeltaLength > 0 {
		delta, err := d.readDelta(r, d.DTSDeltaLength)
		if err != nil {
			return nil, 0, err
		}
		frame.DTS += delta
	}

	err = r.SkipBits(d.RandomAccessIndication + d.StreamStateIndication)
	if err != nil {
		return nil, 0, err
	}

	return frame, int(size), nil
}

// readDelta reads a flag and, when set, a signed delta.
func (d *Decoder) readDelta(r *bits.Reader, n int) (int64, error) {
	present, err := r.ReadFlag()
	if err != nil {
		return 0, err
	}
	if !present {
		return 0, nil
	}

	v, err := r.ReadBits(n)
	if err != nil {
		return 0, err
	}

	// two's complement
	delta := int64(v)
	if delta >= (1 << (n - 1)) {
		delta -= 1 << n
	}

	return d.scaleDelta(delta), nil
}

func (d *Decoder) skipAuxiliaryData(data []byte) ([]byte, error) {
	r := bits.NewReader(data)

	auxLen, err := r.ReadBits(d.AuxiliaryDataSizeLength)
	if err != nil {
		return nil, err
	}

	n := d.AuxiliaryDataSizeLength + int(auxLen)
	pos := n / 8
	if (n % 8) != 0 {
		pos++
	}
	if pos > len(data) {
		return nil, fmt.Errorf("payload is too short")
	}

	return data[pos:], nil
}

// decodeWithoutHeaders handles payloads without an AU header section:
// a run of 0xFF bytes and a final byte precede a single frame.
func (d *Decoder) decodeWithoutHeaders(payload []byte, ts int64) ([]*Frame, error) {
	pos := 0
	for pos < len(payload) && payload[pos] == 0xFF {
		pos++
	}
	pos++

	if pos >= len(payload) {
		return nil, fmt.Errorf("payload is too short")
	}

	return []*Frame{{
		Data: payload[pos:],
		DTS:  ts,
		PTS:  ts,
	}}, nil
}
