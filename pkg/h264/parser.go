package h264

import (
	"fmt"

	mch264 "github.com/bluenviron/mediacommon/v2/pkg/codecs/h264"

	"github.com/bluenviron/gortspws/pkg/bits"
)

const seiUserDataUnregistered = 5

// SEI is the header of a supplemental enhancement information message.
type SEI struct {
	PayloadType int
	PayloadSize int

	// set when PayloadType is user_data_unregistered.
	UUID []byte
}

func readSEIValue(buf []byte, pos *int) (int, error) {
	v := 0
	for {
		if *pos >= len(buf) {
			return 0, fmt.Errorf("SEI truncated")
		}
		b := buf[*pos]
		*pos++
		v += int(b)
		if b != 0xFF {
			return v, nil
		}
	}
}

func parseSEI(data []byte) (*SEI, error) {
	pos := 0

	pt, err := readSEIValue(data, &pos)
	if err != nil {
		return nil, err
	}

	size, err := readSEIValue(data, &pos)
	if err != nil {
		return nil, err
	}

	sei := &SEI{PayloadType: pt, PayloadSize: size}

	if pt == seiUserDataUnregistered && len(data)-pos >= 16 {
		sei.UUID = data[pos : pos+16]
	}

	return sei, nil
}

func readSliceType(data []byte) (int, error) {
	r := bits.NewReader(data)

	// first_mb_in_slice
	_, err := r.ReadGolombUnsigned()
	if err != nil {
		return 0, err
	}

	v, err := r.ReadGolombUnsigned()
	if err != nil {
		return 0, err
	}

	return int(v), nil
}

// Parser classifies NAL units before they are remuxed.
// It keeps the first SPS and PPS, and drops frames that precede the first keyframe.
type Parser struct {
	// called when a SEI is received.
	OnSEI func(*SEI)

	SPS     []byte
	PPS     []byte
	SPSInfo SPS

	firstFound bool
}

// ReadyToDecode checks whether both SPS and PPS are known.
func (p *Parser) ReadyToDecode() bool {
	return p.SPS != nil && p.PPS != nil
}

// Codec returns the codec string, or "avc1" when the SPS is not known.
func (p *Parser) Codec() string {
	if p.SPS == nil {
		return "avc1"
	}
	return Codec(p.SPS)
}

// SetParameterSets sets SPS and PPS from out-of-band parameters.
func (p *Parser) SetParameterSets(sps []byte, pps []byte) error {
	err := p.setSPS(sps)
	if err != nil {
		return err
	}

	p.setPPS(pps)
	return nil
}

func (p *Parser) setSPS(sps []byte) error {
	if p.SPS != nil || sps == nil {
		return nil
	}

	err := p.SPSInfo.Unmarshal(sps)
	if err != nil {
		return fmt.Errorf("invalid SPS: %w", err)
	}

	p.SPS = sps
	return nil
}

func (p *Parser) setPPS(pps []byte) {
	if p.PPS == nil && len(pps) != 0 {
		p.PPS = pps
	}
}

// Push classifies a NALU and returns whether it must be queued for remuxing.
func (p *Parser) Push(n *NALU) (bool, error) {
	switch n.Type {
	case mch264.NALUTypeNonIDR, mch264.NALUTypeIDR:
		st, err := readSliceType(n.Data)
		if err != nil {
			return false, fmt.Errorf("invalid slice header: %w", err)
		}
		n.SliceType = st

		if !p.firstFound && n.IsKeyframe() {
			p.firstFound = true
		}

		return p.firstFound, nil

	case mch264.NALUTypeSPS:
		return false, p.setSPS(n.Bytes())

	case mch264.NALUTypePPS:
		p.setPPS(n.Bytes())
		return false, nil

	case mch264.NALUTypeSEI:
		sei, err := parseSEI(n.Data)
		if err != nil {
			return false, err
		}

		if p.OnSEI != nil {
			p.OnSEI(sei)
		}
		return false, nil

	case mch264.NALUTypeEndOfSequence, mch264.NALUTypeEndOfStream:
		return false, nil
	}

	return n.NRI > 0, nil
}
