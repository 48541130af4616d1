package h264

import (
	"fmt"
	"math"

	mch264 "github.com/bluenviron/mediacommon/v2/pkg/codecs/h264"
)

// sample aspect ratios, indexed by aspect_ratio_idc - 1.
var sarTable = [16][2]uint16{
	{1, 1},
	{12, 11},
	{10, 11},
	{16, 11},
	{40, 33},
	{24, 11},
	{20, 11},
	{32, 11},
	{80, 33},
	{18, 11},
	{15, 11},
	{64, 33},
	{160, 99},
	{4, 3},
	{3, 2},
	{2, 1},
}

const aspectRatioExtendedSAR = 255

// SPS is a H264 sequence parameter set.
// Width follows the display size: it is scaled by the sample aspect ratio.
type SPS struct {
	mch264.SPS
}

// SAR returns the sample aspect ratio, or 0:0 when it is not signaled.
func (s SPS) SAR() (uint16, uint16) {
	if s.VUI == nil || !s.VUI.AspectRatioInfoPresentFlag {
		return 0, 0
	}

	idc := s.VUI.AspectRatioIdc

	switch {
	case idc == aspectRatioExtendedSAR:
		return s.VUI.SarWidth, s.VUI.SarHeight

	case idc >= 1 && int(idc) <= len(sarTable):
		return sarTable[idc-1][0], sarTable[idc-1][1]
	}

	return 0, 0
}

// SARScale returns the horizontal scale factor of the sample aspect ratio.
func (s SPS) SARScale() float64 {
	w, h := s.SAR()
	if w == 0 || h == 0 {
		return 1
	}
	return float64(w) / float64(h)
}

// Width returns the display width, scaled by the sample aspect ratio.
func (s SPS) Width() int {
	return int(math.Ceil(float64(s.SPS.Width()) * s.SARScale()))
}

// Codec returns the codec string of a SPS (avc1.PPCCLL).
func Codec(sps []byte) string {
	if len(sps) < 4 {
		return "avc1"
	}
	return fmt.Sprintf("avc1.%02x%02x%02x", sps[1], sps[2], sps[3])
}
