package gortspws

import (
	"errors"
	"fmt"
	"strings"

	mch264 "github.com/bluenviron/mediacommon/v2/pkg/codecs/h264"
	"github.com/pion/rtp"

	"github.com/bluenviron/gortspws/pkg/bits"
	"github.com/bluenviron/gortspws/pkg/fmp4"
	"github.com/bluenviron/gortspws/pkg/h264"
	"github.com/bluenviron/gortspws/pkg/mpeg4audio"
	"github.com/bluenviron/gortspws/pkg/remux"
	"github.com/bluenviron/gortspws/pkg/rtpaac"
	"github.com/bluenviron/gortspws/pkg/rtph264"
	"github.com/bluenviron/gortspws/pkg/rtptime"
	"github.com/bluenviron/gortspws/pkg/sdp"
)

// Track contains the metadata of a negotiated track.
type Track struct {
	Type        fmp4.TrackType
	PayloadType uint8
	ClockRate   int
	Codec       string

	// video
	Width  int
	Height int

	// audio
	SampleRate   int
	ChannelCount int

	// duration in seconds, from a=range. It is zero for live streams.
	Duration float64
	Seekable bool

	// URL used in the SETUP request.
	URL string
}

// clientTrack is the state of a track, built at SETUP and dropped on reset.
type clientTrack struct {
	c       *Client
	media   *sdp.Media
	track   *Track
	session *clientSession
	channel int

	timeState   rtptime.TrackState
	h264Decoder *rtph264.Decoder
	aacDecoder  *rtpaac.Decoder
	remuxer     remux.Remuxer
}

func newClientTrack(c *Client, md *sdp.Media) (*clientTrack, error) {
	ct := &clientTrack{
		c:     c,
		media: md,
	}

	var name string
	for _, f := range md.Formats {
		if rm, ok := md.RTPMap[f]; ok && sdp.PayloadTypeFromName(rm.Name) != sdp.PayloadTypeUnknown {
			ct.track = &Track{
				PayloadType: uint8(f),
				ClockRate:   rm.ClockRate,
			}
			name = rm.Name
			break
		}
	}

	if ct.track == nil {
		return nil, fmt.Errorf("unsupported media (%v)", md.Formats)
	}

	if md.Range != nil && md.Range.HasEnd {
		start := md.Range.Start
		if start < 0 {
			start = 0
		}
		ct.track.Duration = md.Range.End - start
		ct.track.Seekable = true
	}

	var err error
	if sdp.PayloadTypeFromName(name) == sdp.PayloadTypeH264 {
		err = ct.initializeH264()
	} else {
		err = ct.initializeAAC(name)
	}
	if err != nil {
		return nil, err
	}

	return ct, nil
}

func (ct *clientTrack) initializeH264() error {
	ct.track.Type = fmp4.TrackTypeVideo
	ct.h264Decoder = &rtph264.Decoder{}

	var sps, pps []byte

	if v, ok := ct.media.FMTP["sprop-parameter-sets"]; ok {
		for _, s := range strings.Split(v, ",") {
			byts, err := bits.DecodeBase64(s)
			if err != nil {
				return fmt.Errorf("invalid sprop-parameter-sets (%v)", v)
			}

			if len(byts) == 0 {
				continue
			}

			switch mch264.NALUType(byts[0] & 0x1F) {
			case mch264.NALUTypeSPS:
				sps = byts

			case mch264.NALUTypePPS:
				pps = byts
			}
		}
	}

	ct.track.Codec = "avc1"
	if sps != nil {
		var info h264.SPS
		err := info.Unmarshal(sps)
		if err != nil {
			return fmt.Errorf("invalid SPS: %w", err)
		}

		ct.track.Codec = h264.Codec(sps)
		ct.track.Width = info.Width()
		ct.track.Height = info.Height()
	}

	if ct.c.Sink == nil {
		return nil
	}

	r := &remux.H264Remuxer{
		TrackID:  ct.c.trackIDs.Next(),
		Duration: ct.track.Duration,
		SPS:      sps,
		PPS:      pps,
		OnSEI: func(sei *h264.SEI) {
			ct.c.OnLog(LogLevelDebug, "SEI type %d, %d bytes", sei.PayloadType, sei.PayloadSize)
		},
		OnLog: func(format string, args ...interface{}) {
			ct.c.OnLog(LogLevelDebug, "[video] "+format, args...)
		},
	}
	err := r.Initialize()
	if err != nil {
		return err
	}

	ct.remuxer = r
	return nil
}

func (ct *clientTrack) initializeAAC(name string) error {
	ct.track.Type = fmp4.TrackTypeAudio

	v, ok := ct.media.FMTP["config"]
	if !ok {
		return fmt.Errorf("config is missing")
	}

	byts, err := bits.DecodeHex(v)
	if err != nil {
		return fmt.Errorf("invalid config (%v)", v)
	}

	var conf *mpeg4audio.AudioSpecificConfig

	if strings.EqualFold(name, "MP4A-LATM") {
		var smc mpeg4audio.StreamMuxConfig
		err = smc.Unmarshal(byts)
		if err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		conf = &smc.AudioSpecificConfig

		// LATM payloads carry no AU headers
		ct.aacDecoder = &rtpaac.Decoder{SampleRate: conf.SampleRate}
	} else {
		conf = &mpeg4audio.AudioSpecificConfig{}
		err = conf.Unmarshal(byts)
		if err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		ct.aacDecoder = &rtpaac.Decoder{SampleRate: conf.SampleRate}
		err = ct.aacDecoder.Init(ct.media.FMTP)
		if err != nil {
			return err
		}
	}

	ct.track.Codec = conf.Codec()
	ct.track.SampleRate = conf.SampleRate
	ct.track.ChannelCount = conf.ChannelCount

	if ct.c.Sink == nil {
		return nil
	}

	r := &remux.AACRemuxer{
		TrackID:  ct.c.trackIDs.Next(),
		Duration: ct.track.Duration,
		Config:   conf,
		OnLog: func(format string, args ...interface{}) {
			ct.c.OnLog(LogLevelDebug, "[audio] "+format, args...)
		},
	}
	err = r.Initialize()
	if err != nil {
		return err
	}

	ct.remuxer = r
	return nil
}

func (ct *clientTrack) readRTP(pkt *rtp.Packet) {
	ts := ct.timeState.Decode(pkt.Timestamp)

	if ct.track.Type == fmp4.TrackTypeVideo {
		nalus, err := ct.h264Decoder.Decode(pkt.Payload, ts, ts)
		if err != nil {
			if !errors.Is(err, rtph264.ErrMorePacketsNeeded) {
				ct.c.OnDecodeError(err)
			}
			return
		}

		r, ok := ct.remuxer.(*remux.H264Remuxer)
		if !ok {
			return
		}

		for _, n := range nalus {
			err = r.Remux(n)
			if err != nil {
				ct.c.OnDecodeError(err)
			}
		}
		return
	}

	frames, err := ct.aacDecoder.Decode(pkt.Payload, ts)
	if err != nil {
		ct.c.OnDecodeError(err)
		return
	}

	r, ok := ct.remuxer.(*remux.AACRemuxer)
	if !ok {
		return
	}

	for _, f := range frames {
		r.Remux(f)
	}
}
