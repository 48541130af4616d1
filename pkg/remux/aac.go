package remux

import (
	"fmt"

	"github.com/bluenviron/gortspws/pkg/fmp4"
	"github.com/bluenviron/gortspws/pkg/mpeg4audio"
	"github.com/bluenviron/gortspws/pkg/rtpaac"
)

const (
	aacSamplesPerFrame = 1024

	// overlapping frames older than this are dropped, in ms.
	aacMaxOverlap = 12
)

// AACRemuxer is an AAC Remuxer.
type AACRemuxer struct {
	// track ID.
	TrackID uint32

	// duration of the stream in seconds, or zero when unknown.
	Duration float64

	// audio configuration.
	Config *mpeg4audio.AudioSpecificConfig

	// called to log debug messages.
	OnLog func(format string, args ...interface{})

	base
	expectedSampleDuration int64
}

// Initialize initializes the remuxer.
func (r *AACRemuxer) Initialize() error {
	if r.Config == nil {
		return fmt.Errorf("audio configuration is missing")
	}

	if r.Config.SampleRate <= 0 {
		return fmt.Errorf("unsupported sample rate (index %d)", r.Config.SampleRateIndex)
	}

	r.initBase(int64(r.Config.SampleRate), r.OnLog)
	r.expectedSampleDuration = r.unscaled(aacSamplesPerFrame)

	return nil
}

// ReadyToDecode implements Remuxer.
func (r *AACRemuxer) ReadyToDecode() bool {
	return true
}

// Codec implements Remuxer.
func (r *AACRemuxer) Codec() string {
	return r.Config.Codec()
}

// Track implements Remuxer.
func (r *AACRemuxer) Track() *fmp4.Track {
	duration := r.Duration
	if duration <= 0 {
		duration = 1
	}

	return &fmp4.Track{
		ID:           r.TrackID,
		Type:         fmp4.TrackTypeAudio,
		Timescale:    uint32(r.timescale),
		Duration:     uint32(duration * float64(r.timescale)),
		SampleRate:   r.Config.SampleRate,
		ChannelCount: r.Config.ChannelCount,
		Config:       r.Config.Config,
	}
}

// Remux queues a frame.
func (r *AACRemuxer) Remux(f *rtpaac.Frame) {
	r.push(&queuedSample{
		data: f.Data,
		dts:  f.DTS,
		pts:  f.PTS,
	})
}

// Payload implements Remuxer.
func (r *AACRemuxer) Payload() *Fragment {
	if !r.initialized || r.Queued() == 0 {
		return nil
	}

	r.sortSamples()

	var samples []*fmp4.Sample
	var data []byte
	var pts, dts int64
	first := true
	discontinuity := false

	for {
		s, ok := r.shift()
		if !ok {
			break
		}
		if s == nil {
			discontinuity = true
			break
		}

		pts = s.pts - r.initDTS
		dts = s.dts - r.initDTS

		if first {
			if r.nextDTSSet {
				delta := msFrom90k(pts - r.nextDTS)

				if abs64(delta) < healWindow && delta != 0 {
					if delta > 0 {
						r.log("%d ms hole between AAC samples detected, filling it", delta)
					} else if delta < -aacMaxOverlap {
						r.log("%d ms overlapping between AAC samples detected, dropping frame", -delta)
						continue
					}

					pts = r.nextDTS
					dts = r.nextDTS
				}
			}

			r.firstDTS = max(0, dts)
			first = false
		}

		samples = append(samples, &fmp4.Sample{
			Size:     uint32(len(s.data)),
			Duration: aacSamplesPerFrame,
			Flags: fmp4.SampleFlags{
				DependsOn: 1,
			},
		})
		data = append(data, s.data...)
	}

	if len(samples) == 0 {
		if discontinuity {
			r.nextDTSSet = false
		}
		return nil
	}

	r.nextDTS = pts + r.expectedSampleDuration
	r.nextDTSSet = !discontinuity

	return &Fragment{
		SequenceNumber:      r.seq,
		BaseMediaDecodeTime: uint32(r.scaled(r.firstDTS)),
		Samples:             samples,
		Data:                data,
	}
}
