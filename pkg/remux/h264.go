package remux

import (
	"math"
	"sort"

	"github.com/bluenviron/gortspws/pkg/fmp4"
	"github.com/bluenviron/gortspws/pkg/h264"
)

const (
	maxLastDurations = 100

	// gaps between fragments smaller than this are healed, in ms.
	healWindow = 600
)

// H264Remuxer is a H264 Remuxer.
type H264Remuxer struct {
	// track ID.
	TrackID uint32

	// duration of the stream in seconds, or zero when unknown.
	Duration float64

	// parameters from the SDP, optional.
	SPS []byte
	PPS []byte

	// called when a SEI is received.
	OnSEI func(*h264.SEI)

	// called to log debug messages.
	OnLog func(format string, args ...interface{})

	base
	parser             h264.Parser
	gop                []*h264.NALU
	lastGOPDTS         int64
	lastDurations      []int64
	lastSampleDuration int64
}

// Initialize initializes the remuxer.
func (r *H264Remuxer) Initialize() error {
	r.initBase(inputTimescale, r.OnLog)
	r.lastGOPDTS = math.MinInt64
	r.parser.OnSEI = r.OnSEI

	if r.SPS != nil || r.PPS != nil {
		err := r.parser.SetParameterSets(r.SPS, r.PPS)
		if err != nil {
			return err
		}
	}

	return nil
}

// ReadyToDecode implements Remuxer.
func (r *H264Remuxer) ReadyToDecode() bool {
	return r.parser.ReadyToDecode()
}

// Codec implements Remuxer.
func (r *H264Remuxer) Codec() string {
	return r.parser.Codec()
}

// Track implements Remuxer.
func (r *H264Remuxer) Track() *fmp4.Track {
	duration := r.Duration
	if duration <= 0 {
		duration = 1
	}

	t := &fmp4.Track{
		ID:        r.TrackID,
		Type:      fmp4.TrackTypeVideo,
		Timescale: uint32(r.timescale),
		Duration:  uint32(duration * float64(r.timescale)),
	}

	if r.parser.ReadyToDecode() {
		t.Width = r.parser.SPSInfo.Width()
		t.Height = r.parser.SPSInfo.Height()
		t.SPS = [][]byte{r.parser.SPS}
		t.PPS = [][]byte{r.parser.PPS}
	}

	return t
}

// Remux queues a NALU.
// NALUs that share the same DTS are grouped into a single sample.
func (r *H264Remuxer) Remux(n *h264.NALU) error {
	if r.lastGOPDTS < n.DTS {
		r.flushGOP()
		r.lastGOPDTS = n.DTS
	}

	ok, err := r.parser.Push(n)
	if err != nil {
		return err
	}

	if ok {
		r.gop = append(r.gop, n)
	}

	return nil
}

func (r *H264Remuxer) flushGOP() {
	if len(r.gop) == 0 {
		return
	}

	sort.SliceStable(r.gop, func(i, j int) bool {
		return r.gop[i].DTS < r.gop[j].DTS
	})

	// slices that belong to the same frame become a single sample
	var cur *queuedSample
	for _, n := range r.gop {
		if cur == nil || cur.dts != n.DTS {
			cur = &queuedSample{
				dts: n.DTS,
				pts: n.PTS,
			}
			r.push(cur)
		}

		cur.data = append(cur.data, n.Marshal()...)
		if n.IsKeyframe() {
			cur.keyframe = true
		}
	}

	r.gop = r.gop[:0]
}

// Payload implements Remuxer.
func (r *H264Remuxer) Payload() *Fragment {
	if !r.ReadyToDecode() || !r.initialized || r.Queued() == 0 {
		return nil
	}

	r.sortSamples()

	var samples []*fmp4.Sample
	var data []byte
	var prev *fmp4.Sample
	var lastDTS, pts, dts int64
	lastDTSSet := false
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
		dts = min(pts, dts)

		if lastDTSSet {
			duration := r.scaled(dts - lastDTS)
			if duration < 0 {
				r.log("invalid AVC sample duration at PTS/DTS %d/%d, last DTS %d", pts, dts, lastDTS)
				continue
			}

			r.lastDurations = append(r.lastDurations, duration)
			if len(r.lastDurations) > maxLastDurations {
				r.lastDurations = r.lastDurations[1:]
			}

			prev.Duration = uint32(duration)
		} else {
			if r.nextDTSSet {
				delta := dts - r.nextDTS

				if abs64(msFrom90k(delta)) < healWindow {
					if delta != 0 {
						dts = r.nextDTS
						pts = max(pts-delta, dts)
					}
				} else if delta < 0 {
					r.log("skip frame from the past at DTS %d with expected DTS %d", dts, r.nextDTS)
					continue
				}
			}

			r.firstDTS = max(0, dts)
		}

		smp := &fmp4.Sample{
			Size: uint32(len(s.data)),
			CTS:  uint32(r.scaled(pts - dts)),
		}

		if s.keyframe {
			smp.Flags.DependsOn = 2
			smp.Flags.IsNonSync = false
		} else {
			smp.Flags.DependsOn = 1
			smp.Flags.IsNonSync = true
		}

		data = append(data, s.data...)
		samples = append(samples, smp)
		prev = smp
		lastDTS = dts
		lastDTSSet = true
	}

	if len(samples) == 0 {
		if discontinuity {
			r.nextDTSSet = false
		}
		return nil
	}

	if len(samples) >= 2 {
		r.lastSampleDuration = r.averageDuration()
	}
	prev.Duration = uint32(r.lastSampleDuration)

	// the first sample must be a random access point
	samples[0].Flags.DependsOn = 2
	samples[0].Flags.IsNonSync = false

	r.nextDTS = lastDTS + r.unscaled(r.lastSampleDuration)
	r.nextDTSSet = !discontinuity

	return &Fragment{
		SequenceNumber:      r.seq,
		BaseMediaDecodeTime: uint32(r.scaled(r.firstDTS)),
		Samples:             samples,
		Data:                data,
	}
}

func (r *H264Remuxer) averageDuration() int64 {
	if len(r.lastDurations) == 0 {
		return 0
	}

	var sum int64
	for _, d := range r.lastDurations {
		sum += d
	}
	return sum / int64(len(r.lastDurations))
}
