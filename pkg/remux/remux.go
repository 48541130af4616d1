// Package remux converts H264 NALUs and AAC frames into fragmented MP4.
package remux

import (
	"sort"
	"sync"

	"github.com/bluenviron/gortspws/pkg/fmp4"
)

// timescale of input timestamps.
const inputTimescale = 90000

// Remuxer buffers the access units of a track and turns them into fragments.
type Remuxer interface {
	// Track returns the track description used by the initialization segment.
	Track() *fmp4.Track

	// Codec returns the RFC6381 codec string.
	Codec() string

	// ReadyToDecode checks whether the codec configuration is known.
	ReadyToDecode() bool

	// Queued returns the number of queued samples.
	Queued() int

	// Init sets the zero point of the track.
	Init(initPTS int64, initDTS int64)

	// Payload drains queued samples into a fragment.
	// It returns nil when there's nothing to write.
	Payload() *Fragment

	// Flush advances the sequence number after a fragment has been written.
	Flush()

	// InsertDiscontinuity inserts a discontinuity marker in the queue.
	InsertDiscontinuity()
}

// Fragment is the content of a fragment.
type Fragment struct {
	SequenceNumber      uint32
	// wraps modulo 2^32 in track timescale units.
	BaseMediaDecodeTime uint32
	Samples             []*fmp4.Sample
	Data                []byte
}

// TrackIDAllocator allocates MP4 track IDs.
// IDs start from 1 and are never reused.
type TrackIDAllocator struct {
	mutex sync.Mutex
	last  uint32
}

// Next returns a new track ID.
func (a *TrackIDAllocator) Next() uint32 {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	a.last++
	return a.last
}

// queuedSample is a queued access unit. A nil entry is a discontinuity.
type queuedSample struct {
	data     []byte
	dts      int64
	pts      int64
	keyframe bool
}

type base struct {
	log func(format string, args ...interface{})

	timescale   int64
	samples     []*queuedSample
	seq         uint32
	initialized bool
	initPTS     int64
	initDTS     int64
	firstDTS    int64
	nextDTS     int64
	nextDTSSet  bool
}

func (b *base) initBase(timescale int64, log func(string, ...interface{})) {
	b.timescale = timescale
	b.seq = 1
	b.log = log
	if b.log == nil {
		b.log = func(string, ...interface{}) {}
	}
}

// scaled converts a 90khz timestamp into the track timescale.
func (b *base) scaled(ts int64) int64 {
	return ts * b.timescale / inputTimescale
}

// unscaled converts a timestamp in the track timescale into 90khz.
func (b *base) unscaled(ts int64) int64 {
	return ts * inputTimescale / b.timescale
}

func (b *base) push(s *queuedSample) {
	b.samples = append(b.samples, s)
}

// Queued implements Remuxer.
func (b *base) Queued() int {
	n := 0
	for _, s := range b.samples {
		if s != nil {
			n++
		}
	}
	return n
}

// Init implements Remuxer.
func (b *base) Init(initPTS int64, initDTS int64) {
	b.initPTS = initPTS
	b.initDTS = initDTS

	if len(b.samples) != 0 && b.samples[0] != nil {
		b.initPTS = min(b.initPTS, b.samples[0].dts)
		b.initDTS = min(b.initDTS, b.samples[0].dts)
	}

	b.log("initial pts=%d dts=%d", b.initPTS, b.initDTS)
	b.initialized = true
}

// Flush implements Remuxer.
func (b *base) Flush() {
	b.seq++
}

// InsertDiscontinuity implements Remuxer.
func (b *base) InsertDiscontinuity() {
	b.samples = append(b.samples, nil)
}

// sortSamples sorts the samples that precede the first discontinuity by DTS.
func (b *base) sortSamples() {
	n := len(b.samples)
	for i, s := range b.samples {
		if s == nil {
			n = i
			break
		}
	}

	sort.SliceStable(b.samples[:n], func(i, j int) bool {
		return b.samples[i].dts < b.samples[j].dts
	})
}

// shift pops the first sample. ok is false when the queue is empty.
func (b *base) shift() (*queuedSample, bool) {
	if len(b.samples) == 0 {
		return nil, false
	}

	s := b.samples[0]
	b.samples[0] = nil
	b.samples = b.samples[1:]
	return s, true
}

func msFrom90k(v int64) int64 {
	if v < 0 {
		return -((-v + 45) / 90)
	}
	return (v + 45) / 90
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
