package remux

import (
	"fmt"
	"math"

	"github.com/bluenviron/gortspws/pkg/fmp4"
)

// Sink receives the output of a Muxer.
type Sink interface {
	// InitSegment is called once per track, before any fragment.
	InitSegment(typ fmp4.TrackType, codec string, data []byte) error

	// Fragment is called when a fragment of a track is ready.
	Fragment(typ fmp4.TrackType, moof []byte, mdat []byte) error
}

// SinkError is returned when the sink rejects a segment.
type SinkError struct {
	Type fmp4.TrackType
	Err  error
}

// Error implements the error interface.
func (e SinkError) Error() string {
	return fmt.Sprintf("%v sink error: %v", e.Type, e.Err)
}

// Unwrap returns the sink error.
func (e SinkError) Unwrap() error {
	return e.Err
}

// Muxer drives a set of Remuxers and writes their output into a Sink.
// Tracks are initialized together, once all of them are ready.
type Muxer struct {
	Sink Sink

	remuxers    map[fmp4.TrackType]Remuxer
	initSent    map[fmp4.TrackType]bool
	initialized bool
}

// Initialize initializes the muxer.
func (m *Muxer) Initialize() {
	m.remuxers = make(map[fmp4.TrackType]Remuxer)
	m.initSent = make(map[fmp4.TrackType]bool)
}

// AddTrack adds a track.
func (m *Muxer) AddTrack(typ fmp4.TrackType, r Remuxer) {
	m.remuxers[typ] = r
}

// RemoveTrack removes a track.
func (m *Muxer) RemoveTrack(typ fmp4.TrackType) {
	delete(m.remuxers, typ)
	delete(m.initSent, typ)
}

// Track returns the Remuxer of a track.
func (m *Muxer) Track(typ fmp4.TrackType) (Remuxer, bool) {
	r, ok := m.remuxers[typ]
	return r, ok
}

// Initialized checks whether initialization segments have been written.
func (m *Muxer) Initialized() bool {
	return m.initialized
}

// Reset removes all tracks.
func (m *Muxer) Reset() {
	m.remuxers = make(map[fmp4.TrackType]Remuxer)
	m.initSent = make(map[fmp4.TrackType]bool)
	m.initialized = false
}

// InsertDiscontinuity inserts a discontinuity marker into every track.
func (m *Muxer) InsertDiscontinuity() {
	for _, r := range m.remuxers {
		r.InsertDiscontinuity()
	}
}

func (m *Muxer) types() []fmp4.TrackType {
	var ret []fmp4.TrackType
	for _, typ := range []fmp4.TrackType{fmp4.TrackTypeVideo, fmp4.TrackTypeAudio} {
		if _, ok := m.remuxers[typ]; ok {
			ret = append(ret, typ)
		}
	}
	return ret
}

// Flush writes initialization segments or fragments into the sink.
// Errors returned by the sink are wrapped into SinkError.
func (m *Muxer) Flush() error {
	if !m.initialized {
		return m.initialize()
	}

	for _, typ := range m.types() {
		r := m.remuxers[typ]

		f := r.Payload()
		if f == nil || len(f.Data) == 0 {
			continue
		}

		moof := fmp4.Moof(f.SequenceNumber, f.BaseMediaDecodeTime, r.Track().ID, f.Samples)
		mdat := fmp4.Mdat(f.Data)

		err := m.Sink.Fragment(typ, moof, mdat)
		if err != nil {
			return SinkError{Type: typ, Err: err}
		}

		r.Flush()
	}

	return nil
}

func (m *Muxer) initialize() error {
	types := m.types()
	if len(types) == 0 {
		return nil
	}

	for _, typ := range types {
		r := m.remuxers[typ]
		if !r.ReadyToDecode() || r.Queued() == 0 {
			return nil
		}
	}

	for _, typ := range types {
		if m.initSent[typ] {
			continue
		}

		r := m.remuxers[typ]
		r.Init(math.MaxInt64, math.MaxInt64)
		t := r.Track()

		err := m.Sink.InitSegment(typ, r.Codec(), fmp4.InitSegment([]*fmp4.Track{t}, t.Duration, t.Timescale))
		if err != nil {
			return SinkError{Type: typ, Err: err}
		}

		m.initSent[typ] = true
	}

	m.initialized = true
	return nil
}
