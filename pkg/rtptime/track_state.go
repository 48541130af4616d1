package rtptime

// TrackState holds the timestamp state of a single payload type.
// It is created when a track is set up and dropped on reset.
type TrackState struct {
	unwrapper   Unwrapper
	initialized bool
	first       int64
}

// Decode returns the timestamp of a packet relative to the first packet
// of the track, in clock units.
func (s *TrackState) Decode(ts uint32) int64 {
	v := s.unwrapper.Unwrap(ts)

	if !s.initialized {
		s.initialized = true
		s.first = v
	}

	return v - s.first
}
