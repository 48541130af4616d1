// Package rtptime contains RTP timestamp utilities.
package rtptime

// wrap threshold: a jump larger than half of the 32-bit range is a rollover.
const wrapThreshold = 0x7fffffff

// the rollover compensation, one less than 2^32.
const wrapOffset = 0xffffffff

// Unwrapper extends 32-bit RTP timestamps of a single payload type
// into a monotonic 64-bit space.
// Packets are supposed to be in order; a reordering across a rollover
// is not detected.
type Unwrapper struct {
	initialized bool
	last        int64
	overflow    int64
}

// Unwrap unwraps a timestamp.
func (u *Unwrapper) Unwrap(ts uint32) int64 {
	v := int64(ts) + u.overflow

	if u.initialized {
		diff := v - u.last
		if diff < 0 {
			diff = -diff
		}

		if diff > wrapThreshold {
			u.overflow += wrapOffset
			v += wrapOffset
		}
	}

	u.initialized = true
	u.last = v
	return v
}

// Reset resets the unwrapper.
func (u *Unwrapper) Reset() {
	*u = Unwrapper{}
}
