package rtptime

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUnwrapperMonotonic(t *testing.T) {
	for _, ca := range []struct {
		name  string
		start uint32
		step  uint32
	}{
		{"no wrap", 1000, 3000},
		{"wrap video", 0xffffffff - 10*3000, 3000},
		{"wrap audio", 0xffffffff - 7*1024, 1024},
		{"wrap at zero", 0xfffffc00, 1024},
	} {
		t.Run(ca.name, func(t *testing.T) {
			var u Unwrapper
			ts := ca.start
			prev := u.Unwrap(ts)

			for i := 0; i < 100; i++ {
				ts += ca.step
				cur := u.Unwrap(ts)
				require.Greater(t, cur, prev-wrapThreshold)
				require.GreaterOrEqual(t, cur, prev)
				prev = cur
			}
		})
	}
}

func TestUnwrapperRollover(t *testing.T) {
	var u Unwrapper
	require.Equal(t, int64(0xfffffff0), u.Unwrap(0xfffffff0))
	// raw value wraps to 0x10; the compensation is 2^32-1
	require.Equal(t, int64(0x10+0xffffffff), u.Unwrap(0x10))
	require.Equal(t, int64(0x20+0xffffffff), u.Unwrap(0x20))

	u.Reset()
	require.Equal(t, int64(0x20), u.Unwrap(0x20))
}

func TestTrackState(t *testing.T) {
	var s TrackState
	require.Equal(t, int64(0), s.Decode(0xfffff000))
	require.Equal(t, int64(0x800), s.Decode(0xfffff800))
	require.Equal(t, int64(0x1000-1), s.Decode(0x00000000))
}
