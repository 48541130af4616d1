// Package rtpaac contains a RTP/AAC decoder (RFC3640 and RFC3016).
package rtpaac

// Frame is an AAC access unit.
type Frame struct {
	Data []byte

	// timestamps, in 90khz units.
	DTS int64
	PTS int64
}
