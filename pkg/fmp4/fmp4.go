// Package fmp4 contains a fragmented MP4 (ISO/IEC 14496-12) writer.
package fmp4

import (
	"encoding/binary"
)

// TrackType is the type of a track.
type TrackType int

// track types.
const (
	TrackTypeVideo TrackType = iota
	TrackTypeAudio
)

// String implements fmt.Stringer.
func (t TrackType) String() string {
	if t == TrackTypeVideo {
		return "video"
	}
	return "audio"
}

// Track describes a track of the initialization segment.
type Track struct {
	ID        uint32
	Type      TrackType
	Timescale uint32

	// when zero, the duration is left undefined (0xFFFFFFFF).
	Duration uint32

	// video
	Width  int
	Height int
	SPS    [][]byte
	PPS    [][]byte

	// audio
	SampleRate   int
	ChannelCount int
	Config       []byte
}

// SampleFlags are the flags of a sample.
type SampleFlags struct {
	IsLeading           uint8
	DependsOn           uint8
	IsDependedOn        uint8
	HasRedundancy       uint8
	PaddingValue        uint8
	IsNonSync           bool
	DegradationPriority uint16
}

// Sample is a sample of a fragment.
type Sample struct {
	Duration uint32
	Size     uint32

	// composition time offset, in the track timescale.
	CTS   uint32
	Flags SampleFlags
}

func box(typ string, payloads ...[]byte) []byte {
	size := 8
	for _, p := range payloads {
		size += len(p)
	}

	buf := make([]byte, size)
	binary.BigEndian.PutUint32(buf, uint32(size))
	copy(buf[4:], typ)

	n := 8
	for _, p := range payloads {
		n += copy(buf[n:], p)
	}

	return buf
}

// fullBoxHeader returns version and flags.
func fullBoxHeader(version uint8, flags uint32) []byte {
	return []byte{version, byte(flags >> 16), byte(flags >> 8), byte(flags)}
}

func u16(v uint16) []byte {
	return binary.BigEndian.AppendUint16(nil, v)
}

func u32(v uint32) []byte {
	return binary.BigEndian.AppendUint32(nil, v)
}

func concat(bufs ...[]byte) []byte {
	var ret []byte
	for _, b := range bufs {
		ret = append(ret, b...)
	}
	return ret
}
