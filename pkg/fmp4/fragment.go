package fmp4

const (
	trunFlags = 0x000F01 // data offset, duration, size, flags, composition offset

	mfhdSize = 16
	tfhdSize = 16
	tfdtSize = 16
)

// Moof returns a movie fragment box that describes the samples of a track.
// The data offset of the track run points to the payload of the mdat box
// that immediately follows.
func Moof(sequenceNumber uint32, baseMediaDecodeTime uint32, trackID uint32, samples []*Sample) []byte {
	return box("moof",
		box("mfhd",
			fullBoxHeader(0, 0),
			u32(sequenceNumber)),
		traf(baseMediaDecodeTime, trackID, samples))
}

func traf(baseMediaDecodeTime uint32, trackID uint32, samples []*Sample) []byte {
	sdtpBox := sdtp(samples)

	// moof header + mfhd + traf header + tfhd + tfdt + sdtp + mdat header
	offset := 8 + mfhdSize + 8 + tfhdSize + tfdtSize + len(sdtpBox) + 8

	return box("traf",
		box("tfhd",
			fullBoxHeader(0, 0),
			u32(trackID)),
		// version 0 carries a 32-bit decode time: at 90kHz it wraps
		// after about 13 hours and players see a backwards jump.
		box("tfdt",
			fullBoxHeader(0, 0),
			u32(baseMediaDecodeTime)),
		trun(samples, offset),
		sdtpBox)
}

func trun(samples []*Sample, offset int) []byte {
	size := 12 + 16*len(samples)
	offset += 8 + size

	buf := make([]byte, 0, size)
	buf = append(buf, fullBoxHeader(0, trunFlags)...)
	buf = append(buf, u32(uint32(len(samples)))...)
	buf = append(buf, u32(uint32(offset))...)

	for _, s := range samples {
		buf = append(buf, u32(s.Duration)...)
		buf = append(buf, u32(s.Size)...)
		buf = append(buf, sampleFlags(s.Flags)...)
		buf = append(buf, u32(s.CTS)...)
	}

	return box("trun", buf)
}

func sampleFlags(f SampleFlags) []byte {
	var nonSync byte
	if f.IsNonSync {
		nonSync = 1
	}

	return []byte{
		(f.IsLeading << 2) | f.DependsOn,
		(f.IsDependedOn << 6) | (f.HasRedundancy << 4) | (f.PaddingValue << 1) | nonSync,
		byte(f.DegradationPriority >> 8),
		byte(f.DegradationPriority),
	}
}

func sdtp(samples []*Sample) []byte {
	buf := make([]byte, 4+len(samples))
	for i, s := range samples {
		buf[4+i] = (s.Flags.DependsOn << 4) | (s.Flags.IsDependedOn << 2) | s.Flags.HasRedundancy
	}
	return box("sdtp", buf)
}

// Mdat returns a media data box.
func Mdat(data []byte) []byte {
	return box("mdat", data)
}
