package fmp4

var unityMatrix = []byte{
	0x00, 0x01, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00,
	0x00, 0x01, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00,
	0x40, 0x00, 0x00, 0x00,
}

var videoHandler = []byte{
	0x00, 0x00, 0x00, 0x00, // version and flags
	0x00, 0x00, 0x00, 0x00, // pre_defined
	'v', 'i', 'd', 'e', // handler_type
	0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00,
	'V', 'i', 'd', 'e', 'o', 'H', 'a', 'n', 'd', 'l', 'e', 'r', 0x00,
}

var audioHandler = []byte{
	0x00, 0x00, 0x00, 0x00, // version and flags
	0x00, 0x00, 0x00, 0x00, // pre_defined
	's', 'o', 'u', 'n', // handler_type
	0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00,
	'S', 'o', 'u', 'n', 'd', 'H', 'a', 'n', 'd', 'l', 'e', 'r', 0x00,
}

// ftyp returns the file type box.
func ftyp() []byte {
	return box("ftyp",
		[]byte("isom"),
		u32(1), // minor_version
		[]byte("isom"),
		[]byte("avc1"))
}

// InitSegment returns an initialization segment (ftyp + moov) that contains the given tracks.
func InitSegment(tracks []*Track, duration uint32, timescale uint32) []byte {
	return concat(ftyp(), moov(tracks, duration, timescale))
}

func moov(tracks []*Track, duration uint32, timescale uint32) []byte {
	boxes := [][]byte{mvhd(timescale, duration)}
	for _, t := range tracks {
		boxes = append(boxes, trak(t))
	}
	boxes = append(boxes, mvex(tracks))
	return box("moov", boxes...)
}

func mvhd(timescale uint32, duration uint32) []byte {
	return box("mvhd",
		fullBoxHeader(0, 0),
		u32(1), // creation_time
		u32(2), // modification_time
		u32(timescale),
		u32(duration),
		u32(0x00010000), // rate
		u16(0x0100),     // volume
		make([]byte, 2+8),
		unityMatrix,
		make([]byte, 24), // pre_defined
		u32(0xFFFFFFFF))  // next_track_ID
}

func trackDuration(t *Track) uint32 {
	if t.Duration == 0 {
		return 0xFFFFFFFF
	}
	return t.Duration
}

func trak(t *Track) []byte {
	return box("trak", tkhd(t), mdia(t))
}

func tkhd(t *Track) []byte {
	var volume uint16
	if t.Type == TrackTypeAudio {
		volume = 0x0100
	}

	return box("tkhd",
		fullBoxHeader(0, 7), // enabled, in movie, in preview
		u32(0),              // creation_time
		u32(0),              // modification_time
		u32(t.ID),
		u32(0), // reserved
		u32(trackDuration(t)),
		make([]byte, 8),
		u16(0), // layer
		u16(0), // alternate_group
		u16(volume),
		u16(0),
		unityMatrix,
		u32(uint32(t.Width)<<16),
		u32(uint32(t.Height)<<16))
}

func mdia(t *Track) []byte {
	return box("mdia", mdhd(t.Timescale, trackDuration(t)), hdlr(t.Type), minf(t))
}

func mdhd(timescale uint32, duration uint32) []byte {
	return box("mdhd",
		fullBoxHeader(0, 0),
		u32(2), // creation_time
		u32(3), // modification_time
		u32(timescale),
		u32(duration),
		u16(0x55C4), // language: und
		u16(0))
}

func hdlr(typ TrackType) []byte {
	if typ == TrackTypeVideo {
		return box("hdlr", videoHandler)
	}
	return box("hdlr", audioHandler)
}

func minf(t *Track) []byte {
	var header []byte
	if t.Type == TrackTypeVideo {
		header = box("vmhd",
			fullBoxHeader(0, 1),
			make([]byte, 8)) // graphicsmode, opcolor
	} else {
		header = box("smhd",
			fullBoxHeader(0, 0),
			make([]byte, 4)) // balance, reserved
	}

	return box("minf", header, dinf(), stbl(t))
}

func dinf() []byte {
	return box("dinf", box("dref",
		fullBoxHeader(0, 0),
		u32(1), // entry_count
		box("url ", fullBoxHeader(0, 1))))
}

func stbl(t *Track) []byte {
	empty := concat(fullBoxHeader(0, 0), u32(0))

	return box("stbl",
		stsd(t),
		box("stts", empty),
		box("stsc", empty),
		box("stsz", fullBoxHeader(0, 0), u32(0), u32(0)),
		box("stco", empty))
}

func stsd(t *Track) []byte {
	var entry []byte
	if t.Type == TrackTypeVideo {
		entry = avc1(t)
	} else {
		entry = mp4a(t)
	}

	return box("stsd",
		fullBoxHeader(0, 0),
		u32(1), // entry_count
		entry)
}

func avcC(t *Track) []byte {
	var profile []byte
	if len(t.SPS) != 0 && len(t.SPS[0]) >= 4 {
		profile = t.SPS[0][1:4]
	} else {
		profile = make([]byte, 3)
	}

	buf := []byte{
		0x01, // configurationVersion
		profile[0],
		profile[1],
		profile[2],
		0xFC | 3, // lengthSizeMinusOne
		0xE0 | byte(len(t.SPS)),
	}
	for _, sps := range t.SPS {
		buf = append(buf, u16(uint16(len(sps)))...)
		buf = append(buf, sps...)
	}

	buf = append(buf, byte(len(t.PPS)))
	for _, pps := range t.PPS {
		buf = append(buf, u16(uint16(len(pps)))...)
		buf = append(buf, pps...)
	}

	return box("avcC", buf)
}

func avc1(t *Track) []byte {
	return box("avc1",
		make([]byte, 6), // reserved
		u16(1),          // data_reference_index
		u16(0),          // pre_defined
		u16(0),          // reserved
		make([]byte, 12), // pre_defined
		u16(uint16(t.Width)),
		u16(uint16(t.Height)),
		u32(0x00480000), // horizresolution
		u32(0x00480000), // vertresolution
		u32(0),          // reserved
		u16(1),          // frame_count
		make([]byte, 32), // compressorname
		u16(0x0018),      // depth
		u16(0xFFFF),      // pre_defined
		avcC(t),
		box("btrt",
			u32(0x001C9C80), // bufferSizeDB
			u32(0x002DC6C0), // maxBitrate
			u32(0x002DC6C0))) // avgBitrate
}

func esds(t *Track) []byte {
	n := byte(len(t.Config))

	return box("esds",
		fullBoxHeader(0, 0),
		[]byte{
			0x03, // ES_DescrTag
			0x17 + n,
			0x00, 0x01, // ES_ID
			0x00, // stream priority

			0x04, // DecoderConfigDescrTag
			0x0F + n,
			0x40,             // objectTypeIndication: MPEG-4 audio
			0x15,             // streamType: audio
			0x00, 0x00, 0x00, // bufferSizeDB
			0x00, 0x00, 0x00, 0x00, // maxBitrate
			0x00, 0x00, 0x00, 0x00, // avgBitrate

			0x05, // DecSpecificInfoTag
			n,
		},
		t.Config,
		[]byte{
			0x06, // SLConfigDescrTag
			0x01,
			0x02,
		})
}

func mp4a(t *Track) []byte {
	return box("mp4a",
		make([]byte, 6), // reserved
		u16(1),          // data_reference_index
		make([]byte, 8), // reserved
		u16(uint16(t.ChannelCount)),
		u16(16), // samplesize
		u16(0),  // pre_defined
		u16(0),  // reserved
		u16(uint16(t.SampleRate)),
		u16(0),
		esds(t))
}

func mvex(tracks []*Track) []byte {
	boxes := make([][]byte, len(tracks))
	for i, t := range tracks {
		boxes[i] = trex(t.ID)
	}
	return box("mvex", boxes...)
}

func trex(trackID uint32) []byte {
	return box("trex",
		fullBoxHeader(0, 0),
		u32(trackID),
		u32(1),          // default_sample_description_index
		u32(0),          // default_sample_duration
		u32(0),          // default_sample_size
		u32(0x00010001)) // default_sample_flags
}
