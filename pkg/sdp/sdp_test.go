package sdp

import (
	"testing"

	psdp "github.com/pion/sdp/v3"
	"github.com/stretchr/testify/require"
)

func mustMarshal(sd *psdp.SessionDescription) []byte {
	byts, err := sd.Marshal()
	if err != nil {
		panic(err)
	}
	return byts
}

var avSDP = mustMarshal(&psdp.SessionDescription{
	Version: 0,
	Origin: psdp.Origin{
		Username:       "-",
		SessionID:      1632853282,
		SessionVersion: 1,
		NetworkType:    "IN",
		AddressType:    "IP4",
		UnicastAddress: "127.0.0.1",
	},
	SessionName: "Stream",
	TimeDescriptions: []psdp.TimeDescription{
		{Timing: psdp.Timing{StartTime: 0, StopTime: 0}},
	},
	Attributes: []psdp.Attribute{
		{Key: "control", Value: "*"},
	},
	MediaDescriptions: []*psdp.MediaDescription{
		{
			MediaName: psdp.MediaName{
				Media:   "video",
				Port:    psdp.RangedPort{Value: 0},
				Protos:  []string{"RTP", "AVP"},
				Formats: []string{"96", "97"},
			},
			Attributes: []psdp.Attribute{
				{Key: "rtpmap", Value: "96 h264/90000"},
				{Key: "fmtp", Value: "96 packetization-mode=1; Profile-Level-Id=42c01e; sprop-parameter-sets=Z0LAHtoFB+Q=,aM48gA=="},
				{Key: "control", Value: "trackID=0"},
				{Key: "range", Value: "npt=0-12.5"},
				{Key: "recvonly"},
				{Key: "framerate", Value: "25"},
			},
		},
		{
			MediaName: psdp.MediaName{
				Media:   "audio",
				Port:    psdp.RangedPort{Value: 0},
				Protos:  []string{"RTP", "AVP"},
				Formats: []string{"98"},
			},
			Attributes: []psdp.Attribute{
				{Key: "rtpmap", Value: "98 MPEG4-GENERIC/44100/2"},
				{Key: "fmtp", Value: "98 streamtype=5; profile-level-id=15; mode=AAC-hbr; config=1210; SizeLength=13; IndexLength=3; IndexDeltaLength=3"},
				{Key: "control", Value: "rtsp://127.0.0.1/stream/trackID=1"},
				{Key: "range", Value: "npt=now-"},
			},
		},
	},
})

func TestUnmarshal(t *testing.T) {
	var sd SessionDescription
	err := sd.Unmarshal(avSDP)
	require.NoError(t, err)

	require.Equal(t, psdp.Version(0), sd.Version)
	require.Equal(t, &psdp.Origin{
		Username:       "-",
		SessionID:      1632853282,
		SessionVersion: 1,
		NetworkType:    "IN",
		AddressType:    "IP4",
		UnicastAddress: "127.0.0.1",
	}, sd.Origin)
	require.Equal(t, psdp.SessionName("Stream"), sd.SessionName)
	require.Equal(t, &psdp.Timing{StartTime: 0, StopTime: 0}, sd.Timing)
	require.Equal(t, []string{"video", "audio"}, sd.MediaTypes())
	require.Equal(t, []string{"a=control:*", "a=framerate:25"}, sd.IgnoredLines)

	require.Equal(t, &Media{
		Type:    "video",
		Port:    psdp.RangedPort{Value: 0},
		Protos:  []string{"RTP", "AVP"},
		Formats: []int{96, 97},
		RTPMap: map[int]RTPMap{
			96: {Name: "H264", ClockRate: 90000},
		},
		FMTP: map[string]string{
			"packetization-mode":   "1",
			"profile-level-id":     "42c01e",
			"sprop-parameter-sets": "Z0LAHtoFB+Q=,aM48gA==",
		},
		Control: "trackID=0",
		Range:     &Range{Unit: "npt", Start: 0, End: 12.5, HasEnd: true},
		Direction: psdp.DirectionRecvOnly,
		Attributes: []psdp.Attribute{
			{Key: "framerate", Value: "25"},
		},
	}, sd.Media("video"))
	require.Equal(t, PayloadTypeH264, sd.Media("video").PayloadType())
	require.Equal(t, 90000, sd.Media("video").ClockRate())

	audio := sd.Media("audio")
	require.Equal(t, RTPMap{Name: "MPEG4-GENERIC", ClockRate: 44100, EncParams: "2"}, audio.RTPMap[98])
	require.Equal(t, "13", audio.FMTP["sizelength"])
	require.Equal(t, "rtsp://127.0.0.1/stream/trackID=1", audio.Control)
	require.Equal(t, &Range{Unit: "npt", Start: -1}, audio.Range)
	require.Equal(t, psdp.Direction(0), audio.Direction)
	require.Equal(t, PayloadTypeAAC, audio.PayloadType())
}

func TestMediaByPayloadType(t *testing.T) {
	var sd SessionDescription
	err := sd.Unmarshal(avSDP)
	require.NoError(t, err)

	for _, typ := range sd.MediaTypes() {
		md := sd.Media(typ)
		for _, pt := range md.Formats {
			require.Same(t, md, sd.MediaByPayloadType(pt))
		}
	}

	require.Nil(t, sd.MediaByPayloadType(0))
	require.Nil(t, sd.MediaByPayloadType(99))
}

func TestUnmarshalUnixNewlines(t *testing.T) {
	var sd SessionDescription
	err := sd.Unmarshal([]byte("v=0\n" +
		"o=- 0 0 IN IP4 127.0.0.1\n" +
		"s=No Name\n" +
		"\n" +
		"m=video 0 RTP/AVP 96\n" +
		"a=rtpmap:96 H264/90000\n"))
	require.NoError(t, err)
	require.Equal(t, PayloadTypeH264, sd.MediaByPayloadType(96).PayloadType())
}

func TestUnmarshalPortRange(t *testing.T) {
	var sd SessionDescription
	err := sd.Unmarshal([]byte("v=0\r\n" +
		"o=- 0 0 IN IP4 127.0.0.1\r\n" +
		"s=No Name\r\n" +
		"m=video 5004/2 RTP/AVP 96\r\n" +
		"a=sendonly\r\n"))
	require.NoError(t, err)

	two := 2
	md := sd.Media("video")
	require.Equal(t, psdp.RangedPort{Value: 5004, Range: &two}, md.Port)
	require.Equal(t, psdp.DirectionSendOnly, md.Direction)
	require.Equal(t, "5004/2", md.Port.String())
}

func TestUnmarshalErrors(t *testing.T) {
	for _, ca := range []struct {
		name string
		byts string
		err  string
	}{
		{
			"duplicate version",
			"v=0\r\nv=0\r\n",
			"line 'v=0': duplicate session-level field",
		},
		{
			"unsupported version",
			"v=1\r\n",
			"line 'v=1': unsupported SDP version 1",
		},
		{
			"duplicate session name",
			"v=0\r\ns=a\r\ns=b\r\n",
			"line 's=b': duplicate session-level field",
		},
		{
			"duplicate timing",
			"v=0\r\nt=0 0\r\nt=0 0\r\n",
			"line 't=0 0': duplicate session-level field",
		},
		{
			"invalid origin",
			"v=0\r\no=- 0 0 IN IPX 127.0.0.1\r\n",
			"line 'o=- 0 0 IN IPX 127.0.0.1': invalid origin line 'o=- 0 0 IN IPX 127.0.0.1'",
		},
		{
			"negative session id",
			"v=0\r\no=- -1 0 IN IP4 127.0.0.1\r\n",
			"line 'o=- -1 0 IN IP4 127.0.0.1': invalid origin line 'o=- -1 0 IN IP4 127.0.0.1'",
		},
		{
			"invalid media",
			"v=0\r\nm=video 0\r\n",
			"line 'm=video 0': invalid media line 'm=video 0'",
		},
		{
			"invalid range",
			"v=0\r\nm=video 0 RTP/AVP 96\r\na=range:npt=abc-\r\n",
			"line 'a=range:npt=abc-': invalid range 'range:npt=abc-'",
		},
		{
			"invalid clock rate",
			"v=0\r\nm=video 0 RTP/AVP 96\r\na=rtpmap:96 H264/abc\r\n",
			"line 'a=rtpmap:96 H264/abc': invalid clock rate 'abc'",
		},
	} {
		t.Run(ca.name, func(t *testing.T) {
			var sd SessionDescription
			err := sd.Unmarshal([]byte(ca.byts))
			require.EqualError(t, err, ca.err)
		})
	}
}
