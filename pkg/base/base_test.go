package base

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRequestMarshal(t *testing.T) {
	req := Request{
		Method: Setup,
		URI:    "rtsp://127.0.0.1:554/stream/trackID=0",
		Header: Header{
			"CSeq":       HeaderValue{"3"},
			"Transport":  HeaderValue{"RTP/AVP/TCP;unicast;interleaved=0-1"},
			"User-Agent": HeaderValue{"gortspws"},
		},
	}

	require.Equal(t, "SETUP rtsp://127.0.0.1:554/stream/trackID=0 RTSP/1.0\r\n"+
		"CSeq: 3\r\n"+
		"Transport: RTP/AVP/TCP;unicast;interleaved=0-1\r\n"+
		"User-Agent: gortspws\r\n"+
		"\r\n", string(req.Marshal()))

	req = Request{
		Method: GetParameter,
		URI:    "*",
		Header: Header{"CSeq": HeaderValue{"4"}},
		Body:   []byte("ping"),
	}

	require.Equal(t, "GET_PARAMETER * RTSP/1.0\r\n"+
		"CSeq: 4\r\n"+
		"Content-Length: 4\r\n"+
		"\r\n"+
		"ping", string(req.Marshal()))
	require.NotContains(t, req.Header, "Content-Length")
}

func TestRequestRead(t *testing.T) {
	byts := []byte("DESCRIBE rtsp://127.0.0.1/stream RTSP/1.0\r\n" +
		"CSeq: 2\r\n" +
		"Accept: application/sdp\r\n" +
		"\r\n")

	var req Request
	err := req.Read(bufio.NewReader(bytes.NewReader(byts)))
	require.NoError(t, err)
	require.Equal(t, Request{
		Method: Describe,
		URI:    "rtsp://127.0.0.1/stream",
		Header: Header{
			"cseq":   HeaderValue{"2"},
			"accept": HeaderValue{"application/sdp"},
		},
	}, req)
}

func TestResponseUnmarshal(t *testing.T) {
	for _, ca := range []struct {
		name string
		byts string
		res  Response
	}{
		{
			"without body",
			"RTSP/1.0 200 OK\r\n" +
				"CSeq: 1\r\n" +
				"Public: OPTIONS, DESCRIBE, SETUP, PLAY, TEARDOWN\r\n" +
				"\r\n",
			Response{
				StatusCode:    StatusOK,
				StatusMessage: "OK",
				Header: Header{
					"cseq":   HeaderValue{"1"},
					"public": HeaderValue{"OPTIONS, DESCRIBE, SETUP, PLAY, TEARDOWN"},
				},
			},
		},
		{
			"with body",
			"RTSP/1.0 200 OK\r\n" +
				"CSeq: 2\r\n" +
				"Content-Length: 5\r\n" +
				"\r\n" +
				"v=0\r\n",
			Response{
				StatusCode:    StatusOK,
				StatusMessage: "OK",
				Header: Header{
					"cseq":           HeaderValue{"2"},
					"content-length": HeaderValue{"5"},
				},
				Body: []byte("v=0\r\n"),
			},
		},
		{
			"body without content-length",
			"RTSP/1.0 401 Unauthorized\r\n" +
				"WWW-Authenticate: Basic realm=\"4419b63f5e51\"\r\n" +
				"\r\n" +
				"garbage",
			Response{
				StatusCode:    StatusUnauthorized,
				StatusMessage: "Unauthorized",
				Header: Header{
					"www-authenticate": HeaderValue{"Basic realm=\"4419b63f5e51\""},
				},
			},
		},
	} {
		t.Run(ca.name, func(t *testing.T) {
			var res Response
			err := res.Unmarshal([]byte(ca.byts))
			require.NoError(t, err)
			require.Equal(t, ca.res, res)
		})
	}
}

func TestResponseUnmarshalErrors(t *testing.T) {
	var res Response
	err := res.Unmarshal([]byte("HTTP/1.1 200 OK\r\n\r\n"))
	require.EqualError(t, err, "invalid status line 'HTTP/1.1 200 OK'")

	err = res.Unmarshal([]byte("RTSP/1.0 2000 OK\r\n\r\n"))
	require.EqualError(t, err, "invalid status line 'RTSP/1.0 2000 OK'")

	err = res.Unmarshal([]byte("RTSP/1.0 200 OK\r\nCSeq\r\n\r\n"))
	require.EqualError(t, err, "invalid header line 'CSeq'")
}

func TestResponseReadMarshal(t *testing.T) {
	res := Response{
		StatusCode: StatusOK,
		Header: Header{
			"CSeq":         HeaderValue{"2"},
			"Content-Type": HeaderValue{"application/sdp"},
		},
		Body: []byte("v=0\r\n"),
	}
	byts := res.Marshal()
	require.Equal(t, "RTSP/1.0 200 OK\r\n"+
		"CSeq: 2\r\n"+
		"Content-Length: 5\r\n"+
		"Content-Type: application/sdp\r\n"+
		"\r\n"+
		"v=0\r\n", string(byts))

	// the trailing frame must not be consumed
	br := bufio.NewReader(bytes.NewReader(append(byts, 0x24, 0x00, 0x00, 0x01, 0xAA)))

	var dec Response
	err := dec.Read(br)
	require.NoError(t, err)
	require.Equal(t, StatusOK, dec.StatusCode)
	require.Equal(t, "application/sdp", dec.Header.Get("Content-Type"))
	require.Equal(t, []byte("v=0\r\n"), dec.Body)

	var fr InterleavedFrame
	err = fr.Unmarshal(br)
	require.NoError(t, err)
	require.Equal(t, InterleavedFrame{Channel: 0, Payload: []byte{0xAA}}, fr)
}

func TestInterleavedFrame(t *testing.T) {
	f := InterleavedFrame{Channel: 2, Payload: []byte{1, 2, 3, 4}}
	byts := f.Marshal()
	require.Equal(t, []byte{0x24, 0x02, 0x00, 0x04, 1, 2, 3, 4}, byts)

	var dec InterleavedFrame
	err := dec.Unmarshal(bufio.NewReader(bytes.NewReader(byts)))
	require.NoError(t, err)
	require.Equal(t, f, dec)

	err = dec.Unmarshal(bufio.NewReader(bytes.NewReader([]byte{0x55, 0x00, 0x00, 0x00})))
	require.EqualError(t, err, "invalid magic byte (0x55)")
}
