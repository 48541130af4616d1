package conn

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bluenviron/gortspws/pkg/base"
)

func TestRead(t *testing.T) {
	for _, ca := range []struct {
		name string
		enc  []byte
		dec  interface{}
	}{
		{
			"request",
			[]byte("OPTIONS * RTSP/1.0\r\n" +
				"CSeq: 1\r\n" +
				"\r\n"),
			&base.Request{
				Method: base.Options,
				URI:    "*",
				Header: base.Header{
					"cseq": base.HeaderValue{"1"},
				},
			},
		},
		{
			"response",
			[]byte("RTSP/1.0 200 OK\r\n" +
				"CSeq: 1\r\n" +
				"\r\n"),
			&base.Response{
				StatusCode:    base.StatusOK,
				StatusMessage: "OK",
				Header: base.Header{
					"cseq": base.HeaderValue{"1"},
				},
			},
		},
		{
			"frame",
			[]byte{0x24, 0x6, 0x0, 0x4, 0x1, 0x2, 0x3, 0x4},
			&base.InterleavedFrame{
				Channel: 6,
				Payload: []byte{0x01, 0x02, 0x03, 0x04},
			},
		},
	} {
		t.Run(ca.name, func(t *testing.T) {
			buf := bytes.NewBuffer(ca.enc)
			conn := NewConn(buf)
			dec, err := conn.Read()
			require.NoError(t, err)
			require.Equal(t, ca.dec, dec)
		})
	}
}

func TestReadMixed(t *testing.T) {
	var buf bytes.Buffer
	w := NewConn(&buf)

	err := w.WriteInterleavedFrame(&base.InterleavedFrame{Channel: 0, Payload: []byte{1, 2}})
	require.NoError(t, err)

	err = w.WriteResponse(&base.Response{
		StatusCode: base.StatusOK,
		Header:     base.Header{"CSeq": base.HeaderValue{"5"}},
	})
	require.NoError(t, err)

	err = w.WriteInterleavedFrame(&base.InterleavedFrame{Channel: 3, Payload: []byte{3}})
	require.NoError(t, err)

	r := NewConn(&buf)

	what, err := r.Read()
	require.NoError(t, err)
	fr1 := what.(*base.InterleavedFrame)

	what, err = r.Read()
	require.NoError(t, err)
	require.Equal(t, "5", what.(*base.Response).Header.Get("CSeq"))

	what, err = r.Read()
	require.NoError(t, err)
	fr2 := what.(*base.InterleavedFrame)

	require.Equal(t, &base.InterleavedFrame{Channel: 0, Payload: []byte{1, 2}}, fr1)
	require.Equal(t, &base.InterleavedFrame{Channel: 3, Payload: []byte{3}}, fr2)
}

func TestWriteRequest(t *testing.T) {
	var buf bytes.Buffer
	c := NewConn(&buf)

	err := c.WriteRequest(&base.Request{
		Method: base.Teardown,
		URI:    "rtsp://localhost/stream",
		Header: base.Header{"CSeq": base.HeaderValue{"9"}},
	})
	require.NoError(t, err)
	require.Equal(t, "TEARDOWN rtsp://localhost/stream RTSP/1.0\r\nCSeq: 9\r\n\r\n", buf.String())
}
