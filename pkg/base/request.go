package base

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	requestMaxMethodLength   = 64
	requestMaxURILength      = 2048
	requestMaxProtocolLength = 64
	maxContentLength         = 128 * 1024
)

// Request is a RTSP request.
type Request struct {
	// request method
	Method Method

	// request URI, or "*"
	URI string

	// map of header values
	Header Header

	// optional body
	Body []byte
}

// Marshal builds the request line, the headers and the optional body.
// Content-Length is computed when a body is present.
func (req Request) Marshal() []byte {
	h := make(Header, len(req.Header)+1)
	for k, v := range req.Header {
		h[k] = v
	}

	if len(req.Body) != 0 {
		h["Content-Length"] = HeaderValue{strconv.FormatInt(int64(len(req.Body)), 10)}
	}

	buf := []byte(string(req.Method) + " " + req.URI + " " + rtspProtocol10 + "\r\n")
	buf = append(buf, h.marshal()...)
	buf = append(buf, req.Body...)
	return buf
}

// String implements fmt.Stringer.
func (req Request) String() string {
	return string(req.Marshal())
}

// Read reads a request.
func (req *Request) Read(rb *bufio.Reader) error {
	byts, err := readBytesLimited(rb, ' ', requestMaxMethodLength)
	if err != nil {
		return err
	}
	req.Method = Method(byts[:len(byts)-1])

	if req.Method == "" {
		return fmt.Errorf("empty method")
	}

	byts, err = readBytesLimited(rb, ' ', requestMaxURILength)
	if err != nil {
		return err
	}
	req.URI = string(byts[:len(byts)-1])

	byts, err = readBytesLimited(rb, '\r', requestMaxProtocolLength)
	if err != nil {
		return err
	}
	proto := byts[:len(byts)-1]

	if string(proto) != rtspProtocol10 {
		return fmt.Errorf("expected '%s', got '%s'", rtspProtocol10, proto)
	}

	err = readByteEqual(rb, '\n')
	if err != nil {
		return err
	}

	lines, err := readHeaderLines(rb)
	if err != nil {
		return err
	}

	err = req.Header.unmarshalLines(lines)
	if err != nil {
		return err
	}

	req.Body, err = readBody(rb, req.Header)
	return err
}

func readHeaderLines(rb *bufio.Reader) ([]string, error) {
	var lines []string

	for {
		byts, err := readBytesLimited(rb, '\n', headerMaxLineLength)
		if err != nil {
			return nil, err
		}

		line := strings.TrimRight(string(byts), "\r\n")
		if line == "" {
			return lines, nil
		}

		if len(lines) >= headerMaxEntryCount {
			return nil, fmt.Errorf("headers count exceeds %d", headerMaxEntryCount)
		}

		lines = append(lines, line)
	}
}

func readBody(rb *bufio.Reader, h Header) ([]byte, error) {
	cls := h.Get("Content-Length")
	if cls == "" {
		return nil, nil
	}

	cl, err := strconv.ParseInt(cls, 10, 64)
	if err != nil || cl < 0 {
		return nil, fmt.Errorf("invalid Content-Length")
	}

	if cl > maxContentLength {
		return nil, fmt.Errorf("Content-Length exceeds %d (it's %d)", maxContentLength, cl)
	}

	if cl == 0 {
		return nil, nil
	}

	body := make([]byte, cl)
	_, err = io.ReadFull(rb, body)
	if err != nil {
		return nil, err
	}

	return body, nil
}
