package base

import (
	"bufio"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var reStatusLine = regexp.MustCompile(`^RTSP/1.0[ ]+([0-9]{3})[ ]+(.*)$`)

// StatusCode is the status code of a RTSP response.
type StatusCode int

// status codes.
const (
	StatusOK                        StatusCode = 200
	StatusMovedPermanently          StatusCode = 301
	StatusFound                     StatusCode = 302
	StatusBadRequest                StatusCode = 400
	StatusUnauthorized              StatusCode = 401
	StatusForbidden                 StatusCode = 403
	StatusNotFound                  StatusCode = 404
	StatusMethodNotAllowed          StatusCode = 405
	StatusSessionNotFound           StatusCode = 454
	StatusMethodNotValidInThisState StatusCode = 455
	StatusUnsupportedTransport      StatusCode = 461
	StatusInternalServerError       StatusCode = 500
	StatusNotImplemented            StatusCode = 501
	StatusServiceUnavailable        StatusCode = 503
)

var statusMessages = map[StatusCode]string{
	StatusOK:                        "OK",
	StatusMovedPermanently:          "Moved Permanently",
	StatusFound:                     "Found",
	StatusBadRequest:                "Bad Request",
	StatusUnauthorized:              "Unauthorized",
	StatusForbidden:                 "Forbidden",
	StatusNotFound:                  "Not Found",
	StatusMethodNotAllowed:          "Method Not Allowed",
	StatusSessionNotFound:           "Session Not Found",
	StatusMethodNotValidInThisState: "Method Not Valid In This State",
	StatusUnsupportedTransport:      "Unsupported Transport",
	StatusInternalServerError:       "Internal Server Error",
	StatusNotImplemented:            "Not Implemented",
	StatusServiceUnavailable:        "Service Unavailable",
}

// Response is a RTSP response.
type Response struct {
	// numeric status code
	StatusCode StatusCode

	// status message
	StatusMessage string

	// map of header values
	Header Header

	// optional body
	Body []byte
}

// Unmarshal parses a complete response.
// Everything after the header block is the body, when a Content-Length
// is declared; framing is up to the caller.
func (res *Response) Unmarshal(raw []byte) error {
	str := string(raw)

	head := str
	rest := ""
	if i := strings.Index(str, "\r\n\r\n"); i >= 0 {
		head = str[:i]
		rest = str[i+4:]
	}

	lines := strings.Split(head, "\r\n")

	m := reStatusLine.FindStringSubmatch(lines[0])
	if m == nil {
		return fmt.Errorf("invalid status line '%s'", lines[0])
	}

	code, _ := strconv.Atoi(m[1])
	res.StatusCode = StatusCode(code)
	res.StatusMessage = m[2]

	err := res.Header.unmarshalLines(lines[1:])
	if err != nil {
		return err
	}

	res.Body = nil
	if cl := res.Header.Get("content-length"); cl != "" && cl != "0" && rest != "" {
		res.Body = []byte(rest)
	}

	return nil
}

// Read reads a response, using Content-Length to delimit the body.
func (res *Response) Read(rb *bufio.Reader) error {
	byts, err := readBytesLimited(rb, '\n', headerMaxLineLength)
	if err != nil {
		return err
	}

	lines, err := readHeaderLines(rb)
	if err != nil {
		return err
	}

	err = res.Unmarshal([]byte(strings.TrimRight(string(byts), "\r\n") + "\r\n" +
		strings.Join(lines, "\r\n") + "\r\n\r\n"))
	if err != nil {
		return err
	}

	res.Body, err = readBody(rb, res.Header)
	return err
}

// Marshal encodes a response.
func (res Response) Marshal() []byte {
	if res.StatusMessage == "" {
		res.StatusMessage = statusMessages[res.StatusCode]
	}

	h := make(Header, len(res.Header)+1)
	for k, v := range res.Header {
		h[k] = v
	}

	if len(res.Body) != 0 {
		h["Content-Length"] = HeaderValue{strconv.FormatInt(int64(len(res.Body)), 10)}
	}

	buf := []byte(rtspProtocol10 + " " + strconv.FormatInt(int64(res.StatusCode), 10) + " " +
		res.StatusMessage + "\r\n")
	buf = append(buf, h.marshal()...)
	buf = append(buf, res.Body...)
	return buf
}

// String implements fmt.Stringer.
func (res Response) String() string {
	return string(res.Marshal())
}
