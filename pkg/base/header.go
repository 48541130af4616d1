package base

import (
	"fmt"
	"sort"
	"strings"
)

const (
	headerMaxEntryCount = 255
	headerMaxLineLength = 2048
)

// HeaderValue is an header value.
type HeaderValue []string

// Header is the header of a RTSP request or response.
// Keys of parsed messages are lowercased.
type Header map[string]HeaderValue

// Get returns the first value of a header, matching the key case-insensitively.
func (h Header) Get(key string) string {
	if v, ok := h[key]; ok && len(v) != 0 {
		return v[0]
	}

	for k, v := range h {
		if strings.EqualFold(k, key) && len(v) != 0 {
			return v[0]
		}
	}

	return ""
}

// Values returns all values of a header, matching the key case-insensitively.
func (h Header) Values(key string) HeaderValue {
	for k, v := range h {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return nil
}

func (h *Header) unmarshalLines(lines []string) error {
	*h = make(Header)

	for _, line := range lines {
		if len(*h) >= headerMaxEntryCount {
			return fmt.Errorf("headers count exceeds %d", headerMaxEntryCount)
		}

		i := strings.IndexByte(line, ':')
		if i < 0 {
			return fmt.Errorf("invalid header line '%s'", line)
		}

		key := strings.ToLower(strings.TrimSpace(line[:i]))
		val := strings.TrimSpace(line[i+1:])

		(*h)[key] = append((*h)[key], val)
	}

	return nil
}

func (h Header) marshal() []byte {
	// sort headers by key
	// in order to obtain deterministic results
	keys := make([]string, 0, len(h))
	for key := range h {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var ret []byte
	for _, key := range keys {
		for _, val := range h[key] {
			ret = append(ret, []byte(key+": "+val+"\r\n")...)
		}
	}

	return append(ret, []byte("\r\n")...)
}
