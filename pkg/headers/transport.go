package headers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bluenviron/gortspws/pkg/base"
)

// Transport is a Transport header for RTP over the RTSP connection.
type Transport struct {
	// (optional) interleaved channels
	InterleavedIDs *[2]int

	// (optional) other parameters, kept verbatim
	Params []string
}

func parsePorts(val string) (*[2]int, error) {
	ports := strings.Split(val, "-")
	if len(ports) == 2 {
		port1, err := strconv.ParseUint(ports[0], 10, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid ports (%v)", val)
		}

		port2, err := strconv.ParseUint(ports[1], 10, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid ports (%v)", val)
		}

		return &[2]int{int(port1), int(port2)}, nil
	}

	if len(ports) == 1 {
		port1, err := strconv.ParseUint(ports[0], 10, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid ports (%v)", val)
		}

		return &[2]int{int(port1), int(port1 + 1)}, nil
	}

	return nil, fmt.Errorf("invalid ports (%v)", val)
}

// Unmarshal decodes a Transport header.
func (h *Transport) Unmarshal(v base.HeaderValue) error {
	if len(v) == 0 {
		return fmt.Errorf("value not provided")
	}

	*h = Transport{}

	// a server may list multiple transports; the first one is the chosen one
	for _, part := range strings.Split(strings.Split(v[0], ",")[0], ";") {
		part = strings.TrimSpace(part)

		if strings.HasPrefix(part, "interleaved=") {
			ids, err := parsePorts(part[len("interleaved="):])
			if err != nil {
				return err
			}
			h.InterleavedIDs = ids
			continue
		}

		h.Params = append(h.Params, part)
	}

	return nil
}

// Marshal encodes a Transport header requesting TCP interleaving.
func (h Transport) Marshal() base.HeaderValue {
	val := "RTP/AVP/TCP;unicast"

	if h.InterleavedIDs != nil {
		val += ";interleaved=" + strconv.FormatInt(int64(h.InterleavedIDs[0]), 10) +
			"-" + strconv.FormatInt(int64(h.InterleavedIDs[1]), 10)
	}

	return base.HeaderValue{val}
}
