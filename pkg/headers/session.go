package headers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bluenviron/gortspws/pkg/base"
)

// Session is a Session header.
type Session struct {
	// session id
	Session string

	// (optional) a timeout, in seconds
	Timeout *uint
}

// Unmarshal decodes a Session header.
// Parameters other than timeout are ignored.
func (h *Session) Unmarshal(v base.HeaderValue) error {
	if len(v) == 0 {
		return fmt.Errorf("value not provided")
	}

	if len(v) > 1 {
		return fmt.Errorf("value provided multiple times (%v)", v)
	}

	parts := strings.Split(v[0], ";")

	h.Session = strings.TrimSpace(parts[0])
	h.Timeout = nil

	if h.Session == "" {
		return fmt.Errorf("invalid value (%v)", v)
	}

	for _, part := range parts[1:] {
		part = strings.TrimSpace(part)

		if !strings.HasPrefix(part, "timeout=") {
			continue
		}

		iv, err := strconv.ParseUint(part[len("timeout="):], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid timeout (%v)", part)
		}
		uiv := uint(iv)
		h.Timeout = &uiv
	}

	return nil
}

// Marshal encodes a Session header.
func (h Session) Marshal() base.HeaderValue {
	val := h.Session

	if h.Timeout != nil {
		val += ";timeout=" + strconv.FormatUint(uint64(*h.Timeout), 10)
	}

	return base.HeaderValue{val}
}
