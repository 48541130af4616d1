package headers

import (
	"strings"

	"github.com/bluenviron/gortspws/pkg/base"
)

// Public is a Public header, listing the methods supported by a server.
type Public []base.Method

// Unmarshal decodes a Public header.
func (h *Public) Unmarshal(v base.HeaderValue) {
	*h = nil

	for _, vi := range v {
		for _, m := range strings.Split(vi, ",") {
			m = strings.TrimSpace(m)
			if m != "" {
				*h = append(*h, base.Method(m))
			}
		}
	}
}

// Has checks whether a method is supported.
func (h Public) Has(m base.Method) bool {
	for _, v := range h {
		if v == m {
			return true
		}
	}
	return false
}
