package headers

import (
	"strconv"

	"github.com/bluenviron/gortspws/pkg/base"
)

// Range is a Range header with the npt unit and an open end.
type Range struct {
	// start, in seconds
	Start float64
}

// Marshal encodes a Range header.
func (h Range) Marshal() base.HeaderValue {
	return base.HeaderValue{"npt=" + strconv.FormatFloat(h.Start, 'f', -1, 64) + "-"}
}
