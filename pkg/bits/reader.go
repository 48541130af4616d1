// Package bits contains a bit cursor for codec bitstreams and helpers to decode SDP parameters.
package bits

import (
	"fmt"

	mcbits "github.com/bluenviron/mediacommon/v2/pkg/bits"
)

// Reader keeps the position of a cursor over a buffer and reads bits from it
// with the mediacommon bit functions, most significant bit first.
type Reader struct {
	buf []byte
	pos int
}

// NewReader allocates a Reader.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Pos returns the position of the cursor, in bits.
func (r *Reader) Pos() int {
	return r.pos
}

// Left returns the number of bits that can still be read.
func (r *Reader) Left() int {
	return len(r.buf)*8 - r.pos
}

// ReadBits reads N bits, with N <= 64.
func (r *Reader) ReadBits(n int) (uint64, error) {
	if n == 0 {
		return 0, nil
	}
	return mcbits.ReadBits(r.buf, &r.pos, n)
}

// SkipBits skips N bits.
func (r *Reader) SkipBits(n int) error {
	err := mcbits.HasSpace(r.buf, r.pos, n)
	if err != nil {
		return err
	}
	r.pos += n
	return nil
}

// ReadFlag reads a boolean flag.
func (r *Reader) ReadFlag() (bool, error) {
	return mcbits.ReadFlag(r.buf, &r.pos)
}

// ReadGolombUnsigned reads an unsigned Exp-Golomb value (ue(v)).
func (r *Reader) ReadGolombUnsigned() (uint32, error) {
	v, err := mcbits.ReadGolombUnsigned(r.buf, &r.pos)
	if err != nil {
		return 0, fmt.Errorf("invalid Exp-Golomb value: %w", err)
	}
	return v, nil
}
