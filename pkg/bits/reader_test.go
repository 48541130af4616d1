package bits

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReaderReadBits(t *testing.T) {
	r := NewReader([]byte{0xA8, 0xC7, 0xD6, 0xAA, 0xBB, 0x10})
	v, _ := r.ReadBits(6)
	require.Equal(t, uint64(0x2a), v)
	v, _ = r.ReadBits(6)
	require.Equal(t, uint64(0x0c), v)
	v, _ = r.ReadBits(6)
	require.Equal(t, uint64(0x1f), v)
	v, _ = r.ReadBits(8)
	require.Equal(t, uint64(0x5a), v)
	v, _ = r.ReadBits(20)
	require.Equal(t, uint64(0xaaec4), v)
	require.Equal(t, 46, r.Pos())
	require.Equal(t, 2, r.Left())
}

func TestReaderReadBitsError(t *testing.T) {
	r := NewReader([]byte{0xA8})
	_, err := r.ReadBits(6)
	require.NoError(t, err)
	_, err = r.ReadBits(6)
	require.EqualError(t, err, "not enough bits")
	err = r.SkipBits(3)
	require.EqualError(t, err, "not enough bits")
}

func TestReaderGolomb(t *testing.T) {
	r := NewReader([]byte{0x38, 0x80})
	v, err := r.ReadGolombUnsigned()
	require.NoError(t, err)
	require.Equal(t, uint32(6), v)
	require.Equal(t, 5, r.Pos())

	f, err := r.ReadFlag()
	require.NoError(t, err)
	require.False(t, f)

	r = NewReader([]byte{})
	_, err = r.ReadGolombUnsigned()
	require.EqualError(t, err, "invalid Exp-Golomb value: not enough bits")
}

func TestBytes(t *testing.T) {
	b, err := DecodeBase64("Z0LAHg")
	require.NoError(t, err)
	require.Equal(t, []byte{0x67, 0x42, 0xc0, 0x1e}, b)

	b, err = DecodeBase64("aM48gA==")
	require.NoError(t, err)
	require.Equal(t, []byte{0x68, 0xce, 0x3c, 0x80}, b)

	b, err = DecodeHex("1210")
	require.NoError(t, err)
	require.Equal(t, []byte{0x12, 0x10}, b)
}
