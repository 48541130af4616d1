package bits

import (
	"encoding/base64"
	"encoding/hex"
	"strings"
)

// DecodeBase64 decodes a base64 string, with or without padding.
func DecodeBase64(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "=") {
		return base64.StdEncoding.DecodeString(s)
	}
	return base64.RawStdEncoding.DecodeString(s)
}

// DecodeHex decodes a hexadecimal string.
func DecodeHex(s string) ([]byte, error) {
	return hex.DecodeString(strings.TrimSpace(s))
}
