package headers

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/bluenviron/gortspws/pkg/base"
)

// Authorization is an Authorization header.
type Authorization struct {
	// authentication method
	Method AuthMethod

	// username
	Username string

	// basic password
	BasicPass string

	// digest values
	Realm    string
	Nonce    string
	URI      string
	Response string
	Opaque   *string
}

// Unmarshal decodes an Authorization header.
func (h *Authorization) Unmarshal(v base.HeaderValue) error {
	if len(v) == 0 {
		return fmt.Errorf("value not provided")
	}

	if len(v) > 1 {
		return fmt.Errorf("value provided multiple times (%v)", v)
	}

	i := strings.IndexByte(v[0], ' ')
	if i < 0 {
		return fmt.Errorf("unable to split between method and keys (%v)", v)
	}
	method, rest := v[0][:i], v[0][i+1:]

	switch method {
	case "Basic":
		h.Method = AuthBasic

		byts, err := base64.StdEncoding.DecodeString(rest)
		if err != nil {
			return fmt.Errorf("invalid value")
		}

		tmp := strings.SplitN(string(byts), ":", 2)
		if len(tmp) != 2 {
			return fmt.Errorf("invalid value")
		}

		h.Username, h.BasicPass = tmp[0], tmp[1]

	case "Digest":
		h.Method = AuthDigest

		kvs, err := parseAuthParams(rest)
		if err != nil {
			return err
		}

		for k, rv := range kvs {
			v := rv

			switch k {
			case "username":
				h.Username = v

			case "realm":
				h.Realm = v

			case "nonce":
				h.Nonce = v

			case "uri":
				h.URI = v

			case "response":
				h.Response = v

			case "opaque":
				h.Opaque = &v
			}
		}

	default:
		return fmt.Errorf("invalid method (%s)", method)
	}

	return nil
}

// Marshal encodes an Authorization header.
func (h Authorization) Marshal() base.HeaderValue {
	if h.Method == AuthBasic {
		return base.HeaderValue{"Basic " +
			base64.StdEncoding.EncodeToString([]byte(h.Username+":"+h.BasicPass))}
	}

	ret := "Digest username=\"" + h.Username + "\", realm=\"" + h.Realm + "\", " +
		"nonce=\"" + h.Nonce + "\", uri=\"" + h.URI + "\", response=\"" + h.Response + "\""

	if h.Opaque != nil {
		ret += ", opaque=\"" + *h.Opaque + "\""
	}

	return base.HeaderValue{ret}
}
