package headers

import (
	"fmt"
	"strings"

	"github.com/bluenviron/gortspws/pkg/base"
)

// AuthMethod is an authentication method.
type AuthMethod int

// authentication methods.
const (
	AuthBasic AuthMethod = iota
	AuthDigest
)

var authMethodLabels = map[AuthMethod]string{
	AuthBasic:  "Basic",
	AuthDigest: "Digest",
}

// String implements fmt.Stringer.
func (m AuthMethod) String() string {
	if l, ok := authMethodLabels[m]; ok {
		return l
	}
	return "unknown"
}

// Authenticate is a WWW-Authenticate header.
type Authenticate struct {
	// authentication method
	Method AuthMethod

	// realm
	Realm string

	// (optional) nonce
	Nonce string

	// (optional) opaque
	Opaque *string

	// (optional) stale
	Stale *string

	// (optional) algorithm
	Algorithm *string
}

// Unmarshal decodes a WWW-Authenticate header.
func (h *Authenticate) Unmarshal(v base.HeaderValue) error {
	if len(v) == 0 {
		return fmt.Errorf("value not provided")
	}

	// prefer Digest when the server offers multiple methods
	val := v[0]
	for _, vi := range v {
		if strings.HasPrefix(vi, "Digest ") {
			val = vi
			break
		}
	}

	i := strings.IndexByte(val, ' ')
	if i < 0 {
		return fmt.Errorf("unable to split between method and keys (%v)", v)
	}
	method, rest := val[:i], val[i+1:]

	switch method {
	case "Basic":
		h.Method = AuthBasic

	case "Digest":
		h.Method = AuthDigest

	default:
		return fmt.Errorf("invalid method (%s)", method)
	}

	kvs, err := parseAuthParams(rest)
	if err != nil {
		return err
	}

	realmReceived := false

	for k, rv := range kvs {
		v := rv

		switch k {
		case "realm":
			h.Realm = v
			realmReceived = true

		case "nonce":
			h.Nonce = v

		case "opaque":
			h.Opaque = &v

		case "stale":
			h.Stale = &v

		case "algorithm":
			h.Algorithm = &v
		}
	}

	if !realmReceived {
		return fmt.Errorf("realm is missing")
	}

	if h.Method == AuthDigest && h.Nonce == "" {
		return fmt.Errorf("nonce is missing")
	}

	return nil
}

// Marshal encodes a WWW-Authenticate header.
func (h Authenticate) Marshal() base.HeaderValue {
	ret := h.Method.String() + " realm=\"" + h.Realm + "\""

	if h.Method == AuthDigest {
		ret += ", nonce=\"" + h.Nonce + "\""
	}

	if h.Opaque != nil {
		ret += ", opaque=\"" + *h.Opaque + "\""
	}

	if h.Stale != nil {
		ret += ", stale=\"" + *h.Stale + "\""
	}

	return base.HeaderValue{ret}
}
