// Package auth contains utilities to perform RTSP authentication.
package auth

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"

	"github.com/bluenviron/gortspws/pkg/base"
	"github.com/bluenviron/gortspws/pkg/headers"
)

func md5Hex(in string) string {
	h := md5.New()
	h.Write([]byte(in))
	return hex.EncodeToString(h.Sum(nil))
}

// DigestResponse computes the response of a digest challenge.
func DigestResponse(user, pass, realm, nonce string, method base.Method, uri string) string {
	return md5Hex(md5Hex(user+":"+realm+":"+pass) + ":" + nonce + ":" + md5Hex(string(method)+":"+uri))
}

// Sender allows to send credentials.
// It requires a WWW-Authenticate header (provided by the server)
// and a set of credentials.
type Sender struct {
	WWWAuth base.HeaderValue
	User    string
	Pass    string

	authHeader *headers.Authenticate
}

// Initialize initializes a Sender.
func (se *Sender) Initialize() error {
	var auth headers.Authenticate
	err := auth.Unmarshal(se.WWWAuth)
	if err != nil {
		return fmt.Errorf("invalid WWW-Authenticate header: %w", err)
	}

	se.authHeader = &auth
	return nil
}

// Method returns the authentication method chosen by the server.
func (se *Sender) Method() headers.AuthMethod {
	return se.authHeader.Method
}

// AddAuthorization adds the Authorization header to a Request.
func (se *Sender) AddAuthorization(req *base.Request) {
	h := headers.Authorization{
		Method:   se.authHeader.Method,
		Username: se.User,
	}

	if se.authHeader.Method == headers.AuthBasic {
		h.BasicPass = se.Pass
	} else { // digest
		h.Realm = se.authHeader.Realm
		h.Nonce = se.authHeader.Nonce
		h.URI = req.URI
		h.Opaque = se.authHeader.Opaque
		h.Response = DigestResponse(se.User, se.Pass, se.authHeader.Realm,
			se.authHeader.Nonce, req.Method, req.URI)
	}

	if req.Header == nil {
		req.Header = make(base.Header)
	}

	req.Header["Authorization"] = h.Marshal()
}
