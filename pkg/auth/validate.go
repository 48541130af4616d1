package auth

import (
	"fmt"

	"github.com/bluenviron/gortspws/pkg/base"
	"github.com/bluenviron/gortspws/pkg/headers"
)

// Validate checks the Authorization header of a request against
// the challenge previously sent to the client.
func Validate(req *base.Request, user, pass string, method headers.AuthMethod, realm, nonce string) error {
	var auth headers.Authorization
	err := auth.Unmarshal(req.Header.Values("Authorization"))
	if err != nil {
		return err
	}

	if auth.Method != method {
		return fmt.Errorf("authentication method does not match")
	}

	if auth.Username != user {
		return fmt.Errorf("authentication failed")
	}

	if method == headers.AuthBasic {
		if auth.BasicPass != pass {
			return fmt.Errorf("authentication failed")
		}
		return nil
	}

	if auth.Realm != realm || auth.Nonce != nonce || auth.URI != req.URI {
		return fmt.Errorf("authentication failed")
	}

	if auth.Response != DigestResponse(user, pass, realm, nonce, req.Method, req.URI) {
		return fmt.Errorf("authentication failed")
	}

	return nil
}
