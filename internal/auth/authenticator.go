package auth

import (
	"net/http"
	"strings"

	"github.com/mikanbox/relay/pkg/errors"
)

// TokenAuthenticator verifies the identity token carried on a websocket
// upgrade request. The token rides either the Authorization header
// (Bearer) or the "token" query parameter.
type TokenAuthenticator struct {
	opts Options
}

// NewTokenAuthenticator creates a token authenticator.
func NewTokenAuthenticator(opts Options) *TokenAuthenticator {
	return &TokenAuthenticator{opts: opts}
}

// Authenticate returns the token subject, or an error that rejects the
// connection before it reaches the relay core.
func (a *TokenAuthenticator) Authenticate(r *http.Request) (string, error) {
	token := extractToken(r)
	if token == "" {
		return "", errors.New(errors.ErrorTypeUnauthorized, "MISSING_TOKEN", "no identity token on request")
	}

	claims, err := Verify(a.opts, token)
	if err != nil {
		return "", err
	}

	return claims.Subject, nil
}

func extractToken(r *http.Request) string {
	if authz := strings.TrimSpace(r.Header.Get("Authorization")); authz != "" {
		if strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			return strings.TrimSpace(authz[len("bearer "):])
		}
	}

	return strings.TrimSpace(r.URL.Query().Get("token"))
}
