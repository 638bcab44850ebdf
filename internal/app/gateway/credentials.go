package gateway

import (
	"net/http"
	"strings"
)

// CredentialSource extracts a raw token from a request. The gateway tries
// its sources in order and uses the first one that yields a value.
type CredentialSource interface {
	Credential(r *http.Request) (string, bool)
}

type BearerHeader struct{}

func (BearerHeader) Credential(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

type Cookie struct {
	Name string
}

func (c Cookie) Credential(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(c.Name)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}
