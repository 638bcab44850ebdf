package gateway

import (
	"net/http"
	"time"
)

const (
	DefaultCookieName = "web3auth_token"
	SessionMaxAge     = 7 * 24 * time.Hour
)

// SessionCookie writes and clears the token cookie read by the Cookie source.
type SessionCookie struct {
	Name   string
	Secure bool
}

func (s SessionCookie) Set(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.Name,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(SessionMaxAge.Seconds()),
	})
}

func (s SessionCookie) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.Name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
