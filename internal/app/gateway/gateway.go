// Package gateway authenticates inbound requests: it finds the credential,
// runs the token verifier and exposes the result to gin handlers.
package gateway

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"learnsol-identity/internal/app/tokens"
	"learnsol-identity/pkg/logger"
	reasoncodes "learnsol-identity/pkg/reason_codes"
)

const identityContextKey = "verified_identity"

type TokenVerifier interface {
	Verify(ctx context.Context, raw string) (*tokens.VerifiedIdentity, error)
}

type Gateway struct {
	verifier TokenVerifier
	sources  []CredentialSource
	logger   *logger.Logger
}

type Option func(*Gateway)

func WithCredentialSources(sources ...CredentialSource) Option {
	return func(g *Gateway) { g.sources = sources }
}

func WithLogger(l *logger.Logger) Option {
	return func(g *Gateway) { g.logger = l }
}

// New returns a gateway reading the bearer header first, then the
// web3auth_token cookie.
func New(verifier TokenVerifier, opts ...Option) *Gateway {
	g := &Gateway{
		verifier: verifier,
		sources:  []CredentialSource{BearerHeader{}, Cookie{Name: DefaultCookieName}},
		logger:   logger.New(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Authenticate returns nil for a missing or invalid credential.
func (g *Gateway) Authenticate(r *http.Request) *tokens.VerifiedIdentity {
	raw, ok := g.credential(r)
	if !ok {
		g.logger.WithContext(r.Context()).WithField("reason", reasoncodes.ErrCredentialMissing.String()).
			Debugf("No credential on %s %s", r.Method, r.URL.Path)
		return nil
	}

	identity, err := g.verifier.Verify(r.Context(), raw)
	if err != nil {
		return nil
	}
	return identity
}

func (g *Gateway) credential(r *http.Request) (string, bool) {
	for _, source := range g.sources {
		if raw, ok := source.Credential(r); ok {
			return raw, true
		}
	}
	return "", false
}

// RequireIdentity aborts with 401 unless the request carries a valid token.
func (g *Gateway) RequireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := g.Authenticate(c.Request)
		if identity == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Set(identityContextKey, identity)
		c.Next()
	}
}

func IdentityFromContext(c *gin.Context) (*tokens.VerifiedIdentity, bool) {
	v, ok := c.Get(identityContextKey)
	if !ok {
		return nil, false
	}
	identity, ok := v.(*tokens.VerifiedIdentity)
	return identity, ok && identity != nil
}
