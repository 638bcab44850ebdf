package tokens

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/lestrrat-go/jwx/v2/jwk"
)

// KeySetProvider supplies the issuer's current public key set.
type KeySetProvider interface {
	KeySet(ctx context.Context) (jwk.Set, error)
}

var ErrKeySetUnavailable = errors.New("key set unavailable")

// StaticKeySet serves a fixed key set. Used in tests and for issuers whose
// keys are pinned in configuration.
type StaticKeySet struct {
	set jwk.Set
}

func NewStaticKeySet(keys ...jwk.Key) (*StaticKeySet, error) {
	set := jwk.NewSet()
	for _, k := range keys {
		if err := set.AddKey(k); err != nil {
			return nil, fmt.Errorf("add key: %w", err)
		}
	}
	return &StaticKeySet{set: set}, nil
}

func (s *StaticKeySet) KeySet(context.Context) (jwk.Set, error) {
	return s.set, nil
}

// RemoteKeySet fetches the key set from a JWKS URL through a jwk.Cache.
// Refresh timing follows the issuer's Cache-Control and Expires headers,
// bounded below by the configured minimum interval.
type RemoteKeySet struct {
	url   string
	cache *jwk.Cache
}

type RemoteOption func(*remoteOptions)

type remoteOptions struct {
	minRefresh time.Duration
	client     *http.Client
}

func WithMinRefreshInterval(d time.Duration) RemoteOption {
	return func(o *remoteOptions) { o.minRefresh = d }
}

func WithHTTPClient(c *http.Client) RemoteOption {
	return func(o *remoteOptions) { o.client = c }
}

const (
	defaultMinRefresh   = 15 * time.Minute
	defaultFetchTimeout = 5 * time.Second
)

// NewRemoteKeySet registers url with a new cache bound to ctx. The first
// fetch happens lazily on the first KeySet call.
func NewRemoteKeySet(ctx context.Context, url string, opts ...RemoteOption) (*RemoteKeySet, error) {
	o := remoteOptions{
		minRefresh: defaultMinRefresh,
		client:     &http.Client{Timeout: defaultFetchTimeout},
	}
	for _, opt := range opts {
		opt(&o)
	}

	cache := jwk.NewCache(ctx)
	if err := cache.Register(url,
		jwk.WithMinRefreshInterval(o.minRefresh),
		jwk.WithHTTPClient(o.client),
	); err != nil {
		return nil, fmt.Errorf("register jwks url: %w", err)
	}
	return &RemoteKeySet{url: url, cache: cache}, nil
}

func (r *RemoteKeySet) KeySet(ctx context.Context) (jwk.Set, error) {
	set, err := r.cache.Get(ctx, r.url)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeySetUnavailable, err)
	}
	return set, nil
}

// DiscoverJWKSURL reads jwks_uri from the issuer's OpenID configuration.
func DiscoverJWKSURL(ctx context.Context, issuer string, client *http.Client) (string, error) {
	if client != nil {
		ctx = oidc.ClientContext(ctx, client)
	}
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return "", fmt.Errorf("oidc discovery: %w", err)
	}

	var discovery struct {
		JWKSURL string `json:"jwks_uri"`
	}
	if err := provider.Claims(&discovery); err != nil {
		return "", fmt.Errorf("decode discovery document: %w", err)
	}
	if discovery.JWKSURL == "" {
		return "", errors.New("discovery document has no jwks_uri")
	}
	return discovery.JWKSURL, nil
}
