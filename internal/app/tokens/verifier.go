// Package tokens verifies issuer-signed identity tokens against a published
// key set and turns them into a VerifiedIdentity.
package tokens

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"learnsol-identity/internal/app/metrics"
	"learnsol-identity/pkg/logger"
	reasoncodes "learnsol-identity/pkg/reason_codes"
)

// ErrInvalidToken is the only error callers see for a rejected token.
var ErrInvalidToken = errors.New("invalid token")

type VerifiedIdentity struct {
	Subject   string
	Claims    map[string]any
	RawToken  string
	ExpiresAt time.Time
}

type Verifier struct {
	keys      KeySetProvider
	algorithm jwa.SignatureAlgorithm
	issuer    string
	audience  string
	skew      time.Duration
	clock     jwt.Clock
	logger    *logger.Logger
	metrics   *metrics.Metrics
}

type Option func(*Verifier)

// WithAlgorithm pins the accepted signature algorithm. Defaults to ES256.
func WithAlgorithm(alg jwa.SignatureAlgorithm) Option {
	return func(v *Verifier) { v.algorithm = alg }
}

func WithIssuer(iss string) Option {
	return func(v *Verifier) { v.issuer = iss }
}

func WithAudience(aud string) Option {
	return func(v *Verifier) { v.audience = aud }
}

func WithAcceptableSkew(d time.Duration) Option {
	return func(v *Verifier) { v.skew = d }
}

func WithClock(now func() time.Time) Option {
	return func(v *Verifier) { v.clock = jwt.ClockFunc(now) }
}

func WithLogger(l *logger.Logger) Option {
	return func(v *Verifier) { v.logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(v *Verifier) { v.metrics = m }
}

func NewVerifier(keys KeySetProvider, opts ...Option) *Verifier {
	v := &Verifier{
		keys:      keys,
		algorithm: jwa.ES256,
		clock:     jwt.ClockFunc(time.Now),
		logger:    logger.New(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// ParseAlgorithm converts a configured algorithm name.
func ParseAlgorithm(name string) (jwa.SignatureAlgorithm, error) {
	var alg jwa.SignatureAlgorithm
	if err := alg.Accept(name); err != nil {
		return "", fmt.Errorf("unsupported algorithm %q: %w", name, err)
	}
	if alg == jwa.NoSignature || alg == jwa.HS256 || alg == jwa.HS384 || alg == jwa.HS512 {
		return "", fmt.Errorf("algorithm %q is not asymmetric", name)
	}
	return alg, nil
}

// Verify checks signature, algorithm and time claims. Every failure is
// reported as ErrInvalidToken; the cause is only logged.
func (v *Verifier) Verify(ctx context.Context, raw string) (*VerifiedIdentity, error) {
	if raw == "" {
		return nil, ErrInvalidToken
	}

	provider := jws.KeyProviderFunc(func(_ context.Context, sink jws.KeySink, sig *jws.Signature, _ *jws.Message) error {
		return v.provideKey(ctx, sink, sig)
	})
	opts := []jwt.ParseOption{
		jwt.WithKeyProvider(provider),
		jwt.WithValidate(true),
		jwt.WithClock(v.clock),
		jwt.WithAcceptableSkew(v.skew),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	token, err := jwt.Parse([]byte(raw), opts...)
	if err != nil {
		v.reject(ctx, err)
		return nil, ErrInvalidToken
	}
	if token.Subject() == "" {
		v.reject(ctx, errors.New("token has no subject"))
		return nil, ErrInvalidToken
	}

	claims, err := token.AsMap(ctx)
	if err != nil {
		v.reject(ctx, fmt.Errorf("claims: %w", err))
		return nil, ErrInvalidToken
	}

	v.metrics.TokenVerified("valid")
	return &VerifiedIdentity{
		Subject:   token.Subject(),
		Claims:    claims,
		RawToken:  raw,
		ExpiresAt: token.Expiration(),
	}, nil
}

func (v *Verifier) reject(ctx context.Context, cause error) {
	v.metrics.TokenVerified("invalid")
	reason := reasoncodes.ErrTokenInvalid
	if errors.Is(cause, ErrKeySetUnavailable) {
		reason = reasoncodes.ErrKeySetUnavailable
		v.metrics.KeySetFetchFailed()
	}
	v.logger.WithContext(ctx).WithField("reason", reason.String()).Warnf("token rejected: %v", cause)
}

// provideKey hands jws exactly one candidate key, and only when the header
// algorithm matches the pinned one.
func (v *Verifier) provideKey(ctx context.Context, sink jws.KeySink, sig *jws.Signature) error {
	headers := sig.ProtectedHeaders()
	if headers.Algorithm() != v.algorithm {
		return fmt.Errorf("algorithm %q not accepted, want %q", headers.Algorithm(), v.algorithm)
	}

	set, err := v.keys.KeySet(ctx)
	if err != nil {
		return err
	}

	key, err := selectKey(set, headers.KeyID())
	if err != nil {
		return err
	}
	if ka := key.Algorithm(); ka != nil && ka.String() != "" && ka.String() != v.algorithm.String() {
		return fmt.Errorf("key %q is for %q", key.KeyID(), ka)
	}

	sink.Key(v.algorithm, key)
	return nil
}

func selectKey(set jwk.Set, kid string) (jwk.Key, error) {
	if kid != "" {
		key, ok := set.LookupKeyID(kid)
		if !ok {
			return nil, fmt.Errorf("no key with kid %q", kid)
		}
		return key, nil
	}
	if set.Len() != 1 {
		return nil, fmt.Errorf("token has no kid and key set holds %d keys", set.Len())
	}
	key, _ := set.Key(0)
	return key, nil
}
