package binding

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"learnsol-identity/internal/app/model"
	"learnsol-identity/internal/app/signature"
)

const (
	NoncePrefix     = "learnsol-"
	nonceEntropyLen = 16
)

// GenerateNonce returns NoncePrefix followed by 32 random hex characters.
func GenerateNonce() (string, error) {
	buf := make([]byte, nonceEntropyLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return NoncePrefix + hex.EncodeToString(buf), nil
}

// ChallengeStore keeps at most one pending nonce per wallet. Issuing a new
// nonce invalidates the previous one.
type ChallengeStore struct {
	repo     Repository
	verifier signature.Verifier
	newNonce func() (string, error)
	now      func() time.Time
}

type StoreOption func(*ChallengeStore)

func WithNonceGenerator(gen func() (string, error)) StoreOption {
	return func(s *ChallengeStore) { s.newNonce = gen }
}

func WithClock(now func() time.Time) StoreOption {
	return func(s *ChallengeStore) { s.now = now }
}

func WithSignatureVerifier(v signature.Verifier) StoreOption {
	return func(s *ChallengeStore) { s.verifier = v }
}

func NewChallengeStore(repo Repository, opts ...StoreOption) *ChallengeStore {
	s := &ChallengeStore{
		repo:     repo,
		verifier: signature.Ed25519Verifier{},
		newNonce: GenerateNonce,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ChallengeStore) Issue(ctx context.Context, wallet, subject string) (string, error) {
	nonce, err := s.newNonce()
	if err != nil {
		return "", err
	}
	if err := s.repo.SetPendingNonce(ctx, wallet, subject, nonce); err != nil {
		return "", fmt.Errorf("store pending nonce: %w", err)
	}
	return nonce, nil
}

// Consume verifies sig over the pending nonce and binds the wallet to
// subject. A nonce requested by another subject counts as no pending nonce.
// On ErrInvalidSignature the stored state is left as it was.
func (s *ChallengeStore) Consume(ctx context.Context, wallet, subject, sig string) (*model.WalletBinding, error) {
	row, err := s.repo.FindByWallet(ctx, wallet)
	if err != nil {
		return nil, fmt.Errorf("load wallet binding: %w", err)
	}
	if row == nil || row.PendingNonce == nil || row.RequestedBy == nil || *row.RequestedBy != subject {
		return nil, ErrNoPendingNonce
	}

	nonce := *row.PendingNonce
	if !s.verifier.Verify([]byte(nonce), sig, wallet) {
		return nil, ErrInvalidSignature
	}

	at := s.now()
	ok, err := s.repo.ConsumeNonce(ctx, wallet, subject, nonce, at)
	if err != nil {
		return nil, fmt.Errorf("consume nonce: %w", err)
	}
	if !ok {
		return nil, ErrNoPendingNonce
	}

	row.PendingNonce = nil
	row.RequestedBy = nil
	row.Subject = &subject
	row.BoundAt = &at
	return row, nil
}
