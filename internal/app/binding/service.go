package binding

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"learnsol-identity/internal/app/metrics"
	"learnsol-identity/internal/app/tokens"
	"learnsol-identity/internal/app/walletaddr"
	"learnsol-identity/pkg/logger"
	reasoncodes "learnsol-identity/pkg/reason_codes"
	"learnsol-identity/pkg/utilities/timeutil"
)

type State string

const (
	StateUnbound     State = "unbound"
	StateNonceIssued State = "nonce_issued"
	StateBound       State = "bound"
)

type WalletLookup struct {
	walletaddr.Resolution
	Bound bool
}

type Service struct {
	repo      Repository
	store     *ChallengeStore
	storeOpts []StoreOption
	events    EventPublisher
	logger    *logger.Logger
	metrics   *metrics.Metrics
}

type ServiceOption func(*Service)

func WithStoreOptions(opts ...StoreOption) ServiceOption {
	return func(s *Service) { s.storeOpts = append(s.storeOpts, opts...) }
}

func WithEventPublisher(p EventPublisher) ServiceOption {
	return func(s *Service) { s.events = p }
}

func WithLogger(l *logger.Logger) ServiceOption {
	return func(s *Service) { s.logger = l }
}

func WithMetrics(m *metrics.Metrics) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

func NewService(repo Repository, opts ...ServiceOption) *Service {
	s := &Service{
		repo:   repo,
		logger: logger.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.store = NewChallengeStore(repo, s.storeOpts...)
	return s
}

// RequestNonce moves the wallet to NonceIssued for subject, replacing any
// nonce issued before.
func (s *Service) RequestNonce(ctx context.Context, subject, wallet string) (string, error) {
	wallet = strings.TrimSpace(wallet)
	if !walletaddr.IsPublicKey(wallet) {
		return "", ErrInvalidWalletAddress
	}

	nonce, err := s.store.Issue(ctx, wallet, subject)
	if err != nil {
		return "", err
	}

	s.metrics.NonceIssued()
	s.logger.WithContext(ctx).Infof("Issued nonce for wallet %s", wallet)
	s.publish(ctx, EventNonceIssued, wallet, subject, "")
	return nonce, nil
}

// BindWallet consumes the pending nonce with sig and binds wallet to subject.
func (s *Service) BindWallet(ctx context.Context, subject, wallet, sig string) error {
	wallet = strings.TrimSpace(wallet)
	sig = strings.TrimSpace(sig)
	if !walletaddr.IsPublicKey(wallet) {
		return ErrInvalidWalletAddress
	}
	if sig == "" {
		return ErrMissingSignature
	}

	log := s.logger.WithContext(ctx)
	_, err := s.store.Consume(ctx, wallet, subject, sig)
	switch {
	case err == nil:
		s.metrics.BindAttempt("bound")
		log.Infof("Bound wallet %s to subject %s", wallet, subject)
		s.publish(ctx, EventWalletBound, wallet, subject, "")
		return nil
	case errors.Is(err, ErrInvalidSignature):
		s.reject(ctx, wallet, subject, reasoncodes.ErrSignatureInvalid)
		return err
	case errors.Is(err, ErrNoPendingNonce):
		s.reject(ctx, wallet, subject, reasoncodes.ErrNoPendingNonce)
		return err
	default:
		s.metrics.BindAttempt("error")
		log.WithField("reason", reasoncodes.ErrPersistence.String()).Errorf(err, "Bind failed for wallet %s", wallet)
		return err
	}
}

func (s *Service) reject(ctx context.Context, wallet, subject string, reason reasoncodes.ReasonCode) {
	s.metrics.BindAttempt("rejected")
	s.logger.WithContext(ctx).WithField("reason", reason.String()).Warnf("Bind rejected for wallet %s", wallet)
	s.publish(ctx, EventBindRejected, wallet, subject, reason.String())
}

func (s *Service) State(ctx context.Context, wallet string) (State, error) {
	row, err := s.repo.FindByWallet(ctx, wallet)
	if err != nil {
		return "", fmt.Errorf("load wallet binding: %w", err)
	}
	switch {
	case row == nil:
		return StateUnbound, nil
	case row.PendingNonce != nil:
		return StateNonceIssued, nil
	case row.BoundAt != nil && row.Subject != nil:
		return StateBound, nil
	default:
		return StateUnbound, nil
	}
}

// OwnedWallet returns the wallet identity may act on for balance-affecting
// operations: an address from signed wallet claims, else a completed
// binding. The subject fallback is never used here.
func (s *Service) OwnedWallet(ctx context.Context, identity *tokens.VerifiedIdentity) (walletaddr.Resolution, error) {
	if res, ok := walletaddr.Resolve(identity.Subject, identity.Claims); ok && res.Authoritative() {
		return res, nil
	}

	row, err := s.repo.FindBySubject(ctx, identity.Subject)
	if err != nil {
		return walletaddr.Resolution{}, fmt.Errorf("load binding for subject: %w", err)
	}
	if row == nil {
		return walletaddr.Resolution{}, ErrWalletNotFound
	}
	return walletaddr.Resolution{Address: row.WalletAddress, Source: walletaddr.SourceBinding}, nil
}

// LookupWallet is the read-only resolution used for display. An explicit
// address is accepted after the shape check and reported as
// non-authoritative unless identity has bound it.
func (s *Service) LookupWallet(ctx context.Context, identity *tokens.VerifiedIdentity, requested string) (WalletLookup, error) {
	var res walletaddr.Resolution
	requested = strings.TrimSpace(requested)

	if requested != "" {
		if !walletaddr.IsWalletAddress(requested) {
			return WalletLookup{}, ErrInvalidWalletAddress
		}
		res = walletaddr.Resolution{Address: requested, Source: walletaddr.SourceParameter}
	} else {
		owned, err := s.OwnedWallet(ctx, identity)
		switch {
		case err == nil:
			res = owned
		case !errors.Is(err, ErrWalletNotFound):
			return WalletLookup{}, err
		default:
			fallback, ok := walletaddr.Resolve(identity.Subject, identity.Claims)
			if !ok {
				return WalletLookup{}, ErrWalletNotFound
			}
			res = fallback
		}
	}

	row, err := s.repo.FindByWallet(ctx, res.Address)
	if err != nil {
		return WalletLookup{}, fmt.Errorf("load wallet binding: %w", err)
	}
	bound := row != nil && row.BoundAt != nil && row.Subject != nil && *row.Subject == identity.Subject
	if bound && !res.Authoritative() {
		res.Source = walletaddr.SourceBinding
	}
	return WalletLookup{Resolution: res, Bound: bound}, nil
}

func (s *Service) publish(ctx context.Context, kind EventKind, wallet, subject, reason string) {
	if s.events == nil {
		return
	}
	event := Event{
		EventID:       uuid.NewString(),
		Kind:          kind,
		WalletAddress: wallet,
		Subject:       subject,
		Reason:        reason,
		OccurredAt:    timeutil.NowUTC(),
	}
	if err := s.events.PublishEvent(ctx, event); err != nil {
		s.logger.WithContext(ctx).WithField("reason", reasoncodes.ErrEventPublish.String()).
			Errorf(err, "Failed to publish %s event", kind)
	}
}
