// Package audit stores the binding flow's events as queryable audit entries.
package audit

import (
	"context"
	"time"

	"learnsol-identity/internal/app/binding"
	"learnsol-identity/internal/app/model"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

type Service interface {
	RecordEvent(ctx context.Context, event binding.Event) error
	GetEntriesBySubject(ctx context.Context, subject string, limit, offset int) ([]model.AuditEntry, error)
	GetEntriesByWallet(ctx context.Context, wallet string, limit, offset int) ([]model.AuditEntry, error)
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type service struct {
	repository Repository
}

func NewService(repository Repository) Service {
	return &service{repository: repository}
}

func (s *service) RecordEvent(ctx context.Context, event binding.Event) error {
	return s.repository.CreateEntry(ctx, model.AuditEntry{
		EventID:       event.EventID,
		Kind:          string(event.Kind),
		WalletAddress: event.WalletAddress,
		Subject:       event.Subject,
		Reason:        event.Reason,
		OccurredAt:    event.OccurredAt.Time(),
	})
}

func (s *service) GetEntriesBySubject(ctx context.Context, subject string, limit, offset int) ([]model.AuditEntry, error) {
	limit, offset = page(limit, offset)
	return s.repository.GetEntriesBySubject(ctx, subject, limit, offset)
}

func (s *service) GetEntriesByWallet(ctx context.Context, wallet string, limit, offset int) ([]model.AuditEntry, error) {
	limit, offset = page(limit, offset)
	return s.repository.GetEntriesByWallet(ctx, wallet, limit, offset)
}

func (s *service) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.repository.DeleteEntriesBefore(ctx, cutoff)
}

func page(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// NewDirectPublisher writes events straight to the audit table. Used when no
// message broker is configured.
func NewDirectPublisher(s Service) binding.EventPublisher {
	return binding.EventPublisherFunc(s.RecordEvent)
}
