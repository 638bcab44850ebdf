package binding

import (
	"context"
	"sync"
	"time"

	"learnsol-identity/internal/app/model"
)

// InMemoryRepository keeps bindings in a map guarded by one mutex. It gives
// the same conditional-update guarantees as the gorm repository.
type InMemoryRepository struct {
	mu     sync.Mutex
	rows   map[string]*model.WalletBinding
	nextID uint
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{rows: make(map[string]*model.WalletBinding)}
}

func (r *InMemoryRepository) FindByWallet(_ context.Context, wallet string) (*model.WalletBinding, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.rows[wallet]
	if !ok {
		return nil, nil
	}
	return clone(row), nil
}

func (r *InMemoryRepository) FindBySubject(_ context.Context, subject string) (*model.WalletBinding, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, row := range r.rows {
		if row.Subject != nil && *row.Subject == subject && row.BoundAt != nil {
			return clone(row), nil
		}
	}
	return nil, nil
}

func (r *InMemoryRepository) SetPendingNonce(_ context.Context, wallet, subject, nonce string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	row, ok := r.rows[wallet]
	if !ok {
		r.nextID++
		row = &model.WalletBinding{ID: r.nextID, WalletAddress: wallet, CreatedAt: now}
		r.rows[wallet] = row
	}
	row.PendingNonce = &nonce
	row.RequestedBy = &subject
	row.UpdatedAt = now
	return nil
}

func (r *InMemoryRepository) ConsumeNonce(_ context.Context, wallet, subject, nonce string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.rows[wallet]
	if !ok || row.PendingNonce == nil || *row.PendingNonce != nonce ||
		row.RequestedBy == nil || *row.RequestedBy != subject {
		return false, nil
	}

	for addr, other := range r.rows {
		if addr != wallet && other.Subject != nil && *other.Subject == subject {
			other.Subject = nil
			other.UpdatedAt = at
		}
	}

	boundAt := at
	row.PendingNonce = nil
	row.RequestedBy = nil
	row.Subject = &subject
	row.BoundAt = &boundAt
	row.UpdatedAt = at
	return true, nil
}

func clone(row *model.WalletBinding) *model.WalletBinding {
	c := *row
	return &c
}
