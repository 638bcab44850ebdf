package binding

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"learnsol-identity/internal/app/model"
)

type Repository interface {
	// FindByWallet returns nil, nil when the wallet has no row.
	FindByWallet(ctx context.Context, wallet string) (*model.WalletBinding, error)
	// FindBySubject returns the wallet currently bound to subject, or nil.
	FindBySubject(ctx context.Context, subject string) (*model.WalletBinding, error)
	// SetPendingNonce creates the wallet row if needed and overwrites any
	// earlier pending nonce.
	SetPendingNonce(ctx context.Context, wallet, subject, nonce string) error
	// ConsumeNonce binds wallet to subject only if nonce is still the pending
	// nonce requested by subject. It reports false when nothing matched.
	ConsumeNonce(ctx context.Context, wallet, subject, nonce string, at time.Time) (bool, error)
}

var errNotConsumed = errors.New("pending nonce changed")

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) FindByWallet(ctx context.Context, wallet string) (*model.WalletBinding, error) {
	return r.first(ctx, "wallet_address = ?", wallet)
}

func (r *gormRepository) FindBySubject(ctx context.Context, subject string) (*model.WalletBinding, error) {
	return r.first(ctx, "subject = ? AND bound_at IS NOT NULL", subject)
}

func (r *gormRepository) first(ctx context.Context, query string, args ...any) (*model.WalletBinding, error) {
	var row model.WalletBinding
	err := r.db.WithContext(ctx).Where(query, args...).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *gormRepository) SetPendingNonce(ctx context.Context, wallet, subject, nonce string) error {
	row := model.WalletBinding{
		WalletAddress: wallet,
		PendingNonce:  &nonce,
		RequestedBy:   &subject,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "wallet_address"}},
		DoUpdates: clause.AssignmentColumns([]string{"pending_nonce", "requested_by", "updated_at"}),
	}).Create(&row).Error
}

func (r *gormRepository) ConsumeNonce(ctx context.Context, wallet, subject, nonce string, at time.Time) (bool, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// the subject keeps one wallet; older rows stay as history
		if err := tx.Model(&model.WalletBinding{}).
			Where("subject = ? AND wallet_address <> ?", subject, wallet).
			Update("subject", nil).Error; err != nil {
			return err
		}

		result := tx.Model(&model.WalletBinding{}).
			Where("wallet_address = ? AND pending_nonce = ? AND requested_by = ?", wallet, nonce, subject).
			Updates(map[string]any{
				"pending_nonce": nil,
				"requested_by":  nil,
				"subject":       subject,
				"bound_at":      at,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errNotConsumed
		}
		return nil
	})

	if errors.Is(err, errNotConsumed) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
