package audit

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"learnsol-identity/internal/app/model"
)

type Repository interface {
	// CreateEntry ignores an entry whose event id is already stored, so a
	// redelivered message is written once.
	CreateEntry(ctx context.Context, entry model.AuditEntry) error
	GetEntriesBySubject(ctx context.Context, subject string, limit, offset int) ([]model.AuditEntry, error)
	GetEntriesByWallet(ctx context.Context, wallet string, limit, offset int) ([]model.AuditEntry, error)
	DeleteEntriesBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateEntry(ctx context.Context, entry model.AuditEntry) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "event_id"}}, DoNothing: true}).
		Create(&entry).Error
}

func (r *repository) GetEntriesBySubject(ctx context.Context, subject string, limit, offset int) ([]model.AuditEntry, error) {
	var entries []model.AuditEntry
	result := r.db.WithContext(ctx).Where("subject = ?", subject).
		Order("occurred_at DESC, id DESC").Limit(limit).Offset(offset).Find(&entries)
	return entries, result.Error
}

func (r *repository) GetEntriesByWallet(ctx context.Context, wallet string, limit, offset int) ([]model.AuditEntry, error) {
	var entries []model.AuditEntry
	result := r.db.WithContext(ctx).Where("wallet_address = ?", wallet).
		Order("occurred_at DESC, id DESC").Limit(limit).Offset(offset).Find(&entries)
	return entries, result.Error
}

func (r *repository) DeleteEntriesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("occurred_at < ?", cutoff).Delete(&model.AuditEntry{})
	return result.RowsAffected, result.Error
}
