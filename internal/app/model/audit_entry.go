package model

import "time"

type AuditEntry struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	EventID       string    `gorm:"type:varchar(36);uniqueIndex;not null" json:"eventId"`
	Kind          string    `gorm:"type:varchar(32);not null;index" json:"kind"`
	WalletAddress string    `gorm:"type:varchar(44);not null;index" json:"walletAddress"`
	Subject       string    `gorm:"type:varchar(255);index" json:"subject"`
	Reason        string    `gorm:"type:varchar(64)" json:"reason,omitempty"`
	OccurredAt    time.Time `gorm:"not null;index" json:"occurredAt"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (AuditEntry) TableName() string {
	return "auth_audit_entries"
}
