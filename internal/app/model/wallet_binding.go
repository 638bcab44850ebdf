package model

import "time"

// WalletBinding is the single row kept per wallet address. PendingNonce and
// RequestedBy are set together on issue and cleared together on bind.
type WalletBinding struct {
	ID            uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	WalletAddress string     `gorm:"type:varchar(44);uniqueIndex;not null" json:"walletAddress"`
	Subject       *string    `gorm:"type:varchar(255);uniqueIndex" json:"subject,omitempty"`
	PendingNonce  *string    `gorm:"type:varchar(64)" json:"-"`
	RequestedBy   *string    `gorm:"type:varchar(255)" json:"-"`
	BoundAt       *time.Time `json:"boundAt,omitempty"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (WalletBinding) TableName() string {
	return "wallet_bindings"
}
