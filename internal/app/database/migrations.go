package database

import (
	"gorm.io/gorm"

	"learnsol-identity/internal/app/model"
	"learnsol-identity/pkg/logger"
)

var migratedModels = []any{
	&model.WalletBinding{},
	&model.AuditEntry{},
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(migratedModels...)
}

func RunMigrations(db *gorm.DB, l *logger.Logger) {
	l.Info("Running migrations for tables... ")

	if err := AutoMigrate(db); err != nil {
		l.Fatal(err, "Migrating database failed")
	}

	l.Info("All tables created (or already exist).")
}
