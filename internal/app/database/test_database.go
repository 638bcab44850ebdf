package database

import (
	"fmt"
	"os"
	"strings"
	"testing"

	"gorm.io/gorm"
)

var testDBNames = strings.NewReplacer("/", "_", "#", "_", "?", "_")

// SetupTestDB returns a migrated database private to t. It uses an in-memory
// sqlite database unless TEST_DB_CONNECTION_STRING points at postgres.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	cfg := DatabaseConfig{
		Driver:           DriverSqlite,
		ConnectionString: fmt.Sprintf("file:%s?mode=memory&cache=shared", testDBNames.Replace(t.Name())),
	}
	if conn := os.Getenv("TEST_DB_CONNECTION_STRING"); conn != "" {
		cfg = DatabaseConfig{Driver: DriverPostgres, ConnectionString: conn}
	}

	db, err := Open(cfg)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if cfg.Driver == DriverPostgres {
		if err := db.Migrator().DropTable(migratedModels...); err != nil {
			t.Fatalf("Failed to clean database: %v", err)
		}
	}

	if err := AutoMigrate(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err != nil {
			t.Errorf("Failed to get underlying *sql.DB: %v", err)
			return
		}
		if err := sqlDB.Close(); err != nil {
			t.Errorf("Failed to close database connection: %v", err)
		}
	})

	return db
}
