package database

import (
	"fmt"
	"sync"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	appbuilder "learnsol-identity/pkg/app_builder"
	"learnsol-identity/pkg/utilities"
)

var (
	dbConn *gorm.DB
	dbMu   sync.RWMutex
)

// Config is implemented by application configs that carry a database section.
type Config interface {
	appbuilder.AppConfig
	GetDatabaseConfig() DatabaseConfig
}

func Open(cfg DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case DriverPostgres:
		dialector = postgres.Open(cfg.ConnectionString)
	case DriverSqlite:
		dialector = sqlite.Open(cfg.ConnectionString)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.Driver, err)
	}

	// sqlite serialises writers anyway; one connection keeps in-memory databases shared
	if cfg.Driver == DriverSqlite {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

func InitializeDatabaseConnection(cfg DatabaseConfig) error {
	db, err := Open(cfg)
	if err != nil {
		return err
	}
	SetDatabaseConnection(db)
	return nil
}

func SetDatabaseConnection(db *gorm.DB) {
	dbMu.Lock()
	defer dbMu.Unlock()
	dbConn = db
}

func GetDatabaseConnection() *gorm.DB {
	dbMu.RLock()
	defer dbMu.RUnlock()
	if dbConn == nil {
		panic("database connection not initialized: call InitializeDatabaseConnection() first")
	}
	return dbConn
}

// ConnectToDatabase is a builder option: it opens the configured database
// and runs migrations when the config asks for it.
func ConnectToDatabase[T utilities.JsonConfigObj[U], U Config](a *appbuilder.AppBuilder[T, U]) {
	cfg := a.Config.GetDatabaseConfig()
	a.Logger.Infof("Establishing connection to %s database...", cfg.Driver)

	if err := InitializeDatabaseConnection(cfg); err != nil {
		a.Logger.Fatal(err, "Cannot establish database connection")
	}
	a.Logger.Info("Database connection established successfully.")

	if cfg.Migrate {
		RunMigrations(GetDatabaseConnection(), a.Logger)
	}
}
