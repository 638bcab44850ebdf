package database

import (
	"strings"

	"learnsol-identity/pkg/utilities"
)

type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverSqlite   Driver = "sqlite"
)

type DatabaseConfigJson struct {
	Driver           string `json:"driver"`
	ConnectionString string `json:"connection_string"`
	Migrate          bool   `json:"migrate"`
}

type DatabaseConfig struct {
	Driver           Driver
	ConnectionString string
	Migrate          bool
}

// ConvertToDomain applies the DATABASE_URL override and defaults the driver
// to postgres.
func (dcj DatabaseConfigJson) ConvertToDomain() DatabaseConfig {
	driver := Driver(strings.ToLower(strings.TrimSpace(dcj.Driver)))
	if driver == "" {
		driver = DriverPostgres
	}

	return DatabaseConfig{
		Driver:           driver,
		ConnectionString: utilities.GetenvDefault("DATABASE_URL", dcj.ConnectionString),
		Migrate:          dcj.Migrate,
	}
}
