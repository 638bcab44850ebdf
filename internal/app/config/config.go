package config

import (
	"strings"
	"time"

	"learnsol-identity/internal/app/database"
	"learnsol-identity/pkg/logger"
	"learnsol-identity/pkg/rabbitmq"
	"learnsol-identity/pkg/utilities"
)

const (
	EnvironmentDevelopment = "development"
	EnvironmentProduction  = "production"
)

type IdentityConfigJson struct {
	LoggerConf   logger.LoggerConfigJson     `json:"logger"`
	RabbitmqConf rabbitmq.RabbitmqConfigJson `json:"rabbitmq"`
	RestConf     RestConfigJson              `json:"rest"`
	DatabaseConf database.DatabaseConfigJson `json:"database"`
	AuthConf     AuthConfigJson              `json:"auth"`
	AuditConf    AuditConfigJson             `json:"audit"`
}

func (icj IdentityConfigJson) ConvertToDomain() IdentityConfig {
	return IdentityConfig{
		LoggerConf:   icj.LoggerConf.ConvertToDomain(),
		RabbitmqConf: icj.RabbitmqConf.ConvertToDomain(),
		RestConf:     icj.RestConf.ConvertToDomain(),
		DatabaseConf: icj.DatabaseConf.ConvertToDomain(),
		AuthConf:     icj.AuthConf.ConvertToDomain(),
		AuditConf:    icj.AuditConf.ConvertToDomain(),
	}
}

type IdentityConfig struct {
	LoggerConf   logger.LoggerConfig
	RabbitmqConf rabbitmq.RabbitmqConfig
	RestConf     RestConfig
	DatabaseConf database.DatabaseConfig
	AuthConf     AuthConfig
	AuditConf    AuditConfig
}

func (ic IdentityConfig) GetLoggerConfig() logger.LoggerConfig {
	return ic.LoggerConf
}

func (ic IdentityConfig) GetRabbitmqConfig() rabbitmq.RabbitmqConfig {
	return ic.RabbitmqConf
}

func (ic IdentityConfig) GetRestApiPort() uint16 {
	return ic.RestConf.Port
}

func (ic IdentityConfig) GetAllowedOrigins() []string {
	return ic.RestConf.AllowedOrigins
}

func (ic IdentityConfig) IsDevelopment() bool {
	return ic.RestConf.Environment == EnvironmentDevelopment
}

func (ic IdentityConfig) GetDatabaseConfig() database.DatabaseConfig {
	return ic.DatabaseConf
}

func (ic IdentityConfig) GetAuthConfig() AuthConfig {
	return ic.AuthConf
}

func (ic IdentityConfig) GetAuditConfig() AuditConfig {
	return ic.AuditConf
}

type RestConfigJson struct {
	Port           uint16   `json:"port"`
	AllowedOrigins []string `json:"allowed_origins"`
	Environment    string   `json:"environment"`
}

type RestConfig struct {
	Port           uint16
	AllowedOrigins []string
	Environment    string
}

func (rcj RestConfigJson) ConvertToDomain() RestConfig {
	env := strings.ToLower(utilities.GetenvDefault("APP_ENV", rcj.Environment))
	return RestConfig{
		Port:           utilities.Ternary(rcj.Port == 0, uint16(8080), rcj.Port),
		AllowedOrigins: rcj.AllowedOrigins,
		Environment:    utilities.Ternary(env == "", EnvironmentProduction, env),
	}
}

type AuthConfigJson struct {
	Issuer         string `json:"issuer"`
	JwksURL        string `json:"jwks_url"`
	Audience       string `json:"audience"`
	Algorithm      string `json:"algorithm"`
	MinRefresh     string `json:"min_refresh"`
	FetchTimeout   string `json:"fetch_timeout"`
	AcceptableSkew string `json:"acceptable_skew"`
	CookieName     string `json:"cookie_name"`
}

// AuthConfig describes the token issuer. When JwksURL is empty the key set
// location is discovered from Issuer.
type AuthConfig struct {
	Issuer         string
	JwksURL        string
	Audience       string
	Algorithm      string
	MinRefresh     time.Duration
	FetchTimeout   time.Duration
	AcceptableSkew time.Duration
	CookieName     string
}

func (acj AuthConfigJson) ConvertToDomain() AuthConfig {
	return AuthConfig{
		Issuer:         acj.Issuer,
		JwksURL:        utilities.GetenvDefault("JWKS_URL", acj.JwksURL),
		Audience:       acj.Audience,
		Algorithm:      utilities.Ternary(acj.Algorithm == "", "ES256", acj.Algorithm),
		MinRefresh:     parseDuration(acj.MinRefresh, 15*time.Minute),
		FetchTimeout:   parseDuration(acj.FetchTimeout, 5*time.Second),
		AcceptableSkew: parseDuration(acj.AcceptableSkew, 0),
		CookieName:     utilities.Ternary(acj.CookieName == "", "web3auth_token", acj.CookieName),
	}
}

type AuditConfigJson struct {
	Retention     string `json:"retention"`
	PruneSchedule string `json:"prune_schedule"`
}

// AuditConfig controls audit pruning. A zero Retention keeps entries forever.
type AuditConfig struct {
	Retention     time.Duration
	PruneSchedule string
}

func (acj AuditConfigJson) ConvertToDomain() AuditConfig {
	return AuditConfig{
		Retention:     parseDuration(acj.Retention, 90*24*time.Hour),
		PruneSchedule: utilities.Ternary(acj.PruneSchedule == "", "@daily", acj.PruneSchedule),
	}
}

func parseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return def
	}
	return d
}
