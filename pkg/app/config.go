package app

import (
	"github.com/spf13/viper"

	pg "github.com/code-payments/code-vault/pkg/database/postgres"
)

// BaseConfig is the process level configuration shared by every binary.
type BaseConfig struct {
	LogLevel string `mapstructure:"log_level"`

	AppName string `mapstructure:"app_name"`

	// Metrics and log forwarding are enabled when set
	NewRelicLicenseKey string `mapstructure:"new_relic_license_key"`

	// Accounts are kept in memory unless a host is configured
	Postgres pg.Config `mapstructure:"postgres"`
}

var defaultConfig = BaseConfig{
	LogLevel: "info",

	AppName: "code-vault",

	Postgres: pg.Config{
		Port:               5432,
		MaxOpenConnections: 10,
		MaxIdleConnections: 5,
	},
}

// HasPostgres reports whether a postgres account store is configured.
func (c *BaseConfig) HasPostgres() bool {
	return len(c.Postgres.Host) > 0
}

func bindEnvs(v *viper.Viper) {
	_ = v.BindEnv("log_level", "LOG_LEVEL")

	_ = v.BindEnv("app_name", "APP_NAME")

	_ = v.BindEnv("new_relic_license_key", "NEW_RELIC_LICENSE_KEY")

	_ = v.BindEnv("postgres.user", "POSTGRES_USER")
	_ = v.BindEnv("postgres.host", "POSTGRES_HOST")
	_ = v.BindEnv("postgres.password", "POSTGRES_PASSWORD")
	_ = v.BindEnv("postgres.port", "POSTGRES_PORT")
	_ = v.BindEnv("postgres.db_name", "POSTGRES_DB_NAME")
	_ = v.BindEnv("postgres.max_open_connections", "POSTGRES_MAX_OPEN_CONNECTIONS")
	_ = v.BindEnv("postgres.max_idle_connections", "POSTGRES_MAX_IDLE_CONNECTIONS")
	_ = v.BindEnv("postgres.conn_max_lifetime", "POSTGRES_CONN_MAX_LIFETIME")
}
