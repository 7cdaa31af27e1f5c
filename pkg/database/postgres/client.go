package pg

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/newrelic/go-agent/v3/integrations/nrpgx"
	"github.com/pkg/errors"
)

const driverName = "nrpgx"

type Config struct {
	User               string        `mapstructure:"user"`
	Host               string        `mapstructure:"host"`
	Password           string        `mapstructure:"password"`
	Port               int           `mapstructure:"port"`
	DbName             string        `mapstructure:"db_name"`
	MaxOpenConnections int           `mapstructure:"max_open_connections"`
	MaxIdleConnections int           `mapstructure:"max_idle_connections"`
	ConnMaxLifetime    time.Duration `mapstructure:"conn_max_lifetime"`
}

// Validate checks the settings required to open a connection.
func (c *Config) Validate() error {
	if len(c.Host) == 0 {
		return errors.New("postgres host is required")
	}
	if len(c.User) == 0 {
		return errors.New("postgres user is required")
	}
	if len(c.DbName) == 0 {
		return errors.New("postgres db name is required")
	}
	if c.Port <= 0 {
		return errors.New("postgres port must be positive")
	}
	return nil
}

// NewFromConfig opens a pooled connection using password credentials and
// applies the configured pool limits.
func NewFromConfig(c *Config) (*sql.DB, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	db, err := NewWithUsernameAndPassword(c.User, c.Password, c.Host, fmt.Sprint(c.Port), c.DbName)
	if err != nil {
		return nil, err
	}

	if c.MaxOpenConnections > 0 {
		db.SetMaxOpenConns(c.MaxOpenConnections)
	}
	if c.MaxIdleConnections > 0 {
		db.SetMaxIdleConns(c.MaxIdleConnections)
	}
	if c.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(c.ConnMaxLifetime)
	}

	return db, nil
}

// NewWithUsernameAndPassword gets a DB connection pool using username/password
// credentials.
func NewWithUsernameAndPassword(username, password, hostname, port, dbname string) (*sql.DB, error) {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		username, password, hostname, port, dbname,
	)

	// Open through the New Relic instrumented pgx driver (instead of "postgres")
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, err
	}

	// Check if the connection was successful
	err = db.Ping()
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}
