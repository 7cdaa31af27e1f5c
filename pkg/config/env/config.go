// Package env provides config.Config sources backed by environment variables.
package env

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/code-payments/code-vault/pkg/config"
	"github.com/code-payments/code-vault/pkg/config/wrapper"
)

// snapshot holds the variable's value as of construction. Later changes to
// the environment are not observed.
type snapshot struct {
	raw string
	set bool
}

// NewConfig snapshots the named variable. Keys are upper cased. An unset or
// empty variable yields config.ErrNoValue, otherwise Get returns raw bytes.
func NewConfig(key string) config.Config {
	raw, set := os.LookupEnv(strings.ToUpper(key))
	return &snapshot{raw: raw, set: set && len(raw) > 0}
}

// Get implements config.Config.Get
func (s *snapshot) Get(_ context.Context) (interface{}, error) {
	if !s.set {
		return nil, config.ErrNoValue
	}
	return []byte(s.raw), nil
}

// Shutdown implements config.Config.Shutdown
func (s *snapshot) Shutdown() {}

// NewInt64Config returns an int64 read from key, or defaultValue.
func NewInt64Config(key string, defaultValue int64) config.Int64 {
	return wrapper.NewInt64Config(NewConfig(key), defaultValue)
}

// NewUint64Config returns a uint64 read from key, or defaultValue.
func NewUint64Config(key string, defaultValue uint64) config.Uint64 {
	return wrapper.NewUint64Config(NewConfig(key), defaultValue)
}

// NewStringConfig returns the string value of key, or defaultValue.
func NewStringConfig(key string, defaultValue string) config.String {
	return wrapper.NewStringConfig(NewConfig(key), defaultValue)
}

// NewBoolConfig returns a bool read from key, or defaultValue.
func NewBoolConfig(key string, defaultValue bool) config.Bool {
	return wrapper.NewBoolConfig(NewConfig(key), defaultValue)
}

// NewDurationConfig returns a duration such as "5s" read from key, or
// defaultValue.
func NewDurationConfig(key string, defaultValue time.Duration) config.Duration {
	return wrapper.NewDurationConfig(NewConfig(key), defaultValue)
}
