package wrapper

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/code-payments/code-vault/pkg/config"
)

// ErrUnsuportedConversion indicates the wrapper does not implement conversion from the source type
var ErrUnsuportedConversion = errors.New("config: wrapper conversion from source type not implemented")

// converter turns a raw source value into T. Env sources yield []byte.
type converter[T any] func(raw interface{}) (T, error)

// TypedConfig is a utility wrapper that converts a raw config.Config into T,
// falling back to a default when no value is set.
type TypedConfig[T any] struct {
	override     config.Config
	defaultValue T
	convert      converter[T]

	stateMu   sync.RWMutex
	lastValue T
}

func newTypedConfig[T any](override config.Config, defaultValue T, convert converter[T]) *TypedConfig[T] {
	return &TypedConfig[T]{
		override:     override,
		defaultValue: defaultValue,
		convert:      convert,
		lastValue:    defaultValue,
	}
}

// GetSafe gets a config value and propagates any errors that arise. A best-effort
// attempt is made to return the last known value
func (c *TypedConfig[T]) GetSafe(ctx context.Context) (T, error) {
	override, err := c.override.Get(ctx)
	c.stateMu.RLock()
	lastValue := c.lastValue
	c.stateMu.RUnlock()
	if err == config.ErrNoValue {
		c.stateMu.Lock()
		c.lastValue = c.defaultValue
		c.stateMu.Unlock()
		return c.defaultValue, nil
	} else if err != nil {
		return lastValue, err
	}

	newValue, err := c.convert(override)
	if err != nil {
		return lastValue, err
	}

	c.stateMu.Lock()
	c.lastValue = newValue
	c.stateMu.Unlock()
	return newValue, nil
}

// Get is a wrapper for GetSafe that ignores the returned error
func (c *TypedConfig[T]) Get(ctx context.Context) T {
	val, _ := c.GetSafe(ctx)
	return val
}

// Shutdown signals the config to stop all underlying resources
func (c *TypedConfig[T]) Shutdown() {
	c.override.Shutdown()
}

// NewBoolConfig returns a new bool config utility wrapper
func NewBoolConfig(override config.Config, defaultValue bool) config.Bool {
	return newTypedConfig(override, defaultValue, func(raw interface{}) (bool, error) {
		switch v := raw.(type) {
		case []byte:
			return strconv.ParseBool(string(v))
		case bool:
			return v, nil
		default:
			return false, ErrUnsuportedConversion
		}
	})
}

// NewInt64Config returns a new int64 config utility wrapper
func NewInt64Config(override config.Config, defaultValue int64) config.Int64 {
	return newTypedConfig(override, defaultValue, func(raw interface{}) (int64, error) {
		switch v := raw.(type) {
		case []byte:
			return strconv.ParseInt(string(v), 10, 64)
		case int64:
			return v, nil
		case int:
			return int64(v), nil
		default:
			return 0, ErrUnsuportedConversion
		}
	})
}

// NewUint64Config returns a new uint64 config utility wrapper
func NewUint64Config(override config.Config, defaultValue uint64) config.Uint64 {
	return newTypedConfig(override, defaultValue, func(raw interface{}) (uint64, error) {
		switch v := raw.(type) {
		case []byte:
			return strconv.ParseUint(string(v), 10, 64)
		case uint64:
			return v, nil
		case int:
			if v < 0 {
				return 0, errors.Errorf("negative value %d for uint64 config", v)
			}
			return uint64(v), nil
		default:
			return 0, ErrUnsuportedConversion
		}
	})
}

// NewStringConfig returns a new string config utility wrapper
func NewStringConfig(override config.Config, defaultValue string) config.String {
	return newTypedConfig(override, defaultValue, func(raw interface{}) (string, error) {
		switch v := raw.(type) {
		case []byte:
			return string(v), nil
		case string:
			return v, nil
		default:
			return "", ErrUnsuportedConversion
		}
	})
}

// NewDurationConfig returns a new duration config utility wrapper
func NewDurationConfig(override config.Config, defaultValue time.Duration) config.Duration {
	return newTypedConfig(override, defaultValue, func(raw interface{}) (time.Duration, error) {
		switch v := raw.(type) {
		case []byte:
			return time.ParseDuration(string(v))
		case time.Duration:
			return v, nil
		default:
			return 0, ErrUnsuportedConversion
		}
	})
}
