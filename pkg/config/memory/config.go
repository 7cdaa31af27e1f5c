// Package memory provides a config.Config whose value is set in process,
// used to override runtime parameters in tests.
package memory

import (
	"context"
	"sync"

	"github.com/code-payments/code-vault/pkg/config"
)

// Config holds a single override value. A nil value means unset.
type Config struct {
	mu       sync.RWMutex
	value    interface{}
	failure  error
	shutdown bool
}

// NewConfig returns a Config holding value. Pass nil to start unset.
func NewConfig(value interface{}) *Config {
	return &Config{value: value}
}

// Get implements config.Config.Get
func (c *Config) Get(_ context.Context) (interface{}, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	switch {
	case c.shutdown:
		return nil, config.ErrShutdown
	case c.failure != nil:
		return nil, c.failure
	case c.value == nil:
		return nil, config.ErrNoValue
	}
	return c.value, nil
}

// Shutdown implements config.Config.Shutdown
func (c *Config) Shutdown() {
	c.mu.Lock()
	c.shutdown = true
	c.mu.Unlock()
}

// Set replaces the override. Set(nil) is equivalent to Clear.
func (c *Config) Set(value interface{}) {
	c.mu.Lock()
	c.value = value
	c.mu.Unlock()
}

// Clear removes the override so Get reports config.ErrNoValue.
func (c *Config) Clear() {
	c.Set(nil)
}

// FailWith makes Get return err, simulating an unreachable config source.
// FailWith(nil) restores normal behaviour.
func (c *Config) FailWith(err error) {
	c.mu.Lock()
	c.failure = err
	c.mu.Unlock()
}
