package memory

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/code-vault/pkg/config"
)

func TestConfig_Lifecycle(t *testing.T) {
	ctx := context.Background()

	c := NewConfig(uint64(200_000))
	val, err := c.Get(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 200_000, val)

	c.Set(uint64(2_000))
	val, err = c.Get(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2_000, val)

	c.Clear()
	_, err = c.Get(ctx)
	assert.Equal(t, config.ErrNoValue, err)

	unreachable := errors.New("source unreachable")
	c.Set(uint64(4))
	c.FailWith(unreachable)
	_, err = c.Get(ctx)
	assert.Equal(t, unreachable, err)

	c.FailWith(nil)
	val, err = c.Get(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 4, val)

	c.Shutdown()
	_, err = c.Get(ctx)
	assert.Equal(t, config.ErrShutdown, err)
}

func TestConfig_StartsUnset(t *testing.T) {
	_, err := NewConfig(nil).Get(context.Background())
	assert.Equal(t, config.ErrNoValue, err)
}
