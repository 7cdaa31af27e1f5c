package runtime

import (
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/code-payments/code-vault/pkg/testutil"
)

func TestAccountLocks(t *testing.T) {
	keys := testutil.GenerateSolanaKeys(t, 3)
	locks := newAccountLocks()

	ws := []ed25519.PublicKey{keys[0]}
	rs := []ed25519.PublicKey{keys[1]}

	assert.True(t, locks.tryLock(ws, rs))

	// Write conflicts
	assert.False(t, locks.tryLock([]ed25519.PublicKey{keys[0]}, nil))
	assert.False(t, locks.tryLock(nil, []ed25519.PublicKey{keys[0]}))
	assert.False(t, locks.tryLock([]ed25519.PublicKey{keys[1]}, nil))

	// Shared reads and disjoint writes are fine
	assert.True(t, locks.tryLock([]ed25519.PublicKey{keys[2]}, []ed25519.PublicKey{keys[1]}))

	// A failed attempt takes nothing
	assert.False(t, locks.tryLock([]ed25519.PublicKey{keys[0]}, nil))
	locks.unlock([]ed25519.PublicKey{keys[2]}, []ed25519.PublicKey{keys[1]})
	assert.Len(t, locks.writable, 1)
	assert.Equal(t, 1, locks.readonly[string(keys[1])])

	locks.unlock(ws, rs)
	assert.Empty(t, locks.writable)
	assert.Empty(t, locks.readonly)

	assert.True(t, locks.tryLock([]ed25519.PublicKey{keys[1]}, nil))
}
