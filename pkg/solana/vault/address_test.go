package vault

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/code-vault/pkg/solana"
	"github.com/code-payments/code-vault/pkg/testutil"
)

func TestGetVaultAddress(t *testing.T) {
	owner := publicKey(testutil.DeterministicSolanaKeypair("vault owner"))

	address, bump, err := GetVaultAddress(&GetVaultAddressArgs{Owner: owner})
	require.NoError(t, err)

	again, againBump, err := GetVaultAddress(&GetVaultAddressArgs{Owner: owner})
	require.NoError(t, err)
	assert.Equal(t, address, again)
	assert.Equal(t, bump, againBump)

	assert.False(t, solana.IsOnCurve(address))
	assert.True(t, solana.VerifyProgramAddress(PROGRAM_ID, address, vaultPrefix, owner, []byte{bump}))

	// Every higher bump lands on the curve
	for candidate := 255; candidate > int(bump); candidate-- {
		_, err := solana.CreateProgramAddress(PROGRAM_ID, vaultPrefix, owner, []byte{uint8(candidate)})
		assert.Equal(t, solana.ErrInvalidPublicKey, err)
	}

	other, _, err := GetVaultAddress(&GetVaultAddressArgs{Owner: testutil.GenerateSolanaKeys(t, 1)[0]})
	require.NoError(t, err)
	assert.NotEqual(t, address, other)
}

func TestVaultSignerSeeds(t *testing.T) {
	owner := testutil.GenerateSolanaKeys(t, 1)[0]

	address, bump, err := GetVaultAddress(&GetVaultAddressArgs{Owner: owner})
	require.NoError(t, err)

	signed, err := solana.CreateProgramAddress(PROGRAM_ID, vaultSignerSeeds(owner, bump)...)
	require.NoError(t, err)
	assert.Equal(t, address, signed)
}
