package testutil

import (
	"crypto/ed25519"
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/require"
)

// GenerateSolanaKeypair returns a fresh random keypair, such as a vault owner
// or fee payer.
func GenerateSolanaKeypair(t testing.TB) ed25519.PrivateKey {
	_, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	return priv
}

// GenerateSolanaKeys returns n random addresses without their private keys.
func GenerateSolanaKeys(t testing.TB, n int) []ed25519.PublicKey {
	keys := make([]ed25519.PublicKey, 0, n)
	for len(keys) < n {
		keys = append(keys, GenerateSolanaKeypair(t).Public().(ed25519.PublicKey))
	}
	return keys
}

// DeterministicSolanaKeypair derives a keypair from name so fixtures are stable
// across runs and banks.
func DeterministicSolanaKeypair(name string) ed25519.PrivateKey {
	seed := sha256.Sum256([]byte(name))
	return ed25519.NewKeyFromSeed(seed[:])
}
