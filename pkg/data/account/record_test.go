package account

import (
	"crypto/ed25519"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_Validate(t *testing.T) {
	address, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	owner := make(ed25519.PublicKey, ed25519.PublicKeySize)

	r := NewRecord(address, owner, 10, nil)
	require.NoError(t, r.Validate())

	decoded, err := r.GetAddress()
	require.NoError(t, err)
	assert.Equal(t, address, decoded)

	decoded, err = r.GetOwner()
	require.NoError(t, err)
	assert.Equal(t, owner, decoded)

	invalid := r.Clone()
	invalid.Address = ""
	assert.ErrorIs(t, invalid.Validate(), ErrInvalidAccount)

	invalid = r.Clone()
	invalid.Owner = "0OIl"
	assert.ErrorIs(t, invalid.Validate(), ErrInvalidAccount)

	invalid = r.Clone()
	invalid.Lamports = math.MaxInt64 + 1
	assert.ErrorIs(t, invalid.Validate(), ErrInvalidAccount)
}

func TestRecord_CloneIsDeep(t *testing.T) {
	address, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	r := NewRecord(address, address, 1, []byte{1, 2, 3})

	cloned := r.Clone()
	cloned.Data[0] = 9
	assert.EqualValues(t, 1, r.Data[0])

	var dst Record
	r.CopyTo(&dst)
	dst.Data[1] = 9
	assert.EqualValues(t, 2, r.Data[1])
	assert.Equal(t, r.Address, dst.Address)
	assert.Equal(t, r.Lamports, dst.Lamports)
}
