package solana

import (
	"crypto/ed25519"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Produced by the Solana SDK transaction tests, with a keypair whose public
// half matches its seed.
//
// Source: https://github.com/solana-labs/solana/blob/14339dec0a960e8161d1165b6a8e5cfb73e78f23/sdk/src/transaction.rs#L523
const sdkGenerated = "ATMfBMZ8phHEheLph8K9TJhRKhnE4qNZvWiXdUdJRmlTCRsQjWmW2CkQJeRHBCcsqFm2gynjL40M9mTe0Dxp4QIBAAEDfEya6wnC7f3Cv53qnOEywwIJ928rIdqAlfXYI1adXroBAQEEBQYHCAkJCQkJCQkJCQkJCQkJCQkIBwYFBAEBAQICAgQFBgcICQEBAQEBAQEBAQEBAQEBCQgHBgUEAgICAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAABAgIAAQMBAgM="

func TestTransaction_CrossImpl(t *testing.T) {
	keypair := ed25519.NewKeyFromSeed([]byte{48, 83, 2, 1, 1, 48, 5, 6, 3, 43, 101, 112, 4, 34, 4, 32, 255, 101, 36, 24, 124, 23,
		167, 21, 132, 204, 155, 5, 185, 58, 121, 75})
	programID := ed25519.PublicKey{2, 2, 2, 4, 5, 6, 7, 8, 9, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 9, 8, 7, 6, 5, 4,
		2, 2, 2}
	to := ed25519.PublicKey{1, 1, 1, 4, 5, 6, 7, 8, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 8, 7, 6, 5, 4, 1, 1, 1}

	tx := NewTransaction(
		public(keypair),
		NewInstruction(
			programID,
			[]byte{1, 2, 3},
			NewAccountMeta(public(keypair), true),
			NewAccountMeta(to, false),
		),
	)
	require.NoError(t, tx.Sign(keypair))
	assert.Equal(t, sdkGenerated, base64.StdEncoding.EncodeToString(tx.Marshal()))

	decoded, err := base64.StdEncoding.DecodeString(sdkGenerated)
	require.NoError(t, err)

	var rtt Transaction
	require.NoError(t, rtt.Unmarshal(decoded))
	assert.Equal(t, tx, rtt)
	assert.NoError(t, rtt.VerifySignatures())
}

func TestTransaction_AccountOrdering(t *testing.T) {
	keys := generateKeys(t, 5)
	payer, owner, vault, readonly, program := public(keys[0]), public(keys[1]), public(keys[2]), public(keys[3]), public(keys[4])

	tx := NewTransaction(
		payer,
		NewInstruction(
			program,
			[]byte{0},
			NewAccountMeta(owner, true),
			NewAccountMeta(vault, false),
			NewReadonlyAccountMeta(readonly, false),
		),
	)

	m := tx.Message
	require.Len(t, m.Accounts, 5)
	assert.Equal(t, payer, m.Accounts[0])
	assert.Equal(t, owner, m.Accounts[1])
	assert.Equal(t, vault, m.Accounts[2])
	assert.Equal(t, readonly, m.Accounts[3])
	assert.Equal(t, program, m.Accounts[4])

	assert.EqualValues(t, 2, m.Header.NumSignatures)
	assert.EqualValues(t, 0, m.Header.NumReadonlySigned)
	assert.EqualValues(t, 2, m.Header.NumReadOnly)

	for i, expected := range []struct{ signer, writable bool }{
		{true, true},
		{true, true},
		{false, true},
		{false, false},
		{false, false},
	} {
		assert.Equal(t, expected.signer, m.IsSigner(i), i)
		assert.Equal(t, expected.writable, m.IsWritable(i), i)
	}

	require.Len(t, m.Instructions, 1)
	assert.EqualValues(t, 4, m.Instructions[0].ProgramIndex)
	assert.Equal(t, []byte{1, 2, 3}, m.Instructions[0].Accounts)
	assert.Len(t, tx.Signatures, 2)
	assert.Equal(t, []ed25519.PublicKey{payer, owner}, m.Signers())
}

func TestTransaction_DuplicateKeysMerged(t *testing.T) {
	keys := generateKeys(t, 3)
	payer, account, program := public(keys[0]), public(keys[1]), public(keys[2])

	tx := NewTransaction(
		payer,
		NewInstruction(program, nil, NewReadonlyAccountMeta(account, false)),
		NewInstruction(program, nil, NewAccountMeta(account, false), NewReadonlyAccountMeta(payer, false)),
	)

	m := tx.Message
	require.Len(t, m.Accounts, 3)
	assert.Equal(t, account, m.Accounts[1])
	assert.True(t, m.IsWritable(1))
	assert.True(t, m.IsWritable(0))
	assert.EqualValues(t, 1, m.Header.NumSignatures)
	assert.EqualValues(t, 1, m.Header.NumReadOnly)

	assert.Equal(t, []byte{1}, m.Instructions[0].Accounts)
	assert.Equal(t, []byte{1, 0}, m.Instructions[1].Accounts)
}

func TestTransaction_SignAndVerify(t *testing.T) {
	keys := generateKeys(t, 3)
	payer, owner, program := keys[0], keys[1], public(keys[2])

	tx := NewTransaction(
		public(payer),
		NewInstruction(program, []byte{1}, NewAccountMeta(public(owner), true)),
	)
	tx.SetBlockhash(Blockhash{1, 2, 3})

	assert.ErrorIs(t, tx.VerifySignatures(), ErrMissingSignature)

	require.NoError(t, tx.Sign(payer))
	assert.ErrorIs(t, tx.VerifySignatures(), ErrMissingSignature)

	require.NoError(t, tx.Sign(owner))
	assert.NoError(t, tx.VerifySignatures())
	assert.Equal(t, tx.Signatures[0][:], tx.Signature())

	// Any change to the message invalidates the signatures.
	tampered := tx
	tampered.Message.RecentBlockhash = Blockhash{4, 5, 6}
	assert.ErrorIs(t, tampered.VerifySignatures(), ErrInvalidSignature)

	assert.Error(t, tx.Sign(keys[2]))
}

func TestTransaction_MarshalRoundTrip(t *testing.T) {
	keys := generateKeys(t, 4)

	tx := NewTransaction(
		public(keys[0]),
		NewInstruction(public(keys[3]), []byte{1, 0, 0, 0, 0, 0, 0, 0, 4}, NewAccountMeta(public(keys[1]), true), NewAccountMeta(public(keys[2]), false)),
		NewInstruction(public(keys[3]), []byte{2}, NewAccountMeta(public(keys[1]), true), NewAccountMeta(public(keys[2]), false)),
	)
	tx.SetBlockhash(Blockhash{9})
	require.NoError(t, tx.Sign(keys[0], keys[1]))

	var rtt Transaction
	require.NoError(t, rtt.Unmarshal(tx.Marshal()))
	assert.Equal(t, tx, rtt)
	assert.NoError(t, rtt.VerifySignatures())
	assert.NotEmpty(t, rtt.String())
}

func TestTransaction_InvalidEncodings(t *testing.T) {
	keys := generateKeys(t, 2)

	newTx := func() Transaction {
		return NewTransaction(
			public(keys[0]),
			NewInstruction(public(keys[1]), nil, NewAccountMeta(public(keys[0]), true)),
		)
	}

	tx := newTx()
	tx.Message.Instructions[0].ProgramIndex = 2
	assert.Error(t, (&Transaction{}).Unmarshal(tx.Marshal()))

	tx = newTx()
	tx.Message.Instructions[0].Accounts = []byte{2}
	assert.Error(t, (&Transaction{}).Unmarshal(tx.Marshal()))

	tx = newTx()
	encoded := tx.Marshal()
	assert.Error(t, (&Transaction{}).Unmarshal(encoded[:len(encoded)-10]))

	tx = newTx()
	tx.Message.Header.NumReadOnly = 5
	assert.Error(t, (&Transaction{}).Unmarshal(tx.Marshal()))

	assert.Error(t, (&Message{}).Unmarshal(nil))
	assert.Error(t, (&Message{}).Unmarshal([]byte{0x80, 1, 0, 0}))
}

func public(priv ed25519.PrivateKey) ed25519.PublicKey {
	return priv.Public().(ed25519.PublicKey)
}

func generateKeys(t *testing.T, amount int) []ed25519.PrivateKey {
	keys := make([]ed25519.PrivateKey, amount)

	for i := 0; i < amount; i++ {
		_, priv, err := ed25519.GenerateKey(nil)
		require.NoError(t, err)
		keys[i] = priv
	}

	return keys
}
