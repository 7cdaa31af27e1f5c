package runtime

import (
	"context"
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/code-payments/code-vault/pkg/data/account/memory"
	"github.com/code-payments/code-vault/pkg/solana"
	"github.com/code-payments/code-vault/pkg/testutil"
)

const testLamportsPerSignature = 5000

type testEnv struct {
	ctx   context.Context
	bank  *Bank
	payer ed25519.PrivateKey
}

func setup(t *testing.T) *testEnv {
	return setupWithOverrides(t, &testOverrides{
		computeUnitLimit:     200_000,
		lamportsPerSignature: testLamportsPerSignature,
		maxInvokeDepth:       4,
	})
}

func setupWithOverrides(t *testing.T, overrides *testOverrides) *testEnv {
	env := &testEnv{
		ctx:   context.Background(),
		bank:  NewBank(memory.New(), withManualTestOverrides(overrides)),
		payer: testutil.GenerateSolanaKeypair(t),
	}
	require.NoError(t, env.bank.Airdrop(env.ctx, env.payerKey(), 1_000_000))
	return env
}

func (e *testEnv) payerKey() ed25519.PublicKey {
	return e.payer.Public().(ed25519.PublicKey)
}

func (e *testEnv) balance(t *testing.T, key ed25519.PublicKey) uint64 {
	balance, err := e.bank.GetBalance(e.ctx, key)
	require.NoError(t, err)
	return balance
}

func (e *testEnv) signed(t *testing.T, instructions []solana.Instruction, signers ...ed25519.PrivateKey) solana.Transaction {
	txn := solana.NewTransaction(e.payerKey(), instructions...)
	txn.SetBlockhash(e.bank.LatestBlockhash())
	require.NoError(t, txn.Sign(append([]ed25519.PrivateKey{e.payer}, signers...)...))
	return txn
}

func (e *testEnv) process(t *testing.T, instructions []solana.Instruction, signers ...ed25519.PrivateKey) *Result {
	result, err := e.bank.ProcessTransaction(e.ctx, e.signed(t, instructions, signers...))
	require.NoError(t, err)
	return result
}

func (e *testEnv) register(t *testing.T, program Program) ed25519.PublicKey {
	id := testutil.GenerateSolanaKeys(t, 1)[0]
	require.NoError(t, e.bank.RegisterProgram(id, program))
	return id
}
