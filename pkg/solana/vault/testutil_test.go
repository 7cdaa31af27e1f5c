package vault

import (
	"context"
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/code-vault/pkg/data/account"
	"github.com/code-payments/code-vault/pkg/data/account/memory"
	"github.com/code-payments/code-vault/pkg/solana"
	"github.com/code-payments/code-vault/pkg/solana/runtime"
	"github.com/code-payments/code-vault/pkg/testutil"
)

const testLamportsPerSignature = 5000

type testEnv struct {
	ctx   context.Context
	store account.Store
	bank  *runtime.Bank
	payer ed25519.PrivateKey
}

func setup(t *testing.T) *testEnv {
	return setupWithConfig(t, runtime.WithDefaultConfigs())
}

func setupWithConfig(t *testing.T, configProvider runtime.ConfigProvider) *testEnv {
	store := memory.New()

	env := &testEnv{
		ctx:   context.Background(),
		store: store,
		bank:  runtime.NewBank(store, configProvider),
		payer: testutil.GenerateSolanaKeypair(t),
	}
	require.NoError(t, env.bank.RegisterProgram(PROGRAM_ID, Program))
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

// newOwner creates a funded owner and returns it with its vault address.
func (e *testEnv) newOwner(t *testing.T, lamports uint64) (ed25519.PrivateKey, ed25519.PublicKey) {
	owner := testutil.GenerateSolanaKeypair(t)
	if lamports > 0 {
		require.NoError(t, e.bank.Airdrop(e.ctx, publicKey(owner), lamports))
	}

	vault, _, err := GetVaultAddress(&GetVaultAddressArgs{Owner: publicKey(owner)})
	require.NoError(t, err)
	return owner, vault
}

func (e *testEnv) process(t *testing.T, instruction solana.Instruction, signers ...ed25519.PrivateKey) *runtime.Result {
	return e.processWithPayer(t, e.payer, instruction, signers...)
}

func (e *testEnv) processWithPayer(t *testing.T, payer ed25519.PrivateKey, instruction solana.Instruction, signers ...ed25519.PrivateKey) *runtime.Result {
	txn := solana.NewTransaction(publicKey(payer), instruction)
	txn.SetBlockhash(e.bank.LatestBlockhash())
	require.NoError(t, txn.Sign(append([]ed25519.PrivateKey{payer}, signers...)...))

	result, err := e.bank.ProcessTransaction(e.ctx, txn)
	require.NoError(t, err)
	return result
}

func (e *testEnv) deposit(t *testing.T, owner ed25519.PrivateKey, vault ed25519.PublicKey, amount uint64) *runtime.Result {
	return e.process(t, NewDepositInstruction(
		&DepositInstructionAccounts{
			Owner: publicKey(owner),
			Vault: vault,
		},
		&DepositInstructionArgs{
			Amount: amount,
		},
	), owner)
}

func (e *testEnv) withdraw(t *testing.T, owner ed25519.PrivateKey, vault ed25519.PublicKey) *runtime.Result {
	return e.process(t, NewWithdrawInstruction(
		&WithdrawInstructionAccounts{
			Owner: publicKey(owner),
			Vault: vault,
		},
		&WithdrawInstructionArgs{},
	), owner)
}

func assertVaultError(t *testing.T, result *runtime.Result, expected VaultError) {
	require.NotNil(t, result.Err, "expected %v", expected)
	require.NotNil(t, result.Err.InstructionError())
	assert.Equal(t, solana.InstructionErrorCustom, result.Err.InstructionError().ErrorKey())
	assert.ErrorIs(t, result.Err, expected)
	assert.EqualValues(t, expected.Code(), result.ExitCode())
	assert.Zero(t, result.Fee)
}

func publicKey(key ed25519.PrivateKey) ed25519.PublicKey {
	return key.Public().(ed25519.PublicKey)
}
