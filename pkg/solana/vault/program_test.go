package vault

import (
	"crypto/ed25519"
	"fmt"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/code-vault/pkg/data/account"
	"github.com/code-payments/code-vault/pkg/solana"
	"github.com/code-payments/code-vault/pkg/solana/runtime"
	"github.com/code-payments/code-vault/pkg/solana/system"
	"github.com/code-payments/code-vault/pkg/testutil"
)

func TestDepositAndWithdraw(t *testing.T) {
	env := setup(t)
	owner, vault := env.newOwner(t, 10)

	result := env.deposit(t, owner, vault, 4)
	require.Nil(t, result.Err, result.Logs)
	assert.EqualValues(t, 2*testLamportsPerSignature, result.Fee)
	assert.EqualValues(t, 6, env.balance(t, publicKey(owner)))
	assert.EqualValues(t, 4, env.balance(t, vault))

	result = env.withdraw(t, owner, vault)
	require.Nil(t, result.Err, result.Logs)
	assert.EqualValues(t, 10, env.balance(t, publicKey(owner)))
	assert.EqualValues(t, 0, env.balance(t, vault))

	assert.EqualValues(t, 1_000_000-4*testLamportsPerSignature, env.balance(t, env.payerKey()))
}

func TestDeposit_Logs(t *testing.T) {
	env := setup(t)
	owner, vault := env.newOwner(t, 10)

	_, bump, err := GetVaultAddress(&GetVaultAddressArgs{Owner: publicKey(owner)})
	require.NoError(t, err)

	result := env.deposit(t, owner, vault, 4)
	require.Nil(t, result.Err)

	attempts := uint64(256 - int(bump))
	assert.EqualValues(t, 2*1000+attempts*1500+150, result.ComputeUnitsConsumed)

	programName := base58.Encode(PROGRAM_ID)
	systemName := base58.Encode(system.SystemAccount)
	require.Len(t, result.Logs, 7)
	assert.Equal(t, fmt.Sprintf("Program %s invoke [1]", programName), result.Logs[0])
	assert.Equal(t, "Program log: Instruction: Deposit", result.Logs[1])
	assert.Equal(t, fmt.Sprintf("Program %s invoke [2]", systemName), result.Logs[2])
	assert.Equal(t, fmt.Sprintf("Program %s success", systemName), result.Logs[4])
	assert.Equal(t, fmt.Sprintf("Program %s success", programName), result.Logs[6])
}

func TestWithdraw_EmptyVault(t *testing.T) {
	env := setup(t)
	owner, vault := env.newOwner(t, 10)

	assertVaultError(t, env.withdraw(t, owner, vault), ErrEmptyVault)
	assert.EqualValues(t, 10, env.balance(t, publicKey(owner)))
	assert.EqualValues(t, 0, env.balance(t, vault))
	assert.EqualValues(t, 1_000_000, env.balance(t, env.payerKey()))
}

func TestDeposit_VaultAlreadyFunded(t *testing.T) {
	env := setup(t)
	owner, vault := env.newOwner(t, 10)

	// The vault can be funded from outside the program
	require.NoError(t, env.bank.Airdrop(env.ctx, vault, 5))

	assertVaultError(t, env.deposit(t, owner, vault, 1), ErrVaultAlreadyFunded)
	assert.EqualValues(t, 10, env.balance(t, publicKey(owner)))
	assert.EqualValues(t, 5, env.balance(t, vault))

	// A vault funded by the program cannot be topped up
	env = setup(t)
	owner, vault = env.newOwner(t, 10)
	require.Nil(t, env.deposit(t, owner, vault, 3).Err)
	assertVaultError(t, env.deposit(t, owner, vault, 2), ErrVaultAlreadyFunded)
	assert.EqualValues(t, 7, env.balance(t, publicKey(owner)))
	assert.EqualValues(t, 3, env.balance(t, vault))
}

func TestDeposit_ZeroAmount(t *testing.T) {
	env := setup(t)
	owner, vault := env.newOwner(t, 10)

	assertVaultError(t, env.deposit(t, owner, vault, 0), ErrZeroAmountDeposit)
	assert.EqualValues(t, 10, env.balance(t, publicKey(owner)))
	assert.EqualValues(t, 0, env.balance(t, vault))
}

func TestDeposit_TransferFailed(t *testing.T) {
	env := setup(t)
	owner, vault := env.newOwner(t, 10)

	result := env.deposit(t, owner, vault, 11)
	assertVaultError(t, result, ErrTransferFailed)
	assert.Contains(t, result.Logs, fmt.Sprintf("Program %s failed: %v", base58.Encode(system.SystemAccount), system.ErrorResultWithNegativeLamports))
	assert.EqualValues(t, 10, env.balance(t, publicKey(owner)))
	assert.EqualValues(t, 0, env.balance(t, vault))
}

func TestMissingSigner(t *testing.T) {
	env := setup(t)
	owner, vault := env.newOwner(t, 10)
	require.NoError(t, env.bank.Airdrop(env.ctx, vault, 5))

	deposit := NewDepositInstruction(
		&DepositInstructionAccounts{Owner: publicKey(owner), Vault: vault},
		&DepositInstructionArgs{Amount: 1},
	)
	deposit.Accounts[0].IsSigner = false

	withdraw := NewWithdrawInstruction(
		&WithdrawInstructionAccounts{Owner: publicKey(owner), Vault: vault},
		&WithdrawInstructionArgs{},
	)
	withdraw.Accounts[0].IsSigner = false

	assertVaultError(t, env.process(t, deposit), ErrMissingSigner)
	assertVaultError(t, env.process(t, withdraw), ErrMissingSigner)

	assert.EqualValues(t, 10, env.balance(t, publicKey(owner)))
	assert.EqualValues(t, 5, env.balance(t, vault))
}

func TestInvalidDerivedAddress(t *testing.T) {
	env := setup(t)
	owner, _ := env.newOwner(t, 10)
	other, otherVault := env.newOwner(t, 10)

	require.Nil(t, env.deposit(t, other, otherVault, 3).Err)

	assertVaultError(t, env.withdraw(t, owner, otherVault), ErrInvalidDerivedAddress)
	assertVaultError(t, env.deposit(t, owner, otherVault, 1), ErrInvalidDerivedAddress)

	// A plain account is not a vault either
	assertVaultError(t, env.deposit(t, owner, testutil.GenerateSolanaKeys(t, 1)[0], 1), ErrInvalidDerivedAddress)

	assert.EqualValues(t, 10, env.balance(t, publicKey(owner)))
	assert.EqualValues(t, 7, env.balance(t, publicKey(other)))
	assert.EqualValues(t, 3, env.balance(t, otherVault))
}

func TestInvalidVaultOwner(t *testing.T) {
	env := setup(t)
	owner, vault := env.newOwner(t, 10)

	require.NoError(t, env.store.Save(env.ctx, account.NewRecord(vault, testutil.GenerateSolanaKeys(t, 1)[0], 5, nil)))

	assertVaultError(t, env.withdraw(t, owner, vault), ErrInvalidVaultOwner)
	assertVaultError(t, env.deposit(t, owner, vault, 1), ErrInvalidVaultOwner)
	assert.EqualValues(t, 5, env.balance(t, vault))
}

func TestMalformedAccountList(t *testing.T) {
	env := setup(t)
	owner, vault := env.newOwner(t, 10)
	require.Nil(t, env.deposit(t, owner, vault, 4).Err)

	deposit := NewDepositInstruction(
		&DepositInstructionAccounts{Owner: publicKey(owner), Vault: vault},
		&DepositInstructionArgs{Amount: 1},
	)
	withdraw := NewWithdrawInstruction(
		&WithdrawInstructionAccounts{Owner: publicKey(owner), Vault: vault},
		&WithdrawInstructionArgs{},
	)

	for _, instruction := range []solana.Instruction{
		withInstructionAccounts(deposit, deposit.Accounts[:2]...),
		withInstructionAccounts(deposit, deposit.Accounts[0], deposit.Accounts[1], solana.NewReadonlyAccountMeta(testutil.GenerateSolanaKeys(t, 1)[0], false)),
		withInstructionAccounts(deposit, append(deposit.Accounts, solana.NewAccountMeta(testutil.GenerateSolanaKeys(t, 1)[0], false))...),
		withInstructionAccounts(withdraw, withdraw.Accounts[:1]...),
		withInstructionAccounts(withdraw, withdraw.Accounts[0], withdraw.Accounts[1], solana.NewReadonlyAccountMeta(system.SystemAccount, false)),
	} {
		assertVaultError(t, env.process(t, instruction, owner), ErrMalformedAccountList)
	}

	assert.EqualValues(t, 6, env.balance(t, publicKey(owner)))
	assert.EqualValues(t, 4, env.balance(t, vault))
}

func TestUnrecognizedInstruction(t *testing.T) {
	env := setup(t)
	owner, vault := env.newOwner(t, 10)

	base := NewWithdrawInstruction(
		&WithdrawInstructionAccounts{Owner: publicKey(owner), Vault: vault},
		&WithdrawInstructionArgs{},
	)

	for _, data := range [][]byte{nil, {2}, {0xff}, {0, 1, 0, 0}} {
		instruction := base
		instruction.Data = data
		assertVaultError(t, env.process(t, instruction, owner), ErrUnrecognizedInstruction)
	}
}

func TestRoundTrip_OwnerPaysFees(t *testing.T) {
	env := setup(t)
	owner, vault := env.newOwner(t, 1_000_000)

	for i, amount := range []uint64{1, 999, 250_000, 900_000} {
		// Identical withdrawals need a fresh blockhash to get a new signature
		env.bank.AdvanceSlot()
		before := env.balance(t, publicKey(owner))

		result := env.processWithPayer(t, owner, NewDepositInstruction(
			&DepositInstructionAccounts{Owner: publicKey(owner), Vault: vault},
			&DepositInstructionArgs{Amount: amount},
		))
		require.Nil(t, result.Err, "iteration %d: %v", i, result.Logs)
		assert.EqualValues(t, testLamportsPerSignature, result.Fee)
		assert.EqualValues(t, amount, env.balance(t, vault))

		result = env.processWithPayer(t, owner, NewWithdrawInstruction(
			&WithdrawInstructionAccounts{Owner: publicKey(owner), Vault: vault},
			&WithdrawInstructionArgs{},
		))
		require.Nil(t, result.Err, "iteration %d: %v", i, result.Logs)

		assert.EqualValues(t, before-2*testLamportsPerSignature, env.balance(t, publicKey(owner)))
		assert.EqualValues(t, 0, env.balance(t, vault))
	}
}

func TestComputeBudgetExceeded(t *testing.T) {
	t.Setenv(runtime.ComputeUnitLimitConfigEnvName, "2000")

	env := setupWithConfig(t, runtime.WithEnvConfigs())
	owner, vault := env.newOwner(t, 10)

	result := env.deposit(t, owner, vault, 4)
	require.NotNil(t, result.Err)
	assert.ErrorIs(t, result.Err, solana.InstructionErrorComputationalBudgetExceeded)
	assert.EqualValues(t, 10, env.balance(t, publicKey(owner)))
	assert.EqualValues(t, 0, env.balance(t, vault))
}

func TestDeterministicAcrossBanks(t *testing.T) {
	owner := testutil.DeterministicSolanaKeypair("deterministic owner")

	var vaults []ed25519.PublicKey
	var consumed []uint64
	for i := 0; i < 2; i++ {
		env := setup(t)
		require.NoError(t, env.bank.Airdrop(env.ctx, publicKey(owner), 10))

		vault, _, err := GetVaultAddress(&GetVaultAddressArgs{Owner: publicKey(owner)})
		require.NoError(t, err)

		result := env.deposit(t, owner, vault, 4)
		require.Nil(t, result.Err)

		vaults = append(vaults, vault)
		consumed = append(consumed, result.ComputeUnitsConsumed)
	}

	assert.Equal(t, vaults[0], vaults[1])
	assert.Equal(t, consumed[0], consumed[1])
}

func TestSimulateDoesNotCommit(t *testing.T) {
	env := setup(t)
	owner, vault := env.newOwner(t, 10)

	txn := solana.NewTransaction(env.payerKey(), NewDepositInstruction(
		&DepositInstructionAccounts{Owner: publicKey(owner), Vault: vault},
		&DepositInstructionArgs{Amount: 4},
	))
	txn.SetBlockhash(env.bank.LatestBlockhash())

	result, err := env.bank.SimulateTransaction(env.ctx, txn)
	require.NoError(t, err)
	require.Nil(t, result.Err, result.Logs)
	assert.EqualValues(t, 10, env.balance(t, publicKey(owner)))
	assert.EqualValues(t, 0, env.balance(t, vault))
}

func TestGetProgramAccounts_VaultsAreSystemOwned(t *testing.T) {
	env := setup(t)
	owner, vault := env.newOwner(t, 10)
	require.Nil(t, env.deposit(t, owner, vault, 4).Err)

	vaults, err := env.bank.GetProgramAccounts(env.ctx, PROGRAM_ID)
	require.NoError(t, err)
	assert.Empty(t, vaults)

	info, err := env.bank.GetAccount(env.ctx, vault)
	require.NoError(t, err)
	assert.Equal(t, system.SystemAccount, info.Owner)
	assert.EqualValues(t, 4, info.Lamports)
}

func withInstructionAccounts(instruction solana.Instruction, accounts ...solana.AccountMeta) solana.Instruction {
	instruction.Accounts = append([]solana.AccountMeta(nil), accounts...)
	return instruction
}
