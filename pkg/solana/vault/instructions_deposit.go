package vault

import (
	"bytes"
	"crypto/ed25519"

	"github.com/code-payments/code-vault/pkg/solana"
	"github.com/code-payments/code-vault/pkg/solana/binary"
	"github.com/code-payments/code-vault/pkg/solana/runtime"
	"github.com/code-payments/code-vault/pkg/solana/system"
)

const (
	DepositInstructionArgsSize = 8 // amount

	DepositInstructionAccountsSize = (32 + // owner
		32 + // vault
		32) // systemProgram

	DepositInstructionSize = (1 + // opcode
		DepositInstructionArgsSize + // args
		DepositInstructionAccountsSize) // accounts
)

type DepositInstructionArgs struct {
	Amount uint64
}

type DepositInstructionAccounts struct {
	Owner ed25519.PublicKey
	Vault ed25519.PublicKey
}

func NewDepositInstruction(
	accounts *DepositInstructionAccounts,
	args *DepositInstructionArgs,
) solana.Instruction {
	var offset int

	// Serialize instruction arguments
	data := make([]byte, 1+DepositInstructionArgsSize)

	binary.PutUint8(data, uint8(OpcodeDeposit), &offset)
	binary.PutUint64(data, args.Amount, &offset)

	return solana.Instruction{
		Program: PROGRAM_ADDRESS,

		// Instruction args
		Data: data,

		// Instruction accounts
		Accounts: []solana.AccountMeta{
			{
				PublicKey:  accounts.Owner,
				IsWritable: true,
				IsSigner:   true,
			},
			{
				PublicKey:  accounts.Vault,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  system.SystemAccount,
				IsWritable: false,
				IsSigner:   false,
			},
		},
	}
}

func processDeposit(ctx runtime.InvokeContext, accounts []runtime.AccountInfo, amount uint64) error {
	if len(accounts) != 3 || !bytes.Equal(accounts[2].Key(), system.SystemAccount) {
		return ErrMalformedAccountList
	}
	owner, vault := accounts[0], accounts[1]

	if !owner.IsSigner() {
		return ErrMissingSigner
	}

	if _, err := verifyVaultAddress(ctx, owner, vault); err != nil {
		return err
	}

	if !bytes.Equal(vault.Owner(), system.SystemAccount) {
		return ErrInvalidVaultOwner
	}

	if vault.Lamports() != 0 {
		ctx.Log("Vault %s already holds %d lamports", vault, vault.Lamports())
		return ErrVaultAlreadyFunded
	}

	if amount == 0 {
		return ErrZeroAmountDeposit
	}

	if err := ctx.Invoke(system.Transfer(owner.Key(), vault.Key(), amount)); err != nil {
		ctx.Log("Deposit transfer failed: %v", err)
		return ErrTransferFailed
	}

	return nil
}
