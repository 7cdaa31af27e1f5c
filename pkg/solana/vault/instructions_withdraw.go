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
	WithdrawInstructionArgsSize = 0

	WithdrawInstructionAccountsSize = (32 + // owner
		32) // vault

	WithdrawInstructionSize = (1 + // opcode
		WithdrawInstructionArgsSize + // args
		WithdrawInstructionAccountsSize) // accounts
)

type WithdrawInstructionArgs struct {
}

type WithdrawInstructionAccounts struct {
	Owner ed25519.PublicKey
	Vault ed25519.PublicKey
}

func NewWithdrawInstruction(
	accounts *WithdrawInstructionAccounts,
	args *WithdrawInstructionArgs,
) solana.Instruction {
	var offset int

	// Serialize instruction arguments
	data := make([]byte, 1+WithdrawInstructionArgsSize)

	binary.PutUint8(data, uint8(OpcodeWithdraw), &offset)

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
		},
	}
}

func processWithdraw(ctx runtime.InvokeContext, accounts []runtime.AccountInfo) error {
	if len(accounts) != 2 {
		return ErrMalformedAccountList
	}
	owner, vault := accounts[0], accounts[1]

	if !owner.IsSigner() {
		return ErrMissingSigner
	}

	bump, err := verifyVaultAddress(ctx, owner, vault)
	if err != nil {
		return err
	}

	if !bytes.Equal(vault.Owner(), system.SystemAccount) {
		return ErrInvalidVaultOwner
	}

	balance := vault.Lamports()
	if balance == 0 {
		return ErrEmptyVault
	}

	err = ctx.InvokeSigned(
		system.Transfer(vault.Key(), owner.Key(), balance),
		vaultSignerSeeds(owner.Key(), bump),
	)
	if err != nil {
		ctx.Log("Withdraw transfer failed: %v", err)
		return ErrTransferFailed
	}

	return nil
}
