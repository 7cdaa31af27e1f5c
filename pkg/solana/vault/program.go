package vault

import (
	"crypto/ed25519"

	"github.com/code-payments/code-vault/pkg/solana/runtime"
)

var (
	PROGRAM_ADDRESS = ed25519.PublicKey{
		0x0f, 0x1e, 0x6b, 0x14, 0x21, 0xc0, 0x4a, 0x07,
		0x04, 0x31, 0x26, 0x5c, 0x19, 0xc5, 0xbb, 0xee,
		0x19, 0x92, 0xba, 0xe8, 0xaf, 0xd1, 0xcd, 0x07,
		0x8e, 0xf8, 0xaf, 0x70, 0x47, 0xdc, 0x11, 0xf7,
	}
	PROGRAM_ID = ed25519.PublicKey(PROGRAM_ADDRESS)
)

// Program is the vault program as registered with a runtime.Bank.
var Program runtime.Program = runtime.ProgramFunc(Process)

// Process is the program entrypoint. The payload is decoded once and routed
// to the matching handler.
func Process(ctx runtime.InvokeContext, accounts []runtime.AccountInfo, data []byte) error {
	command, err := DecodeCommand(data)
	if err != nil {
		return err
	}

	switch c := command.(type) {
	case DepositCommand:
		ctx.Log("Instruction: Deposit")
		return processDeposit(ctx, accounts, c.Amount)
	case WithdrawCommand:
		ctx.Log("Instruction: Withdraw")
		return processWithdraw(ctx, accounts)
	default:
		return ErrUnrecognizedInstruction
	}
}
