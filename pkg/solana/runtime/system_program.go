package runtime

import (
	"bytes"
	"math"

	"github.com/code-payments/code-vault/pkg/solana"
	"github.com/code-payments/code-vault/pkg/solana/system"
)

// systemProgram is the builtin native value transfer program. Only Transfer
// is supported.
type systemProgram struct{}

func (systemProgram) Process(ctx InvokeContext, accounts []AccountInfo, data []byte) error {
	if err := ctx.ConsumeUnits(systemProgramUnits); err != nil {
		return err
	}

	command, err := system.DecodeCommand(data)
	if err != nil {
		return solana.InstructionErrorInvalidInstructionData
	}

	switch command {
	case system.CommandTransfer:
		lamports, err := system.DecodeTransferData(data)
		if err != nil {
			return solana.InstructionErrorInvalidInstructionData
		}
		return processTransfer(ctx, accounts, lamports)
	default:
		return solana.InstructionErrorInvalidInstructionData
	}
}

func processTransfer(ctx InvokeContext, accounts []AccountInfo, lamports uint64) error {
	if len(accounts) < 2 {
		return solana.InstructionErrorNotEnoughAccountKeys
	}

	from, to := accounts[0].entry(), accounts[1].entry()

	if !from.isSigner {
		ctx.Log("Transfer: `from` account %s must sign", accounts[0])
		return solana.InstructionErrorMissingRequiredSignature
	}

	if len(from.account.data) > 0 {
		ctx.Log("Transfer: `from` must not carry data")
		return solana.InstructionErrorInvalidArgument
	}

	if !bytes.Equal(from.account.owner, system.SystemAccount) {
		return solana.InstructionErrorExternalAccountLamportSpend
	}

	if !from.isWritable || !to.isWritable {
		return solana.InstructionErrorReadonlyLamportChange
	}

	if lamports > from.account.lamports {
		ctx.Log("Transfer: insufficient lamports %d, need %d", from.account.lamports, lamports)
		return system.ErrorResultWithNegativeLamports
	}

	from.account.lamports -= lamports
	if to.account.lamports > math.MaxUint64-lamports {
		from.account.lamports += lamports
		return solana.InstructionErrorArithmeticOverflow
	}
	to.account.lamports += lamports

	return nil
}
