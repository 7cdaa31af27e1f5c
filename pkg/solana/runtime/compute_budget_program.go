package runtime

import (
	"bytes"

	"github.com/code-payments/code-vault/pkg/solana"
	compute_budget "github.com/code-payments/code-vault/pkg/solana/computebudget"
)

// computeBudgetProgram is the builtin compute budget program. Its
// instructions are applied by the bank before execution, so at execution
// time it only validates them.
type computeBudgetProgram struct{}

func (computeBudgetProgram) Process(ctx InvokeContext, _ []AccountInfo, data []byte) error {
	if err := ctx.ConsumeUnits(computeBudgetProgramUnits); err != nil {
		return err
	}

	if _, err := compute_budget.DecodeSetComputeUnitLimit(data); err != nil {
		return solana.InstructionErrorInvalidInstructionData
	}
	return nil
}

// requestedComputeUnitLimit returns the limit set by a top level
// SetComputeUnitLimit instruction, defaultLimit when there is none.
func requestedComputeUnitLimit(msg solana.Message, defaultLimit uint64) (uint64, *solana.TransactionError) {
	limit := defaultLimit

	var found bool
	for i, ix := range msg.Instructions {
		if !bytes.Equal(msg.Accounts[ix.ProgramIndex], compute_budget.ProgramKey) {
			continue
		}

		if found {
			return 0, solana.NewTransactionError(solana.TransactionErrorDuplicateInstruction)
		}
		found = true

		requested, err := compute_budget.DecodeSetComputeUnitLimit(ix.Data)
		if err != nil {
			return 0, solana.TransactionErrorFromInstructionError(i, solana.InstructionErrorInvalidInstructionData)
		}
		limit = uint64(requested)
	}

	if limit > compute_budget.MaxComputeUnitLimit {
		limit = compute_budget.MaxComputeUnitLimit
	}
	return limit, nil
}
