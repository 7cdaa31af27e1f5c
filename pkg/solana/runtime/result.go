package runtime

import (
	"math"

	"github.com/code-payments/code-vault/pkg/solana"
)

// Result describes the outcome of an executed transaction.
type Result struct {
	Signature solana.Signature
	Slot      uint64

	Logs                 []string
	ComputeUnitsConsumed uint64

	// Fee is only charged when the transaction succeeds.
	Fee uint64

	// Err is nil when the transaction succeeded.
	Err *solana.TransactionError
}

// Builtin instruction errors are reported in the upper 32 bits of the exit
// code so they never collide with custom program codes.
//
// Reference: https://github.com/solana-labs/solana/blob/4e2754341514cd181ae3f373cc2548bd22e918b8/sdk/program/src/program_error.rs#L104
var builtinExitCodes = map[solana.InstructionErrorKey]uint64{
	solana.InstructionErrorInvalidArgument:          2 << 32,
	solana.InstructionErrorInvalidInstructionData:   3 << 32,
	solana.InstructionErrorInvalidAccountData:       4 << 32,
	solana.InstructionErrorInsufficientFunds:        6 << 32,
	solana.InstructionErrorIncorrectProgramID:       7 << 32,
	solana.InstructionErrorMissingRequiredSignature: 8 << 32,
	solana.InstructionErrorNotEnoughAccountKeys:     11 << 32,
	solana.InstructionErrorAccountBorrowFailed:      12 << 32,
	solana.InstructionErrorMaxSeedLengthExceeded:    13 << 32,
	solana.InstructionErrorInvalidSeeds:             14 << 32,
}

const (
	customZeroExitCode = 1 << 32
	unknownExitCode    = math.MaxUint32 << 32
)

func (r *Result) Succeeded() bool {
	return r.Err == nil
}

// ExitCode is 0 on success, the custom code for custom program errors, and a
// builtin code otherwise.
func (r *Result) ExitCode() uint64 {
	if r.Err == nil {
		return 0
	}

	ie := r.Err.InstructionError()
	if ie == nil {
		return unknownExitCode
	}

	if ce := ie.CustomError(); ce != nil {
		if *ce == 0 {
			return customZeroExitCode
		}
		return uint64(*ce)
	}

	if code, ok := builtinExitCodes[ie.ErrorKey()]; ok {
		return code
	}
	return unknownExitCode
}
