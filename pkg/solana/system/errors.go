package system

import (
	"github.com/code-payments/code-vault/pkg/solana"
)

// Custom error codes returned by the system program.
//
// Source: https://github.com/solana-labs/solana/blob/f02a78d8fff2dd7297dc6ce6eb5a68a3002f5359/sdk/program/src/system_instruction.rs#L18
const (
	ErrorAccountAlreadyInUse solana.CustomError = iota
	ErrorResultWithNegativeLamports
	ErrorInvalidProgramId
	ErrorInvalidAccountDataLength
	ErrorMaxSeedLengthExceeded
	ErrorAddressWithSeedMismatch
)
