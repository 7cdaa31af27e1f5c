package runtime

import (
	"crypto/ed25519"

	"github.com/code-payments/code-vault/pkg/solana"
)

// Program is an on-ledger program. Process runs a single instruction against
// the accounts it was given. Returning an error fails the instruction and,
// for top level instructions, the whole transaction.
type Program interface {
	Process(ctx InvokeContext, accounts []AccountInfo, data []byte) error
}

// ProgramFunc adapts a function to the Program interface.
type ProgramFunc func(ctx InvokeContext, accounts []AccountInfo, data []byte) error

func (f ProgramFunc) Process(ctx InvokeContext, accounts []AccountInfo, data []byte) error {
	return f(ctx, accounts, data)
}

// SignerSeeds is the full seed list, bump included, of a program derived
// address the calling program signs for.
type SignerSeeds [][]byte

// InvokeContext is the host interface available to an executing program.
type InvokeContext interface {
	// ProgramID is the key of the currently executing program.
	ProgramID() ed25519.PublicKey

	// Log appends a program log line to the transaction logs.
	Log(format string, args ...interface{})

	// ConsumeUnits charges units against the transaction compute budget.
	ConsumeUnits(units uint64) error

	// FindProgramAddress derives an address and bump for seeds under the
	// executing program.
	FindProgramAddress(seeds ...[]byte) (ed25519.PublicKey, uint8, error)

	// CreateProgramAddress derives the address for seeds, bump included,
	// under the executing program.
	CreateProgramAddress(seeds ...[]byte) (ed25519.PublicKey, error)

	// Invoke calls another program with a subset of the current accounts.
	Invoke(instruction solana.Instruction) error

	// InvokeSigned is Invoke where the executing program additionally signs
	// for the program derived address of each SignerSeeds.
	InvokeSigned(instruction solana.Instruction, signers ...SignerSeeds) error
}
