package system

import (
	"bytes"
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/code-vault/pkg/solana"
	"github.com/code-payments/code-vault/pkg/solana/binary"
)

// Command is the u32 tag that prefixes every system instruction.
type Command uint32

const (
	CommandCreateAccount Command = iota
	CommandAssign
	CommandTransfer
	CommandCreateAccountWithSeed
	CommandAdvanceNonceAccount
	CommandWithdrawNonceAccount
	CommandInitializeNonceAccount
	CommandAuthorizeNonceAccount
	CommandAllocate
	CommandAllocateWithSeed
	CommandAssignWithSeed
	CommandTransferWithSeed
)

const transferDataSize = 4 + 8

// Transfer returns an instruction moving lamports between two accounts.
//
// Reference: https://github.com/solana-labs/solana/blob/f02a78d8fff2dd7297dc6ce6eb5a68a3002f5359/sdk/src/system_instruction.rs#L92-L96
func Transfer(from, to ed25519.PublicKey, lamports uint64) solana.Instruction {
	// # Account references
	//   0. [WRITE, SIGNER] Funding account
	//   1. [WRITE] Recipient account
	//
	// Transfer {
	//   lamports: u64,
	// }
	data := make([]byte, transferDataSize)

	var offset int
	binary.PutUint32(data, uint32(CommandTransfer), &offset)
	binary.PutUint64(data, lamports, &offset)

	return solana.NewInstruction(
		ProgramKey[:],
		data,
		solana.NewAccountMeta(from, true),
		solana.NewAccountMeta(to, false),
	)
}

// DecodeCommand reads the command tag of raw system instruction data.
func DecodeCommand(data []byte) (Command, error) {
	var offset int
	var command uint32
	if err := binary.GetUint32(data, &command, &offset); err != nil {
		return 0, errors.Wrap(err, "invalid command")
	}
	return Command(command), nil
}

// DecodeTransferData returns the lamports of a raw Transfer payload.
func DecodeTransferData(data []byte) (uint64, error) {
	command, err := DecodeCommand(data)
	if err != nil {
		return 0, err
	}
	if command != CommandTransfer {
		return 0, solana.ErrIncorrectInstruction
	}
	if len(data) != transferDataSize {
		return 0, errors.Errorf("invalid instruction data size: %d", len(data))
	}

	offset := 4
	var lamports uint64
	if err := binary.GetUint64(data, &lamports, &offset); err != nil {
		return 0, err
	}
	return lamports, nil
}

type DecompiledTransfer struct {
	From     ed25519.PublicKey
	To       ed25519.PublicKey
	Lamports uint64
}

// DecompileTransfer extracts the Transfer at index from a compiled message.
func DecompileTransfer(m solana.Message, index int) (*DecompiledTransfer, error) {
	if index >= len(m.Instructions) {
		return nil, errors.Errorf("instruction doesn't exist at %d", index)
	}

	i := m.Instructions[index]

	if !bytes.Equal(m.Accounts[i.ProgramIndex], ProgramKey[:]) {
		return nil, solana.ErrIncorrectProgram
	}

	command, err := DecodeCommand(i.Data)
	if err != nil || command != CommandTransfer {
		return nil, solana.ErrIncorrectInstruction
	}

	if len(i.Accounts) != 2 {
		return nil, errors.Errorf("invalid number of accounts: %d", len(i.Accounts))
	}

	lamports, err := DecodeTransferData(i.Data)
	if err != nil {
		return nil, err
	}

	return &DecompiledTransfer{
		From:     m.Accounts[i.Accounts[0]],
		To:       m.Accounts[i.Accounts[1]],
		Lamports: lamports,
	}, nil
}
