package vault

import (
	"github.com/code-payments/code-vault/pkg/solana/binary"
)

// Opcode is the first byte of every vault instruction payload.
type Opcode uint8

const (
	OpcodeDeposit Opcode = iota
	OpcodeWithdraw
)

// Command is a decoded vault instruction. It is either a DepositCommand or a
// WithdrawCommand.
type Command interface {
	Opcode() Opcode
}

type DepositCommand struct {
	Amount uint64
}

func (DepositCommand) Opcode() Opcode {
	return OpcodeDeposit
}

type WithdrawCommand struct{}

func (WithdrawCommand) Opcode() Opcode {
	return OpcodeWithdraw
}

// DecodeCommand decodes an instruction payload. Deposit arguments must be
// exactly one little endian u64. Bytes trailing a Withdraw opcode are ignored.
func DecodeCommand(data []byte) (Command, error) {
	if len(data) == 0 {
		return nil, ErrUnrecognizedInstruction
	}

	args := data[1:]
	switch Opcode(data[0]) {
	case OpcodeDeposit:
		if len(args) != DepositInstructionArgsSize {
			return nil, ErrUnrecognizedInstruction
		}

		var cmd DepositCommand
		var offset int
		if err := binary.GetUint64(args, &cmd.Amount, &offset); err != nil {
			return nil, ErrUnrecognizedInstruction
		}
		return cmd, nil
	case OpcodeWithdraw:
		return WithdrawCommand{}, nil
	default:
		return nil, ErrUnrecognizedInstruction
	}
}
