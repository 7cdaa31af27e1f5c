package compute_budget

import (
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/code-vault/pkg/solana"
	"github.com/code-payments/code-vault/pkg/solana/binary"
)

// ComputeBudget111111111111111111111111111111
var ProgramKey = ed25519.PublicKey{3, 6, 70, 111, 229, 33, 23, 50, 255, 236, 173, 186, 114, 195, 155, 231, 188, 140, 229, 187, 197, 247, 18, 107, 44, 67, 155, 58, 64, 0, 0, 0}

// MaxComputeUnitLimit is the largest limit a transaction may request.
const MaxComputeUnitLimit = 1_400_000

var ErrInvalidInstructionData = errors.New("invalid compute budget instruction data")

const (
	commandRequestUnits uint8 = iota
	commandRequestHeapFrame
	commandSetComputeUnitLimit
	commandSetComputeUnitPrice
)

const setComputeUnitLimitDataSize = 1 + 4

// SetComputeUnitLimit requests a compute unit limit for the whole transaction
// in place of the default.
func SetComputeUnitLimit(computeUnitLimit uint32) solana.Instruction {
	data := make([]byte, setComputeUnitLimitDataSize)

	var offset int
	binary.PutUint8(data, commandSetComputeUnitLimit, &offset)
	binary.PutUint32(data, computeUnitLimit, &offset)

	return solana.NewInstruction(
		ProgramKey[:],
		data,
	)
}

// DecodeSetComputeUnitLimit returns the limit requested by SetComputeUnitLimit
// instruction data.
func DecodeSetComputeUnitLimit(data []byte) (uint32, error) {
	if len(data) != setComputeUnitLimitDataSize || data[0] != commandSetComputeUnitLimit {
		return 0, ErrInvalidInstructionData
	}

	var limit uint32
	offset := 1
	if err := binary.GetUint32(data, &limit, &offset); err != nil {
		return 0, ErrInvalidInstructionData
	}
	return limit, nil
}
