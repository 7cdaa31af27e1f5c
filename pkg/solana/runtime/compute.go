package runtime

import (
	"github.com/code-payments/code-vault/pkg/solana"
)

const (
	// Charged for every program invocation, top level or nested.
	invokeUnits = 1_000

	// Charged for each candidate address hashed during derivation.
	createProgramAddressUnits = 1_500

	// Charged by the builtin system program.
	systemProgramUnits = 150

	// Charged by the builtin compute budget program.
	computeBudgetProgramUnits = 150
)

type computeMeter struct {
	limit    uint64
	consumed uint64
	exceeded bool
}

func newComputeMeter(limit uint64) *computeMeter {
	return &computeMeter{limit: limit}
}

// consume charges units. Once the budget is exceeded the meter is left fully
// consumed and the transaction can no longer succeed.
func (m *computeMeter) consume(units uint64) error {
	if units > m.remaining() {
		m.consumed = m.limit
		m.exceeded = true
		return solana.InstructionErrorComputationalBudgetExceeded
	}
	m.consumed += units
	return nil
}

func (m *computeMeter) remaining() uint64 {
	return m.limit - m.consumed
}
