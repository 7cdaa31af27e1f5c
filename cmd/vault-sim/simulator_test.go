package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/code-vault/pkg/data/account/memory"
	"github.com/code-payments/code-vault/pkg/solana/runtime"
	"github.com/code-payments/code-vault/pkg/solana/vault"
)

func TestSimulator_Run(t *testing.T) {
	ctx := context.Background()

	var out bytes.Buffer
	sim, err := newSimulator(runtime.NewBank(memory.New(), runtime.WithDefaultConfigs()), &out)
	require.NoError(t, err)

	require.NoError(t, sim.Run(ctx, 10, 4))

	assert.Contains(t, out.String(), "after airdrop: owner=10010 vault=0")
	assert.Contains(t, out.String(), "after deposit: owner=5006 vault=4")
	assert.Contains(t, out.String(), "after withdraw: owner=10 vault=0")
	assert.Contains(t, out.String(), "Program log: Instruction: Deposit")
	assert.Contains(t, out.String(), "Program log: Instruction: Withdraw")
}

func TestSimulator_ProgramFailure(t *testing.T) {
	var out bytes.Buffer
	sim, err := newSimulator(runtime.NewBank(memory.New(), runtime.WithDefaultConfigs()), &out)
	require.NoError(t, err)

	err = sim.Run(context.Background(), 10, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, vault.ErrZeroAmountDeposit)
	assert.Contains(t, out.String(), "exit code 5")
}
