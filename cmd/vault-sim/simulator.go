package main

import (
	"context"
	"crypto/ed25519"
	"fmt"
	"io"
	"time"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/code-vault/pkg/metrics"
	"github.com/code-payments/code-vault/pkg/retry"
	"github.com/code-payments/code-vault/pkg/retry/backoff"
	"github.com/code-payments/code-vault/pkg/solana"
	"github.com/code-payments/code-vault/pkg/solana/runtime"
	"github.com/code-payments/code-vault/pkg/solana/vault"
)

const (
	shutdownTimeout = 5 * time.Second

	// Covers the deposit and withdrawal fees at the default fee rate
	feeAllowance = 2 * 5_000
)

var errAccountInUse = errors.New("account in use")

type simulator struct {
	log  *logrus.Entry
	bank *runtime.Bank
	out  io.Writer

	owner ed25519.PrivateKey
	vault ed25519.PublicKey
}

func newSimulator(bank *runtime.Bank, out io.Writer) (*simulator, error) {
	if err := bank.RegisterProgram(vault.PROGRAM_ID, vault.Program); err != nil {
		return nil, errors.Wrap(err, "failed to register vault program")
	}

	_, owner, err := ed25519.GenerateKey(nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate owner")
	}

	vaultAddress, _, err := vault.GetVaultAddress(&vault.GetVaultAddressArgs{
		Owner: owner.Public().(ed25519.PublicKey),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive vault address")
	}

	return &simulator{
		log:   logrus.StandardLogger().WithField("type", "cmd/vault-sim/simulator"),
		bank:  bank,
		out:   out,
		owner: owner,
		vault: vaultAddress,
	}, nil
}

func (s *simulator) ownerKey() ed25519.PublicKey {
	return s.owner.Public().(ed25519.PublicKey)
}

// Run funds the owner, then deposits into and withdraws from its vault,
// printing balances and program logs after each step.
func (s *simulator) Run(ctx context.Context, airdrop, amount uint64) error {
	fmt.Fprintf(s.out, "owner: %s\nvault: %s\n", base58.Encode(s.ownerKey()), base58.Encode(s.vault))

	if err := s.bank.Airdrop(ctx, s.ownerKey(), airdrop+feeAllowance); err != nil {
		return errors.Wrap(err, "failed to airdrop to owner")
	}
	if err := s.printBalances(ctx, "airdrop"); err != nil {
		return err
	}

	steps := []struct {
		name        string
		instruction solana.Instruction
	}{
		{
			name: "deposit",
			instruction: vault.NewDepositInstruction(
				&vault.DepositInstructionAccounts{Owner: s.ownerKey(), Vault: s.vault},
				&vault.DepositInstructionArgs{Amount: amount},
			),
		},
		{
			name: "withdraw",
			instruction: vault.NewWithdrawInstruction(
				&vault.WithdrawInstructionAccounts{Owner: s.ownerKey(), Vault: s.vault},
				&vault.WithdrawInstructionArgs{},
			),
		},
	}

	for _, step := range steps {
		if err := s.runStep(ctx, step.name, step.instruction); err != nil {
			return err
		}
	}
	return nil
}

func (s *simulator) runStep(ctx context.Context, name string, instruction solana.Instruction) error {
	ctx, end := metrics.StartTransaction(ctx, name)
	defer end()

	log := s.log.WithFields(logrus.Fields{
		"method": "runStep",
		"step":   name,
	})

	result, err := s.submit(ctx, instruction)
	if err != nil {
		log.WithError(err).Warn("failure submitting transaction")
		return errors.Wrapf(err, "failed to submit %s", name)
	}

	fmt.Fprintf(s.out, "\n%s: %s\n", name, base58.Encode(result.Signature[:]))
	for _, line := range result.Logs {
		fmt.Fprintf(s.out, "  %s\n", line)
	}

	if result.Err != nil {
		fmt.Fprintf(s.out, "  error: %v (exit code %d)\n", result.Err, result.ExitCode())
		return errors.Wrapf(result.Err, "%s failed", name)
	}

	log.WithField("compute_units", result.ComputeUnitsConsumed).Debug("transaction succeeded")
	return s.printBalances(ctx, name)
}

// submit processes a transaction from the owner, retrying while its accounts
// are locked by a concurrent transaction.
func (s *simulator) submit(ctx context.Context, instruction solana.Instruction) (*runtime.Result, error) {
	txn := solana.NewTransaction(s.ownerKey(), instruction)
	txn.SetBlockhash(s.bank.LatestBlockhash())
	if err := txn.Sign(s.owner); err != nil {
		return nil, err
	}

	var result *runtime.Result
	_, err := retry.Retry(
		func() error {
			var err error
			result, err = s.bank.ProcessTransaction(ctx, txn)
			if err != nil {
				return err
			}

			if result.Err != nil && result.Err.ErrorKey() == solana.TransactionErrorAccountInUse {
				return errAccountInUse
			}
			return nil
		},
		retry.Limit(5),
		retry.RetriableIf(func(err error) bool { return errors.Is(err, errAccountInUse) }),
		retry.Backoff(backoff.BinaryExponential(10*time.Millisecond), 200*time.Millisecond),
	)
	if err == errAccountInUse {
		return result, nil
	}
	return result, err
}

func (s *simulator) printBalances(ctx context.Context, step string) error {
	ownerBalance, err := s.bank.GetBalance(ctx, s.ownerKey())
	if err != nil {
		return errors.Wrap(err, "failed to get owner balance")
	}

	vaultBalance, err := s.bank.GetBalance(ctx, s.vault)
	if err != nil {
		return errors.Wrap(err, "failed to get vault balance")
	}

	fmt.Fprintf(s.out, "after %s: owner=%d vault=%d\n", step, ownerBalance, vaultBalance)
	return nil
}
