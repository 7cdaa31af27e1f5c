package runtime

import (
	"bytes"
	"crypto/ed25519"
	"fmt"
	"math"
	"math/bits"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/code-payments/code-vault/pkg/solana"
)

type frameAccount struct {
	account    *ledgerAccount
	isSigner   bool
	isWritable bool
}

// frame is the account set of a single program invocation.
type frame struct {
	program  ed25519.PublicKey
	accounts []frameAccount
	released bool
}

// add appends an account reference. Repeated references to one account
// share the union of their privileges.
func (f *frame) add(a *ledgerAccount, isSigner, isWritable bool) {
	for _, existing := range f.accounts {
		if existing.account == a {
			isSigner = isSigner || existing.isSigner
			isWritable = isWritable || existing.isWritable
		}
	}
	for i := range f.accounts {
		if f.accounts[i].account == a {
			f.accounts[i].isSigner = isSigner
			f.accounts[i].isWritable = isWritable
		}
	}

	f.accounts = append(f.accounts, frameAccount{
		account:    a,
		isSigner:   isSigner,
		isWritable: isWritable,
	})
}

func (f *frame) find(key ed25519.PublicKey) *frameAccount {
	for i := range f.accounts {
		if bytes.Equal(f.accounts[i].account.key, key) {
			return &f.accounts[i]
		}
	}
	return nil
}

func (f *frame) infos() []AccountInfo {
	infos := make([]AccountInfo, len(f.accounts))
	for i := range f.accounts {
		infos[i] = AccountInfo{f: f, index: i}
	}
	return infos
}

func (f *frame) unique() []*frameAccount {
	var res []*frameAccount
	for i := range f.accounts {
		seen := false
		for _, existing := range res {
			if existing.account == f.accounts[i].account {
				seen = true
				break
			}
		}
		if !seen {
			res = append(res, &f.accounts[i])
		}
	}
	return res
}

// lamports returns the 128 bit sum of the balances of every account in the
// frame.
func (f *frame) lamports() (hi, lo uint64) {
	for _, entry := range f.unique() {
		var carry uint64
		lo, carry = bits.Add64(lo, entry.account.lamports, 0)
		hi += carry
	}
	return hi, lo
}

type programLookup func(key ed25519.PublicKey) (Program, bool)

// invokeContext carries the execution state of a single transaction.
type invokeContext struct {
	programs programLookup
	meter    *computeMeter
	maxDepth int

	stack []*frame
	logs  []string
}

func newInvokeContext(programs programLookup, computeUnitLimit uint64, maxDepth int) *invokeContext {
	return &invokeContext{
		programs: programs,
		meter:    newComputeMeter(computeUnitLimit),
		maxDepth: maxDepth,
	}
}

func (ic *invokeContext) current() *frame {
	return ic.stack[len(ic.stack)-1]
}

func (ic *invokeContext) ProgramID() ed25519.PublicKey {
	return cloneBytes(ic.current().program)
}

func (ic *invokeContext) Log(format string, args ...interface{}) {
	ic.logs = append(ic.logs, "Program log: "+fmt.Sprintf(format, args...))
}

func (ic *invokeContext) ConsumeUnits(units uint64) error {
	return ic.meter.consume(units)
}

func (ic *invokeContext) CreateProgramAddress(seeds ...[]byte) (ed25519.PublicKey, error) {
	if err := ic.meter.consume(createProgramAddressUnits); err != nil {
		return nil, err
	}

	address, err := solana.CreateProgramAddress(ic.current().program, seeds...)
	if err != nil {
		return nil, toSeedError(err)
	}
	return address, nil
}

// FindProgramAddress searches bumps from 255 downward and charges for every
// candidate it hashes.
func (ic *invokeContext) FindProgramAddress(seeds ...[]byte) (ed25519.PublicKey, uint8, error) {
	program := ic.current().program

	withBump := make([][]byte, len(seeds)+1)
	copy(withBump, seeds)

	for bump := math.MaxUint8; bump > 0; bump-- {
		if err := ic.meter.consume(createProgramAddressUnits); err != nil {
			return nil, 0, err
		}

		withBump[len(seeds)] = []byte{uint8(bump)}
		address, err := solana.CreateProgramAddress(program, withBump...)
		if err == nil {
			return address, uint8(bump), nil
		}
		if err != solana.ErrInvalidPublicKey {
			return nil, 0, toSeedError(err)
		}
	}

	return nil, 0, solana.InstructionErrorInvalidSeeds
}

func (ic *invokeContext) Invoke(instruction solana.Instruction) error {
	return ic.InvokeSigned(instruction)
}

func (ic *invokeContext) InvokeSigned(instruction solana.Instruction, signers ...SignerSeeds) error {
	caller := ic.current()

	var signedFor []ed25519.PublicKey
	for _, seeds := range signers {
		address, err := solana.CreateProgramAddress(caller.program, seeds...)
		if err != nil {
			return toSeedError(err)
		}
		signedFor = append(signedFor, address)
	}

	callee := &frame{program: cloneBytes(instruction.Program)}
	for _, meta := range instruction.Accounts {
		entry := caller.find(meta.PublicKey)
		if entry == nil {
			ic.Log("Instruction references an unknown account %s", base58.Encode(meta.PublicKey))
			return solana.InstructionErrorMissingAccount
		}

		if meta.IsWritable && !entry.isWritable {
			ic.Log("%s's writable privilege escalated", base58.Encode(meta.PublicKey))
			return solana.InstructionErrorPrivilegeEscalation
		}

		if meta.IsSigner && !entry.isSigner && !containsKey(signedFor, meta.PublicKey) {
			ic.Log("%s's signer privilege escalated", base58.Encode(meta.PublicKey))
			return solana.InstructionErrorPrivilegeEscalation
		}

		callee.add(entry.account, meta.IsSigner, meta.IsWritable)
	}

	return ic.execute(callee, instruction.Data)
}

// execute runs the program of f. On failure every account of f is restored
// to its state before the call.
func (ic *invokeContext) execute(f *frame, data []byte) error {
	program, ok := ic.programs(f.program)
	if !ok {
		return solana.InstructionErrorUnsupportedProgramID
	}

	if len(ic.stack) >= ic.maxDepth {
		return solana.InstructionErrorCallDepth
	}

	if len(ic.stack) > 0 && !bytes.Equal(ic.current().program, f.program) {
		for _, active := range ic.stack {
			if bytes.Equal(active.program, f.program) {
				return solana.InstructionErrorReentrancyNotAllowed
			}
		}
	}

	entries := f.unique()
	before := make([]accountState, len(entries))
	for i, entry := range entries {
		before[i] = entry.account.save()
	}
	hi, lo := f.lamports()

	programName := base58.Encode(f.program)
	available := ic.meter.remaining()

	ic.stack = append(ic.stack, f)
	ic.logs = append(ic.logs, fmt.Sprintf("Program %s invoke [%d]", programName, len(ic.stack)))

	err := ic.meter.consume(invokeUnits)
	if err == nil {
		err = ic.process(program, f, data)
	}

	ic.stack = ic.stack[:len(ic.stack)-1]
	f.released = true

	// Programs cannot recover from an exhausted budget
	if ic.meter.exceeded {
		err = solana.InstructionErrorComputationalBudgetExceeded
	}

	if err == nil {
		if afterHi, afterLo := f.lamports(); afterHi != hi || afterLo != lo {
			err = solana.InstructionErrorUnbalancedInstruction
		}
	}
	if err == nil {
		for i, entry := range entries {
			if !entry.isWritable && !entry.account.equals(before[i]) {
				err = solana.InstructionErrorReadonlyLamportChange
				break
			}
		}
	}

	ic.logs = append(ic.logs, fmt.Sprintf("Program %s consumed %d of %d compute units", programName, available-ic.meter.remaining(), available))

	if err != nil {
		for i, entry := range entries {
			entry.account.restore(before[i])
		}

		ic.logs = append(ic.logs, fmt.Sprintf("Program %s failed: %v", programName, err))
		return err
	}

	ic.logs = append(ic.logs, fmt.Sprintf("Program %s success", programName))
	return nil
}

func (ic *invokeContext) process(program Program, f *frame, data []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Wrapf(solana.InstructionErrorProgramFailedToComplete, "program panicked: %v", r)
		}
	}()

	return program.Process(ic, f.infos(), cloneBytes(data))
}

func toSeedError(err error) error {
	switch err {
	case solana.ErrTooManySeeds, solana.ErrMaxSeedLengthExceeded:
		return solana.InstructionErrorMaxSeedLengthExceeded
	default:
		return solana.InstructionErrorInvalidSeeds
	}
}

func containsKey(keys []ed25519.PublicKey, key ed25519.PublicKey) bool {
	for _, k := range keys {
		if bytes.Equal(k, key) {
			return true
		}
	}
	return false
}
