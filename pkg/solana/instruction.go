package solana

import (
	"bytes"
	"crypto/ed25519"

	"github.com/pkg/errors"
)

var (
	ErrIncorrectProgram     = errors.New("incorrect program")
	ErrIncorrectInstruction = errors.New("incorrect instruction")
)

// AccountMeta describes how an instruction uses an account.
type AccountMeta struct {
	PublicKey  ed25519.PublicKey
	IsSigner   bool
	IsWritable bool
	isPayer    bool
	isProgram  bool
}

// NewAccountMeta creates a new AccountMeta representing a writable
// account.
func NewAccountMeta(pub ed25519.PublicKey, isSigner bool) AccountMeta {
	return AccountMeta{
		PublicKey:  pub,
		IsSigner:   isSigner,
		IsWritable: true,
	}
}

// NewReadonlyAccountMeta creates a new AccountMeta representing a readonly
// account.
func NewReadonlyAccountMeta(pub ed25519.PublicKey, isSigner bool) AccountMeta {
	return AccountMeta{
		PublicKey:  pub,
		IsSigner:   isSigner,
		IsWritable: false,
	}
}

// SortableAccountMeta sorts account metas by the message account ordering
// rules: payer, signers, writable accounts, then programs.
//
// Reference: https://docs.solana.com/transaction#account-addresses-format
type SortableAccountMeta []AccountMeta

func (s SortableAccountMeta) Len() int {
	return len(s)
}

func (s SortableAccountMeta) Less(i int, j int) bool {
	if s[i].isPayer != s[j].isPayer {
		return s[i].isPayer
	}
	if s[i].isProgram != s[j].isProgram {
		return !s[i].isProgram
	}

	if s[i].IsSigner != s[j].IsSigner {
		return s[i].IsSigner
	}
	if s[i].IsWritable != s[j].IsWritable {
		return s[i].IsWritable
	}

	return bytes.Compare(s[i].PublicKey, s[j].PublicKey) < 0
}

func (s SortableAccountMeta) Swap(i int, j int) {
	s[i], s[j] = s[j], s[i]
}

// Instruction is a single program invocation: the program to run, the
// accounts it may touch and an opaque payload.
type Instruction struct {
	Program  ed25519.PublicKey
	Accounts []AccountMeta
	Data     []byte
}

// NewInstruction creates a new instruction.
func NewInstruction(program ed25519.PublicKey, data []byte, accounts ...AccountMeta) Instruction {
	return Instruction{
		Program:  program,
		Data:     data,
		Accounts: accounts,
	}
}

// CompiledInstruction is an Instruction whose program and accounts were
// replaced by indices into the message account list.
type CompiledInstruction struct {
	ProgramIndex byte
	Accounts     []byte
	Data         []byte
}

// filterUnique merges duplicate account metas, keeping the most permissive
// signer and writable flags.
func filterUnique(accounts []AccountMeta) []AccountMeta {
	filtered := make([]AccountMeta, 0, len(accounts))

	for _, a := range accounts {
		found := false
		for i := range filtered {
			if !bytes.Equal(filtered[i].PublicKey, a.PublicKey) {
				continue
			}

			filtered[i].IsSigner = filtered[i].IsSigner || a.IsSigner
			filtered[i].IsWritable = filtered[i].IsWritable || a.IsWritable
			filtered[i].isPayer = filtered[i].isPayer || a.isPayer
			filtered[i].isProgram = filtered[i].isProgram && a.isProgram
			found = true
			break
		}

		if !found {
			filtered = append(filtered, a)
		}
	}

	return filtered
}

func indexOf(keys []ed25519.PublicKey, target ed25519.PublicKey) int {
	for i, k := range keys {
		if bytes.Equal(k, target) {
			return i
		}
	}
	return -1
}
