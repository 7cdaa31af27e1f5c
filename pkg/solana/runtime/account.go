package runtime

import (
	"bytes"
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/code-payments/code-vault/pkg/data/account"
	"github.com/code-payments/code-vault/pkg/solana/system"
)

var (
	ErrAccountNotFound = account.ErrAccountNotFound
	ErrLamportOverflow = errors.New("lamport balance overflow")
)

// NativeLoaderKey owns every builtin program account.
var NativeLoaderKey = mustDecodeKey("NativeLoader1111111111111111111111111111111")

// Account is a point in time snapshot of a ledger account.
type Account struct {
	Key        ed25519.PublicKey
	Owner      ed25519.PublicKey
	Lamports   uint64
	Data       []byte
	Executable bool
	Slot       uint64
}

// ledgerAccount is the mutable working copy of an account while a
// transaction executes.
type ledgerAccount struct {
	key        ed25519.PublicKey
	owner      ed25519.PublicKey
	lamports   uint64
	data       []byte
	executable bool
	slot       uint64

	// recordId is zero for accounts that have never been stored.
	recordId uint64
}

func newSystemAccount(key ed25519.PublicKey) *ledgerAccount {
	return &ledgerAccount{
		key:   key,
		owner: system.SystemAccount,
	}
}

func newProgramAccount(key ed25519.PublicKey) *ledgerAccount {
	return &ledgerAccount{
		key:        key,
		owner:      NativeLoaderKey,
		lamports:   1,
		executable: true,
	}
}

func fromRecord(r *account.Record) (*ledgerAccount, error) {
	key, err := r.GetAddress()
	if err != nil {
		return nil, err
	}
	owner, err := r.GetOwner()
	if err != nil {
		return nil, err
	}

	return &ledgerAccount{
		key:        key,
		owner:      owner,
		lamports:   r.Lamports,
		data:       cloneBytes(r.Data),
		executable: r.Executable,
		slot:       r.Slot,
		recordId:   r.Id,
	}, nil
}

func (a *ledgerAccount) toRecord(slot uint64) *account.Record {
	return &account.Record{
		Id:         a.recordId,
		Address:    base58.Encode(a.key),
		Owner:      base58.Encode(a.owner),
		Lamports:   a.lamports,
		Data:       cloneBytes(a.data),
		Executable: a.executable,
		Slot:       slot,
	}
}

func (a *ledgerAccount) snapshot() Account {
	return Account{
		Key:        cloneBytes(a.key),
		Owner:      cloneBytes(a.owner),
		Lamports:   a.lamports,
		Data:       cloneBytes(a.data),
		Executable: a.executable,
		Slot:       a.slot,
	}
}

type accountState struct {
	owner    ed25519.PublicKey
	lamports uint64
	data     []byte
}

func (a *ledgerAccount) save() accountState {
	return accountState{
		owner:    a.owner,
		lamports: a.lamports,
		data:     cloneBytes(a.data),
	}
}

func (a *ledgerAccount) restore(s accountState) {
	a.owner = s.owner
	a.lamports = s.lamports
	a.data = s.data
}

func (a *ledgerAccount) equals(s accountState) bool {
	return a.lamports == s.lamports && bytes.Equal(a.owner, s.owner) && bytes.Equal(a.data, s.data)
}

// AccountInfo is a read only view of an account passed to a program. It is
// borrowed from the invoking frame and must not be used once the program
// returns.
type AccountInfo struct {
	f     *frame
	index int
}

func (i AccountInfo) entry() *frameAccount {
	if i.f == nil || i.f.released {
		panic("runtime: account info used after the instruction returned")
	}
	return &i.f.accounts[i.index]
}

func (i AccountInfo) Key() ed25519.PublicKey {
	return cloneBytes(i.entry().account.key)
}

func (i AccountInfo) Owner() ed25519.PublicKey {
	return cloneBytes(i.entry().account.owner)
}

func (i AccountInfo) Lamports() uint64 {
	return i.entry().account.lamports
}

func (i AccountInfo) Data() []byte {
	return cloneBytes(i.entry().account.data)
}

func (i AccountInfo) IsSigner() bool {
	return i.entry().isSigner
}

func (i AccountInfo) IsWritable() bool {
	return i.entry().isWritable
}

func (i AccountInfo) IsExecutable() bool {
	return i.entry().account.executable
}

func (i AccountInfo) String() string {
	if i.f == nil || i.f.released {
		return "<released>"
	}
	return base58.Encode(i.entry().account.key)
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	cloned := make([]byte, len(b))
	copy(cloned, b)
	return cloned
}

func mustDecodeKey(val string) ed25519.PublicKey {
	decoded, err := base58.Decode(val)
	if err != nil || len(decoded) != ed25519.PublicKeySize {
		panic("runtime: invalid key " + val)
	}
	return decoded
}
