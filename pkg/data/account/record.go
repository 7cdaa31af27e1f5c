package account

import (
	"crypto/ed25519"
	"math"
	"time"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrInvalidAccount  = errors.New("invalid account")
)

// Record is the persisted state of a single ledger account.
type Record struct {
	Id uint64

	Address string
	Owner   string

	Lamports   uint64
	Data       []byte
	Executable bool

	// Slot is the bank slot at which the account was last written.
	Slot uint64

	LastUpdatedAt time.Time
}

// NewRecord returns a record for address owned by owner.
func NewRecord(address, owner ed25519.PublicKey, lamports uint64, data []byte) *Record {
	return &Record{
		Address:  base58.Encode(address),
		Owner:    base58.Encode(owner),
		Lamports: lamports,
		Data:     data,
	}
}

func (r *Record) Validate() error {
	if err := validateKey(r.Address); err != nil {
		return errors.Wrap(err, "invalid address")
	}

	if err := validateKey(r.Owner); err != nil {
		return errors.Wrap(err, "invalid owner")
	}

	// Stored as a signed BIGINT
	if r.Lamports > math.MaxInt64 {
		return errors.Wrap(ErrInvalidAccount, "lamports overflow")
	}

	return nil
}

func (r *Record) GetAddress() (ed25519.PublicKey, error) {
	return decodeKey(r.Address)
}

func (r *Record) GetOwner() (ed25519.PublicKey, error) {
	return decodeKey(r.Owner)
}

func (r *Record) Clone() Record {
	var data []byte
	if r.Data != nil {
		data = make([]byte, len(r.Data))
		copy(data, r.Data)
	}

	return Record{
		Id:            r.Id,
		Address:       r.Address,
		Owner:         r.Owner,
		Lamports:      r.Lamports,
		Data:          data,
		Executable:    r.Executable,
		Slot:          r.Slot,
		LastUpdatedAt: r.LastUpdatedAt,
	}
}

func (r *Record) CopyTo(dst *Record) {
	dst.Id = r.Id
	dst.Address = r.Address
	dst.Owner = r.Owner
	dst.Lamports = r.Lamports
	dst.Data = nil
	if r.Data != nil {
		dst.Data = make([]byte, len(r.Data))
		copy(dst.Data, r.Data)
	}
	dst.Executable = r.Executable
	dst.Slot = r.Slot
	dst.LastUpdatedAt = r.LastUpdatedAt
}

func validateKey(val string) error {
	_, err := decodeKey(val)
	return err
}

func decodeKey(val string) (ed25519.PublicKey, error) {
	decoded, err := base58.Decode(val)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidAccount, err.Error())
	}

	if len(decoded) != ed25519.PublicKeySize {
		return nil, errors.Wrapf(ErrInvalidAccount, "invalid key length %d", len(decoded))
	}

	return decoded, nil
}
