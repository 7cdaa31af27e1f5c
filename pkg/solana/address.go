package solana

import (
	"bytes"
	"crypto/ed25519"
	"crypto/sha256"
	"math"

	"github.com/jdgcs/ed25519/edwards25519"
	"github.com/pkg/errors"
)

const (
	MaxSeeds      = 16
	MaxSeedLength = 32
)

var (
	ErrTooManySeeds          = errors.New("too many seeds")
	ErrMaxSeedLengthExceeded = errors.New("max seed length exceeded")

	// ErrInvalidPublicKey is returned when a candidate program address lands on
	// the ed25519 curve, meaning a private key could exist for it.
	ErrInvalidPublicKey = errors.New("invalid public key")

	// ErrNoViableBump is returned when every bump from 255 down to 1 yields an
	// on-curve candidate.
	ErrNoViableBump = errors.New("unable to find a viable program address bump seed")
)

const pdaMarker = "ProgramDerivedAddress"

var (
	programHashCtor = sha256.New
)

// CreateProgramAddress mirrors the Solana SDK's create_program_address.
//
// The address is sha256(seeds || program || "ProgramDerivedAddress"). Program
// addresses must _not_ lie on the ed25519 curve, so that there is no private key
// for them. If the hash is a valid compressed Edwards point, ErrInvalidPublicKey
// is returned and the caller is expected to try another bump.
//
// Reference: https://github.com/solana-labs/solana/blob/5548e599fe4920b71766e0ad1d121755ce9c63d5/sdk/program/src/pubkey.rs#L158
func CreateProgramAddress(program ed25519.PublicKey, seeds ...[]byte) (ed25519.PublicKey, error) {
	if len(seeds) > MaxSeeds {
		return nil, ErrTooManySeeds
	}

	h := programHashCtor()
	for _, s := range seeds {
		if len(s) > MaxSeedLength {
			return nil, ErrMaxSeedLengthExceeded
		}

		if _, err := h.Write(s); err != nil {
			return nil, errors.Wrap(err, "failed to hash seed")
		}
	}

	if _, err := h.Write(program); err != nil {
		return nil, errors.Wrap(err, "failed to hash program")
	}
	if _, err := h.Write([]byte(pdaMarker)); err != nil {
		return nil, errors.Wrap(err, "failed to hash marker")
	}

	var candidate [32]byte
	copy(candidate[:], h.Sum(nil))

	if isOnCurve(&candidate) {
		return nil, ErrInvalidPublicKey
	}

	return candidate[:], nil
}

// FindProgramAddressAndBump mirrors the Solana SDK's find_program_address. The
// bump seed is appended as the last seed and searched from 255 downward. The
// first off-curve candidate wins, so the result is a pure function of the
// program and seeds.
//
// Reference: https://github.com/solana-labs/solana/blob/5548e599fe4920b71766e0ad1d121755ce9c63d5/sdk/program/src/pubkey.rs#L234
func FindProgramAddressAndBump(program ed25519.PublicKey, seeds ...[]byte) (ed25519.PublicKey, uint8, error) {
	withBump := make([][]byte, len(seeds)+1)
	copy(withBump, seeds)

	bump := []byte{math.MaxUint8}
	withBump[len(seeds)] = bump

	for bump[0] > 0 {
		pub, err := CreateProgramAddress(program, withBump...)
		if err == nil {
			return pub, bump[0], nil
		}
		if err != ErrInvalidPublicKey {
			return nil, 0, err
		}

		bump[0]--
	}

	return nil, 0, ErrNoViableBump
}

// FindProgramAddress is FindProgramAddressAndBump without the bump.
func FindProgramAddress(program ed25519.PublicKey, seeds ...[]byte) (ed25519.PublicKey, error) {
	pub, _, err := FindProgramAddressAndBump(program, seeds...)
	return pub, err
}

// VerifyProgramAddress reports whether the seeds (which must already include
// the bump) reproduce address under program.
func VerifyProgramAddress(program, address ed25519.PublicKey, seeds ...[]byte) bool {
	derived, err := CreateProgramAddress(program, seeds...)
	if err != nil {
		return false
	}
	return bytes.Equal(derived, address)
}

// IsOnCurve reports whether key decodes to a point on the ed25519 curve.
func IsOnCurve(key ed25519.PublicKey) bool {
	if len(key) != ed25519.PublicKeySize {
		return false
	}

	var raw [32]byte
	copy(raw[:], key)
	return isOnCurve(&raw)
}

// The edwards25519.ExtendedGroupElement is internal to golang.org/x/crypto, so
// we decode through the jdgcs fork, which exposes the same check ed25519.Verify
// performs on public keys.
func isOnCurve(raw *[32]byte) bool {
	var A edwards25519.ExtendedGroupElement
	return A.FromBytes(raw)
}
