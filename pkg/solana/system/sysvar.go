package system

import (
	"crypto/ed25519"
)

// ProgramKey is the address of the native system program.
//
// https://explorer.solana.com/address/11111111111111111111111111111111
var ProgramKey [32]byte

// SystemAccount is ProgramKey as a public key. Accounts holding only lamports
// are owned by it.
var SystemAccount = ed25519.PublicKey(ProgramKey[:])
