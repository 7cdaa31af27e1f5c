package vault

// VaultError is a custom program error. The code is reported to the
// transaction as solana.CustomError.
type VaultError uint32

const (
	// Instruction payload could not be decoded
	ErrUnrecognizedInstruction VaultError = iota + 1

	// Owner did not sign the transaction
	ErrMissingSigner

	// Vault is not the derived address of the owner
	ErrInvalidDerivedAddress

	// Vault already holds a balance
	ErrVaultAlreadyFunded

	// Deposit amount must be positive
	ErrZeroAmountDeposit

	// Vault has nothing to withdraw
	ErrEmptyVault

	// Unexpected number or order of accounts
	ErrMalformedAccountList

	// System transfer failed
	ErrTransferFailed

	// Vault is not owned by the system program
	ErrInvalidVaultOwner
)

var vaultErrorStrings = map[VaultError]string{
	ErrUnrecognizedInstruction: "unrecognized instruction",
	ErrMissingSigner:           "missing signer",
	ErrInvalidDerivedAddress:   "invalid derived address",
	ErrVaultAlreadyFunded:      "vault already funded",
	ErrZeroAmountDeposit:       "zero amount deposit",
	ErrEmptyVault:              "empty vault",
	ErrMalformedAccountList:    "malformed account list",
	ErrTransferFailed:          "transfer failed",
	ErrInvalidVaultOwner:       "invalid vault owner",
}

func (e VaultError) Error() string {
	if s, ok := vaultErrorStrings[e]; ok {
		return s
	}
	return "unknown vault error"
}

func (e VaultError) Code() uint32 {
	return uint32(e)
}
