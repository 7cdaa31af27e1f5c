package vault

import (
	"bytes"
	"crypto/ed25519"

	"github.com/code-payments/code-vault/pkg/solana"
	"github.com/code-payments/code-vault/pkg/solana/runtime"
)

var (
	vaultPrefix = []byte("vault")
)

type GetVaultAddressArgs struct {
	Owner ed25519.PublicKey
}

// GetVaultAddress derives the vault of an owner. The bump is the first
// candidate, searching down from 255, that yields an off curve address.
func GetVaultAddress(args *GetVaultAddressArgs) (ed25519.PublicKey, uint8, error) {
	return solana.FindProgramAddressAndBump(
		PROGRAM_ID,
		vaultPrefix,
		args.Owner,
	)
}

// vaultSignerSeeds is the authority the program presents when the vault
// signs a transfer.
func vaultSignerSeeds(owner ed25519.PublicKey, bump uint8) runtime.SignerSeeds {
	return runtime.SignerSeeds{
		vaultPrefix,
		owner,
		{bump},
	}
}

// verifyVaultAddress re-derives the vault of owner under the executing
// program and returns its bump when vault matches.
func verifyVaultAddress(ctx runtime.InvokeContext, owner, vault runtime.AccountInfo) (uint8, error) {
	expected, bump, err := ctx.FindProgramAddress(vaultPrefix, owner.Key())
	if err != nil {
		return 0, err
	}

	if !bytes.Equal(expected, vault.Key()) {
		ctx.Log("Vault %s is not derived from owner %s", vault, owner)
		return 0, ErrInvalidDerivedAddress
	}

	return bump, nil
}
