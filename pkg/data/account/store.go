package account

import (
	"context"

	"github.com/code-payments/code-vault/pkg/database/query"
)

type Store interface {
	// Count returns the total count of stored accounts.
	Count(ctx context.Context) (uint64, error)

	// Save creates or updates every record in a single atomic write. Either
	// all records are persisted or none are.
	Save(ctx context.Context, records ...*Record) error

	// Get finds the account for a given address.
	//
	// Returns ErrAccountNotFound if the account has never been stored.
	Get(ctx context.Context, address string) (*Record, error)

	// GetAllByOwner returns the accounts owned by a program.
	//
	// Returns ErrAccountNotFound if no records are found.
	GetAllByOwner(ctx context.Context, owner string, cursor query.Cursor, limit uint64, direction query.Ordering) ([]*Record, error)
}
