package postgres

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/code-payments/code-vault/pkg/data/account"
	"github.com/code-payments/code-vault/pkg/database/query"
)

type store struct {
	db *sqlx.DB
}

func New(db *sql.DB) account.Store {
	return &store{
		db: sqlx.NewDb(db, "pgx"),
	}
}

// Count returns the total count of accounts.
func (s *store) Count(ctx context.Context) (uint64, error) {
	return dbGetCount(ctx, s.db)
}

// Save upserts all records within a single serializable transaction.
func (s *store) Save(ctx context.Context, records ...*account.Record) error {
	models := make([]*accountModel, len(records))
	for i, record := range records {
		obj, err := toAccountModel(record)
		if err != nil {
			return err
		}
		models[i] = obj
	}

	if err := dbSaveAll(ctx, s.db, models); err != nil {
		return err
	}

	for i, obj := range models {
		fromAccountModel(obj).CopyTo(records[i])
	}

	return nil
}

// Get finds the account record for a given address.
func (s *store) Get(ctx context.Context, address string) (*account.Record, error) {
	obj, err := dbGet(ctx, s.db, address)
	if err != nil {
		return nil, err
	}

	return fromAccountModel(obj), nil
}

// GetAllByOwner returns all account records owned by a program.
//
// Returns ErrAccountNotFound if no records are found.
func (s *store) GetAllByOwner(ctx context.Context, owner string, cursor query.Cursor, limit uint64, direction query.Ordering) ([]*account.Record, error) {
	models, err := dbGetAllByOwner(ctx, s.db, owner, cursor, limit, direction)
	if err != nil {
		return nil, err
	}

	res := make([]*account.Record, len(models))
	for i, model := range models {
		res[i] = fromAccountModel(model)
	}

	return res, nil
}
