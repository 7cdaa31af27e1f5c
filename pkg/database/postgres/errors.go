package pg

import (
	"database/sql"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	"github.com/pkg/errors"
)

// CheckNoRows maps sql.ErrNoRows to the store level error outErr.
func CheckNoRows(inErr, outErr error) error {
	if errors.Is(inErr, sql.ErrNoRows) {
		return outErr
	}
	return inErr
}

// IsSerializationFailure reports whether err is a postgres serialization
// failure, which concurrent serializable transactions raise on conflict.
func IsSerializationFailure(err error) bool {
	return hasCode(err, pgerrcode.SerializationFailure)
}

func hasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == code
}
