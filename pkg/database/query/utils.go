package query

import (
	"strconv"
	"strings"
)

const (
	defaultPagingLimit = 1000
)

// PaginateQuery returns a paginated query string for the given input options.
//
// The input query string is expected as follows:
//
//	"SELECT ... WHERE (...)" <- these brackets are not optional
//
// The output query string would be as follows:
//
//	"SELECT ... WHERE (...) AND id > $n ORDER BY id ASC LIMIT $n+1"
//	-or-
//	"SELECT ... WHERE (...) AND id < $n ORDER BY id DESC LIMIT $n+1"
//
// Example:
//
//	query := "SELECT * FROM vault__core_account WHERE (owner = $1)"
//	PaginateQuery(query, []interface{}{owner}, ToCursor(123), 10, Ascending)
//	> "SELECT * FROM vault__core_account WHERE (owner = $1) AND id > $2 ORDER BY id ASC LIMIT $3"
func PaginateQuery(query string, opts []interface{},
	cursor Cursor, limit uint64, direction Ordering) (string, []interface{}) {

	if !direction.Valid() {
		direction = Ascending
	}

	if len(cursor) > 0 {
		v := strconv.Itoa(len(opts) + 1)

		if direction == Ascending {
			query += " AND id > $" + v
		} else {
			query += " AND id < $" + v
		}

		opts = append(opts, cursor.ToUint64())
	}

	query += " ORDER BY id " + strings.ToUpper(direction.String())

	if limit > 0 {
		v := strconv.Itoa(len(opts) + 1)

		query += " LIMIT $" + v

		opts = append(opts, limit)
	}

	return query, opts
}

// DefaultPaginationHandler resolves paging options with the default limit as
// both the initial and maximum page size.
func DefaultPaginationHandler(opts ...Option) (*QueryOptions, error) {
	return DefaultPaginationHandlerWithLimit(defaultPagingLimit, opts...)
}

func DefaultPaginationHandlerWithLimit(limit uint64, opts ...Option) (*QueryOptions, error) {
	req := QueryOptions{
		Limit:     limit,
		SortBy:    Ascending,
		Supported: CanLimitResults | CanSortBy | CanQueryByCursor,
	}
	if err := req.Apply(opts...); err != nil {
		return nil, err
	}

	if req.Limit == 0 || req.Limit > limit {
		return nil, ErrQueryNotSupported
	}

	return &req, nil
}
