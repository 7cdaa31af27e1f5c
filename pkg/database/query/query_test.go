package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaginateQuery(t *testing.T) {
	base := "SELECT * FROM t WHERE (owner = $1)"

	q, args := PaginateQuery(base, []interface{}{"a"}, nil, 0, Ascending)
	assert.Equal(t, base+" ORDER BY id ASC", q)
	assert.Equal(t, []interface{}{"a"}, args)

	q, args = PaginateQuery(base, []interface{}{"a"}, ToCursor(5), 10, Descending)
	assert.Equal(t, base+" AND id < $2 ORDER BY id DESC LIMIT $3", q)
	assert.Equal(t, []interface{}{"a", uint64(5), uint64(10)}, args)

	q, args = PaginateQuery(base, []interface{}{"a"}, ToCursor(5), 10, Ascending)
	assert.Equal(t, base+" AND id > $2 ORDER BY id ASC LIMIT $3", q)
	assert.Equal(t, []interface{}{"a", uint64(5), uint64(10)}, args)
}

func TestDefaultPaginationHandler(t *testing.T) {
	req, err := DefaultPaginationHandler()
	require.NoError(t, err)
	assert.EqualValues(t, defaultPagingLimit, req.Limit)
	assert.Equal(t, Ascending, req.SortBy)
	assert.Empty(t, req.Cursor)

	req, err = DefaultPaginationHandler(WithLimit(5), WithDirection(Descending), WithCursor(ToCursor(7)))
	require.NoError(t, err)
	assert.EqualValues(t, 5, req.Limit)
	assert.Equal(t, Descending, req.SortBy)
	assert.EqualValues(t, 7, req.Cursor.ToUint64())

	_, err = DefaultPaginationHandler(WithLimit(defaultPagingLimit + 1))
	assert.Equal(t, ErrQueryNotSupported, err)

	_, err = DefaultPaginationHandler(WithLimit(0))
	assert.Equal(t, ErrQueryNotSupported, err)

	_, err = DefaultPaginationHandler(WithCursor([]byte{1, 2, 3}))
	assert.Equal(t, ErrInvalidCursor, err)
}

func TestCursor(t *testing.T) {
	c := ToCursor(1234)
	assert.EqualValues(t, 1234, c.ToUint64())

	parsed, err := FromBase58(c.ToBase58())
	require.NoError(t, err)
	assert.Equal(t, c, parsed)

	parsed, err = FromBase58("")
	require.NoError(t, err)
	assert.Empty(t, parsed)

	_, err = FromBase58("0OIl")
	assert.Error(t, err)

	_, err = FromBase58(Cursor([]byte{1, 2}).ToBase58())
	assert.Equal(t, ErrInvalidCursor, err)

	assert.Zero(t, EmptyCursor.ToUint64())
}

func TestOrdering(t *testing.T) {
	for _, o := range []Ordering{Ascending, Descending} {
		assert.True(t, o.Valid())
		parsed, err := ParseOrdering(o.String())
		require.NoError(t, err)
		assert.Equal(t, o, parsed)
	}
	assert.Equal(t, "desc", Descending.String())

	_, err := ParseOrdering("sideways")
	assert.Error(t, err)

	assert.False(t, Ordering(9).Valid())
	assert.Empty(t, Ordering(9).String())

	_, err = DefaultPaginationHandler(WithDirection(Ordering(9)))
	assert.Equal(t, ErrQueryNotSupported, err)
}
